package compendium

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
)

// PackFile is the on-disk shape of a pack: a name and its items
type PackFile struct {
	Pack  string           `yaml:"pack" json:"pack"`
	Items []map[string]any `yaml:"items" json:"items"`
}

// LoadPack decodes a YAML or JSON pack and stores every item. It returns the
// number of items loaded.
func LoadPack(ctx context.Context, repo Repository, r io.Reader) (int, error) {
	var file PackFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return 0, fmt.Errorf("failed to decode pack: %w", err)
	}
	if file.Pack == "" {
		return 0, fmt.Errorf("pack file is missing a pack name")
	}

	for i, raw := range file.Items {
		// Round trip through JSON so nested system data keeps its shape
		b, err := json.Marshal(raw)
		if err != nil {
			return i, fmt.Errorf("failed to encode item %d of %s: %w", i, file.Pack, err)
		}
		var item document.ItemSource
		if err := json.Unmarshal(b, &item); err != nil {
			return i, fmt.Errorf("failed to decode item %d of %s: %w", i, file.Pack, err)
		}
		if err := repo.Put(ctx, file.Pack, &item); err != nil {
			return i, fmt.Errorf("failed to store item %d of %s: %w", i, file.Pack, err)
		}
	}
	return len(file.Items), nil
}

// LoadDir loads every .yaml, .yml, and .json pack file in dir
func LoadDir(ctx context.Context, repo Repository, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read pack directory: %w", err)
	}

	total := 0
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml" && ext != ".json") {
			continue
		}
		n, err := loadFile(ctx, repo, filepath.Join(dir, entry.Name()))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func loadFile(ctx context.Context, repo Repository, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open pack %s: %w", path, err)
	}
	defer f.Close()
	return LoadPack(ctx, repo, f)
}

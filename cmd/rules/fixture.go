package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
)

// readActorFile loads an actor fixture. YAML is a superset of JSON so one
// decoder serves both.
func readActorFile(path string) (*document.ActorSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open actor file: %w", err)
	}
	defer f.Close()

	src, err := decodeActor(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return src, nil
}

func decodeActor(r io.Reader) (*document.ActorSource, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode actor: %w", err)
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode actor: %w", err)
	}
	var src document.ActorSource
	if err := json.Unmarshal(b, &src); err != nil {
		return nil, fmt.Errorf("failed to decode actor: %w", err)
	}

	if src.ID == "" {
		return nil, dnderr.InvalidArgument("actor has no _id")
	}
	return &src, nil
}

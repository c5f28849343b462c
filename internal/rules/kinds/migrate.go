package kinds

import (
	"fmt"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
)

type migration struct {
	version float64
	apply   func(src *document.ItemSource) error
}

var migrations = []migration{
	{version: 0.8, apply: migrateLevelObject},
	{version: 0.9, apply: migrateTraitList},
}

// MigrateItem brings an item source up to target, running every migration
// newer than its recorded version in order
func MigrateItem(src *document.ItemSource, target float64) error {
	current := src.SchemaVersion()
	if current >= target {
		return nil
	}

	sorted := append([]migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].version < sorted[j].version })
	for _, m := range sorted {
		if m.version <= current || m.version > target {
			continue
		}
		if err := m.apply(src); err != nil {
			return fmt.Errorf("failed to apply migration %.2f: %w", m.version, err)
		}
	}
	return src.SetSystem("_migration.version", target)
}

// migrateLevelObject wraps a bare numeric level in {value}
func migrateLevelObject(src *document.ItemSource) error {
	level := src.SystemValue("level")
	if !level.Exists() || level.IsObject() {
		return nil
	}
	return src.SetSystem("level", map[string]any{"value": level.Float()})
}

// migrateTraitList turns a single string trait value into a list
func migrateTraitList(src *document.ItemSource) error {
	traits := src.SystemValue("traits.value")
	if traits.Exists() && traits.Type == gjson.String {
		if traits.String() == "" {
			return src.SetSystem("traits.value", []string{})
		}
		return src.SetSystem("traits.value", []string{traits.String()})
	}
	return nil
}

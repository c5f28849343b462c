package compendium

import (
	"context"
	"sort"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
)

const flagSourceID = "core.sourceId"

func prepareItem(pack string, item *document.ItemSource) (*document.ItemSource, error) {
	if pack == "" {
		return nil, dnderr.InvalidArgument("pack is required")
	}
	if item == nil || item.ID == "" {
		return nil, dnderr.InvalidArgumentf("item in pack '%s' is missing an ID", pack).
			WithMeta("pack", pack)
	}

	stored := item.Clone()
	if err := stored.SetFlag(flagSourceID, document.CompendiumItemUUID(pack, item.ID)); err != nil {
		return nil, dnderr.Wrapf(err, "failed to stamp source of item '%s'", item.ID)
	}
	return stored, nil
}

// lookup parses a UUID and reports whether it names a compendium item
func lookup(raw string) (pack, id string, ok bool) {
	u, err := document.ParseUUID(raw)
	if err != nil || !u.IsCompendium() {
		return "", "", false
	}
	if u.DocumentType != "" && u.DocumentType != document.DocumentTypeItem {
		return "", "", false
	}
	return u.Pack, u.ID, true
}

type lister interface {
	List(ctx context.Context, pack string) ([]*document.ItemSource, error)
	Packs(ctx context.Context) ([]string, error)
}

func query(ctx context.Context, repo lister, q document.ItemQuery) ([]*document.ItemSource, error) {
	packs := []string{q.Pack}
	if q.Pack == "" {
		var err error
		if packs, err = repo.Packs(ctx); err != nil {
			return nil, err
		}
	}

	var out []*document.ItemSource
	for _, pack := range packs {
		items, err := repo.List(ctx, pack)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if !q.Matches(item) {
				continue
			}
			out = append(out, item)
			if q.Limit > 0 && len(out) >= q.Limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func sortItems(items []*document.ItemSource) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}

package compendium

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
)

// InMemoryRepository keeps packs in maps
type InMemoryRepository struct {
	mu    sync.RWMutex
	packs map[string]map[string]*document.ItemSource
}

// NewInMemoryRepository creates an empty in-memory compendium
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{packs: make(map[string]map[string]*document.ItemSource)}
}

// Put stores a copy of the item
func (r *InMemoryRepository) Put(_ context.Context, pack string, item *document.ItemSource) error {
	stored, err := prepareItem(pack, item)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.packs[pack] == nil {
		r.packs[pack] = make(map[string]*document.ItemSource)
	}
	r.packs[pack][item.ID] = stored
	return nil
}

// Get retrieves a copy of a pack item
func (r *InMemoryRepository) Get(_ context.Context, pack, id string) (*document.ItemSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.packs[pack][id]
	if !ok {
		return nil, dnderr.NotFoundf("item '%s' not found in pack '%s'", id, pack).
			WithMeta("pack", pack).
			WithMeta("item_id", id)
	}
	return item.Clone(), nil
}

// List returns copies of every item in the pack
func (r *InMemoryRepository) List(_ context.Context, pack string) ([]*document.ItemSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*document.ItemSource, 0, len(r.packs[pack]))
	for _, item := range r.packs[pack] {
		out = append(out, item.Clone())
	}
	sortItems(out)
	return out, nil
}

// Packs returns the stored pack names
func (r *InMemoryRepository) Packs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.packs))
	for pack := range r.packs {
		out = append(out, pack)
	}
	sort.Strings(out)
	return out, nil
}

// FromUUID resolves a compendium item UUID
func (r *InMemoryRepository) FromUUID(ctx context.Context, uuid string) (*document.ItemSource, error) {
	pack, id, ok := lookup(uuid)
	if !ok {
		return nil, nil
	}
	item, err := r.Get(ctx, pack, id)
	if dnderr.IsNotFound(err) {
		return nil, nil
	}
	return item, err
}

// Query searches the stored packs
func (r *InMemoryRepository) Query(ctx context.Context, q document.ItemQuery) ([]*document.ItemSource, error) {
	return query(ctx, r, q)
}

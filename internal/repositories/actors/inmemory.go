package actors

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
)

// InMemoryRepository keeps actors in a map. Useful for tests and the CLI.
type InMemoryRepository struct {
	mu     sync.RWMutex
	actors map[string]*document.ActorSource
}

// NewInMemoryRepository creates an empty in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{actors: make(map[string]*document.ActorSource)}
}

// Get retrieves a copy of the actor
func (r *InMemoryRepository) Get(_ context.Context, id string) (*document.ActorSource, error) {
	if id == "" {
		return nil, dnderr.InvalidArgument("actor ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	actor, ok := r.actors[id]
	if !ok {
		return nil, dnderr.NotFoundf("actor with ID '%s' not found", id).
			WithMeta("actor_id", id)
	}
	return actor.Clone(), nil
}

// Put stores a copy of the actor
func (r *InMemoryRepository) Put(_ context.Context, actor *document.ActorSource) error {
	if err := validate(actor); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.actors[actor.ID] = actor.Clone()
	return nil
}

// Delete removes the actor
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.actors[id]; !ok {
		return dnderr.NotFoundf("actor with ID '%s' not found", id).
			WithMeta("actor_id", id)
	}
	delete(r.actors, id)
	return nil
}

// List returns copies of every actor ordered by id
func (r *InMemoryRepository) List(_ context.Context) ([]*document.ActorSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*document.ActorSource, 0, len(r.actors))
	for _, actor := range r.actors {
		out = append(out, actor.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func validate(actor *document.ActorSource) error {
	if actor == nil {
		return dnderr.InvalidArgument("actor cannot be nil")
	}
	if actor.ID == "" {
		return dnderr.InvalidArgument("actor ID is required")
	}
	for _, item := range actor.Items {
		if item == nil || item.ID == "" {
			return dnderr.InvalidArgumentf("actor '%s' has an item without an ID", actor.ID).
				WithMeta("actor_id", actor.ID)
		}
	}
	return nil
}

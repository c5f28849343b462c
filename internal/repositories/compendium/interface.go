// Package compendium stores the item packs rule elements draw from when they
// grant, choose, or apply items by UUID.
package compendium

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks -source=interface.go

import (
	"context"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
)

// Repository defines compendium persistence. It satisfies rules.Compendium.
type Repository interface {
	// Put stores an item in a pack and stamps its source UUID
	Put(ctx context.Context, pack string, item *document.ItemSource) error

	// Get retrieves a pack item by id
	Get(ctx context.Context, pack, id string) (*document.ItemSource, error)

	// List returns every item in a pack ordered by id
	List(ctx context.Context, pack string) ([]*document.ItemSource, error)

	// Packs returns the names of every pack with at least one item
	Packs(ctx context.Context) ([]string, error)

	// FromUUID resolves a compendium item UUID. Unknown UUIDs return nil, nil.
	FromUUID(ctx context.Context, uuid string) (*document.ItemSource, error)

	// Query returns pack items matching q. An empty pack searches every pack.
	Query(ctx context.Context, q document.ItemQuery) ([]*document.ItemSource, error)
}

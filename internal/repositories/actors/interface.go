package actors

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks -source=interface.go

import (
	"context"
	"time"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
)

// Repository defines the interface for actor persistence
type Repository interface {
	// Get retrieves an actor with its embedded items
	Get(ctx context.Context, id string) (*document.ActorSource, error)

	// Put creates or replaces an actor
	Put(ctx context.Context, actor *document.ActorSource) error

	// Delete removes an actor
	Delete(ctx context.Context, id string) error

	// List returns every stored actor
	List(ctx context.Context) ([]*document.ActorSource, error)
}

// TimeProvider stamps stored records
type TimeProvider interface {
	Now() time.Time
}

type systemTime struct{}

func (systemTime) Now() time.Time {
	return time.Now().UTC()
}

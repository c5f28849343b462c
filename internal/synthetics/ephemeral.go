package synthetics

import (
	"context"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
)

// Who an ephemeral effect lands on
const (
	AffectsTarget = "target"
	AffectsOrigin = "origin"
)

// EphemeralEffect produces an effect that exists only for one roll
type EphemeralEffect struct {
	Affects string
	Source  string
	Resolve func(ctx context.Context, rc RollContext) (*document.ItemSource, error)
}

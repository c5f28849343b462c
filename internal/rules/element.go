package rules

import (
	"context"

	"github.com/KirkDiggler/rule-elements/internal/datatree"
	"github.com/KirkDiggler/rule-elements/internal/dice"
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	"github.com/KirkDiggler/rule-elements/internal/predicate"
)

// DefaultPriority is the application priority of kinds that declare none
const DefaultPriority = 100

// Element is a constructed rule element. Kinds embed *Base and implement
// whichever hook interfaces they need.
type Element interface {
	Rule() *Base
}

// Definition registers one kind with the catalog
type Definition struct {
	Key    string
	Schema Schema
	// ValidActorTypes defaults to creatures, hazards and vehicles
	ValidActorTypes []string
	// DefaultPriority is consulted when the source sets no priority
	DefaultPriority func(src *Source) int
	Build           func(base *Base) (Element, error)
}

// ActiveEffectsApplier runs once generic document changes are applied
type ActiveEffectsApplier interface {
	OnApplyActiveEffects()
}

// BeforePrepareDataHook runs at the start of derived data computation
type BeforePrepareDataHook interface {
	BeforePrepareData()
}

// AfterPrepareDataHook runs once base numbers are final
type AfterPrepareDataHook interface {
	AfterPrepareData()
}

// BeforeRollHook may add to or remove from the roll's options
type BeforeRollHook interface {
	BeforeRoll(domains []string, options predicate.Options)
}

// AfterRollHook runs after a roll completes
type AfterRollHook interface {
	AfterRoll(ctx context.Context, params *AfterRollParams) error
}

// PreCreateHook runs while the owning item is added to an actor
type PreCreateHook interface {
	PreCreate(ctx context.Context, params *PreCreateParams) error
}

// PreDeleteHook runs while the owning item is removed
type PreDeleteHook interface {
	PreDelete(ctx context.Context, params *PreDeleteParams) error
}

// PreUpdateHook runs before the owning item is persisted with changes
type PreUpdateHook interface {
	PreUpdate(ctx context.Context, changes map[string]any) error
}

// PreUpdateActorHook runs before the owning actor is persisted and may ask
// for items to be created or deleted
type PreUpdateActorHook interface {
	PreUpdateActor(ctx context.Context) (*ActorUpdateResult, error)
}

// OnCreateHook adds to the actor update that follows item creation
type OnCreateHook interface {
	OnCreate(updates ActorUpdates)
}

// OnDeleteHook adds to the actor update that follows item deletion
type OnDeleteHook interface {
	OnDelete(updates ActorUpdates)
}

// OnTurnStartHook adds to the actor update made when the actor's turn starts
type OnTurnStartHook interface {
	OnTurnStart(updates ActorUpdates)
}

// SiblingGate is implemented by kinds that suppress the other rules on their
// item while they are unresolved
type SiblingGate interface {
	GatesSiblings() bool
}

// ActorUpdates maps dotted actor paths to new values for one actor update
type ActorUpdates map[string]any

// Number reads a numeric update, or 0
func (u ActorUpdates) Number(path string) float64 {
	switch v := u[path].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// ActorUpdateResult lists items to create, owned items to replace and item
// ids to delete
type ActorUpdateResult struct {
	Create []*document.ItemSource
	Update []*document.ItemSource
	Delete []string
}

// RuleUpdate sets one field of a persisted rule source
type RuleUpdate struct {
	ItemID string
	Index  int
	Field  string
	Value  any
}

// AfterRollParams describes a completed roll
type AfterRollParams struct {
	Roll      *dice.RollResult
	Selectors []string
	Domains   []string
	Options   predicate.Options

	removed []string
	updates []RuleUpdate
}

// RemoveItem asks for an owned item to be deleted once the hooks finish
func (p *AfterRollParams) RemoveItem(id string) {
	for _, existing := range p.removed {
		if existing == id {
			return
		}
	}
	p.removed = append(p.removed, id)
}

// Removed lists the item ids hooks asked to delete
func (p *AfterRollParams) Removed() []string {
	return append([]string(nil), p.removed...)
}

// UpdateRule asks for a field of a persisted rule source to change
func (p *AfterRollParams) UpdateRule(update RuleUpdate) {
	p.updates = append(p.updates, update)
}

// RuleUpdates lists the requested rule source changes
func (p *AfterRollParams) RuleUpdates() []RuleUpdate {
	return append([]RuleUpdate(nil), p.updates...)
}

// PreCreateParams is handed to each PreCreate hook of one pending item
type PreCreateParams struct {
	// ItemSource is the pending owning item; hooks may edit it
	ItemSource *document.ItemSource
	// RuleSource is the hook's own rule entry; edits are written back
	RuleSource *datatree.Tree
	Pending    *PendingItems
	// Depth counts nested grants above this item
	Depth int
	// Updates collects changes to the owning actor itself
	Updates ActorUpdates
}

// PreDeleteParams is handed to each PreDelete hook of an item being removed
type PreDeleteParams struct {
	Deleting *DeletionSet
}

// Package actor is the in-memory working copy of an actor during one
// preparation pass.
package actor

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/KirkDiggler/rule-elements/internal/datatree"
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	"github.com/KirkDiggler/rule-elements/internal/predicate"
	"github.com/KirkDiggler/rule-elements/internal/synthetics"
)

// Actor types
const (
	TypeCharacter = "character"
	TypeNPC       = "npc"
	TypeFamiliar  = "familiar"
	TypeHazard    = "hazard"
	TypeLoot      = "loot"
	TypeVehicle   = "vehicle"
	TypeParty     = "party"
	TypeArmy      = "army"
)

// CreatureTypes are the actor types that are creatures
var CreatureTypes = []string{TypeCharacter, TypeNPC, TypeFamiliar}

// DomainAll is the roll option domain consulted by every roll
const DomainAll = "all"

// AutoChange records one path change made by an effect
type AutoChange struct {
	Mode   string `json:"mode"`
	Value  any    `json:"value"`
	Source string `json:"source"`
}

// Actor is the working state of an actor for one preparation pass
type Actor struct {
	Source *document.ActorSource
	Data   *datatree.Tree
	Items  []*Item

	RollOptions map[string]map[string]bool
	Synthetics  *synthetics.Registry
	Attributes  Attributes
	AutoChanges map[string][]AutoChange
}

// New builds working state from a source. The source is cloned.
func New(source *document.ActorSource) (*Actor, error) {
	if source == nil {
		return nil, fmt.Errorf("actor source is required")
	}
	a := &Actor{Source: source.Clone()}
	if err := a.Reset(); err != nil {
		return nil, err
	}
	return a, nil
}

// Reset discards all derived state and rebuilds it from the source
func (a *Actor) Reset() error {
	data := datatree.New(nil)
	for _, field := range []struct {
		path  string
		value any
	}{
		{"_id", a.Source.ID},
		{"name", a.Source.Name},
		{"type", a.Source.Type},
	} {
		if err := data.Set(field.path, field.value); err != nil {
			return fmt.Errorf("failed to reset actor: %w", err)
		}
	}
	if err := data.SetRaw("system", rawOrEmpty(a.Source.System)); err != nil {
		return fmt.Errorf("failed to reset actor system data: %w", err)
	}
	if err := data.SetRaw("flags", rawOrEmpty(a.Source.Flags)); err != nil {
		return fmt.Errorf("failed to reset actor flags: %w", err)
	}
	if err := data.Set("level", data.Float("system.details.level.value")); err != nil {
		return fmt.Errorf("failed to reset actor level: %w", err)
	}

	a.Data = data
	a.Synthetics = synthetics.NewRegistry()
	a.Attributes = Attributes{}
	a.AutoChanges = make(map[string][]AutoChange)
	a.RollOptions = map[string]map[string]bool{DomainAll: {}}

	a.Items = make([]*Item, 0, len(a.Source.Items))
	for _, src := range a.Source.Items {
		item, err := newItem(a, src)
		if err != nil {
			return fmt.Errorf("failed to prepare item %s: %w", src.ID, err)
		}
		a.Items = append(a.Items, item)
	}

	a.setBaseRollOptions()
	return nil
}

func (a *Actor) setBaseRollOptions() {
	a.SetRollOption(DomainAll, "self:type:"+a.Source.Type, true)
	a.SetRollOption(DomainAll, "self:level:"+strconv.Itoa(a.Level()), true)
	for _, trait := range a.Traits() {
		a.SetRollOption(DomainAll, "self:trait:"+trait, true)
	}
	for _, item := range a.Items {
		if opt := item.ActorRollOption(); opt != "" {
			a.SetRollOption(DomainAll, opt, true)
		}
	}
}

// ID returns the actor id
func (a *Actor) ID() string {
	return a.Source.ID
}

// Name returns the actor name
func (a *Actor) Name() string {
	return a.Source.Name
}

// Type returns the actor type
func (a *Actor) Type() string {
	return a.Source.Type
}

// Level returns the working level
func (a *Actor) Level() int {
	return int(a.Data.Float("level"))
}

// Traits returns the working trait list
func (a *Actor) Traits() []string {
	return stringList(a.Data, "system.traits.value")
}

// IsCreature reports whether the actor is a creature type
func (a *Actor) IsCreature() bool {
	for _, t := range CreatureTypes {
		if a.Source.Type == t {
			return true
		}
	}
	return false
}

// Get reads a path from the working data
func (a *Actor) Get(path string) (any, bool) {
	return a.Data.Get(path)
}

// Item finds a working item by id
func (a *Actor) Item(id string) *Item {
	for _, item := range a.Items {
		if item.ID() == id {
			return item
		}
	}
	return nil
}

// Bind wraps an item source as owned by this actor without adding it to Items.
// Items being created are bound this way before they are persisted.
func (a *Actor) Bind(src *document.ItemSource) (*Item, error) {
	return newItem(a, src)
}

// SetRollOption records option at domain
func (a *Actor) SetRollOption(domain, option string, value bool) {
	if a.RollOptions[domain] == nil {
		a.RollOptions[domain] = make(map[string]bool)
	}
	a.RollOptions[domain][option] = value
}

// RollOption reports the value of option at domain and whether it is set
func (a *Actor) RollOption(domain, option string) (bool, bool) {
	v, ok := a.RollOptions[domain][option]
	return v, ok
}

// GetRollOptions returns the true options of the given domains; no domains means "all"
func (a *Actor) GetRollOptions(domains ...string) predicate.Options {
	if len(domains) == 0 {
		domains = []string{DomainAll}
	}
	out := predicate.NewOptions()
	for _, domain := range domains {
		for option, value := range a.RollOptions[domain] {
			if value {
				out.Add(option)
			}
		}
	}
	return out
}

// RecordAutoChange stores a change for later inspection
func (a *Actor) RecordAutoChange(path string, change AutoChange) {
	a.AutoChanges[path] = append(a.AutoChanges[path], change)
}

// RollData is the formula data root exposed as @actor
func (a *Actor) RollData() map[string]any {
	return map[string]any{"actor": a.Data}
}

func rawOrEmpty(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("{}")
	}
	return raw
}

func stringList(tree *datatree.Tree, path string) []string {
	res := tree.Result(path)
	if !res.IsArray() {
		return nil
	}
	var out []string
	for _, v := range res.Array() {
		if s := v.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package rules

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
)

// Catalog maps rule keys to kind definitions. Custom definitions overlay
// the builtin table.
type Catalog struct {
	mu      sync.RWMutex
	builtin map[string]*Definition
	custom  map[string]*Definition
}

// NewCatalog returns an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		builtin: make(map[string]*Definition),
		custom:  make(map[string]*Definition),
	}
}

func checkDefinition(def *Definition) error {
	if def == nil || def.Key == "" {
		return fmt.Errorf("rule element definition requires a key")
	}
	if def.Build == nil {
		return fmt.Errorf("rule element definition %s has no constructor", def.Key)
	}
	return nil
}

// Register adds a builtin kind
func (c *Catalog) Register(def *Definition) error {
	if err := checkDefinition(def); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.builtin[def.Key]; exists {
		return fmt.Errorf("rule element %s is already registered", def.Key)
	}
	c.builtin[def.Key] = def
	return nil
}

// RegisterCustom adds or replaces an overlay kind. Overlay kinds win over builtins.
func (c *Catalog) RegisterCustom(def *Definition) error {
	if err := checkDefinition(def); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.custom[def.Key] = def
	return nil
}

// Lookup returns the definition for key
func (c *Catalog) Lookup(key string) (*Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if def, ok := c.custom[key]; ok {
		return def, true
	}
	def, ok := c.builtin[key]
	return def, ok
}

// Keys lists every registered key
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool, len(c.builtin)+len(c.custom))
	keys := make([]string, 0, len(c.builtin)+len(c.custom))
	for _, table := range []map[string]*Definition{c.builtin, c.custom} {
		for key := range table {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// FromOwnedItem constructs one element per authored rule in authored order.
// Entries with a missing or unknown key, and entries whose constructor fails,
// are logged and skipped.
func (c *Catalog) FromOwnedItem(rc *Context, item *actor.Item, opts BuildOptions) []Element {
	if item == nil || item.Actor == nil {
		return nil
	}

	logger := rc.Logger.With(zap.String("item", item.Name()), zap.String("actor", item.Actor.Name()))
	var elements []Element
	for index, raw := range item.Rules() {
		src, err := ParseSource(raw)
		if err != nil {
			if !opts.SuppressWarnings {
				logger.Warn("[RULES] skipped rule element", zap.Int("index", index), zap.Error(err))
			}
			continue
		}

		def, ok := c.Lookup(src.Key)
		if !ok {
			if !opts.SuppressWarnings {
				logger.Warn("[RULES] unrecognized rule element key", zap.Int("index", index), zap.String("key", src.Key))
			}
			continue
		}

		el, err := build(rc, def, src, item, index, opts)
		if err != nil {
			if !opts.SuppressWarnings {
				logger.Warn("[RULES] failed to construct rule element", zap.Int("index", index), zap.String("key", src.Key), zap.Error(err))
			}
			continue
		}
		elements = append(elements, el)
	}

	ApplySiblingGates(elements)
	return elements
}

func build(rc *Context, def *Definition, src *Source, item *actor.Item, index int, opts BuildOptions) (el Element, err error) {
	defer func() {
		if r := recover(); r != nil {
			el, err = nil, fmt.Errorf("panic in %s constructor: %v", def.Key, r)
		}
	}()

	base := newBase(rc, def, src, item, index, opts)
	el, err = def.Build(base)
	if err != nil {
		return nil, err
	}
	if el == nil || el.Rule() == nil {
		return nil, fmt.Errorf("%s constructor returned no element", def.Key)
	}
	return el, nil
}

// ApplySiblingGates recomputes the suppressed flag of every source: while any
// gate on an item is unresolved, the item's other rules are suppressed
func ApplySiblingGates(elements []Element) {
	byItem := make(map[*actor.Item][]Element)
	var items []*actor.Item
	for _, el := range elements {
		item := el.Rule().Item()
		if _, ok := byItem[item]; !ok {
			items = append(items, item)
		}
		byItem[item] = append(byItem[item], el)
	}

	for _, item := range items {
		group := byItem[item]
		gated := false
		for _, el := range group {
			if gate, ok := el.(SiblingGate); ok && !el.Rule().IsInvalid() && gate.GatesSiblings() {
				gated = true
				break
			}
		}
		for _, el := range group {
			_, isGate := el.(SiblingGate)
			el.Rule().Source().Suppressed = gated && !isGate
		}
	}
}

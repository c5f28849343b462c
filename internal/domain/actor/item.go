package actor

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/rule-elements/internal/datatree"
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	"github.com/KirkDiggler/rule-elements/internal/predicate"
)

// Grant deletion policies
const (
	OnDeleteCascade  = "cascade"
	OnDeleteDetach   = "detach"
	OnDeleteRestrict = "restrict"
)

// GrantLink is one side of a granter/grantee relationship
type GrantLink struct {
	ID       string `json:"id"`
	OnDelete string `json:"onDelete"`
}

// Item is the working state of an item owned by an actor
type Item struct {
	Source *document.ItemSource
	Data   *datatree.Tree
	Actor  *Actor
}

func newItem(owner *Actor, src *document.ItemSource) (*Item, error) {
	clone := src.Clone()
	data := datatree.New(nil)
	for _, field := range []struct {
		path  string
		value any
	}{
		{"_id", clone.ID},
		{"name", clone.Name},
		{"type", clone.Type},
		{"img", clone.Img},
	} {
		if err := data.Set(field.path, field.value); err != nil {
			return nil, err
		}
	}
	if err := data.SetRaw("system", rawOrEmpty(clone.System)); err != nil {
		return nil, err
	}
	if err := data.SetRaw("flags", rawOrEmpty(clone.Flags)); err != nil {
		return nil, err
	}
	if err := data.Set("level", data.Float("system.level.value")); err != nil {
		return nil, err
	}
	return &Item{Source: clone, Data: data, Actor: owner}, nil
}

// NewDetachedItem wraps an item source that belongs to no actor
func NewDetachedItem(src *document.ItemSource) (*Item, error) {
	return newItem(nil, src)
}

// ID returns the item id
func (i *Item) ID() string {
	return i.Source.ID
}

// Name returns the item name
func (i *Item) Name() string {
	return i.Source.Name
}

// Type returns the item type
func (i *Item) Type() string {
	return i.Source.Type
}

// UUID identifies the item on its actor
func (i *Item) UUID() string {
	if i.Actor == nil {
		return "Item." + i.Source.ID
	}
	return fmt.Sprintf("Actor.%s.Item.%s", i.Actor.ID(), i.Source.ID)
}

// Slug returns system.slug, falling back to the slugified name
func (i *Item) Slug() string {
	if slug := i.Data.String("system.slug"); slug != "" {
		return slug
	}
	return document.Slugify(i.Source.Name)
}

// Get reads a path from the working data
func (i *Item) Get(path string) (any, bool) {
	return i.Data.Get(path)
}

// Level returns system.level.value
func (i *Item) Level() int {
	return int(i.Data.Float("system.level.value"))
}

// Traits returns system.traits.value
func (i *Item) Traits() []string {
	return stringList(i.Data, "system.traits.value")
}

// HasTrait reports whether the item carries trait
func (i *Item) HasTrait(trait string) bool {
	for _, t := range i.Traits() {
		if t == trait {
			return true
		}
	}
	return false
}

// IsPhysical reports whether the item exists in the world
func (i *Item) IsPhysical() bool {
	return document.IsPhysicalType(i.Source.Type)
}

// IsEquipped reports whether a physical item is worn or held
func (i *Item) IsEquipped() bool {
	if !i.IsPhysical() {
		return false
	}
	switch i.Data.String("system.equipped.carryType") {
	case "held":
		return i.Data.Float("system.equipped.handsHeld") > 0
	case "worn":
		inSlot := i.Data.Result("system.equipped.inSlot")
		return !inSlot.Exists() || inSlot.Bool()
	case "implanted":
		return true
	}
	return false
}

// IsInvested reports the investment state, or nil when the item cannot be invested
func (i *Item) IsInvested() *bool {
	if !i.IsPhysical() || !i.HasTrait("invested") {
		return nil
	}
	invested := i.IsEquipped() && i.Data.Result("system.equipped.invested").Bool()
	return &invested
}

// RollOptions lists the item's own options under prefix, such as "parent" or "item"
func (i *Item) RollOptions(prefix string) predicate.Options {
	opts := predicate.NewOptions(
		prefix+":id:"+i.Source.ID,
		prefix+":slug:"+i.Slug(),
		prefix+":type:"+i.Source.Type,
		prefix+":level:"+strconv.Itoa(i.Level()),
	)
	for _, trait := range i.Traits() {
		opts.Add(prefix + ":trait:" + trait)
	}
	if i.IsPhysical() && i.IsEquipped() {
		opts.Add(prefix + ":equipped")
	}
	if invested := i.IsInvested(); invested != nil && *invested {
		opts.Add(prefix + ":invested")
	}
	return opts
}

// Rules returns the authored rule sources
func (i *Item) Rules() []json.RawMessage {
	return i.Source.Rules()
}

// ActorRollOption is the option an item contributes to its actor, if any
func (i *Item) ActorRollOption() string {
	switch i.Source.Type {
	case "feat":
		return "feat:" + i.Slug()
	case "effect":
		return "self:effect:" + i.Slug()
	case "condition":
		return "self:condition:" + i.Slug()
	}
	return ""
}

// GrantedBy returns the grant link pointing at this item's granter
func (i *Item) GrantedBy() *GrantLink {
	res := i.Data.Result("flags.pf2e.grantedBy")
	if !res.IsObject() || res.Get("id").String() == "" {
		return nil
	}
	return &GrantLink{ID: res.Get("id").String(), OnDelete: res.Get("onDelete").String()}
}

// ItemGrants returns the grant links to items this item granted, by flag
func (i *Item) ItemGrants() map[string]GrantLink {
	out := make(map[string]GrantLink)
	i.Data.Result("flags.pf2e.itemGrants").ForEach(func(flag, v gjson.Result) bool {
		out[flag.String()] = GrantLink{ID: v.Get("id").String(), OnDelete: v.Get("onDelete").String()}
		return true
	})
	return out
}

// RulesSelection returns a recorded choice set selection
func (i *Item) RulesSelection(flag string) (any, bool) {
	return i.Data.Get("flags.pf2e.rulesSelections." + datatree.EscapeKey(flag))
}

// SetFlag writes a flag to both the source and the working data
func (i *Item) SetFlag(path string, v any) error {
	if err := i.Source.SetFlag(path, v); err != nil {
		return err
	}
	return i.Data.Set("flags."+path, v)
}

// DeleteFlag removes a flag from both the source and the working data
func (i *Item) DeleteFlag(path string) error {
	if err := i.Source.DeleteFlag(path); err != nil {
		return err
	}
	return i.Data.Delete("flags." + path)
}

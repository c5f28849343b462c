package rules

import (
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
)

// PendingItems is the batch of item sources being created together.
// Grants add to it and may replace their own granter.
type PendingItems struct {
	items []*document.ItemSource
}

// NewPendingItems starts a batch
func NewPendingItems(items ...*document.ItemSource) *PendingItems {
	p := &PendingItems{}
	for _, item := range items {
		p.Add(item)
	}
	return p
}

// Add appends an item
func (p *PendingItems) Add(item *document.ItemSource) {
	if item != nil {
		p.items = append(p.items, item)
	}
}

// Find returns the pending item with id
func (p *PendingItems) Find(id string) *document.ItemSource {
	for _, item := range p.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Contains reports whether the exact source is still pending
func (p *PendingItems) Contains(item *document.ItemSource) bool {
	for _, existing := range p.items {
		if existing == item {
			return true
		}
	}
	return false
}

// Remove drops the item with id and reports whether it was pending
func (p *PendingItems) Remove(id string) bool {
	for i, item := range p.items {
		if item.ID == id {
			p.items = append(p.items[:i], p.items[i+1:]...)
			return true
		}
	}
	return false
}

// Replace puts replacement where the item with id was
func (p *PendingItems) Replace(id string, replacement *document.ItemSource) bool {
	for i, item := range p.items {
		if item.ID == id {
			p.items[i] = replacement
			return true
		}
	}
	return false
}

// List returns the batch in order
func (p *PendingItems) List() []*document.ItemSource {
	return append([]*document.ItemSource(nil), p.items...)
}

// Len returns the batch size
func (p *PendingItems) Len() int {
	return len(p.items)
}

// DeletionSet is the ordered set of item ids being deleted together, plus
// the surviving items whose grant link must be cleared
type DeletionSet struct {
	order    []string
	set      map[string]bool
	detached []string
}

// NewDeletionSet starts a set from ids
func NewDeletionSet(ids ...string) *DeletionSet {
	d := &DeletionSet{set: make(map[string]bool)}
	for _, id := range ids {
		d.Add(id)
	}
	return d
}

// Add inserts id and reports whether it was new
func (d *DeletionSet) Add(id string) bool {
	if id == "" || d.set[id] {
		return false
	}
	d.set[id] = true
	d.order = append(d.order, id)
	return true
}

// Has reports whether id is being deleted
func (d *DeletionSet) Has(id string) bool {
	return d.set[id]
}

// IDs returns the ids in insertion order
func (d *DeletionSet) IDs() []string {
	return append([]string(nil), d.order...)
}

// Detach records that the surviving item id loses its grant link
func (d *DeletionSet) Detach(id string) {
	for _, existing := range d.detached {
		if existing == id {
			return
		}
	}
	d.detached = append(d.detached, id)
}

// Detached lists surviving items to unlink
func (d *DeletionSet) Detached() []string {
	return append([]string(nil), d.detached...)
}

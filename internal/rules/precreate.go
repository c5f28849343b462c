package rules

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/KirkDiggler/rule-elements/internal/datatree"
	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
)

// RunPreCreate runs the PreCreate hooks of one pending item in authored order.
// Each hook sees the edits of the hooks before it, and sibling gates are
// recomputed after every hook. A hook that cancels removes the item from the
// batch. Rules marked removeUponCreate are stripped from surviving items.
func RunPreCreate(ctx context.Context, rc *Context, owner *actor.Actor, src *document.ItemSource, pending *PendingItems, depth int, updates ActorUpdates) error {
	if src.ID == "" {
		src.ID = rc.IDs.New()
	}

	item, err := owner.Bind(src)
	if err != nil {
		return fmt.Errorf("failed to bind pending item %s: %w", src.Name, err)
	}

	elements := rc.Catalog.FromOwnedItem(rc, item, BuildOptions{SuppressWarnings: true})
	for _, el := range elements {
		if err := ctx.Err(); err != nil {
			return err
		}

		hook, ok := el.(PreCreateHook)
		if !ok || el.Rule().IsIgnored() {
			continue
		}

		rules := src.Rules()
		index := el.Rule().Index()
		if index >= len(rules) {
			continue
		}
		params := &PreCreateParams{
			ItemSource: src,
			RuleSource: datatree.New(rules[index]),
			Pending:    pending,
			Depth:      depth,
			Updates:    updates,
		}

		hookErr := Guard(rc.Logger, el, PhasePreCreate, func() error {
			return hook.PreCreate(ctx, params)
		})
		if err := src.SetRule(index, json.RawMessage(params.RuleSource.Bytes())); err != nil {
			return fmt.Errorf("failed to write back rule %d of %s: %w", index, src.Name, err)
		}

		if dnderr.IsCancelled(hookErr) {
			pending.Remove(src.ID)
			return nil
		}
		if !pending.Contains(src) {
			// Replaced by its own grant
			return nil
		}
		ApplySiblingGates(elements)
	}

	return stripRemovedUponCreate(src)
}

func stripRemovedUponCreate(src *document.ItemSource) error {
	rules := src.Rules()
	kept := make([]json.RawMessage, 0, len(rules))
	for _, raw := range rules {
		if parsed, err := ParseSource(raw); err == nil && parsed.RemoveUponCreate {
			continue
		}
		kept = append(kept, raw)
	}
	if len(kept) == len(rules) {
		return nil
	}
	return src.SetRules(kept)
}

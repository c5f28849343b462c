package preparation

import (
	"context"
	"maps"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
	"github.com/KirkDiggler/rule-elements/internal/rules"
	"github.com/KirkDiggler/rule-elements/internal/rules/kinds"
)

// CreateItems adds items to an actor after running their creation hooks.
// Grants may grow the batch or replace an item, and a declined choice drops
// its item.
func (s *service) CreateItems(ctx context.Context, actorID string, sources []*document.ItemSource) (*CreateResult, error) {
	if len(sources) == 0 {
		return nil, dnderr.InvalidArgument("at least one item is required")
	}

	var created []string
	src, err := s.modify(ctx, actorID, func(src *document.ActorSource) error {
		ids, err := s.createInto(ctx, src, sources)
		created = ids
		return err
	})
	if err != nil {
		return nil, err
	}
	return &CreateResult{Actor: src, Created: created}, nil
}

func (s *service) createInto(ctx context.Context, src *document.ActorSource, sources []*document.ItemSource) ([]string, error) {
	batch := make([]*document.ItemSource, len(sources))
	for i, item := range sources {
		if item == nil {
			return nil, dnderr.InvalidArgument("item source is required")
		}
		batch[i] = item.Clone()
		if batch[i].ID == "" {
			batch[i].ID = s.rc.IDs.New()
		}
		if src.Item(batch[i].ID) != nil {
			return nil, dnderr.AlreadyExistsf("item %s already exists on actor %s", batch[i].ID, src.ID).
				WithMeta("item_id", batch[i].ID)
		}
	}

	pass, err := s.prepare(ctx, src)
	if err != nil {
		return nil, err
	}

	pending := rules.NewPendingItems(batch...)
	updates := rules.ActorUpdates{}
	for _, item := range batch {
		if !pending.Contains(item) {
			continue
		}
		if err := rules.RunPreCreate(ctx, s.rc, pass.Actor, item, pending, 0, updates); err != nil {
			return nil, dnderr.Wrapf(err, "failed to create %s", item.Name)
		}
	}

	var ids []string
	for _, item := range pending.List() {
		src.Items = append(src.Items, item)
		ids = append(ids, item.ID)
	}
	if err := applyUpdates(src, updates); err != nil {
		return nil, err
	}
	if err := s.runOnCreate(ctx, src, ids); err != nil {
		return nil, err
	}

	s.logger.Info("[PREPARE] items created",
		zap.String("actor", src.ID),
		zap.Strings("items", ids),
		zap.Int("requested", len(sources)))
	return ids, nil
}

// runOnCreate re-prepares src and accumulates the creation updates of the
// given items only
func (s *service) runOnCreate(ctx context.Context, src *document.ActorSource, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	pass, err := s.prepare(ctx, src)
	if err != nil {
		return err
	}
	updates := rules.ActorUpdates{}
	rules.NewScheduler(s.logger, pass.ElementsOf(itemIDs...)).OnCreate(updates)
	return applyUpdates(src, updates)
}

// DeleteItems removes items and whatever their grants take with them
func (s *service) DeleteItems(ctx context.Context, actorID string, itemIDs []string) (*document.ActorSource, error) {
	if len(itemIDs) == 0 {
		return nil, dnderr.InvalidArgument("at least one item ID is required")
	}
	return s.modify(ctx, actorID, func(src *document.ActorSource) error {
		_, err := s.deleteFrom(ctx, src, itemIDs)
		return err
	})
}

func (s *service) deleteFrom(ctx context.Context, src *document.ActorSource, itemIDs []string) (*rules.DeletionSet, error) {
	pass, err := s.prepare(ctx, src)
	if err != nil {
		return nil, err
	}
	for _, id := range itemIDs {
		if pass.Actor.Item(id) == nil {
			return nil, dnderr.NotFoundf("item %s not found on actor %s", id, src.ID).
				WithMeta("item_id", id)
		}
	}

	set := rules.NewDeletionSet(itemIDs...)
	if err := kinds.ProcessGrantDeletions(pass.Actor, set); err != nil {
		return nil, err
	}

	params := &rules.PreDeleteParams{Deleting: set}
	for i := 0; i < len(set.IDs()); i++ {
		for _, el := range pass.ElementsOf(set.IDs()[i]) {
			hook, ok := el.(rules.PreDeleteHook)
			if !ok || el.Rule().IsInvalid() {
				continue
			}
			err := rules.Guard(s.logger, el, rules.PhasePreDelete, func() error {
				return hook.PreDelete(ctx, params)
			})
			if dnderr.IsRestricted(err) {
				return nil, err
			}
		}
	}
	// Hooks may have widened the set
	if err := kinds.ProcessGrantDeletions(pass.Actor, set); err != nil {
		return nil, err
	}

	updates := rules.ActorUpdates{}
	rules.NewScheduler(s.logger, pass.ElementsOf(set.IDs()...)).OnDelete(updates)

	for _, id := range set.IDs() {
		src.RemoveItem(id)
	}
	for _, id := range set.Detached() {
		if item := src.Item(id); item != nil {
			if err := unlinkDeleted(item, set); err != nil {
				return nil, err
			}
		}
	}
	if err := applyUpdates(src, updates); err != nil {
		return nil, err
	}

	s.logger.Info("[PREPARE] items deleted",
		zap.String("actor", src.ID),
		zap.Strings("items", set.IDs()),
		zap.Strings("detached", set.Detached()))
	return set, nil
}

// UpdateItem runs the item's update hooks, applies the changes and then
// reconciles conditional grants
func (s *service) UpdateItem(ctx context.Context, actorID, itemID string, changes map[string]any) (*document.ActorSource, error) {
	if itemID == "" {
		return nil, dnderr.InvalidArgument("item ID is required")
	}
	changes = maps.Clone(changes)

	return s.modify(ctx, actorID, func(src *document.ActorSource) error {
		item := src.Item(itemID)
		if item == nil {
			return dnderr.NotFoundf("item %s not found on actor %s", itemID, src.ID).
				WithMeta("item_id", itemID)
		}

		pass, err := s.prepare(ctx, src)
		if err != nil {
			return err
		}
		for _, el := range pass.ElementsOf(itemID) {
			hook, ok := el.(rules.PreUpdateHook)
			if !ok || el.Rule().IsInvalid() {
				continue
			}
			_ = rules.Guard(s.logger, el, rules.PhasePreUpdate, func() error {
				return hook.PreUpdate(ctx, changes)
			})
		}

		if err := applyItemChanges(item, changes); err != nil {
			return err
		}
		return s.reconcile(ctx, src)
	})
}

// UpdateActor applies changes to the actor and reconciles conditional grants
func (s *service) UpdateActor(ctx context.Context, actorID string, changes map[string]any) (*document.ActorSource, error) {
	return s.modify(ctx, actorID, func(src *document.ActorSource) error {
		if err := applyUpdates(src, changes); err != nil {
			return dnderr.InvalidArgument(err.Error())
		}
		return s.reconcile(ctx, src)
	})
}

// reconcile asks every element which items should now exist and makes it so
func (s *service) reconcile(ctx context.Context, src *document.ActorSource) error {
	pass, err := s.prepare(ctx, src)
	if err != nil {
		return err
	}
	result := pass.Scheduler.PreUpdateActor(ctx)

	for _, updated := range result.Update {
		replaceItem(src, updated)
	}

	var created []string
	for _, item := range result.Create {
		if src.Item(item.ID) != nil {
			continue
		}
		src.Items = append(src.Items, item)
		created = append(created, item.ID)
	}

	var deleting []string
	seen := make(map[string]bool)
	for _, id := range result.Delete {
		if !seen[id] && src.Item(id) != nil {
			seen[id] = true
			deleting = append(deleting, id)
		}
	}
	if len(deleting) > 0 {
		if _, err := s.deleteFrom(ctx, src, deleting); err != nil {
			return err
		}
	}

	if len(created) > 0 || len(deleting) > 0 {
		s.logger.Info("[PREPARE] actor reconciled",
			zap.String("actor", src.ID),
			zap.Strings("created", created),
			zap.Strings("deleted", deleting))
	}
	return s.runOnCreate(ctx, src, created)
}

// StartTurn applies start-of-turn effects
func (s *service) StartTurn(ctx context.Context, actorID string) (*document.ActorSource, error) {
	return s.modify(ctx, actorID, func(src *document.ActorSource) error {
		pass, err := s.prepare(ctx, src)
		if err != nil {
			return err
		}
		updates := rules.ActorUpdates{}
		pass.Scheduler.OnTurnStart(updates)
		return applyUpdates(src, updates)
	})
}

// ToggleRollOption persists a toggle's state into the rule sources that
// registered it
func (s *service) ToggleRollOption(ctx context.Context, actorID string, req *ToggleRequest) (*document.ActorSource, error) {
	if req == nil || req.Option == "" {
		return nil, dnderr.InvalidArgument("toggle option is required")
	}
	domain := req.Domain
	if domain == "" {
		domain = actor.DomainAll
	}

	return s.modify(ctx, actorID, func(src *document.ActorSource) error {
		pass, err := s.prepare(ctx, src)
		if err != nil {
			return err
		}

		matched, hasSuboption := 0, false
		for _, el := range pass.Elements() {
			ro, ok := el.(*kinds.RollOption)
			if !ok || !ro.Toggleable || ro.IsInvalid() {
				continue
			}
			if req.ItemID != "" && ro.Item().ID() != req.ItemID {
				continue
			}
			if ro.ResolveInjectedString(ro.Domain) != domain || ro.ResolveInjectedString(ro.Option) != req.Option {
				continue
			}

			item := src.Item(ro.Item().ID())
			if err := setRuleField(item, ro.Index(), "value", req.Value); err != nil {
				return err
			}
			if req.Suboption != "" && ro.HasSuboption(req.Suboption) {
				hasSuboption = true
				if err := setRuleField(item, ro.Index(), "selection", req.Suboption); err != nil {
					return err
				}
			}
			matched++
		}

		if matched == 0 {
			return dnderr.NotFoundf("no toggle %s at domain %s on actor %s", req.Option, domain, src.ID).
				WithMeta("option", req.Option)
		}
		if req.Suboption != "" && !hasSuboption {
			return dnderr.InvalidArgumentf("%q is not a suboption of %s", req.Suboption, req.Option)
		}
		return nil
	})
}

// CompleteRoll runs after-roll hooks, then persists the rule changes and item
// removals they requested
func (s *service) CompleteRoll(ctx context.Context, actorID string, params *rules.AfterRollParams) (*document.ActorSource, error) {
	if params == nil {
		return nil, dnderr.InvalidArgument("roll parameters are required")
	}

	return s.modify(ctx, actorID, func(src *document.ActorSource) error {
		pass, err := s.prepare(ctx, src)
		if err != nil {
			return err
		}
		pass.AfterRoll(ctx, params)

		for _, update := range params.RuleUpdates() {
			item := src.Item(update.ItemID)
			if item == nil {
				continue
			}
			if err := setRuleField(item, update.Index, update.Field, update.Value); err != nil {
				return err
			}
		}

		var removed []string
		for _, id := range params.Removed() {
			if src.Item(id) != nil {
				removed = append(removed, id)
			}
		}
		if len(removed) == 0 {
			return nil
		}
		_, err = s.deleteFrom(ctx, src, removed)
		return err
	})
}

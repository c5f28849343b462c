package rules

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
	"github.com/KirkDiggler/rule-elements/internal/predicate"
)

// Phase names used in log lines
const (
	PhaseApplyActiveEffects = "onApplyActiveEffects"
	PhaseBeforePrepareData  = "beforePrepareData"
	PhaseAfterPrepareData   = "afterPrepareData"
	PhaseBeforeRoll         = "beforeRoll"
	PhaseAfterRoll          = "afterRoll"
	PhasePreCreate          = "preCreate"
	PhasePreDelete          = "preDelete"
	PhasePreUpdate          = "preUpdate"
	PhasePreUpdateActor     = "preUpdateActor"
	PhaseOnCreate           = "onCreate"
	PhaseOnDelete           = "onDelete"
	PhaseOnTurnStart        = "onTurnStart"
)

// Scheduler invokes phase hooks in ascending priority. Ties keep the order
// elements were given in, which is item order then authored order.
type Scheduler struct {
	logger   *zap.Logger
	elements []Element
}

// NewScheduler sorts elements by priority
func NewScheduler(logger *zap.Logger, elements []Element) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	sorted := append([]Element(nil), elements...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rule().Priority < sorted[j].Rule().Priority
	})
	return &Scheduler{logger: logger, elements: sorted}
}

// Elements returns the elements in application order
func (s *Scheduler) Elements() []Element {
	return append([]Element(nil), s.elements...)
}

// Guard runs fn for el, converting a panic into an error and ignoring el
func Guard(logger *zap.Logger, el Element, phase string, fn func() error) (err error) {
	base := el.Rule()
	defer func() {
		if r := recover(); r != nil {
			base.Ignore()
			err = fmt.Errorf("panic in %s %s: %v", base.Key, phase, r)
		}
		if err == nil {
			return
		}
		fields := []zap.Field{
			zap.String("phase", phase),
			zap.String("key", base.Key),
			zap.String("item", base.Item().Name()),
			zap.Int("index", base.Index()),
			zap.Error(err),
		}
		if dnderr.IsCancelled(err) {
			logger.Info("[RULES] rule element cancelled the operation", fields...)
			return
		}
		logger.Error("[RULES] rule element hook failed", fields...)
	}()
	return fn()
}

func (s *Scheduler) each(phase string, fn func(el Element) error) {
	for _, el := range s.elements {
		if el.Rule().IsIgnored() {
			continue
		}
		_ = Guard(s.logger, el, phase, func() error { return fn(el) })
	}
}

// ApplyActiveEffects runs every OnApplyActiveEffects hook
func (s *Scheduler) ApplyActiveEffects() {
	s.each(PhaseApplyActiveEffects, func(el Element) error {
		if h, ok := el.(ActiveEffectsApplier); ok {
			h.OnApplyActiveEffects()
		}
		return nil
	})
}

// BeforePrepareData runs every BeforePrepareData hook
func (s *Scheduler) BeforePrepareData() {
	s.each(PhaseBeforePrepareData, func(el Element) error {
		if h, ok := el.(BeforePrepareDataHook); ok {
			h.BeforePrepareData()
		}
		return nil
	})
}

// AfterPrepareData runs every AfterPrepareData hook
func (s *Scheduler) AfterPrepareData() {
	s.each(PhaseAfterPrepareData, func(el Element) error {
		if h, ok := el.(AfterPrepareDataHook); ok {
			h.AfterPrepareData()
		}
		return nil
	})
}

// BeforeRoll lets elements edit options just before a roll
func (s *Scheduler) BeforeRoll(domains []string, options predicate.Options) {
	s.each(PhaseBeforeRoll, func(el Element) error {
		if h, ok := el.(BeforeRollHook); ok {
			h.BeforeRoll(domains, options)
		}
		return nil
	})
}

// AfterRoll runs every AfterRoll hook. Hook errors are logged and do not
// stop later hooks.
func (s *Scheduler) AfterRoll(ctx context.Context, params *AfterRollParams) {
	s.each(PhaseAfterRoll, func(el Element) error {
		if h, ok := el.(AfterRollHook); ok {
			return h.AfterRoll(ctx, params)
		}
		return nil
	})
}

// PreUpdateActor collects the items every element wants created, replaced or deleted
func (s *Scheduler) PreUpdateActor(ctx context.Context) *ActorUpdateResult {
	out := &ActorUpdateResult{}
	for _, el := range s.elements {
		h, ok := el.(PreUpdateActorHook)
		if !ok || el.Rule().IsInvalid() {
			continue
		}
		_ = Guard(s.logger, el, PhasePreUpdateActor, func() error {
			res, err := h.PreUpdateActor(ctx)
			if err != nil {
				return err
			}
			if res != nil {
				out.Create = append(out.Create, res.Create...)
				out.Update = append(out.Update, res.Update...)
				out.Delete = append(out.Delete, res.Delete...)
			}
			return nil
		})
	}
	return out
}

// OnCreate accumulates creation updates
func (s *Scheduler) OnCreate(updates ActorUpdates) {
	s.each(PhaseOnCreate, func(el Element) error {
		if h, ok := el.(OnCreateHook); ok {
			h.OnCreate(updates)
		}
		return nil
	})
}

// OnDelete accumulates deletion updates
func (s *Scheduler) OnDelete(updates ActorUpdates) {
	s.each(PhaseOnDelete, func(el Element) error {
		if h, ok := el.(OnDeleteHook); ok {
			h.OnDelete(updates)
		}
		return nil
	})
}

// OnTurnStart accumulates turn start updates
func (s *Scheduler) OnTurnStart(updates ActorUpdates) {
	s.each(PhaseOnTurnStart, func(el Element) error {
		if h, ok := el.(OnTurnStartHook); ok {
			h.OnTurnStart(updates)
		}
		return nil
	})
}

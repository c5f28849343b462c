// Package preparation drives rule elements through data preparation and
// through the item and actor lifecycle of stored actors.
package preparation

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
	"github.com/KirkDiggler/rule-elements/internal/repositories/actors"
	"github.com/KirkDiggler/rule-elements/internal/rules"
	"github.com/KirkDiggler/rule-elements/internal/synthetics"
)

// Service defines the preparation service interface
type Service interface {
	// Prepare runs a full preparation pass over a snapshot of src
	Prepare(ctx context.Context, src *document.ActorSource) (*Pass, error)

	// PrepareByID loads a stored actor and prepares it
	PrepareByID(ctx context.Context, actorID string) (*Pass, error)

	// PrepareAll prepares many actors concurrently, one snapshot each
	PrepareAll(ctx context.Context, sources []*document.ActorSource) ([]*Pass, error)

	// CreateItems adds items to an actor after running their creation hooks
	CreateItems(ctx context.Context, actorID string, sources []*document.ItemSource) (*CreateResult, error)

	// DeleteItems removes items and whatever their grants take with them
	DeleteItems(ctx context.Context, actorID string, itemIDs []string) (*document.ActorSource, error)

	// UpdateItem applies changes to one owned item
	UpdateItem(ctx context.Context, actorID, itemID string, changes map[string]any) (*document.ActorSource, error)

	// UpdateActor applies changes to the actor and reconciles conditional grants
	UpdateActor(ctx context.Context, actorID string, changes map[string]any) (*document.ActorSource, error)

	// StartTurn applies start-of-turn effects
	StartTurn(ctx context.Context, actorID string) (*document.ActorSource, error)

	// ToggleRollOption persists a toggle's state into its rule sources
	ToggleRollOption(ctx context.Context, actorID string, req *ToggleRequest) (*document.ActorSource, error)

	// CompleteRoll runs after-roll hooks and persists what they asked for
	CompleteRoll(ctx context.Context, actorID string, params *rules.AfterRollParams) (*document.ActorSource, error)
}

// WarningSink receives the warnings of every pass
type WarningSink = synthetics.WarningSink

// ToggleRequest identifies a toggle and its new state
type ToggleRequest struct {
	Domain string
	Option string
	// ItemID limits the change to one item's rules; empty changes the whole family
	ItemID    string
	Value     bool
	Suboption string
}

// CreateResult reports the outcome of CreateItems
type CreateResult struct {
	Actor *document.ActorSource
	// Created lists the ids of every item added, grants included
	Created []string
}

// service implements the Service interface
type service struct {
	repository  actors.Repository
	rc          *rules.Context
	warnings    WarningSink
	derivedData func(a *actor.Actor)
	logger      *zap.Logger
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository actors.Repository // Required
	Context    *rules.Context    // Required
	Warnings   WarningSink       // Optional, warnings are dropped if nil
	// DerivedData runs between the before and after preparation phases
	DerivedData func(a *actor.Actor)
}

// NewService creates a new preparation service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.Context == nil {
		panic("rules context is required")
	}

	return &service{
		repository:  cfg.Repository,
		rc:          cfg.Context,
		warnings:    cfg.Warnings,
		derivedData: cfg.DerivedData,
		logger:      cfg.Context.Logger,
	}
}

// Prepare runs a full preparation pass over a snapshot of src
func (s *service) Prepare(ctx context.Context, src *document.ActorSource) (*Pass, error) {
	if src == nil {
		return nil, dnderr.InvalidArgument("actor source is required")
	}
	return s.prepare(ctx, src)
}

// PrepareByID loads a stored actor and prepares it
func (s *service) PrepareByID(ctx context.Context, actorID string) (*Pass, error) {
	src, err := s.load(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.prepare(ctx, src)
}

// PrepareAll prepares many actors concurrently, one snapshot each
func (s *service) PrepareAll(ctx context.Context, sources []*document.ActorSource) ([]*Pass, error) {
	passes := make([]*Pass, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			pass, err := s.Prepare(gctx, src)
			if err != nil {
				return err
			}
			passes[i] = pass
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return passes, nil
}

// prepare resets a snapshot of src, builds its rule elements and runs the
// preparation phases in order
func (s *service) prepare(ctx context.Context, src *document.ActorSource) (*Pass, error) {
	if err := ctx.Err(); err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeCancelled, "preparation cancelled")
	}

	a, err := actor.New(src)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to prepare actor %s", src.ID)
	}

	opts := rules.BuildOptions{SuppressWarnings: s.rc.Settings.SuppressWarnings}
	var elements []rules.Element
	for _, item := range a.Items {
		elements = append(elements, s.rc.Catalog.FromOwnedItem(s.rc, item, opts)...)
	}

	pass := &Pass{Actor: a, Scheduler: rules.NewScheduler(s.logger, elements)}
	pass.Scheduler.ApplyActiveEffects()
	pass.Scheduler.BeforePrepareData()
	if s.derivedData != nil {
		s.derivedData(a)
	}
	pass.Scheduler.AfterPrepareData()

	if s.warnings != nil && !s.rc.Settings.SuppressWarnings {
		a.Synthetics.Warnings.Flush(s.warnings)
	}

	s.logger.Debug("[PREPARE] pass complete",
		zap.String("actor", a.ID()),
		zap.Int("elements", len(elements)),
		zap.Int("warnings", a.Synthetics.Warnings.Len()))
	return pass, nil
}

func (s *service) load(ctx context.Context, actorID string) (*document.ActorSource, error) {
	if actorID == "" {
		return nil, dnderr.InvalidArgument("actor ID is required")
	}
	src, err := s.repository.Get(ctx, actorID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to load actor %s", actorID)
	}
	return src, nil
}

func (s *service) save(ctx context.Context, src *document.ActorSource) error {
	if err := s.repository.Put(ctx, src); err != nil {
		return dnderr.Wrapf(err, "failed to save actor %s", src.ID)
	}
	return nil
}

// modify loads an actor, lets fn change the source and saves the result
func (s *service) modify(ctx context.Context, actorID string, fn func(src *document.ActorSource) error) (*document.ActorSource, error) {
	src, err := s.load(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := fn(src); err != nil {
		return nil, err
	}
	if err := s.save(ctx, src); err != nil {
		return nil, err
	}
	return src, nil
}

func applyUpdates(src *document.ActorSource, updates rules.ActorUpdates) error {
	if len(updates) == 0 {
		return nil
	}
	if err := src.Apply(updates); err != nil {
		return dnderr.Wrapf(err, "failed to update actor %s", src.ID)
	}
	return nil
}

package kinds

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	"github.com/KirkDiggler/rule-elements/internal/prompt"
	"github.com/KirkDiggler/rule-elements/internal/repositories/compendium"
	"github.com/KirkDiggler/rule-elements/internal/rules"
	"github.com/KirkDiggler/rule-elements/internal/testutils"
)

type seqIDs struct {
	n int
}

func (s *seqIDs) New() string {
	s.n++
	return fmt.Sprintf("generated%04d", s.n)
}

type harness struct {
	t     *testing.T
	rc    *rules.Context
	packs *compendium.InMemoryRepository
	logs  *observer.ObservedLogs
}

type harnessOption func(cfg *rules.ContextConfig)

func withChooser(c prompt.Chooser) harnessOption {
	return func(cfg *rules.ContextConfig) { cfg.Chooser = c }
}

func withMaxGrantDepth(depth int) harnessOption {
	return func(cfg *rules.ContextConfig) {
		cfg.Settings = &rules.Settings{MaxGrantDepth: depth, SchemaVersion: 0.9}
	}
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	catalog, err := NewCatalog()
	require.NoError(t, err)
	core, logs := observer.New(zap.InfoLevel)
	packs := compendium.NewInMemoryRepository()

	cfg := &rules.ContextConfig{
		Logger:     zap.New(core),
		Compendium: packs,
		IDs:        &seqIDs{},
		Catalog:    catalog,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	rc, err := rules.NewContext(cfg)
	require.NoError(t, err)

	return &harness{t: t, rc: rc, packs: packs, logs: logs}
}

// build constructs the elements of every item on the actor
func (h *harness) build(src *document.ActorSource) (*actor.Actor, *rules.Scheduler) {
	h.t.Helper()
	a := testutils.PrepareTestActor(h.t, src)
	var elements []rules.Element
	for _, item := range a.Items {
		elements = append(elements, h.rc.Catalog.FromOwnedItem(h.rc, item, rules.BuildOptions{})...)
	}
	return a, rules.NewScheduler(h.rc.Logger, elements)
}

// prepare builds the actor and runs the data preparation phases
func (h *harness) prepare(src *document.ActorSource) (*actor.Actor, *rules.Scheduler) {
	h.t.Helper()
	a, s := h.build(src)
	s.ApplyActiveEffects()
	s.BeforePrepareData()
	s.AfterPrepareData()
	return a, s
}

// character prepares a level 5 character owning items
func (h *harness) character(items ...*document.ItemSource) (*actor.Actor, *rules.Scheduler) {
	h.t.Helper()
	return h.prepare(testutils.CreateTestCharacter("actor1", "Valeros", 5, items...))
}

func (h *harness) stock(pack string, items ...*document.ItemSource) {
	h.t.Helper()
	for _, item := range items {
		require.NoError(h.t, h.packs.Put(context.Background(), pack, item))
	}
}

// create runs creation hooks for src on a and returns the surviving batch
func (h *harness) create(a *actor.Actor, src *document.ItemSource) (*rules.PendingItems, rules.ActorUpdates) {
	h.t.Helper()
	pending := rules.NewPendingItems(src)
	updates := rules.ActorUpdates{}
	require.NoError(h.t, rules.RunPreCreate(context.Background(), h.rc, a, src, pending, 0, updates))
	return pending, updates
}

func feat(id, name string, rules ...string) *document.ItemSource {
	return testutils.CreateTestItem(id, name, "feat", rules...)
}

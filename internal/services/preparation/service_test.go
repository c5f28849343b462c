package preparation_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
	"github.com/KirkDiggler/rule-elements/internal/predicate"
	mockactors "github.com/KirkDiggler/rule-elements/internal/repositories/actors/mocks"
	"github.com/KirkDiggler/rule-elements/internal/repositories/compendium"
	"github.com/KirkDiggler/rule-elements/internal/rules"
	"github.com/KirkDiggler/rule-elements/internal/rules/kinds"
	"github.com/KirkDiggler/rule-elements/internal/services/preparation"
	"github.com/KirkDiggler/rule-elements/internal/synthetics"
	"github.com/KirkDiggler/rule-elements/internal/testutils"
	mockuuid "github.com/KirkDiggler/rule-elements/internal/uuid/mocks"
)

const (
	featsPack      = "pf2e.feats-srd"
	shieldBlockURI = "Compendium.pf2e.feats-srd.Item.shield-block"
)

type recordingSink struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingSink) Warn(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

// PreparationServiceTestSuite defines the test suite for the preparation service
type PreparationServiceTestSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	mockRepository *mockactors.MockRepository
	mockIDs        *mockuuid.MockGenerator
	packs          *compendium.InMemoryRepository
	sink           *recordingSink
	derived        atomic.Int32
	service        preparation.Service
	ctx            context.Context
	saved          *document.ActorSource
}

// SetupTest runs before each test
func (s *PreparationServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRepository = mockactors.NewMockRepository(s.ctrl)
	s.mockIDs = mockuuid.NewMockGenerator(s.ctrl)
	s.packs = compendium.NewInMemoryRepository()
	s.sink = &recordingSink{}
	s.derived.Store(0)
	s.saved = nil
	s.ctx = context.Background()

	catalog, err := kinds.NewCatalog()
	s.Require().NoError(err)
	rc, err := rules.NewContext(&rules.ContextConfig{
		Logger:     zap.NewNop(),
		Compendium: s.packs,
		IDs:        s.mockIDs,
		Catalog:    catalog,
	})
	s.Require().NoError(err)

	s.service = preparation.NewService(&preparation.ServiceConfig{
		Repository:  s.mockRepository,
		Context:     rc,
		Warnings:    s.sink,
		DerivedData: func(*actor.Actor) { s.derived.Add(1) },
	})
}

// TearDownTest runs after each test
func (s *PreparationServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

// Test suite runner
func TestPreparationServiceSuite(t *testing.T) {
	suite.Run(t, new(PreparationServiceTestSuite))
}

// stored makes the repository return src and capture what is saved
func (s *PreparationServiceTestSuite) stored(src *document.ActorSource) {
	s.mockRepository.EXPECT().Get(s.ctx, src.ID).Return(src, nil)
	s.mockRepository.EXPECT().Put(s.ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, saved *document.ActorSource) error {
			s.saved = saved.Clone()
			return nil
		})
}

func feat(id, name string, rules ...string) *document.ItemSource {
	return testutils.CreateTestItem(id, name, "feat", rules...)
}

// linkedPair builds an actor owning a granter and its grantee. rule replaces
// the granter's default GrantItem source.
func (s *PreparationServiceTestSuite) linkedPair(granteePolicy, granterPolicy string, rule ...string) *document.ActorSource {
	if len(rule) == 0 {
		rule = []string{`{"key":"GrantItem","uuid":"` + shieldBlockURI + `","flag":"shieldBlock"}`}
	}
	granter := feat("dedication", "Fighter Dedication", rule...)
	grantee := feat("granted", "Shield Block")
	s.Require().NoError(granter.SetFlag("pf2e.itemGrants.shieldBlock", actor.GrantLink{ID: "granted", OnDelete: granteePolicy}))
	s.Require().NoError(grantee.SetFlag("pf2e.grantedBy", actor.GrantLink{ID: "dedication", OnDelete: granterPolicy}))
	return testutils.CreateTestCharacter("actor1", "Valeros", 5, granter, grantee)
}

// Prepare Tests

func (s *PreparationServiceTestSuite) TestPrepare_RunsEveryPhase() {
	src := testutils.CreateTestCharacter("actor1", "Valeros", 5,
		feat("item1", "Ring of Protection", `{"key":"FlatModifier","selector":"ac","value":2}`),
		feat("item2", "Flagged", `{"key":"RollOption","option":"my-flag"}`),
	)

	pass, err := s.service.Prepare(s.ctx, src)
	s.Require().NoError(err)

	s.Equal(int32(1), s.derived.Load())
	s.Len(pass.Elements(), 2)
	s.Len(pass.ElementsOf("item1"), 1)
	s.True(pass.Actor.GetRollOptions().Has("my-flag"))

	mods := synthetics.ExtractModifiers(pass.Actor.Synthetics, []string{"ac"}, synthetics.RollContext{Options: pass.Actor.GetRollOptions()})
	s.Require().Len(mods, 1)
	s.Equal(2, mods[0].Value)
	s.Empty(s.sink.messages)

	// The caller's source is never modified
	s.Len(src.Items, 2)
	s.NotSame(src, pass.Actor.Source)
}

func (s *PreparationServiceTestSuite) TestPrepare_ForwardsWarnings() {
	src := testutils.CreateTestCharacter("actor1", "Valeros", 5,
		feat("item1", "Cryptic Note", `{"key":"RollNote","selector":"attack","text":"{item|nonexistent.path}"}`))

	pass, err := s.service.Prepare(s.ctx, src)
	s.Require().NoError(err)

	s.Len(pass.Warnings(), 1)
	s.Equal(pass.Warnings(), s.sink.messages)
}

func (s *PreparationServiceTestSuite) TestPrepare_RequiresSource() {
	_, err := s.service.Prepare(s.ctx, nil)
	s.True(dnderr.IsInvalidArgument(err))
}

func (s *PreparationServiceTestSuite) TestPrepare_Cancelled() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.service.Prepare(ctx, testutils.CreateTestCharacter("actor1", "Valeros", 5))
	s.True(dnderr.IsCancelled(err))
}

func (s *PreparationServiceTestSuite) TestPrepareByID_NotFound() {
	s.mockRepository.EXPECT().Get(s.ctx, "missing").Return(nil, dnderr.NotFound("actor not found"))

	_, err := s.service.PrepareByID(s.ctx, "missing")
	s.True(dnderr.IsNotFound(err))
}

func (s *PreparationServiceTestSuite) TestPrepareAll_KeepsInputOrder() {
	sources := []*document.ActorSource{
		testutils.CreateTestCharacter("actor1", "Valeros", 5),
		testutils.CreateTestCharacter("actor2", "Kyra", 3),
		testutils.CreateTestCharacter("actor3", "Merisiel", 7),
	}

	passes, err := s.service.PrepareAll(s.ctx, sources)
	s.Require().NoError(err)
	s.Require().Len(passes, 3)
	for i, pass := range passes {
		s.Equal(sources[i].ID, pass.Actor.ID())
	}
	s.True(passes[1].Actor.GetRollOptions().Has("self:level:3"))
}

func (s *PreparationServiceTestSuite) TestPass_BeforeRoll() {
	pass, err := s.service.Prepare(s.ctx, testutils.CreateTestCharacter("actor1", "Valeros", 5,
		feat("item1", "Flanking Expert", `{"key":"RollOption","domain":"attack-roll","option":"flanking"}`)))
	s.Require().NoError(err)

	options := pass.BeforeRoll([]string{"attack-roll"}, nil)
	s.True(options.Has("flanking"))
	s.True(options.Has("self:level:5"))

	damage := pass.BeforeRoll([]string{"damage"}, nil)
	s.False(damage.Has("flanking"))
}

// CreateItems Tests

func (s *PreparationServiceTestSuite) TestCreateItems_AppliesCreationUpdates() {
	s.stored(testutils.CreateTestCharacter("actor1", "Valeros", 5))

	res, err := s.service.CreateItems(s.ctx, "actor1", []*document.ItemSource{
		feat("item1", "False Life", `{"key":"TempHP","value":5}`),
	})
	s.Require().NoError(err)

	s.Equal([]string{"item1"}, res.Created)
	s.Require().NotNil(s.saved)
	s.Len(s.saved.Items, 1)
	s.Equal(5.0, gjsonFloat(s.saved.System, "attributes.hp.temp"))
	s.Equal("item1", gjsonString(s.saved.Flags, "pf2e.tempHPSource"))
}

func (s *PreparationServiceTestSuite) TestCreateItems_GrantsJoinTheBatch() {
	s.Require().NoError(s.packs.Put(s.ctx, featsPack, feat("shield-block", "Shield Block")))
	s.mockIDs.EXPECT().New().Return("granted01")
	s.stored(testutils.CreateTestCharacter("actor1", "Valeros", 5))

	res, err := s.service.CreateItems(s.ctx, "actor1", []*document.ItemSource{
		feat("dedication", "Fighter Dedication", `{"key":"GrantItem","uuid":"`+shieldBlockURI+`"}`),
	})
	s.Require().NoError(err)

	s.Equal([]string{"dedication", "granted01"}, res.Created)
	s.Require().Len(s.saved.Items, 2)
	s.Equal("granted01", s.saved.Item("dedication").Flag("pf2e.itemGrants.shieldBlock.id").String())
	s.Equal("dedication", s.saved.Item("granted01").Flag("pf2e.grantedBy.id").String())
}

func (s *PreparationServiceTestSuite) TestCreateItems_AssignsMissingIDs() {
	s.mockIDs.EXPECT().New().Return("fresh0001")
	s.stored(testutils.CreateTestCharacter("actor1", "Valeros", 5))

	res, err := s.service.CreateItems(s.ctx, "actor1", []*document.ItemSource{feat("", "Plain Feat")})
	s.Require().NoError(err)
	s.Equal([]string{"fresh0001"}, res.Created)
}

func (s *PreparationServiceTestSuite) TestCreateItems_DeclinedChoiceDropsItem() {
	s.stored(testutils.CreateTestCharacter("actor1", "Valeros", 5))

	res, err := s.service.CreateItems(s.ctx, "actor1", []*document.ItemSource{
		feat("item1", "Indecisive", `{"key":"ChoiceSet","flag":"pick","choices":["a","b"]}`),
		feat("item2", "Plain Feat"),
	})
	s.Require().NoError(err)

	s.Equal([]string{"item2"}, res.Created)
	s.Require().Len(s.saved.Items, 1)
	s.Equal("item2", s.saved.Items[0].ID)
}

func (s *PreparationServiceTestSuite) TestCreateItems_RejectsDuplicateID() {
	src := testutils.CreateTestCharacter("actor1", "Valeros", 5, feat("item1", "Existing"))
	s.mockRepository.EXPECT().Get(s.ctx, "actor1").Return(src, nil)

	_, err := s.service.CreateItems(s.ctx, "actor1", []*document.ItemSource{feat("item1", "Again")})
	s.True(dnderr.IsAlreadyExists(err))
}

func (s *PreparationServiceTestSuite) TestCreateItems_SaveFailure() {
	s.mockRepository.EXPECT().Get(s.ctx, "actor1").Return(testutils.CreateTestCharacter("actor1", "Valeros", 5), nil)
	s.mockRepository.EXPECT().Put(s.ctx, gomock.Any()).Return(dnderr.WrapWithCode(errors.New("redis down"), dnderr.CodeUnavailable, "failed to store actor"))

	_, err := s.service.CreateItems(s.ctx, "actor1", []*document.ItemSource{feat("item1", "Plain Feat")})
	s.Require().Error(err)
	s.Equal(dnderr.CodeUnavailable, dnderr.GetCode(err))
}

func (s *PreparationServiceTestSuite) TestCreateItems_RequiresItems() {
	_, err := s.service.CreateItems(s.ctx, "actor1", nil)
	s.True(dnderr.IsInvalidArgument(err))
}

// DeleteItems Tests

func (s *PreparationServiceTestSuite) TestDeleteItems_GranterCascades() {
	s.stored(s.linkedPair(actor.OnDeleteCascade, actor.OnDeleteDetach))

	_, err := s.service.DeleteItems(s.ctx, "actor1", []string{"dedication"})
	s.Require().NoError(err)
	s.Empty(s.saved.Items)
}

func (s *PreparationServiceTestSuite) TestDeleteItems_GranteeDetaches() {
	s.stored(s.linkedPair(actor.OnDeleteCascade, actor.OnDeleteDetach))

	_, err := s.service.DeleteItems(s.ctx, "actor1", []string{"granted"})
	s.Require().NoError(err)

	s.Require().Len(s.saved.Items, 1)
	granter := s.saved.Item("dedication")
	s.Require().NotNil(granter)
	s.False(granter.Flag("pf2e.itemGrants.shieldBlock").Exists())
}

func (s *PreparationServiceTestSuite) TestDeleteItems_Restricted() {
	src := s.linkedPair(actor.OnDeleteCascade, actor.OnDeleteRestrict)
	s.mockRepository.EXPECT().Get(s.ctx, "actor1").Return(src, nil)

	_, err := s.service.DeleteItems(s.ctx, "actor1", []string{"granted"})
	s.True(dnderr.IsRestricted(err))
}

func (s *PreparationServiceTestSuite) TestDeleteItems_RunsDeletionHooks() {
	src := testutils.CreateTestCharacter("actor1", "Valeros", 5,
		feat("item1", "False Life", `{"key":"TempHP","value":5}`))
	s.Require().NoError(src.Apply(map[string]any{
		"system.attributes.hp.temp": 5,
		"flags.pf2e.tempHPSource":   "item1",
	}))
	s.stored(src)

	_, err := s.service.DeleteItems(s.ctx, "actor1", []string{"item1"})
	s.Require().NoError(err)

	s.Equal(0.0, gjsonFloat(s.saved.System, "attributes.hp.temp"))
	s.Empty(gjsonString(s.saved.Flags, "pf2e.tempHPSource"))
}

func (s *PreparationServiceTestSuite) TestDeleteItems_UnknownItem() {
	s.mockRepository.EXPECT().Get(s.ctx, "actor1").Return(testutils.CreateTestCharacter("actor1", "Valeros", 5), nil)

	_, err := s.service.DeleteItems(s.ctx, "actor1", []string{"nope"})
	s.True(dnderr.IsNotFound(err))
	s.Equal("nope", dnderr.GetMeta(err)["item_id"])
}

// UpdateItem and UpdateActor Tests

func (s *PreparationServiceTestSuite) TestUpdateItem_SyncsChoiceFlag() {
	rule := map[string]any{"key": "ChoiceSet", "flag": "element", "choices": []any{"fire", "cold"}, "selection": "cold"}
	item := feat("item1", "Elemental Focus", `{"key":"ChoiceSet","flag":"element","choices":["fire","cold"],"selection":"fire"}`)
	s.stored(testutils.CreateTestCharacter("actor1", "Valeros", 5, item))

	_, err := s.service.UpdateItem(s.ctx, "actor1", "item1", map[string]any{"system.rules": []any{rule}})
	s.Require().NoError(err)

	updated := s.saved.Item("item1")
	s.Equal("cold", updated.SystemValue("rules.0.selection").String())
	s.Equal("cold", updated.Flag("pf2e.rulesSelections.element").String())
}

func (s *PreparationServiceTestSuite) TestUpdateItem_RejectsUnknownPath() {
	s.mockRepository.EXPECT().Get(s.ctx, "actor1").Return(testutils.CreateTestCharacter("actor1", "Valeros", 5, feat("item1", "Feat")), nil)

	_, err := s.service.UpdateItem(s.ctx, "actor1", "item1", map[string]any{"type": "weapon"})
	s.True(dnderr.IsInvalidArgument(err))
}

func (s *PreparationServiceTestSuite) TestUpdateActor_GrantsWhenPredicatePasses() {
	s.Require().NoError(s.packs.Put(s.ctx, featsPack, feat("shield-block", "Shield Block")))
	s.mockIDs.EXPECT().New().Return("granted01")
	s.stored(testutils.CreateTestCharacter("actor1", "Valeros", 3,
		feat("dedication", "Fighter Dedication",
			`{"key":"GrantItem","uuid":"`+shieldBlockURI+`","flag":"shieldBlock","reevaluateOnUpdate":true,"predicate":["self:level:5"]}`)))

	_, err := s.service.UpdateActor(s.ctx, "actor1", map[string]any{"system.details.level.value": 5})
	s.Require().NoError(err)

	s.Require().Len(s.saved.Items, 2)
	s.Equal("granted01", s.saved.Item("dedication").Flag("pf2e.itemGrants.shieldBlock.id").String())
	s.NotNil(s.saved.Item("granted01"))
}

func (s *PreparationServiceTestSuite) TestUpdateActor_RevokesWhenPredicateFails() {
	s.stored(s.linkedPair(actor.OnDeleteCascade, actor.OnDeleteDetach,
		`{"key":"GrantItem","uuid":"`+shieldBlockURI+`","flag":"shieldBlock","reevaluateOnUpdate":true,"predicate":["self:level:5"]}`))

	_, err := s.service.UpdateActor(s.ctx, "actor1", map[string]any{"system.details.level.value": 3})
	s.Require().NoError(err)

	s.Require().Len(s.saved.Items, 1)
	s.Equal("dedication", s.saved.Items[0].ID)
	s.False(s.saved.Items[0].Flag("pf2e.itemGrants.shieldBlock").Exists())
}

// StartTurn Tests

func (s *PreparationServiceTestSuite) TestStartTurn_AppliesFastHealing() {
	src := testutils.CreateTestCharacter("actor1", "Valeros", 5,
		feat("item1", "Troll Blood", `{"key":"FastHealing","value":5}`))
	s.Require().NoError(src.Apply(map[string]any{"system.attributes.hp.value": 12}))
	s.stored(src)

	_, err := s.service.StartTurn(s.ctx, "actor1")
	s.Require().NoError(err)
	s.Equal(17.0, gjsonFloat(s.saved.System, "attributes.hp.value"))
}

// ToggleRollOption Tests

func (s *PreparationServiceTestSuite) TestToggleRollOption_PersistsState() {
	s.stored(testutils.CreateTestCharacter("actor1", "Valeros", 5,
		feat("item1", "Stance Mastery",
			`{"key":"RollOption","option":"stance","toggleable":true,"value":false,"suboptions":[{"value":"a"},{"value":"b"}]}`)))

	_, err := s.service.ToggleRollOption(s.ctx, "actor1", &preparation.ToggleRequest{Option: "stance", Value: true, Suboption: "b"})
	s.Require().NoError(err)

	item := s.saved.Item("item1")
	s.True(item.SystemValue("rules.0.value").Bool())
	s.Equal("b", item.SystemValue("rules.0.selection").String())
}

func (s *PreparationServiceTestSuite) TestToggleRollOption_Errors() {
	src := testutils.CreateTestCharacter("actor1", "Valeros", 5,
		feat("item1", "Rage", `{"key":"RollOption","option":"rage","toggleable":true}`),
		feat("item2", "Flagged", `{"key":"RollOption","option":"my-flag"}`))

	s.Run("unknown toggle", func() {
		s.mockRepository.EXPECT().Get(s.ctx, "actor1").Return(src.Clone(), nil)
		_, err := s.service.ToggleRollOption(s.ctx, "actor1", &preparation.ToggleRequest{Option: "missing", Value: true})
		s.True(dnderr.IsNotFound(err))
	})

	s.Run("not toggleable", func() {
		s.mockRepository.EXPECT().Get(s.ctx, "actor1").Return(src.Clone(), nil)
		_, err := s.service.ToggleRollOption(s.ctx, "actor1", &preparation.ToggleRequest{Option: "my-flag", Value: false})
		s.True(dnderr.IsNotFound(err))
	})

	s.Run("unknown suboption", func() {
		s.mockRepository.EXPECT().Get(s.ctx, "actor1").Return(src.Clone(), nil)
		_, err := s.service.ToggleRollOption(s.ctx, "actor1", &preparation.ToggleRequest{Option: "rage", Value: true, Suboption: "x"})
		s.True(dnderr.IsInvalidArgument(err))
	})

	s.Run("missing option", func() {
		_, err := s.service.ToggleRollOption(s.ctx, "actor1", &preparation.ToggleRequest{})
		s.True(dnderr.IsInvalidArgument(err))
	})
}

// CompleteRoll Tests

func (s *PreparationServiceTestSuite) TestCompleteRoll_SwitchesOffSpentToggle() {
	s.stored(testutils.CreateTestCharacter("actor1", "Valeros", 5,
		feat("item1", "Power Surge", `{"key":"RollOption","option":"power-surge","toggleable":true,"value":true,"removeAfterRoll":true}`)))

	params := &rules.AfterRollParams{Domains: []string{"attack-roll"}, Options: predicate.NewOptions("power-surge")}
	_, err := s.service.CompleteRoll(s.ctx, "actor1", params)
	s.Require().NoError(err)

	s.False(s.saved.Item("item1").SystemValue("rules.0.value").Bool())
	s.True(s.saved.Item("item1").SystemValue("rules.0.value").Exists())
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mockdice "github.com/KirkDiggler/rule-elements/internal/dice/mock"
	"github.com/KirkDiggler/rule-elements/internal/domain/actor"
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
	"github.com/KirkDiggler/rule-elements/internal/prompt"
	"github.com/KirkDiggler/rule-elements/internal/rules"
	"github.com/KirkDiggler/rule-elements/internal/services/preparation"
	mockpreparation "github.com/KirkDiggler/rule-elements/internal/services/preparation/mocks"
)

const fighterYAML = `
_id: actor1
name: Valeros
type: character
system:
  details:
    level:
      value: 5
items:
  - _id: item1
    name: Shield Training
    type: feat
    system:
      rules:
        - key: FlatModifier
          selector: ac
          value: 2
        - key: RollOption
          domain: all
          option: shield-raised
          toggleable: true
          value: true
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDecodeActor(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		src, err := decodeActor(strings.NewReader(fighterYAML))
		require.NoError(t, err)
		assert.Equal(t, "actor1", src.ID)
		require.Len(t, src.Items, 1)
		assert.Contains(t, string(src.Items[0].System), `"selector":"ac"`)
	})

	t.Run("json", func(t *testing.T) {
		src, err := decodeActor(strings.NewReader(`{"_id":"a2","name":"Kyra","type":"character","items":[]}`))
		require.NoError(t, err)
		assert.Equal(t, "Kyra", src.Name)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := decodeActor(strings.NewReader(`name: Nobody`))
		require.Error(t, err)
		assert.True(t, dnderr.IsInvalidArgument(err))
	})
}

func TestPrepare_PrintsReport(t *testing.T) {
	path := writeFixture(t, "fighter.yaml", fighterYAML)

	out, err := execute(t, newApp(), "prepare", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Valeros (actor1) level 5")
	assert.Contains(t, out, "self:level:5")
	assert.Contains(t, out, "[x] all:shield-raised")
	assert.Contains(t, out, "ac +2")
}

func TestPrepare_RollsChecks(t *testing.T) {
	roller := mockdice.NewManualMockRoller()
	roller.SetRolls([]int{12})
	a := newApp()
	a.roller = roller

	out, err := execute(t, a, "prepare", writeFixture(t, "fighter.yaml", fighterYAML), "--roll")
	require.NoError(t, err)
	assert.Contains(t, out, "roll 14 [12]")
	assert.Equal(t, 0, roller.Remaining())
}

func TestPrepare_CreateRunsThroughService(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mockpreparation.NewMockService(ctrl)

	src, err := decodeActor(strings.NewReader(fighterYAML))
	require.NoError(t, err)
	prepared, err := actor.New(src)
	require.NoError(t, err)

	a := newApp()
	var chosen prompt.Chooser
	a.newService = func(chooser prompt.Chooser) (preparation.Service, error) {
		chosen = chooser
		return svc, nil
	}

	svc.EXPECT().
		CreateItems(gomock.Any(), "actor1", gomock.Len(1)).
		Return(&preparation.CreateResult{Created: []string{"item1", "granted1"}}, nil)
	svc.EXPECT().
		PrepareByID(gomock.Any(), "actor1").
		Return(&preparation.Pass{Actor: prepared, Scheduler: rules.NewScheduler(nil, nil)}, nil)

	path := writeFixture(t, "fighter.yaml", fighterYAML)
	out, err := execute(t, a, "prepare", path, "--create", "--select", "element=fire")
	require.NoError(t, err)

	assert.Contains(t, out, "Created 2 items")
	assert.Contains(t, out, "Valeros (actor1)")

	scripted, ok := chosen.(*prompt.Scripted)
	require.True(t, ok)
	sel, err := scripted.Choose(context.Background(), prompt.Request{
		Flag:    "element",
		Choices: []prompt.Choice{{Value: "cold"}, {Value: "fire"}},
	})
	require.NoError(t, err)
	require.NotNil(t, sel)
	assert.Equal(t, "fire", sel.Value)
}

func TestPrepare_ServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mockpreparation.NewMockService(ctrl)

	a := newApp()
	a.newService = func(prompt.Chooser) (preparation.Service, error) { return svc, nil }
	svc.EXPECT().
		PrepareByID(gomock.Any(), "actor1").
		Return(nil, dnderr.NotFound("actor actor1 not found"))

	path := writeFixture(t, "fighter.yaml", fighterYAML)
	_, err := execute(t, a, "prepare", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to prepare actor")
}

func TestValidate(t *testing.T) {
	t.Run("all valid", func(t *testing.T) {
		path := writeFixture(t, "fighter.yaml", fighterYAML)

		out, err := execute(t, newApp(), "validate", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Shield Training (item1)")
		assert.Contains(t, out, "[0] FlatModifier ok")
		assert.Contains(t, out, "[1] RollOption ok")
	})

	t.Run("unknown key is reported", func(t *testing.T) {
		path := writeFixture(t, "broken.json", `{
			"_id": "actor2", "name": "Ezren", "type": "character",
			"items": [{"_id": "item9", "name": "Odd Charm", "type": "feat",
				"system": {"rules": [{"key": "NotARealKind"}, {"selector": "ac"}]}}]
		}`)

		out, err := execute(t, newApp(), "validate", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 rule elements failed to validate")
		assert.Contains(t, out, "[0] NotARealKind skipped")
		assert.Contains(t, out, "[1] ? skipped")
	})
}

func TestValidateActor_ReportsWarnings(t *testing.T) {
	a := newApp()
	_, err := execute(t, a, "validate", writeFixture(t, "fighter.yaml", fighterYAML))
	require.NoError(t, err)

	rc, err := a.buildContext(prompt.Decline{})
	require.NoError(t, err)

	src := &document.ActorSource{
		ID: "actor3", Name: "Merisiel", Type: "character",
		Items: []*document.ItemSource{{
			ID: "item3", Name: "Cracked Lens", Type: "feat",
			System: []byte(`{"rules":[{"key":"FlatModifier","selector":"perception","type":"ability","value":1}]}`),
		}},
	}
	var out bytes.Buffer
	failed, err := validateActor(&out, rc, src)
	require.NoError(t, err)
	assert.Equal(t, 0, failed)
	assert.Contains(t, out.String(), "[0] FlatModifier ignored")
	assert.Contains(t, out.String(), "warning: FlatModifier on Cracked Lens")
}

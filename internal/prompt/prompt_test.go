package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
)

func request() Request {
	return Request{
		Flag: "weapon",
		Choices: []Choice{
			{Value: "longsword", Label: "Longsword"},
			{Value: "rapier", Label: "Rapier"},
		},
	}
}

func TestFirst(t *testing.T) {
	sel, err := First{}.Choose(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "longsword", sel.Value)

	sel, err = First{}.Choose(context.Background(), Request{})
	require.NoError(t, err)
	assert.Nil(t, sel)
}

func TestScripted(t *testing.T) {
	chooser := NewScripted(map[string]string{"weapon": "rapier", "bad": "nope"})

	sel, err := chooser.Choose(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "Rapier", sel.Label)

	req := request()
	req.Flag = "bad"
	_, err = chooser.Choose(context.Background(), req)
	assert.True(t, dnderr.IsInvalidArgument(err))

	req.AllowDrop = true
	sel, err = chooser.Choose(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "nope", sel.Value)

	req.Flag = "unscripted"
	sel, err = chooser.Choose(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, sel)

	chooser.Fallback = First{}
	sel, err = chooser.Choose(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "longsword", sel.Value)
}

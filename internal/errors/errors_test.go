package errors_test

import (
	"errors"
	"fmt"
	"testing"

	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestWrap_PreservesCode(t *testing.T) {
	base := dnderr.NotFoundf("item %s not found", "abc").WithMeta("item_id", "abc")

	wrapped := dnderr.Wrap(base, "failed to grant item")

	assert.True(t, dnderr.IsNotFound(wrapped))
	assert.Equal(t, "abc", dnderr.GetMeta(wrapped)["item_id"])
	assert.Equal(t, "failed to grant item: item abc not found", wrapped.Error())
}

func TestWrap_UnknownForPlainErrors(t *testing.T) {
	wrapped := dnderr.Wrap(errors.New("boom"), "failed")

	assert.Equal(t, dnderr.CodeUnknown, dnderr.GetCode(wrapped))
	assert.Nil(t, dnderr.Wrap(nil, "ignored"))
}

func TestWrapWithCode(t *testing.T) {
	wrapped := dnderr.WrapWithCode(fmt.Errorf("redis down"), dnderr.CodeUnavailable, "failed to load actor")

	assert.Equal(t, dnderr.CodeUnavailable, dnderr.GetCode(wrapped))
	assert.Nil(t, dnderr.WrapWithCode(nil, dnderr.CodeInternal, "x"))
}

func TestIs_ThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", dnderr.Restrictedf("cannot delete %s", "Sword"))

	assert.True(t, dnderr.IsRestricted(err))
	assert.False(t, dnderr.IsValidation(err))
}

package uuid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoogleUUIDGenerator_New(t *testing.T) {
	gen := NewGoogleUUIDGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.New()
		assert.True(t, IsDocumentID(id), "unexpected id shape %q", id)
		assert.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
}

func TestIsDocumentID(t *testing.T) {
	assert.True(t, IsDocumentID("abcdEFGH12345678"))
	assert.False(t, IsDocumentID("short"))
	assert.False(t, IsDocumentID("abcdEFGH1234567-"))
}

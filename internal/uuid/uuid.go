// Package uuid generates document ids for items created by rule elements
package uuid

//go:generate mockgen -destination=mocks/mock_generator.go -package=mocks -source=uuid.go

import (
	"strings"

	"github.com/google/uuid"
)

// DocumentIDLength is the length of an embedded document id
const DocumentIDLength = 16

const idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator is an interface for generating document ids
type Generator interface {
	New() string
}

// GoogleUUIDGenerator derives 16-character alphanumeric document ids from random UUIDs
type GoogleUUIDGenerator struct{}

// NewGoogleUUIDGenerator creates a new GoogleUUIDGenerator
func NewGoogleUUIDGenerator() *GoogleUUIDGenerator {
	return &GoogleUUIDGenerator{}
}

// New generates a new document id
func (g *GoogleUUIDGenerator) New() string {
	raw := uuid.New()

	var b strings.Builder
	b.Grow(DocumentIDLength)
	for _, octet := range raw {
		b.WriteByte(idAlphabet[int(octet)%len(idAlphabet)])
	}
	return b.String()
}

// IsDocumentID reports whether id has the shape of a generated document id
func IsDocumentID(id string) bool {
	if len(id) != DocumentIDLength {
		return false
	}
	for _, r := range id {
		if !strings.ContainsRune(idAlphabet, r) {
			return false
		}
	}
	return true
}

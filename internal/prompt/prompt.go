// Package prompt asks a user to pick one of several choices.
package prompt

//go:generate mockgen -destination=mocks/mock_chooser.go -package=mocks -source=prompt.go

import (
	"context"
	"fmt"
	"sync"

	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
)

// Choice is one option offered to the user
type Choice struct {
	Value any    `json:"value"`
	Label string `json:"label"`
	Img   string `json:"img,omitempty"`
}

// Request describes a pending choice
type Request struct {
	ActorID          string
	ItemID           string
	ItemName         string
	Flag             string
	Prompt           string
	Choices          []Choice
	AllowNoSelection bool
	// AllowDrop accepts an item UUID that is not among the choices
	AllowDrop bool
}

// Selection is the user's answer. A nil *Selection means the user declined.
type Selection struct {
	Value any
	Label string
}

// Chooser resolves choices
type Chooser interface {
	// Choose asks for one of the request's choices. It returns nil when the
	// user declines.
	Choose(ctx context.Context, req Request) (*Selection, error)
}

// First always picks the first choice
type First struct{}

// Choose implements Chooser
func (First) Choose(_ context.Context, req Request) (*Selection, error) {
	if len(req.Choices) == 0 {
		return nil, nil
	}
	return &Selection{Value: req.Choices[0].Value, Label: req.Choices[0].Label}, nil
}

// Decline never picks anything
type Decline struct{}

// Choose implements Chooser
func (Decline) Choose(context.Context, Request) (*Selection, error) {
	return nil, nil
}

// Scripted answers by flag from pre-recorded values
type Scripted struct {
	mu      sync.Mutex
	answers map[string]string
	// Fallback answers flags that have no recorded value; nil declines
	Fallback Chooser
}

// NewScripted builds a chooser answering each flag with the given value
func NewScripted(answers map[string]string) *Scripted {
	copied := make(map[string]string, len(answers))
	for k, v := range answers {
		copied[k] = v
	}
	return &Scripted{answers: copied}
}

// Choose implements Chooser. A scripted value must match a choice's value.
func (s *Scripted) Choose(ctx context.Context, req Request) (*Selection, error) {
	s.mu.Lock()
	answer, ok := s.answers[req.Flag]
	s.mu.Unlock()

	if !ok {
		if s.Fallback != nil {
			return s.Fallback.Choose(ctx, req)
		}
		return nil, nil
	}

	for _, c := range req.Choices {
		if fmt.Sprint(c.Value) == answer {
			return &Selection{Value: c.Value, Label: c.Label}, nil
		}
	}
	if req.AllowDrop {
		return &Selection{Value: answer, Label: answer}, nil
	}
	return nil, dnderr.InvalidArgumentf("scripted answer %q is not a choice for %s", answer, req.Flag).
		WithMeta("flag", req.Flag)
}

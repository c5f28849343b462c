package rules

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rule-elements/internal/config"
	"github.com/KirkDiggler/rule-elements/internal/dice"
	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	"github.com/KirkDiggler/rule-elements/internal/formula"
	"github.com/KirkDiggler/rule-elements/internal/prompt"
	"github.com/KirkDiggler/rule-elements/internal/uuid"
)

// Settings is the engine configuration snapshot seen by rule elements
type Settings struct {
	SuppressWarnings bool
	MaxGrantDepth    int
	SchemaVersion    float64
}

// SettingsFromConfig copies the rules section of the configuration
func SettingsFromConfig(cfg config.RulesConfig) Settings {
	return Settings{
		SuppressWarnings: cfg.SuppressWarnings,
		MaxGrantDepth:    cfg.MaxGrantDepth,
		SchemaVersion:    cfg.SchemaVersion,
	}
}

// Compendium resolves document UUIDs and queries packs
type Compendium interface {
	// FromUUID returns nil and no error when nothing has the UUID
	FromUUID(ctx context.Context, uuid string) (*document.ItemSource, error)
	Query(ctx context.Context, q document.ItemQuery) ([]*document.ItemSource, error)
}

// Context carries every collaborator a rule element may use
type Context struct {
	Logger     *zap.Logger
	Settings   Settings
	Tables     *Tables
	Compendium Compendium
	Chooser    prompt.Chooser
	Roller     dice.Roller
	Evaluator  *formula.Evaluator
	IDs        uuid.Generator
	Catalog    *Catalog
}

// ContextConfig holds the collaborators for NewContext. Zero fields get defaults.
type ContextConfig struct {
	Logger     *zap.Logger
	Settings   *Settings
	Tables     *Tables
	Compendium Compendium
	Chooser    prompt.Chooser
	Roller     dice.Roller
	IDs        uuid.Generator
	Catalog    *Catalog
}

// NewContext builds a context, filling in defaults
func NewContext(cfg *ContextConfig) (*Context, error) {
	if cfg == nil {
		cfg = &ContextConfig{}
	}

	c := &Context{
		Logger:     cfg.Logger,
		Tables:     cfg.Tables,
		Compendium: cfg.Compendium,
		Chooser:    cfg.Chooser,
		Roller:     cfg.Roller,
		IDs:        cfg.IDs,
		Catalog:    cfg.Catalog,
		Settings:   Settings{MaxGrantDepth: 4, SchemaVersion: 0.9},
	}
	if cfg.Settings != nil {
		c.Settings = *cfg.Settings
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Tables == nil {
		c.Tables = DefaultTables()
	}
	if c.Chooser == nil {
		c.Chooser = prompt.Decline{}
	}
	if c.Roller == nil {
		c.Roller = dice.NewRandomRoller()
	}
	if c.IDs == nil {
		c.IDs = uuid.NewGoogleUUIDGenerator()
	}
	if c.Catalog == nil {
		c.Catalog = NewCatalog()
	}

	evaluator, err := formula.NewEvaluator(c.Roller)
	if err != nil {
		return nil, fmt.Errorf("failed to create rules context: %w", err)
	}
	c.Evaluator = evaluator

	return c, nil
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KirkDiggler/rule-elements/internal/config"
	"github.com/KirkDiggler/rule-elements/internal/dice"
	"github.com/KirkDiggler/rule-elements/internal/logging"
	"github.com/KirkDiggler/rule-elements/internal/prompt"
	"github.com/KirkDiggler/rule-elements/internal/repositories/actors"
	"github.com/KirkDiggler/rule-elements/internal/repositories/compendium"
	"github.com/KirkDiggler/rule-elements/internal/rules"
	"github.com/KirkDiggler/rule-elements/internal/rules/kinds"
	"github.com/KirkDiggler/rule-elements/internal/services/preparation"
)

// app holds what every command shares once the root command has set up
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	packsDir string

	compendium compendium.Repository
	actors     actors.Repository
	warnings   *logging.WarningSink
	redis      *redis.Client
	roller     dice.Roller

	// newService builds the preparation service for one command run
	newService func(chooser prompt.Chooser) (preparation.Service, error)
}

func newApp() *app {
	a := &app{roller: dice.NewRandomRoller()}
	a.newService = a.buildService
	return a
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "rules",
		Short: "Prepare and validate actors against their rule elements",
		Long: `rules runs the rule element engine over actor fixture files.

Fixtures are YAML or JSON actor documents with embedded items. Compendium
packs referenced by grants and choice sets are loaded from --packs, or read
from Redis when REDIS_URL is set.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.teardown()
		},
	}
	root.PersistentFlags().StringVar(&a.packsDir, "packs", "", "directory of compendium pack files to load")

	root.AddCommand(newPrepareCmd(a))
	root.AddCommand(newValidateCmd(a))
	return root
}

func (a *app) setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger
	a.warnings = logging.NewWarningSink(logger, cfg.Rules.WarningDebounce)

	a.compendium = compendium.NewInMemoryRepository()
	if cfg.Redis.URL != "" {
		a.connectRedis(ctx)
	}
	a.actors = actors.NewInMemoryRepository()

	if a.packsDir != "" {
		n, err := compendium.LoadDir(ctx, a.compendium, a.packsDir)
		if err != nil {
			return fmt.Errorf("failed to load packs: %w", err)
		}
		logger.Info("Loaded compendium packs", zap.String("dir", a.packsDir), zap.Int("items", n))
	}
	return nil
}

// connectRedis swaps the compendium for a Redis-backed one. Failures fall
// back to the in-memory compendium.
func (a *app) connectRedis(ctx context.Context) {
	opts, err := redis.ParseURL(a.cfg.Redis.URL)
	if err != nil {
		a.logger.Warn("Failed to parse Redis URL, using in-memory compendium", zap.Error(err))
		return
	}
	opts.DB = a.cfg.Redis.DB

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		a.logger.Warn("Failed to connect to Redis, using in-memory compendium", zap.Error(err))
		_ = client.Close()
		return
	}

	repo, err := compendium.NewRedis(&compendium.RedisRepoConfig{Client: client})
	if err != nil {
		a.logger.Warn("Failed to create Redis compendium", zap.Error(err))
		_ = client.Close()
		return
	}
	a.redis = client
	a.compendium = repo
	a.logger.Info("Using Redis compendium", zap.String("addr", opts.Addr))
}

func (a *app) teardown() {
	if a.warnings != nil {
		a.warnings.Flush()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) buildContext(chooser prompt.Chooser) (*rules.Context, error) {
	catalog, err := kinds.NewCatalog()
	if err != nil {
		return nil, err
	}
	settings := rules.SettingsFromConfig(a.cfg.Rules)
	return rules.NewContext(&rules.ContextConfig{
		Logger:     a.logger,
		Settings:   &settings,
		Compendium: a.compendium,
		Chooser:    chooser,
		Roller:     a.roller,
		Catalog:    catalog,
	})
}

func (a *app) buildService(chooser prompt.Chooser) (preparation.Service, error) {
	rc, err := a.buildContext(chooser)
	if err != nil {
		return nil, err
	}
	return preparation.NewService(&preparation.ServiceConfig{
		Repository: a.actors,
		Context:    rc,
		Warnings:   a.warnings,
	}), nil
}

package logging

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/KirkDiggler/rule-elements/internal/config"
)

// New builds a zap logger from the log configuration
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level %q: %w", cfg.Level, err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// Nop returns a logger that discards everything
func Nop() *zap.Logger {
	return zap.NewNop()
}

// WarningSink collects preparation warnings from many passes and writes each
// distinct message once per settle cycle. A cycle settles when no new warning
// has arrived for the debounce interval.
type WarningSink struct {
	logger   *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending []string
	seen    map[string]struct{}
	timer   *time.Timer
}

// NewWarningSink creates a debounced warning sink. A zero debounce flushes synchronously.
func NewWarningSink(logger *zap.Logger, debounce time.Duration) *WarningSink {
	return &WarningSink{
		logger:   logger,
		debounce: debounce,
		seen:     make(map[string]struct{}),
	}
}

// Warn queues a warning; duplicates within the current cycle are dropped
func (s *WarningSink) Warn(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen[message]; dup {
		return
	}
	s.seen[message] = struct{}{}
	s.pending = append(s.pending, message)

	if s.debounce <= 0 {
		s.flushLocked()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.Flush)
}

// Flush writes every pending warning and starts a new cycle
func (s *WarningSink) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
}

func (s *WarningSink) flushLocked() {
	for _, msg := range s.pending {
		s.logger.Warn("[RULES] " + msg)
	}
	s.pending = nil
	s.seen = make(map[string]struct{})
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Pending returns the number of warnings waiting for the next flush
func (s *WarningSink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Package zaplogger backs the site logging contract with go.uber.org/zap.
package zaplogger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

// Config selects the zap level and encoder. Format is json or console.
type Config struct {
	Level     string
	Format    string
	AddSource bool
}

// Provider hands out named sugared loggers sharing one core.
type Provider struct {
	base  *zap.Logger
	level zap.AtomicLevel
}

// NewProvider builds a zap logger from cfg.
func NewProvider(cfg Config) (*Provider, error) {
	level := zap.NewAtomicLevel()
	if raw := strings.TrimSpace(cfg.Level); raw != "" {
		if strings.EqualFold(raw, "trace") {
			raw = "debug"
		}
		if err := level.UnmarshalText([]byte(strings.ToLower(raw))); err != nil {
			return nil, fmt.Errorf("logging: parse zap level %q: %w", cfg.Level, err)
		}
	}

	var zcfg zap.Config
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "console", "pretty":
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "", "json":
		zcfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("logging: unsupported zap format %q", cfg.Format)
	}
	zcfg.Level = level
	zcfg.DisableCaller = !cfg.AddSource

	base, err := zcfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("logging: build zap logger: %w", err)
	}
	return &Provider{base: base, level: level}, nil
}

// NewFromLogger wraps an existing zap logger, mostly for tests.
func NewFromLogger(base *zap.Logger) *Provider {
	if base == nil {
		base = zap.NewNop()
	}
	return &Provider{base: base, level: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
}

// SetLevel changes the level of every logger handed out by p.
func (p *Provider) SetLevel(level string) error {
	return p.level.UnmarshalText([]byte(level))
}

// Sync flushes buffered entries.
func (p *Provider) Sync() error {
	return p.base.Sync()
}

// GetLogger implements interfaces.LoggerProvider.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.base == nil {
		return logging.NoOp()
	}
	return &adapter{sugar: p.base.Named(strings.TrimSpace(name)).Sugar()}
}

type adapter struct {
	sugar *zap.SugaredLogger
}

var (
	_ interfaces.Logger       = (*adapter)(nil)
	_ interfaces.FieldsLogger = (*adapter)(nil)
)

// zap has no trace level.
func (a *adapter) Trace(msg string, args ...any) { a.sugar.Debugw(msg, args...) }
func (a *adapter) Debug(msg string, args ...any) { a.sugar.Debugw(msg, args...) }
func (a *adapter) Info(msg string, args ...any)  { a.sugar.Infow(msg, args...) }
func (a *adapter) Warn(msg string, args ...any)  { a.sugar.Warnw(msg, args...) }
func (a *adapter) Error(msg string, args ...any) { a.sugar.Errorw(msg, args...) }
func (a *adapter) Fatal(msg string, args ...any) { a.sugar.Fatalw(msg, args...) }

func (a *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return a
	}
	return &adapter{sugar: a.sugar.With(sortedPairs(fields)...)}
}

func (a *adapter) WithContext(ctx context.Context) interfaces.Logger {
	return a.WithFields(logging.ContextFields(ctx))
}

func sortedPairs(fields map[string]any) []any {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		pairs = append(pairs, key, fields[key])
	}
	return pairs
}

package di

import (
	"fmt"
	"io"
	"strings"

	"github.com/eureka-automation/eureka-site/internal/logging/console"
	"github.com/eureka-automation/eureka-site/internal/logging/gologger"
	"github.com/eureka-automation/eureka-site/internal/logging/zaplogger"
	"github.com/eureka-automation/eureka-site/internal/runtimeconfig"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

// newLoggerProvider selects the backend named by cfg.Provider.
func newLoggerProvider(cfg runtimeconfig.LoggingConfig, out io.Writer) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		opts := console.Options{Writer: out}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		return console.NewProvider(opts), nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "zap":
		provider, err := zaplogger.NewProvider(zaplogger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}

package staticcmd

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/eureka-automation/eureka-site/internal/commands"
	"github.com/eureka-automation/eureka-site/internal/generator"
	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

// BuildSiteHandler orchestrates generator builds using the shared command handler foundation.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the provided generator service.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := ensureLogger(logger)

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}

		locales := normalizeValues(msg.Locales, true)
		routes := normalizeValues(msg.Routes, false)
		if len(locales) == 1 && len(routes) == 1 && !msg.DryRun {
			page, err := service.BuildPage(ctx, locales[0], routes[0])
			if err != nil {
				return err
			}
			invokeCallback(msg.ResultCallback, ResultEnvelope{
				Page: page,
				Metadata: map[string]any{
					"operation": "build_page",
					"locale":    locales[0],
					"route":     routes[0],
				},
			})
			return nil
		}

		result, err := service.Build(ctx, generator.BuildOptions{
			Locales:      locales,
			Routes:       routes,
			Force:        msg.Force,
			DryRun:       msg.DryRun,
			AllowMissing: msg.AllowMissing,
		})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": "build",
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("static.build"),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			return map[string]any{"locales": msg.Locales, "routes": msg.Routes, "dry_run": msg.DryRun}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DiffSiteHandler runs dry-run builds.
type DiffSiteHandler struct {
	inner *commands.Handler[DiffSiteCommand]
}

// NewDiffSiteHandler constructs a dry-run handler.
func NewDiffSiteHandler(service generator.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[DiffSiteCommand]) *DiffSiteHandler {
	baseLogger := ensureLogger(logger)

	exec := func(ctx context.Context, msg DiffSiteCommand) error {
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}
		result, err := service.Build(ctx, generator.BuildOptions{
			Locales: normalizeValues(msg.Locales, true),
			Routes:  normalizeValues(msg.Routes, false),
			Force:   msg.Force,
			DryRun:  true,
		})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": "diff",
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[DiffSiteCommand]{
		commands.WithLogger[DiffSiteCommand](baseLogger),
		commands.WithOperation[DiffSiteCommand]("static.diff"),
		commands.WithTelemetry(commands.DefaultTelemetry[DiffSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DiffSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[DiffSiteCommand].
func (h *DiffSiteHandler) Execute(ctx context.Context, msg DiffSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ValidateSiteHandler reports content defects. A failing report is returned
// as a validation error so callers can exit non-zero.
type ValidateSiteHandler struct {
	inner *commands.Handler[ValidateSiteCommand]
}

// NewValidateSiteHandler constructs the validation handler.
func NewValidateSiteHandler(service generator.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[ValidateSiteCommand]) *ValidateSiteHandler {
	baseLogger := ensureLogger(logger)

	exec := func(ctx context.Context, msg ValidateSiteCommand) error {
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}
		report, err := service.Validate(ctx)
		if err != nil {
			return err
		}
		if msg.ReportCallback != nil {
			msg.ReportCallback(report)
		}
		if verr := report.Err(); verr != nil {
			wrapped := goerrors.New("site content failed validation", goerrors.CategoryValidation).
				WithTextCode(generator.TextCodeValidationFailed)
			wrapped.Source = verr
			return wrapped
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ValidateSiteCommand]{
		commands.WithLogger[ValidateSiteCommand](baseLogger),
		commands.WithOperation[ValidateSiteCommand]("static.validate"),
		commands.WithTelemetry(commands.DefaultTelemetry[ValidateSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ValidateSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ValidateSiteCommand].
func (h *ValidateSiteHandler) Execute(ctx context.Context, msg ValidateSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// BuildSitemapHandler regenerates sitemap.xml and robots.txt.
type BuildSitemapHandler struct {
	inner *commands.Handler[BuildSitemapCommand]
}

// NewBuildSitemapHandler constructs the sitemap handler.
func NewBuildSitemapHandler(service generator.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[BuildSitemapCommand]) *BuildSitemapHandler {
	baseLogger := ensureLogger(logger)

	exec := func(ctx context.Context, _ BuildSitemapCommand) error {
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}
		return service.BuildSitemap(ctx)
	}

	handlerOpts := []commands.HandlerOption[BuildSitemapCommand]{
		commands.WithLogger[BuildSitemapCommand](baseLogger),
		commands.WithOperation[BuildSitemapCommand]("static.sitemap"),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSitemapCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSitemapHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSitemapCommand].
func (h *BuildSitemapHandler) Execute(ctx context.Context, msg BuildSitemapCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler removes generated artifacts.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler constructs the clean handler.
func NewCleanSiteHandler(service generator.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	baseLogger := ensureLogger(logger)

	exec := func(ctx context.Context, msg CleanSiteCommand) error {
		if service == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}
		return service.Clean(ctx)
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](baseLogger),
		commands.WithOperation[CleanSiteCommand]("static.clean"),
		commands.WithTelemetry(commands.DefaultTelemetry[CleanSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

func ensureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}

func normalizeValues(values []string, lower bool) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if lower {
			trimmed = strings.ToLower(trimmed)
		}
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}

package site

import (
	"context"

	"github.com/eureka-automation/eureka-site/internal/careers"
	"github.com/eureka-automation/eureka-site/internal/content"
	"github.com/eureka-automation/eureka-site/internal/di"
	"github.com/eureka-automation/eureka-site/internal/gallery"
	"github.com/eureka-automation/eureka-site/internal/generator"
	"github.com/eureka-automation/eureka-site/internal/i18n"
	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/internal/server"
)

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// BuildOptions scopes a build to locales or routes.
type BuildOptions = generator.BuildOptions

// BuildResult reports what a build rendered and skipped.
type BuildResult = generator.BuildResult

// ValidationReport lists content-authoring defects.
type ValidationReport = generator.ValidationReport

// Resolver maps request paths to supported locales.
type Resolver = i18n.Resolver

// Resolution is the outcome of resolving one path.
type Resolution = i18n.Resolution

// Gallery is one video gallery instance.
type Gallery = gallery.Gallery

// ApplicationForm is one careers form instance.
type ApplicationForm = careers.Form

// Application holds the careers form fields.
type Application = careers.Application

// Attachment is a resume file.
type Attachment = careers.Attachment

// FormStatus is the observable state of an ApplicationForm.
type FormStatus = careers.Status

// Board is the careers listing view state.
type Board = careers.Board

// Server is the preview and relay server.
type Server = server.Server

// Module is the top level site runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a site module from cfg and optional DI overrides.
func New(ctx context.Context, cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Generator returns the configured generator service.
func (m *Module) Generator() GeneratorService {
	return m.container.GeneratorService()
}

// Resolver returns the locale resolver.
func (m *Module) Resolver() *Resolver {
	return m.container.Resolver()
}

// Locales lists the supported locales, default first.
func (m *Module) Locales() []string {
	return m.container.Catalog().Locales()
}

// Translate resolves key for locale. Missing keys render as the key itself.
func (m *Module) Translate(locale, key string, args ...any) string {
	value, err := m.container.Catalog().Translate(locale, key, args...)
	if err != nil {
		return key
	}
	return value
}

// Gallery starts a browsing gallery over the videos localized for locale.
func (m *Module) Gallery(locale string) *Gallery {
	def := m.container.Catalog().Config().DefaultLocale
	videos := content.LocalizeVideos(m.container.Content().Videos, locale, def)
	return gallery.New(locale, videos, gallery.WithLogger(logging.GalleryLogger(m.container.LoggerProvider())))
}

// Board lists the open positions localized for locale.
func (m *Module) Board(locale string) *Board {
	def := m.container.Catalog().Config().DefaultLocale
	return careers.NewBoard(content.LocalizeCareers(m.container.Content().OpenCareers(), locale, def))
}

// FormOption customises an ApplicationForm.
type FormOption = careers.FormOption

// WithStatusHook observes every form status change.
func WithStatusHook(fn func(careers.Status)) FormOption {
	return careers.WithStatusHook(fn)
}

// ApplicationForm returns an idle careers form bound to the configured
// endpoint and resume limits.
func (m *Module) ApplicationForm(opts ...FormOption) *ApplicationForm {
	base := []FormOption{
		careers.WithLimits(m.container.Limits()),
		careers.WithFormLogger(logging.CareersLogger(m.container.LoggerProvider())),
	}
	return careers.NewForm(m.container.ApplicationSender(), append(base, opts...)...)
}

// Server builds the preview and relay server over the output directory.
func (m *Module) Server() *Server {
	return m.container.Server()
}

// Package di wires the site modules from a runtime configuration: loggers,
// translation catalog, content, templates, storage, generator, relay and
// preview server.
package di

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/eureka-automation/eureka-site/internal/careers"
	"github.com/eureka-automation/eureka-site/internal/commands"
	careerscmd "github.com/eureka-automation/eureka-site/internal/commands/careers"
	staticcmd "github.com/eureka-automation/eureka-site/internal/commands/static"
	"github.com/eureka-automation/eureka-site/internal/content"
	"github.com/eureka-automation/eureka-site/internal/generator"
	"github.com/eureka-automation/eureka-site/internal/i18n"
	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/internal/markdown"
	"github.com/eureka-automation/eureka-site/internal/metrics"
	"github.com/eureka-automation/eureka-site/internal/routes"
	"github.com/eureka-automation/eureka-site/internal/runtimeconfig"
	"github.com/eureka-automation/eureka-site/internal/server"
	"github.com/eureka-automation/eureka-site/internal/shortcode"
	"github.com/eureka-automation/eureka-site/internal/storage/filesystem"
	"github.com/eureka-automation/eureka-site/internal/templates"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

const (
	applicationsPath = "/api/careers/applications"
	contactPath      = "/api/contact"
)

// Container owns every long-lived collaborator of one site instance.
type Container struct {
	Config runtimeconfig.Config

	fsys           fs.FS
	logOutput      io.Writer
	loggerProvider interfaces.LoggerProvider
	storage        interfaces.StorageProvider
	metrics        *metrics.Collectors
	httpClient     *http.Client
	version        string

	applicationSender careers.Sender
	contactSender     careers.Sender
	sendersSet        bool

	catalog   *i18n.Catalog
	resolver  *i18n.Resolver
	urls      *routes.URLBuilder
	store     *content.Store
	pages     *markdown.Library
	renderer  *templates.Renderer
	generator generator.Service
}

// Option mutates the container before it loads anything.
type Option func(*Container)

// WithFS reads locales, content, pages, templates and static files from fsys
// instead of the working directory.
func WithFS(fsys fs.FS) Option {
	return func(c *Container) {
		if fsys != nil {
			c.fsys = fsys
		}
	}
}

// WithLoggerProvider overrides the provider selected by Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithLogOutput redirects the console provider.
func WithLogOutput(w io.Writer) Option {
	return func(c *Container) {
		if w != nil {
			c.logOutput = w
		}
	}
}

// WithStorage replaces the filesystem storage rooted at the output dir.
func WithStorage(sp interfaces.StorageProvider) Option {
	return func(c *Container) {
		if sp != nil {
			c.storage = sp
		}
	}
}

// WithMetrics shares collectors, e.g. across tests.
func WithMetrics(collectors *metrics.Collectors) Option {
	return func(c *Container) {
		if collectors != nil {
			c.metrics = collectors
		}
	}
}

// WithHTTPClient is used by the relay submitters.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSenders bypasses the HTTP submitters. A nil contact sender disables the
// contact relay.
func WithSenders(application, contact careers.Sender) Option {
	return func(c *Container) {
		c.applicationSender = application
		c.contactSender = contact
		c.sendersSet = true
	}
}

// WithVersion stamps generated pages and the manifest.
func WithVersion(version string) Option {
	return func(c *Container) {
		c.version = strings.TrimSpace(version)
	}
}

// NewContainer validates cfg and loads translations, content and templates.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:    cfg,
		logOutput: os.Stderr,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.fsys == nil {
		c.fsys = os.DirFS(".")
	}

	if c.loggerProvider == nil {
		provider, err := newLoggerProvider(cfg.Logging, c.logOutput)
		if err != nil {
			return nil, err
		}
		c.loggerProvider = provider
	}
	if c.metrics == nil {
		c.metrics = metrics.New(metrics.WithRuntimeCollectors())
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"translations", c.loadCatalog},
		{"routes", c.configureRoutes},
		{"content", c.loadContent},
		{"pages", c.loadPages},
		{"templates", c.configureRenderer},
		{"storage", c.configureStorage},
		{"relay", c.configureSenders},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return nil, fmt.Errorf("configure %s: %w", step.name, err)
		}
	}
	c.configureGenerator()

	logging.ModuleLogger(c.loggerProvider, "site").Debug("container.configured",
		"locales", c.catalog.Locales(),
		"routes", c.urls.Table().Len(),
		"careers", len(c.store.Careers),
		"videos", len(c.store.Videos),
		"pages", c.pages.Len(),
	)
	return c, nil
}

func (c *Container) loadCatalog(ctx context.Context) error {
	cfg := i18n.FromModuleConfig(c.Config.I18N.DefaultLocale, c.Config.I18N.Locales)
	catalog, err := i18n.NewLoader(c.fsys, c.Config.I18N.Dir).Load(ctx, cfg)
	if err != nil {
		return err
	}
	c.catalog = catalog
	c.resolver = i18n.NewResolver(cfg, c.Config.Site.BasePath)
	return nil
}

func (c *Container) configureRoutes(context.Context) error {
	cfg := c.catalog.Config()
	urls, err := routes.NewURLBuilder(routes.Default(), routes.URLOptions{
		SiteURL:       c.Config.Site.URL,
		BasePath:      c.Config.Site.BasePath,
		DefaultLocale: cfg.DefaultLocale,
		Locales:       cfg.Locales,
		TrailingSlash: c.Config.Generator.TrailingSlash,
	})
	if err != nil {
		return err
	}
	c.urls = urls
	return nil
}

func (c *Container) loadContent(ctx context.Context) error {
	loader := content.NewLoader(c.fsys, content.Config{
		Dir:         c.Config.Content.Dir,
		CareersFile: c.Config.Content.CareersFile,
		VideosFile:  c.Config.Content.VideosFile,
	}, content.WithLogger(logging.ContentLogger(c.loggerProvider)))
	store, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	c.store = store
	return nil
}

func (c *Container) loadPages(ctx context.Context) error {
	logger := logging.ContentLogger(c.loggerProvider)
	loader := markdown.NewLoader(c.fsys, markdown.LoaderConfig{
		Dir:        c.Config.Content.PagesDir,
		Locales:    c.catalog.Locales(),
		Shortcodes: shortcode.New(shortcode.WithLogger(logger)),
	}, logger)
	library, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	c.pages = library
	return nil
}

func (c *Container) configureRenderer(context.Context) error {
	cfg := templates.Config{
		Translator: c.catalog,
		Asset:      c.urls.Asset,
	}
	if dir := strings.Trim(strings.TrimSpace(c.Config.Generator.TemplatesDir), "/"); dir != "" {
		overrides, err := fs.Sub(c.fsys, dir)
		if err != nil {
			return err
		}
		cfg.Overrides = overrides
	}
	renderer, err := templates.New(cfg, logging.GeneratorLogger(c.loggerProvider))
	if err != nil {
		return err
	}
	c.renderer = renderer
	return nil
}

func (c *Container) configureStorage(context.Context) error {
	if c.storage != nil {
		return nil
	}
	out := c.Config.Generator.OutputDir
	sp, err := filesystem.New(out,
		filesystem.WithBase(out),
		filesystem.WithLogger(logging.GeneratorLogger(c.loggerProvider)),
	)
	if err != nil {
		return err
	}
	c.storage = sp
	return nil
}

func (c *Container) configureSenders(context.Context) error {
	if c.sendersSet {
		return nil
	}
	cfg := c.Config.Careers
	logger := logging.CareersLogger(c.loggerProvider)

	application, err := careers.NewSubmitter(careers.SubmitterConfig{
		Endpoint:  cfg.Endpoint,
		Transport: careers.Transport(cfg.Transport),
		Timeout:   cfg.Timeout,
		Client:    c.httpClient,
	}, careers.WithSubmitterLogger(logger), careers.WithObserver(c.metrics))
	if err != nil {
		return err
	}
	c.applicationSender = application

	if strings.TrimSpace(cfg.ContactEndpoint) == "" {
		c.contactSender = nil
		return nil
	}
	contact, err := careers.NewSubmitter(careers.SubmitterConfig{
		Endpoint:  cfg.ContactEndpoint,
		Transport: careers.Transport(cfg.Transport),
		Timeout:   cfg.Timeout,
		Client:    c.httpClient,
	}, careers.WithSubmitterLogger(logger), careers.WithObserver(c.metrics))
	if err != nil {
		return err
	}
	c.contactSender = contact
	return nil
}

func (c *Container) configureGenerator() {
	site := c.Config.Site
	org := site.Organization

	assets := []fs.FS{templates.Static()}
	if dir := strings.Trim(strings.TrimSpace(c.Config.Generator.StaticDir), "/"); dir != "" {
		if info, err := fs.Stat(c.fsys, dir); err == nil && info.IsDir() {
			if sub, err := fs.Sub(c.fsys, dir); err == nil {
				assets = append(assets, sub)
			}
		}
	}

	c.generator = generator.NewService(generator.Config{
		OutputDir:   c.Config.Generator.OutputDir,
		SiteName:    site.Name,
		TitleFormat: site.TitleFormat,
		Organization: generator.Organization{
			Name:      site.Name,
			LegalName: org.LegalName,
			Logo:      org.Logo,
			Email:     org.Email,
			Telephone: org.Telephone,
			Street:    org.Street,
			Locality:  org.Locality,
			Region:    org.Region,
			Postal:    org.Postal,
			Country:   org.Country,
			SameAs:    org.SameAs,
		},
		OGLocales: c.Config.I18N.OGLocales,
		NavRoutes: generator.DefaultNavRoutes(),
		CareersForm: generator.FormSection{
			Endpoint:    c.formAction(applicationsPath, c.Config.Careers.Endpoint),
			MaxFileSize: c.Config.Careers.MaxFileSize,
			Accept:      strings.Join(c.Config.Careers.AcceptedTypes, ","),
		},
		ContactForm: generator.FormSection{
			Endpoint: c.formAction(contactPath, c.Config.Careers.ContactEndpoint),
		},
		Incremental:      c.Config.Generator.Incremental,
		GenerateSitemap:  c.Config.Generator.GenerateSitemap,
		GenerateRobots:   c.Config.Generator.GenerateRobots,
		GenerateRedirect: true,
		RequireParity:    c.Config.I18N.RequireParity,
		Workers:          c.Config.Generator.Workers,
		Version:          c.version,
	}, generator.Dependencies{
		Catalog:  c.catalog,
		Resolver: c.resolver,
		URLs:     c.urls,
		Content:  c.store,
		Pages:    c.pages,
		Renderer: c.renderer,
		Assets:   assets,
		Storage:  c.storage,
		Logger:   logging.GeneratorLogger(c.loggerProvider),
		Metrics:  c.metrics,
	})
}

// formAction is where generated forms post: the relay route under the base
// path, or the external endpoint when the relay is disabled.
func (c *Container) formAction(relayPath, external string) string {
	if c.Config.Careers.Relay {
		return routes.WithBasePath(c.Config.Site.BasePath, relayPath)
	}
	return strings.TrimSpace(external)
}

// LoggerProvider returns the configured provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// Catalog returns the loaded translation catalog.
func (c *Container) Catalog() *i18n.Catalog { return c.catalog }

// Resolver returns the locale resolver for the configured base path.
func (c *Container) Resolver() *i18n.Resolver { return c.resolver }

// URLs returns the localized URL builder.
func (c *Container) URLs() *routes.URLBuilder { return c.urls }

// Content returns the loaded careers and videos.
func (c *Container) Content() *content.Store { return c.store }

// Pages returns the markdown page bodies.
func (c *Container) Pages() *markdown.Library { return c.pages }

// Renderer returns the template renderer.
func (c *Container) Renderer() *templates.Renderer { return c.renderer }

// StorageProvider returns the artifact storage.
func (c *Container) StorageProvider() interfaces.StorageProvider { return c.storage }

// Metrics returns the Prometheus collectors.
func (c *Container) Metrics() *metrics.Collectors { return c.metrics }

// GeneratorService returns the static site generator.
func (c *Container) GeneratorService() generator.Service { return c.generator }

// ApplicationSender returns the sender behind the careers relay.
func (c *Container) ApplicationSender() careers.Sender { return c.applicationSender }

// ContactSender returns the contact sender, nil when no endpoint is configured.
func (c *Container) ContactSender() careers.Sender { return c.contactSender }

// Limits returns the resume constraints applied before any submission.
func (c *Container) Limits() careers.Limits {
	return careers.Limits{
		MaxFileSize:   c.Config.Careers.MaxFileSize,
		AcceptedTypes: c.Config.Careers.AcceptedTypes,
	}
}

// StaticHandlers groups the generator command handlers.
type StaticHandlers struct {
	Build    *staticcmd.BuildSiteHandler
	Diff     *staticcmd.DiffSiteHandler
	Validate *staticcmd.ValidateSiteHandler
	Sitemap  *staticcmd.BuildSitemapHandler
	Clean    *staticcmd.CleanSiteHandler
}

// StaticHandlers builds the generator command handlers with metrics-backed
// telemetry.
func (c *Container) StaticHandlers() StaticHandlers {
	logger := commands.CommandLogger(c.loggerProvider, "static")
	gates := staticcmd.FeatureGates{GeneratorEnabled: func() bool { return c.generator != nil }}
	return StaticHandlers{
		Build: staticcmd.NewBuildSiteHandler(c.generator, logger, gates,
			commands.WithTelemetry(observed[staticcmd.BuildSiteCommand](c.metrics, logger))),
		Diff: staticcmd.NewDiffSiteHandler(c.generator, logger, gates,
			commands.WithTelemetry(observed[staticcmd.DiffSiteCommand](c.metrics, logger))),
		Validate: staticcmd.NewValidateSiteHandler(c.generator, logger, gates,
			commands.WithTelemetry(observed[staticcmd.ValidateSiteCommand](c.metrics, logger))),
		Sitemap: staticcmd.NewBuildSitemapHandler(c.generator, logger, gates,
			commands.WithTelemetry(observed[staticcmd.BuildSitemapCommand](c.metrics, logger))),
		Clean: staticcmd.NewCleanSiteHandler(c.generator, logger, gates,
			commands.WithTelemetry(observed[staticcmd.CleanSiteCommand](c.metrics, logger))),
	}
}

// CareersHandlers groups the relay command handlers.
type CareersHandlers struct {
	Apply   *careerscmd.SubmitApplicationHandler
	Contact *careerscmd.SendContactHandler
}

// CareersHandlers builds the relay handlers around the configured senders.
func (c *Container) CareersHandlers() CareersHandlers {
	logger := commands.CommandLogger(c.loggerProvider, "careers")
	limits := c.Limits()
	return CareersHandlers{
		Apply: careerscmd.NewSubmitApplicationHandler(c.applicationSender, limits, logger,
			commands.WithTelemetry(observed[careerscmd.SubmitApplicationCommand](c.metrics, logger))),
		Contact: careerscmd.NewSendContactHandler(c.contactSender, logger,
			commands.WithTelemetry(observed[careerscmd.SendContactCommand](c.metrics, logger))),
	}
}

// Server builds the preview and relay server over the output directory.
func (c *Container) Server() *server.Server {
	handlers := c.CareersHandlers()
	cfg := c.Config.Server

	deps := server.Deps{
		Resolver:     c.resolver,
		Applications: handlers.Apply,
		Translator:   c.catalog,
		Logger:       logging.ServerLogger(c.loggerProvider),
	}
	if c.contactSender != nil {
		deps.Contact = handlers.Contact
	}
	if cfg.Metrics {
		deps.Metrics = c.metrics.Handler()
	}

	return server.New(server.Config{
		Addr:            cfg.Addr,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
		AllowedOrigins:  cfg.AllowedOrigins,
		OutputDir:       c.outputRoot(),
		BasePath:        c.Config.Site.BasePath,
		Limits:          c.Limits(),
	}, deps)
}

func (c *Container) outputRoot() string {
	if rooted, ok := c.storage.(interface{ Root() string }); ok {
		return rooted.Root()
	}
	return c.Config.Generator.OutputDir
}

func observed[T command.Message](observer commands.CommandObserver, logger interfaces.Logger) commands.Telemetry[T] {
	return commands.ObservedTelemetry(observer, commands.DefaultTelemetry[T](logger))
}

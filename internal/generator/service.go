package generator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/eureka-automation/eureka-site/internal/content"
	"github.com/eureka-automation/eureka-site/internal/i18n"
	"github.com/eureka-automation/eureka-site/internal/identity"
	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/internal/markdown"
	"github.com/eureka-automation/eureka-site/internal/routes"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

// TextCodeValidationFailed marks builds aborted by content validation.
const TextCodeValidationFailed = "SITE_VALIDATION_FAILED"

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled = errors.New("generator: service disabled")
	// ErrUnknownLocale is returned when a build is scoped to an unsupported locale.
	ErrUnknownLocale = errors.New("generator: unknown locale")
	// ErrPageNotRendered is returned by BuildPage when nothing was produced.
	ErrPageNotRendered = errors.New("generator: page not rendered")

	errRendererRequired = errors.New("generator: template renderer is required")
	errCatalogRequired  = errors.New("generator: translation catalog is required")
	errURLsRequired     = errors.New("generator: url builder is required")
	errResolverRequired = errors.New("generator: locale resolver is required")
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	BuildPage(ctx context.Context, locale, route string) (*RenderedPage, error)
	BuildSitemap(ctx context.Context) error
	Validate(ctx context.Context) (*ValidationReport, error)
	Clean(ctx context.Context) error
}

// Recorder receives build measurements.
type Recorder interface {
	ObservePage(locale, outcome string, d time.Duration)
	ObserveBuild(outcome string, d time.Duration)
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	// OutputDir is relative to the storage provider root.
	OutputDir        string
	SiteName         string
	TitleFormat      string
	Organization     Organization
	OGLocales        map[string]string
	NavRoutes        []string
	CareersForm      FormSection
	ContactForm      FormSection
	Incremental      bool
	GenerateSitemap  bool
	GenerateRobots   bool
	GenerateRedirect bool
	RequireParity    bool
	Workers          int
	Version          string
}

// DefaultNavRoutes is the primary navigation of the site header.
func DefaultNavRoutes() []string {
	return []string{routes.HomeName, "about", "services", "solutions", "products", "careers", "contact"}
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	Locales []string
	Routes  []string
	DryRun  bool
	// Force re-renders pages the manifest reports as unchanged.
	Force bool
	// AllowMissing renders even when validation reports missing keys.
	AllowMissing bool
}

func (o BuildOptions) scoped() bool {
	return len(o.Locales) > 0 || len(o.Routes) > 0
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	PagesBuilt    int
	PagesSkipped  int
	AssetsBuilt   int
	AssetsSkipped int
	Locales       []string
	Duration      time.Duration
	Rendered      []RenderedPage
	Diagnostics   []RenderDiagnostic
	Validation    *ValidationReport
	Errors        []error
	DryRun        bool
}

// Dependencies lists the collaborators required by the generator.
type Dependencies struct {
	Catalog  *i18n.Catalog
	Resolver *i18n.Resolver
	URLs     *routes.URLBuilder
	Content  *content.Store
	Pages    *markdown.Library
	Renderer interfaces.TemplateRenderer
	// Assets are copied to the output root; later filesystems win.
	Assets   []fs.FS
	Storage  interfaces.StorageProvider
	Logger   interfaces.Logger
	Metrics  Recorder
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if cfg.NavRoutes == nil {
		cfg.NavRoutes = DefaultNavRoutes()
	}
	if cfg.SiteName == "" {
		cfg.SiteName = cfg.Organization.Name
	}
	if cfg.Organization.Name == "" {
		cfg.Organization.Name = cfg.SiteName
	}
	return &service{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		now:    time.Now,
	}
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger
	now    func() time.Time
}

type disabledService struct{}

func (s *service) checkDependencies() error {
	switch {
	case s.deps.Renderer == nil:
		return errRendererRequired
	case s.deps.Catalog == nil:
		return errCatalogRequired
	case s.deps.URLs == nil:
		return errURLsRequired
	case s.deps.Resolver == nil:
		return errResolverRequired
	}
	return nil
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.checkDependencies(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &BuildResult{DryRun: opts.DryRun}
	finish := func(err error) (*BuildResult, error) {
		result.Duration = time.Since(start)
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		if s.deps.Metrics != nil {
			s.deps.Metrics.ObserveBuild(outcome, result.Duration)
		}
		s.logger.Info("generator.build.complete",
			"outcome", outcome,
			"built", result.PagesBuilt,
			"skipped", result.PagesSkipped,
			"dry_run", opts.DryRun,
			"duration", result.Duration,
		)
		return result, err
	}

	report, err := s.Validate(ctx)
	if err != nil {
		return finish(err)
	}
	result.Validation = report
	if verr := report.Err(); verr != nil && !opts.AllowMissing {
		wrapped := goerrors.New("site content failed validation", goerrors.CategoryValidation).
			WithTextCode(TextCodeValidationFailed)
		wrapped.Source = verr
		result.Errors = append(result.Errors, wrapped)
		return finish(wrapped)
	}

	buildCtx, err := s.loadContext(ctx, opts)
	if err != nil {
		return finish(err)
	}
	result.Locales = append(result.Locales, buildCtx.Locales...)
	result.Diagnostics = make([]RenderDiagnostic, 0, len(buildCtx.Pages))
	s.logger.Info("generator.build.start", "pages", len(buildCtx.Pages), "locales", buildCtx.Locales)

	var (
		mu          sync.Mutex
		rendered    = make([]RenderedPage, 0, len(buildCtx.Pages))
		errorsSlice []error
		pageKeys    = map[string]struct{}{}
	)

	manifest, manifestErr := s.loadManifest(ctx)
	if manifestErr != nil {
		s.logger.Warn("generator.manifest_unreadable", "error", manifestErr)
	}
	if manifest == nil {
		manifest = newBuildManifest()
	}

	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		if outcome.diagnostic.PageID != "" {
			pageKeys[manifestKey(outcome.diagnostic.PageID, outcome.diagnostic.Locale)] = struct{}{}
		}
		status := "built"
		switch {
		case outcome.err != nil:
			status = "failed"
			errorsSlice = append(errorsSlice, outcome.err)
		case outcome.skipped:
			status = "skipped"
			result.PagesSkipped++
		default:
			result.PagesBuilt++
			rendered = append(rendered, outcome.page)
		}
		if s.deps.Metrics != nil {
			s.deps.Metrics.ObservePage(outcome.diagnostic.Locale, status, outcome.diagnostic.Duration)
		}
	}

	workerCount := s.effectiveWorkerCount(len(buildCtx.Locales))
	if workerCount <= 1 || len(buildCtx.Pages) <= 1 {
		for _, page := range buildCtx.Pages {
			if err := ctx.Err(); err != nil {
				collect(renderOutcome{
					diagnostic: RenderDiagnostic{
						PageID: page.ID.String(),
						Locale: page.Locale,
						Route:  page.Route.Name,
						Err:    err,
					},
					err: err,
				})
				result.Errors = append(result.Errors, errorsSlice...)
				return finish(err)
			}
			collect(s.renderPageSafe(ctx, buildCtx, page, manifest))
		}
	} else if err := s.renderConcurrently(ctx, buildCtx, workerCount, manifest, collect); err != nil {
		errorsSlice = append(errorsSlice, err)
	}

	if opts.DryRun {
		result.Rendered = rendered
		if len(errorsSlice) > 0 {
			result.Errors = append(result.Errors, errorsSlice...)
			return finish(errors.Join(errorsSlice...))
		}
		return finish(nil)
	}

	writer := newArtifactWriter(s.deps.Storage)
	if err := s.persistPages(ctx, writer, rendered); err != nil {
		errorsSlice = append(errorsSlice, err)
	}
	assets, err := s.copyAssets(ctx, writer, manifest, opts.Force)
	if err != nil {
		errorsSlice = append(errorsSlice, err)
	}
	result.AssetsBuilt = assets.Built
	result.AssetsSkipped = assets.Skipped
	if s.cfg.GenerateRedirect {
		if err := s.writeRootRedirect(ctx, writer); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if len(errorsSlice) == 0 {
		manifest.GeneratedAt = buildCtx.GeneratedAt
		for _, page := range rendered {
			manifest.setPage(manifestPage{
				PageID:     page.PageID,
				Locale:     page.Locale,
				Route:      page.Route,
				URL:        page.URL,
				Output:     page.Output,
				Template:   page.Template,
				Hash:       page.Hash,
				Checksum:   page.Checksum,
				RenderedAt: buildCtx.GeneratedAt,
			})
		}
		if !opts.scoped() {
			manifest.prunePages(pageKeys)
		}
	}

	if s.cfg.GenerateSitemap {
		if err := s.writeSitemap(ctx, writer, manifest, buildCtx.GeneratedAt); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}
	if s.cfg.GenerateRobots {
		if err := s.writeRobots(ctx, writer); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}
	if s.cfg.Incremental && len(errorsSlice) == 0 {
		if err := s.persistManifest(ctx, writer, manifest); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	result.Rendered = rendered
	if len(errorsSlice) > 0 {
		result.Errors = append(result.Errors, errorsSlice...)
		return finish(errors.Join(errorsSlice...))
	}
	return finish(nil)
}

func (s *service) renderPage(
	ctx context.Context,
	buildCtx *BuildContext,
	data *PageData,
	manifest *buildManifest,
) renderOutcome {
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{
			PageID:   data.ID.String(),
			Locale:   data.Locale,
			Route:    data.Route.Name,
			Template: data.Context.Template,
		},
	}
	if err := ctx.Err(); err != nil {
		outcome.err = err
		outcome.diagnostic.Err = err
		return outcome
	}

	if s.cfg.Incremental && !buildCtx.Options.Force && !buildCtx.Options.DryRun && manifest != nil {
		if manifest.shouldSkipPage(data.ID, data.Locale, data.Hash, data.Output) {
			outcome.skipped = true
			outcome.diagnostic.Skipped = true
			return outcome
		}
	}

	site := buildCtx.Site
	site.Nav = s.navigation(data.Locale, data.Route.Name)
	templateCtx := TemplateContext{
		Site: site,
		Page: data.Context,
		Build: BuildMetadata{
			GeneratedAt: buildCtx.GeneratedAt,
			DryRun:      buildCtx.Options.DryRun,
			Version:     s.cfg.Version,
		},
	}

	start := time.Now()
	html, err := s.deps.Renderer.RenderTemplate(data.Context.Template, templateCtx)
	duration := time.Since(start)
	outcome.diagnostic.Duration = duration
	if err != nil {
		wrapped := fmt.Errorf("generator: render template %q for %s/%s: %w", data.Context.Template, data.Locale, data.Route.Name, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		logging.WithPageContext(s.logger, data.Locale, data.Route.Name).Error("generator.render_failed", "error", err)
		return outcome
	}

	outcome.page = RenderedPage{
		PageID:     data.ID.String(),
		Locale:     data.Locale,
		Route:      data.Route.Name,
		Template:   data.Context.Template,
		Output:     data.Output,
		HTML:       html,
		Hash:       data.Hash,
		Checksum:   computeHashFromString(html),
		Alternates: data.Context.Head.Alternates,
		URL:        data.URL,
		Duration:   duration,
	}
	return outcome
}

func (s *service) BuildPage(ctx context.Context, locale, route string) (*RenderedPage, error) {
	result, err := s.Build(ctx, BuildOptions{
		Locales: []string{locale},
		Routes:  []string{route},
		Force:   true,
	})
	if err != nil {
		return nil, err
	}
	if len(result.Rendered) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrPageNotRendered, locale, route)
	}
	page := result.Rendered[0]
	return &page, nil
}

func (s *service) BuildSitemap(ctx context.Context) error {
	if err := s.checkDependencies(); err != nil {
		return err
	}
	manifest, err := s.loadManifest(ctx)
	if err != nil {
		return err
	}
	writer := newArtifactWriter(s.deps.Storage)
	if err := s.writeSitemap(ctx, writer, manifest, s.now().UTC()); err != nil {
		return err
	}
	return s.writeRobots(ctx, writer)
}

// Clean removes every artifact recorded in the manifest plus the fixed
// site-level files.
func (s *service) Clean(ctx context.Context) error {
	if s.deps.Storage == nil {
		return nil
	}
	manifest, err := s.loadManifest(ctx)
	if err != nil {
		return err
	}
	writer := newArtifactWriter(s.deps.Storage)
	targets := make([]string, 0, len(manifest.Pages)+len(manifest.Assets)+4)
	for _, entry := range manifest.Pages {
		if strings.TrimSpace(entry.Output) != "" {
			targets = append(targets, entry.Output)
		}
	}
	for _, entry := range manifest.Assets {
		if strings.TrimSpace(entry.Output) != "" {
			targets = append(targets, entry.Output)
		}
	}
	baseDir := s.baseDir()
	for _, name := range []string{"index.html", "sitemap.xml", "robots.txt", manifestFileName} {
		targets = append(targets, joinOutputPath(baseDir, name))
	}
	var errs []error
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.Remove(ctx, target); err != nil {
			errs = append(errs, err)
		}
	}
	s.logger.Info("generator.clean", "removed", len(targets)-len(errs))
	return errors.Join(errs...)
}

func (s *service) persistPages(ctx context.Context, writer artifactWriter, pages []RenderedPage) error {
	if len(pages) == 0 {
		return nil
	}
	dirCache := map[string]struct{}{}
	if baseDir := s.baseDir(); baseDir != "" {
		if err := ensureDir(ctx, writer, dirCache, baseDir); err != nil {
			return err
		}
	}
	for i := range pages {
		if err := ensureDir(ctx, writer, dirCache, path.Dir(pages[i].Output)); err != nil {
			return err
		}
		req := writeFileRequest{
			Path:        pages[i].Output,
			Content:     strings.NewReader(pages[i].HTML),
			Size:        int64(len(pages[i].HTML)),
			Locale:      pages[i].Locale,
			Category:    categoryPage,
			ContentType: "text/html; charset=utf-8",
			Checksum:    pages[i].Checksum,
			Metadata: map[string]string{
				"page_id":  pages[i].PageID,
				"route":    pages[i].Route,
				"template": pages[i].Template,
			},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) writeRootRedirect(ctx context.Context, writer artifactWriter) error {
	defaultLocale := s.defaultLocale()
	target, err := s.deps.URLs.Path(defaultLocale, routes.HomeName)
	if err != nil {
		return err
	}
	canonical, err := s.deps.URLs.URL(defaultLocale, routes.HomeName)
	if err != nil {
		return err
	}
	html, err := buildRootRedirect(redirectData{
		Locale:    defaultLocale,
		Title:     s.cfg.SiteName,
		Target:    target,
		Canonical: canonical,
		Base:      s.deps.URLs.BasePath(),
		Locales:   s.deps.Catalog.Locales(),
	})
	if err != nil {
		return fmt.Errorf("generator: render root redirect: %w", err)
	}
	return s.writeSiteFile(ctx, writer, "index.html", html, categoryRedirect, "text/html; charset=utf-8")
}

// sitemapEntries lists every (locale, route) of the full table regardless of
// build scope. lastmod comes from the manifest when the page was built before.
func (s *service) sitemapEntries(manifest *buildManifest, fallback time.Time) ([]sitemapEntry, error) {
	table := s.deps.URLs.Table()
	entries := make([]sitemapEntry, 0, table.Len()*len(s.deps.Catalog.Locales()))
	for _, pair := range s.deps.Resolver.Enumerate(table.Names()) {
		route, err := table.Lookup(pair.Route)
		if err != nil {
			return nil, err
		}
		loc, err := s.deps.URLs.URLFor(pair.Locale, route)
		if err != nil {
			return nil, err
		}
		alternates, err := s.deps.URLs.AlternatesFor(route)
		if err != nil {
			return nil, err
		}
		lastMod := fallback
		if entry, ok := manifest.lookupPage(identity.PageID(pair.Locale, route.Name), pair.Locale); ok && !entry.RenderedAt.IsZero() {
			lastMod = entry.RenderedAt
		}
		entries = append(entries, sitemapEntry{
			Location:   loc,
			LastMod:    lastMod,
			ChangeFreq: route.ChangeFreq,
			Priority:   route.Priority,
			Alternates: alternates,
		})
	}
	return entries, nil
}

func (s *service) writeSitemap(ctx context.Context, writer artifactWriter, manifest *buildManifest, generatedAt time.Time) error {
	entries, err := s.sitemapEntries(manifest, generatedAt)
	if err != nil {
		return fmt.Errorf("generator: sitemap entries: %w", err)
	}
	return s.writeSiteFile(ctx, writer, "sitemap.xml", buildSitemap(entries), categorySitemap, "application/xml")
}

func (s *service) writeRobots(ctx context.Context, writer artifactWriter) error {
	root := s.deps.URLs.SiteURL() + s.deps.URLs.BasePath()
	return s.writeSiteFile(ctx, writer, "robots.txt", buildRobots(root, s.cfg.GenerateSitemap), categoryRobots, "text/plain; charset=utf-8")
}

func (s *service) writeSiteFile(ctx context.Context, writer artifactWriter, name, body string, category writeCategory, contentType string) error {
	fullPath := joinOutputPath(s.baseDir(), name)
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	return writer.WriteFile(ctx, writeFileRequest{
		Path:        fullPath,
		Content:     strings.NewReader(body),
		Size:        int64(len(body)),
		Category:    category,
		ContentType: contentType,
		Checksum:    computeHashFromString(body),
		Metadata: map[string]string{
			"generated_at": s.now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *service) loadManifest(ctx context.Context) (*buildManifest, error) {
	if s.deps.Storage == nil {
		return newBuildManifest(), nil
	}
	rows, err := s.deps.Storage.Query(ctx, StorageOpRead, s.manifestTargetPath())
	if err != nil {
		return nil, fmt.Errorf("generator: read manifest: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return newBuildManifest(), nil
	}
	var data []byte
	if err := rows.Scan(&data); err != nil {
		return nil, fmt.Errorf("generator: scan manifest: %w", err)
	}
	return parseManifest(data)
}

func (s *service) manifestTargetPath() string {
	return joinOutputPath(s.baseDir(), manifestFileName)
}

func (s *service) persistManifest(ctx context.Context, writer artifactWriter, manifest *buildManifest) error {
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	target := s.manifestTargetPath()
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(target)); err != nil {
		return err
	}
	metadata := map[string]string{
		"version": strconv.Itoa(manifest.Version),
	}
	if !manifest.GeneratedAt.IsZero() {
		metadata["generated_at"] = manifest.GeneratedAt.UTC().Format(time.RFC3339)
	}
	return writer.WriteFile(ctx, writeFileRequest{
		Path:        target,
		Content:     bytes.NewReader(data),
		Size:        int64(len(data)),
		Category:    categoryManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
		Metadata:    metadata,
	})
}

func (s *service) baseDir() string {
	return strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
}

func (s *service) defaultLocale() string {
	return s.deps.Catalog.DefaultLocale()
}

func ensureDir(ctx context.Context, writer artifactWriter, cache map[string]struct{}, dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" || dir == "." {
		return nil
	}
	if cache != nil {
		if _, ok := cache[dir]; ok {
			return nil
		}
		cache[dir] = struct{}{}
	}
	return writer.EnsureDir(ctx, dir)
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildPage(context.Context, string, string) (*RenderedPage, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildSitemap(context.Context) error {
	return ErrServiceDisabled
}

func (disabledService) Validate(context.Context) (*ValidationReport, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}

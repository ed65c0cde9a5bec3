package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/eureka-automation/eureka-site/internal/content"
	"github.com/eureka-automation/eureka-site/internal/i18n"
	"github.com/eureka-automation/eureka-site/internal/routes"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

type recordingRenderer struct {
	mu       sync.Mutex
	contexts []TemplateContext
	fail     map[string]error
}

func (r *recordingRenderer) RenderTemplate(name string, data any, _ ...io.Writer) (string, error) {
	ctx, ok := data.(TemplateContext)
	if !ok {
		return "", fmt.Errorf("unexpected data %T", data)
	}
	r.mu.Lock()
	r.contexts = append(r.contexts, ctx)
	r.mu.Unlock()
	if err := r.fail[ctx.Page.Locale+"/"+ctx.Page.Route]; err != nil {
		return "", err
	}
	return fmt.Sprintf("<html lang=%q><title>%s</title>%s</html>", ctx.Page.Locale, ctx.Page.Head.Title, name), nil
}

func (r *recordingRenderer) RenderString(string, any, ...io.Writer) (string, error) {
	return "", nil
}

func (r *recordingRenderer) byPage() map[string]TemplateContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]TemplateContext{}
	for _, ctx := range r.contexts {
		out[ctx.Page.Locale+"/"+ctx.Page.Route] = ctx
	}
	return out
}

type memoryStorage struct {
	mu         sync.Mutex
	files      map[string][]byte
	categories map[string]string
	dirs       map[string]struct{}
	writes     int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{
		files:      map[string][]byte{},
		categories: map[string]string{},
		dirs:       map[string]struct{}{},
	}
}

func (m *memoryStorage) Query(_ context.Context, query string, args ...any) (interfaces.Rows, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if query != StorageOpRead {
		return nil, fmt.Errorf("unexpected query %s", query)
	}
	data, ok := m.files[args[0].(string)]
	return &memoryRows{data: data, ok: ok}, nil
}

func (m *memoryStorage) Exec(_ context.Context, query string, args ...any) (interfaces.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target := args[0].(string)
	switch query {
	case StorageOpEnsureDir:
		m.dirs[target] = struct{}{}
	case StorageOpWrite:
		data, err := io.ReadAll(args[1].(io.Reader))
		if err != nil {
			return nil, err
		}
		m.files[target] = data
		m.categories[target] = args[3].(string)
		m.writes++
	case StorageOpRemove:
		delete(m.files, target)
	default:
		return nil, fmt.Errorf("unexpected exec %s", query)
	}
	return memoryResult{}, nil
}

func (m *memoryStorage) file(path string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	return string(data), ok
}

func (m *memoryStorage) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

type memoryRows struct {
	data []byte
	ok   bool
	read bool
}

func (r *memoryRows) Next() bool {
	if !r.ok || r.read {
		return false
	}
	r.read = true
	return true
}

func (r *memoryRows) Scan(dest ...any) error {
	*dest[0].(*[]byte) = append([]byte(nil), r.data...)
	return nil
}

func (r *memoryRows) Close() error { return nil }

type memoryResult struct{}

func (memoryResult) RowsAffected() (int64, error) { return 1, nil }

type recordingMetrics struct {
	mu     sync.Mutex
	pages  map[string]int
	builds []string
}

func (m *recordingMetrics) ObservePage(_ string, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pages == nil {
		m.pages = map[string]int{}
	}
	m.pages[outcome]++
}

func (m *recordingMetrics) ObserveBuild(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builds = append(m.builds, outcome)
}

const testVideos = `[
  {"id": "v1", "title": {"en": "Palletizer", "th": "เครื่องจัดเรียง"}, "thumbnail": "/images/v1.jpg",
   "youtubeUrl": "https://youtu.be/dQw4w9WgXcQ",
   "category": {"en": "Robotics", "th": "หุ่นยนต์"}, "description": "demo"}
]`

const testCareers = `{
  "engineering": [
    {"status": "open", "dept": "Engineering", "title": {"en": "PLC Engineer", "th": "วิศวกร PLC"},
     "location": "Bangkok", "type": "Full-time", "desc": ["Design PLC logic"],
     "experience": ["3 years"], "education": ["B.Eng."], "salary": "Negotiable"},
    {"status": "closed", "dept": "Engineering", "title": "Retired role",
     "location": "Bangkok", "type": "Full-time", "desc": "n/a",
     "experience": "n/a", "education": "n/a", "salary": "n/a"}
  ]
}`

type fixture struct {
	service  Service
	renderer *recordingRenderer
	storage  *memoryStorage
	metrics  *recordingMetrics
	catalog  *i18n.Catalog
}

func testTable(t *testing.T) *routes.Table {
	t.Helper()
	table, err := routes.NewTable(
		routes.Route{Path: "", Priority: 1.0, Sections: []string{routes.SectionGallery}},
		routes.Route{Path: "about", Priority: 0.8},
		routes.Route{Path: "careers", Priority: 0.8, Sections: []string{routes.SectionCareers}},
	)
	if err != nil {
		t.Fatalf("route table: %v", err)
	}
	return table
}

func testCatalog(dropThai ...string) *i18n.Catalog {
	keys := []string{
		"meta.home.title", "meta.home.description",
		"meta.about.title", "meta.about.description",
		"meta.careers.title", "meta.careers.description",
		"nav.home", "nav.about", "nav.careers",
		"careers.form.success", "careers.form.error",
	}
	en := i18n.NewBundle("en")
	th := i18n.NewBundle("th")
	for _, key := range keys {
		en.Strings[key] = "EN " + key
		th.Strings[key] = "TH " + key
	}
	en.Strings["meta.about.title"] = "About us"
	th.Strings["meta.about.title"] = "เกี่ยวกับเรา"
	for _, key := range dropThai {
		delete(th.Strings, key)
	}
	return i18n.NewCatalog(i18n.Config{DefaultLocale: "en", Locales: []string{"en", "th"}}, en, th)
}

func newFixture(t *testing.T, cfg Config, catalog *i18n.Catalog) *fixture {
	t.Helper()
	if catalog == nil {
		catalog = testCatalog()
	}
	table := testTable(t)
	urls, err := routes.NewURLBuilder(table, routes.URLOptions{
		SiteURL:       "https://eureka-automation.com",
		BasePath:      "/site",
		DefaultLocale: "en",
		Locales:       []string{"en", "th"},
		TrailingSlash: true,
	})
	if err != nil {
		t.Fatalf("url builder: %v", err)
	}
	postings, err := content.ParseCareers([]byte(testCareers))
	if err != nil {
		t.Fatalf("careers: %v", err)
	}
	videos, err := content.ParseVideos([]byte(testVideos))
	if err != nil {
		t.Fatalf("videos: %v", err)
	}

	if cfg.NavRoutes == nil {
		cfg.NavRoutes = []string{"home", "about", "careers"}
	}
	if cfg.SiteName == "" {
		cfg.SiteName = "Eureka Automation"
	}
	f := &fixture{
		renderer: &recordingRenderer{},
		storage:  newMemoryStorage(),
		metrics:  &recordingMetrics{},
		catalog:  catalog,
	}
	f.service = NewService(cfg, Dependencies{
		Catalog:  catalog,
		Resolver: i18n.NewResolver(catalog.Config(), "/site"),
		URLs:     urls,
		Content:  &content.Store{Careers: postings, Videos: videos},
		Renderer: f.renderer,
		Assets:   nil,
		Storage:  f.storage,
		Metrics:  f.metrics,
	})
	return f
}

func defaultTestConfig() Config {
	return Config{
		TitleFormat:      "%s | Eureka Automation",
		Incremental:      true,
		GenerateSitemap:  true,
		GenerateRobots:   true,
		GenerateRedirect: true,
		RequireParity:    true,
		Workers:          2,
		OGLocales:        map[string]string{"en": "en_US", "th": "th_TH"},
		Organization:     Organization{Email: "info@eureka-automation.com", Country: "TH", Logo: "/images/logo.png"},
	}
}

func TestBuildRendersEveryLocaleAndRoute(t *testing.T) {
	f := newFixture(t, defaultTestConfig(), nil)

	result, err := f.service.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.PagesBuilt != 6 {
		t.Fatalf("expected 6 pages, got %d", result.PagesBuilt)
	}

	for _, locale := range []string{"en", "th"} {
		for _, segment := range []string{"", "about/", "careers/"} {
			path := locale + "/" + segment + "index.html"
			if _, ok := f.storage.file(path); !ok {
				t.Fatalf("expected %s to be written", path)
			}
		}
	}

	pages := f.renderer.byPage()
	for key, ctx := range pages {
		alternates := ctx.Page.Head.Alternates
		if len(alternates) != 3 {
			t.Fatalf("%s: expected en, th and x-default alternates, got %+v", key, alternates)
		}
		seen := map[string]string{}
		for _, alt := range alternates {
			seen[alt.Locale] = alt.Href
		}
		for _, locale := range []string{"en", "th"} {
			href := seen[locale]
			if !strings.HasPrefix(href, "https://eureka-automation.com/site/"+locale+"/") {
				t.Fatalf("%s: alternate %s has unexpected href %q", key, locale, href)
			}
		}
		if seen[routes.XDefault] != seen["en"] {
			t.Fatalf("%s: x-default should point at the default locale", key)
		}
	}
}

func TestBuildPopulatesHeadMetadata(t *testing.T) {
	f := newFixture(t, defaultTestConfig(), nil)
	if _, err := f.service.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}

	about := f.renderer.byPage()["th/about"]
	head := about.Page.Head
	if head.Title != "เกี่ยวกับเรา | Eureka Automation" {
		t.Fatalf("unexpected title %q", head.Title)
	}
	if head.Canonical != "https://eureka-automation.com/site/th/about/" {
		t.Fatalf("unexpected canonical %q", head.Canonical)
	}
	if head.OGLocale != "th_TH" || len(head.OGLocaleAlternates) != 1 || head.OGLocaleAlternates[0] != "en_US" {
		t.Fatalf("unexpected og locales %q %v", head.OGLocale, head.OGLocaleAlternates)
	}
	if !strings.Contains(string(head.JSONLD), `"@type":"Organization"`) {
		t.Fatalf("expected organization json-ld, got %s", head.JSONLD)
	}
	if !strings.Contains(string(head.JSONLD), `"url":"https://eureka-automation.com/site/th/"`) {
		t.Fatalf("json-ld should point at the locale home, got %s", head.JSONLD)
	}
	if about.Page.Home != "/site/th/" {
		t.Fatalf("unexpected home path %q", about.Page.Home)
	}
	if len(about.Site.Nav) != 3 || !about.Site.Nav[1].Active {
		t.Fatalf("expected about to be the active nav item: %+v", about.Site.Nav)
	}
}

func TestBuildAttachesSectionsByRoute(t *testing.T) {
	f := newFixture(t, defaultTestConfig(), nil)
	if _, err := f.service.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	pages := f.renderer.byPage()

	careers := pages["th/careers"].Page.Careers
	if careers == nil {
		t.Fatalf("careers page should carry the careers section")
	}
	if len(careers.Positions) != 1 || careers.Positions[0].Title != "วิศวกร PLC" {
		t.Fatalf("expected only the open, localized posting: %+v", careers.Positions)
	}
	if pages["th/careers"].Page.Gallery != nil {
		t.Fatalf("careers page should not carry the gallery")
	}

	gallerySection := pages["en/home"].Page.Gallery
	if gallerySection == nil || len(gallerySection.Videos) != 1 {
		t.Fatalf("home page should carry the gallery: %+v", gallerySection)
	}
	video := gallerySection.Videos[0]
	if !video.Playable || video.EmbedURL != "https://www.youtube.com/embed/dQw4w9WgXcQ" {
		t.Fatalf("unexpected video card %+v", video)
	}
	if !strings.Contains(string(gallerySection.State), `"mode":"browsing"`) {
		t.Fatalf("unexpected initial state %s", gallerySection.State)
	}
	if pages["en/about"].Page.Careers != nil || pages["en/about"].Page.Gallery != nil {
		t.Fatalf("about page should not carry widget data")
	}
}

func TestBuildWritesSitemapRobotsAndRedirect(t *testing.T) {
	f := newFixture(t, defaultTestConfig(), nil)
	if _, err := f.service.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}

	sitemap, ok := f.storage.file("sitemap.xml")
	if !ok {
		t.Fatalf("sitemap.xml not written")
	}
	if got := strings.Count(sitemap, "<url>"); got != 6 {
		t.Fatalf("expected 6 sitemap entries, got %d", got)
	}
	if !strings.Contains(sitemap, "<loc>https://eureka-automation.com/site/th/careers/</loc>") {
		t.Fatalf("sitemap missing th careers: %s", sitemap)
	}
	if !strings.Contains(sitemap, `<xhtml:link rel="alternate" hreflang="th" href="https://eureka-automation.com/site/th/about/"/>`) {
		t.Fatalf("sitemap missing alternates: %s", sitemap)
	}
	if !strings.Contains(sitemap, "<priority>1.0</priority>") || !strings.Contains(sitemap, "<changefreq>monthly</changefreq>") {
		t.Fatalf("sitemap missing hints: %s", sitemap)
	}

	robots, ok := f.storage.file("robots.txt")
	if !ok || !strings.Contains(robots, "Sitemap: https://eureka-automation.com/site/sitemap.xml") {
		t.Fatalf("unexpected robots.txt %q", robots)
	}

	redirect, ok := f.storage.file("index.html")
	if !ok {
		t.Fatalf("root redirect not written")
	}
	if !strings.Contains(redirect, `url=/site/en/`) {
		t.Fatalf("redirect should target the default locale: %s", redirect)
	}
	if f.storage.categories["index.html"] != string(categoryRedirect) {
		t.Fatalf("unexpected redirect category %q", f.storage.categories["index.html"])
	}
}

func TestIncrementalBuildSkipsUnchangedPages(t *testing.T) {
	f := newFixture(t, defaultTestConfig(), nil)
	ctx := context.Background()
	if _, err := f.service.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if _, ok := f.storage.file(manifestFileName); !ok {
		t.Fatalf("manifest not persisted")
	}

	second, err := f.service.Build(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if second.PagesBuilt != 0 || second.PagesSkipped != 6 {
		t.Fatalf("expected all pages skipped, got built=%d skipped=%d", second.PagesBuilt, second.PagesSkipped)
	}

	forced, err := f.service.Build(ctx, BuildOptions{Force: true})
	if err != nil {
		t.Fatalf("forced build: %v", err)
	}
	if forced.PagesBuilt != 6 {
		t.Fatalf("force should rebuild every page, got %d", forced.PagesBuilt)
	}
	if f.metrics.pages["skipped"] != 6 {
		t.Fatalf("expected 6 skipped observations, got %d", f.metrics.pages["skipped"])
	}
}

func TestBuildAbortsOnMissingTranslations(t *testing.T) {
	f := newFixture(t, defaultTestConfig(), testCatalog("meta.careers.title"))

	result, err := f.service.Build(context.Background(), BuildOptions{})
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if result.Validation == nil || result.Validation.OK() {
		t.Fatalf("expected a failing validation report")
	}
	if missing := result.Validation.Required.Missing["th"]; len(missing) != 1 || missing[0] != "meta.careers.title" {
		t.Fatalf("unexpected missing keys %v", missing)
	}
	if f.storage.writeCount() != 0 {
		t.Fatalf("nothing should be written when validation fails")
	}

	result, err = f.service.Build(context.Background(), BuildOptions{AllowMissing: true})
	if err != nil {
		t.Fatalf("AllowMissing build: %v", err)
	}
	if result.PagesBuilt != 6 {
		t.Fatalf("expected pages despite missing keys, got %d", result.PagesBuilt)
	}
	careers := f.renderer.byPage()["th/careers"]
	if careers.Page.Head.Title != "EN meta.careers.title | Eureka Automation" {
		t.Fatalf("missing key should fall back to the default locale, got %q", careers.Page.Head.Title)
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	f := newFixture(t, defaultTestConfig(), nil)
	result, err := f.service.Build(context.Background(), BuildOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !result.DryRun || len(result.Rendered) != 6 {
		t.Fatalf("expected 6 rendered pages in dry run, got %d", len(result.Rendered))
	}
	if f.storage.writeCount() != 0 {
		t.Fatalf("dry run should not write, got %d writes", f.storage.writeCount())
	}
}

func TestBuildScopedToLocaleAndRoute(t *testing.T) {
	f := newFixture(t, defaultTestConfig(), nil)

	page, err := f.service.BuildPage(context.Background(), "th", "about")
	if err != nil {
		t.Fatalf("BuildPage: %v", err)
	}
	if page.Output != "th/about/index.html" {
		t.Fatalf("unexpected output %q", page.Output)
	}
	if _, ok := f.storage.file("en/about/index.html"); ok {
		t.Fatalf("scoped build should not render other locales")
	}

	if _, err := f.service.Build(context.Background(), BuildOptions{Locales: []string{"jp"}}); !errors.Is(err, ErrUnknownLocale) {
		t.Fatalf("expected ErrUnknownLocale, got %v", err)
	}
	if _, err := f.service.Build(context.Background(), BuildOptions{Routes: []string{"blog"}}); !errors.Is(err, routes.ErrRouteNotFound) {
		t.Fatalf("expected ErrRouteNotFound, got %v", err)
	}
}

func TestRenderFailureIsReported(t *testing.T) {
	f := newFixture(t, defaultTestConfig(), nil)
	boom := errors.New("template exploded")
	f.renderer.fail = map[string]error{"th/careers": boom}

	result, err := f.service.Build(context.Background(), BuildOptions{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected render error, got %v", err)
	}
	if result.PagesBuilt != 5 {
		t.Fatalf("other pages should still render, got %d", result.PagesBuilt)
	}
	if _, ok := f.storage.file(manifestFileName); ok {
		t.Fatalf("manifest should not be persisted after a failed build")
	}
}

func TestCleanRemovesManifestArtifacts(t *testing.T) {
	f := newFixture(t, defaultTestConfig(), nil)
	ctx := context.Background()
	if _, err := f.service.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := f.service.Clean(ctx); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	for _, path := range []string{"en/index.html", "th/careers/index.html", "sitemap.xml", "robots.txt", "index.html", manifestFileName} {
		if _, ok := f.storage.file(path); ok {
			t.Fatalf("expected %s to be removed", path)
		}
	}
}

func TestBuildCopiesAssetsIncrementally(t *testing.T) {
	f := newFixture(t, defaultTestConfig(), nil)
	svc := f.service.(*service)
	svc.deps.Assets = []fs.FS{
		fstest.MapFS{
			"css/site.css": {Data: []byte("body{}")},
			"js/site.js":   {Data: []byte("console.log(1)")},
		},
		fstest.MapFS{
			"css/site.css": {Data: []byte("body{color:red}")},
		},
	}

	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.AssetsBuilt != 2 {
		t.Fatalf("expected 2 assets, got %d", result.AssetsBuilt)
	}
	css, _ := f.storage.file("css/site.css")
	if css != "body{color:red}" {
		t.Fatalf("later asset filesystem should win, got %q", css)
	}

	again, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if again.AssetsSkipped != 2 || again.AssetsBuilt != 0 {
		t.Fatalf("unchanged assets should be skipped: %+v", again)
	}
}

func TestValidateReportsParityAndVideoLint(t *testing.T) {
	catalog := testCatalog()
	catalog.Bundle("en").Strings["home.extra"] = "only english"
	f := newFixture(t, defaultTestConfig(), catalog)
	svc := f.service.(*service)
	svc.deps.Content.Videos = append(svc.deps.Content.Videos, content.Video{
		ID:         "broken",
		YouTubeURL: "https://example.com/not-a-video",
	})

	report, err := svc.Validate(context.Background())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if report.OK() {
		t.Fatalf("expected report failures")
	}
	if missing := report.Parity.Missing["th"]; len(missing) != 1 || missing[0] != "home.extra" {
		t.Fatalf("unexpected parity report %v", report.Parity.Missing)
	}
	if report.Videos == nil {
		t.Fatalf("expected video lint failure")
	}
}

func TestDisabledService(t *testing.T) {
	svc := NewDisabledService()
	if _, err := svc.Build(context.Background(), BuildOptions{}); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
	if err := svc.Clean(context.Background()); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}

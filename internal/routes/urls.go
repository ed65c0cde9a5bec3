package routes

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"
)

const (
	siteGroup = "site"
	// XDefault is the hreflang value pointing crawlers at the default locale.
	XDefault = "x-default"
)

// URLOptions configures the localized URL builder.
type URLOptions struct {
	SiteURL       string
	BasePath      string
	DefaultLocale string
	Locales       []string
	TrailingSlash bool
}

// Alternate is one hreflang link of a page.
type Alternate struct {
	Locale string
	Href   string
}

// URLBuilder produces base-path aware relative paths and absolute URLs for
// every (locale, route) pair. Absolute URLs go through a go-urlkit route manager
// with one child group per locale.
type URLBuilder struct {
	table         *Table
	siteURL       string
	basePath      string
	defaultLocale string
	locales       []string
	trailing      bool

	manager *urlkit.RouteManager
	groups  map[string]*urlkit.Group
	mu      sync.RWMutex
}

// NewURLBuilder registers the table routes under a locale group each.
func NewURLBuilder(table *Table, opts URLOptions) (*URLBuilder, error) {
	if table == nil {
		table = Default()
	}
	siteURL := strings.TrimRight(strings.TrimSpace(opts.SiteURL), "/")
	if siteURL != "" {
		parsed, err := url.Parse(siteURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("routes: invalid site url %q", opts.SiteURL)
		}
	}
	locales := make([]string, 0, len(opts.Locales))
	for _, locale := range opts.Locales {
		if trimmed := strings.ToLower(strings.TrimSpace(locale)); trimmed != "" {
			locales = append(locales, trimmed)
		}
	}
	defaultLocale := strings.ToLower(strings.TrimSpace(opts.DefaultLocale))
	if defaultLocale == "" && len(locales) > 0 {
		defaultLocale = locales[0]
	}

	b := &URLBuilder{
		table:         table,
		siteURL:       siteURL,
		basePath:      CleanBasePath(opts.BasePath),
		defaultLocale: defaultLocale,
		locales:       locales,
		trailing:      opts.TrailingSlash,
		groups:        make(map[string]*urlkit.Group, len(locales)),
	}
	if siteURL != "" {
		b.manager = urlkit.NewRouteManager(b.routeConfig())
	}
	return b, nil
}

func (b *URLBuilder) routeConfig() *urlkit.Config {
	children := make([]urlkit.GroupConfig, 0, len(b.locales))
	for _, locale := range b.locales {
		paths := make(map[string]string, b.table.Len())
		for _, route := range b.table.routes {
			paths[route.Name] = "/" + route.Segment()
		}
		children = append(children, urlkit.GroupConfig{
			Name:  locale,
			Path:  b.basePath + "/" + locale,
			Paths: paths,
		})
	}
	return &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    siteGroup,
				BaseURL: b.siteURL,
				Paths:   map[string]string{},
				Groups:  children,
			},
		},
	}
}

// Table returns the route table backing the builder.
func (b *URLBuilder) Table() *Table { return b.table }

// BasePath returns the normalized deployment sub-path ("" or "/prefix").
func (b *URLBuilder) BasePath() string { return b.basePath }

// SiteURL returns the site origin without a trailing slash.
func (b *URLBuilder) SiteURL() string { return b.siteURL }

// Path returns the base-path prefixed path of a route: /{base}/{locale}/{route}/.
func (b *URLBuilder) Path(locale, name string) (string, error) {
	route, err := b.table.Lookup(name)
	if err != nil {
		return "", err
	}
	return b.pathFor(locale, route), nil
}

// PathFor is Path for an already resolved route.
func (b *URLBuilder) PathFor(locale string, route Route) string {
	return b.pathFor(locale, route)
}

func (b *URLBuilder) pathFor(locale string, route Route) string {
	p := b.basePath + "/" + strings.ToLower(strings.TrimSpace(locale))
	if segment := route.Segment(); segment != "" {
		p += "/" + segment
	}
	return b.finish(p)
}

// URL returns the absolute URL of a route for a locale. Without a site URL it
// degrades to the relative path.
func (b *URLBuilder) URL(locale, name string) (string, error) {
	route, err := b.table.Lookup(name)
	if err != nil {
		return "", err
	}
	return b.URLFor(locale, route)
}

// URLFor is URL for an already resolved route.
func (b *URLBuilder) URLFor(locale string, route Route) (string, error) {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if b.manager == nil {
		return b.pathFor(locale, route), nil
	}
	group, err := b.group(locale)
	if err != nil {
		return "", err
	}
	builder, err := safeBuilder(group, route.Name)
	if err != nil {
		return "", err
	}
	built, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("routes: build %s/%s: %w", locale, route.Name, err)
	}
	return b.finish(collapseSlashes(built)), nil
}

// Alternates lists the hreflang links of a route: one per locale in configured
// order followed by x-default pointing at the default locale.
func (b *URLBuilder) Alternates(name string) ([]Alternate, error) {
	route, err := b.table.Lookup(name)
	if err != nil {
		return nil, err
	}
	return b.AlternatesFor(route)
}

// AlternatesFor is Alternates for an already resolved route.
func (b *URLBuilder) AlternatesFor(route Route) ([]Alternate, error) {
	out := make([]Alternate, 0, len(b.locales)+1)
	for _, locale := range b.locales {
		href, err := b.URLFor(locale, route)
		if err != nil {
			return nil, err
		}
		out = append(out, Alternate{Locale: locale, Href: href})
	}
	if b.defaultLocale != "" {
		href, err := b.URLFor(b.defaultLocale, route)
		if err != nil {
			return nil, err
		}
		out = append(out, Alternate{Locale: XDefault, Href: href})
	}
	return out, nil
}

// Asset prefixes a static asset path with the base path.
func (b *URLBuilder) Asset(p string) string {
	return WithBasePath(b.basePath, p)
}

func (b *URLBuilder) finish(p string) string {
	if !b.trailing {
		if trimmed := strings.TrimRight(p, "/"); trimmed != "" {
			return trimmed
		}
		return "/"
	}
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

func (b *URLBuilder) group(locale string) (*urlkit.Group, error) {
	b.mu.RLock()
	group, ok := b.groups[locale]
	b.mu.RUnlock()
	if ok {
		return group, nil
	}

	root, err := lookupGroup(b.manager, siteGroup)
	if err != nil {
		return nil, err
	}
	group, err = lookupChildGroup(root, locale)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.groups[locale] = group
	b.mu.Unlock()
	return group, nil
}

// collapseSlashes removes empty path segments urlkit may leave when joining
// a group path with the "/" home route.
func collapseSlashes(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	for strings.Contains(parsed.Path, "//") {
		parsed.Path = strings.ReplaceAll(parsed.Path, "//", "/")
	}
	return parsed.String()
}

// WithBasePath prefixes p with basePath. Absolute http(s) URLs pass through.
func WithBasePath(basePath, p string) string {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	basePath = CleanBasePath(basePath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return basePath + p
}

// CleanBasePath normalizes a deployment sub-path to "" or "/segment[/segment]".
func CleanBasePath(basePath string) string {
	trimmed := strings.Trim(strings.TrimSpace(basePath), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("routes: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			builder = nil
			err = fmt.Errorf("routes: urlkit route %q not registered: %v", route, rec)
		}
	}()
	return group.Builder(route), nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("routes: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("routes: route group %q not found", name)
		}
	}()
	return manager.Group(name), nil
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	if parent == nil {
		return nil, fmt.Errorf("routes: parent group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("routes: locale group %q not found", name)
		}
	}()
	return parent.Group(name), nil
}

package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eureka-automation/eureka-site/internal/careers"
	"github.com/eureka-automation/eureka-site/internal/content"
	"github.com/eureka-automation/eureka-site/internal/gallery"
	"github.com/eureka-automation/eureka-site/internal/identity"
	"github.com/eureka-automation/eureka-site/internal/routes"
)

// BuildContext is everything resolved before rendering starts.
type BuildContext struct {
	GeneratedAt   time.Time
	DefaultLocale string
	Locales       []string
	Site          SiteMetadata
	Pages         []*PageData
	Options       BuildOptions
}

// PageData is one (locale, route) page ready to render.
type PageData struct {
	ID      uuid.UUID
	Locale  string
	Route   routes.Route
	Context PageContext
	URL     string
	Output  string
	Hash    string
}

// fingerprinter is implemented by renderers that can summarise their loaded
// templates, so template edits invalidate incremental builds.
type fingerprinter interface {
	Fingerprint() string
}

type localeSections struct {
	careers *CareersSection
	gallery *GallerySection
}

func (s *service) loadContext(ctx context.Context, opts BuildOptions) (*BuildContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	locales, err := s.selectLocales(opts.Locales)
	if err != nil {
		return nil, err
	}
	selected, err := s.selectRoutes(opts.Routes)
	if err != nil {
		return nil, err
	}

	buildCtx := &BuildContext{
		GeneratedAt:   s.now().UTC(),
		DefaultLocale: s.defaultLocale(),
		Locales:       locales,
		Options:       opts,
		Site: SiteMetadata{
			Name:          s.cfg.SiteName,
			URL:           s.deps.URLs.SiteURL(),
			BasePath:      s.deps.URLs.BasePath(),
			DefaultLocale: s.defaultLocale(),
			Locales:       s.deps.Catalog.Locales(),
		},
	}

	fingerprint := ""
	if fp, ok := s.deps.Renderer.(fingerprinter); ok {
		fingerprint = fp.Fingerprint()
	}

	baseDir := s.baseDir()
	names := make([]string, 0, len(selected))
	for _, route := range selected {
		names = append(names, route.Name)
	}
	sections := map[string]localeSections{}
	for _, pair := range s.deps.Resolver.Enumerate(names) {
		if !slices.Contains(locales, pair.Locale) {
			continue
		}
		route, err := s.deps.URLs.Table().Lookup(pair.Route)
		if err != nil {
			return nil, err
		}
		cached, ok := sections[pair.Locale]
		if !ok {
			cached, err = s.buildSections(pair.Locale)
			if err != nil {
				return nil, err
			}
			sections[pair.Locale] = cached
		}
		data, err := s.buildPageData(pair.Locale, route, cached)
		if err != nil {
			return nil, err
		}
		data.Output = joinOutputPath(baseDir, buildOutputPath(route.Segment(), pair.Locale))
		data.Hash, err = s.dependencyHash(data, fingerprint)
		if err != nil {
			return nil, err
		}
		buildCtx.Pages = append(buildCtx.Pages, data)
	}
	return buildCtx, nil
}

func (s *service) selectLocales(requested []string) ([]string, error) {
	all := s.deps.Catalog.Locales()
	if len(requested) == 0 {
		return all, nil
	}
	out := make([]string, 0, len(requested))
	for _, locale := range requested {
		code := strings.ToLower(strings.TrimSpace(locale))
		if !slices.Contains(all, code) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLocale, locale)
		}
		if !slices.Contains(out, code) {
			out = append(out, code)
		}
	}
	return out, nil
}

func (s *service) selectRoutes(requested []string) ([]routes.Route, error) {
	table := s.deps.URLs.Table()
	if len(requested) == 0 {
		return table.All(), nil
	}
	out := make([]routes.Route, 0, len(requested))
	for _, name := range requested {
		route, err := table.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, route)
	}
	return out, nil
}

func (s *service) buildPageData(locale string, route routes.Route, sections localeSections) (*PageData, error) {
	canonical, err := s.deps.URLs.URLFor(locale, route)
	if err != nil {
		return nil, fmt.Errorf("generator: url for %s/%s: %w", locale, route.Name, err)
	}
	alternates, err := s.deps.URLs.AlternatesFor(route)
	if err != nil {
		return nil, fmt.Errorf("generator: alternates for %s: %w", route.Name, err)
	}

	title := s.translate(locale, route.TitleKey)
	description := s.translate(locale, route.DescriptionKey)
	page := PageContext{
		Locale:      locale,
		Route:       route.Name,
		Template:    route.Template,
		Path:        s.deps.URLs.PathFor(locale, route),
		Frontmatter: map[string]any{},
	}
	if home, err := s.deps.URLs.Path(locale, routes.HomeName); err == nil {
		page.Home = home
	}
	if body, ok := s.deps.Pages.Lookup(locale, route.Name); ok {
		page.Body = body.HTML
		if body.FrontMatter.Title != "" {
			title = body.FrontMatter.Title
		}
		if body.FrontMatter.Description != "" {
			description = body.FrontMatter.Description
		}
		if body.FrontMatter.Template != "" {
			page.Template = body.FrontMatter.Template
		}
		for key, value := range body.FrontMatter.Custom {
			page.Frontmatter[key] = value
		}
	}

	homeURL, err := s.deps.URLs.URL(locale, routes.HomeName)
	if err != nil {
		homeURL = canonical
	}
	logo := s.absoluteAsset(s.cfg.Organization.Logo)
	jsonLD, err := organizationJSONLD(s.cfg.Organization, locale, description, homeURL, logo)
	if err != nil {
		return nil, err
	}
	page.Head = HeadMetadata{
		Title:              formatTitle(s.cfg.TitleFormat, title, s.cfg.SiteName),
		Description:        description,
		Canonical:          canonical,
		Alternates:         alternates,
		OGLocale:           ogLocale(s.cfg.OGLocales, locale),
		OGLocaleAlternates: ogAlternates(s.cfg.OGLocales, locale, s.deps.Catalog.Locales()),
		OGImage:            logo,
		JSONLD:             jsonLD,
	}
	page.Switch = s.localeSwitch(locale, route)

	if route.HasSection(routes.SectionCareers) {
		page.Careers = sections.careers
	}
	if route.HasSection(routes.SectionGallery) {
		page.Gallery = sections.gallery
	}
	if route.HasSection(routes.SectionContact) {
		contact := s.cfg.ContactForm
		page.Contact = &contact
	}

	return &PageData{
		ID:      identity.PageID(locale, route.Name),
		Locale:  locale,
		Route:   route,
		Context: page,
		URL:     canonical,
	}, nil
}

func (s *service) buildSections(locale string) (localeSections, error) {
	out := localeSections{}
	store := s.deps.Content
	fallback := s.defaultLocale()

	positions := []content.CareerView{}
	if store != nil {
		positions = content.LocalizeCareers(store.OpenCareers(), locale, fallback)
	}
	board := careers.NewBoard(positions)
	out.careers = &CareersSection{
		Positions:   board.Positions(),
		Departments: board.Departments(),
		Groups:      board.Groups(),
		Form:        s.cfg.CareersForm,
	}

	videos := []content.VideoView{}
	if store != nil {
		videos = content.LocalizeVideos(store.Videos, locale, fallback)
	}
	g := gallery.New(locale, videos, gallery.WithLogger(s.logger))
	cards := make([]VideoCard, 0, len(videos))
	for _, video := range g.Videos() {
		embed, ok := gallery.EmbedURL(video.YouTubeURL)
		cards = append(cards, VideoCard{
			VideoView:    video,
			EmbedURL:     embed,
			Playable:     ok,
			CategorySlug: gallery.CategorySlug(video.Category),
		})
	}
	state, err := json.Marshal(g.State())
	if err != nil {
		return out, fmt.Errorf("generator: marshal gallery state: %w", err)
	}
	out.gallery = &GallerySection{
		Categories: g.Categories(),
		Videos:     cards,
		State:      template.JS(state),
	}
	return out, nil
}

func (s *service) localeSwitch(current string, route routes.Route) []LocaleLink {
	locales := s.deps.Catalog.Locales()
	links := make([]LocaleLink, 0, len(locales))
	for _, locale := range locales {
		links = append(links, LocaleLink{
			Locale: locale,
			Href:   s.deps.URLs.PathFor(locale, route),
			Active: locale == current,
		})
	}
	return links
}

func (s *service) navigation(locale, active string) []NavItem {
	items := make([]NavItem, 0, len(s.cfg.NavRoutes))
	for _, name := range s.cfg.NavRoutes {
		route, err := s.deps.URLs.Table().Lookup(name)
		if err != nil {
			continue
		}
		items = append(items, NavItem{
			Route:    route.Name,
			LabelKey: "nav." + strings.ReplaceAll(route.Name, "-", "_"),
			Href:     s.deps.URLs.PathFor(locale, route),
			Active:   route.Name == active,
		})
	}
	return items
}

// translate resolves key, leaving the key itself visible on a miss. Build-time
// validation is what turns misses into failures.
func (s *service) translate(locale, key string) string {
	if key == "" {
		return ""
	}
	value, err := s.deps.Catalog.Translate(locale, key)
	if err != nil {
		s.logger.Debug("generator.translation_missing", "locale", locale, "key", key)
	}
	return value
}

func (s *service) absoluteAsset(p string) string {
	if strings.TrimSpace(p) == "" {
		return ""
	}
	asset := s.deps.URLs.Asset(p)
	if strings.HasPrefix(asset, "http://") || strings.HasPrefix(asset, "https://") {
		return asset
	}
	return s.deps.URLs.SiteURL() + asset
}

// dependencyHash covers the resolved page data, the locale's translations and
// the template set. Equal hashes render to equal documents.
func (s *service) dependencyHash(data *PageData, fingerprint string) (string, error) {
	payload := struct {
		Page         PageContext
		Translations any
		Templates    string
		Site         string
	}{
		Page:         data.Context,
		Translations: s.deps.Catalog.Bundle(data.Locale),
		Templates:    fingerprint,
		Site:         s.deps.URLs.SiteURL() + "|" + s.deps.URLs.BasePath() + "|" + strings.Join(s.cfg.NavRoutes, ","),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("generator: hash page %s/%s: %w", data.Locale, data.Route.Name, err)
	}
	return computeHash(raw), nil
}

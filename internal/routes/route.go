package routes

import (
	"errors"
	"fmt"
	"strings"
)

// HomeName is the route name used for the locale root.
const HomeName = "home"

// Change frequencies accepted by the sitemap protocol.
const (
	ChangeFreqDaily   = "daily"
	ChangeFreqWeekly  = "weekly"
	ChangeFreqMonthly = "monthly"
	ChangeFreqYearly  = "yearly"
)

// Interactive sections a route template can embed.
const (
	SectionGallery = "gallery"
	SectionCareers = "careers"
	SectionContact = "contact"
)

var (
	ErrRouteNameRequired = errors.New("routes: route name is required")
	ErrRouteDuplicate    = errors.New("routes: duplicate route")
	ErrRouteNotFound     = errors.New("routes: route not found")
	ErrPriorityRange     = errors.New("routes: priority must be between 0 and 1")
)

// Route describes one locale-independent page of the site.
type Route struct {
	Name           string
	Path           string
	TitleKey       string
	DescriptionKey string
	Template       string
	ChangeFreq     string
	Priority       float64
	// Sections lists the interactive widgets the page carries data for.
	Sections []string
}

// HasSection reports whether the route embeds section.
func (r Route) HasSection(section string) bool {
	for _, candidate := range r.Sections {
		if candidate == section {
			return true
		}
	}
	return false
}

// IsHome reports whether the route renders the locale root.
func (r Route) IsHome() bool {
	return strings.Trim(r.Path, "/") == ""
}

// Segment returns the route path without surrounding slashes.
func (r Route) Segment() string {
	return strings.Trim(strings.TrimSpace(r.Path), "/")
}

// Table is an ordered route list. Order drives page enumeration and the sitemap.
type Table struct {
	routes []Route
	index  map[string]int
}

// NewTable validates and indexes the supplied routes. Missing names are derived
// from the path; missing template, title and description keys get conventional values.
func NewTable(routes ...Route) (*Table, error) {
	table := &Table{
		routes: make([]Route, 0, len(routes)),
		index:  make(map[string]int, len(routes)),
	}
	for _, route := range routes {
		normalized, err := normalizeRoute(route)
		if err != nil {
			return nil, err
		}
		if _, exists := table.index[normalized.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrRouteDuplicate, normalized.Name)
		}
		table.index[normalized.Name] = len(table.routes)
		table.routes = append(table.routes, normalized)
	}
	return table, nil
}

// MustTable panics when routes are invalid. Intended for static tables.
func MustTable(routes ...Route) *Table {
	table, err := NewTable(routes...)
	if err != nil {
		panic(err)
	}
	return table
}

// Default returns the route table of the marketing site.
func Default() *Table {
	return MustTable(DefaultRoutes()...)
}

// DefaultRoutes lists the pages the site publishes, mirroring its sitemap.
func DefaultRoutes() []Route {
	monthly := func(path string) Route {
		return Route{Path: path, ChangeFreq: ChangeFreqMonthly, Priority: 0.8}
	}
	with := func(route Route, sections ...string) Route {
		route.Sections = sections
		return route
	}
	blog := monthly("blog")
	blog.ChangeFreq = ChangeFreqWeekly

	return []Route{
		{Path: "", ChangeFreq: ChangeFreqMonthly, Priority: 1.0, Sections: []string{SectionGallery}},
		monthly("about"),
		monthly("services"),
		monthly("solutions"),
		monthly("products"),
		with(monthly("careers"), SectionCareers),
		with(monthly("contact"), SectionContact),
		blog,
		with(monthly("custom-machines"), SectionGallery),
		with(monthly("ai-solutions"), SectionGallery),
		monthly("robotics"),
		with(monthly("logistics"), SectionGallery),
	}
}

// All returns a copy of the ordered routes.
func (t *Table) All() []Route {
	if t == nil {
		return nil
	}
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Len reports the number of routes.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.routes)
}

// Lookup returns the route registered under name.
func (t *Table) Lookup(name string) (Route, error) {
	if t == nil {
		return Route{}, ErrRouteNotFound
	}
	idx, ok := t.index[strings.TrimSpace(name)]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}
	return t.routes[idx], nil
}

// Match finds the route whose path equals the supplied locale-relative path.
func (t *Table) Match(rest string) (Route, bool) {
	if t == nil {
		return Route{}, false
	}
	segment := strings.Trim(strings.TrimSpace(rest), "/")
	for _, route := range t.routes {
		if route.Segment() == segment {
			return route, true
		}
	}
	return Route{}, false
}

// Names returns route names in table order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.routes))
	for _, route := range t.routes {
		names = append(names, route.Name)
	}
	return names
}

func normalizeRoute(route Route) (Route, error) {
	route.Path = strings.Trim(strings.TrimSpace(route.Path), "/")
	route.Name = strings.TrimSpace(route.Name)
	if route.Name == "" {
		if route.Path == "" {
			route.Name = HomeName
		} else {
			route.Name = routeNameFromPath(route.Path)
		}
	}
	if route.Name == "" {
		return Route{}, ErrRouteNameRequired
	}

	key := keyFromName(route.Name)
	if route.Template == "" {
		route.Template = route.Name
	}
	if route.TitleKey == "" {
		route.TitleKey = "meta." + key + ".title"
	}
	if route.DescriptionKey == "" {
		route.DescriptionKey = "meta." + key + ".description"
	}
	if route.ChangeFreq == "" {
		route.ChangeFreq = ChangeFreqMonthly
	}
	if route.Priority < 0 || route.Priority > 1 {
		return Route{}, fmt.Errorf("%w: %s=%v", ErrPriorityRange, route.Name, route.Priority)
	}
	return route, nil
}

func routeNameFromPath(path string) string {
	return strings.ToLower(strings.ReplaceAll(path, "/", "-"))
}

// keyFromName turns "custom-machines" into the translation segment "custom_machines".
func keyFromName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

package routes_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/eureka-automation/eureka-site/internal/routes"
)

func TestDefaultTableMirrorsSitemap(t *testing.T) {
	table := routes.Default()
	if table.Len() != 12 {
		t.Fatalf("expected 12 routes, got %d", table.Len())
	}

	home, err := table.Lookup(routes.HomeName)
	if err != nil {
		t.Fatalf("lookup home: %v", err)
	}
	if !home.IsHome() || home.Priority != 1.0 {
		t.Fatalf("unexpected home route %+v", home)
	}
	if home.TitleKey != "meta.home.title" {
		t.Fatalf("expected conventional title key, got %q", home.TitleKey)
	}

	blog, err := table.Lookup("blog")
	if err != nil {
		t.Fatalf("lookup blog: %v", err)
	}
	if blog.ChangeFreq != routes.ChangeFreqWeekly {
		t.Fatalf("expected weekly blog, got %q", blog.ChangeFreq)
	}

	machines, err := table.Lookup("custom-machines")
	if err != nil {
		t.Fatalf("lookup custom-machines: %v", err)
	}
	if machines.DescriptionKey != "meta.custom_machines.description" {
		t.Fatalf("unexpected description key %q", machines.DescriptionKey)
	}
	if machines.Priority != 0.8 || machines.ChangeFreq != routes.ChangeFreqMonthly {
		t.Fatalf("unexpected sitemap hints %+v", machines)
	}
}

func TestNewTableRejectsDuplicatesAndBadPriority(t *testing.T) {
	if _, err := routes.NewTable(routes.Route{Path: "about"}, routes.Route{Path: "/about/"}); !errors.Is(err, routes.ErrRouteDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := routes.NewTable(routes.Route{Path: "about", Priority: 1.5}); !errors.Is(err, routes.ErrPriorityRange) {
		t.Fatalf("expected priority error, got %v", err)
	}
	if _, err := routes.Default().Lookup("missing"); !errors.Is(err, routes.ErrRouteNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTableMatch(t *testing.T) {
	table := routes.Default()
	route, ok := table.Match("/careers/")
	if !ok || route.Name != "careers" {
		t.Fatalf("expected careers match, got %+v %v", route, ok)
	}
	route, ok = table.Match("")
	if !ok || route.Name != routes.HomeName {
		t.Fatalf("expected home match, got %+v %v", route, ok)
	}
	if _, ok := table.Match("unknown"); ok {
		t.Fatal("expected no match")
	}
}

func newBuilder(t *testing.T, basePath string) *routes.URLBuilder {
	t.Helper()
	builder, err := routes.NewURLBuilder(routes.Default(), routes.URLOptions{
		SiteURL:       "https://eureka-automation.com/",
		BasePath:      basePath,
		DefaultLocale: "en",
		Locales:       []string{"en", "th"},
		TrailingSlash: true,
	})
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	return builder
}

func TestURLBuilderPaths(t *testing.T) {
	builder := newBuilder(t, "eureka/")

	cases := []struct {
		locale string
		route  string
		want   string
	}{
		{locale: "th", route: "careers", want: "/eureka/th/careers/"},
		{locale: "en", route: routes.HomeName, want: "/eureka/en/"},
		{locale: "EN", route: "ai-solutions", want: "/eureka/en/ai-solutions/"},
	}
	for _, tc := range cases {
		got, err := builder.Path(tc.locale, tc.route)
		if err != nil {
			t.Fatalf("path %s/%s: %v", tc.locale, tc.route, err)
		}
		if got != tc.want {
			t.Fatalf("path %s/%s: expected %q, got %q", tc.locale, tc.route, tc.want, got)
		}
	}
}

func TestURLBuilderAbsoluteURLs(t *testing.T) {
	builder := newBuilder(t, "")

	got, err := builder.URL("th", "careers")
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	if got != "https://eureka-automation.com/th/careers/" {
		t.Fatalf("unexpected careers url %q", got)
	}

	home, err := builder.URL("en", routes.HomeName)
	if err != nil {
		t.Fatalf("home url: %v", err)
	}
	if home != "https://eureka-automation.com/en/" {
		t.Fatalf("unexpected home url %q", home)
	}

	if _, err := builder.URL("jp", "careers"); err == nil {
		t.Fatal("expected error for unregistered locale group")
	}
}

func TestAlternatesCoverEveryLocale(t *testing.T) {
	builder := newBuilder(t, "")

	alternates, err := builder.Alternates("contact")
	if err != nil {
		t.Fatalf("alternates: %v", err)
	}
	if len(alternates) != 3 {
		t.Fatalf("expected en, th and x-default, got %+v", alternates)
	}
	want := map[string]string{
		"en":            "https://eureka-automation.com/en/contact/",
		"th":            "https://eureka-automation.com/th/contact/",
		routes.XDefault: "https://eureka-automation.com/en/contact/",
	}
	for _, alt := range alternates {
		if want[alt.Locale] != alt.Href {
			t.Fatalf("alternate %s: expected %q, got %q", alt.Locale, want[alt.Locale], alt.Href)
		}
	}
}

func TestURLBuilderWithoutSiteURLFallsBackToPaths(t *testing.T) {
	builder, err := routes.NewURLBuilder(nil, routes.URLOptions{Locales: []string{"th", "en"}})
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	got, err := builder.URL("th", "about")
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	if got != "/th/about" {
		t.Fatalf("expected relative path without trailing slash, got %q", got)
	}
	if _, err := routes.NewURLBuilder(nil, routes.URLOptions{SiteURL: "not a url"}); err == nil {
		t.Fatal("expected invalid site url error")
	}
}

func TestWithBasePath(t *testing.T) {
	cases := map[string]struct {
		base string
		path string
		want string
	}{
		"relative":   {base: "/eureka", path: "images/logo.png", want: "/eureka/images/logo.png"},
		"rooted":     {base: "eureka/", path: "/videos/a.mp4", want: "/eureka/videos/a.mp4"},
		"empty base": {base: "", path: "/favicon.ico", want: "/favicon.ico"},
		"absolute":   {base: "/eureka", path: "https://cdn.example.com/a.png", want: "https://cdn.example.com/a.png"},
		"plain http": {base: "/eureka", path: "http://example.com", want: "http://example.com"},
	}
	for name, tc := range cases {
		if got := routes.WithBasePath(tc.base, tc.path); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", name, tc.want, got)
		}
		if strings.Contains(routes.WithBasePath(tc.base, tc.path), "//eureka") {
			t.Fatalf("%s: doubled slash", name)
		}
	}
}

func TestDefaultRoutesDeclareSections(t *testing.T) {
	table := routes.Default()
	careers, err := table.Lookup("careers")
	if err != nil {
		t.Fatalf("lookup careers: %v", err)
	}
	if !careers.HasSection(routes.SectionCareers) {
		t.Fatalf("careers route should carry the careers section")
	}
	home, _ := table.Lookup(routes.HomeName)
	if !home.HasSection(routes.SectionGallery) {
		t.Fatalf("home route should carry the gallery section")
	}
	about, _ := table.Lookup("about")
	if len(about.Sections) != 0 {
		t.Fatalf("about should not embed widgets, got %v", about.Sections)
	}
}

package staticcmd

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/eureka-automation/eureka-site/internal/generator"
)

const (
	buildSiteMessageType    = "site.static.build"
	diffSiteMessageType     = "site.static.diff"
	validateSiteMessageType = "site.static.validate"
	sitemapMessageType      = "site.static.sitemap"
	cleanSiteMessageType    = "site.static.clean"
)

var (
	localePattern = regexp.MustCompile(`^[a-zA-Z]{2,3}([-_][a-zA-Z0-9]{2,8})?$`)
	routePattern  = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
)

// ResultCallback receives build results produced by generator operations. It
// is invoked synchronously from the handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a static command execution.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Page     *generator.RenderedPage
	Metadata map[string]any
}

// BuildSiteCommand renders the site, optionally narrowed to locales and routes.
type BuildSiteCommand struct {
	Locales        []string       `json:"locales,omitempty"`
	Routes         []string       `json:"routes,omitempty"`
	Force          bool           `json:"force,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	AllowMissing   bool           `json:"allow_missing,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate rejects blank or malformed locale and route filters.
func (m BuildSiteCommand) Validate() error {
	return validateScope("site.static.build", m.Locales, m.Routes)
}

// DiffSiteCommand performs a dry-run build to list what would change.
type DiffSiteCommand struct {
	Locales        []string       `json:"locales,omitempty"`
	Routes         []string       `json:"routes,omitempty"`
	Force          bool           `json:"force,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (DiffSiteCommand) Type() string { return diffSiteMessageType }

// Validate rejects blank or malformed locale and route filters.
func (m DiffSiteCommand) Validate() error {
	return validateScope("site.static.diff", m.Locales, m.Routes)
}

// ValidateSiteCommand runs the content checks without rendering.
type ValidateSiteCommand struct {
	ReportCallback func(*generator.ValidationReport) `json:"-"`
}

// Type implements command.Message.
func (ValidateSiteCommand) Type() string { return validateSiteMessageType }

// Validate satisfies command.Message.
func (ValidateSiteCommand) Validate() error { return nil }

// BuildSitemapCommand rewrites sitemap.xml and robots.txt from the manifest.
type BuildSitemapCommand struct{}

// Type implements command.Message.
func (BuildSitemapCommand) Type() string { return sitemapMessageType }

// Validate satisfies command.Message.
func (BuildSitemapCommand) Validate() error { return nil }

// CleanSiteCommand clears generator artifacts from the configured storage backend.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message.
func (CleanSiteCommand) Validate() error { return nil }

// FeatureGates exposes runtime switches used to guard handler execution.
type FeatureGates struct {
	GeneratorEnabled func() bool
}

func (g FeatureGates) generatorEnabled() bool {
	if g.GeneratorEnabled == nil {
		return false
	}
	return g.GeneratorEnabled()
}

func validateScope(prefix string, locales, routes []string) error {
	errs := validation.Errors{}
	for _, locale := range locales {
		trimmed := strings.TrimSpace(locale)
		if trimmed == "" || !localePattern.MatchString(trimmed) {
			errs["locales"] = validation.NewError(prefix+".locale_invalid", "locales must be language codes such as en or th")
			break
		}
	}
	for _, route := range routes {
		if !routePattern.MatchString(strings.TrimSpace(route)) {
			errs["routes"] = validation.NewError(prefix+".route_invalid", "routes must be route names such as careers")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

package generator

import (
	"html/template"
	"time"

	"github.com/eureka-automation/eureka-site/internal/careers"
	"github.com/eureka-automation/eureka-site/internal/content"
	"github.com/eureka-automation/eureka-site/internal/gallery"
	"github.com/eureka-automation/eureka-site/internal/routes"
)

// TemplateContext is the data contract passed to the template renderer for
// one (locale, route) page.
type TemplateContext struct {
	Site  SiteMetadata
	Page  PageContext
	Build BuildMetadata
}

// SiteMetadata exposes site-wide values shared by every page.
type SiteMetadata struct {
	Name          string
	URL           string
	BasePath      string
	DefaultLocale string
	Locales       []string
	Nav           []NavItem
}

// NavItem is one entry of the primary navigation for the page's locale.
type NavItem struct {
	Route    string
	LabelKey string
	Href     string
	Active   bool
}

// LocaleLink is one entry of the language switcher.
type LocaleLink struct {
	Locale string
	Href   string
	Active bool
}

// BuildMetadata surfaces build information to templates.
type BuildMetadata struct {
	GeneratedAt time.Time
	DryRun      bool
	Version     string
}

// PageContext holds everything resolved for a single page.
type PageContext struct {
	Locale   string
	Route    string
	Template string
	Path     string
	Home     string
	Head     HeadMetadata
	Switch   []LocaleLink
	// Body is the rendered Markdown for the page, empty when no file exists.
	Body        template.HTML
	Frontmatter map[string]any

	Careers *CareersSection `json:",omitempty"`
	Gallery *GallerySection `json:",omitempty"`
	Contact *FormSection    `json:",omitempty"`
}

// CareersSection is the data behind the careers board and application form.
type CareersSection struct {
	Positions   []content.CareerView
	Departments []string
	Groups      []careers.DepartmentGroup
	Form        FormSection
}

// FormSection configures a client-side form.
type FormSection struct {
	Endpoint    string
	MaxFileSize int64
	Accept      string
}

// GallerySection is the data behind the video gallery.
type GallerySection struct {
	Categories []gallery.Category
	Videos     []VideoCard
	// State is the serialized initial ViewState for client hydration.
	State template.JS
}

// VideoCard is one gallery thumbnail with its resolved embed URL.
type VideoCard struct {
	content.VideoView
	EmbedURL     string
	Playable     bool
	CategorySlug string
}

// RenderedPage is the output of rendering one page.
type RenderedPage struct {
	PageID     string
	Locale     string
	Route      string
	Template   string
	Output     string
	HTML       string
	Hash       string
	Checksum   string
	Alternates []routes.Alternate
	URL        string
	Duration   time.Duration
}

// RenderDiagnostic records the outcome of rendering one page.
type RenderDiagnostic struct {
	PageID   string
	Locale   string
	Route    string
	Template string
	Duration time.Duration
	Skipped  bool
	Err      error
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	err        error
	skipped    bool
}

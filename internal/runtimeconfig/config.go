package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

var ErrSiteURLInvalid = errors.New("site config: site url must be an absolute http(s) url")
var ErrBasePathInvalid = errors.New("site config: base path must start with / and must not end with /")
var ErrDefaultLocaleRequired = errors.New("site config: default locale is required")
var ErrDefaultLocaleUnsupported = errors.New("site config: default locale must be listed in locales")
var ErrLocaleDuplicate = errors.New("site config: locales must be unique")
var ErrGeneratorOutputDirRequired = errors.New("site config: generator output directory is required")
var ErrCareersTransportInvalid = errors.New("site config: careers transport must be opaque or confirmed")
var ErrCareersMaxFileSizeInvalid = errors.New("site config: careers max file size must be positive")
var ErrCareersFileTypesRequired = errors.New("site config: careers accepted file types are required")
var ErrLoggingProviderUnknown = errors.New("site config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("site config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("site config: logging format is invalid")

const (
	TransportOpaque    = "opaque"
	TransportConfirmed = "confirmed"
)

// DefaultMaxFileSize caps resume uploads at 5 MiB.
const DefaultMaxFileSize int64 = 5 << 20

// Config aggregates every runtime setting for builds, the preview server and
// the careers relay.
type Config struct {
	Site      SiteConfig      `mapstructure:"site"`
	I18N      I18NConfig      `mapstructure:"i18n"`
	Content   ContentConfig   `mapstructure:"content"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Careers   CareersConfig   `mapstructure:"careers"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SiteConfig describes the deployment target. URL is absolute; BasePath is the
// sub-path the site is served under ("" for the domain root).
type SiteConfig struct {
	Name         string             `mapstructure:"name"`
	URL          string             `mapstructure:"url"`
	BasePath     string             `mapstructure:"base_path"`
	TitleFormat  string             `mapstructure:"title_format"`
	Organization OrganizationConfig `mapstructure:"organization"`
}

// OrganizationConfig feeds the schema.org Organization block on every page.
type OrganizationConfig struct {
	LegalName string   `mapstructure:"legal_name"`
	Logo      string   `mapstructure:"logo"`
	Email     string   `mapstructure:"email"`
	Telephone string   `mapstructure:"telephone"`
	Street    string   `mapstructure:"street"`
	Locality  string   `mapstructure:"locality"`
	Region    string   `mapstructure:"region"`
	Postal    string   `mapstructure:"postal"`
	Country   string   `mapstructure:"country"`
	SameAs    []string `mapstructure:"same_as"`
}

// I18NConfig lists the supported locales and where their bundles live.
type I18NConfig struct {
	DefaultLocale string            `mapstructure:"default_locale"`
	Locales       []string          `mapstructure:"locales"`
	Dir           string            `mapstructure:"dir"`
	RequireParity bool              `mapstructure:"require_parity"`
	OGLocales     map[string]string `mapstructure:"og_locales"`
}

// ContentConfig points at the static JSON documents and markdown page bodies.
type ContentConfig struct {
	Dir         string `mapstructure:"dir"`
	CareersFile string `mapstructure:"careers_file"`
	VideosFile  string `mapstructure:"videos_file"`
	PagesDir    string `mapstructure:"pages_dir"`
}

// GeneratorConfig controls static builds.
type GeneratorConfig struct {
	OutputDir       string `mapstructure:"output_dir"`
	TemplatesDir    string `mapstructure:"templates_dir"`
	StaticDir       string `mapstructure:"static_dir"`
	Incremental     bool   `mapstructure:"incremental"`
	Workers         int    `mapstructure:"workers"`
	GenerateSitemap bool   `mapstructure:"generate_sitemap"`
	GenerateRobots  bool   `mapstructure:"generate_robots"`
	TrailingSlash   bool   `mapstructure:"trailing_slash"`
}

// CareersConfig configures application submissions. With Relay set the
// generated forms post to the preview server's /api routes, which forward to
// Endpoint; otherwise they post to Endpoint directly.
type CareersConfig struct {
	Relay           bool          `mapstructure:"relay"`
	Endpoint        string        `mapstructure:"endpoint"`
	ContactEndpoint string        `mapstructure:"contact_endpoint"`
	Transport       string        `mapstructure:"transport"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxFileSize     int64         `mapstructure:"max_file_size"`
	AcceptedTypes   []string      `mapstructure:"accepted_types"`
}

// ServerConfig configures the preview and relay server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	Metrics         bool          `mapstructure:"metrics"`
}

// LoggingConfig selects the logging backend.
type LoggingConfig struct {
	Provider  string   `mapstructure:"provider"`
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
}

// DefaultConfig mirrors the production deployment of eureka-automation.com.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Name:        "Eureka Automation",
			URL:         "https://eureka-automation.com",
			TitleFormat: "%s | Eureka Automation",
			Organization: OrganizationConfig{
				LegalName: "Eureka Automation Co., Ltd.",
				Logo:      "/images/logo.svg",
				Country:   "TH",
			},
		},
		I18N: I18NConfig{
			DefaultLocale: "en",
			Locales:       []string{"en", "th"},
			Dir:           "site/locales",
			RequireParity: true,
			OGLocales: map[string]string{
				"en": "en_US",
				"th": "th_TH",
				"cn": "zh_CN",
				"jp": "ja_JP",
				"es": "es_ES",
			},
		},
		Content: ContentConfig{
			Dir:         "site/data",
			CareersFile: "careers.json",
			VideosFile:  "videos.json",
			PagesDir:    "site/pages",
		},
		Generator: GeneratorConfig{
			OutputDir:       "out",
			StaticDir:       "site/static",
			Incremental:     true,
			GenerateSitemap: true,
			GenerateRobots:  true,
			TrailingSlash:   true,
		},
		Careers: CareersConfig{
			Relay:         true,
			Transport:     TransportConfirmed,
			Timeout:       30 * time.Second,
			MaxFileSize:   DefaultMaxFileSize,
			AcceptedTypes: []string{"application/pdf"},
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Metrics:         true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "console",
		},
	}
}

// Validate reports the first inconsistency found in cfg.
func (cfg Config) Validate() error {
	if err := validateSiteURL(cfg.Site.URL); err != nil {
		return err
	}
	if base := cfg.Site.BasePath; base != "" {
		if !strings.HasPrefix(base, "/") || strings.HasSuffix(base, "/") {
			return fmt.Errorf("%w: %q", ErrBasePathInvalid, base)
		}
	}

	def := strings.TrimSpace(cfg.I18N.DefaultLocale)
	if def == "" {
		return ErrDefaultLocaleRequired
	}
	seen := map[string]struct{}{}
	for _, code := range cfg.I18N.Locales {
		key := strings.ToLower(strings.TrimSpace(code))
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s", ErrLocaleDuplicate, code)
		}
		seen[key] = struct{}{}
	}
	if _, ok := seen[strings.ToLower(def)]; !ok {
		return fmt.Errorf("%w: %s", ErrDefaultLocaleUnsupported, def)
	}

	if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
		return ErrGeneratorOutputDirRequired
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Careers.Transport)) {
	case TransportOpaque, TransportConfirmed:
	default:
		return fmt.Errorf("%w: %s", ErrCareersTransportInvalid, cfg.Careers.Transport)
	}
	if cfg.Careers.MaxFileSize <= 0 {
		return ErrCareersMaxFileSizeInvalid
	}
	if len(cfg.Careers.AcceptedTypes) == 0 {
		return ErrCareersFileTypesRequired
	}

	provider := normalize(cfg.Logging.Provider)
	if !slices.Contains([]string{"console", "gologger", "zap"}, provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Logging.Provider)
	}
	if level := normalize(cfg.Logging.Level); level != "" &&
		!slices.Contains([]string{"trace", "debug", "info", "warn", "error", "fatal"}, level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, cfg.Logging.Level)
	}
	if format := normalize(cfg.Logging.Format); format != "" &&
		!slices.Contains([]string{"json", "console", "pretty"}, format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, cfg.Logging.Format)
	}
	return nil
}

func validateSiteURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrSiteURLInvalid, raw)
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

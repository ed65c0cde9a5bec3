package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// EnvPrefix scopes viper's automatic environment binding: site.url can be set
// with EUREKA_SITE_URL.
const EnvPrefix = "EUREKA"

// deploymentEnv holds the unprefixed variables build pipelines set to deploy
// the export under a sub-path or a different host.
type deploymentEnv struct {
	BasePath        string `env:"BASE_PATH"`
	SiteURL         string `env:"SITE_URL"`
	CareersEndpoint string `env:"CAREERS_ENDPOINT"`
	OutputDir       string `env:"OUTPUT_DIR"`
	LogLevel        string `env:"LOG_LEVEL"`
	LogFormat       string `env:"LOG_FORMAT"`
}

// LoadOptions points Load at a config file. An empty File searches Paths for
// site.yaml; a missing file is not an error.
type LoadOptions struct {
	File  string
	Paths []string
}

// Load reads defaults, then the YAML file, then EUREKA_* variables, then the
// deployment variables, and validates the result.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if file := strings.TrimSpace(opts.File); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("site")
		paths := opts.Paths
		if len(paths) == 0 {
			paths = []string{".", "./site", "./config"}
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Site.BasePath = NormalizeBasePath(cfg.Site.BasePath)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays the deployment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var overrides deploymentEnv
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if overrides.BasePath != "" {
		cfg.Site.BasePath = overrides.BasePath
	}
	if overrides.SiteURL != "" {
		cfg.Site.URL = overrides.SiteURL
	}
	if overrides.CareersEndpoint != "" {
		cfg.Careers.Endpoint = overrides.CareersEndpoint
	}
	if overrides.OutputDir != "" {
		cfg.Generator.OutputDir = overrides.OutputDir
	}
	if overrides.LogLevel != "" {
		cfg.Logging.Level = overrides.LogLevel
	}
	if overrides.LogFormat != "" {
		cfg.Logging.Format = overrides.LogFormat
	}
	return nil
}

// NormalizeBasePath returns "" or a path with one leading slash and no
// trailing slash.
func NormalizeBasePath(value string) string {
	trimmed := strings.Trim(strings.TrimSpace(value), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("site.name", d.Site.Name)
	v.SetDefault("site.url", d.Site.URL)
	v.SetDefault("site.base_path", d.Site.BasePath)
	v.SetDefault("site.title_format", d.Site.TitleFormat)
	v.SetDefault("site.organization.legal_name", d.Site.Organization.LegalName)
	v.SetDefault("site.organization.logo", d.Site.Organization.Logo)
	v.SetDefault("site.organization.country", d.Site.Organization.Country)

	v.SetDefault("i18n.default_locale", d.I18N.DefaultLocale)
	v.SetDefault("i18n.locales", d.I18N.Locales)
	v.SetDefault("i18n.dir", d.I18N.Dir)
	v.SetDefault("i18n.require_parity", d.I18N.RequireParity)
	v.SetDefault("i18n.og_locales", d.I18N.OGLocales)

	v.SetDefault("content.dir", d.Content.Dir)
	v.SetDefault("content.careers_file", d.Content.CareersFile)
	v.SetDefault("content.videos_file", d.Content.VideosFile)
	v.SetDefault("content.pages_dir", d.Content.PagesDir)

	v.SetDefault("generator.output_dir", d.Generator.OutputDir)
	v.SetDefault("generator.templates_dir", d.Generator.TemplatesDir)
	v.SetDefault("generator.static_dir", d.Generator.StaticDir)
	v.SetDefault("generator.incremental", d.Generator.Incremental)
	v.SetDefault("generator.workers", d.Generator.Workers)
	v.SetDefault("generator.generate_sitemap", d.Generator.GenerateSitemap)
	v.SetDefault("generator.generate_robots", d.Generator.GenerateRobots)
	v.SetDefault("generator.trailing_slash", d.Generator.TrailingSlash)

	v.SetDefault("careers.relay", d.Careers.Relay)
	v.SetDefault("careers.endpoint", d.Careers.Endpoint)
	v.SetDefault("careers.contact_endpoint", d.Careers.ContactEndpoint)
	v.SetDefault("careers.transport", d.Careers.Transport)
	v.SetDefault("careers.timeout", d.Careers.Timeout)
	v.SetDefault("careers.max_file_size", d.Careers.MaxFileSize)
	v.SetDefault("careers.accepted_types", d.Careers.AcceptedTypes)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.metrics", d.Server.Metrics)

	v.SetDefault("logging.provider", d.Logging.Provider)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.add_source", d.Logging.AddSource)
	v.SetDefault("logging.focus", d.Logging.Focus)
}

package site

import "github.com/eureka-automation/eureka-site/internal/runtimeconfig"

var (
	ErrSiteURLInvalid             = runtimeconfig.ErrSiteURLInvalid
	ErrBasePathInvalid            = runtimeconfig.ErrBasePathInvalid
	ErrDefaultLocaleRequired      = runtimeconfig.ErrDefaultLocaleRequired
	ErrDefaultLocaleUnsupported   = runtimeconfig.ErrDefaultLocaleUnsupported
	ErrLocaleDuplicate            = runtimeconfig.ErrLocaleDuplicate
	ErrGeneratorOutputDirRequired = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrCareersTransportInvalid    = runtimeconfig.ErrCareersTransportInvalid
	ErrCareersMaxFileSizeInvalid  = runtimeconfig.ErrCareersMaxFileSizeInvalid
	ErrCareersFileTypesRequired   = runtimeconfig.ErrCareersFileTypesRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config             = runtimeconfig.Config
	SiteConfig         = runtimeconfig.SiteConfig
	OrganizationConfig = runtimeconfig.OrganizationConfig
	I18NConfig         = runtimeconfig.I18NConfig
	ContentConfig      = runtimeconfig.ContentConfig
	GeneratorConfig    = runtimeconfig.GeneratorConfig
	CareersConfig      = runtimeconfig.CareersConfig
	ServerConfig       = runtimeconfig.ServerConfig
	LoggingConfig      = runtimeconfig.LoggingConfig
	LoadOptions        = runtimeconfig.LoadOptions
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads site.yaml and the environment overrides.
func LoadConfig(opts LoadOptions) (Config, error) {
	return runtimeconfig.Load(opts)
}

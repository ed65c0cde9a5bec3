package site_test

import (
	"errors"
	"testing"

	site "github.com/eureka-automation/eureka-site"
)

func TestConfigValidateRejectsRelativeSiteURL(t *testing.T) {
	cfg := site.DefaultConfig()
	cfg.Site.URL = "/eureka"

	if err := cfg.Validate(); !errors.Is(err, site.ErrSiteURLInvalid) {
		t.Fatalf("expected ErrSiteURLInvalid, got %v", err)
	}
}

func TestConfigValidateBasePathShape(t *testing.T) {
	cfg := site.DefaultConfig()
	cfg.Site.BasePath = "eureka/"

	if err := cfg.Validate(); !errors.Is(err, site.ErrBasePathInvalid) {
		t.Fatalf("expected ErrBasePathInvalid, got %v", err)
	}
}

func TestConfigValidateDefaultLocaleMustBeSupported(t *testing.T) {
	cfg := site.DefaultConfig()
	cfg.I18N.DefaultLocale = "jp"

	if err := cfg.Validate(); !errors.Is(err, site.ErrDefaultLocaleUnsupported) {
		t.Fatalf("expected ErrDefaultLocaleUnsupported, got %v", err)
	}
}

func TestConfigValidateCareersTransport(t *testing.T) {
	cfg := site.DefaultConfig()
	cfg.Careers.Transport = "no-cors"

	if err := cfg.Validate(); !errors.Is(err, site.ErrCareersTransportInvalid) {
		t.Fatalf("expected ErrCareersTransportInvalid, got %v", err)
	}
}

func TestConfigValidateLoggingProviderUnknown(t *testing.T) {
	cfg := site.DefaultConfig()
	cfg.Logging.Provider = "invalid"

	if err := cfg.Validate(); !errors.Is(err, site.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := site.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

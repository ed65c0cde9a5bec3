package generator

import (
	"context"
	"errors"

	"github.com/eureka-automation/eureka-site/internal/careers"
	"github.com/eureka-automation/eureka-site/internal/gallery"
	"github.com/eureka-automation/eureka-site/internal/i18n"
	"github.com/eureka-automation/eureka-site/internal/routes"
)

// ValidationReport collects the content-authoring defects found before a
// build renders anything.
type ValidationReport struct {
	// Parity lists keys some locale bundles define and others do not.
	Parity i18n.ParityReport
	// Required lists route and widget keys missing from a locale.
	Required i18n.ParityReport
	// Videos is the gallery lint result, nil when every video is playable.
	Videos error
}

// OK reports whether the site content is publishable.
func (r *ValidationReport) OK() bool {
	return r.Err() == nil
}

// Err joins every failure into one error, nil when the report is clean.
func (r *ValidationReport) Err() error {
	if r == nil {
		return nil
	}
	return errors.Join(r.Parity.Err(), r.Required.Err(), r.Videos)
}

func (s *service) Validate(ctx context.Context) (*ValidationReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.checkDependencies(); err != nil {
		return nil, err
	}
	report := &ValidationReport{}
	if s.cfg.RequireParity {
		report.Parity = i18n.CheckParity(s.deps.Catalog)
	}
	report.Required = i18n.RequireKeys(s.deps.Catalog, s.requiredKeys()...)
	if s.deps.Content != nil {
		report.Videos = gallery.Lint(s.deps.Content.Videos)
	}

	if err := report.Err(); err != nil {
		s.logger.Warn("generator.validation_failed", "error", err)
	} else {
		s.logger.Debug("generator.validation_passed")
	}
	return report, nil
}

func (s *service) requiredKeys() []string {
	keys := []string{}
	seen := map[string]struct{}{}
	add := func(key string) {
		if _, ok := seen[key]; ok || key == "" {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	for _, route := range s.deps.URLs.Table().All() {
		add(route.TitleKey)
		add(route.DescriptionKey)
		if route.HasSection(routes.SectionCareers) {
			add(careers.MessageKeySuccess)
			add(careers.MessageKeyFailure)
		}
	}
	for _, item := range s.navigation(s.defaultLocale(), "") {
		add(item.LabelKey)
	}
	return keys
}

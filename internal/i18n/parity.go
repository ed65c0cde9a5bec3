package i18n

import (
	"maps"
	"slices"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const textCodeMissingKeys = "I18N_MISSING_KEYS"

// ParityReport lists, per locale, the keys other bundles define but it does not.
type ParityReport struct {
	Missing map[string][]string
}

// OK reports whether every bundle carries the same key set.
func (r ParityReport) OK() bool {
	for _, keys := range r.Missing {
		if len(keys) > 0 {
			return false
		}
	}
	return true
}

// Err converts a failing report into a validation error carrying the missing
// keys as metadata. It returns nil when the report is clean.
func (r ParityReport) Err() error {
	if r.OK() {
		return nil
	}
	fields := goerrors.ValidationErrors{}
	metadata := map[string]any{}
	for _, locale := range slices.Sorted(maps.Keys(r.Missing)) {
		keys := r.Missing[locale]
		if len(keys) == 0 {
			continue
		}
		metadata[locale] = keys
		fields = append(fields, goerrors.FieldError{
			Field:   locale,
			Message: "missing " + strings.Join(keys, ", "),
		})
	}
	return goerrors.NewValidation("translation bundles are not structurally identical", fields...).
		WithTextCode(textCodeMissingKeys).
		WithMetadata(metadata)
}

// CheckParity compares every bundle against the union of all keys.
func CheckParity(c *Catalog) ParityReport {
	union := map[string]struct{}{}
	for _, locale := range c.cfg.Locales {
		for _, key := range c.bundles[locale].Keys() {
			union[key] = struct{}{}
		}
	}
	all := slices.Sorted(maps.Keys(union))

	report := ParityReport{Missing: map[string][]string{}}
	for _, locale := range c.cfg.Locales {
		for _, key := range all {
			if !c.Has(locale, key) {
				report.Missing[locale] = append(report.Missing[locale], key)
			}
		}
	}
	return report
}

// RequireKeys reports keys absent from any locale bundle. The generator uses
// it to check the title and description keys every route depends on.
func RequireKeys(c *Catalog, keys ...string) ParityReport {
	report := ParityReport{Missing: map[string][]string{}}
	for _, locale := range c.cfg.Locales {
		for _, key := range keys {
			if key == "" || c.Has(locale, key) {
				continue
			}
			report.Missing[locale] = append(report.Missing[locale], key)
		}
	}
	return report
}

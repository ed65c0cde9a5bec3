package i18n

import "strings"

// Config lists the supported locales. DefaultLocale must be one of Locales.
type Config struct {
	DefaultLocale string
	Locales       []string
}

// FromModuleConfig normalizes locale codes to lower case and moves the
// default locale to the front so enumeration order is stable.
func FromModuleConfig(defaultLocale string, locales []string) Config {
	def := normalizeLocale(defaultLocale)
	out := make([]string, 0, len(locales)+1)
	if def != "" {
		out = append(out, def)
	}
	for _, code := range locales {
		code = normalizeLocale(code)
		if code == "" || code == def {
			continue
		}
		out = append(out, code)
	}
	return Config{DefaultLocale: def, Locales: out}
}

// Supports reports whether code is one of the configured locales.
func (c Config) Supports(code string) bool {
	code = normalizeLocale(code)
	for _, candidate := range c.Locales {
		if candidate == code {
			return true
		}
	}
	return false
}

func normalizeLocale(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

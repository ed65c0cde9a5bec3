package generator

import (
	"path"
	"strings"
)

// buildOutputPath maps a route segment to {locale}/{segment}/index.html. Every
// locale, the default included, gets its own prefix so URLs stay /{locale}/{path}.
func buildOutputPath(segment string, locale string) string {
	clean := strings.Trim(strings.TrimSpace(segment), "/")
	locale = strings.Trim(strings.TrimSpace(locale), "/")
	if clean == "" {
		return path.Join(locale, "index.html")
	}
	return path.Join(locale, clean, "index.html")
}

func joinOutputPath(base string, rel string) string {
	if strings.TrimSpace(base) == "" {
		return strings.TrimLeft(rel, "/")
	}
	return path.Join(strings.Trim(base, "/"), rel)
}

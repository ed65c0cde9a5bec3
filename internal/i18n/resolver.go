package i18n

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/text/language"
)

// ErrLocaleNotFound is the source of the not-found error Resolve returns for a
// path whose first segment is not a supported locale.
var ErrLocaleNotFound = errors.New("i18n: locale not found")

const textCodeLocaleNotFound = "LOCALE_NOT_FOUND"

// Site locale codes that are not BCP 47 language subtags.
var tagAliases = map[string]string{
	"cn": "zh",
	"jp": "ja",
}

// Resolution is a request path split into its locale and the locale-free rest.
// Rest always starts with "/". Alias is set when the path spelled a supported
// locale differently from Locale, as in /TH/about/; only the lowercase tree
// exists on disk.
type Resolution struct {
	Locale   string
	Rest     string
	Fallback bool
	Alias    bool
}

// Pair is one (locale, route) combination enumerated for static generation.
type Pair struct {
	Locale string
	Route  string
}

// Resolver maps URL paths onto supported locales.
type Resolver struct {
	cfg      Config
	basePath string
	tags     []language.Tag
	matcher  language.Matcher
}

// NewResolver returns a resolver for cfg. basePath is stripped from incoming
// paths before the locale segment is read.
func NewResolver(cfg Config, basePath string) *Resolver {
	tags := make([]language.Tag, 0, len(cfg.Locales))
	for _, code := range cfg.Locales {
		tags = append(tags, tagFor(code))
	}
	return &Resolver{
		cfg:      cfg,
		basePath: "/" + strings.Trim(strings.TrimSpace(basePath), "/"),
		tags:     tags,
		matcher:  language.NewMatcher(tags),
	}
}

// Config returns the locale configuration.
func (r *Resolver) Config() Config { return r.cfg }

// Resolve extracts the locale from the first path segment. Unsupported or
// missing locales produce a CategoryNotFound error wrapping ErrLocaleNotFound.
func (r *Resolver) Resolve(path string) (Resolution, error) {
	segments := r.segments(path)
	if len(segments) == 0 {
		return Resolution{}, r.notFound(path, "")
	}
	locale := normalizeLocale(segments[0])
	if !r.cfg.Supports(locale) {
		return Resolution{}, r.notFound(path, segments[0])
	}
	rest := "/" + strings.Join(segments[1:], "/")
	return Resolution{Locale: locale, Rest: rest, Alias: segments[0] != locale}, nil
}

// ResolveOrFallback behaves like Resolve but turns a miss into the default
// locale's home route.
func (r *Resolver) ResolveOrFallback(path string) Resolution {
	res, err := r.Resolve(path)
	if err != nil {
		return r.Fallback()
	}
	return res
}

// Fallback is the default locale's home route.
func (r *Resolver) Fallback() Resolution {
	return Resolution{Locale: r.cfg.DefaultLocale, Rest: "/", Fallback: true}
}

// HomePath returns "/{locale}/" under the base path.
func (r *Resolver) HomePath(locale string) string {
	return r.LocalePath(locale, "/")
}

// LocalePath returns "/{locale}{rest}" under the base path with the locale
// in its canonical lowercase form.
func (r *Resolver) LocalePath(locale, rest string) string {
	prefix := strings.TrimRight(r.basePath, "/")
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return prefix + "/" + normalizeLocale(locale) + rest
}

// Enumerate returns every (locale, route) pair, locales in configured order
// and routes in the order given.
func (r *Resolver) Enumerate(routes []string) []Pair {
	pairs := make([]Pair, 0, len(routes)*len(r.cfg.Locales))
	for _, locale := range r.cfg.Locales {
		for _, route := range routes {
			pairs = append(pairs, Pair{Locale: locale, Route: route})
		}
	}
	return pairs
}

// Negotiate picks the best supported locale for an Accept-Language header,
// falling back to the default locale when nothing matches.
func (r *Resolver) Negotiate(acceptLanguage string) string {
	accept := strings.TrimSpace(acceptLanguage)
	if accept == "" || len(r.tags) == 0 {
		return r.cfg.DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return r.cfg.DefaultLocale
	}
	_, index, confidence := r.matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(r.cfg.Locales) {
		return r.cfg.DefaultLocale
	}
	return r.cfg.Locales[index]
}

func (r *Resolver) segments(path string) []string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if r.basePath != "/" {
		if path == r.basePath {
			path = "/"
		} else if strings.HasPrefix(path, r.basePath+"/") {
			path = strings.TrimPrefix(path, r.basePath)
		}
	}
	var out []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

func (r *Resolver) notFound(path, segment string) error {
	return goerrors.Wrap(ErrLocaleNotFound, goerrors.CategoryNotFound, "unsupported locale segment").
		WithTextCode(textCodeLocaleNotFound).
		WithMetadata(map[string]any{
			"path":    path,
			"segment": segment,
			"default": r.cfg.DefaultLocale,
		})
}

func tagFor(code string) language.Tag {
	code = normalizeLocale(code)
	if alias, ok := tagAliases[code]; ok {
		code = alias
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Und
	}
	return tag
}

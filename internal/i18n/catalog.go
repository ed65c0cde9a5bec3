package i18n

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

var (
	// ErrMissingKey is returned when no bundle, including the default, has the key.
	ErrMissingKey = errors.New("i18n: translation key missing")
	// ErrWrongValueKind is returned when a list is requested as a string or the reverse.
	ErrWrongValueKind = errors.New("i18n: translation value has a different kind")
)

// Bundle holds one locale's translations flattened to dotted keys.
type Bundle struct {
	Locale  string
	Strings map[string]string
	Lists   map[string][]string
}

// NewBundle returns an empty bundle for locale.
func NewBundle(locale string) *Bundle {
	return &Bundle{
		Locale:  normalizeLocale(locale),
		Strings: map[string]string{},
		Lists:   map[string][]string{},
	}
}

// Keys returns every key in the bundle, sorted.
func (b *Bundle) Keys() []string {
	keys := make([]string, 0, len(b.Strings)+len(b.Lists))
	for key := range b.Strings {
		keys = append(keys, key)
	}
	for key := range b.Lists {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Catalog is the immutable set of loaded bundles. Lookups fall back to the
// default locale before reporting ErrMissingKey.
type Catalog struct {
	cfg     Config
	bundles map[string]*Bundle
}

var (
	_ interfaces.Translator     = (*Catalog)(nil)
	_ interfaces.ListTranslator = (*Catalog)(nil)
)

// NewCatalog indexes bundles by locale. Bundles for locales outside cfg are
// ignored; configured locales without a bundle get an empty one.
func NewCatalog(cfg Config, bundles ...*Bundle) *Catalog {
	c := &Catalog{cfg: cfg, bundles: make(map[string]*Bundle, len(cfg.Locales))}
	for _, bundle := range bundles {
		if bundle == nil || !cfg.Supports(bundle.Locale) {
			continue
		}
		c.bundles[normalizeLocale(bundle.Locale)] = bundle
	}
	for _, code := range cfg.Locales {
		if _, ok := c.bundles[code]; !ok {
			c.bundles[code] = NewBundle(code)
		}
	}
	return c
}

// Config returns the locale configuration the catalog was built with.
func (c *Catalog) Config() Config { return c.cfg }

// DefaultLocale returns the fallback locale.
func (c *Catalog) DefaultLocale() string { return c.cfg.DefaultLocale }

// Locales returns the supported locales, default first.
func (c *Catalog) Locales() []string { return slices.Clone(c.cfg.Locales) }

// Bundle returns the bundle for locale, or nil when unsupported.
func (c *Catalog) Bundle(locale string) *Bundle {
	return c.bundles[normalizeLocale(locale)]
}

// Translate resolves key for locale. Args are name/value pairs substituted
// into {name} placeholders. On a miss the key itself is returned with
// ErrMissingKey so templates render something visible.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	for _, code := range c.lookupOrder(locale) {
		bundle := c.bundles[code]
		if value, ok := bundle.Strings[key]; ok {
			return interpolate(value, args), nil
		}
		if _, ok := bundle.Lists[key]; ok {
			return key, fmt.Errorf("%w: %s is a list", ErrWrongValueKind, key)
		}
	}
	return key, fmt.Errorf("%w: %s (%s)", ErrMissingKey, key, locale)
}

// TranslateList resolves a list valued key with the same fallback as Translate.
func (c *Catalog) TranslateList(locale, key string) ([]string, error) {
	for _, code := range c.lookupOrder(locale) {
		bundle := c.bundles[code]
		if values, ok := bundle.Lists[key]; ok {
			return slices.Clone(values), nil
		}
		if _, ok := bundle.Strings[key]; ok {
			return nil, fmt.Errorf("%w: %s is a string", ErrWrongValueKind, key)
		}
	}
	return nil, fmt.Errorf("%w: %s (%s)", ErrMissingKey, key, locale)
}

// Has reports whether locale's own bundle defines key, without fallback.
func (c *Catalog) Has(locale, key string) bool {
	bundle := c.bundles[normalizeLocale(locale)]
	if bundle == nil {
		return false
	}
	if _, ok := bundle.Strings[key]; ok {
		return true
	}
	_, ok := bundle.Lists[key]
	return ok
}

func (c *Catalog) lookupOrder(locale string) []string {
	code := normalizeLocale(locale)
	order := make([]string, 0, 2)
	if _, ok := c.bundles[code]; ok {
		order = append(order, code)
	}
	if def := c.cfg.DefaultLocale; def != code {
		if _, ok := c.bundles[def]; ok {
			order = append(order, def)
		}
	}
	return order
}

func interpolate(value string, args []any) string {
	if len(args) < 2 || !strings.Contains(value, "{") {
		return value
	}
	pairs := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		name, ok := args[i].(string)
		if !ok {
			continue
		}
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(args[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(value)
}

package i18n

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var bundleExtensions = []string{".json", ".yaml", ".yml"}

// Loader reads one bundle per locale from a filesystem. Files are named
// after the locale code ("th.json", "en.yaml").
type Loader struct {
	fsys fs.FS
	dir  string
}

// NewLoader returns a loader rooted at dir inside fsys.
func NewLoader(fsys fs.FS, dir string) *Loader {
	return &Loader{fsys: fsys, dir: strings.Trim(dir, "/")}
}

// Load reads a bundle for every configured locale and returns the catalog.
// A configured locale without a file is an error.
func (l *Loader) Load(ctx context.Context, cfg Config) (*Catalog, error) {
	if l == nil || l.fsys == nil {
		return nil, errors.New("i18n: loader filesystem cannot be nil")
	}
	bundles := make([]*Bundle, 0, len(cfg.Locales))
	for _, locale := range cfg.Locales {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		bundle, err := l.loadLocale(locale)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, bundle)
	}
	return NewCatalog(cfg, bundles...), nil
}

func (l *Loader) loadLocale(locale string) (*Bundle, error) {
	for _, ext := range bundleExtensions {
		name := path.Join(l.dir, locale+ext)
		if l.dir == "" {
			name = locale + ext
		}
		file, err := l.fsys.Open(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("i18n: open bundle %q: %w", name, err)
		}
		bundle, err := DecodeBundle(locale, ext, file)
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("i18n: decode bundle %q: %w", name, err)
		}
		return bundle, nil
	}
	return nil, fmt.Errorf("i18n: no bundle for locale %q in %q", locale, l.dir)
}

// DecodeBundle parses a nested JSON or YAML document into a flattened bundle.
func DecodeBundle(locale, ext string, r io.Reader) (*Bundle, error) {
	var doc map[string]any
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported bundle extension %q", ext)
	}
	bundle := NewBundle(locale)
	if err := flatten(bundle, "", doc); err != nil {
		return nil, err
	}
	return bundle, nil
}

func flatten(bundle *Bundle, prefix string, node map[string]any) error {
	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch value := node[key].(type) {
		case map[string]any:
			if err := flatten(bundle, full, value); err != nil {
				return err
			}
		case []any:
			list := make([]string, 0, len(value))
			for i, item := range value {
				text, ok := scalar(item)
				if !ok {
					return fmt.Errorf("key %s[%d]: list items must be scalars", full, i)
				}
				list = append(list, text)
			}
			bundle.Lists[full] = list
		default:
			text, ok := scalar(value)
			if !ok {
				return fmt.Errorf("key %s: unsupported value %T", full, value)
			}
			bundle.Strings[full] = text
		}
	}
	return nil
}

func scalar(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case nil:
		return "", true
	case bool, int, int64, float64:
		return fmt.Sprint(v), true
	}
	return "", false
}

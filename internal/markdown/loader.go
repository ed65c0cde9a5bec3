package markdown

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/internal/routes"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

// IndexName is the file stem used for the home route.
const IndexName = "index"

// Page is one rendered Markdown body for a (locale, route) pair.
type Page struct {
	Locale      string
	Route       string
	FilePath    string
	FrontMatter FrontMatter
	HTML        template.HTML
	Checksum    string
}

// Library holds every page found under the pages directory, keyed by locale
// then route name.
type Library struct {
	pages map[string]map[string]*Page
}

// Lookup returns the page for locale and route.
func (l *Library) Lookup(locale, route string) (*Page, bool) {
	if l == nil {
		return nil, false
	}
	byRoute, ok := l.pages[locale]
	if !ok {
		return nil, false
	}
	page, ok := byRoute[route]
	return page, ok
}

// Len reports the number of loaded pages.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	total := 0
	for _, byRoute := range l.pages {
		total += len(byRoute)
	}
	return total
}

// Pages returns every page sorted by locale then route.
func (l *Library) Pages() []*Page {
	if l == nil {
		return nil
	}
	out := make([]*Page, 0, l.Len())
	for _, byRoute := range l.pages {
		for _, page := range byRoute {
			out = append(out, page)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Locale == out[j].Locale {
			return out[i].Route < out[j].Route
		}
		return out[i].Locale < out[j].Locale
	})
	return out
}

// LoaderConfig configures page discovery.
type LoaderConfig struct {
	// Dir is the pages root inside the filesystem, e.g. "pages".
	Dir     string
	Locales []string
	Parser  Options
	// IncludeDrafts keeps pages whose front matter sets draft: true.
	IncludeDrafts bool
	// Shortcodes, when set, expands {{< >}} tags around Markdown rendering.
	Shortcodes Expander
}

// Expander rewrites shortcodes in a page body around the Markdown render step.
type Expander interface {
	Expand(body []byte, render func([]byte) ([]byte, error)) ([]byte, error)
}

// Loader reads pages/{locale}/{route}.md files from an fs.FS.
type Loader struct {
	fs     fs.FS
	cfg    LoaderConfig
	parser *Parser
	logger interfaces.Logger
}

// NewLoader constructs a Loader. A nil logger disables logging.
func NewLoader(filesystem fs.FS, cfg LoaderConfig, logger interfaces.Logger) *Loader {
	if logger == nil {
		logger = logging.NoOp()
	}
	if strings.TrimSpace(cfg.Dir) == "" {
		cfg.Dir = "."
	}
	return &Loader{
		fs:     filesystem,
		cfg:    cfg,
		parser: NewParser(cfg.Parser),
		logger: logger,
	}
}

// Load walks each configured locale directory. A missing locale directory is
// not an error; routes without a page simply render without a body.
func (l *Loader) Load(ctx context.Context) (*Library, error) {
	lib := &Library{pages: map[string]map[string]*Page{}}
	for _, locale := range l.cfg.Locales {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := path.Join(l.cfg.Dir, locale)
		entries, err := fs.ReadDir(l.fs, dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				l.logger.Debug("markdown.locale_dir_missing", "locale", locale, "dir", dir)
				continue
			}
			return nil, fmt.Errorf("markdown loader read %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
				continue
			}
			page, err := l.loadPage(locale, path.Join(dir, entry.Name()))
			if err != nil {
				return nil, err
			}
			if page.FrontMatter.Draft && !l.cfg.IncludeDrafts {
				l.logger.Debug("markdown.draft_skipped", "path", page.FilePath)
				continue
			}
			if lib.pages[locale] == nil {
				lib.pages[locale] = map[string]*Page{}
			}
			lib.pages[locale][page.Route] = page
		}
	}
	l.logger.Info("markdown.loaded", "pages", lib.Len())
	return lib, nil
}

func (l *Loader) loadPage(locale, filePath string) (*Page, error) {
	data, err := fs.ReadFile(l.fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", filePath, err)
	}
	meta, body, err := ParseFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	var rendered []byte
	if l.cfg.Shortcodes != nil {
		rendered, err = l.cfg.Shortcodes.Expand(body, l.parser.Parse)
	} else {
		rendered, err = l.parser.Parse(body)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	sum := sha256.Sum256(data)
	return &Page{
		Locale:      locale,
		Route:       RouteName(filePath),
		FilePath:    filePath,
		FrontMatter: meta,
		HTML:        template.HTML(rendered),
		Checksum:    hex.EncodeToString(sum[:]),
	}, nil
}

// RouteName maps a page file to the route it belongs to: index.md is the home
// route, every other stem is the route name.
func RouteName(filePath string) string {
	stem := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
	if stem == IndexName {
		return routes.HomeName
	}
	return stem
}


// Package templates renders site pages with html/template. A default theme is
// embedded in the binary; a site directory can override or add any file.
package templates

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

//go:embed theme
var defaultTheme embed.FS

const (
	themeRoot = "theme"
	// LayoutName is the entry template every page executes.
	LayoutName = "layout"
	// FallbackPage is used for routes without a dedicated page template.
	FallbackPage = "page"
)

var ErrTemplateNotFound = errors.New("templates: template not found")

// Translator is what the t and tlist helpers call into.
type Translator interface {
	interfaces.Translator
	interfaces.ListTranslator
}

// Config wires the renderer.
type Config struct {
	// Overrides is an optional filesystem with partials/*.html and
	// pages/*.html that replace or extend the embedded theme.
	Overrides  fs.FS
	Translator Translator
	// Asset prefixes site-relative asset paths with the deployment base path.
	Asset func(string) string
	// Missing decides what t renders for an unresolved key. The default shows
	// the key.
	Missing interfaces.MissingTranslationHandler
}

// Renderer implements interfaces.TemplateRenderer. Every page template is
// parsed into its own clone of the shared layout and partials.
type Renderer struct {
	cfg         Config
	base        *template.Template
	pages       map[string]*template.Template
	fingerprint string
	logger      interfaces.Logger
}

var _ interfaces.TemplateRenderer = (*Renderer)(nil)

// New parses the embedded theme plus overrides.
func New(cfg Config, logger interfaces.Logger) (*Renderer, error) {
	if logger == nil {
		logger = logging.NoOp()
	}
	if cfg.Asset == nil {
		cfg.Asset = func(p string) string { return p }
	}
	if cfg.Missing == nil {
		cfg.Missing = func(_, key string, _ error) string { return key }
	}
	r := &Renderer{cfg: cfg, pages: map[string]*template.Template{}, logger: logger}

	sources, err := r.collectSources()
	if err != nil {
		return nil, err
	}
	if err := r.parse(sources); err != nil {
		return nil, err
	}
	return r, nil
}

// source is one theme file. Files wrap their markup in define blocks, the
// way template.ParseFiles expects.
type source struct {
	name string
	kind string
	body string
}

func (s source) file() string {
	return s.kind + "/" + s.name + ".html"
}

func (r *Renderer) collectSources() ([]source, error) {
	merged := map[string]source{}
	embedded, err := fs.Sub(defaultTheme, themeRoot)
	if err != nil {
		return nil, err
	}
	for _, fsys := range []fs.FS{embedded, r.cfg.Overrides} {
		if fsys == nil {
			continue
		}
		for _, kind := range []string{"partials", "pages"} {
			entries, err := fs.ReadDir(fsys, kind)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return nil, fmt.Errorf("templates: read %s: %w", kind, err)
			}
			for _, entry := range entries {
				if entry.IsDir() || path.Ext(entry.Name()) != ".html" {
					continue
				}
				data, err := fs.ReadFile(fsys, path.Join(kind, entry.Name()))
				if err != nil {
					return nil, fmt.Errorf("templates: read %s: %w", entry.Name(), err)
				}
				name := strings.TrimSuffix(entry.Name(), ".html")
				merged[kind+"/"+name] = source{name: name, kind: kind, body: string(data)}
			}
		}
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]source, 0, len(keys))
	for _, key := range keys {
		out = append(out, merged[key])
	}
	return out, nil
}

func (r *Renderer) parse(sources []source) error {
	hash := sha256.New()
	base := template.New("site").Funcs(r.funcs())
	for _, src := range sources {
		io.WriteString(hash, src.file()+"\n"+src.body)
		if src.kind != "partials" {
			continue
		}
		if _, err := base.New(src.file()).Parse(src.body); err != nil {
			return fmt.Errorf("templates: parse partial %s: %w", src.name, err)
		}
	}
	if base.Lookup(LayoutName) == nil {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, LayoutName)
	}
	for _, src := range sources {
		if src.kind != "pages" {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return fmt.Errorf("templates: clone layout for %s: %w", src.name, err)
		}
		if _, err := clone.New(src.file()).Parse(src.body); err != nil {
			return fmt.Errorf("templates: parse page %s: %w", src.name, err)
		}
		r.pages[src.name] = clone
	}
	if _, ok := r.pages[FallbackPage]; !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, FallbackPage)
	}
	r.base = base
	r.fingerprint = hex.EncodeToString(hash.Sum(nil))
	r.logger.Debug("templates.parsed", "pages", len(r.pages), "fingerprint", r.fingerprint[:12])
	return nil
}

// Has reports whether a dedicated page template exists for name.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Fingerprint digests every template source. It changes whenever a template does.
func (r *Renderer) Fingerprint() string {
	return r.fingerprint
}

// RenderTemplate executes the layout with the page template registered under
// name, or the fallback page when none exists.
func (r *Renderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	tpl, ok := r.pages[name]
	if !ok {
		tpl = r.pages[FallbackPage]
	}
	return execute(out, func(w io.Writer) error {
		return tpl.ExecuteTemplate(w, LayoutName, data)
	})
}

// RenderString parses content against the shared partials and executes it.
func (r *Renderer) RenderString(content string, data any, out ...io.Writer) (string, error) {
	clone, err := r.base.Clone()
	if err != nil {
		return "", err
	}
	tpl, err := clone.New("inline").Parse(content)
	if err != nil {
		return "", err
	}
	return execute(out, func(w io.Writer) error {
		return tpl.Execute(w, data)
	})
}

func execute(out []io.Writer, run func(io.Writer) error) (string, error) {
	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}
	if err := run(writer); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"t":        r.translate,
		"tlist":    r.translateList,
		"asset":    r.cfg.Asset,
		"safeHTML": toHTML,
		"json":     toJSON,
		"join":     func(sep string, items []string) string { return strings.Join(items, sep) },
		"lower":    strings.ToLower,
	}
}

func (r *Renderer) translate(locale, key string, args ...any) string {
	if r.cfg.Translator == nil {
		return r.cfg.Missing(locale, key, nil)
	}
	value, err := r.cfg.Translator.Translate(locale, key, args...)
	if err != nil {
		return r.cfg.Missing(locale, key, err)
	}
	return value
}

func (r *Renderer) translateList(locale, key string) []string {
	if r.cfg.Translator == nil {
		return nil
	}
	values, err := r.cfg.Translator.TranslateList(locale, key)
	if err != nil {
		r.logger.Debug("templates.list_missing", "locale", locale, "key", key)
		return nil
	}
	return values
}

func toHTML(value any) template.HTML {
	switch v := value.(type) {
	case nil:
		return ""
	case template.HTML:
		return v
	case string:
		return template.HTML(v)
	default:
		return template.HTML(fmt.Sprint(v))
	}
}

func toJSON(value any) (template.JS, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return template.JS(data), nil
}

// Static returns the theme's stylesheet and browser scripts rooted at the
// site root (css/site.css, js/site.js).
func Static() fs.FS {
	sub, err := fs.Sub(defaultTheme, path.Join(themeRoot, "static"))
	if err != nil {
		panic(err)
	}
	return sub
}

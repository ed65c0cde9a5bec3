// Package shortcode expands Hugo-style {{< name >}} tags in page bodies.
package shortcode

import (
	"errors"
	"fmt"
	"html/template"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

// TextCodeShortcodeInvalid tags page bodies whose shortcodes cannot expand.
const TextCodeShortcodeInvalid = "SHORTCODE_INVALID"

var (
	ErrMalformed = errors.New("shortcode: malformed tags")
	ErrUnknown   = errors.New("shortcode: not registered")
	ErrParams    = errors.New("shortcode: invalid parameters")
	ErrUnsafe    = errors.New("shortcode: unsafe output")
)

// Func renders one call to HTML.
type Func func(call Call) (template.HTML, error)

// Registry maps shortcode names to renderers.
type Registry struct {
	funcs  map[string]Func
	logger interfaces.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithShortcode registers or replaces fn under name.
func WithShortcode(name string, fn Func) Option {
	return func(r *Registry) {
		r.Register(name, fn)
	}
}

// New returns a registry holding the built-in shortcodes.
func New(opts ...Option) *Registry {
	r := &Registry{
		funcs:  map[string]Func{},
		logger: logging.NoOp(),
	}
	for name, fn := range builtins() {
		r.funcs[name] = fn
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register adds fn under name, replacing any previous entry.
func (r *Registry) Register(name string, fn Func) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || fn == nil {
		return
	}
	r.funcs[name] = fn
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.funcs[strings.ToLower(name)]
	return ok
}

// Expand extracts shortcodes from body, renders the remainder with render and
// puts the shortcode output back in place. A placeholder that is the only
// content of a paragraph replaces the whole paragraph.
func (r *Registry) Expand(body []byte, render func([]byte) ([]byte, error)) ([]byte, error) {
	stripped, calls, err := Extract(string(body))
	if err != nil {
		return nil, invalid(err)
	}
	rendered, err := render([]byte(stripped))
	if err != nil {
		return nil, err
	}
	if len(calls) == 0 {
		return rendered, nil
	}

	out := string(rendered)
	for idx, call := range calls {
		fn, ok := r.funcs[strings.ToLower(call.Name)]
		if !ok {
			return nil, invalid(fmt.Errorf("%w: %s", ErrUnknown, call.Name))
		}
		html, err := fn(call)
		if err != nil {
			return nil, invalid(fmt.Errorf("%s: %w", call.Name, err))
		}
		if strings.Contains(strings.ToLower(string(html)), "<script") {
			return nil, invalid(fmt.Errorf("%s: %w", call.Name, ErrUnsafe))
		}
		token := placeholder(idx)
		out = strings.Replace(out, "<p>"+token+"</p>", string(html), 1)
		out = strings.Replace(out, token, string(html), 1)
	}
	r.logger.Debug("shortcode.expanded", "shortcodes", len(calls))
	return []byte(out), nil
}

func invalid(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "page shortcodes").
		WithTextCode(TextCodeShortcodeInvalid)
}

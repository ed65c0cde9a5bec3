package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

// Config locates the content documents inside a filesystem.
type Config struct {
	Dir         string
	CareersFile string
	VideosFile  string
}

// Store holds the read-only content of one build.
type Store struct {
	Careers []CareerPosting
	Videos  []Video
}

// OpenCareers returns the postings flagged open, in document order.
func (s *Store) OpenCareers() []CareerPosting {
	if s == nil {
		return nil
	}
	return OpenPostings(s.Careers)
}

// Loader reads and validates content documents.
type Loader struct {
	fsys   fs.FS
	cfg    Config
	logger interfaces.Logger
}

// LoaderOption customises a Loader.
type LoaderOption func(*Loader)

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader binds a loader to fsys.
func NewLoader(fsys fs.FS, cfg Config, opts ...LoaderOption) *Loader {
	loader := &Loader{fsys: fsys, cfg: cfg, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(loader)
		}
	}
	return loader
}

// Load validates each configured document against its schema and decodes it.
// A missing document yields an empty collection; invalid documents fail.
func (l *Loader) Load(ctx context.Context) (*Store, error) {
	store := &Store{}

	raw, err := l.read(ctx, l.cfg.CareersFile)
	if err != nil {
		return nil, err
	}
	if raw != nil {
		if err := ValidateCareersDocument(raw); err != nil {
			return nil, err
		}
		if store.Careers, err = ParseCareers(raw); err != nil {
			return nil, err
		}
	}

	raw, err = l.read(ctx, l.cfg.VideosFile)
	if err != nil {
		return nil, err
	}
	if raw != nil {
		if err := ValidateVideosDocument(raw); err != nil {
			return nil, err
		}
		if store.Videos, err = ParseVideos(raw); err != nil {
			return nil, err
		}
	}

	l.logger.Debug("content.loaded",
		"careers", len(store.Careers),
		"open_careers", len(store.OpenCareers()),
		"videos", len(store.Videos),
	)
	return store, nil
}

func (l *Loader) read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || l.fsys == nil {
		return nil, nil
	}
	target := name
	if l.cfg.Dir != "" {
		target = path.Join(l.cfg.Dir, name)
	}
	raw, err := fs.ReadFile(l.fsys, target)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("content.document.missing", "path", target)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", target, err)
	}
	return raw, nil
}

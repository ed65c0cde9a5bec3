// Package filesystem stores generator artifacts under a root directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/eureka-automation/eureka-site/internal/generator"
	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

// ErrOutsideRoot rejects paths that would escape the storage root.
var ErrOutsideRoot = errors.New("filesystem: path escapes storage root")

// Storage implements interfaces.StorageProvider for the generator operations.
// Writes go to a temporary sibling first and are renamed into place, so a
// served site never sees a half-written page.
type Storage struct {
	root   string
	base   string
	logger interfaces.Logger
}

var _ interfaces.StorageProvider = (*Storage)(nil)

// Option customises Storage.
type Option func(*Storage)

// WithBase strips base from incoming paths, for callers that address
// artifacts relative to a parent of the root.
func WithBase(base string) Option {
	return func(s *Storage) {
		s.base = strings.Trim(filepath.ToSlash(base), "/")
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New roots the storage at dir, creating it when missing.
func New(dir string, opts ...Option) (*Storage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("filesystem: root directory is required")
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("filesystem: resolve root: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("filesystem: create root: %w", err)
	}
	s := &Storage{root: root, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Root returns the absolute root directory.
func (s *Storage) Root() string { return s.root }

// Query serves generator.read. A missing file yields empty rows.
func (s *Storage) Query(ctx context.Context, query string, args ...any) (interfaces.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if query != generator.StorageOpRead {
		return nil, fmt.Errorf("filesystem: unsupported query %q", query)
	}
	if len(args) == 0 {
		return nil, errors.New("filesystem: read requires path")
	}
	full, err := s.resolve(args[0])
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return &fileRows{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &fileRows{data: data, ok: true}, nil
}

// Exec serves generator.ensure_dir, generator.write and generator.remove.
func (s *Storage) Exec(ctx context.Context, query string, args ...any) (interfaces.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("filesystem: %s requires path", query)
	}
	full, err := s.resolve(args[0])
	if err != nil {
		return nil, err
	}
	switch query {
	case generator.StorageOpEnsureDir:
		return result(1), os.MkdirAll(full, 0o755)
	case generator.StorageOpWrite:
		if len(args) < 2 {
			return nil, errors.New("filesystem: write requires path and reader")
		}
		reader, ok := args[1].(io.Reader)
		if !ok || reader == nil {
			return nil, errors.New("filesystem: write expects io.Reader content")
		}
		n, err := writeAtomic(full, reader)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("filesystem.write", "path", full, "bytes", n, "category", argString(args, 3))
		return result(1), nil
	case generator.StorageOpRemove:
		err := os.RemoveAll(full)
		if errors.Is(err, os.ErrNotExist) {
			return result(0), nil
		}
		return result(1), err
	default:
		return nil, fmt.Errorf("filesystem: unsupported exec %q", query)
	}
}

func (s *Storage) resolve(arg any) (string, error) {
	rel, _ := arg.(string)
	rel = filepath.ToSlash(filepath.Clean("/" + strings.TrimSpace(rel)))
	rel = strings.TrimPrefix(rel, "/")
	if s.base != "" && (rel == s.base || strings.HasPrefix(rel, s.base+"/")) {
		rel = strings.TrimPrefix(strings.TrimPrefix(rel, s.base), "/")
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if full != s.root && !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
	}
	return full, nil
}

func writeAtomic(full string, reader io.Reader) (int64, error) {
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(full)+".*")
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(tmp, reader)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0o644)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), full)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return 0, err
	}
	return n, nil
}

func argString(args []any, idx int) string {
	if idx >= len(args) {
		return ""
	}
	value, _ := args[idx].(string)
	return value
}

type fileRows struct {
	data []byte
	ok   bool
	read bool
}

func (r *fileRows) Next() bool {
	if !r.ok || r.read {
		return false
	}
	r.read = true
	return true
}

func (r *fileRows) Scan(dest ...any) error {
	if len(dest) == 0 {
		return nil
	}
	switch target := dest[0].(type) {
	case *[]byte:
		*target = append([]byte(nil), r.data...)
	case *string:
		*target = string(r.data)
	default:
		return fmt.Errorf("filesystem: unsupported scan target %T", dest[0])
	}
	return nil
}

func (r *fileRows) Close() error { return nil }

type result int64

func (r result) RowsAffected() (int64, error) { return int64(r), nil }

package generator

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

// Operation names understood by storage providers backing the generator.
const (
	StorageOpEnsureDir = "generator.ensure_dir"
	StorageOpWrite     = "generator.write"
	StorageOpRead      = "generator.read"
	StorageOpRemove    = "generator.remove"
)

type writeCategory string

const (
	categoryPage     writeCategory = "page"
	categoryAsset    writeCategory = "asset"
	categoryRedirect writeCategory = "redirect"
	categorySitemap  writeCategory = "sitemap"
	categoryRobots   writeCategory = "robots"
	categoryManifest writeCategory = "manifest"
)

type writeFileRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Locale      string
	Category    writeCategory
	ContentType string
	Checksum    string
	Metadata    map[string]string
}

// artifactWriter hides the storage provider behind the three operations a
// build needs.
type artifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req writeFileRequest) error
	Remove(ctx context.Context, path string) error
}

func newArtifactWriter(storage interfaces.StorageProvider) artifactWriter {
	if storage == nil {
		return noopWriter{}
	}
	return &storageWriter{storage: storage}
}

type storageWriter struct {
	storage interfaces.StorageProvider
}

func (w *storageWriter) EnsureDir(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" || path == "." {
		return nil
	}
	_, err := w.storage.Exec(ctx, StorageOpEnsureDir, path)
	return err
}

func (w *storageWriter) WriteFile(ctx context.Context, req writeFileRequest) error {
	if req.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("generator: write requires path")
	}
	if req.Metadata == nil {
		req.Metadata = map[string]string{}
	}
	_, err := w.storage.Exec(ctx, StorageOpWrite,
		req.Path,
		req.Content,
		req.Size,
		string(req.Category),
		req.ContentType,
		req.Locale,
		req.Checksum,
		req.Metadata,
	)
	return err
}

func (w *storageWriter) Remove(ctx context.Context, path string) error {
	_, err := w.storage.Exec(ctx, StorageOpRemove, path)
	return err
}

type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error { return nil }

func (noopWriter) WriteFile(context.Context, writeFileRequest) error { return nil }

func (noopWriter) Remove(context.Context, string) error { return nil }

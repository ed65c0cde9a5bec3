package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"sort"
	"strings"
)

type assetCopySummary struct {
	Built   int
	Skipped int
}

// collectAssets merges the asset filesystems; a later filesystem replaces
// files of the same path from an earlier one.
func collectAssets(sources []fs.FS) (map[string]fs.FS, []string, error) {
	owners := map[string]fs.FS{}
	for _, fsys := range sources {
		if fsys == nil {
			continue
		}
		err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if errors.Is(walkErr, fs.ErrNotExist) {
					return fs.SkipDir
				}
				return walkErr
			}
			if d.IsDir() || strings.HasPrefix(path.Base(p), ".") {
				return nil
			}
			owners[p] = fsys
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("generator: walk assets: %w", err)
		}
	}
	keys := make([]string, 0, len(owners))
	for key := range owners {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return owners, keys, nil
}

func (s *service) copyAssets(ctx context.Context, writer artifactWriter, manifest *buildManifest, force bool) (assetCopySummary, error) {
	summary := assetCopySummary{}
	owners, keys, err := collectAssets(s.deps.Assets)
	if err != nil || len(keys) == 0 {
		return summary, err
	}
	baseDir := s.baseDir()
	dirCache := map[string]struct{}{}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		data, err := fs.ReadFile(owners[key], key)
		if err != nil {
			return summary, fmt.Errorf("generator: read asset %s: %w", key, err)
		}
		fullPath := joinOutputPath(baseDir, key)
		checksum := computeHash(data)
		if s.cfg.Incremental && !force && manifest.shouldSkipAsset(key, checksum, fullPath) {
			summary.Skipped++
			continue
		}
		if err := ensureDir(ctx, writer, dirCache, path.Dir(fullPath)); err != nil {
			return summary, err
		}
		err = writer.WriteFile(ctx, writeFileRequest{
			Path:        fullPath,
			Content:     bytes.NewReader(data),
			Size:        int64(len(data)),
			Category:    categoryAsset,
			ContentType: detectAssetContentType(key),
			Checksum:    checksum,
			Metadata:    map[string]string{"asset": key},
		})
		if err != nil {
			return summary, err
		}
		summary.Built++
		manifest.setAsset(manifestAsset{
			Key:      key,
			Output:   fullPath,
			Checksum: checksum,
			Size:     int64(len(data)),
			CopiedAt: s.now().UTC(),
		})
	}
	return summary, nil
}

func detectAssetContentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

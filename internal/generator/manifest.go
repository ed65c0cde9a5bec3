package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	manifestFileName    = ".generator-manifest.json"
	manifestFileVersion = 1
)

// buildManifest records the last successful build so unchanged pages can be
// skipped on the next incremental run.
type buildManifest struct {
	Version     int                      `json:"version"`
	GeneratedAt time.Time                `json:"generated_at"`
	Pages       map[string]manifestPage  `json:"pages"`
	Assets      map[string]manifestAsset `json:"assets"`
}

type manifestPage struct {
	PageID     string    `json:"page_id"`
	Locale     string    `json:"locale"`
	Route      string    `json:"route"`
	URL        string    `json:"url"`
	Output     string    `json:"output"`
	Template   string    `json:"template"`
	Hash       string    `json:"hash"`
	Checksum   string    `json:"checksum"`
	RenderedAt time.Time `json:"rendered_at"`
}

type manifestAsset struct {
	Key      string    `json:"key"`
	Output   string    `json:"output"`
	Checksum string    `json:"checksum"`
	Size     int64     `json:"size"`
	CopiedAt time.Time `json:"copied_at"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version: manifestFileVersion,
		Pages:   map[string]manifestPage{},
		Assets:  map[string]manifestAsset{},
	}
}

// parseManifest accepts the ordered on-disk form written by marshal.
func parseManifest(data []byte) (*buildManifest, error) {
	if len(data) == 0 {
		return newBuildManifest(), nil
	}
	var stored orderedManifest
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	manifest := newBuildManifest()
	manifest.GeneratedAt = stored.GeneratedAt
	if stored.Version != 0 {
		manifest.Version = stored.Version
	}
	for _, entry := range stored.Pages {
		manifest.setPage(entry)
	}
	for _, entry := range stored.Assets {
		manifest.setAsset(entry)
	}
	return manifest, nil
}

type orderedManifest struct {
	Version     int            `json:"version"`
	GeneratedAt time.Time      `json:"generated_at"`
	Pages       []manifestPage  `json:"pages"`
	Assets      []manifestAsset `json:"assets"`
}

func (m *buildManifest) marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	ordered := orderedManifest{
		Version:     m.Version,
		GeneratedAt: m.GeneratedAt,
		Pages:       make([]manifestPage, 0, len(m.Pages)),
		Assets:      make([]manifestAsset, 0, len(m.Assets)),
	}
	if ordered.Version == 0 {
		ordered.Version = manifestFileVersion
	}
	for _, entry := range m.Pages {
		ordered.Pages = append(ordered.Pages, entry)
	}
	sort.Slice(ordered.Pages, func(i, j int) bool {
		if ordered.Pages[i].Locale == ordered.Pages[j].Locale {
			return ordered.Pages[i].Route < ordered.Pages[j].Route
		}
		return ordered.Pages[i].Locale < ordered.Pages[j].Locale
	})
	for _, entry := range m.Assets {
		ordered.Assets = append(ordered.Assets, entry)
	}
	sort.Slice(ordered.Assets, func(i, j int) bool {
		return ordered.Assets[i].Key < ordered.Assets[j].Key
	})
	return json.MarshalIndent(ordered, "", "  ")
}

func manifestKey(pageID, locale string) string {
	return strings.ToLower(strings.TrimSpace(pageID)) + "::" + strings.ToLower(strings.TrimSpace(locale))
}

func (m *buildManifest) pageKey(pageID uuid.UUID, locale string) string {
	return manifestKey(pageID.String(), locale)
}

func (m *buildManifest) lookupPage(pageID uuid.UUID, locale string) (manifestPage, bool) {
	if m == nil || len(m.Pages) == 0 {
		return manifestPage{}, false
	}
	entry, ok := m.Pages[m.pageKey(pageID, locale)]
	return entry, ok
}

func (m *buildManifest) setPage(entry manifestPage) {
	if m == nil {
		return
	}
	if m.Pages == nil {
		m.Pages = map[string]manifestPage{}
	}
	m.Pages[manifestKey(entry.PageID, entry.Locale)] = entry
}

func (m *buildManifest) shouldSkipPage(pageID uuid.UUID, locale, hash, output string) bool {
	entry, ok := m.lookupPage(pageID, locale)
	if !ok {
		return false
	}
	return entry.Hash == hash && strings.TrimSpace(entry.Output) == strings.TrimSpace(output)
}

// prunePages drops entries for pages that are no longer part of the site.
func (m *buildManifest) prunePages(keys map[string]struct{}) {
	if len(keys) == 0 || len(m.Pages) == 0 {
		return
	}
	for key := range m.Pages {
		if _, ok := keys[key]; !ok {
			delete(m.Pages, key)
		}
	}
}

func (m *buildManifest) setAsset(entry manifestAsset) {
	if m == nil {
		return
	}
	if m.Assets == nil {
		m.Assets = map[string]manifestAsset{}
	}
	m.Assets[entry.Key] = entry
}

func (m *buildManifest) shouldSkipAsset(key, checksum, output string) bool {
	if m == nil {
		return false
	}
	entry, ok := m.Assets[key]
	if !ok {
		return false
	}
	return entry.Checksum == checksum && strings.TrimSpace(entry.Output) == strings.TrimSpace(output)
}

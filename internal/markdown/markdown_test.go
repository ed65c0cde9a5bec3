package markdown

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
)

const aboutEN = `---
title: About Eureka
description: Automation partner since 2009
weight: 2
hero: factory.jpg
---
# About us

We build **custom machines**.
`

func TestParseFrontMatter(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte(aboutEN))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "About Eureka" {
		t.Fatalf("unexpected title %q", fm.Title)
	}
	if fm.Description != "Automation partner since 2009" {
		t.Fatalf("unexpected description %q", fm.Description)
	}
	if fm.Weight != 2 {
		t.Fatalf("expected weight 2, got %d", fm.Weight)
	}
	if fm.Custom["hero"] != "factory.jpg" {
		t.Fatalf("custom keys not kept: %#v", fm.Custom)
	}
	if !strings.Contains(string(body), "# About us") {
		t.Fatalf("body not returned: %q", body)
	}
}

func TestParseFrontMatterWithoutBlock(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte("plain body"))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "" {
		t.Fatalf("expected empty title, got %q", fm.Title)
	}
	if string(body) != "plain body" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestParserRendersGFM(t *testing.T) {
	parser := NewParser(Options{})
	html, err := parser.Parse([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n\n~~old~~"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.Contains(string(html), "<table>") {
		t.Fatalf("expected table markup, got %s", html)
	}
	if !strings.Contains(string(html), "<del>old</del>") {
		t.Fatalf("expected strikethrough markup, got %s", html)
	}
}

func TestParserSafeModeDropsRawHTML(t *testing.T) {
	parser := NewParser(Options{SafeMode: true})
	html, err := parser.Parse([]byte("<script>alert(1)</script>\n\ntext"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if strings.Contains(string(html), "<script>") {
		t.Fatalf("raw html should be omitted in safe mode: %s", html)
	}
}

func TestLoaderLoadsLocalizedPages(t *testing.T) {
	fsys := fstest.MapFS{
		"pages/en/about.md":    {Data: []byte(aboutEN)},
		"pages/en/index.md":    {Data: []byte("Welcome")},
		"pages/th/about.md":    {Data: []byte("---\ntitle: เกี่ยวกับเรา\n---\nสวัสดี")},
		"pages/th/draft.md":    {Data: []byte("---\ndraft: true\n---\nhidden")},
		"pages/th/notes.txt":   {Data: []byte("ignored")},
		"pages/en/nested/x.md": {Data: []byte("ignored")},
	}

	loader := NewLoader(fsys, LoaderConfig{Dir: "pages", Locales: []string{"en", "th", "jp"}}, nil)
	lib, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if lib.Len() != 3 {
		t.Fatalf("expected 3 pages, got %d", lib.Len())
	}

	about, ok := lib.Lookup("en", "about")
	if !ok {
		t.Fatalf("expected en/about page")
	}
	if !strings.Contains(string(about.HTML), "<strong>custom machines</strong>") {
		t.Fatalf("expected rendered body, got %s", about.HTML)
	}
	if about.Checksum == "" {
		t.Fatalf("expected checksum")
	}

	if _, ok := lib.Lookup("en", "home"); !ok {
		t.Fatalf("index.md should map to the home route")
	}
	th, ok := lib.Lookup("th", "about")
	if !ok || th.FrontMatter.Title != "เกี่ยวกับเรา" {
		t.Fatalf("unexpected th page %#v", th)
	}
	if _, ok := lib.Lookup("th", "draft"); ok {
		t.Fatalf("drafts should be skipped")
	}

	pages := lib.Pages()
	if pages[0].Locale != "en" || pages[0].Route != "about" {
		t.Fatalf("unexpected ordering: %s/%s", pages[0].Locale, pages[0].Route)
	}
}

func TestLoaderIncludesDraftsWhenAsked(t *testing.T) {
	fsys := fstest.MapFS{
		"pages/en/draft.md": {Data: []byte("---\ndraft: true\n---\nhidden")},
	}
	loader := NewLoader(fsys, LoaderConfig{Dir: "pages", Locales: []string{"en"}, IncludeDrafts: true}, nil)
	lib, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := lib.Lookup("en", "draft"); !ok {
		t.Fatalf("expected draft page to be loaded")
	}
}

func TestLoaderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loader := NewLoader(fstest.MapFS{}, LoaderConfig{Locales: []string{"en"}}, nil)
	if _, err := loader.Load(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}

type upperExpander struct{ calls int }

func (u *upperExpander) Expand(body []byte, render func([]byte) ([]byte, error)) ([]byte, error) {
	u.calls++
	html, err := render(body)
	if err != nil {
		return nil, err
	}
	return []byte(strings.ToUpper(string(html))), nil
}

func TestLoaderRunsShortcodeExpander(t *testing.T) {
	fsys := fstest.MapFS{
		"pages/en/about.md": {Data: []byte(aboutEN)},
	}
	expander := &upperExpander{}
	lib, err := NewLoader(fsys, LoaderConfig{Dir: "pages", Locales: []string{"en"}, Shortcodes: expander}, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	page, ok := lib.Lookup("en", "about")
	if !ok {
		t.Fatal("expected about page")
	}
	if expander.calls != 1 {
		t.Fatalf("expected expander to run once, got %d", expander.calls)
	}
	if !strings.Contains(string(page.HTML), "CUSTOM MACHINES") {
		t.Fatalf("expected expander output, got %s", page.HTML)
	}
}

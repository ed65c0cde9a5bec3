package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/internal/logging/console"
)

func TestConsoleLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
	})

	logger := provider.GetLogger("site.generator")
	logger = logging.WithFields(logger, map[string]any{"module": "site.generator"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"request_id": "req-42"})
	logger = logger.WithContext(ctx)

	logger.Info("page.rendered", "locale", "th", "route", "/th/careers/", "duration", 15*time.Millisecond)

	got := strings.TrimSpace(buf.String())
	want := "2025-06-02T09:30:00Z INFO page.rendered duration=15ms locale=th logger=site.generator module=site.generator request_id=req-42 route=/th/careers/"
	if got != want {
		t.Fatalf("unexpected entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.LevelWarn
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: &minLevel})

	logger := provider.GetLogger("site.test")
	logger.Info("dropped")
	logger.Error("kept", "error", errors.New("endpoint unreachable"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `error="endpoint unreachable"`) {
		t.Fatalf("expected quoted error value, got %s", lines[0])
	}
}

func TestConsoleLogger_OddArgumentsArePositional(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	provider.GetLogger("site.test").Debug("odd", "key", "value", "dangling")

	if !strings.Contains(buf.String(), "arg_2=dangling") {
		t.Fatalf("expected positional field, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":   console.LevelTrace,
		"DEBUG":   console.LevelDebug,
		"":        console.LevelInfo,
		"warning": console.LevelWarn,
		"error":   console.LevelError,
	}
	for input, want := range cases {
		got, ok := console.ParseLevel(input)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", input, got, ok, want)
		}
	}
	if _, ok := console.ParseLevel("verbose"); ok {
		t.Fatal("expected unknown level to be rejected")
	}
}

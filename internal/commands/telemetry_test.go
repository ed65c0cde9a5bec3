package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/eureka-automation/eureka-site/internal/logging/console"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

func TestDefaultTelemetryLogsMessageFields(t *testing.T) {
	var buf bytes.Buffer
	logger := console.NewProvider(console.Options{Writer: &buf}).GetLogger("site.commands.test")

	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return errors.New("relay down")
	},
		WithOperation[testMessage]("site.test"),
		WithTelemetry(DefaultTelemetry[testMessage](logger)),
		WithMessageFields(func(testMessage) map[string]any {
			return map[string]any{"locale": "th"}
		}),
	)

	if err := h.Execute(context.Background(), testMessage{}); err == nil {
		t.Fatal("expected execution error")
	}
	out := buf.String()
	for _, want := range []string{"command.execute.failed", "locale=th", "operation=site.test", "command=site.test.message"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output, got %q", want, out)
		}
	}
}

// plainLogger has no WithFields method.
type plainLogger struct {
	infos []string
}

func (l *plainLogger) Trace(string, ...any)                          {}
func (l *plainLogger) Debug(string, ...any)                          {}
func (l *plainLogger) Info(msg string, _ ...any)                     { l.infos = append(l.infos, msg) }
func (l *plainLogger) Warn(string, ...any)                           {}
func (l *plainLogger) Error(string, ...any)                          {}
func (l *plainLogger) Fatal(string, ...any)                          {}
func (l *plainLogger) WithContext(context.Context) interfaces.Logger { return l }

func TestDefaultTelemetryAcceptsLoggersWithoutFields(t *testing.T) {
	logger := &plainLogger{}
	telemetry := DefaultTelemetry[testMessage](logger)

	telemetry(context.Background(), testMessage{}, TelemetryInfo{
		Command: "site.test.message",
		Fields:  map[string]any{"locale": "en"},
		Status:  TelemetryStatusSuccess,
	})
	if len(logger.infos) != 1 || logger.infos[0] != "command.execute.success" {
		t.Fatalf("expected success entry, got %v", logger.infos)
	}
}

package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

// TelemetryStatus captures the result category for command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes a command execution outcome provided to telemetry callbacks.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked once per execution after the outcome is known.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// CommandObserver receives command outcomes, typically for metrics.
type CommandObserver interface {
	ObserveCommand(command, status string, d time.Duration)
}

// DefaultTelemetry logs command outcomes with the supplied logger.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(ctx context.Context, _ T, info TelemetryInfo) {
		entry := logger.WithContext(ctx)
		if info.Fields != nil {
			entry = logging.WithFields(entry, info.Fields)
		}
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.success", args...)
		case TelemetryStatusContextError:
			entry.Error("command.execute.context_error", append(args, "error", info.Error)...)
		default:
			entry.Error("command.execute.failed", append(args, "error", info.Error)...)
		}
	}
}

// ObservedTelemetry chains next with an observer call. A nil observer
// returns next unchanged.
func ObservedTelemetry[T command.Message](observer CommandObserver, next Telemetry[T]) Telemetry[T] {
	if observer == nil {
		return next
	}
	return func(ctx context.Context, msg T, info TelemetryInfo) {
		observer.ObserveCommand(info.Command, string(info.Status), info.Duration)
		if next != nil {
			next(ctx, msg, info)
		}
	}
}

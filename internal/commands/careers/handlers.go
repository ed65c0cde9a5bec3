package careerscmd

import (
	"context"

	goerrors "github.com/goliatone/go-errors"

	"github.com/eureka-automation/eureka-site/internal/careers"
	"github.com/eureka-automation/eureka-site/internal/commands"
	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

// SubmitApplicationHandler runs one careers form per command: attach, submit,
// report. Limits are checked before the resume is read.
type SubmitApplicationHandler struct {
	inner *commands.Handler[SubmitApplicationCommand]
}

// NewSubmitApplicationHandler wires the handler to a relay sender.
func NewSubmitApplicationHandler(sender careers.Sender, limits careers.Limits, logger interfaces.Logger, opts ...commands.HandlerOption[SubmitApplicationCommand]) *SubmitApplicationHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg SubmitApplicationCommand) error {
		form := careers.NewForm(sender,
			careers.WithLimits(limits),
			careers.WithFormLogger(logger),
		)
		form.SetFields(msg.Application)
		if err := form.Attach(msg.Resume); err != nil {
			return final(err)
		}
		receipt, err := form.Submit(ctx)
		if err != nil {
			return final(err)
		}
		if msg.ReceiptCallback != nil {
			msg.ReceiptCallback(receipt)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SubmitApplicationCommand]{
		commands.WithLogger[SubmitApplicationCommand](logger),
		commands.WithOperation[SubmitApplicationCommand]("careers.apply"),
		commands.WithTelemetry(commands.DefaultTelemetry[SubmitApplicationCommand](logger)),
		commands.WithMessageFields(func(msg SubmitApplicationCommand) map[string]any {
			fields := map[string]any{
				"position": msg.Application.Position,
				"locale":   msg.Locale,
			}
			if msg.Resume != nil {
				fields["resume_size"] = msg.Resume.Size
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SubmitApplicationHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SubmitApplicationCommand].
func (h *SubmitApplicationHandler) Execute(ctx context.Context, msg SubmitApplicationCommand) error {
	return h.inner.Execute(ctx, msg)
}

// finalError stops command runner retries for an application. The resume
// reader is drained by the first attempt, so a rerun would relay no file.
type finalError struct {
	err error
}

func final(err error) error {
	if !goerrors.IsWrapped(err) {
		err = goerrors.Wrap(err, goerrors.CategoryCommand, "careers application failed")
	}
	return &finalError{err: err}
}

func (e *finalError) Error() string { return e.err.Error() }

func (e *finalError) Unwrap() error { return e.err }

// IsRetryable is checked by the go-command runner before each retry.
func (e *finalError) IsRetryable() bool { return false }

// SendContactHandler relays contact messages.
type SendContactHandler struct {
	inner *commands.Handler[SendContactCommand]
}

// NewSendContactHandler wires the handler to a relay sender. A nil sender
// rejects every message with careers.ErrContactEndpointMissing.
func NewSendContactHandler(sender careers.Sender, logger interfaces.Logger, opts ...commands.HandlerOption[SendContactCommand]) *SendContactHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg SendContactCommand) error {
		form := careers.NewContactForm(sender)
		form.SetMessage(msg.Message)
		receipt, err := form.Submit(ctx)
		if err != nil {
			return err
		}
		if msg.ReceiptCallback != nil {
			msg.ReceiptCallback(receipt)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SendContactCommand]{
		commands.WithLogger[SendContactCommand](logger),
		commands.WithOperation[SendContactCommand]("careers.contact"),
		commands.WithTelemetry(commands.DefaultTelemetry[SendContactCommand](logger)),
		commands.WithMessageFields(func(msg SendContactCommand) map[string]any {
			return map[string]any{"locale": msg.Locale}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SendContactHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SendContactCommand].
func (h *SendContactHandler) Execute(ctx context.Context, msg SendContactCommand) error {
	return h.inner.Execute(ctx, msg)
}

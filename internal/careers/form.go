package careers

import (
	"context"
	"errors"
	"sync"

	goerrors "github.com/goliatone/go-errors"

	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

// KindApplication labels careers submissions for logs and metrics.
const KindApplication = "application"

// Status is the observable state of a form.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Translation keys of the status banner.
const (
	MessageKeySuccess = "careers.form.success"
	MessageKeyFailure = "careers.form.error"
)

// ErrSubmissionInFlight rejects a submit while another one is running.
var ErrSubmissionInFlight = errors.New("careers: submission already in progress")

// FormState is a snapshot of the form for rendering.
type FormState struct {
	Status     Status      `json:"status"`
	Fields     Application `json:"fields"`
	Attachment string      `json:"attachment,omitempty"`
	MessageKey string      `json:"messageKey,omitempty"`
	CanSubmit  bool        `json:"canSubmit"`
}

// Form is one careers application form instance.
type Form struct {
	mu       sync.Mutex
	status   Status
	fields   Application
	resume   *Attachment
	encoded  string
	message  string
	lastErr  error
	sender   Sender
	limits   Limits
	logger   interfaces.Logger
	onStatus func(Status)
}

// FormOption customises a Form.
type FormOption func(*Form)

// WithLimits overrides the attachment limits.
func WithLimits(limits Limits) FormOption {
	return func(f *Form) {
		f.limits = limits.normalized()
	}
}

// WithFormLogger attaches a logger.
func WithFormLogger(logger interfaces.Logger) FormOption {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithStatusHook is called after every status change, outside the form lock.
func WithStatusHook(fn func(Status)) FormOption {
	return func(f *Form) {
		f.onStatus = fn
	}
}

// NewForm returns an idle, empty form.
func NewForm(sender Sender, opts ...FormOption) *Form {
	f := &Form{
		status: StatusIdle,
		sender: sender,
		limits: DefaultLimits(),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// SetFields replaces the text fields.
func (f *Form) SetFields(app Application) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = app
}

// Attach checks att against the limits and keeps it on success. A rejected
// file leaves the previous attachment in place.
func (f *Form) Attach(att *Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.limits.Check(att); err != nil {
		return err
	}
	f.resume = att
	f.encoded = ""
	return nil
}

// Status returns the current status.
func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Err returns the error of the last failed submission.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// State returns a render snapshot.
func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := FormState{
		Status:     f.status,
		Fields:     f.fields,
		MessageKey: f.message,
		CanSubmit:  f.status != StatusSubmitting && f.fields.PDPAAccepted,
	}
	if f.resume != nil {
		state.Attachment = f.resume.Name
	}
	return state
}

// Submit validates, encodes and sends the application once. Validation
// failures never reach the network and leave the status untouched.
func (f *Form) Submit(ctx context.Context) (Receipt, error) {
	f.mu.Lock()
	if f.status == StatusSubmitting {
		f.mu.Unlock()
		return Receipt{}, ErrSubmissionInFlight
	}
	if err := f.fields.Validate(); err != nil {
		f.mu.Unlock()
		return Receipt{}, err
	}
	if err := f.limits.Check(f.resume); err != nil {
		f.mu.Unlock()
		return Receipt{}, err
	}
	fields, resume, encoded, limits := f.fields, f.resume, f.encoded, f.limits
	f.status = StatusSubmitting
	f.message = ""
	f.lastErr = nil
	f.mu.Unlock()
	f.notify(StatusSubmitting)

	if encoded == "" {
		var err error
		if encoded, err = EncodeAttachment(resume, limits.MaxFileSize); err != nil {
			f.mu.Lock()
			f.status = StatusFailed
			f.message = MessageKeyFailure
			f.lastErr = err
			f.mu.Unlock()
			f.notify(StatusFailed)
			return Receipt{}, err
		}
		// the reader is drained now; a retry resends these bytes
		f.mu.Lock()
		if f.resume == resume {
			f.encoded = encoded
		}
		f.mu.Unlock()
	}

	receipt, err := f.send(ctx, fields, resume.Name, encoded)

	f.mu.Lock()
	if err != nil {
		f.status = StatusFailed
		f.message = MessageKeyFailure
		f.lastErr = err
	} else {
		f.status = StatusSucceeded
		f.message = MessageKeySuccess
		f.fields = Application{}
		f.resume = nil
		f.encoded = ""
	}
	status := f.status
	f.mu.Unlock()
	f.notify(status)

	if err != nil {
		f.logger.Warn("careers.application.failed", "position", fields.Position, "error", err)
		return receipt, err
	}
	f.logger.Info("careers.application.submitted", "position", fields.Position, "confirmed", receipt.Confirmed)
	return receipt, nil
}

// Reset returns a finished form to idle without touching its fields.
func (f *Form) Reset() {
	f.mu.Lock()
	if f.status == StatusSubmitting {
		f.mu.Unlock()
		return
	}
	f.status = StatusIdle
	f.message = ""
	f.lastErr = nil
	f.mu.Unlock()
	f.notify(StatusIdle)
}

func (f *Form) send(ctx context.Context, fields Application, name, encoded string) (Receipt, error) {
	if f.sender == nil {
		return Receipt{}, goerrors.Wrap(ErrEndpointMissing, goerrors.CategoryBadInput, "no submission sender").
			WithTextCode(TextCodeEndpointMissing)
	}
	payload := NewPayload(fields)
	payload.PDFData = encoded
	payload.PDFName = name
	return f.sender.Send(ctx, KindApplication, payload)
}

func (f *Form) notify(status Status) {
	if f.onStatus != nil {
		f.onStatus(status)
	}
}

package careers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	jsoniter "github.com/json-iterator/go"

	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

// Transport selects how a submission outcome is judged.
type Transport string

const (
	// TransportOpaque treats any completed request as sent; the response is not inspected.
	TransportOpaque Transport = "opaque"
	// TransportConfirmed requires a 2xx response.
	TransportConfirmed Transport = "confirmed"
)

const (
	TextCodeTransportFailed = "SUBMISSION_TRANSPORT_FAILED"
	TextCodeRejected        = "SUBMISSION_REJECTED"
	TextCodeEndpointMissing = "SUBMISSION_ENDPOINT_MISSING"
)

var (
	ErrEndpointMissing  = errors.New("careers: submission endpoint is not configured")
	ErrTransportFailed  = errors.New("careers: submission transport failed")
	ErrSubmissionDenied = errors.New("careers: submission rejected by endpoint")
	ErrUnknownTransport = errors.New("careers: unknown transport")
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Receipt describes a completed submission.
type Receipt struct {
	Transport  Transport `json:"transport"`
	StatusCode int       `json:"statusCode,omitempty"`
	Confirmed  bool      `json:"confirmed"`
	Duration   time.Duration
}

// Sender posts a JSON body to an endpoint.
type Sender interface {
	Send(ctx context.Context, kind string, body any) (Receipt, error)
}

// Observer receives submission outcomes, typically for metrics.
type Observer interface {
	ObserveSubmission(kind, outcome string, duration time.Duration)
}

// SubmitterConfig configures the HTTP submitter.
type SubmitterConfig struct {
	Endpoint  string
	Transport Transport
	Timeout   time.Duration
	Client    *http.Client
}

// Submitter posts payloads over HTTP. It never retries.
type Submitter struct {
	endpoint  string
	transport Transport
	client    *http.Client
	logger    interfaces.Logger
	observer  Observer
}

// SubmitterOption customises a Submitter.
type SubmitterOption func(*Submitter)

// WithSubmitterLogger attaches a logger.
func WithSubmitterLogger(logger interfaces.Logger) SubmitterOption {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver reports every outcome to observer.
func WithObserver(observer Observer) SubmitterOption {
	return func(s *Submitter) {
		s.observer = observer
	}
}

// NewSubmitter validates cfg. A zero timeout leaves requests unbounded.
func NewSubmitter(cfg SubmitterConfig, opts ...SubmitterOption) (*Submitter, error) {
	transport := Transport(strings.ToLower(strings.TrimSpace(string(cfg.Transport))))
	switch transport {
	case "":
		transport = TransportConfirmed
	case TransportOpaque, TransportConfirmed:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, cfg.Transport)
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	s := &Submitter{
		endpoint:  strings.TrimSpace(cfg.Endpoint),
		transport: transport,
		client:    client,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Transport returns the configured transport mode.
func (s *Submitter) Transport() Transport { return s.transport }

// Send encodes body as JSON and posts it once.
func (s *Submitter) Send(ctx context.Context, kind string, body any) (Receipt, error) {
	started := time.Now()
	receipt, err := s.send(ctx, body)
	receipt.Duration = time.Since(started)

	outcome := "sent"
	switch {
	case err != nil && goerrors.IsCategory(err, goerrors.CategoryExternal):
		outcome = "failed"
	case err != nil:
		outcome = "error"
	case receipt.Confirmed:
		outcome = "confirmed"
	}
	if s.observer != nil {
		s.observer.ObserveSubmission(kind, outcome, receipt.Duration)
	}

	logger := logging.WithFields(s.logger.WithContext(ctx), map[string]any{
		"kind":      kind,
		"transport": string(s.transport),
		"duration":  receipt.Duration,
	})
	if err != nil {
		logger.Warn("submission.failed", "error", err, "status", receipt.StatusCode)
		return receipt, err
	}
	logger.Info("submission.sent", "status", receipt.StatusCode, "confirmed", receipt.Confirmed)
	return receipt, nil
}

func (s *Submitter) send(ctx context.Context, body any) (Receipt, error) {
	receipt := Receipt{Transport: s.transport}
	if s.endpoint == "" {
		return receipt, goerrors.Wrap(ErrEndpointMissing, goerrors.CategoryBadInput, "submission endpoint missing").
			WithTextCode(TextCodeEndpointMissing)
	}

	encoded, err := codec.Marshal(body)
	if err != nil {
		return receipt, goerrors.Wrap(err, goerrors.CategoryInternal, "encode submission")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return receipt, goerrors.Wrap(err, goerrors.CategoryBadInput, "build submission request")
	}
	if s.transport == TransportOpaque {
		// cross-origin simple request: the body is JSON but declared as text
		req.Header.Set("Content-Type", "text/plain;charset=utf-8")
	} else {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return receipt, goerrors.Wrap(errors.Join(ErrTransportFailed, err), goerrors.CategoryExternal, "submission transport failed").
			WithTextCode(TextCodeTransportFailed)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if s.transport == TransportOpaque {
		return receipt, nil
	}

	receipt.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return receipt, goerrors.Wrap(ErrSubmissionDenied, goerrors.CategoryExternal, "submission rejected").
			WithTextCode(TextCodeRejected).
			WithCode(resp.StatusCode).
			WithMetadata(map[string]any{"status": resp.StatusCode})
	}
	receipt.Confirmed = true
	return receipt, nil
}

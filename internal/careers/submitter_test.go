package careers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type observation struct {
	kind    string
	outcome string
}

type stubObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (s *stubObserver) ObserveSubmission(kind, outcome string, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, observation{kind: kind, outcome: outcome})
}

func TestSubmitterConfirmedRejectsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	observer := &stubObserver{}
	submitter, err := NewSubmitter(SubmitterConfig{Endpoint: server.URL}, WithObserver(observer))
	if err != nil {
		t.Fatalf("new submitter: %v", err)
	}
	if submitter.Transport() != TransportConfirmed {
		t.Fatalf("expected confirmed default, got %s", submitter.Transport())
	}

	receipt, err := submitter.Send(context.Background(), KindApplication, NewPayload(janeDoe()))
	if !errors.Is(err, ErrSubmissionDenied) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryExternal) {
		t.Fatalf("expected external category, got %v", err)
	}
	var typed *goerrors.Error
	if !goerrors.As(err, &typed) || typed.TextCode != TextCodeRejected {
		t.Fatalf("expected %s, got %v", TextCodeRejected, err)
	}
	if receipt.StatusCode != http.StatusBadGateway || receipt.Confirmed {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if len(observer.seen) != 1 || observer.seen[0] != (observation{kind: KindApplication, outcome: "failed"}) {
		t.Fatalf("unexpected observations %+v", observer.seen)
	}
}

func TestSubmitterOpaqueIgnoresStatus(t *testing.T) {
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	submitter, err := NewSubmitter(SubmitterConfig{Endpoint: server.URL, Transport: "OPAQUE"})
	if err != nil {
		t.Fatalf("new submitter: %v", err)
	}
	receipt, err := submitter.Send(context.Background(), KindApplication, NewPayload(janeDoe()))
	if err != nil {
		t.Fatalf("expected opaque success, got %v", err)
	}
	if receipt.Confirmed || receipt.StatusCode != 0 {
		t.Fatalf("expected unconfirmed receipt without status, got %+v", receipt)
	}
	if contentType != "text/plain;charset=utf-8" {
		t.Fatalf("unexpected content type %q", contentType)
	}
}

func TestSubmitterTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := server.URL
	server.Close()

	for _, transport := range []Transport{TransportOpaque, TransportConfirmed} {
		submitter, err := NewSubmitter(SubmitterConfig{Endpoint: endpoint, Transport: transport})
		if err != nil {
			t.Fatalf("new submitter: %v", err)
		}
		_, err = submitter.Send(context.Background(), KindContact, ContactMessage{Name: "x"})
		if !errors.Is(err, ErrTransportFailed) {
			t.Fatalf("%s: expected transport failure, got %v", transport, err)
		}
		var typed *goerrors.Error
		if !goerrors.As(err, &typed) || typed.TextCode != TextCodeTransportFailed {
			t.Fatalf("%s: expected %s, got %v", transport, TextCodeTransportFailed, err)
		}
	}
}

func TestSubmitterHonoursContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	submitter, err := NewSubmitter(SubmitterConfig{Endpoint: server.URL})
	if err != nil {
		t.Fatalf("new submitter: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := submitter.Send(ctx, KindApplication, NewPayload(janeDoe())); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestSubmitterConfigErrors(t *testing.T) {
	if _, err := NewSubmitter(SubmitterConfig{Transport: "carrier-pigeon"}); !errors.Is(err, ErrUnknownTransport) {
		t.Fatalf("expected unknown transport, got %v", err)
	}
	submitter, err := NewSubmitter(SubmitterConfig{})
	if err != nil {
		t.Fatalf("new submitter: %v", err)
	}
	if _, err := submitter.Send(context.Background(), KindApplication, Payload{}); !errors.Is(err, ErrEndpointMissing) {
		t.Fatalf("expected endpoint missing, got %v", err)
	}
}

package careerscmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eureka-automation/eureka-site/internal/careers"
)

type recordingSender struct {
	calls   int
	kind    string
	body    any
	receipt careers.Receipt
	err     error
}

func (s *recordingSender) Send(_ context.Context, kind string, body any) (careers.Receipt, error) {
	s.calls++
	s.kind = kind
	s.body = body
	return s.receipt, s.err
}

func validApplication() careers.Application {
	return careers.Application{
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane@example.com",
		Phone:        "0812345678",
		Position:     "PLC Engineer",
		PDPAAccepted: true,
	}
}

func pdf(data string) *careers.Attachment {
	return &careers.Attachment{
		Name:        "resume.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(data)),
		Reader:      bytes.NewReader([]byte(data)),
	}
}

func TestSubmitApplicationRelaysPayload(t *testing.T) {
	sender := &recordingSender{receipt: careers.Receipt{Transport: careers.TransportConfirmed, Confirmed: true, StatusCode: 200}}
	handler := NewSubmitApplicationHandler(sender, careers.DefaultLimits(), nil)

	var receipt careers.Receipt
	err := handler.Execute(context.Background(), SubmitApplicationCommand{
		Application:     validApplication(),
		Resume:          pdf("%PDF-1.4 small"),
		Locale:          "th",
		ReceiptCallback: func(r careers.Receipt) { receipt = r },
	})
	require.NoError(t, err)
	require.Equal(t, 1, sender.calls)
	assert.Equal(t, careers.KindApplication, sender.kind)
	assert.True(t, receipt.Confirmed)

	payload, ok := sender.body.(careers.Payload)
	require.True(t, ok, "expected careers.Payload body, got %T", sender.body)
	assert.Equal(t, "Jane Doe", payload.Name)
	assert.Equal(t, "resume.pdf", payload.PDFName)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 small")), payload.PDFData)
	assert.True(t, payload.PDPAAccepted)
}

func TestSubmitApplicationRejectsBeforeNetwork(t *testing.T) {
	cases := map[string]SubmitApplicationCommand{
		"missing consent": {
			Application: func() careers.Application { a := validApplication(); a.PDPAAccepted = false; return a }(),
			Resume:      pdf("%PDF"),
		},
		"missing field": {
			Application: func() careers.Application { a := validApplication(); a.Email = ""; return a }(),
			Resume:      pdf("%PDF"),
		},
		"missing resume": {
			Application: validApplication(),
		},
		"wrong type": {
			Application: validApplication(),
			Resume:      &careers.Attachment{Name: "cv.docx", ContentType: "application/msword", Size: 10, Reader: bytes.NewReader(nil)},
		},
		"too large": {
			Application: validApplication(),
			Resume:      &careers.Attachment{Name: "cv.pdf", ContentType: "application/pdf", Size: 10 << 20, Reader: bytes.NewReader(nil)},
		},
	}
	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			sender := &recordingSender{}
			handler := NewSubmitApplicationHandler(sender, careers.DefaultLimits(), nil)

			err := handler.Execute(context.Background(), cmd)
			require.Error(t, err)
			assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation), "expected validation category, got %v", err)
			assert.Zero(t, sender.calls, "validation failures must not reach the relay")
		})
	}
}

func TestSubmitApplicationSurfacesTransportFailure(t *testing.T) {
	transportErr := goerrors.New("relay down", goerrors.CategoryExternal).WithTextCode(careers.TextCodeTransportFailed)
	sender := &recordingSender{err: transportErr}
	handler := NewSubmitApplicationHandler(sender, careers.DefaultLimits(), nil)

	err := handler.Execute(context.Background(), SubmitApplicationCommand{
		Application: validApplication(),
		Resume:      pdf("%PDF"),
	})
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryExternal))
	assert.Equal(t, 1, sender.calls)
}

func TestSendContactRelaysMessage(t *testing.T) {
	sender := &recordingSender{receipt: careers.Receipt{Confirmed: true}}
	handler := NewSendContactHandler(sender, nil)

	msg := careers.ContactMessage{Name: "Somchai", Email: "somchai@example.co.th", Message: "Quote for a conveyor"}
	require.NoError(t, handler.Execute(context.Background(), SendContactCommand{Message: msg, Locale: "th"}))
	assert.Equal(t, careers.KindContact, sender.kind)
	assert.Equal(t, msg, sender.body)
}

func TestSendContactValidation(t *testing.T) {
	sender := &recordingSender{}
	handler := NewSendContactHandler(sender, nil)

	err := handler.Execute(context.Background(), SendContactCommand{Message: careers.ContactMessage{Name: "x"}})
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
	assert.Zero(t, sender.calls)
}

func TestSendContactWithoutRelay(t *testing.T) {
	handler := NewSendContactHandler(nil, nil)
	err := handler.Execute(context.Background(), SendContactCommand{
		Message: careers.ContactMessage{Name: "x", Email: "x@example.com", Message: "hi"},
	})
	assert.True(t, errors.Is(err, careers.ErrContactEndpointMissing))
}

func TestSubmitApplicationFailuresAreNotRetryable(t *testing.T) {
	sender := &recordingSender{err: goerrors.New("relay down", goerrors.CategoryExternal).WithTextCode(careers.TextCodeTransportFailed)}
	handler := NewSubmitApplicationHandler(sender, careers.DefaultLimits(), nil)

	err := handler.Execute(context.Background(), SubmitApplicationCommand{
		Application: validApplication(),
		Resume:      pdf("%PDF"),
	})
	require.Error(t, err)
	retryable, ok := err.(interface{ IsRetryable() bool })
	require.True(t, ok, "expected retry hint on %T", err)
	assert.False(t, retryable.IsRetryable())

	var coded *goerrors.Error
	require.True(t, errors.As(err, &coded))
	assert.Equal(t, careers.TextCodeTransportFailed, coded.TextCode)
}

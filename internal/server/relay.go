package server

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	goerrors "github.com/goliatone/go-errors"

	"github.com/eureka-automation/eureka-site/internal/careers"
	careerscmd "github.com/eureka-automation/eureka-site/internal/commands/careers"
)

const (
	textCodeMalformedBody = "RELAY_BODY_MALFORMED"
	textCodeBadResume     = "RESUME_ENCODING_INVALID"

	// room for the JSON fields around the base64 resume
	bodyOverhead int64 = 64 << 10
)

// applicationRequest is the browser-side careers payload plus the page locale.
type applicationRequest struct {
	careers.Payload
	Locale string `json:"locale"`
}

type contactRequest struct {
	careers.ContactMessage
	Locale string `json:"locale"`
}

type relayResponse struct {
	Status    careers.Status `json:"status"`
	Confirmed bool           `json:"confirmed"`
	Message   string         `json:"message,omitempty"`
	Error     any            `json:"error,omitempty"`
}

func (s *Server) submitApplication(c *gin.Context) {
	var req applicationRequest
	limits := s.limits()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(base64.StdEncoding.EncodedLen(int(limits.MaxFileSize)))+bodyOverhead)
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, "", "careers.form.error", goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed application body").
			WithTextCode(textCodeMalformedBody))
		return
	}
	locale := s.locale(req.Locale)

	if s.deps.Applications == nil {
		s.fail(c, locale, "careers.form.error", careers.ErrEndpointMissing)
		return
	}

	resume, err := decodeResume(req.PDFName, req.PDFData)
	if err != nil {
		s.fail(c, locale, "careers.form.error", err)
		return
	}

	var receipt careers.Receipt
	err = s.deps.Applications.Execute(c.Request.Context(), careerscmd.SubmitApplicationCommand{
		Application: req.Payload.Application(),
		Resume:      resume,
		Locale:      locale,
		ReceiptCallback: func(r careers.Receipt) {
			receipt = r
		},
	})
	if err != nil {
		s.fail(c, locale, "careers.form.error", err)
		return
	}
	s.succeed(c, locale, "careers.form.success", receipt)
}

func (s *Server) sendContact(c *gin.Context) {
	var req contactRequest
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bodyOverhead)
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, "", "contact.error", goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed contact body").
			WithTextCode(textCodeMalformedBody))
		return
	}
	locale := s.locale(req.Locale)

	if s.deps.Contact == nil {
		s.fail(c, locale, "contact.error", careers.ErrContactEndpointMissing)
		return
	}

	var receipt careers.Receipt
	err := s.deps.Contact.Execute(c.Request.Context(), careerscmd.SendContactCommand{
		Message: req.ContactMessage,
		Locale:  locale,
		ReceiptCallback: func(r careers.Receipt) {
			receipt = r
		},
	})
	if err != nil {
		s.fail(c, locale, "contact.error", err)
		return
	}
	s.succeed(c, locale, "contact.success", receipt)
}

func (s *Server) succeed(c *gin.Context, locale, key string, receipt careers.Receipt) {
	c.JSON(http.StatusOK, relayResponse{
		Status:    careers.StatusSucceeded,
		Confirmed: receipt.Confirmed,
		Message:   s.translate(locale, key),
	})
}

func (s *Server) fail(c *gin.Context, locale, key string, err error) {
	body := errorBody(c, err)
	if body.Code >= http.StatusInternalServerError {
		s.logger.Error("relay failed", "path", c.Request.URL.Path, "error", err, "request_id", body.RequestID)
	} else {
		s.logger.Warn("relay rejected", "path", c.Request.URL.Path, "error", err, "request_id", body.RequestID)
	}
	if locale == "" {
		locale = s.locale("")
	}
	c.JSON(body.Code, relayResponse{
		Status:  careers.StatusFailed,
		Message: s.translate(locale, key),
		Error:   body,
	})
}

func (s *Server) locale(requested string) string {
	cfg := s.deps.Resolver.Config()
	requested = strings.ToLower(strings.TrimSpace(requested))
	if cfg.Supports(requested) {
		return requested
	}
	return cfg.DefaultLocale
}

func (s *Server) translate(locale, key string) string {
	if s.deps.Translator == nil {
		return ""
	}
	value, err := s.deps.Translator.Translate(locale, key)
	if err != nil {
		return ""
	}
	return value
}

func (s *Server) limits() careers.Limits {
	limits := s.cfg.Limits
	if limits.MaxFileSize <= 0 {
		limits.MaxFileSize = careers.DefaultMaxFileSize
	}
	return limits
}

// decodeResume turns the base64 pdfData back into an attachment. The content
// type is sniffed from the bytes, so a renamed file does not pass as a PDF.
// An empty pdfData yields nil and the form reports the missing resume.
func decodeResume(name, data string) (*careers.Attachment, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, nil
	}
	if i := strings.Index(data, ";base64,"); i >= 0 && strings.HasPrefix(data, "data:") {
		data = data[i+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		field := goerrors.FieldError{Field: "resume", Message: "resume is not valid base64", Value: name}
		verr := goerrors.NewValidation("resume rejected", field).WithTextCode(textCodeBadResume)
		verr.Source = err
		return nil, verr
	}
	return &careers.Attachment{
		Name:        strings.TrimSpace(name),
		ContentType: http.DetectContentType(raw),
		Size:        int64(len(raw)),
		Reader:      bytes.NewReader(raw),
	}, nil
}

package careers

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultMaxFileSize caps resume uploads at 5 MiB.
const DefaultMaxFileSize int64 = 5 << 20

const (
	TextCodeInvalidApplication = "APPLICATION_INVALID"
	TextCodeInvalidAttachment  = "ATTACHMENT_INVALID"
)

var (
	ErrAttachmentRequired = errors.New("careers: resume attachment is required")
	ErrAttachmentTooLarge = errors.New("careers: resume exceeds the maximum size")
	ErrAttachmentType     = errors.New("careers: resume type is not accepted")
	ErrConsentRequired    = errors.New("careers: data protection consent is required")
)

// Application holds the text fields of the careers form.
type Application struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Position     string `json:"position"`
	Message      string `json:"message"`
	PDPAAccepted bool   `json:"pdpaAccepted"`
}

// FullName joins first and last name the way the payload expects it.
func (a Application) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
}

// Validate checks required fields and consent.
func (a Application) Validate() error {
	err := validation.ValidateStruct(&a,
		validation.Field(&a.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&a.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&a.Email, validation.Required, is.EmailFormat),
		validation.Field(&a.Phone, validation.Required, validation.Length(6, 32)),
		validation.Field(&a.Position, validation.Required),
		validation.Field(&a.Message, validation.Length(0, 5000)),
		validation.Field(&a.PDPAAccepted, validation.By(func(value any) error {
			if accepted, _ := value.(bool); !accepted {
				return validation.NewError("careers.consent_required", ErrConsentRequired.Error())
			}
			return nil
		})),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "application is incomplete").
			WithTextCode(TextCodeInvalidApplication)
	}
	return nil
}

// Attachment is an uploaded file. Size and ContentType are what the client
// declared; Reader is only consumed once the limits have been checked.
type Attachment struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Limits constrains attachments.
type Limits struct {
	MaxFileSize   int64
	AcceptedTypes []string
}

// DefaultLimits accepts PDF files up to 5 MiB.
func DefaultLimits() Limits {
	return Limits{MaxFileSize: DefaultMaxFileSize, AcceptedTypes: []string{"application/pdf"}}
}

func (l Limits) normalized() Limits {
	if l.MaxFileSize <= 0 {
		l.MaxFileSize = DefaultMaxFileSize
	}
	if len(l.AcceptedTypes) == 0 {
		l.AcceptedTypes = []string{"application/pdf"}
	}
	return l
}

// Check rejects missing, oversized or wrongly typed attachments without reading them.
func (l Limits) Check(att *Attachment) error {
	l = l.normalized()
	if att == nil || att.Reader == nil {
		return attachmentError(ErrAttachmentRequired, att)
	}
	if att.Size > l.MaxFileSize {
		return attachmentError(ErrAttachmentTooLarge, att).
			WithMetadata(map[string]any{"max_size": l.MaxFileSize, "size": att.Size})
	}
	mediaType, _, err := mime.ParseMediaType(att.ContentType)
	if err != nil || !slices.Contains(l.AcceptedTypes, strings.ToLower(mediaType)) {
		return attachmentError(ErrAttachmentType, att).
			WithMetadata(map[string]any{"accepted": l.AcceptedTypes, "content_type": att.ContentType})
	}
	return nil
}

func attachmentError(cause error, att *Attachment) *goerrors.Error {
	field := goerrors.FieldError{Field: "resume", Message: cause.Error()}
	if att != nil {
		field.Value = att.Name
	}
	err := goerrors.NewValidation("resume rejected", field).WithTextCode(TextCodeInvalidAttachment)
	err.Source = cause
	return err
}

// EncodeAttachment reads att and returns its base64 form. The read is bounded
// by limit so a lying Size cannot smuggle a larger file through. An empty file
// counts as no file.
func EncodeAttachment(att *Attachment, limit int64) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(att.Reader, limit+1))
	if err != nil {
		return "", fmt.Errorf("careers: read attachment: %w", err)
	}
	if n > limit {
		return "", attachmentError(ErrAttachmentTooLarge, att)
	}
	if n == 0 {
		return "", attachmentError(ErrAttachmentRequired, att)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

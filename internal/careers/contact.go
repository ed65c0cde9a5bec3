package careers

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"
)

// KindContact labels contact submissions for logs and metrics.
const KindContact = "contact"

const TextCodeInvalidContact = "CONTACT_INVALID"

// ErrContactEndpointMissing is returned when no relay endpoint is configured.
var ErrContactEndpointMissing = errors.New("careers: contact endpoint is not configured")

// ContactMessage holds the contact form fields.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Validate requires name, email and message.
func (m ContactMessage) Validate() error {
	err := validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&m.Email, validation.Required, is.EmailFormat),
		validation.Field(&m.Company, validation.Length(0, 200)),
		validation.Field(&m.Phone, validation.Length(0, 32)),
		validation.Field(&m.Message, validation.Required, validation.Length(1, 5000)),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "contact message is incomplete").
			WithTextCode(TextCodeInvalidContact)
	}
	return nil
}

// Mailto builds a mailto link carrying the message, for sites without a relay.
func (m ContactMessage) Mailto(to string) string {
	subject := "Contact from " + strings.TrimSpace(m.Name)
	if company := strings.TrimSpace(m.Company); company != "" {
		subject += " (" + company + ")"
	}
	lines := []string{
		"Name: " + m.Name,
		"Email: " + m.Email,
	}
	if m.Company != "" {
		lines = append(lines, "Company: "+m.Company)
	}
	if m.Phone != "" {
		lines = append(lines, "Phone: "+m.Phone)
	}
	lines = append(lines, "", m.Message)

	query := url.Values{}
	query.Set("subject", subject)
	query.Set("body", strings.Join(lines, "\n"))
	return "mailto:" + to + "?" + strings.ReplaceAll(query.Encode(), "+", "%20")
}

// ContactForm is one contact form instance.
type ContactForm struct {
	mu      sync.Mutex
	status  Status
	message ContactMessage
	sender  Sender
}

// NewContactForm returns an idle form. A nil sender makes every submit fail
// with ErrContactEndpointMissing.
func NewContactForm(sender Sender) *ContactForm {
	return &ContactForm{status: StatusIdle, sender: sender}
}

// SetMessage replaces the form fields.
func (c *ContactForm) SetMessage(msg ContactMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = msg
}

// Message returns the current fields.
func (c *ContactForm) Message() ContactMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// Status returns the current status.
func (c *ContactForm) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Submit validates and sends the message. Success clears the fields.
func (c *ContactForm) Submit(ctx context.Context) (Receipt, error) {
	c.mu.Lock()
	if c.status == StatusSubmitting {
		c.mu.Unlock()
		return Receipt{}, ErrSubmissionInFlight
	}
	if err := c.message.Validate(); err != nil {
		c.mu.Unlock()
		return Receipt{}, err
	}
	if c.sender == nil {
		c.mu.Unlock()
		return Receipt{}, goerrors.Wrap(ErrContactEndpointMissing, goerrors.CategoryBadInput, "contact endpoint missing").
			WithTextCode(TextCodeEndpointMissing)
	}
	msg := c.message
	c.status = StatusSubmitting
	c.mu.Unlock()

	receipt, err := c.sender.Send(ctx, KindContact, msg)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = StatusFailed
		return receipt, err
	}
	c.status = StatusSucceeded
	c.message = ContactMessage{}
	return receipt, nil
}

package careerscmd

import (
	"github.com/eureka-automation/eureka-site/internal/careers"
)

const (
	submitApplicationMessageType = "site.careers.submit_application"
	sendContactMessageType       = "site.careers.send_contact"
)

// ReceiptCallback receives the submission receipt once the relay returned.
type ReceiptCallback func(careers.Receipt)

// SubmitApplicationCommand relays one careers application with its resume.
type SubmitApplicationCommand struct {
	Application     careers.Application `json:"application"`
	Resume          *careers.Attachment `json:"-"`
	Locale          string              `json:"locale,omitempty"`
	ReceiptCallback ReceiptCallback     `json:"-"`
}

// Type implements command.Message.
func (SubmitApplicationCommand) Type() string { return submitApplicationMessageType }

// Validate checks the text fields and consent. Attachment limits are
// enforced by the handler, which owns them.
func (m SubmitApplicationCommand) Validate() error {
	return m.Application.Validate()
}

// SendContactCommand relays one contact form message.
type SendContactCommand struct {
	Message         careers.ContactMessage `json:"message"`
	Locale          string                 `json:"locale,omitempty"`
	ReceiptCallback ReceiptCallback        `json:"-"`
}

// Type implements command.Message.
func (SendContactCommand) Type() string { return sendContactMessageType }

// Validate requires name, email and message.
func (m SendContactCommand) Validate() error {
	return m.Message.Validate()
}

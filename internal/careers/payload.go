package careers

import "strings"

// Payload is the JSON body posted to the submission endpoint.
type Payload struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Position     string `json:"position"`
	Message      string `json:"message"`
	PDFData      string `json:"pdfData,omitempty"`
	PDFName      string `json:"pdfName,omitempty"`
	PDPAAccepted bool   `json:"pdpaAccepted"`
}

// NewPayload copies trimmed application fields into a payload without attachment data.
func NewPayload(app Application) Payload {
	return Payload{
		FirstName:    strings.TrimSpace(app.FirstName),
		LastName:     strings.TrimSpace(app.LastName),
		Name:         app.FullName(),
		Email:        strings.TrimSpace(app.Email),
		Phone:        strings.TrimSpace(app.Phone),
		Position:     strings.TrimSpace(app.Position),
		Message:      app.Message,
		PDPAAccepted: app.PDPAAccepted,
	}
}

// Application recovers the form fields from a payload, as received by the relay.
func (p Payload) Application() Application {
	return Application{
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		Phone:        p.Phone,
		Position:     p.Position,
		Message:      p.Message,
		PDPAAccepted: p.PDPAAccepted,
	}
}

package nestapi

import (
	"encoding/json"
	"errors"
	"net/mail"
	"strings"
	"time"
)

// Contact is a lead captured by the contact or inquiry forms.
type Contact struct {
	ID          string    `json:"_id"`
	FullName    string    `json:"FullName"`
	Email       string    `json:"Email"`
	PhoneNumber string    `json:"PhoneNumber"`
	Message     string    `json:"Message"`
	PropertyID  string    `json:"propertyId,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// ShortID returns the first eight characters of the identifier.
func (c Contact) ShortID() string {
	if len(c.ID) <= 8 {
		return c.ID
	}
	return c.ID[:8]
}

// UnmarshalJSON tolerates "id" in place of "_id" and a missing or
// unparseable createdAt.
func (c *Contact) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID          string `json:"_id"`
		AltID       string `json:"id"`
		FullName    string `json:"FullName"`
		Email       string `json:"Email"`
		PhoneNumber string `json:"PhoneNumber"`
		Message     string `json:"Message"`
		PropertyID  string `json:"propertyId"`
		CreatedAt   string `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*c = Contact{
		ID:          strings.TrimSpace(wire.ID),
		FullName:    wire.FullName,
		Email:       wire.Email,
		PhoneNumber: wire.PhoneNumber,
		Message:     wire.Message,
		PropertyID:  wire.PropertyID,
	}
	if c.ID == "" {
		c.ID = strings.TrimSpace(wire.AltID)
	}
	if t, err := time.Parse(time.RFC3339Nano, wire.CreatedAt); err == nil {
		c.CreatedAt = t
	}
	return nil
}

// ContactListResponse is the /api/contact envelope.
type ContactListResponse struct {
	Data []Contact `json:"data"`
}

// Inquiry is the body posted by the contact and "apply now" forms.
type Inquiry struct {
	FullName    string `json:"FullName"`
	Email       string `json:"Email"`
	PhoneNumber string `json:"PhoneNumber,omitempty"`
	Message     string `json:"Message,omitempty"`
	PropertyID  string `json:"propertyId,omitempty"`
}

// Inquiry validation errors.
var (
	ErrNameRequired = errors.New("full name is required")
	ErrEmailInvalid = errors.New("enter a valid email address")
)

// ValidateName rejects a blank full name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return nil
}

// ValidateEmail accepts a bare address such as jane@example.com. Display-name
// forms like "Jane <jane@example.com>" are rejected.
func ValidateEmail(email string) error {
	trimmed := strings.TrimSpace(email)
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Name != "" || addr.Address != trimmed {
		return ErrEmailInvalid
	}
	return nil
}

// Validate checks the fields the backend requires before posting.
func (in Inquiry) Validate() error {
	if err := ValidateName(in.FullName); err != nil {
		return err
	}
	return ValidateEmail(in.Email)
}

// ExportKind selects a spreadsheet export.
type ExportKind string

const (
	ExportProperties ExportKind = "properties"
	ExportContacts   ExportKind = "contacts"
)

func (k ExportKind) path() (string, bool) {
	switch k {
	case ExportProperties:
		return "/api/download-excel", true
	case ExportContacts:
		return "/api/download-contact-excel", true
	default:
		return "", false
	}
}

package nestapi

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestInquiryValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Inquiry
		want error
	}{
		{name: "valid", in: Inquiry{FullName: "Layla Haddad", Email: "layla@example.com"}},
		{name: "surrounding space", in: Inquiry{FullName: "Layla", Email: " layla@example.com "}},
		{name: "blank name", in: Inquiry{FullName: "   ", Email: "layla@example.com"}, want: ErrNameRequired},
		{name: "missing email", in: Inquiry{FullName: "Layla"}, want: ErrEmailInvalid},
		{name: "no domain", in: Inquiry{FullName: "Layla", Email: "layla@"}, want: ErrEmailInvalid},
		{name: "display name form", in: Inquiry{FullName: "Layla", Email: "Layla <layla@example.com>"}, want: ErrEmailInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.in.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("Validate = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestContactUnmarshal_ToleratesAltIDAndBadDate(t *testing.T) {
	t.Parallel()

	var c Contact
	if err := json.Unmarshal([]byte(`{"id":"abcdef0123456789","FullName":"Omar","createdAt":"yesterday"}`), &c); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if c.ID != "abcdef0123456789" || c.FullName != "Omar" || !c.CreatedAt.IsZero() {
		t.Fatalf("contact = %+v", c)
	}
	if got := c.ShortID(); got != "abcdef01" {
		t.Fatalf("ShortID = %q", got)
	}
}

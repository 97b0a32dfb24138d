package booking

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wolfman30/medibook/internal/i18n"
)

// Form is the client-contact record collected by the booking form.
type Form struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Consent  bool   `json:"consent"`
}

// Field names a form input. Values match the JSON keys of Form.
type Field string

const (
	FieldFullName Field = "fullName"
	FieldPhone    Field = "phone"
	FieldEmail    Field = "email"
	FieldConsent  Field = "consent"
)

// validationOrder is the order in which missing fields are reported.
var validationOrder = []Field{FieldFullName, FieldPhone, FieldEmail, FieldConsent}

// ParseField maps an input name onto a Field.
func ParseField(name string) (Field, error) {
	f := Field(strings.TrimSpace(name))
	switch f {
	case FieldFullName, FieldPhone, FieldEmail, FieldConsent:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
}

// LabelKey is the catalog key used to render the field's label.
func (f Field) LabelKey() i18n.Key {
	switch f {
	case FieldFullName:
		return i18n.KeyFullName
	case FieldPhone:
		return i18n.KeyPhone
	case FieldEmail:
		return i18n.KeyEmail
	case FieldConsent:
		return i18n.KeyPrivacyConsent
	default:
		return i18n.Key(f)
	}
}

// set merges one raw input value into the form without validating it.
func (f *Form) set(field Field, value string) error {
	switch field {
	case FieldFullName:
		f.FullName = value
	case FieldPhone:
		f.Phone = value
	case FieldEmail:
		f.Email = value
	case FieldConsent:
		consent, err := parseConsent(value)
		if err != nil {
			return err
		}
		f.Consent = consent
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Missing lists required fields that are empty (after trimming) or, for
// consent, not granted. The order is fixed: name, phone, email, consent.
func (f Form) Missing() []Field {
	var missing []Field
	for _, field := range validationOrder {
		switch field {
		case FieldFullName:
			if strings.TrimSpace(f.FullName) == "" {
				missing = append(missing, field)
			}
		case FieldPhone:
			if strings.TrimSpace(f.Phone) == "" {
				missing = append(missing, field)
			}
		case FieldEmail:
			if strings.TrimSpace(f.Email) == "" {
				missing = append(missing, field)
			}
		case FieldConsent:
			if !f.Consent {
				missing = append(missing, field)
			}
		}
	}
	return missing
}

func parseConsent(value string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "on", "yes", "checked":
		return true, nil
	case "", "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: consent %q", ErrInvalidValue, value)
	}
	return b, nil
}

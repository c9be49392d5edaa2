package contact

import (
	"errors"
	"fmt"
	"strings"
)

// Field names as they appear in forms, JSON bodies and error mappings.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldSubject = "subject"
	FieldMessage = "message"
	FieldService = "service"
)

var ErrUnknownField = errors.New("unknown contact field")

// Submission is the set of values a visitor enters in the contact form.
type Submission struct {
	Name    string `json:"name" form:"name" validate:"filled"`
	Email   string `json:"email" form:"email" validate:"filled,simple_email"`
	Phone   string `json:"phone" form:"phone" validate:"filled"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message" validate:"filled,message_len"`
	Service string `json:"service" form:"service"`
}

// Set assigns one named field.
func (s *Submission) Set(field, value string) error {
	switch field {
	case FieldName:
		s.Name = value
	case FieldEmail:
		s.Email = value
	case FieldPhone:
		s.Phone = value
	case FieldSubject:
		s.Subject = value
	case FieldMessage:
		s.Message = value
	case FieldService:
		s.Service = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Get returns the value of one named field.
func (s Submission) Get(field string) (string, error) {
	switch field {
	case FieldName:
		return s.Name, nil
	case FieldEmail:
		return s.Email, nil
	case FieldPhone:
		return s.Phone, nil
	case FieldSubject:
		return s.Subject, nil
	case FieldMessage:
		return s.Message, nil
	case FieldService:
		return s.Service, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
}

// IsEmpty reports whether every field is blank.
func (s Submission) IsEmpty() bool {
	for _, v := range []string{s.Name, s.Email, s.Phone, s.Subject, s.Message, s.Service} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Fields lists the form fields in display order.
func Fields() []string {
	return []string{FieldName, FieldEmail, FieldPhone, FieldService, FieldSubject, FieldMessage}
}

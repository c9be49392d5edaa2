package contact

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// DefaultMinMessageLength is the shortest message accepted when none is configured.
const DefaultMinMessageLength = 10

const msgUnvalidated = "Your message could not be checked. Please try again."

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Errors maps a field name to the message shown next to it. An empty mapping means valid.
type Errors map[string]string

// Error implements error so a failed validation can travel as one.
func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range Fields() {
		if msg, ok := e[f]; ok {
			parts = append(parts, f+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

// Validator checks submissions against the contact form rules.
type Validator struct {
	validate   *validator.Validate
	minMessage int
}

// NewValidator builds a Validator; minMessage <= 0 selects DefaultMinMessageLength.
func NewValidator(minMessage int) *Validator {
	if minMessage <= 0 {
		minMessage = DefaultMinMessageLength
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("filled", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
		return emailRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("message_len", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) >= minMessage
	})

	return &Validator{validate: v, minMessage: minMessage}
}

// MinMessageLength returns the configured minimum message length.
func (v *Validator) MinMessageLength() int {
	return v.minMessage
}

// Validate returns one message per invalid field. It has no side effects.
func (v *Validator) Validate(s Submission) Errors {
	return v.collect(v.validate.Struct(s))
}

// collect turns a validator result into Errors. Anything other than field
// errors fails closed on the message field so nothing is sent.
func (v *Validator) collect(err error) Errors {
	errs := Errors{}
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs[FieldMessage] = msgUnvalidated
		return errs
	}
	for _, fe := range fieldErrs {
		if _, seen := errs[fe.Field()]; seen {
			continue
		}
		errs[fe.Field()] = v.message(fe)
	}
	return errs
}

func (v *Validator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "filled":
		return fieldLabel(fe.Field()) + " is required"
	case "simple_email":
		return "Invalid email format"
	case "message_len":
		return fmt.Sprintf("Message must be at least %d characters", v.minMessage)
	}
	return fieldLabel(fe.Field()) + " is invalid"
}

func fieldLabel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

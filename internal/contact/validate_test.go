package contact

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validSubmission() Submission {
	return Submission{
		Name:    "Sam",
		Email:   "a@b.com",
		Phone:   "123",
		Message: "hello there friend",
	}
}

func TestValidate_Scenarios(t *testing.T) {
	v := NewValidator(10)

	tests := []struct {
		name string
		in   Submission
		want Errors
	}{
		{
			name: "missing name",
			in:   Submission{Name: "", Email: "a@b.com", Phone: "123", Message: "hello there friend"},
			want: Errors{FieldName: "Name is required"},
		},
		{
			name: "bad email",
			in:   Submission{Name: "Sam", Email: "not-an-email", Phone: "123", Message: "hello there friend"},
			want: Errors{FieldEmail: "Invalid email format"},
		},
		{
			name: "short message",
			in:   Submission{Name: "Sam", Email: "a@b.com", Phone: "123", Message: "short"},
			want: Errors{FieldMessage: "Message must be at least 10 characters"},
		},
		{
			name: "everything missing",
			in:   Submission{},
			want: Errors{
				FieldName:    "Name is required",
				FieldEmail:   "Email is required",
				FieldPhone:   "Phone is required",
				FieldMessage: "Message is required",
			},
		},
		{
			name: "whitespace only counts as missing",
			in:   Submission{Name: "  ", Email: "a@b.com", Phone: "\t", Message: "hello there friend"},
			want: Errors{FieldName: "Name is required", FieldPhone: "Phone is required"},
		},
		{
			name: "valid",
			in:   validSubmission(),
			want: Errors{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Validate(tt.in))
		})
	}
}

func TestValidate_EmailPattern(t *testing.T) {
	v := NewValidator(10)

	for _, email := range []string{"a@b.co", "first.last@sub.example.org", "x+tag@y.io"} {
		s := validSubmission()
		s.Email = email
		assert.Empty(t, v.Validate(s), email)
	}

	for _, email := range []string{"a@b", "ab.com", "a b@c.com", "a@b .com", "@b.com", "a@.com x"} {
		s := validSubmission()
		s.Email = email
		assert.Equal(t, Errors{FieldEmail: "Invalid email format"}, v.Validate(s), email)
	}
}

func TestValidate_OptionalFieldsNeverRequired(t *testing.T) {
	v := NewValidator(10)

	s := validSubmission()
	s.Subject = ""
	s.Service = ""
	assert.Empty(t, v.Validate(s))

	s.Service = "anything at all"
	assert.Empty(t, v.Validate(s))
}

func TestValidate_ConfigurableMinimum(t *testing.T) {
	v := NewValidator(20)
	assert.Equal(t, 20, v.MinMessageLength())

	s := validSubmission()
	s.Message = "fifteen chars!!"
	assert.Equal(t, Errors{FieldMessage: "Message must be at least 20 characters"}, v.Validate(s))

	s.Message = strings.Repeat("x", 20)
	assert.Empty(t, v.Validate(s))

	assert.Equal(t, DefaultMinMessageLength, NewValidator(0).MinMessageLength())
}

func TestValidate_CountsRunesNotBytes(t *testing.T) {
	v := NewValidator(10)

	s := validSubmission()
	s.Message = "héllo wörld"
	assert.Empty(t, v.Validate(s))

	s.Message = "ééééé"
	assert.Contains(t, v.Validate(s), FieldMessage)
}

func TestValidate_Idempotent(t *testing.T) {
	v := NewValidator(10)

	for _, s := range []Submission{{}, validSubmission(), {Name: "x", Email: "bad"}} {
		first := v.Validate(s)
		second := v.Validate(s)
		assert.Equal(t, first, second)
	}
}

func TestErrors_Error(t *testing.T) {
	errs := Errors{FieldMessage: "Message is required", FieldName: "Name is required"}
	assert.Equal(t, "name: Name is required; message: Message is required", errs.Error())
}

func TestSubmission_SetGet(t *testing.T) {
	var s Submission
	for _, f := range Fields() {
		assert.NoError(t, s.Set(f, "v-"+f))
		got, err := s.Get(f)
		assert.NoError(t, err)
		assert.Equal(t, "v-"+f, got)
	}

	assert.ErrorIs(t, s.Set("nickname", "x"), ErrUnknownField)
	_, err := s.Get("nickname")
	assert.ErrorIs(t, err, ErrUnknownField)

	assert.False(t, s.IsEmpty())
	assert.True(t, Submission{Name: " "}.IsEmpty())
}

func TestValidate_UnexpectedErrorFailsClosed(t *testing.T) {
	v := NewValidator(10)
	errs := v.collect(errors.New("validator: unsupported input"))
	assert.Equal(t, Errors{FieldMessage: msgUnvalidated}, errs)
	assert.Empty(t, v.collect(nil))
}

package contact

import (
	"errors"
	"html"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// Request is a visitor's contact form submission.
type Request struct {
	BlockID string `json:"blockId" form:"blockId" validate:"omitempty,max=190"`
	Name    string `json:"name" form:"name" validate:"required,max=200"`
	Email   string `json:"email" form:"email" validate:"required,email,max=320"`
	Message string `json:"message" form:"message" validate:"required,max=5000"`
	Phone   string `json:"phone" form:"phone" validate:"omitempty,max=64"`
	Subject string `json:"subject" form:"subject" validate:"omitempty,max=200"`
	Company string `json:"company" form:"company" validate:"omitempty,max=200"`
}

// FieldErrors maps a field name to a human readable message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+f[field])
	}
	return "contact: invalid submission (" + strings.Join(parts, "; ") + ")"
}

var fieldLabels = map[string]string{
	"name":    "Name",
	"email":   "Email",
	"message": "Message",
	"phone":   "Phone",
	"subject": "Subject",
	"company": "Company",
	"blockId": "Block",
}

var (
	validate  = newValidator()
	sanitizer = bluemonday.StrictPolicy()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize trims every field.
func (r Request) Normalize() Request {
	return Request{
		BlockID: strings.TrimSpace(r.BlockID),
		Name:    strings.TrimSpace(r.Name),
		Email:   strings.TrimSpace(r.Email),
		Message: strings.TrimSpace(r.Message),
		Phone:   strings.TrimSpace(r.Phone),
		Subject: strings.TrimSpace(r.Subject),
		Company: strings.TrimSpace(r.Company),
	}
}

// Validate returns nil when the request may be submitted.
func Validate(request Request) FieldErrors {
	err := validate.Struct(request.Normalize())
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return FieldErrors{"form": "Invalid submission."}
	}
	fieldErrs := make(FieldErrors, len(validationErrs))
	for _, fieldErr := range validationErrs {
		label := fieldLabels[fieldErr.Field()]
		if label == "" {
			label = fieldErr.Field()
		}
		switch fieldErr.Tag() {
		case "required":
			fieldErrs[fieldErr.Field()] = label + " is required."
		case "email":
			fieldErrs[fieldErr.Field()] = "Enter a valid email address."
		case "max":
			fieldErrs[fieldErr.Field()] = label + " must be at most " + fieldErr.Param() + " characters."
		default:
			fieldErrs[fieldErr.Field()] = label + " is invalid."
		}
	}
	return fieldErrs
}

// stripMarkup removes tags and leaves plain text. Entities produced by the
// policy are decoded so templates escape the text exactly once.
func stripMarkup(value string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(value)))
}

// Sanitize strips markup from every field.
func (r Request) Sanitize() Request {
	return Request{
		BlockID: stripMarkup(r.BlockID),
		Name:    stripMarkup(r.Name),
		Email:   stripMarkup(r.Email),
		Message: stripMarkup(r.Message),
		Phone:   stripMarkup(r.Phone),
		Subject: stripMarkup(r.Subject),
		Company: stripMarkup(r.Company),
	}
}

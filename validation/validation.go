package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/stagekit/errors"
)

// FieldError is one failed check, keyed by the configuration name of the
// field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// String renders "field: message".
func (e FieldError) String() string { return e.Field + ": " + e.Message }

// invalid turns collected field errors into one INVALID_INPUT error whose
// details carry the list. It returns a nil error for an empty list.
func invalid(fields []FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	msgs := make([]string, len(fields))
	for i, f := range fields {
		msgs[i] = f.String()
	}
	appErr := errors.Validation(strings.Join(msgs, "; "))
	appErr.Details = map[string]any{"fields": fields}
	return appErr
}

var (
	structs     *validator.Validate
	structsOnce sync.Once
)

func structValidator() *validator.Validate {
	structsOnce.Do(func() {
		structs = validator.New(validator.WithRequiredStructEnabled())
		structs.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name, _, _ := strings.Cut(f.Tag.Get("yaml"), ","); name != "" && name != "-" {
				return name
			}
			return toSnakeCase(f.Name)
		})
	})
	return structs
}

// Validate checks the `validate:"..."` tags of s. Field names in the error
// are the yaml keys an operator writes.
func Validate(s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	var failed validator.ValidationErrors
	if !stderrors.As(err, &failed) {
		return errors.Validation("validation failed").WithCause(err)
	}
	fields := make([]FieldError, len(failed))
	for i, fe := range failed {
		fields[i] = FieldError{Field: fe.Field(), Message: describe(fe)}
	}
	return invalid(fields)
}

var tagMessages = map[string]string{
	"required":      "is required",
	"required_if":   "is required",
	"min":           "must be at least %s",
	"max":           "must be at most %s",
	"gte":           "must be greater than or equal to %s",
	"lte":           "must be less than or equal to %s",
	"oneof":         "must be one of: %s",
	"hostname_port": "must be a host:port address",
}

func describe(fe validator.FieldError) string {
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, fe.Param())
	}
	return msg
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Validator collects the checks that do not fit a struct tag.
type Validator struct {
	fields []FieldError
}

// New returns an empty Validator.
func New() *Validator { return &Validator{} }

// AddError records message for field.
func (v *Validator) AddError(field, message string) {
	v.fields = append(v.fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool { return len(v.fields) > 0 }

// Errors returns the recorded failures in the order they were added.
func (v *Validator) Errors() []FieldError { return v.fields }

// Validate returns the collected failures as one INVALID_INPUT error, or
// nil.
func (v *Validator) Validate() error { return invalid(v.fields) }

// Check records message for field when ok is false. The named checks below
// are built on it.
func (v *Validator) Check(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}

// Required fails when value is empty or only whitespace.
func (v *Validator) Required(field, value string) *Validator {
	return v.Check(strings.TrimSpace(value) != "", field, "is required")
}

// Positive fails when value is zero or negative.
func (v *Validator) Positive(field string, value int) *Validator {
	return v.Check(value > 0, field, fmt.Sprintf("must be positive (got: %d)", value))
}

// NonNegativeDuration fails when value is below zero.
func (v *Validator) NonNegativeDuration(field string, value time.Duration) *Validator {
	return v.Check(value >= 0, field, fmt.Sprintf("must be non-negative (got: %s)", value))
}

// OneOf fails when value is not one of allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	return v.AddErrorf(field, "must be one of: %s", strings.Join(allowed, " "))
}

// AddErrorf records a formatted message for field.
func (v *Validator) AddErrorf(field, format string, args ...any) *Validator {
	v.AddError(field, fmt.Sprintf(format, args...))
	return v
}

// Package validation builds field-level request validation that reports every failing field at once.
package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	errors "github.com/frahmantamala/chathub/internal"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{FieldName: name, Value: value}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) fail(message string, code errors.ErrorCode) *errors.AppError {
	return errors.NewValidationFieldError(fv.FieldName, message, code)
}

// rule adds a check that fails with message when bad reports true.
func (fv *FieldValidator) rule(bad func(interface{}) bool, code errors.ErrorCode, format string, args ...interface{}) *FieldValidator {
	message := fmt.Sprintf(format, append([]interface{}{fv.FieldName}, args...)...)
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if bad(value) {
			return fv.fail(message, code)
		}
		return nil
	})
	return fv
}

// stringRule is a rule over string values; empty and non-string values pass.
func (fv *FieldValidator) stringRule(bad func(string) bool, code errors.ErrorCode, format string, args ...interface{}) *FieldValidator {
	return fv.rule(func(value interface{}) bool {
		s, ok := stringValue(value)
		return ok && s != "" && bad(s)
	}, code, format, args...)
}

func (fv *FieldValidator) Required() *FieldValidator {
	return fv.rule(isMissing, errors.ErrCodeValidationFailed, "%s is required")
}

func (fv *FieldValidator) Min(min float64) *FieldValidator {
	return fv.rule(func(value interface{}) bool {
		n, ok := toFloat(value)
		return ok && n < min
	}, errors.ErrCodeOutOfRange, "%s must be at least %v", min)
}

func (fv *FieldValidator) Max(max float64) *FieldValidator {
	return fv.rule(func(value interface{}) bool {
		n, ok := toFloat(value)
		return ok && n > max
	}, errors.ErrCodeOutOfRange, "%s must not exceed %v", max)
}

// MinLength counts trimmed characters, so whitespace padding does not satisfy it.
func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	return fv.rule(func(value interface{}) bool {
		s, ok := stringValue(value)
		return ok && len(strings.TrimSpace(s)) < min
	}, errors.ErrCodeValidationFailed, "%s must be at least %d characters", min)
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	return fv.rule(func(value interface{}) bool {
		s, ok := stringValue(value)
		return ok && len(s) > max
	}, errors.ErrCodeValidationFailed, "%s must not exceed %d characters", max)
}

// OneOf accepts empty values; pair it with Required when the field is mandatory.
func (fv *FieldValidator) OneOf(allowed ...string) *FieldValidator {
	return fv.stringRule(func(s string) bool {
		for _, a := range allowed {
			if s == a {
				return false
			}
		}
		return true
	}, errors.ErrCodeInvalidValue, "%s must be one of: %s", strings.Join(allowed, ", "))
}

func (fv *FieldValidator) Email() *FieldValidator {
	return fv.stringRule(func(s string) bool {
		addr, err := mail.ParseAddress(s)
		return err != nil || addr.Address != s
	}, errors.ErrCodeInvalidEmail, "%s must be a valid email address")
}

func (fv *FieldValidator) URL() *FieldValidator {
	return fv.stringRule(func(s string) bool {
		u, err := url.Parse(s)
		return err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == ""
	}, errors.ErrCodeInvalidValue, "%s must be a valid http(s) URL")
}

var hostnamePattern = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,63}$`)

// Hostname accepts a lowercase DNS name such as chat.example.com, without scheme or port.
func (fv *FieldValidator) Hostname() *FieldValidator {
	return fv.stringRule(func(s string) bool {
		return len(s) > 253 || !hostnamePattern.MatchString(s)
	}, errors.ErrCodeInvalidValue, "%s must be a valid hostname")
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

// Validate runs every field and keeps the first failure of each.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var failures []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			err := validator(field.Value)
			if err == nil {
				continue
			}
			if details, ok := err.Details.(errors.ValidationErrors); ok {
				failures = append(failures, details.Errors...)
			} else {
				failures = append(failures, errors.ValidationError{
					Field:   field.FieldName,
					Message: err.Message,
					Code:    string(err.Code),
				})
			}
			break
		}
	}

	if len(failures) == 0 {
		return nil
	}
	return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
		WithDetails(errors.ValidationErrors{Errors: failures})
}

func isMissing(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case *string:
		return v == nil || strings.TrimSpace(*v) == ""
	case []string:
		return len(v) == 0
	}
	return false
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case *int:
		if v != nil {
			return float64(*v), true
		}
	case *float64:
		if v != nil {
			return *v, true
		}
	}
	return 0, false
}

func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v != nil {
			return *v, true
		}
	}
	return "", false
}

package note

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// ValidationError reports field-level form errors keyed by json field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, e.Fields[name])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks form values before any network call.
// Returns nil or a *ValidationError.
func Validate(v Values) error {
	err := formValidator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate note: %w", err)
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = message(fe.Field(), fe.Tag())
	}
	return out
}

func message(field, tag string) string {
	switch field {
	case "title":
		switch tag {
		case "required":
			return "Title is required"
		case "min":
			return "Title must be at least 3 characters"
		case "max":
			return "Title is too long"
		}
	case "content":
		if tag == "max" {
			return "Content is too long. Max 500 characters"
		}
	case "tag":
		if tag == "required" {
			return "Tag is required"
		}
		return "Invalid tag"
	}
	return fmt.Sprintf("%s failed %s", field, tag)
}

// CanSave evaluates whether form values may be sent to the service.
func CanSave(v Values) GuardResult {
	if err := Validate(v); err != nil {
		return GuardResult{Allowed: false, Reason: err.Error()}
	}
	return GuardResult{Allowed: true}
}

// CanUpdateContext provides context for the edit submission guard.
type CanUpdateContext struct {
	NoteID string
}

// CanUpdate evaluates whether an edit may be sent.
// Rules:
// - Note ID must be known
func CanUpdate(ctx CanUpdateContext) GuardResult {
	if ctx.NoteID == "" {
		return GuardResult{Allowed: false, Reason: "note id is required"}
	}
	return GuardResult{Allowed: true}
}

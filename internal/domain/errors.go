package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind separates user-correctable input problems from upstream defects
// in data produced by the rules engine.
type ErrorKind int

const (
	// KindInput marks intake data the user can fix (Home, Location, Case, upload).
	KindInput ErrorKind = iota + 1
	// KindContract marks data received from the rules engine that breaks the
	// agreed schema. The remediation is upstream, not with the user.
	KindContract
)

func (k ErrorKind) String() string {
	switch k {
	case KindInput:
		return "input_error"
	case KindContract:
		return "contract_violation"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidInput matches every ValidationError of KindInput.
	ErrInvalidInput = errors.New("invalid input")
	// ErrContractViolation matches every ValidationError of KindContract.
	ErrContractViolation = errors.New("rules engine contract violation")
	// ErrUploadRequired is the single rejection reason for the energy use upload field.
	ErrUploadRequired = errors.New(UploadRequiredMessage)
)

// UploadRequiredMessage is shown for every rejected upload value, whatever the cause.
const UploadRequiredMessage = "Energy Use Profile CSV/XML from Energy Utility company is required"

// FieldError is one failed check at a location inside the validated document.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`

	// Err optionally names the failure so callers can match it with errors.Is.
	Err error `json:"-"`
}

func (e FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

func (e FieldError) Unwrap() error { return e.Err }

// ValidationError collects every FieldError found while validating one document.
type ValidationError struct {
	Kind   ErrorKind
	Schema SchemaName
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%s: %s (%d): %s", e.Schema, e.Kind, len(e.Fields), strings.Join(msgs, "; "))
}

// Unwrap exposes the kind sentinel and each field error to errors.Is / errors.As.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Fields)+1)
	switch e.Kind {
	case KindInput:
		errs = append(errs, ErrInvalidInput)
	case KindContract:
		errs = append(errs, ErrContractViolation)
	}
	for _, f := range e.Fields {
		errs = append(errs, f)
	}
	return errs
}

// AsValidationError extracts a *ValidationError from err, if present.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// issues accumulates field errors under a path prefix. Child scopes share the
// parent's list.
type issues struct {
	prefix string
	list   *[]FieldError
}

func newIssues() issues {
	return issues{list: &[]FieldError{}}
}

func (is issues) at(name string) issues {
	return issues{prefix: joinPath(is.prefix, name), list: is.list}
}

func (is issues) index(i int) issues {
	return issues{prefix: fmt.Sprintf("%s[%d]", is.prefix, i), list: is.list}
}

func (is issues) add(name, msg string) {
	*is.list = append(*is.list, FieldError{Path: joinPath(is.prefix, name), Message: msg})
}

func (is issues) empty() bool { return len(*is.list) == 0 }

// result returns nil when nothing was recorded.
func (is issues) result(kind ErrorKind, schema SchemaName) error {
	if is.empty() {
		return nil
	}
	return &ValidationError{Kind: kind, Schema: schema, Fields: *is.list}
}

func joinPath(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	default:
		return prefix + "." + name
	}
}

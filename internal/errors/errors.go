// Package errors defines the typed failures surfaced while preparing a
// calculation for submission. Every failure is synchronous and carries a
// Kind for coarse matching and a Code for exact matching, so the submission
// layer can decide without string inspection whether an input was missing,
// malformed, or asked for an unsupported feature.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind groups preparation errors into the categories the submission layer
// dispatches on.
type Kind string

const (
	KindMissingInput  Kind = "missing_input"
	KindTypeMismatch  Kind = "type_mismatch"
	KindReservedKey   Kind = "reserved_key"
	KindUnrecognized  Kind = "unrecognized"
	KindUnsupported   Kind = "unsupported"
	KindUniqueness    Kind = "uniqueness"
	KindHostMismatch  Kind = "host_mismatch"
	KindAlreadyLinked Kind = "already_linked"
	KindValidation    Kind = "validation"
	KindConfig        Kind = "config"
)

// Error codes. Codes are stable identifiers; messages are not.
const (
	CodeMissingInput        = "ERR_MISSING_INPUT"
	CodeTypeMismatch        = "ERR_TYPE_MISMATCH"
	CodeReservedKey         = "ERR_RESERVED_KEY"
	CodeUnrecognizedSection = "ERR_UNRECOGNIZED_SECTION"
	CodeUnrecognizedSetting = "ERR_UNRECOGNIZED_SETTING"
	CodeQpointsExplicit     = "ERR_QPOINTS_EXPLICIT"
	CodeQpointsOffset       = "ERR_QPOINTS_OFFSET"
	CodeParentNotFound      = "ERR_PARENT_NOT_FOUND"
	CodeParentAmbiguous     = "ERR_PARENT_AMBIGUOUS"
	CodeHostMismatch        = "ERR_HOST_MISMATCH"
	CodeAlreadyLinked       = "ERR_ALREADY_LINKED"
	CodeKeyCollision        = "ERR_KEY_COLLISION"
	CodeNoOutputFolder      = "ERR_NO_OUTPUT_FOLDER"
	CodeConfigInvalid       = "ERR_CONFIG_INVALID"
	CodeValidationFailed    = "ERR_VALIDATION_FAILED"
)

// PrepError is the structured error type returned by the preparation core.
type PrepError struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
	// Section and Key locate the error inside the parameter tree when the
	// failure concerns a specific namelist entry.
	Section string
	Key     string
	Context map[string]any
}

// Error implements the error interface.
func (e *PrepError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Section != "" {
		loc := "section:" + e.Section
		if e.Key != "" {
			loc += " key:" + e.Key
		}
		parts = append(parts, loc)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *PrepError) Unwrap() error {
	return e.Cause
}

// Is matches on Kind and, when the target carries one, Code. This lets
// callers write errors.Is(err, &PrepError{Kind: KindUnsupported}) to match a
// whole category, or include the Code to match one exact failure.
func (e *PrepError) Is(target error) bool {
	var t *PrepError
	if !errors.As(target, &t) {
		return false
	}
	if t.Code != "" {
		return e.Kind == t.Kind && e.Code == t.Code
	}

	return e.Kind == t.Kind
}

// WithContext attaches an auxiliary value to the error.
func (e *PrepError) WithContext(key string, value any) *PrepError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value

	return e
}

// WithCause attaches an underlying cause.
func (e *PrepError) WithCause(cause error) *PrepError {
	e.Cause = cause

	return e
}

// Constructors, one per failure the preparation core can produce.

// MissingInput reports a required input node that was not supplied.
func MissingInput(name string) *PrepError {
	return &PrepError{
		Kind:    KindMissingInput,
		Code:    CodeMissingInput,
		Message: "no " + name + " specified for this calculation",
	}
}

// TypeMismatch reports an input node of the wrong concrete type.
func TypeMismatch(name, want string, got any) *PrepError {
	return &PrepError{
		Kind:    KindTypeMismatch,
		Code:    CodeTypeMismatch,
		Message: fmt.Sprintf("%s is not of type %s (got %T)", name, want, got),
	}
}

// UnsupportedValue reports a namelist entry whose value is neither a scalar
// nor a list of scalars.
func UnsupportedValue(section, key string, value any) *PrepError {
	return &PrepError{
		Kind:    KindTypeMismatch,
		Code:    CodeTypeMismatch,
		Message: fmt.Sprintf("value of '%s' in namelist '%s' is not a scalar or list of scalars (got %T)", key, section, value),
		Section: section,
		Key:     key,
	}
}

// ReservedKeyConflict reports a plugin-computed key found in user input.
func ReservedKeyConflict(section, key string) *PrepError {
	return &PrepError{
		Kind:    KindReservedKey,
		Code:    CodeReservedKey,
		Message: fmt.Sprintf("explicit definition of the '%s' flag in the '%s' namelist is not allowed", key, section),
		Section: section,
		Key:     key,
	}
}

// UnrecognizedSections reports namelist sections left over after every
// compulsory section has been consumed.
func UnrecognizedSections(names []string) *PrepError {
	return &PrepError{
		Kind:    KindUnrecognized,
		Code:    CodeUnrecognizedSection,
		Message: "the following specified namelists are invalid: " + strings.Join(names, ","),
	}
}

// UnrecognizedSettings reports settings keys left over after every recognized
// key has been consumed.
func UnrecognizedSettings(names []string) *PrepError {
	return &PrepError{
		Kind:    KindUnrecognized,
		Code:    CodeUnrecognizedSetting,
		Message: "the following keys in the settings node are unrecognized: " + strings.Join(names, ","),
	}
}

// ExplicitQpoints reports a q-point specification given as an explicit list.
// Only uniform meshes are supported.
func ExplicitQpoints() *PrepError {
	return &PrepError{
		Kind:    KindUnsupported,
		Code:    CodeQpointsExplicit,
		Message: "support for explicit q-points is not implemented, only uniform meshes",
	}
}

// NonZeroQpointOffset reports a uniform mesh whose offset is not exactly zero.
// Kept distinct from ExplicitQpoints so callers can tell the two apart.
func NonZeroQpointOffset(offset [3]float64) *PrepError {
	return &PrepError{
		Kind:    KindUnsupported,
		Code:    CodeQpointsOffset,
		Message: fmt.Sprintf("support for q-point meshes with non-zero offsets is not implemented (offset %v)", offset),
	}
}

// ParentNotFound reports a remote folder with no producing calculation.
func ParentNotFound(folder string) *PrepError {
	return &PrepError{
		Kind:    KindUniqueness,
		Code:    CodeParentNotFound,
		Message: "no producing calculation found for parent folder " + folder,
	}
}

// ParentAmbiguous reports a remote folder with more than one producing
// calculation.
func ParentAmbiguous(folder string, count int) *PrepError {
	return &PrepError{
		Kind:    KindUniqueness,
		Code:    CodeParentAmbiguous,
		Message: fmt.Sprintf("parent folder %s has %d producing calculations, expected exactly one", folder, count),
	}
}

// RemoteOutputMissing reports a parent calculation with no remote folder
// among its outputs.
func RemoteOutputMissing(calc string) *PrepError {
	return &PrepError{
		Kind:    KindUniqueness,
		Code:    CodeParentNotFound,
		Message: "parent calculation " + calc + " does not have a remote folder output",
	}
}

// RemoteOutputAmbiguous reports a parent calculation with more than one
// remote folder output.
func RemoteOutputAmbiguous(calc string, count int) *PrepError {
	return &PrepError{
		Kind:    KindUniqueness,
		Code:    CodeParentAmbiguous,
		Message: fmt.Sprintf("parent calculation %s has %d remote folder outputs, expected exactly one", calc, count),
	}
}

// HostMismatch reports a parent calculation assigned to a different computer
// than the current calculation.
func HostMismatch(current, parent string) *PrepError {
	return &PrepError{
		Kind:    KindHostMismatch,
		Code:    CodeHostMismatch,
		Message: fmt.Sprintf("calculation has to run on the same computer as its parent: current %s, parent %s", current, parent),
	}
}

// AlreadyLinked reports an attempt to set a second parent remote folder on a
// calculation that already has one.
func AlreadyLinked(calc string) *PrepError {
	return &PrepError{
		Kind:    KindAlreadyLinked,
		Code:    CodeAlreadyLinked,
		Message: "a parent remote folder link was already set for calculation " + calc,
	}
}

// KeyCollision reports two distinct keys folding to the same canonical case.
func KeyCollision(mapping, key string) *PrepError {
	return &PrepError{
		Kind:    KindValidation,
		Code:    CodeKeyCollision,
		Message: fmt.Sprintf("case folding the keys of %q produced a duplicate key %q", mapping, key),
	}
}

// NoOutputFolder reports a parent calculation with no default output
// subfolder to stage from.
func NoOutputFolder(calc string) *PrepError {
	return &PrepError{
		Kind:    KindConfig,
		Code:    CodeNoOutputFolder,
		Message: "parent calculation " + calc + " does not define a default output subfolder",
	}
}

// Validation reports a generic input-validation failure.
func Validation(message string) *PrepError {
	return &PrepError{
		Kind:    KindValidation,
		Code:    CodeValidationFailed,
		Message: message,
	}
}

// Config reports an invalid tool configuration.
func Config(message string) *PrepError {
	return &PrepError{
		Kind:    KindConfig,
		Code:    CodeConfigInvalid,
		Message: message,
	}
}

// Predicates used by callers and tests.

// IsKind reports whether err is a PrepError of the given kind.
func IsKind(err error, kind Kind) bool {
	var pe *PrepError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}

	return false
}

// HasCode reports whether err is a PrepError carrying the given code.
func HasCode(err error, code string) bool {
	var pe *PrepError
	if errors.As(err, &pe) {
		return pe.Code == code
	}

	return false
}

// CodeOf returns the code of err, or the empty string when err is not a
// PrepError.
func CodeOf(err error) string {
	var pe *PrepError
	if errors.As(err, &pe) {
		return pe.Code
	}

	return ""
}

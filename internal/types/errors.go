package types

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaMismatch marks a reference to a column the active dataset does not have.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrUnknownVariant marks a dataset identifier that is not Large or Reduced.
	ErrUnknownVariant = errors.New("unknown dataset variant")
	// ErrInvalidParameter marks a malformed query parameter.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Error carries a machine code and a message safe to show to the user.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage returns the message without internal detail.
func (e *Error) UserMessage() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewSchemaMismatch reports that column is missing under variant v.
func NewSchemaMismatch(column string, v Variant) error {
	return &Error{
		Code:    "SCHEMA_MISMATCH",
		Message: fmt.Sprintf("column %q is not available in the %s dataset", column, v),
		Err:     ErrSchemaMismatch,
	}
}

// NewUnknownVariant reports an unrecognized dataset identifier.
func NewUnknownVariant(id string) error {
	return &Error{
		Code:    "UNKNOWN_VARIANT",
		Message: fmt.Sprintf("unknown dataset %q, use large or reduced", id),
		Err:     ErrUnknownVariant,
	}
}

// NewInvalidParameter reports a parameter value that cannot be parsed.
func NewInvalidParameter(name, value string) error {
	return &Error{
		Code:    "INVALID_PARAMETER",
		Message: fmt.Sprintf("invalid value %q for %s", value, name),
		Err:     ErrInvalidParameter,
	}
}

// IsSchemaMismatch reports whether err is a schema mismatch.
func IsSchemaMismatch(err error) bool {
	return errors.Is(err, ErrSchemaMismatch)
}

// IsUnknownVariant reports whether err is an unknown variant error.
func IsUnknownVariant(err error) bool {
	return errors.Is(err, ErrUnknownVariant)
}

// IsInvalidParameter reports whether err is a malformed parameter.
func IsInvalidParameter(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

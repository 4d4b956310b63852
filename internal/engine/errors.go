package engine

import (
	"errors"
	"fmt"
)

// Kind classifies why a lifecycle transition was refused. Validation
// kinds map to caller mistakes, eligibility kinds to time windows and
// resource limits; either way no state was changed.
type Kind uint8

const (
	Unknown Kind = iota
	Invalid
	Unauthorized
	PoolEmpty
	QuotaExceeded
	CooldownActive
	NoAssignment
	DeadlinePassed
	Internal
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Unknown:
		return "Unknown"
	case Invalid:
		return "Invalid"
	case Unauthorized:
		return "Unauthorized"
	case PoolEmpty:
		return "PoolEmpty"
	case QuotaExceeded:
		return "QuotaExceeded"
	case CooldownActive:
		return "CooldownActive"
	case NoAssignment:
		return "NoAssignment"
	case DeadlinePassed:
		return "DeadlinePassed"
	case Internal:
		return "Internal"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Error carries the operation, the refusal kind and the caller-facing
// reason.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// E wraps err with an operation and kind. Returns nil when err is nil.
func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the kind from err, Unknown when err is not an Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Reason returns the caller-facing reason string of err.
func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

package calc

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies calculator errors.
type Kind int

const (
	// Unreachable marks an outcome that a correct program never produces:
	// a stateless calculation that disagrees with its expectation, or an
	// interrupted wait. The scenario aborts.
	Unreachable Kind = iota + 1

	// ExpectedRaceMismatch marks a shared state calculation that read a
	// value set by another worker. It is logged and counted.
	ExpectedRaceMismatch
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case ExpectedRaceMismatch:
		return "expected race mismatch"
	default:
		return "unknown"
	}
}

// Error describes a failed calculation.
//
// Errors returned by the calculators carry a stack trace; print them with
// %+v to see where the calculation failed.
//
// Thread Safety: Immutable after creation, safe for concurrent use.
type Error struct {
	Kind     Kind   // Classification
	Label    string // Worker label
	Expected int    // Caller's expectation
	Actual   int    // Computed result (zero when Err is set)
	Err      error  // Underlying cause, e.g. context.Canceled
}

// Error implements the error interface.
//
// Format: "<label> -> <message>"
func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s -> interrupted while sleeping: %v", e.Label, e.Err)
	case e.Kind == Unreachable:
		return fmt.Sprintf("%s -> Wrong calculation, expected: %d but was: %d THIS CANNOT HAPPEN",
			e.Label, e.Expected, e.Actual)
	default:
		return fmt.Sprintf("%s -> Wrong calculation, expected: %d but was: %d",
			e.Label, e.Expected, e.Actual)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

func unreachable(label string, expected, actual int) error {
	return errors.WithStack(&Error{Kind: Unreachable, Label: label, Expected: expected, Actual: actual})
}

func interrupted(label string, cause error) error {
	return errors.WithStack(&Error{Kind: Unreachable, Label: label, Err: cause})
}

func raceMismatch(label string, expected, actual int) error {
	return errors.WithStack(&Error{Kind: ExpectedRaceMismatch, Label: label, Expected: expected, Actual: actual})
}

// KindOf returns the kind of the first *Error in err's chain, or zero.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsUnreachable reports whether err is a fatal calculator error.
func IsUnreachable(err error) bool { return KindOf(err) == Unreachable }

// IsRaceMismatch reports whether err is a recoverable shared state mismatch.
func IsRaceMismatch(err error) bool { return KindOf(err) == ExpectedRaceMismatch }

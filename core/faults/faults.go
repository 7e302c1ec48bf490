package faults

import (
	"errors"
	"fmt"
)

var (
	// ErrStructuralViolation marks a broken registry invariant. Processing of the
	// affected unit (region or diff run) must stop.
	ErrStructuralViolation = errors.New("structural violation")

	// ErrSourceUnavailable marks an input that could not be opened or read.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// Violation describes a failed structural check.
type Violation struct {
	// Check is a short machine-friendly name of the failed check (e.g. "hierarchy_root").
	Check string
	// Detail is a human-readable description including offending identifiers.
	Detail string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrStructuralViolation, v.Check, v.Detail)
}

// Is allows errors.Is(err, ErrStructuralViolation).
func (v *Violation) Is(target error) bool {
	return target == ErrStructuralViolation
}

// Structural builds a Violation for the named check.
func Structural(check, format string, args ...any) error {
	return &Violation{Check: check, Detail: fmt.Sprintf(format, args...)}
}

// Unavailable wraps an I/O failure so that errors.Is(err, ErrSourceUnavailable) holds
// while the original cause stays reachable through errors.Unwrap chains.
func Unavailable(what string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrSourceUnavailable, what)
	}
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, what, err)
}

// IsStructural reports whether err is (or wraps) a structural violation.
func IsStructural(err error) bool {
	return errors.Is(err, ErrStructuralViolation)
}

package optimization

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig is wrapped by every optimizer parameter validation failure.
	ErrInvalidConfig = errors.New("invalid optimizer configuration")
	// ErrInvalidProblem is wrapped by every problem validation failure.
	ErrInvalidProblem = errors.New("invalid problem definition")
	// ErrEvaluation is wrapped when Problem.Evaluate fails or returns malformed vectors.
	ErrEvaluation = errors.New("problem evaluation failed")
	// ErrInvariantViolation marks a logically impossible optimizer state.
	ErrInvariantViolation = errors.New("optimizer invariant violated")
)

// Error represents an optimization error with context
// that can be wrapped with additional information.
type Error struct {
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Component is the component where the error occurred.
	Component string
	// Err is the underlying error that triggered this one, if any.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	if e.Component != "" && e.Op != "" {
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	} else if e.Component != "" {
		prefix = e.Component
	} else if e.Op != "" {
		prefix = e.Op
	}

	if e.Err != nil {
		if prefix != "" {
			return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent adds component context to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// WrapError wraps an existing error with additional context.
// If err is nil, WrapError returns nil.
func WrapError(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: message,
		Err:     err,
	}
}

// WrapErrorf wraps an existing error with additional formatted context.
// If err is nil, WrapErrorf returns nil.
func WrapErrorf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// IsOptimizationError checks if an error is, or wraps, an Error.
// If it is, it returns the outermost such error and true.
func IsOptimizationError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// DominanceViolation reports a dominance classification that cannot happen
// under a strict partial order: both points dominate each other.
// It carries the offending points and the archive for diagnosis.
type DominanceViolation struct {
	X           *Solution
	Y           *Solution
	Archive     []*Solution
	XDominatesY bool
	YDominatesX bool
}

func (v *DominanceViolation) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "impossible dominance relation: x<y=%t y<x=%t\nx: %v\ny: %v", v.XDominatesY, v.YDominatesX, v.X, v.Y)
	if len(v.Archive) > 0 {
		b.WriteString("\narchive:")
		for _, s := range v.Archive {
			b.WriteString("\n  ")
			b.WriteString(s.String())
		}
	}
	return b.String()
}

// Unwrap lets errors.Is match ErrInvariantViolation.
func (v *DominanceViolation) Unwrap() error {
	return ErrInvariantViolation
}

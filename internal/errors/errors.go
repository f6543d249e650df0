// Package errors provides stack-carrying errors for the AMOSA service and CLI.
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// Error is an error annotated with where it happened. The stack is captured
// once, where the first *Error of a chain is created; outer layers share it.
type Error struct {
	Err       error
	Message   string
	Operation string
	Component string
	Stack     []string
}

// Error renders "component/operation: message: cause", leaving out the
// parts that are empty.
func (e *Error) Error() string {
	parts := make([]string, 0, 3)

	switch {
	case e.Component != "" && e.Operation != "":
		parts = append(parts, e.Component+"/"+e.Operation)
	case e.Component != "":
		parts = append(parts, e.Component)
	case e.Operation != "":
		parts = append(parts, e.Operation)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithOperation records the operation that failed.
func (e *Error) WithOperation(op string) *Error {
	e.Operation = op
	return e
}

// WithComponent records the package or subsystem that failed.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// StackTrace returns the frames captured when the chain started.
func (e *Error) StackTrace() []string {
	return e.Stack
}

// Fields returns the annotations as structured log fields.
func (e *Error) Fields() map[string]interface{} {
	fields := map[string]interface{}{"error": e.Error()}
	if e.Component != "" {
		fields["component"] = e.Component
	}
	if e.Operation != "" {
		fields["operation"] = e.Operation
	}
	if len(e.Stack) > 0 {
		fields["stack"] = strings.Join(e.Stack, "\n")
	}
	return fields
}

// New creates an error with a message.
func New(msg string) *Error {
	return &Error{Message: msg, Stack: callers()}
}

// Errorf creates an error with a formatted message.
func Errorf(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Stack: callers()}
}

// Wrap adds a layer with msg on top of err. It returns nil for a nil err.
func Wrap(err error, msg string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Err: err, Message: msg, Stack: stackOf(err)}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Err: err, Message: fmt.Sprintf(format, args...), Stack: stackOf(err)}
}

// stackOf reuses the stack of the innermost *Error in err's chain or, when
// there is none, captures the caller's.
func stackOf(err error) []string {
	var stack []string
	for cur := err; cur != nil; cur = stderrors.Unwrap(cur) {
		if e, ok := cur.(*Error); ok && e.Stack != nil {
			stack = e.Stack
		}
	}
	if stack == nil {
		stack = callers()
	}
	return stack
}

func callers() []string {
	const depth = 32
	var pcs [depth]uintptr
	// Skip runtime.Callers, callers and the constructor
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	stack := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") && !strings.Contains(frame.File, "internal/errors") {
			stack = append(stack, fmt.Sprintf("%s\n\t%s:%d", frame.Function, frame.File, frame.Line))
		}
		if !more {
			break
		}
	}
	return stack
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	if err == nil || target == nil {
		return false
	}
	return stderrors.As(err, target)
}

// Component returns the component of the outermost *Error in err's chain
// that has one, or "".
func Component(err error) string {
	for cur := err; cur != nil; cur = stderrors.Unwrap(cur) {
		if e, ok := cur.(*Error); ok && e.Component != "" {
			return e.Component
		}
	}
	return ""
}

package vm

import "fmt"

// ErrorKind classifies catchable runtime errors.
type ErrorKind int

const (
	MessageNotUnderstood ErrorKind = iota
	PrimitiveFailure
	DeadContextReturn
	StackOverflow
)

// String returns the kind's name as used in diagnostics and handler
// kind symbols.
func (k ErrorKind) String() string {
	switch k {
	case MessageNotUnderstood:
		return "MessageNotUnderstood"
	case PrimitiveFailure:
		return "PrimitiveFailure"
	case DeadContextReturn:
		return "DeadContextReturn"
	case StackOverflow:
		return "StackOverflow"
	default:
		return "UnknownError"
	}
}

// RuntimeError is a language-level error. It travels as a panic value
// and is either caught by an on:do: handler or surfaces from Run as a
// Go error. StackOverflow is a RuntimeError but handlers never see
// it: it always unwinds to the entry frame.
type RuntimeError struct {
	Kind          ErrorKind
	Selector      string
	ReceiverClass string
	Message       string
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("%s: %s (receiver: %s, selector: #%s)",
			e.Kind, e.Message, e.ReceiverClass, e.Selector)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Catchable reports whether an on:do: handler may intercept the error.
func (e *RuntimeError) Catchable() bool {
	return e.Kind != StackOverflow
}

// InternalError reports a corrupt VM state: bad bytecode, an invalid
// literal index, a malformed allocation. It is never caught below the
// top level.
type InternalError struct {
	Message string
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	return "internal: " + e.Message
}

// internalf panics with an InternalError.
func internalf(format string, args ...any) {
	panic(&InternalError{Message: fmt.Sprintf(format, args...)})
}

// ExitRequest carries System>>exit: through the interpreter so the
// host decides how to terminate. Handlers never catch it.
type ExitRequest struct {
	Code int
}

// Error implements the error interface.
func (e *ExitRequest) Error() string {
	return fmt.Sprintf("exit requested with code %d", e.Code)
}

// NonLocalReturn unwinds a block activation to its home method frame.
// It travels as a panic value and is recovered by the home frame's
// activation.
type NonLocalReturn struct {
	Value Value
	Home  *Frame
}

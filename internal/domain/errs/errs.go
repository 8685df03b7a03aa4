// Package errs carries the lifecycle engine's tagged errors. Every error the
// engine returns is an *Error whose Kind callers switch on; causes stay
// reachable through errors.Is / errors.As.
package errs

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	Unknown Kind = iota
	NotFound
	IllegalTransition
	TerminalState
	ConditionsUnsatisfied
	MissingReason
	IllegalDeletion
	ValidationFailure
	Conflict
)

var kindNames = map[Kind]string{
	Unknown:               "unknown",
	NotFound:              "not found",
	IllegalTransition:     "illegal transition",
	TerminalState:         "terminal state",
	ConditionsUnsatisfied: "conditions unsatisfied",
	MissingReason:         "missing reason",
	IllegalDeletion:       "illegal deletion",
	ValidationFailure:     "validation failure",
	Conflict:              "conflict",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Err == nil:
		return e.Kind.String()
	case e.Msg == "":
		return e.Kind.String() + ": " + e.Err.Error()
	case e.Err == nil:
		return e.Msg
	default:
		return e.Msg + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the per-kind sentinels below, so errors.Is(err, ErrNotFound)
// holds for any NotFound error regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Msg != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound              = &Error{Kind: NotFound}
	ErrIllegalTransition     = &Error{Kind: IllegalTransition}
	ErrTerminalState         = &Error{Kind: TerminalState}
	ErrConditionsUnsatisfied = &Error{Kind: ConditionsUnsatisfied}
	ErrMissingReason         = &Error{Kind: MissingReason}
	ErrIllegalDeletion       = &Error{Kind: IllegalDeletion}
	ErrValidation            = &Error{Kind: ValidationFailure}
	ErrConflict              = &Error{Kind: Conflict}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags err with kind. A nil err yields nil.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Has reports whether err is tagged with kind anywhere in its chain.
func Has(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

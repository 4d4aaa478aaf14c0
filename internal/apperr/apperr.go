// Package apperr defines the error taxonomy shared by every layer.
//
// Each error carries a Kind so callers can branch with errors.Is:
//
//	if errors.Is(err, apperr.DuplicateKey) {
//	    // regenerate the id and retry
//	}
//
// Validation errors render as their bare message so the text can be shown
// to the user unchanged.
package apperr

import "errors"

// Kind classifies an error. Kind itself implements error so it can be used
// as an errors.Is target.
type Kind uint8

const (
	// Unknown is returned by KindOf for errors outside the taxonomy.
	Unknown Kind = iota
	// Validation is a single-field rule violation or business precondition.
	Validation
	// DuplicateKey is an identifier collision on create.
	DuplicateKey
	// Persistence is any other store-level failure.
	Persistence
	// InvalidArgument is programming-level misuse, e.g. an unsupported sort field.
	InvalidArgument
	// IO is a file-system failure during CSV read or write.
	IO
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case DuplicateKey:
		return "duplicate_key"
	case Persistence:
		return "persistence"
	case InvalidArgument:
		return "invalid_argument"
	case IO:
		return "io"
	default:
		return "unknown"
	}
}

func (k Kind) Error() string {
	return k.String() + " error"
}

// Error is the concrete error type used across the application.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "sqlite.CreateStudent"
	Msg  string // human-readable message
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New returns an error of the given kind without an underlying cause.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap returns an error of the given kind wrapping err.
func Wrap(kind Kind, op, msg string, err error) error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// Invalid returns a Validation error with msg as its whole text.
func Invalid(msg string) error {
	return &Error{Kind: Validation, Msg: msg}
}

// KindOf returns the Kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

package dbapi

import (
	"errors"
	"fmt"

	"github.com/tomyedwab/sqlite-dbapi/engine"
	"github.com/tomyedwab/sqlite-dbapi/types"
)

// Kind classifies an Error the way the standard client interface does.
type Kind int

const (
	// KindBase is the root of every non-warning error. It is only used to
	// match with errors.Is.
	KindBase Kind = iota
	KindWarning
	KindInterface
	KindDatabase
	KindData
	KindOperational
	KindIntegrity
	KindInternal
	KindProgramming
	KindNotSupported
)

var kindNames = map[Kind]string{
	KindBase:         "Error",
	KindWarning:      "Warning",
	KindInterface:    "InterfaceError",
	KindDatabase:     "DatabaseError",
	KindData:         "DataError",
	KindOperational:  "OperationalError",
	KindIntegrity:    "IntegrityError",
	KindInternal:     "InternalError",
	KindProgramming:  "ProgrammingError",
	KindNotSupported: "NotSupportedError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// parent returns the kind k specializes.
func (k Kind) parent() (Kind, bool) {
	switch k {
	case KindInterface, KindDatabase:
		return KindBase, true
	case KindData, KindOperational, KindIntegrity, KindInternal, KindProgramming, KindNotSupported:
		return KindDatabase, true
	}
	return 0, false
}

// Error is returned by every operation in this package.
type Error struct {
	Kind Kind
	Msg  string
	// Err is the underlying cause, if any. Statements rejected by the engine
	// do not keep one: their message is the whole story.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel errors below against e's kind and every kind it
// specializes, so a ProgrammingError is also a DatabaseError and an Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Msg != "" || t.Err != nil {
		return false
	}
	for k, more := e.Kind, true; more; k, more = k.parent() {
		if k == t.Kind {
			return true
		}
	}
	return false
}

var (
	ErrBase         = &Error{Kind: KindBase}
	ErrWarning      = &Error{Kind: KindWarning}
	ErrInterface    = &Error{Kind: KindInterface}
	ErrDatabase     = &Error{Kind: KindDatabase}
	ErrData         = &Error{Kind: KindData}
	ErrOperational  = &Error{Kind: KindOperational}
	ErrIntegrity    = &Error{Kind: KindIntegrity}
	ErrInternal     = &Error{Kind: KindInternal}
	ErrProgramming  = &Error{Kind: KindProgramming}
	ErrNotSupported = &Error{Kind: KindNotSupported}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// engineError maps a failure reported by the native engine. Rejected
// statements become programming errors carrying the engine's message;
// everything else is operational and keeps the cause.
func engineError(op string, err error) error {
	if err == nil {
		return nil
	}
	if msg, ok := engine.SQLErrorMessage(err); ok {
		return &Error{Kind: KindProgramming, Msg: msg}
	}
	var convErr *types.ConversionError
	if errors.As(err, &convErr) {
		return &Error{Kind: KindData, Msg: op, Err: err}
	}
	return &Error{Kind: KindOperational, Msg: op, Err: err}
}

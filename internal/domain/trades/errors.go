package trades

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by the Service matches exactly one of
// these through errors.Is, except unexpected storage failures.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidState     = errors.New("invalid state")
	ErrConflict         = errors.New("conflict")
)

// Error describes a failed trade operation.
type Error struct {
	Kind       error
	Op         string
	TradeID    string
	InstanceID string
	Status     Status
	Msg        string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Kind != nil:
		b.WriteString(e.Kind.Error())
	default:
		b.WriteString("trade error")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind error, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) withTrade(id string) *Error {
	e.TradeID = id
	return e
}

func (e *Error) withInstance(id string) *Error {
	e.InstanceID = id
	return e
}

func (e *Error) withStatus(s Status) *Error {
	e.Status = s
	return e
}

// KindOf reports which kind err belongs to, or nil for unclassified failures.
func KindOf(err error) error {
	for _, kind := range []error{ErrNotFound, ErrPermissionDenied, ErrInvalidArgument, ErrInvalidState, ErrConflict} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// withOp stamps op on domain errors coming back from a store and wraps
// anything else as an internal failure.
func withOp(op string, err error, action string) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		if te.Op == "" {
			te.Op = op
		}
		return te
	}
	if kind := KindOf(err); kind != nil {
		return &Error{Kind: kind, Op: op, Err: err}
	}
	return fmt.Errorf("%s: failed to %s: %w", op, action, err)
}

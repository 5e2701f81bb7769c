package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/api/googleapi"
)

// Kind classifies the outcome of a spreadsheet operation.
type Kind int

const (
	KindUnexpected Kind = iota
	KindInvalidArgument
	KindNotFound
	KindConflict
	KindRemote
	KindTransport
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRemote:
		return "remote"
	case KindTransport:
		return "transport"
	case KindConfig:
		return "config"
	default:
		return "unexpected"
	}
}

// Error is returned at every operation boundary of the package.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

// NewError builds an Error. msg is what a client may be shown for 4xx kinds.
func NewError(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Err != nil {
		if e.Msg != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func invalidArgument(op, format string, args ...any) *Error {
	return NewError(KindInvalidArgument, op, fmt.Sprintf(format, args...), nil)
}

func tabNotFound(op, name string) *Error {
	return NewError(KindNotFound, op, fmt.Sprintf("sheet with name '%s' not found", name), nil)
}

// Classify maps any error onto a Kind. Errors that already carry a Kind keep it.
func Classify(err error) Kind {
	if err == nil {
		return KindUnexpected
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if isDuplicateTitle(gerr) {
			return KindConflict
		}
		return KindRemote
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindTransport
	}

	var uerr *url.Error
	if errors.As(err, &uerr) {
		return KindTransport
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return KindTransport
	}

	return KindUnexpected
}

// wrap converts an error from the remote service into an Error of the
// classified kind. The message stays generic; details live in Err.
func wrap(op string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	kind := Classify(err)
	switch kind {
	case KindConflict:
		return NewError(kind, op, "a sheet with that name already exists", err)
	case KindRemote:
		return NewError(kind, op, "spreadsheet service rejected the request", err)
	case KindTransport:
		return NewError(kind, op, "spreadsheet service unreachable", err)
	default:
		return NewError(kind, op, "unexpected error", err)
	}
}

func isDuplicateTitle(gerr *googleapi.Error) bool {
	return gerr.Code == http.StatusBadRequest && strings.Contains(gerr.Message, "already exists")
}

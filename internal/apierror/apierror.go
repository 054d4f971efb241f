package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies gateway failures into the taxonomy exposed to clients.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindInvalidArgument
	KindDownstreamUnavailable
	KindDownstreamRejected
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindDownstreamUnavailable:
		return "downstream_unavailable"
	case KindDownstreamRejected:
		return "downstream_rejected"
	default:
		return "internal"
	}
}

// Error is the single error type flowing out of the orchestration layer.
// Source names the downstream service when the failure belongs to one.
type Error struct {
	Kind   Kind
	Source string
	Msg    string
	Status int // downstream status for KindDownstreamRejected
	Err    error
}

func (e *Error) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Source, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error to a client-facing status code. Downstream
// rejections keep the downstream 4xx status; everything else gets the
// taxonomy default.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindDownstreamUnavailable:
		return http.StatusBadGateway
	case KindDownstreamRejected:
		if e.Status >= 400 && e.Status < 500 {
			return e.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Msg: msg}
}

func InvalidArgument(msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Msg: msg}
}

func DownstreamUnavailable(source string, err error) *Error {
	return &Error{Kind: KindDownstreamUnavailable, Source: source, Msg: err.Error(), Err: err}
}

func DownstreamRejected(source string, status int) *Error {
	return &Error{
		Kind:   KindDownstreamRejected,
		Source: source,
		Msg:    fmt.Sprintf("service returned status %d", status),
		Status: status,
	}
}

func Internal(source string, err error) *Error {
	return &Error{Kind: KindInternal, Source: source, Msg: err.Error(), Err: err}
}

// KindOf extracts the Kind from any error, defaulting to KindInternal for
// errors produced outside this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As is a convenience wrapper around errors.As for handlers.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

package proposal

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
)

// ErrorKind defines proposal error kinds.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindTimeout    ErrorKind = "timeout"
	KindCanceled   ErrorKind = "canceled"
	KindInternal   ErrorKind = "internal"
	KindNotImpl    ErrorKind = "not_implemented"
)

// ProposalError wraps errors with a kind.
type ProposalError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ProposalError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *ProposalError) Unwrap() error {
	return e.Err
}

// NewError creates a new proposal error.
func NewError(kind ErrorKind, msg string, err error) *ProposalError {
	return &ProposalError{Kind: kind, Msg: msg, Err: err}
}

// IsNotFound reports whether err marks a missing proposal.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge.Category == errorslib.CategoryNotFound
	}
	return KindFromError(err) == KindNotFound
}

// AsGoError maps an error into a go-errors error.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	kind := KindFromError(err)
	msg := err.Error()
	var perr *ProposalError
	if errors.As(err, &perr) && perr.Msg != "" {
		msg = perr.Msg
	}

	switch kind {
	case KindValidation:
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("validation")
	case KindNotFound:
		return errorslib.New(msg, errorslib.CategoryNotFound).WithTextCode("not_found")
	case KindTimeout:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("timeout")
	case KindCanceled:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("canceled")
	case KindNotImpl:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("not_implemented")
	default:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode("internal")
	}
}

// KindFromError maps an error to its proposal error kind.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	var perr *ProposalError
	if errors.As(err, &perr) {
		return perr.Kind
	}

	return KindInternal
}

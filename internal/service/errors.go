package service

import (
	"errors"
	"fmt"
)

// Kind is the coarse error category callers branch on.
type Kind string

const (
	KindNotFound      Kind = "NOT_FOUND"
	KindExpired       Kind = "EXPIRED"
	KindAlreadyUsed   Kind = "ALREADY_USED"
	KindLimitExceeded Kind = "LIMIT_EXCEEDED"
	KindDuplicate     Kind = "DUPLICATE"
	KindValidation    Kind = "VALIDATION"
	KindUpstream      Kind = "UPSTREAM_FAILURE"
)

// Reason pinpoints which rule produced the error.
type Reason string

const (
	ReasonNotFound          Reason = "NOT_FOUND"
	ReasonExpired           Reason = "EXPIRED"
	ReasonExhausted         Reason = "EXHAUSTED"
	ReasonUserNotFound      Reason = "USER_NOT_FOUND"
	ReasonReportAlreadyUsed Reason = "REPORT_ALREADY_USED"
	ReasonPerUserLimit      Reason = "PER_USER_LIMIT"
	ReasonCouponNotFound    Reason = "COUPON_NOT_FOUND"
	ReasonDuplicateCode     Reason = "DUPLICATE_CODE"
	ReasonMissingField      Reason = "MISSING_FIELD"
	ReasonInvalidField      Reason = "INVALID_FIELD"
	ReasonUpstream          Reason = "UPSTREAM"
)

type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so errors.Is(err, ErrNotFound) works for every reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Reason != "" && t.Reason != e.Reason {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrExpired       = &Error{Kind: KindExpired}
	ErrAlreadyUsed   = &Error{Kind: KindAlreadyUsed}
	ErrLimitExceeded = &Error{Kind: KindLimitExceeded}
	ErrDuplicate     = &Error{Kind: KindDuplicate}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrUpstream      = &Error{Kind: KindUpstream}
)

func newError(kind Kind, reason Reason, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func upstream(op string, err error) *Error {
	return &Error{Kind: KindUpstream, Reason: ReasonUpstream, Message: op, Err: err}
}

func missingField(name string) *Error {
	return newError(KindValidation, ReasonMissingField, "%s is required", name)
}

func invalidField(name, why string) *Error {
	return newError(KindValidation, ReasonInvalidField, "invalid %s: %s", name, why)
}

// AsError extracts the service error from err; anything else is reported
// as an upstream failure.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return upstream("unexpected failure", err)
}

// Package errors provides the structured error codes shared by the SBS services.
//
// A code has seven digits, AABBCCC: AA is the service, BB the category and CCC
// a sequence within the category. Every Errno carries the HTTP and gRPC status
// it maps to plus an English and a Chinese public message.
//
//	var ErrVolumeNotFound = errors.NewNotFoundError(ServiceSBS, 1).
//	    Message("Volume not found", "卷不存在").
//	    MustBuild()
//
//	return ErrStoreUnavailable.WithCause(err)
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/grpc/codes"
)

// Errno is a registered error code. The optional cause is for logs only and
// never changes the public message.
type Errno struct {
	Code      int        `json:"code"`
	HTTP      int        `json:"-"`
	GRPCCode  codes.Code `json:"-"`
	MessageEN string     `json:"message"`
	MessageZH string     `json:"message_zh,omitempty"`

	cause error
}

func (e *Errno) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("errno %d: %s", e.Code, e.MessageEN)
	}
	return fmt.Sprintf("errno %d: %s: %v", e.Code, e.MessageEN, e.cause)
}

// Unwrap returns the cause.
func (e *Errno) Unwrap() error {
	return e.cause
}

// Is matches any Errno with the same code.
func (e *Errno) Is(target error) bool {
	t, ok := target.(*Errno)
	return ok && t.Code == e.Code
}

// WithCause returns a copy of e carrying cause.
func (e *Errno) WithCause(cause error) *Errno {
	c := *e
	c.cause = cause
	return &c
}

// WithMessage returns a copy of e answering msg in every language.
func (e *Errno) WithMessage(msg string) *Errno {
	c := *e
	c.MessageEN, c.MessageZH = msg, ""
	return &c
}

// Message returns the public message for a language tag such as "zh-CN".
// Anything but Chinese gets the English message.
func (e *Errno) Message(lang string) string {
	if e.MessageZH != "" && strings.HasPrefix(strings.ToLower(lang), "zh") {
		return e.MessageZH
	}
	return e.MessageEN
}

// HTTPStatus returns the HTTP status, 500 when unset.
func (e *Errno) HTTPStatus() int {
	if e.HTTP == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTP
}

// GRPCStatus returns the gRPC code, Internal when unset.
func (e *Errno) GRPCStatus() codes.Code {
	if e.GRPCCode == codes.OK {
		return codes.Internal
	}
	return e.GRPCCode
}

// FromError returns the first Errno in err's chain. Any other error becomes
// ErrInternal with err as its cause.
func FromError(err error) *Errno {
	if err == nil {
		return nil
	}
	var e *Errno
	if stderrors.As(err, &e) {
		return e
	}
	return ErrInternal.WithCause(err)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

package authclient

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

// ErrAuth matches every login failure returned by Client.Login.
var ErrAuth = errors.New("authentication failed")

// CodeAuthFailed is the oops code of login failures.
const CodeAuthFailed = "AUTH_FAILED"

// Kind classifies a login failure for diagnostics. Users see one message
// regardless of kind.
type Kind string

// Failure kinds.
const (
	KindInvalidCredentials Kind = "invalid_credentials"
	KindNetwork            Kind = "network"
	KindUnexpectedStatus   Kind = "unexpected_status"
	KindMalformedResponse  Kind = "malformed_response"
)

// Error describes a failed login call.
type Error struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("login %s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("login %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports ErrAuth as matching every *Error.
func (e *Error) Is(target error) bool { return target == ErrAuth }

// KindOf returns the failure kind carried by err, or "" if err is not a login failure.
func KindOf(err error) Kind {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return ""
}

func newError(kind Kind, status int, cause error) error {
	b := oops.Code(CodeAuthFailed).With("kind", string(kind))
	if status != 0 {
		b = b.With("status", status)
	}
	return b.Wrap(&Error{Kind: kind, Status: status, Err: cause})
}

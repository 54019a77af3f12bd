// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

package login

import (
	"errors"
	"strings"

	"github.com/samber/oops"
)

// Sentinel errors carried in Result.Err.
var (
	// ErrValidation is returned when a field is empty.
	ErrValidation = errors.New("missing credentials")

	// ErrAbandoned is returned when the submission context ended mid-flight.
	ErrAbandoned = errors.New("submission abandoned")
)

// Error codes.
const (
	CodeValidationFailed = "LOGIN_VALIDATION_FAILED"
	CodeAbandoned        = "LOGIN_ABANDONED"
)

// User-facing notices.
const (
	MsgFillAllFields      = "Please fill in all fields"
	MsgInvalidCredentials = "Invalid username or password"
	MsgLoginSucceeded     = "Login successful!"
)

// Validate checks that both credential fields are present. The error names
// the missing fields, never their values.
func Validate(creds Credentials) error {
	var missing []string
	if creds.Username == "" {
		missing = append(missing, "username")
	}
	if creds.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) == 0 {
		return nil
	}
	return oops.Code(CodeValidationFailed).
		With("missing", missing).
		Wrapf(ErrValidation, "missing %s", strings.Join(missing, " and "))
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

package session

import "errors"

// ErrTokenDecode marks a token that could not be decoded into a payload with a userId.
var ErrTokenDecode = errors.New("token decode failed")

// Error codes attached to session errors.
const (
	CodeTokenDecodeFailed  = "TOKEN_DECODE_FAILED"
	CodeSessionStoreFailed = "SESSION_STORE_FAILED"
)

// Stages of DecodeToken, reported in the "stage" error context.
const (
	StageSplit  = "split"
	StageDecode = "decode"
	StageParse  = "parse"
	StageClaim  = "claim"
)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

// Package session persists the login session for the rest of quizrush.
//
// A session is two string keys, "token" and "userId", written to a Store.
// The userId is not supplied by the server directly; it is read from the
// payload segment of the token by DecodeToken.
//
// Either both keys are present or neither is. Persister decodes the token
// before touching the store and rolls back a half-written session, and Load
// reports a session with only one key as absent.
package session

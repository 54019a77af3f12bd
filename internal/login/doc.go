// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

// Package login implements the quizrush login screen.
//
// A Collector holds the username and password being typed and submits them.
// Each submission walks the state machine
//
//	Idle -> Submitting -> Succeeded
//	                   -> Failed -> Idle
//
// and runs a fixed sequence of steps: authenticate, persist, navigate.
// The first failing step decides the result and the message shown to the
// user. Empty fields are rejected before any step runs and never mark the
// collector busy.
//
// Users see two failure messages only: one for missing fields, and one for
// everything that went wrong after submission (rejected credentials, network
// errors, and tokens that do not decode). Logs and metrics keep the reasons
// apart.
package login

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

package login

import "github.com/quizrush/quizrush/internal/session"

// State is the collector's position in the login state machine.
type State string

// Collector states.
const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Stage names the step a result was decided at.
type Stage string

// Submission stages, in order.
const (
	StageNone         Stage = ""
	StageValidate     Stage = "validate"
	StageAuthenticate Stage = "authenticate"
	StagePersist      Stage = "persist"
	StageNavigate     Stage = "navigate"
)

// Result is the terminal outcome of one Submit call.
type Result struct {
	// State is Succeeded or Failed for submissions that ran, otherwise
	// the collector's state at the time of the call.
	State State
	// Stage is the last step that ran.
	Stage Stage
	// Outcome is the metrics label for this result.
	Outcome string
	// Notice is the message shown to the user, empty when none was shown.
	Notice  string
	Session session.Session
	Err     error
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

package login

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/quizrush/quizrush/internal/authclient"
	"github.com/quizrush/quizrush/internal/observability"
	"github.com/quizrush/quizrush/internal/session"
	"github.com/quizrush/quizrush/pkg/errutil"
)

// attempt carries one submission through the steps.
type attempt struct {
	id       ulid.ULID
	creds    Credentials
	response authclient.LoginResponse
	session  session.Session
}

// step is one link of the submission chain. A non-nil error stops the chain.
type step struct {
	stage Stage
	run   func(ctx context.Context, a *attempt) error
}

func (c *Collector) steps() []step {
	return []step{
		{stage: StageAuthenticate, run: c.authenticate},
		{stage: StagePersist, run: c.persist},
		{stage: StageNavigate, run: c.navigate},
	}
}

// run executes the steps in order and returns the last stage reached.
// A context that ended before or during a step abandons the chain.
func (c *Collector) run(ctx context.Context, a *attempt) (Stage, error) {
	last := StageNone
	for _, s := range c.steps() {
		last = s.stage
		if ctx.Err() != nil {
			return last, abandoned(ctx, last)
		}
		if err := s.run(ctx, a); err != nil {
			if ctx.Err() != nil {
				return last, abandoned(ctx, last)
			}
			return last, err
		}
	}
	return last, nil
}

func (c *Collector) authenticate(ctx context.Context, a *attempt) error {
	resp, err := c.auth.Login(ctx, authclient.LoginRequest{
		Username: a.creds.Username,
		Password: a.creds.Password,
	})
	if err != nil {
		return err
	}
	a.response = resp
	return nil
}

func (c *Collector) persist(ctx context.Context, a *attempt) error {
	sess, err := c.sessions.Persist(ctx, a.response.Token)
	if err != nil {
		return err
	}
	a.session = sess
	return nil
}

// navigate shows the success notice and hands over to the router. It only
// runs once the session is stored.
func (c *Collector) navigate(_ context.Context, _ *attempt) error {
	c.transition(StateSucceeded)
	c.notifier.Success(MsgLoginSucceeded)
	c.navigator.Navigate(c.landingRoute)
	return nil
}

// finish maps the chain's outcome to a Result and settles the state machine.
func (c *Collector) finish(ctx context.Context, a *attempt, stage Stage, err error) Result {
	attemptID := a.id.String()

	switch {
	case err == nil:
		c.logger.InfoContext(ctx, "login succeeded",
			"attempt_id", attemptID,
			"user_id", a.session.UserID,
			"route", c.landingRoute,
		)
		return Result{
			State:   StateSucceeded,
			Stage:   stage,
			Outcome: observability.OutcomeSucceeded,
			Notice:  MsgLoginSucceeded,
			Session: a.session,
		}

	case errors.Is(err, ErrAbandoned):
		c.transition(StateIdle)
		c.logger.DebugContext(ctx, "login abandoned", "attempt_id", attemptID, "stage", string(stage))
		return Result{
			State:   StateIdle,
			Stage:   stage,
			Outcome: observability.OutcomeAbandoned,
			Err:     err,
		}

	default:
		reason := FailureReason(err)
		c.metrics.RecordFailure(reason)
		errutil.LogErrorContext(ctx, c.logger, "login failed", err,
			"attempt_id", attemptID,
			"stage", string(stage),
			"reason", reason,
		)

		c.transition(StateFailed)
		c.notifier.Error(MsgInvalidCredentials)
		c.transition(StateIdle)

		return Result{
			State:   StateFailed,
			Stage:   stage,
			Outcome: observability.OutcomeFailed,
			Notice:  MsgInvalidCredentials,
			Err:     err,
		}
	}
}

// FailureReason classifies a failed submission for diagnostics.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrTokenDecode):
		return "token_decode"
	case errors.Is(err, authclient.ErrAuth):
		if kind := authclient.KindOf(err); kind != "" {
			return string(kind)
		}
		return "auth"
	case errutil.Code(err) == session.CodeSessionStoreFailed:
		return "session_store"
	default:
		return "unknown"
	}
}

func abandoned(ctx context.Context, stage Stage) error {
	return oops.Code(CodeAbandoned).
		With("stage", string(stage)).
		Wrap(fmt.Errorf("%w: %w", ErrAbandoned, context.Cause(ctx)))
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

package login

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quizrush/quizrush/internal/authclient"
	"github.com/quizrush/quizrush/internal/observability"
	"github.com/quizrush/quizrush/internal/session"
)

// DefaultLandingRoute is where a successful login navigates to.
const DefaultLandingRoute = "/admin"

const tracerName = "github.com/quizrush/quizrush/internal/login"

// Credentials are the values typed into the form. They exist for one
// submission and are never persisted or logged.
type Credentials struct {
	Username string
	Password string
}

// Authenticator exchanges credentials for a session token.
type Authenticator interface {
	Login(ctx context.Context, req authclient.LoginRequest) (authclient.LoginResponse, error)
}

// Persister stores the session derived from a token.
type Persister interface {
	Persist(ctx context.Context, token string) (session.Session, error)
}

// Navigator is the external router.
type Navigator interface {
	Navigate(route string)
}

// Notifier shows transient notifications.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Config wires a Collector.
type Config struct {
	Auth      Authenticator
	Sessions  Persister
	Navigator Navigator
	Notifier  Notifier

	// LandingRoute defaults to DefaultLandingRoute.
	LandingRoute string
	Logger       *slog.Logger
	Metrics      *observability.Metrics
	// OnTransition, if set, is called after every state change.
	OnTransition func(from, to State)
}

// Collector is one instance of the login form.
type Collector struct {
	auth         Authenticator
	sessions     Persister
	navigator    Navigator
	notifier     Notifier
	landingRoute string
	logger       *slog.Logger
	metrics      *observability.Metrics
	onTransition func(from, to State)
	tracer       trace.Tracer

	busy atomic.Bool

	mu       sync.Mutex
	username string
	password string
	state    State
}

// NewCollector creates a Collector in the Idle state.
func NewCollector(cfg Config) (*Collector, error) {
	if cfg.Auth == nil {
		return nil, oops.Errorf("authenticator is required")
	}
	if cfg.Sessions == nil {
		return nil, oops.Errorf("session persister is required")
	}
	if cfg.Navigator == nil {
		return nil, oops.Errorf("navigator is required")
	}
	if cfg.Notifier == nil {
		return nil, oops.Errorf("notifier is required")
	}

	route := cfg.LandingRoute
	if route == "" {
		route = DefaultLandingRoute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Collector{
		auth:         cfg.Auth,
		sessions:     cfg.Sessions,
		navigator:    cfg.Navigator,
		notifier:     cfg.Notifier,
		landingRoute: route,
		logger:       logger,
		metrics:      cfg.Metrics,
		onTransition: cfg.OnTransition,
		tracer:       otel.Tracer(tracerName),
		state:        StateIdle,
	}, nil
}

// Busy reports whether a submission is in flight.
func (c *Collector) Busy() bool {
	return c.busy.Load()
}

// State returns the current state.
func (c *Collector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Username returns the current username field.
func (c *Collector) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// SetUsername updates the username field. Inputs are disabled while busy;
// the edit is dropped and false returned.
func (c *Collector) SetUsername(v string) bool {
	if c.busy.Load() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.username = v
	return true
}

// SetPassword updates the password field under the same rule as SetUsername.
func (c *Collector) SetPassword(v string) bool {
	if c.busy.Load() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.password = v
	return true
}

// Submit validates the fields and, if both are present, runs one login
// submission to its terminal outcome. A call made while another submission
// is in flight, or after a successful login, has no effect.
//
// If ctx ends while the submission is in flight, the remaining steps are
// abandoned: nothing is persisted, shown or navigated.
func (c *Collector) Submit(ctx context.Context) Result {
	if c.busy.Load() || c.State() == StateSucceeded {
		return c.ignored()
	}

	creds := c.credentials()
	if err := Validate(creds); err != nil {
		c.notifier.Error(MsgFillAllFields)
		c.metrics.RecordAttempt(observability.OutcomeRejected, 0)
		c.logger.InfoContext(ctx, "login rejected", "code", CodeValidationFailed)
		return Result{
			State:   StateIdle,
			Stage:   StageValidate,
			Outcome: observability.OutcomeRejected,
			Notice:  MsgFillAllFields,
			Err:     err,
		}
	}

	if !c.busy.CompareAndSwap(false, true) {
		return c.ignored()
	}
	defer c.busy.Store(false)
	// Another submission may have succeeded between the check above and
	// taking busy.
	if c.State() == StateSucceeded {
		return c.ignored()
	}

	start := time.Now()
	a := &attempt{id: ulid.Make(), creds: creds}

	ctx, span := c.tracer.Start(ctx, "login.submit",
		trace.WithAttributes(attribute.String("login.attempt_id", a.id.String())))
	defer span.End()

	c.transition(StateSubmitting)
	c.logger.DebugContext(ctx, "login submitted", "attempt_id", a.id.String())

	stage, err := c.run(ctx, a)
	res := c.finish(ctx, a, stage, err)

	c.metrics.RecordAttempt(res.Outcome, time.Since(start))
	span.SetAttributes(attribute.String("login.outcome", res.Outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stage))
	}
	return res
}

// SubmitAsync runs Submit on its own goroutine. The channel is buffered,
// so a caller that stops listening does not leak the goroutine.
func (c *Collector) SubmitAsync(ctx context.Context) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- c.Submit(ctx)
	}()
	return out
}

func (c *Collector) ignored() Result {
	c.metrics.RecordAttempt(observability.OutcomeIgnored, 0)
	return Result{State: c.State(), Stage: StageNone, Outcome: observability.OutcomeIgnored}
}

func (c *Collector) credentials() Credentials {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Credentials{Username: c.username, Password: c.password}
}

func (c *Collector) transition(to State) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()

	if c.onTransition != nil {
		c.onTransition(from, to)
	}
}

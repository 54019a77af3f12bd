// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

// Package logintest provides test doubles for the login collector's collaborators.
package logintest

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/quizrush/quizrush/internal/authclient"
	"github.com/quizrush/quizrush/internal/session"
)

// testingT is the subset of *testing.T the mocks need.
type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockAuthenticator is a testify mock of login.Authenticator.
type MockAuthenticator struct {
	mock.Mock
}

// NewMockAuthenticator creates a MockAuthenticator whose expectations are
// asserted when the test ends.
func NewMockAuthenticator(t testingT) *MockAuthenticator {
	m := &MockAuthenticator{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Login implements login.Authenticator.
func (m *MockAuthenticator) Login(ctx context.Context, req authclient.LoginRequest) (authclient.LoginResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(authclient.LoginResponse)
	return resp, args.Error(1)
}

// MockPersister is a testify mock of login.Persister.
type MockPersister struct {
	mock.Mock
}

// NewMockPersister creates a MockPersister whose expectations are asserted
// when the test ends.
func NewMockPersister(t testingT) *MockPersister {
	m := &MockPersister{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Persist implements login.Persister.
func (m *MockPersister) Persist(ctx context.Context, token string) (session.Session, error) {
	args := m.Called(ctx, token)
	sess, _ := args.Get(0).(session.Session)
	return sess, args.Error(1)
}

// Notifier records notices in the order they were shown.
type Notifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

// Success implements login.Notifier.
func (n *Notifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

// Error implements login.Notifier.
func (n *Notifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

// Successes returns the success notices shown so far.
func (n *Notifier) Successes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.successes...)
}

// Errors returns the error notices shown so far.
func (n *Notifier) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.errors...)
}

// Navigator records navigation requests.
type Navigator struct {
	mu     sync.Mutex
	routes []string
}

// Navigate implements login.Navigator.
func (n *Navigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

// Routes returns every route navigated to.
func (n *Navigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

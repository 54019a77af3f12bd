// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

package authclient_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizrush/quizrush/internal/authclient"
	"github.com/quizrush/quizrush/pkg/errutil"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL string, logger *slog.Logger) *authclient.Client {
	t.Helper()
	c, err := authclient.New(baseURL, authclient.Options{
		HTTPClient: &http.Client{},
		Logger:     logger,
	})
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
	}{
		{name: "empty url", baseURL: ""},
		{name: "unsupported scheme", baseURL: "ftp://example.com"},
		{name: "unparseable url", baseURL: "http://[::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := authclient.New(tt.baseURL, authclient.Options{})
			require.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestNew_ResolvesLoginPath(t *testing.T) {
	c, err := authclient.New("https://quiz.example.com/", authclient.Options{})
	require.NoError(t, err)
	assert.Equal(t, "https://quiz.example.com/api/auth/login", c.LoginURL())

	c, err = authclient.New("https://quiz.example.com", authclient.Options{LoginPath: "/v2/login"})
	require.NoError(t, err)
	assert.Equal(t, "https://quiz.example.com/v2/login", c.LoginURL())
}

func TestClient_Login_Success(t *testing.T) {
	var gotReq authclient.LoginRequest
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"token":"h.p.s","user":{"name":"alice"}}`)
	})

	c := newClient(t, srv.URL, nil)
	resp, err := c.Login(context.Background(), authclient.LoginRequest{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "h.p.s", resp.Token)
	assert.Equal(t, authclient.LoginRequest{Username: "alice", Password: "secret"}, gotReq)
}

func TestClient_Login_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind authclient.Kind
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"bad"}`, wantKind: authclient.KindInvalidCredentials},
		{name: "forbidden", status: http.StatusForbidden, wantKind: authclient.KindInvalidCredentials},
		{name: "server error", status: http.StatusInternalServerError, wantKind: authclient.KindUnexpectedStatus},
		{name: "not json", status: http.StatusOK, body: `<html>`, wantKind: authclient.KindMalformedResponse},
		{name: "missing token", status: http.StatusOK, body: `{"jwt":"x"}`, wantKind: authclient.KindMalformedResponse},
		{name: "empty token", status: http.StatusOK, body: `{"token":""}`, wantKind: authclient.KindMalformedResponse},
		{name: "token not a string", status: http.StatusOK, body: `{"token":42}`, wantKind: authclient.KindMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			c := newClient(t, srv.URL, nil)
			_, err := c.Login(context.Background(), authclient.LoginRequest{Username: "alice", Password: "secret"})
			errutil.AssertErrorIs(t, err, authclient.ErrAuth, authclient.CodeAuthFailed)
			assert.Equal(t, tt.wantKind, authclient.KindOf(err))
			errutil.AssertErrorContext(t, err, "kind", string(tt.wantKind))
		})
	}
}

func TestClient_Login_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(t, url, nil)
	_, err := c.Login(context.Background(), authclient.LoginRequest{Username: "alice", Password: "secret"})
	require.Error(t, err)
	assert.Equal(t, authclient.KindNetwork, authclient.KindOf(err))
}

func TestClient_Login_SingleAttempt(t *testing.T) {
	calls := 0
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	c := newClient(t, srv.URL, nil)
	_, err := c.Login(context.Background(), authclient.LoginRequest{Username: "alice", Password: "secret"})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "login must not retry")
}

func TestClient_Login_DoesNotLogCredentials(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := newClient(t, srv.URL, logger)

	_, err := c.Login(context.Background(), authclient.LoginRequest{Username: "alice", Password: "s3cr3t-value"})
	require.Error(t, err)

	assert.Contains(t, buf.String(), "login request completed")
	assert.NotContains(t, buf.String(), "s3cr3t-value")
	assert.NotContains(t, buf.String(), "alice")
	assert.NotContains(t, err.Error(), "s3cr3t-value")
}

func TestClient_Login_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newClient(t, srv.URL, nil)
	_, err := c.Login(ctx, authclient.LoginRequest{Username: "alice", Password: "secret"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, authclient.KindNetwork, authclient.KindOf(err))
}

func TestResponseSchema(t *testing.T) {
	data, err := authclient.ResponseSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "QuizRush Login Response", schema["title"])
	assert.Contains(t, schema["required"], "token")
}

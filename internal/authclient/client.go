// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

// Package authclient sends credentials to the QuizRush authentication
// endpoint and returns the session token it issues.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/samber/oops"
)

// DefaultLoginPath is the login endpoint relative to the server URL.
const DefaultLoginPath = "/api/auth/login"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// Options overrides Client dependencies.
type Options struct {
	// HTTPClient performs the request. Timeouts are its concern;
	// defaults to http.DefaultClient.
	HTTPClient *http.Client
	Logger     *slog.Logger
	// LoginPath defaults to DefaultLoginPath.
	LoginPath string
}

// Client talks to the authentication endpoint.
type Client struct {
	loginURL   *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	if baseURL == "" {
		return nil, oops.Errorf("server url is required")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, oops.With("server_url", baseURL).Wrapf(err, "parse server url")
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, oops.With("server_url", baseURL).Errorf("server url must be http or https")
	}

	path := opts.LoginPath
	if path == "" {
		path = DefaultLoginPath
	}
	rel, err := url.Parse(path)
	if err != nil {
		return nil, oops.With("login_path", path).Wrapf(err, "parse login path")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		loginURL:   base.ResolveReference(rel),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// LoginURL returns the resolved endpoint.
func (c *Client) LoginURL() string {
	return c.loginURL.String()
}

// Login performs a single POST of req and returns the issued token.
// Every failure wraps ErrAuth; KindOf tells the failures apart.
// The request is never retried.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	start := time.Now()

	body, err := json.Marshal(req)
	if err != nil {
		return LoginResponse{}, newError(KindNetwork, 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL.String(), bytes.NewReader(body))
	if err != nil {
		return LoginResponse{}, newError(KindNetwork, 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.WarnContext(ctx, "login request failed",
			"url", c.loginURL.Redacted(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return LoginResponse{}, newError(KindNetwork, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.DebugContext(ctx, "login request completed",
		"url", c.loginURL.Redacted(),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return LoginResponse{}, newError(KindInvalidCredentials, resp.StatusCode, errors.New("credentials rejected"))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return LoginResponse{}, newError(KindUnexpectedStatus, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return LoginResponse{}, newError(KindNetwork, resp.StatusCode, err)
	}

	out, err := decodeResponse(raw)
	if err != nil {
		return LoginResponse{}, newError(KindMalformedResponse, resp.StatusCode, err)
	}
	return out, nil
}

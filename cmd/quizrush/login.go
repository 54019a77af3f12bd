// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quizrush/quizrush/internal/authclient"
	"github.com/quizrush/quizrush/internal/config"
	"github.com/quizrush/quizrush/internal/login"
	"github.com/quizrush/quizrush/internal/observability"
	"github.com/quizrush/quizrush/internal/session"
	"github.com/quizrush/quizrush/pkg/errutil"
)

var (
	errLoginFailed      = errors.New("login failed")
	errLoginInterrupted = errors.New("login interrupted")
)

// loginConfig holds configuration for the login command.
type loginConfig struct {
	username      string
	passwordStdin bool
}

// newLoginCmd creates the login subcommand with all flags configured.
func newLoginCmd() *cobra.Command {
	cfg := &loginConfig{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: `Sign in to the QuizRush server with a username and password.

The password is read from the terminal without echo, or from stdin with
--password-stdin. On success the session token and user id are written
to the session file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&cfg.username, "username", "u", "", "account username (prompted when empty)")
	cmd.Flags().BoolVar(&cfg.passwordStdin, "password-stdin", false, "read the password from stdin")
	config.RegisterFlags(cmd.Flags())

	return cmd
}

// runLogin executes the login command.
func runLogin(cmd *cobra.Command, cfg *loginConfig) error {
	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogging(cmd, conf)

	if err := conf.ValidateAuth(); err != nil {
		return err
	}
	if err := conf.ResolveSessionFile(); err != nil {
		return err
	}

	store, err := session.NewFileStore(conf.Session.File)
	if err != nil {
		return err
	}
	persister, err := session.NewPersister(store, logger)
	if err != nil {
		return err
	}
	client, err := authclient.New(conf.Auth.ServerURL, authclient.Options{
		HTTPClient: &http.Client{Timeout: conf.Auth.Timeout},
		Logger:     logger,
		LoginPath:  conf.Auth.LoginPath,
	})
	if err != nil {
		return oops.Code(config.CodeConfigLoadFailed).With("key", "auth.server_url").Wrap(err)
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	collector, err := login.NewCollector(login.Config{
		Auth:         client,
		Sessions:     persister,
		Navigator:    &cliNavigator{out: cmd.OutOrStdout()},
		Notifier:     &cliNotifier{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()},
		LandingRoute: conf.Login.LandingRoute,
		Logger:       logger,
		Metrics:      metrics,
		OnTransition: func(from, to login.State) {
			logger.Debug("login state changed", "from", from, "to", to)
		},
	})
	if err != nil {
		return err
	}

	creds, err := readCredentials(cmd, cfg)
	if err != nil {
		return err
	}
	collector.SetUsername(creds.Username)
	collector.SetPassword(creds.Password)

	// An interrupt abandons the attempt the way leaving the screen would.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := collector.Submit(ctx)
	exportMetrics(logger, conf.Metrics.Textfile, reg)

	switch res.Outcome {
	case observability.OutcomeSucceeded:
		return nil
	case observability.OutcomeAbandoned:
		return errLoginInterrupted
	default:
		return errLoginFailed
	}
}

func exportMetrics(logger *slog.Logger, path string, g prometheus.Gatherer) {
	if path == "" {
		return
	}
	if err := observability.WriteTextfile(path, g); err != nil {
		errutil.LogError(logger, "failed to write metrics textfile", err)
	}
}

// readCredentials gathers the username and password. Empty values are
// passed through so the form can report them.
func readCredentials(cmd *cobra.Command, cfg *loginConfig) (login.Credentials, error) {
	in := cmd.InOrStdin()
	prompt := cmd.ErrOrStderr()

	creds := login.Credentials{Username: cfg.username}
	if !cmd.Flags().Changed("username") {
		fmt.Fprint(prompt, "Username: ")
		line, err := readLine(in)
		if err != nil {
			return login.Credentials{}, err
		}
		creds.Username = line
	}

	if !cfg.passwordStdin {
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			fmt.Fprint(prompt, "Password: ")
			raw, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(prompt)
			if err != nil {
				return login.Credentials{}, oops.Wrapf(err, "read password")
			}
			creds.Password = string(raw)
			return creds, nil
		}
	}

	line, err := readLine(in)
	if err != nil {
		return login.Credentials{}, err
	}
	creds.Password = line
	return creds, nil
}

// readLine returns the next line without its terminator. It reads one
// byte at a time so nothing past the newline is consumed; the terminal
// password prompt reads the same descriptor afterwards. A final line
// without a newline is accepted; end of input yields an empty string.
func readLine(r io.Reader) (string, error) {
	var line strings.Builder
	b := make([]byte, 1)
	for {
		n, err := r.Read(b)
		if n > 0 {
			if b[0] == '\n' {
				break
			}
			line.WriteByte(b[0])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", oops.Wrapf(err, "read input")
		}
	}
	return strings.TrimRight(line.String(), "\r"), nil
}

// cliNotifier prints notifications. Errors go to stderr.
type cliNotifier struct {
	out io.Writer
	err io.Writer
}

func (n *cliNotifier) Success(message string) {
	fmt.Fprintln(n.out, message)
}

func (n *cliNotifier) Error(message string) {
	fmt.Fprintln(n.err, message)
}

// cliNavigator reports the route a graphical client would open.
type cliNavigator struct {
	out io.Writer
}

func (n *cliNavigator) Navigate(route string) {
	fmt.Fprintf(n.out, "Continue at %s\n", route)
}

var (
	_ login.Notifier      = (*cliNotifier)(nil)
	_ login.Navigator     = (*cliNavigator)(nil)
	_ login.Authenticator = (*authclient.Client)(nil)
	_ login.Persister     = (*session.Persister)(nil)
)

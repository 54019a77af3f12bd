// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quizrush/quizrush/internal/config"
	"github.com/quizrush/quizrush/internal/session"
)

var errNotLoggedIn = errors.New("not logged in")

// newWhoamiCmd creates the whoami subcommand.
func newWhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Print the user id of the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openSessionStore(cmd)
			if err != nil {
				return err
			}
			sess, ok, err := session.Load(store)
			if err != nil {
				return err
			}
			if !ok {
				return errNotLoggedIn
			}
			fmt.Fprintln(cmd.OutOrStdout(), sess.UserID)
			return nil
		},
	}
	config.RegisterSessionFlags(cmd.Flags())
	return cmd
}

// newLogoutCmd creates the logout subcommand.
func newLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openSessionStore(cmd)
			if err != nil {
				return err
			}
			if err := session.Clear(store); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
	config.RegisterSessionFlags(cmd.Flags())
	return cmd
}

func openSessionStore(cmd *cobra.Command) (*session.FileStore, error) {
	conf, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := setupLogging(cmd, conf)
	if err := conf.ResolveSessionFile(); err != nil {
		return nil, err
	}
	logger.Debug("using session file", "path", conf.Session.File)
	return session.NewFileStore(conf.Session.File)
}

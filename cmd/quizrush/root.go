// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quizrush/quizrush/internal/config"
	"github.com/quizrush/quizrush/internal/logging"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the quizrush CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quizrush",
		Short: "QuizRush - sign in to a QuizRush server",
		Long: `quizrush signs in to a QuizRush server, keeps the issued session
token on disk, and reports which account the session belongs to.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	config.RegisterLogFlags(cmd.PersistentFlags())

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newLogoutCmd())

	return cmd
}

// loadConfig reads the config file and the command's flags. An explicit
// --config must exist; the default location is optional.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configFile
	required := path != ""
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path, required, cmd.Flags())
}

// setupLogging installs the process logger. Logs go to stderr so stdout
// stays free for command output.
func setupLogging(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.SetDefault(logging.Options{
		Service: "quizrush",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.SlogLevel(),
		Writer:  cmd.ErrOrStderr(),
	})
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

// Package config loads quizrush configuration from a YAML file and
// command-line flags.
//
// Precedence, highest first: flags set on the command line, the config
// file, flag defaults.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/quizrush/quizrush/internal/xdg"
)

// CodeConfigLoadFailed is the oops code of configuration errors.
const CodeConfigLoadFailed = "CONFIG_LOAD_FAILED"

// Defaults.
const (
	DefaultLoginPath    = "/api/auth/login"
	DefaultTimeout      = 15 * time.Second
	DefaultLandingRoute = "/admin"
	DefaultLogFormat    = "text"
	DefaultLogLevel     = "info"
)

// Config is the full quizrush configuration.
type Config struct {
	Auth    AuthConfig    `koanf:"auth"`
	Session SessionConfig `koanf:"session"`
	Login   LoginConfig   `koanf:"login"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// AuthConfig locates the authentication endpoint.
type AuthConfig struct {
	ServerURL string `koanf:"server_url"`
	LoginPath string `koanf:"login_path"`
	// Timeout bounds the HTTP request. Zero disables it.
	Timeout time.Duration `koanf:"timeout"`
}

// SessionConfig locates the session file.
type SessionConfig struct {
	File string `koanf:"file"`
}

// LoginConfig configures the login screen.
type LoginConfig struct {
	LandingRoute string `koanf:"landing_route"`
}

// LogConfig configures logging.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// MetricsConfig configures the metrics export.
type MetricsConfig struct {
	// Textfile, if set, receives the login metrics after each run.
	Textfile string `koanf:"textfile"`
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"server-url":       "auth.server_url",
	"login-path":       "auth.login_path",
	"timeout":          "auth.timeout",
	"session-file":     "session.file",
	"landing-route":    "login.landing_route",
	"log-format":       "log.format",
	"log-level":        "log.level",
	"metrics-textfile": "metrics.textfile",
}

// RegisterFlags adds the login configuration flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("server-url", "", "QuizRush server URL (e.g. https://quizrush.example.com)")
	flags.String("login-path", DefaultLoginPath, "login endpoint path on the server")
	flags.Duration("timeout", DefaultTimeout, "HTTP timeout for the login request (0 = none)")
	RegisterSessionFlags(flags)
	flags.String("landing-route", DefaultLandingRoute, "route to navigate to after login")
	flags.String("metrics-textfile", "", "write login metrics to this file in Prometheus text format")
}

// RegisterSessionFlags adds the flags shared by every command that touches
// the session file.
func RegisterSessionFlags(flags *pflag.FlagSet) {
	flags.String("session-file", "", "session file path (default $XDG_STATE_HOME/quizrush/session.yaml)")
}

// RegisterLogFlags adds the logging flags.
func RegisterLogFlags(flags *pflag.FlagSet) {
	flags.String("log-format", DefaultLogFormat, "log format (json or text)")
	flags.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
}

// Load builds a Config from the file at path and the given flags.
// A missing file is only an error when required is true.
func Load(path string, required bool, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := loadFile(k, path, required); err != nil {
			return nil, err
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", k, func(name, value string) (string, interface{}) {
			return flagKeys[name], value
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code(CodeConfigLoadFailed).With("source", "flags").Wrap(err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code(CodeConfigLoadFailed).With("operation", "unmarshal").Wrap(err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// DefaultPath returns the config file used when --config is not given.
func DefaultPath() string {
	path, err := xdg.ConfigFile()
	if err != nil {
		return ""
	}
	return path
}

func loadFile(k *koanf.Koanf, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return oops.Code(CodeConfigLoadFailed).With("path", path).Wrap(err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return oops.Code(CodeConfigLoadFailed).With("path", path).Wrap(err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Auth.LoginPath == "" {
		c.Auth.LoginPath = DefaultLoginPath
	}
	if c.Login.LandingRoute == "" {
		c.Login.LandingRoute = DefaultLandingRoute
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// SlogLevel parses Level, falling back to info on unknown values.
func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ResolveSessionFile fills Session.File from the XDG state directory when unset.
func (c *Config) ResolveSessionFile() error {
	if c.Session.File != "" {
		return nil
	}
	path, err := xdg.SessionFile()
	if err != nil {
		return oops.Code(CodeConfigLoadFailed).With("key", "session.file").Wrap(err)
	}
	c.Session.File = path
	return nil
}

// ValidateAuth checks the settings the login command needs.
func (c *Config) ValidateAuth() error {
	if c.Auth.ServerURL == "" {
		return oops.Code(CodeConfigLoadFailed).
			With("key", "auth.server_url").
			Errorf("server url is required (set --server-url or auth.server_url)")
	}
	u, err := url.Parse(c.Auth.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return oops.Code(CodeConfigLoadFailed).
			With("key", "auth.server_url").
			With("value", c.Auth.ServerURL).
			Errorf("server url must be an absolute http or https URL")
	}
	if c.Auth.Timeout < 0 {
		return oops.Code(CodeConfigLoadFailed).
			With("key", "auth.timeout").
			Errorf("timeout cannot be negative")
	}
	return nil
}

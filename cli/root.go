/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Arenaboard Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cli provides the command-line interface of the dashboard.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/arenaboard/config"
	"github.com/google/arenaboard/datasources"
	"github.com/google/arenaboard/demo"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// app is what PersistentPreRunE hands to subcommands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

type appKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "arenaboard",
		Short: "Admin dashboard for the coding arena",
		Long: `Arenaboard serves the admin dashboard of the coding arena: accounts,
the question bank and the leaderboard as sortable, filterable tables.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			a := &app{cfg: cfg, logger: newLogger(cmd.ErrOrStderr(), cfg.Log)}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./"+config.DefaultFile+")")
	flags.String("addr", "", "Address to listen on")
	flags.String("title", "", "Dashboard title")
	flags.String("source", "", "Data source (memory|sqlite|api)")
	flags.String("db", "", "Path to the SQLite database")
	flags.String("api-url", "", "Base URL of the platform API")
	flags.String("token-secret", "", "HS256 secret session tokens are signed with")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-format", "", "Log format (text|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("source", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return newManager().SourceTypes(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newSeedCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newTokenCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func fromContext(ctx context.Context) *app {
	if a, ok := ctx.Value(appKey{}).(*app); ok {
		return a
	}
	// Commands executed without the root command get the defaults.
	cfg, err := config.Load("", nil)
	if err != nil {
		cfg = &config.Config{}
	}
	return &app{cfg: cfg, logger: slog.Default()}
}

// newLogger builds the process logger from the log section.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newManager returns a manager that also opens the demo memory source.
func newManager() *datasources.Manager {
	m := datasources.NewManager()
	m.Register(demo.Opener())
	return m
}

// openBackend opens the configured data source.
func (a *app) openBackend(ctx context.Context) (datasources.Backend, error) {
	backend, err := newManager().Open(ctx, a.cfg.Source.Datasource())
	if err != nil {
		return nil, err
	}
	a.logger.Debug("opened data source", "type", a.cfg.Source.Type)
	return backend, nil
}

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

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/arenaboard/core/auth"
	"github.com/google/arenaboard/core/models"
	"github.com/google/arenaboard/core/server"
	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Long: `Serve the dashboard until interrupted.

Sessions are bearer tokens issued by the platform, sent either in the
Authorization header or stored in the session cookie after logging in.`,
		Example: `  # Serve the demo data
  arenaboard serve --token-secret "$ARENA_TOKEN_SECRET"

  # Serve a SQLite database on another port
  arenaboard serve --source sqlite --db arena.db --addr :9090 --token-secret "$ARENA_TOKEN_SECRET"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := fromContext(cmd.Context())
			cfg := a.cfg

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			backend, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := backend.Close(); err != nil {
					a.logger.Error("closing data source", "error", err)
				}
			}()

			secret := []byte(cfg.Server.SessionSecret)
			if len(secret) == 0 {
				a.logger.Warn("no session secret configured, cookies will not survive a restart")
				secret = securecookie.GenerateRandomKey(32)
			}
			if cfg.Auth.TokenSecret == "" && cfg.Source.Type == "api" {
				a.logger.Warn("no token secret configured, token signatures are left to the platform")
			}

			srv, err := server.NewServer(server.Config{
				Title:        cfg.Server.Title,
				Subtitle:     fmt.Sprintf("Data source: %s", cfg.Source.Type),
				DataModel:    models.DefaultDataModel(),
				Backend:      backend,
				Store:        server.NewCookieStore(secret, cfg.Server.SecureCookies),
				Decoder:      auth.NewDecoder(cfg.Auth.TokenSecret),
				Logger:       a.logger,
				CacheSize:    cfg.Server.CacheSize,
				CacheTTL:     cfg.Server.CacheTTL,
				DefaultLimit: cfg.Table.DefaultLimit,
			})
			if err != nil {
				return err
			}
			return srv.Serve(ctx, cfg.Server.Addr, cfg.Server.ReadHeaderTimeout, cfg.Server.ShutdownTimeout)
		},
	}
}

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
	"time"

	"github.com/google/arenaboard/core/auth"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newTokenCommand() *cobra.Command {
	var (
		username string
		role     string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development session token",
		Long: `Mint an HS256 session token signed with the configured token secret.

Tokens are normally issued by the platform. Minted tokens are meant for local
development and tests only.`,
		Example: `  arenaboard token --token-secret dev-secret --user alice --role admin --ttl 8h`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := fromContext(cmd.Context())

			r := auth.Role(role)
			if !r.Known() {
				return fmt.Errorf("unknown role %q", role)
			}
			if ttl <= 0 {
				return fmt.Errorf("ttl must be positive, got %s", ttl)
			}

			token, err := auth.NewDecoder(a.cfg.Auth.TokenSecret).Encode(auth.Session{
				Subject:   uuid.NewString(),
				Username:  username,
				Role:      r,
				ExpiresAt: time.Now().Add(ttl),
			})
			if err != nil {
				return fmt.Errorf("failed to mint token: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "admin", "Username carried by the token")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleAdmin), "Role carried by the token")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Time until the token expires")
	_ = cmd.RegisterFlagCompletionFunc("role", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		roles := make([]string, len(auth.Roles))
		for i, r := range auth.Roles {
			roles[i] = string(r)
		}
		return roles, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

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

	"github.com/google/arenaboard/datasources"
	"github.com/google/arenaboard/demo"
	"github.com/spf13/cobra"
)

func newSeedCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load records into the data source",
		Long: `Load accounts, questions and standings into the configured data source.

Records are read from accounts.csv, questions.csv and standings.csv in --dir,
or taken from the built-in demo data when no directory is given. Existing
records with the same identifiers are replaced.`,
		Example: `  # Create a SQLite database holding the demo data
  arenaboard seed --source sqlite --db arena.db

  # Load exported CSV files
  arenaboard seed --source sqlite --db arena.db --dir ./export`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := fromContext(cmd.Context())
			ctx := cmd.Context()

			var ds datasources.Dataset
			var err error
			if dir != "" {
				ds, err = datasources.LoadDatasetDir(dir)
			} else {
				ds, err = demo.Dataset()
			}
			if err != nil {
				return err
			}

			backend, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			seeder, ok := backend.(datasources.Seeder)
			if !ok {
				return fmt.Errorf("the %s source cannot be seeded", a.cfg.Source.Type)
			}
			if err := seeder.Seed(ctx, ds); err != nil {
				return fmt.Errorf("failed to seed: %w", err)
			}

			a.logger.Info("seeded data source", "type", a.cfg.Source.Type,
				"accounts", len(ds.Accounts), "questions", len(ds.Questions), "standings", len(ds.Standings))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d accounts, %d questions and %d standings.\n",
				len(ds.Accounts), len(ds.Questions), len(ds.Standings))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory holding the CSV files")
	return cmd
}

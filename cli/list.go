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
	"context"
	"fmt"
	"io"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/google/arenaboard/core/columns"
	"github.com/google/arenaboard/core/models"
	"github.com/google/arenaboard/core/query"
	"github.com/google/arenaboard/core/tables"
	"github.com/google/arenaboard/datasources"
	"github.com/spf13/cobra"
)

type listOptions struct {
	search  string
	filters []string
	sort    string
	dir     string
	limit   int
	selects []string
}

// values encodes the options as the query parameters of a table page.
func (o listOptions) values() (url.Values, error) {
	v := url.Values{}
	if o.search != "" {
		v.Set("q", o.search)
	}
	for _, f := range o.filters {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected column=value", f)
		}
		v.Set("filter:"+key, value)
	}
	if o.sort != "" {
		v.Set("sort", o.sort)
		v.Set("dir", o.dir)
	}
	if len(o.selects) > 0 {
		v.Set("sel", strings.Join(o.selects, ","))
	}
	v.Set("limit", strconv.Itoa(o.limit))
	return v, nil
}

func newListCommand() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list <table>",
		Short: "Print a table",
		Long: `Print a table of the data source with the same filtering, sorting and
selection rules as the dashboard.

Tables: accounts, questions, leaderboard and _columns.`,
		Example: `  # Published questions, hardest first
  arenaboard list questions --filter status=Published --sort difficulty --dir desc

  # Search accounts
  arenaboard list accounts --search ali --limit 0`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return models.DefaultDataModel().TableNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := fromContext(cmd.Context())
			if !cmd.Flags().Changed("limit") {
				opts.limit = a.cfg.Table.DefaultLimit
			}
			values, err := opts.values()
			if err != nil {
				return err
			}
			q := query.NewQuery(&url.URL{Path: "/tables/" + args[0], RawQuery: values.Encode()})

			backend, err := a.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			return runList(cmd.Context(), cmd.OutOrStdout(), backend, args[0], q)
		},
	}

	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Free-text search over the searchable columns")
	cmd.Flags().StringArrayVarP(&opts.filters, "filter", "f", nil, "Column filter as column=value (repeatable)")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "Column to sort by")
	cmd.Flags().StringVar(&opts.dir, "dir", "asc", "Sort direction (asc|desc)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", query.DefaultLimit, "Rows to print (0 = all)")
	cmd.Flags().StringSliceVar(&opts.selects, "select", nil, "Identifiers of rows to mark as selected")
	return cmd
}

// runList fetches the table and prints the derived view.
func runList(ctx context.Context, w io.Writer, backend datasources.Backend, name string, q *query.Query) error {
	dm := models.DefaultDataModel()
	if _, ok := dm.GetTable(name); !ok {
		return fmt.Errorf("unknown table %q (tables: %s)", name, strings.Join(dm.TableNames(), ", "))
	}

	switch name {
	case models.AccountsTableName:
		rows, err := backend.ListAccounts(ctx)
		if err != nil {
			return err
		}
		return printRows(w, rows, models.AccountColumns(), q)
	case models.QuestionsTableName:
		rows, err := backend.ListQuestions(ctx)
		if err != nil {
			return err
		}
		return printRows(w, rows, models.QuestionColumns(), q)
	case models.LeaderboardTableName:
		rows, err := backend.Leaderboard(ctx)
		if err != nil {
			return err
		}
		return printRows(w, rows, models.StandingColumns(), q)
	case models.ColumnsTableName:
		t, err := models.BuildColumnsTable(dm)
		if err != nil {
			return err
		}
		return printTable(w, t, models.ColumnInfoColumns(), q)
	default:
		return fmt.Errorf("table %q cannot be listed", name)
	}
}

func printRows[R tables.Record](w io.Writer, rows []R, cols columns.Set[R], q *query.Query) error {
	t, err := tables.NewTable(rows)
	if err != nil {
		return err
	}
	return printTable(w, t, cols, q)
}

func printTable[R tables.Record](w io.Writer, t *tables.Table[R], cols columns.Set[R], q *query.Query) error {
	errs := tables.ValidateState(q.State(), cols)
	for _, key := range slices.Sorted(maps.Keys(errs)) {
		_, _ = fmt.Fprintf(w, "ignoring: %s\n", errs[key])
	}
	res := tables.Derive(t, cols, q.State())
	return tables.WriteText(w, cols, res, q.Selection(), q.SortState())
}

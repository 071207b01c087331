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

package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/arenaboard/core/columns"
	"github.com/google/arenaboard/core/models"
	"github.com/google/arenaboard/core/query"
	"github.com/google/arenaboard/core/selection"
	"github.com/google/arenaboard/core/tables"
	"github.com/google/arenaboard/core/views"
	"github.com/google/arenaboard/datasources"
)

// snapshot is a fetched table together with its columns. Snapshots are immutable;
// deleting rows produces a new snapshot.
type snapshot interface {
	Len() int
	Contains(id string) bool
	Without(ids ...string) snapshot
	View(page views.Page, q *query.Query, sel selection.Selection) views.TableViewModel
}

type tableSnapshot[R tables.Record] struct {
	table *tables.Table[R]
	cols  columns.Set[R]
}

func (s *tableSnapshot[R]) Len() int { return s.table.Len() }

func (s *tableSnapshot[R]) Contains(id string) bool { return s.table.Contains(id) }

func (s *tableSnapshot[R]) Without(ids ...string) snapshot {
	return &tableSnapshot[R]{table: s.table.Without(ids...), cols: s.cols}
}

func (s *tableSnapshot[R]) View(page views.Page, q *query.Query, sel selection.Selection) views.TableViewModel {
	res := tables.Derive(s.table, s.cols, q.State())
	errs := tables.ValidateState(q.State(), s.cols)
	return views.BuildTableViewModel(page, s.cols, res, q, sel, errs)
}

// binding connects a catalog table to the backend calls serving it.
type binding struct {
	fetch  func(ctx context.Context) (snapshot, error)
	delete func(ctx context.Context, ids []string) (int, error) // nil for read-only tables
}

func fetcher[R tables.Record](cols columns.Set[R], list func(context.Context) ([]R, error)) func(context.Context) (snapshot, error) {
	return func(ctx context.Context) (snapshot, error) {
		rows, err := list(ctx)
		if err != nil {
			return nil, err
		}
		t, err := tables.NewTable(rows)
		if err != nil {
			return nil, fmt.Errorf("invalid records: %w", err)
		}
		return &tableSnapshot[R]{table: t, cols: cols}, nil
	}
}

// bindTables returns the bindings of the platform tables and the system tables.
func bindTables(backend datasources.Backend, dm *models.DataModel) map[string]binding {
	return map[string]binding{
		models.AccountsTableName: {
			fetch:  fetcher(models.AccountColumns(), backend.ListAccounts),
			delete: backend.DeleteAccounts,
		},
		models.QuestionsTableName: {
			fetch:  fetcher(models.QuestionColumns(), backend.ListQuestions),
			delete: backend.DeleteQuestions,
		},
		models.LeaderboardTableName: {
			fetch: fetcher(models.StandingColumns(), backend.Leaderboard),
		},
		models.ColumnsTableName: {
			fetch: func(context.Context) (snapshot, error) {
				t, err := models.BuildColumnsTable(dm)
				if err != nil {
					return nil, err
				}
				return &tableSnapshot[models.ColumnInfo]{table: t, cols: models.ColumnInfoColumns()}, nil
			},
		},
	}
}

// makeCacheKey creates a cache key combining user and table name
// so that each user sees the snapshot fetched with their own token.
func makeCacheKey(userName, tableName string) string {
	if userName == "" {
		return tableName
	}
	return userName + ":" + tableName
}

// snapshot returns the cached snapshot of the table for the user, fetching it when
// it is missing, expired or refresh is set. A fetch whose context is canceled
// leaves the cache untouched.
func (s *Server) snapshot(ctx context.Context, userName, tableName string, b binding, refresh bool) (snapshot, error) {
	key := makeCacheKey(userName, tableName)
	if !refresh {
		if snap, ok := s.cache.Get(key); ok {
			s.metrics.cacheLookups.WithLabelValues("hit").Inc()
			return snap, nil
		}
	}
	s.metrics.cacheLookups.WithLabelValues("miss").Inc()

	start := time.Now()
	snap, err := b.fetch(ctx)
	s.metrics.fetchDuration.WithLabelValues(tableName).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.cache.Add(key, snap)
	return snap, nil
}

// derivedTables lists the tables whose rows are computed from another table.
var derivedTables = map[string][]string{
	models.AccountsTableName: {models.LeaderboardTableName},
}

// forgetDeleted updates the caches after rows were deleted: the user's own
// snapshot drops the rows, other users' snapshots of the table are evicted, and
// every snapshot of a table derived from it is evicted.
func (s *Server) forgetDeleted(userName, tableName string, ids []string) {
	own := makeCacheKey(userName, tableName)
	s.evict(tableName, own)
	for _, derived := range derivedTables[tableName] {
		s.evict(derived, "")
	}
	if snap, ok := s.cache.Peek(own); ok {
		s.cache.Add(own, snap.Without(ids...))
	}
}

// evict removes the cached snapshots of the table for all users except keep.
func (s *Server) evict(tableName, keep string) {
	for _, key := range s.cache.Keys() {
		if key == keep {
			continue
		}
		if key == tableName || strings.HasSuffix(key, ":"+tableName) {
			s.cache.Remove(key)
		}
	}
}

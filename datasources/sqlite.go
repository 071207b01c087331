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

package datasources

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/arenaboard/core/auth"
	"github.com/google/arenaboard/core/models"
	"github.com/pressly/goose/v3"
	// Register modernc SQLite driver with database/sql.
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var gooseInitMu sync.Mutex

// SQLiteStore is a Backend persisted in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the database at path, ":memory:" included, and applies the
// embedded migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite: path is required")
	}

	memory := path == ":memory:"
	if !memory {
		path = filepath.Clean(path)
	}
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if !memory {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	if memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping database: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func applyMigrations(ctx context.Context, db *sql.DB) error {
	gooseInitMu.Lock()
	defer func() {
		goose.SetBaseFS(nil)
		gooseInitMu.Unlock()
	}()
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("sqlite: set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("sqlite: apply migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, email, role, active, created_at FROM accounts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var (
			a       models.Account
			role    string
			created int64
		)
		if err := rows.Scan(&a.ID, &a.Username, &a.Email, &role, &a.Active, &created); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Role = auth.Role(role)
		a.CreatedAt = fromMillis(created)
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (s *SQLiteStore) ListQuestions(ctx context.Context) ([]models.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, difficulty, status, category, acceptance, created_at FROM questions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var (
			q       models.Question
			created int64
		)
		if err := rows.Scan(&q.ID, &q.Title, &q.Difficulty, &q.Status, &q.Category, &q.Acceptance, &created); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.CreatedAt = fromMillis(created)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

func (s *SQLiteStore) Leaderboard(ctx context.Context) ([]models.Standing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.account_id, a.username, s.score, s.solved, s.last_submission
		FROM scores s JOIN accounts a ON a.id = s.account_id`)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var standings []models.Standing
	for rows.Next() {
		var (
			st   models.Standing
			last int64
		)
		if err := rows.Scan(&st.AccountID, &st.Username, &st.Score, &st.Solved, &last); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		st.LastSubmission = fromMillis(last)
		standings = append(standings, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return Rank(standings), nil
}

func (s *SQLiteStore) DeleteAccounts(ctx context.Context, ids []string) (int, error) {
	return s.deleteIDs(ctx, "accounts", ids)
}

func (s *SQLiteStore) DeleteQuestions(ctx context.Context, ids []string) (int, error) {
	return s.deleteIDs(ctx, "questions", ids)
}

// deleteIDs deletes the rows of table in a single transaction.
func (s *SQLiteStore) deleteIDs(ctx context.Context, table string, ids []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	return int(n), nil
}

// Seed inserts or replaces the dataset's records.
func (s *SQLiteStore) Seed(ctx context.Context, ds Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer tx.Rollback()

	for _, a := range ds.Accounts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (id, username, email, role, active, created_at) VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET username = excluded.username, email = excluded.email,
			   role = excluded.role, active = excluded.active, created_at = excluded.created_at`,
			a.ID, a.Username, a.Email, string(a.Role), a.Active, toMillis(a.CreatedAt)); err != nil {
			return fmt.Errorf("seed account %s: %w", a.ID, err)
		}
	}
	for _, q := range ds.Questions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO questions (id, title, difficulty, status, category, acceptance, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET title = excluded.title, difficulty = excluded.difficulty,
			   status = excluded.status, category = excluded.category, acceptance = excluded.acceptance,
			   created_at = excluded.created_at`,
			q.ID, q.Title, q.Difficulty, q.Status, q.Category, q.Acceptance, toMillis(q.CreatedAt)); err != nil {
			return fmt.Errorf("seed question %s: %w", q.ID, err)
		}
	}
	for _, st := range ds.Standings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scores (account_id, score, solved, last_submission) VALUES (?, ?, ?, ?)
			 ON CONFLICT(account_id) DO UPDATE SET score = excluded.score, solved = excluded.solved,
			   last_submission = excluded.last_submission`,
			st.AccountID, st.Score, st.Solved, toMillis(st.LastSubmission)); err != nil {
			return fmt.Errorf("seed standing %s: %w", st.AccountID, err)
		}
	}
	return tx.Commit()
}

// SQLiteOpener opens SQLite stores from Config.Path.
type SQLiteOpener struct{}

// SourceType returns "sqlite".
func (SQLiteOpener) SourceType() string { return "sqlite" }

func (SQLiteOpener) Open(ctx context.Context, cfg Config) (Backend, error) {
	return OpenSQLite(ctx, cfg.Path)
}

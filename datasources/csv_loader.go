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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/arenaboard/core/auth"
	"github.com/google/arenaboard/core/models"
	"github.com/google/uuid"
)

// CSV seed files. The first row is a header; columns are matched by name and may
// appear in any order. Rows without an id get a random one.
const (
	AccountsFile  = "accounts.csv"
	QuestionsFile = "questions.csv"
	StandingsFile = "standings.csv"
)

// csvRow is a record keyed by header name.
type csvRow struct {
	line   int
	values map[string]string
}

func (r csvRow) get(key string) string {
	return strings.TrimSpace(r.values[key])
}

func (r csvRow) id(key string) string {
	if id := r.get(key); id != "" {
		return id
	}
	return uuid.New().String()
}

func (r csvRow) int(key string) (int, error) {
	s := r.get(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("line %d: %s: %w", r.line, key, err)
	}
	return n, nil
}

func (r csvRow) float(key string) (float64, error) {
	s := strings.TrimSuffix(r.get(key), "%")
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: %s: %w", r.line, key, err)
	}
	return f, nil
}

func (r csvRow) bool(key string, def bool) (bool, error) {
	switch strings.ToLower(r.get(key)) {
	case "":
		return def, nil
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("line %d: %s: invalid boolean %q", r.line, key, r.get(key))
	}
}

// time accepts RFC 3339 timestamps and plain dates.
func (r csvRow) time(key string) (time.Time, error) {
	s := r.get(key)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("line %d: %s: invalid time %q", r.line, key, s)
}

// readCSV reads all rows, requiring the given header columns.
func readCSV(r io.Reader, required ...string) ([]csvRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("CSV file is empty")
	}

	header := make([]string, len(records[0]))
	present := make(map[string]bool, len(header))
	for i, name := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(name))
		present[header[i]] = true
	}
	for _, name := range required {
		if !present[name] {
			return nil, fmt.Errorf("CSV header is missing column %q", name)
		}
	}

	rows := make([]csvRow, 0, len(records)-1)
	for i, record := range records[1:] {
		row := csvRow{line: i + 2, values: make(map[string]string, len(header))}
		for j, name := range header {
			if j < len(record) {
				row.values[name] = record[j]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadAccountsCSV reads accounts. Required columns: username, role.
func LoadAccountsCSV(r io.Reader) ([]models.Account, error) {
	rows, err := readCSV(r, "username", "role")
	if err != nil {
		return nil, err
	}

	accounts := make([]models.Account, 0, len(rows))
	for _, row := range rows {
		role := auth.Role(strings.ToLower(row.get("role")))
		if !role.Known() {
			return nil, fmt.Errorf("line %d: unknown role %q", row.line, row.get("role"))
		}
		active, err := row.bool("active", true)
		if err != nil {
			return nil, err
		}
		created, err := row.time("created_at")
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, models.Account{
			ID:        row.id("id"),
			Username:  row.get("username"),
			Email:     row.get("email"),
			Role:      role,
			Active:    active,
			CreatedAt: created,
		})
	}
	return accounts, nil
}

// LoadQuestionsCSV reads questions. Required columns: title, difficulty.
func LoadQuestionsCSV(r io.Reader) ([]models.Question, error) {
	rows, err := readCSV(r, "title", "difficulty")
	if err != nil {
		return nil, err
	}

	questions := make([]models.Question, 0, len(rows))
	for _, row := range rows {
		acceptance, err := row.float("acceptance")
		if err != nil {
			return nil, err
		}
		created, err := row.time("created_at")
		if err != nil {
			return nil, err
		}
		status := row.get("status")
		if status == "" {
			status = models.StatusDraft
		}
		questions = append(questions, models.Question{
			ID:         row.id("id"),
			Title:      row.get("title"),
			Difficulty: row.get("difficulty"),
			Status:     status,
			Category:   row.get("category"),
			Acceptance: acceptance,
			CreatedAt:  created,
		})
	}
	return questions, nil
}

// LoadStandingsCSV reads leaderboard entries. Required columns: account_id, score.
// Ranks are not read; they are assigned by Rank.
func LoadStandingsCSV(r io.Reader) ([]models.Standing, error) {
	rows, err := readCSV(r, "account_id", "score")
	if err != nil {
		return nil, err
	}

	standings := make([]models.Standing, 0, len(rows))
	for _, row := range rows {
		if row.get("account_id") == "" {
			return nil, fmt.Errorf("line %d: account_id is required", row.line)
		}
		score, err := row.int("score")
		if err != nil {
			return nil, err
		}
		solved, err := row.int("solved")
		if err != nil {
			return nil, err
		}
		last, err := row.time("last_submission")
		if err != nil {
			return nil, err
		}
		standings = append(standings, models.Standing{
			AccountID:      row.get("account_id"),
			Username:       row.get("username"),
			Score:          score,
			Solved:         solved,
			LastSubmission: last,
		})
	}
	return standings, nil
}

// LoadDatasetDir reads the seed files found in dir. Missing files are skipped.
// Standings without a username take it from the matching account.
func LoadDatasetDir(dir string) (Dataset, error) {
	var ds Dataset

	open := func(name string, load func(io.Reader) error) error {
		f, err := os.Open(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		defer f.Close()
		if err := load(f); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}

	if err := open(AccountsFile, func(r io.Reader) (err error) {
		ds.Accounts, err = LoadAccountsCSV(r)
		return err
	}); err != nil {
		return Dataset{}, err
	}
	if err := open(QuestionsFile, func(r io.Reader) (err error) {
		ds.Questions, err = LoadQuestionsCSV(r)
		return err
	}); err != nil {
		return Dataset{}, err
	}
	if err := open(StandingsFile, func(r io.Reader) (err error) {
		ds.Standings, err = LoadStandingsCSV(r)
		return err
	}); err != nil {
		return Dataset{}, err
	}

	ds.FillUsernames()
	return ds, nil
}

// FillUsernames copies account usernames into standings that lack one.
func (ds *Dataset) FillUsernames() {
	names := make(map[string]string, len(ds.Accounts))
	for _, a := range ds.Accounts {
		names[a.ID] = a.Username
	}
	for i := range ds.Standings {
		if ds.Standings[i].Username == "" {
			ds.Standings[i].Username = names[ds.Standings[i].AccountID]
		}
	}
}

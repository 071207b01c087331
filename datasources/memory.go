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
	"slices"
	"sync"

	"github.com/google/arenaboard/core/models"
)

// MemoryBackend keeps records in memory. Deleting an account also removes its
// leaderboard entry.
type MemoryBackend struct {
	mu sync.RWMutex
	ds Dataset
}

// NewMemoryBackend creates a backend holding a copy of the dataset.
func NewMemoryBackend(ds Dataset) *MemoryBackend {
	b := &MemoryBackend{}
	b.ds = cloneDataset(ds)
	return b
}

func cloneDataset(ds Dataset) Dataset {
	return Dataset{
		Accounts:  slices.Clone(ds.Accounts),
		Questions: slices.Clone(ds.Questions),
		Standings: slices.Clone(ds.Standings),
	}
}

func (b *MemoryBackend) ListAccounts(ctx context.Context) ([]models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.ds.Accounts), nil
}

func (b *MemoryBackend) DeleteAccounts(ctx context.Context, ids []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	drop := idSet(ids)

	b.mu.Lock()
	defer b.mu.Unlock()
	before := len(b.ds.Accounts)
	b.ds.Accounts = slices.DeleteFunc(b.ds.Accounts, func(a models.Account) bool { return drop[a.ID] })
	b.ds.Standings = slices.DeleteFunc(b.ds.Standings, func(s models.Standing) bool { return drop[s.AccountID] })
	return before - len(b.ds.Accounts), nil
}

func (b *MemoryBackend) ListQuestions(ctx context.Context) ([]models.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.ds.Questions), nil
}

func (b *MemoryBackend) DeleteQuestions(ctx context.Context, ids []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	drop := idSet(ids)

	b.mu.Lock()
	defer b.mu.Unlock()
	before := len(b.ds.Questions)
	b.ds.Questions = slices.DeleteFunc(b.ds.Questions, func(q models.Question) bool { return drop[q.ID] })
	return before - len(b.ds.Questions), nil
}

// Leaderboard returns the standings ranked by score.
func (b *MemoryBackend) Leaderboard(ctx context.Context) ([]models.Standing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	standings := slices.Clone(b.ds.Standings)
	b.mu.RUnlock()
	return Rank(standings), nil
}

// Seed replaces the stored records.
func (b *MemoryBackend) Seed(ctx context.Context, ds Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ds = cloneDataset(ds)
	return nil
}

func (b *MemoryBackend) Close() error { return nil }

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// Rank orders standings by score (descending), then solved count (descending),
// then earliest last submission, and assigns ranks starting at 1. Entries with the
// same score, solved count and last submission share a rank.
func Rank(standings []models.Standing) []models.Standing {
	slices.SortStableFunc(standings, compareStandings)
	for i := range standings {
		if i > 0 && compareStandings(standings[i-1], standings[i]) == 0 {
			standings[i].Rank = standings[i-1].Rank
		} else {
			standings[i].Rank = i + 1
		}
	}
	return standings
}

func compareStandings(a, b models.Standing) int {
	switch {
	case a.Score != b.Score:
		return b.Score - a.Score
	case a.Solved != b.Solved:
		return b.Solved - a.Solved
	default:
		return a.LastSubmission.Compare(b.LastSubmission)
	}
}

// MemoryOpener opens memory backends holding the dataset returned by Load.
type MemoryOpener struct {
	Load func() (Dataset, error)
}

// SourceType returns "memory".
func (MemoryOpener) SourceType() string { return "memory" }

func (o MemoryOpener) Open(ctx context.Context, _ Config) (Backend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ds Dataset
	if o.Load != nil {
		var err error
		if ds, err = o.Load(); err != nil {
			return nil, err
		}
	}
	return NewMemoryBackend(ds), nil
}

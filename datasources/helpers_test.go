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
	"time"

	"github.com/google/arenaboard/core/auth"
	"github.com/google/arenaboard/core/models"
)

func at(day int) time.Time {
	return time.Date(2024, 5, day, 12, 0, 0, 0, time.UTC)
}

func sampleDataset() Dataset {
	return Dataset{
		Accounts: []models.Account{
			{ID: "a1", Username: "alice", Email: "alice@arena.dev", Role: auth.RoleAdmin, Active: true, CreatedAt: at(1)},
			{ID: "a2", Username: "bob", Email: "bob@example.com", Role: auth.RoleContestant, Active: true, CreatedAt: at(2)},
			{ID: "a3", Username: "carol", Email: "carol@example.com", Role: auth.RoleContestant, Active: false, CreatedAt: at(3)},
		},
		Questions: []models.Question{
			{ID: "q1", Title: "Two Sum", Difficulty: models.DifficultyEasy, Status: models.StatusPublished, Category: "Arrays", Acceptance: 49.5, CreatedAt: at(1)},
			{ID: "q2", Title: "Word Ladder", Difficulty: models.DifficultyHard, Status: models.StatusDraft, Category: "Graphs", Acceptance: 37.5, CreatedAt: at(2)},
		},
		Standings: []models.Standing{
			{AccountID: "a2", Username: "bob", Score: 900, Solved: 5, LastSubmission: at(10)},
			{AccountID: "a3", Username: "carol", Score: 1200, Solved: 7, LastSubmission: at(11)},
		},
	}
}

func ids[R interface{ RecordID() string }](rows []R) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.RecordID()
	}
	return out
}

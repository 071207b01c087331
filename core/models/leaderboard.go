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

package models

import (
	"time"

	"github.com/google/arenaboard/core/columns"
)

// Standing is one leaderboard entry.
type Standing struct {
	AccountID      string    `json:"account_id"`
	Rank           int       `json:"rank"`
	Username       string    `json:"username"`
	Score          int       `json:"score"`
	Solved         int       `json:"solved"`
	LastSubmission time.Time `json:"last_submission"`
}

func (s Standing) RecordID() string { return s.AccountID }

// StandingColumns returns the columns of the leaderboard.
func StandingColumns() columns.Set[Standing] {
	return columns.MustSet(
		columns.Def[Standing]{
			Key: "rank", Header: "Rank", Sortable: true,
			Value: func(s Standing) columns.Value { return columns.Int(int64(s.Rank)) },
		},
		columns.Def[Standing]{
			Key: "username", Header: "Username", Sortable: true, Searchable: true,
			Value: func(s Standing) columns.Value { return columns.Text(s.Username) },
		},
		columns.Def[Standing]{
			Key: "score", Header: "Score", Sortable: true,
			Value: func(s Standing) columns.Value { return columns.Int(int64(s.Score)) },
		},
		columns.Def[Standing]{
			Key: "solved", Header: "Solved", Sortable: true,
			Value: func(s Standing) columns.Value { return columns.Int(int64(s.Solved)) },
		},
		columns.Def[Standing]{
			Key: "last_submission", Header: "Last submission", Sortable: true,
			Value: func(s Standing) columns.Value { return columns.Datetime(s.LastSubmission) },
		},
	)
}

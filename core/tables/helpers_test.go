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

package tables

import (
	"time"

	"github.com/google/arenaboard/core/columns"
)

type question struct {
	id         string
	title      string
	difficulty string
	points     int
	created    time.Time
}

func (q question) RecordID() string { return q.id }

var questionColumns = columns.MustSet(
	columns.Def[question]{
		Key: "title", Header: "Title", Sortable: true, Searchable: true,
		Value: func(q question) columns.Value { return columns.Text(q.title) },
	},
	columns.Def[question]{
		Key: "difficulty", Header: "Difficulty", Sortable: true,
		Choices: []string{"Easy", "Medium", "Hard"},
		Value:   func(q question) columns.Value { return columns.Text(q.difficulty) },
	},
	columns.Def[question]{
		Key: "points", Header: "Points", Sortable: true,
		Value: func(q question) columns.Value { return columns.Int(int64(q.points)) },
	},
	columns.Def[question]{
		Key: "created", Header: "Created", Sortable: true,
		Value: func(q question) columns.Value { return columns.Datetime(q.created) },
	},
	columns.Def[question]{
		Key: "notes", Header: "Notes",
	},
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
}

func sampleQuestions() []question {
	return []question{
		{id: "1", title: "Two Sum", difficulty: "Easy", points: 10, created: day(5)},
		{id: "2", title: "Palindrome", difficulty: "Medium", points: 20, created: day(2)},
		{id: "3", title: "Merge Intervals", difficulty: "Medium", points: 20, created: day(9)},
		{id: "4", title: "two pointers", difficulty: "Easy", points: 5, created: day(1)},
		{id: "5", title: "Median of Arrays", difficulty: "Hard", points: 40, created: day(7)},
		{id: "6", title: "Valid Parentheses", difficulty: "Easy", points: 10, created: day(3)},
	}
}

func mustTable[R Record](rows []R) *Table[R] {
	t, err := NewTable(rows)
	if err != nil {
		panic(err)
	}
	return t
}

func idsAt(t *Table[question], positions []int) []string {
	ids := make([]string, len(positions))
	for i, pos := range positions {
		ids[i] = t.Row(pos).RecordID()
	}
	return ids
}

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
	"math/rand"
	"slices"
	"strconv"
	"testing"

	"github.com/google/arenaboard/core/columns"
	"github.com/stretchr/testify/assert"
)

func allPositions(t *Table[question]) []int {
	positions := make([]int, t.Len())
	for i := range positions {
		positions[i] = i
	}
	return positions
}

func TestSortStateNext(t *testing.T) {
	var s SortState
	assert.False(t, s.IsSorted())

	s = s.Next("title")
	assert.Equal(t, SortState{Column: "title", Direction: Ascending}, s)

	s = s.Next("title")
	assert.Equal(t, SortState{Column: "title", Direction: Descending}, s)

	s = s.Next("title")
	assert.Equal(t, SortState{}, s)
	assert.False(t, s.IsSorted())

	s = SortState{Column: "title", Direction: Descending}.Next("points")
	assert.Equal(t, SortState{Column: "points", Direction: Ascending}, s, "another column starts ascending")
}

func TestDirectionOf(t *testing.T) {
	s := SortState{Column: "points", Direction: Descending}
	assert.Equal(t, Descending, s.DirectionOf("points"))
	assert.Equal(t, Unsorted, s.DirectionOf("title"))
	assert.Equal(t, Unsorted, SortState{Column: "points"}.DirectionOf("points"))
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Ascending, ParseDirection("asc"))
	assert.Equal(t, Descending, ParseDirection("desc"))
	assert.Equal(t, Unsorted, ParseDirection(""))
	assert.Equal(t, Unsorted, ParseDirection("sideways"))
	for _, d := range []Direction{Unsorted, Ascending, Descending} {
		assert.Equal(t, d, ParseDirection(d.String()))
	}
}

func TestSort(t *testing.T) {
	table := mustTable(sampleQuestions())

	tests := []struct {
		name     string
		state    SortState
		expected []string
	}{
		{"unsorted keeps insertion order", SortState{}, []string{"1", "2", "3", "4", "5", "6"}},
		{"text ascending", SortState{"title", Ascending}, []string{"5", "3", "2", "1", "6", "4"}},
		{"number ascending keeps ties in insertion order", SortState{"points", Ascending}, []string{"4", "1", "6", "2", "3", "5"}},
		{"number descending keeps ties in insertion order", SortState{"points", Descending}, []string{"5", "2", "3", "1", "6", "4"}},
		{"datetime ascending", SortState{"created", Ascending}, []string{"4", "2", "6", "1", "5", "3"}},
		{"unknown column is ignored", SortState{"status", Ascending}, []string{"1", "2", "3", "4", "5", "6"}},
		{"non-sortable column is ignored", SortState{"notes", Ascending}, []string{"1", "2", "3", "4", "5", "6"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sort(table, questionColumns, allPositions(table), tt.state, 0)
			assert.Equal(t, tt.expected, idsAt(table, got))
		})
	}
}

func TestSortDescendingReversesDistinctKeys(t *testing.T) {
	table := mustTable(sampleQuestions())
	positions := allPositions(table)

	asc := idsAt(table, Sort(table, questionColumns, positions, SortState{"created", Ascending}, 0))
	desc := idsAt(table, Sort(table, questionColumns, positions, SortState{"created", Descending}, 0))

	reversed := slices.Clone(asc)
	slices.Reverse(reversed)
	assert.Equal(t, reversed, desc)
}

func TestSortDoesNotModifyInput(t *testing.T) {
	table := mustTable(sampleQuestions())
	positions := []int{5, 4, 3, 2, 1, 0}
	Sort(table, questionColumns, positions, SortState{"points", Ascending}, 0)
	assert.Equal(t, []int{5, 4, 3, 2, 1, 0}, positions)
}

func TestSortNullsLast(t *testing.T) {
	rows := []question{
		{id: "a", created: day(3)},
		{id: "b"},
		{id: "c", created: day(1)},
	}
	table := mustTable(rows)
	positions := allPositions(table)

	asc := Sort(table, questionColumns, positions, SortState{"created", Ascending}, 0)
	assert.Equal(t, []string{"c", "a", "b"}, idsAt(table, asc))
}

func TestSortWithLimitMatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rows := make([]question, 200)
	for i := range rows {
		rows[i] = question{
			id:     strconv.Itoa(i),
			title:  "q" + strconv.Itoa(rng.Intn(50)),
			points: rng.Intn(20),
		}
	}
	table := mustTable(rows)
	positions := allPositions(table)

	for _, state := range []SortState{
		{"points", Ascending},
		{"points", Descending},
		{"title", Ascending},
		{"title", Descending},
	} {
		full := Sort(table, questionColumns, positions, state, 0)
		for _, limit := range []int{1, 7, 25, 199, 200, 500} {
			got := Sort(table, questionColumns, positions, state, limit)
			want := full[:min(limit, len(full))]
			assert.Equal(t, want, got, "state %v limit %d", state, limit)
		}
	}
}

func TestCompareKeysBreaksTiesByPosition(t *testing.T) {
	a := sortKey{pos: 1, value: columns.Int(5)}
	b := sortKey{pos: 2, value: columns.Int(5)}
	assert.Equal(t, -1, compareKeys(a, b, false))
	assert.Equal(t, -1, compareKeys(a, b, true))
	assert.Equal(t, 1, compareKeys(b, a, true))
}

func TestValidateSort(t *testing.T) {
	tests := []struct {
		name    string
		state   SortState
		message string
	}{
		{"sortable column", SortState{Column: "title", Direction: Ascending}, ""},
		{"unsorted state", SortState{Column: "bogus"}, ""},
		{"unknown column", SortState{Column: "bogus", Direction: Ascending}, "sort column 'bogus' does not exist"},
		{"non-sortable column", SortState{Column: "notes", Direction: Descending}, "column 'notes' cannot be sorted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, bad := ValidateSort(tt.state, questionColumns)
			assert.Equal(t, tt.message != "", bad)
			assert.Equal(t, tt.message, msg)
		})
	}
}

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

package views

import (
	"net/url"
	"testing"

	"github.com/google/arenaboard/core/models"
	"github.com/google/arenaboard/core/query"
	"github.com/google/arenaboard/core/selection"
	"github.com/google/arenaboard/core/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questions() []models.Question {
	return []models.Question{
		{ID: "1", Title: "Two Sum", Difficulty: "Easy", Status: "Published", Category: "Arrays", Acceptance: 50},
		{ID: "2", Title: "Palindrome", Difficulty: "Medium", Status: "Draft", Category: "Strings", Acceptance: 30},
	}
}

func build(t *testing.T, rows []models.Question, rawURL string, canDelete bool) TableViewModel {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	q := query.NewQuery(u)

	table, err := tables.NewTable(rows)
	require.NoError(t, err)
	cols := models.QuestionColumns()
	res := tables.Derive(table, cols, q.State())

	page := Page{Title: "Questions", TableName: "questions", CanDelete: canDelete}
	return BuildTableViewModel(page, cols, res, q, q.Selection(), tables.Validate(q.FilterState(), cols))
}

func follow(t *testing.T, rows []models.Question, u interface{ String() string }) TableViewModel {
	t.Helper()
	return build(t, rows, u.String(), true)
}

func rowIDs(vm TableViewModel) []string {
	var ids []string
	for _, r := range vm.Rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestEmptyTableShowsPlaceholder(t *testing.T) {
	vm := build(t, nil, "/tables/questions", true)

	assert.True(t, vm.NoResults)
	assert.Equal(t, "No results.", vm.EmptyMessage)
	assert.Empty(t, vm.Rows)
	assert.Equal(t, 7, vm.ColumnCount, "placeholder spans the checkbox and every column")
	assert.Len(t, vm.Headers, 6, "headers are still rendered")
	assert.Equal(t, "unchecked", vm.SelectAll.State)
	assert.True(t, vm.SelectAll.Disabled)
}

func TestTwoSumScenario(t *testing.T) {
	rows := questions()

	vm := build(t, rows, "/tables/questions", true)
	assert.Equal(t, []string{"1", "2"}, rowIDs(vm))

	searched := follow(t, rows, query.NewQuery(&url.URL{Path: "/tables/questions"}).WithSearch("Two Sum"))
	assert.Equal(t, []string{"1"}, rowIDs(searched))

	easy := build(t, rows, "/tables/questions?filter:difficulty=Easy", true)
	assert.Equal(t, []string{"1"}, rowIDs(easy))

	var difficulty FilterControl
	for _, fc := range easy.Filters {
		if fc.Key == "difficulty" {
			difficulty = fc
		}
	}
	require.Equal(t, "difficulty", difficulty.Key)
	assert.True(t, difficulty.Active)
	assert.Equal(t, "Easy", difficulty.Value)
	require.Len(t, difficulty.Options, 4)
	assert.Equal(t, "All", difficulty.Options[0].Label)
	assert.True(t, difficulty.Options[1].Selected)

	cleared := follow(t, rows, difficulty.Options[0].URL)
	assert.Equal(t, []string{"1", "2"}, rowIDs(cleared))

	none := build(t, rows, "/tables/questions?q=graph", true)
	assert.True(t, none.NoResults)
	assert.Equal(t, 2, none.TotalRows)
	assert.Equal(t, 0, none.MatchedRows)
}

func TestSelectAllStates(t *testing.T) {
	rows := questions()

	tests := []struct {
		name          string
		url           string
		state         string
		aria          string
		checked       bool
		indeterminate bool
	}{
		{"nothing selected", "/tables/questions", "unchecked", "false", false, false},
		{"all visible selected", "/tables/questions?sel=1,2", "checked", "true", true, false},
		{"some selected", "/tables/questions?sel=2", "indeterminate", "mixed", false, true},
		{"visible rows selected under a filter", "/tables/questions?sel=1&filter:difficulty=Easy", "checked", "true", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := build(t, rows, tt.url, true)
			assert.Equal(t, tt.state, vm.SelectAll.State)
			assert.Equal(t, tt.aria, vm.SelectAll.AriaChecked)
			assert.Equal(t, tt.checked, vm.SelectAll.Checked)
			assert.Equal(t, tt.indeterminate, vm.SelectAll.Indeterminate)
		})
	}
}

func TestSelectAllToggle(t *testing.T) {
	rows := questions()

	vm := build(t, rows, "/tables/questions?sel=2", true)
	all := follow(t, rows, vm.SelectAll.ToggleURL)
	assert.Equal(t, "checked", all.SelectAll.State)
	assert.Equal(t, []string{"1", "2"}, all.SelectedIDs)
	assert.True(t, all.Rows[0].Selected)

	none := follow(t, rows, all.SelectAll.ToggleURL)
	assert.Equal(t, "unchecked", none.SelectAll.State)
	assert.Zero(t, none.SelectedCount)

	row := follow(t, rows, none.Rows[1].ToggleURL)
	assert.Equal(t, []string{"2"}, row.SelectedIDs)
	assert.Equal(t, "indeterminate", row.SelectAll.State)
}

func TestHeaders(t *testing.T) {
	rows := questions()

	vm := build(t, rows, "/tables/questions", true)
	require.Len(t, vm.Headers, 6)
	title := vm.Headers[0]
	assert.Equal(t, "Title", title.Label.String())
	assert.True(t, title.Sortable)
	assert.Equal(t, "none", title.AriaSort)
	assert.Empty(t, title.Indicator)

	asc := follow(t, rows, title.SortURL)
	assert.Equal(t, "ascending", asc.Headers[0].AriaSort)
	assert.Equal(t, "▲", asc.Headers[0].Indicator)
	assert.Equal(t, []string{"2", "1"}, rowIDs(asc))

	desc := follow(t, rows, asc.Headers[0].SortURL)
	assert.Equal(t, "descending", desc.Headers[0].AriaSort)
	assert.Equal(t, []string{"1", "2"}, rowIDs(desc))

	off := follow(t, rows, desc.Headers[0].SortURL)
	assert.Equal(t, "none", off.Headers[0].AriaSort)
	assert.Equal(t, []string{"1", "2"}, rowIDs(off))
}

func TestCells(t *testing.T) {
	vm := build(t, questions(), "/tables/questions", true)
	require.Len(t, vm.Rows, 2)
	cells := vm.Rows[0].Cells
	require.Len(t, cells, 6)
	assert.Equal(t, "Two Sum", cells[0].String())
	assert.Contains(t, cells[1].String(), `class="badge badge-easy"`)
	assert.Equal(t, "50.0%", cells[4].String())
}

func TestDeleteAndPagination(t *testing.T) {
	rows := questions()

	vm := build(t, rows, "/tables/questions?sel=1&limit=1", true)
	assert.True(t, vm.CanDelete)
	assert.Contains(t, vm.DeleteURL.String(), "/tables/questions/delete?")
	assert.Contains(t, vm.DeleteURL.String(), "sel=1")
	assert.True(t, vm.HasMoreRows)
	assert.Equal(t, 1, vm.DisplayedRows)
	assert.Equal(t, 0, vm.HiddenSelected)

	more := follow(t, rows, vm.MoreURL)
	assert.Equal(t, 2, more.CurrentLimit)
	assert.False(t, more.HasMoreRows)

	readOnly := build(t, rows, "/tables/questions?sel=1", false)
	assert.False(t, readOnly.CanDelete)
	assert.Empty(t, readOnly.DeleteURL.String())

	nothingSelected := build(t, rows, "/tables/questions", true)
	assert.False(t, nothingSelected.CanDelete)

	hidden := build(t, rows, "/tables/questions?sel=1,2&filter:difficulty=Medium", true)
	assert.Equal(t, 1, hidden.HiddenSelected)
}

func TestFilterErrors(t *testing.T) {
	vm := build(t, questions(), "/tables/questions?filter:nope=1&filter:title=x", true)
	assert.Equal(t, []string{
		"column 'nope' does not exist",
		"column 'title' cannot be filtered",
	}, vm.FilterErrors)
	assert.Len(t, vm.Rows, 2, "invalid filters are ignored")
}

func TestSearchForm(t *testing.T) {
	rows := questions()
	vm := build(t, rows, "/tables/questions?q=x&filter:status=Draft&sort=title&dir=asc&sel=2,1&limit=10", true)
	assert.Equal(t, "/tables/questions", vm.SearchAction.String())
	assert.True(t, vm.HasFilters)

	submitted := build(t, rows, "/tables/questions?q=two&state="+url.QueryEscape(vm.SearchState), true)
	assert.Equal(t, "two", submitted.Search)
	assert.Equal(t, []string{"1", "2"}, submitted.SelectedIDs)
	assert.Equal(t, 10, submitted.CurrentLimit)
	assert.Empty(t, submitted.Rows, "Two Sum is not a draft")
	assert.True(t, submitted.NoResults)
}

func TestSelectionSurvivesFiltering(t *testing.T) {
	rows := questions()
	vm := build(t, rows, "/tables/questions?sel=2", true)
	filtered := follow(t, rows, query.NewQuery(mustURL(t, vm.CurrentURL.String())).WithFilter("difficulty", "Easy"))
	assert.Equal(t, []string{"2"}, filtered.SelectedIDs)
	assert.Equal(t, "indeterminate", filtered.SelectAll.State)
	assert.Equal(t, selection.Indeterminate.String(), filtered.SelectAll.State)
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

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

package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/arenaboard/core/selection"
	"github.com/google/arenaboard/core/tables"
	"github.com/google/safehtml"
)

// DefaultLimit is the number of rows shown when the URL has no limit parameter.
const DefaultLimit = 25

// Query represents the parsed state of a table view URL
type Query struct {
	// Base path (e.g., "/tables/questions")
	Path string

	Search     string            // Free-text search (q)
	Filters    map[string]string // Column filters (columnName -> filterValue)
	SortColumn string            // Active sort column
	SortDir    tables.Direction  // Direction of SortColumn
	Selected   []string          // Selected record identifiers, sorted
	Limit      int               // Number of rows to display (0 = show all)
}

// NewQuery creates a Query from a URL
func NewQuery(u *url.URL) *Query {
	state := &Query{
		Path:    u.Path,
		Filters: make(map[string]string),
		Limit:   DefaultLimit,
	}

	q := u.Query()

	// A search form submits the rest of the state as a single encoded parameter.
	// Parameters present in the URL itself take precedence.
	if encoded := q.Get("state"); encoded != "" {
		if inner, err := url.ParseQuery(encoded); err == nil {
			for key, values := range inner {
				if _, exists := q[key]; !exists && key != "q" && key != "state" {
					q[key] = values
				}
			}
		}
	}

	state.Search = q.Get("q")

	// Sorting is only kept when both the column and a valid direction are present
	state.SortColumn = q.Get("sort")
	state.SortDir = tables.ParseDirection(q.Get("dir"))
	if state.SortColumn == "" || state.SortDir == tables.Unsorted {
		state.SortColumn = ""
		state.SortDir = tables.Unsorted
	}

	// Extract selection parameter (format: id1,id2,id3)
	if selStr := q.Get("sel"); selStr != "" {
		state.Selected = selection.New(strings.Split(selStr, tables.IDSeparator)...).IDs()
	}

	limitStr := q.Get("limit")
	if limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit >= 0 {
			state.Limit = limit
		}
	}

	// Extract filter parameters (format: filter:columnName=value)
	for key, values := range q {
		if strings.HasPrefix(key, "filter:") && len(values) > 0 {
			columnName := strings.TrimPrefix(key, "filter:")
			if columnName != "" && tables.IsActive(values[0]) {
				state.Filters[columnName] = values[0]
			}
		}
	}

	return state
}

// Clone creates a deep copy of the Query
func (s *Query) Clone() *Query {
	clone := &Query{
		Path:       s.Path,
		Search:     s.Search,
		Filters:    make(map[string]string, len(s.Filters)),
		SortColumn: s.SortColumn,
		SortDir:    s.SortDir,
		Selected:   make([]string, len(s.Selected)),
		Limit:      s.Limit,
	}
	for colName, filterValue := range s.Filters {
		clone.Filters[colName] = filterValue
	}
	copy(clone.Selected, s.Selected)
	return clone
}

// FilterState returns the filter layer state encoded in the URL.
func (s *Query) FilterState() tables.FilterState {
	predicates := make(map[string]string, len(s.Filters))
	for colName, filterValue := range s.Filters {
		predicates[colName] = filterValue
	}
	return tables.FilterState{Search: s.Search, Predicates: predicates}
}

// SortState returns the sort layer state encoded in the URL.
func (s *Query) SortState() tables.SortState {
	return tables.SortState{Column: s.SortColumn, Direction: s.SortDir}
}

// Selection returns the selection encoded in the URL.
func (s *Query) Selection() selection.Selection {
	return selection.New(s.Selected...)
}

// State returns the complete table view state.
func (s *Query) State() tables.State {
	return tables.State{
		Filter: s.FilterState(),
		Sort:   s.SortState(),
		Limit:  s.Limit,
	}
}

func (s *Query) setSort(state tables.SortState) {
	if !state.IsSorted() {
		s.SortColumn = ""
		s.SortDir = tables.Unsorted
		return
	}
	s.SortColumn = state.Column
	s.SortDir = state.Direction
}

func (s *Query) setSelection(sel selection.Selection) {
	s.Selected = sel.IDs()
}

// ToURL converts the Query back to a URL string
func (s *Query) ToURL() string {
	u := &url.URL{
		Path: s.Path,
	}

	q := u.Query()

	if s.Search != "" {
		q.Set("q", s.Search)
	}

	// Add filter parameters (format: filter:columnName=value)
	for colName, filterValue := range s.Filters {
		if tables.IsActive(filterValue) {
			q.Set("filter:"+colName, filterValue)
		}
	}

	if s.SortColumn != "" && s.SortDir != tables.Unsorted {
		q.Set("sort", s.SortColumn)
		q.Set("dir", s.SortDir.String())
	}

	if len(s.Selected) > 0 {
		q.Set("sel", strings.Join(s.Selected, tables.IDSeparator))
	}

	// Add limit parameter (always included in URL)
	q.Set("limit", strconv.Itoa(s.Limit))

	u.RawQuery = q.Encode()
	return u.String()
}

// EncodedState returns the query string of the state without the search text, to be
// submitted along with a search form in the "state" parameter.
func (s *Query) EncodedState() string {
	newState := s.Clone()
	newState.Search = ""
	u, err := url.Parse(newState.ToURL())
	if err != nil {
		return ""
	}
	return u.RawQuery
}

// ToSafeURL converts the Query to a safehtml.URL
func (s *Query) ToSafeURL() safehtml.URL {
	urlStr := s.ToURL()
	// URLSanitized sanitizes the input string and returns a URL
	return safehtml.URLSanitized(urlStr)
}

// WithPath returns a URL for the same state on a different path.
func (s *Query) WithPath(path string) safehtml.URL {
	newState := s.Clone()
	newState.Path = path
	return newState.ToSafeURL()
}

// WithSortCycled returns a URL with the sort of the column advanced one step:
// unsorted -> ascending -> descending -> unsorted
func (s *Query) WithSortCycled(column string) safehtml.URL {
	newState := s.Clone()
	newState.setSort(s.SortState().Next(column))
	return newState.ToSafeURL()
}

// WithSearch returns a URL with the free-text search replaced
func (s *Query) WithSearch(search string) safehtml.URL {
	newState := s.Clone()
	newState.Search = search
	return newState.ToSafeURL()
}

// WithFilter returns a URL with the column filter set. Setting "all" or "" removes it.
func (s *Query) WithFilter(column, value string) safehtml.URL {
	newState := s.Clone()
	if tables.IsActive(value) {
		newState.Filters[column] = value
	} else {
		delete(newState.Filters, column)
	}
	return newState.ToSafeURL()
}

// WithoutFilter returns a URL with the column filter removed
func (s *Query) WithoutFilter(column string) safehtml.URL {
	newState := s.Clone()
	delete(newState.Filters, column)
	return newState.ToSafeURL()
}

// WithoutFilters returns a URL with the search and every column filter cleared
func (s *Query) WithoutFilters() safehtml.URL {
	newState := s.Clone()
	newState.Search = ""
	newState.Filters = make(map[string]string)
	return newState.ToSafeURL()
}

// WithRowToggled returns a URL with the row's selection toggled
func (s *Query) WithRowToggled(id string) safehtml.URL {
	newState := s.Clone()
	newState.setSelection(s.Selection().Toggle(id))
	return newState.ToSafeURL()
}

// WithAllToggled returns a URL with the select-all checkbox toggled for the visible rows
func (s *Query) WithAllToggled(visible []string) safehtml.URL {
	newState := s.Clone()
	newState.setSelection(s.Selection().ToggleAll(visible))
	return newState.ToSafeURL()
}

// WithSelection returns a URL with the selection replaced
func (s *Query) WithSelection(sel selection.Selection) safehtml.URL {
	newState := s.Clone()
	newState.setSelection(sel)
	return newState.ToSafeURL()
}

// WithLimit returns a URL with a different row limit
func (s *Query) WithLimit(limit int) safehtml.URL {
	newState := s.Clone()
	newState.Limit = limit
	return newState.ToSafeURL()
}

// IsSelected checks if a record identifier is in the selection
func (s *Query) IsSelected(id string) bool {
	for _, sel := range s.Selected {
		if sel == id {
			return true
		}
	}
	return false
}

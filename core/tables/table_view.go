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
	"github.com/google/arenaboard/core/columns"
)

// State is the view state applied to a table: filtering, sorting and the number of
// rows to show (0 = all).
type State struct {
	Filter FilterState
	Sort   SortState
	Limit  int
}

// Result is the visible part of a table after applying a State.
type Result[R Record] struct {
	Rows    []R      // visible rows, filtered, sorted and limited
	IDs     []string // identifiers of Rows
	Total   int      // rows in the table
	Matched int      // rows matching the filter
}

// Limited reports whether more rows matched than are shown.
func (r Result[R]) Limited() bool {
	return r.Matched > len(r.Rows)
}

// Empty reports whether no rows are visible.
func (r Result[R]) Empty() bool {
	return len(r.Rows) == 0
}

// Derive applies the state to the table. It is a pure function of its inputs.
func Derive[R Record](t *Table[R], cols columns.Set[R], s State) Result[R] {
	filtered := Filter(t, cols, s.Filter)
	sorted := Sort(t, cols, filtered, s.Sort, s.Limit)

	res := Result[R]{
		Rows:    make([]R, len(sorted)),
		IDs:     make([]string, len(sorted)),
		Total:   t.Len(),
		Matched: len(filtered),
	}
	for i, pos := range sorted {
		row := t.Row(pos)
		res.Rows[i] = row
		res.IDs[i] = row.RecordID()
	}
	return res
}

// sortErrorKey keys the sort message in ValidateState. Column keys never contain ':'.
const sortErrorKey = "sort:"

// ValidateState returns the messages of Validate plus the sort message of
// ValidateSort, keyed by column and by "sort:" respectively.
func ValidateState[R any](s State, cols columns.Set[R]) map[string]string {
	errs := Validate(s.Filter, cols)
	if msg, bad := ValidateSort(s.Sort, cols); bad {
		errs[sortErrorKey] = msg
	}
	return errs
}

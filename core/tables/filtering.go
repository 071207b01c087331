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
	"fmt"
	"strings"

	"github.com/google/arenaboard/core/columns"
	"golang.org/x/text/cases"
)

// AllValue is the predicate value that matches every record.
const AllValue = "all"

// FilterState is the free-text search plus the discrete predicate selections.
type FilterState struct {
	Search     string
	Predicates map[string]string // column key -> required display value
}

// IsActive reports whether a predicate value restricts the rows.
func IsActive(value string) bool {
	return value != "" && !strings.EqualFold(value, AllValue)
}

// ActivePredicates returns the predicates that restrict the rows.
func (f FilterState) ActivePredicates() map[string]string {
	active := make(map[string]string)
	for key, value := range f.Predicates {
		if IsActive(value) {
			active[key] = value
		}
	}
	return active
}

// Validate returns an error message per predicate that names an unknown or
// non-filterable column. Such predicates are ignored when filtering.
func Validate[R any](f FilterState, cols columns.Set[R]) map[string]string {
	errs := make(map[string]string)
	for key, value := range f.Predicates {
		if !IsActive(value) {
			continue
		}
		def, ok := cols.Lookup(key)
		if !ok {
			errs[key] = fmt.Sprintf("column '%s' does not exist", key)
			continue
		}
		if !def.Filterable() {
			errs[key] = fmt.Sprintf("column '%s' cannot be filtered", key)
		}
	}
	return errs
}

// Filter returns the positions of the rows matching the filter state, in insertion
// order. A row matches when at least one searchable column contains the search text
// (case-insensitive, whitespace included) and every active predicate equals the
// column's display value exactly.
func Filter[R Record](t *Table[R], cols columns.Set[R], f FilterState) []int {
	folder := cases.Fold()
	needle := folder.String(f.Search)
	searchable := cols.Searchable()

	type predicate struct {
		def   columns.Def[R]
		value string
	}
	var predicates []predicate
	for key, value := range f.ActivePredicates() {
		def, ok := cols.Lookup(key)
		if !ok || !def.Filterable() {
			continue
		}
		predicates = append(predicates, predicate{def: def, value: value})
	}

	positions := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)

		matched := true
		for _, p := range predicates {
			if p.def.ValueOf(row).String() != p.value {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}

		if needle != "" && !containsAny(folder, row, searchable, needle) {
			continue
		}
		positions = append(positions, i)
	}
	return positions
}

// containsAny reports whether any of the columns contains the folded needle.
func containsAny[R any](folder cases.Caser, row R, defs []columns.Def[R], needle string) bool {
	for _, def := range defs {
		if strings.Contains(folder.String(def.ValueOf(row).String()), needle) {
			return true
		}
	}
	return false
}

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
	"container/heap"
	"fmt"
	"slices"

	"github.com/google/arenaboard/core/columns"
)

// Direction is the sort direction of a column.
type Direction int

const (
	Unsorted Direction = iota
	Ascending
	Descending
)

// String returns "asc", "desc" or "".
func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return ""
	}
}

// ParseDirection parses "asc" or "desc". Anything else is Unsorted.
func ParseDirection(s string) Direction {
	switch s {
	case "asc":
		return Ascending
	case "desc":
		return Descending
	default:
		return Unsorted
	}
}

// SortState is the single active sort column and its direction.
type SortState struct {
	Column    string
	Direction Direction
}

// IsSorted reports whether a column is actively sorted.
func (s SortState) IsSorted() bool {
	return s.Column != "" && s.Direction != Unsorted
}

// DirectionOf returns the direction of the column, Unsorted if it is not the active column.
func (s SortState) DirectionOf(column string) Direction {
	if !s.IsSorted() || s.Column != column {
		return Unsorted
	}
	return s.Direction
}

// ValidateSort returns a message when the active sort names an unknown or
// non-sortable column. Such a sort is ignored.
func ValidateSort[R any](s SortState, cols columns.Set[R]) (string, bool) {
	if !s.IsSorted() {
		return "", false
	}
	def, ok := cols.Lookup(s.Column)
	if !ok {
		return fmt.Sprintf("sort column '%s' does not exist", s.Column), true
	}
	if !def.Sortable {
		return fmt.Sprintf("column '%s' cannot be sorted", s.Column), true
	}
	return "", false
}

// Next returns the state after clicking the header of the column:
// Unsorted -> Ascending -> Descending -> Unsorted. Clicking a different column
// starts that column at Ascending.
func (s SortState) Next(column string) SortState {
	switch s.DirectionOf(column) {
	case Unsorted:
		return SortState{Column: column, Direction: Ascending}
	case Ascending:
		return SortState{Column: column, Direction: Descending}
	default:
		return SortState{}
	}
}

// sortKey holds a row position and its precomputed sort value.
type sortKey struct {
	pos   int
	value columns.Value
}

// compareKeys orders keys by value in the requested direction. Ties are always
// broken by insertion order so that sorting is stable in both directions.
func compareKeys(a, b sortKey, descending bool) int {
	cmp := columns.Compare(a.value, b.value)
	if descending {
		cmp = -cmp
	}
	if cmp != 0 {
		return cmp
	}
	switch {
	case a.pos < b.pos:
		return -1
	case a.pos > b.pos:
		return 1
	default:
		return 0
	}
}

// topKHeap implements a max-heap for top-K selection
// When we want the smallest K elements, we use a max-heap:
// - If new element is smaller than max, pop max and push new element
// - At the end, heap contains K smallest elements
type topKHeap struct {
	keys       []sortKey
	descending bool
}

func (h *topKHeap) Len() int { return len(h.keys) }

// Less puts the "worst" of the K best elements at the top of the heap.
func (h *topKHeap) Less(i, j int) bool {
	return compareKeys(h.keys[i], h.keys[j], h.descending) > 0
}

func (h *topKHeap) Swap(i, j int) {
	h.keys[i], h.keys[j] = h.keys[j], h.keys[i]
}

func (h *topKHeap) Push(x any) {
	h.keys = append(h.keys, x.(sortKey))
}

func (h *topKHeap) Pop() any {
	old := h.keys
	n := len(old)
	x := old[n-1]
	h.keys = old[0 : n-1]
	return x
}

// Sort returns the positions ordered according to the sort state, truncated to
// limit when limit > 0. The input slice is not modified.
//
// Unsorted states and unknown or non-sortable columns keep insertion order.
// When limit is smaller than the number of positions a bounded heap selects the
// top K in O(n log k) before the final sort.
func Sort[R Record](t *Table[R], cols columns.Set[R], positions []int, s SortState, limit int) []int {
	def, ok := cols.Lookup(s.Column)
	if !s.IsSorted() || !ok || !def.Sortable {
		return truncate(slices.Clone(positions), limit)
	}
	descending := s.Direction == Descending

	keys := make([]sortKey, len(positions))
	for i, pos := range positions {
		keys[i] = sortKey{pos: pos, value: def.ValueOf(t.Row(pos))}
	}

	if limit > 0 && limit < len(keys) {
		h := &topKHeap{keys: make([]sortKey, 0, limit), descending: descending}
		h.keys = append(h.keys, keys[:limit]...)
		heap.Init(h)
		for _, k := range keys[limit:] {
			if compareKeys(k, h.keys[0], descending) < 0 {
				heap.Pop(h)
				heap.Push(h, k)
			}
		}
		keys = h.keys
	}

	slices.SortFunc(keys, func(a, b sortKey) int {
		return compareKeys(a, b, descending)
	})

	out := make([]int, len(keys))
	for i, k := range keys {
		out[i] = k.pos
	}
	return out
}

func truncate(positions []int, limit int) []int {
	if limit > 0 && limit < len(positions) {
		return positions[:limit]
	}
	return positions
}

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
	"errors"
	"fmt"
	"strings"
)

// Record is a row of a table. RecordID must be stable and unique within a table.
type Record interface {
	RecordID() string
}

// IDSeparator joins record identifiers in a URL selection.
const IDSeparator = ","

var (
	ErrEmptyID     = errors.New("record has an empty identifier")
	ErrDuplicateID = errors.New("duplicate record identifier")
	ErrInvalidID   = errors.New("record identifier contains " + IDSeparator)
)

// Table is an immutable, ordered snapshot of records.
// Insertion order is the order of the slice the table was created from.
type Table[R Record] struct {
	rows  []R
	index map[string]int // record id -> row position
}

// NewTable creates a table from the records, validating that every identifier is
// non-empty, unique and free of IDSeparator.
func NewTable[R Record](rows []R) (*Table[R], error) {
	t := &Table[R]{
		rows:  make([]R, len(rows)),
		index: make(map[string]int, len(rows)),
	}
	copy(t.rows, rows)
	for i, r := range t.rows {
		id := r.RecordID()
		if id == "" {
			return nil, fmt.Errorf("row %d: %w", i, ErrEmptyID)
		}
		if strings.Contains(id, IDSeparator) {
			return nil, fmt.Errorf("row %d id %q: %w", i, id, ErrInvalidID)
		}
		if prev, exists := t.index[id]; exists {
			return nil, fmt.Errorf("rows %d and %d share id %q: %w", prev, i, id, ErrDuplicateID)
		}
		t.index[id] = i
	}
	return t, nil
}

// Len returns the number of rows.
func (t *Table[R]) Len() int {
	return len(t.rows)
}

// Row returns the row at position i.
func (t *Table[R]) Row(i int) R {
	return t.rows[i]
}

// Rows returns a copy of all rows in insertion order.
func (t *Table[R]) Rows() []R {
	out := make([]R, len(t.rows))
	copy(out, t.rows)
	return out
}

// IDs returns the record identifiers in insertion order.
func (t *Table[R]) IDs() []string {
	ids := make([]string, len(t.rows))
	for i, r := range t.rows {
		ids[i] = r.RecordID()
	}
	return ids
}

// Lookup returns the record with the given identifier.
func (t *Table[R]) Lookup(id string) (R, bool) {
	i, ok := t.index[id]
	if !ok {
		var zero R
		return zero, false
	}
	return t.rows[i], true
}

// Contains reports whether a record with the identifier exists.
func (t *Table[R]) Contains(id string) bool {
	_, ok := t.index[id]
	return ok
}

// Without returns a new table without the records with the given identifiers.
// Unknown identifiers are ignored. The receiver is not modified.
func (t *Table[R]) Without(ids ...string) *Table[R] {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := &Table[R]{
		rows:  make([]R, 0, len(t.rows)),
		index: make(map[string]int, len(t.rows)),
	}
	for _, r := range t.rows {
		id := r.RecordID()
		if drop[id] {
			continue
		}
		out.index[id] = len(out.rows)
		out.rows = append(out.rows, r)
	}
	return out
}

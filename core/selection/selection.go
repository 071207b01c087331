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

// Package selection tracks which records of a table are checked.
//
// A Selection is an immutable set of record identifiers: every operation returns a
// new Selection and leaves the receiver untouched. The state of the "select all"
// checkbox is never stored, it is derived from the selection and the visible rows.
package selection

import (
	"slices"
)

// CheckState is the state of a tri-state checkbox.
type CheckState int

const (
	Unchecked CheckState = iota
	Indeterminate
	Checked
)

// String returns "unchecked", "indeterminate" or "checked".
func (c CheckState) String() string {
	switch c {
	case Checked:
		return "checked"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unchecked"
	}
}

// Selection is a set of selected record identifiers.
type Selection struct {
	ids map[string]struct{}
}

// New returns a selection containing the identifiers. Empty identifiers are ignored.
func New(ids ...string) Selection {
	s := Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}
	return s
}

func (s Selection) clone() Selection {
	out := Selection{ids: make(map[string]struct{}, len(s.ids))}
	for id := range s.ids {
		out.ids[id] = struct{}{}
	}
	return out
}

// Len returns the number of selected identifiers.
func (s Selection) Len() int {
	return len(s.ids)
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool {
	return len(s.ids) == 0
}

// IsSelected reports whether the identifier is selected.
func (s Selection) IsSelected(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the selected identifiers in sorted order.
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Toggle selects the identifier if it is not selected and deselects it otherwise.
func (s Selection) Toggle(id string) Selection {
	out := s.clone()
	if id == "" {
		return out
	}
	if out.IsSelected(id) {
		delete(out.ids, id)
	} else {
		out.ids[id] = struct{}{}
	}
	return out
}

// ToggleAll selects every visible identifier unless all of them are already
// selected, in which case the visible identifiers are deselected. Selected
// identifiers outside the visible set are kept either way.
func (s Selection) ToggleAll(visible []string) Selection {
	out := s.clone()
	if len(visible) > 0 && s.containsAll(visible) {
		for _, id := range visible {
			delete(out.ids, id)
		}
		return out
	}
	for _, id := range visible {
		if id != "" {
			out.ids[id] = struct{}{}
		}
	}
	return out
}

// Remove deselects the identifiers.
func (s Selection) Remove(ids ...string) Selection {
	out := s.clone()
	for _, id := range ids {
		delete(out.ids, id)
	}
	return out
}

// Retain keeps only the identifiers for which keep returns true. Owners use it to
// drop identifiers of records that no longer exist.
func (s Selection) Retain(keep func(id string) bool) Selection {
	out := Selection{ids: make(map[string]struct{}, len(s.ids))}
	for id := range s.ids {
		if keep(id) {
			out.ids[id] = struct{}{}
		}
	}
	return out
}

func (s Selection) containsAll(ids []string) bool {
	for _, id := range ids {
		if !s.IsSelected(id) {
			return false
		}
	}
	return true
}

// Summary describes the selection relative to the visible rows.
type Summary struct {
	Selected        int // identifiers selected overall
	VisibleSelected int // visible identifiers that are selected
	Visible         int
	State           CheckState // state of the "select all" checkbox
}

// Summary derives the selection summary for the visible identifiers.
//
// The "select all" checkbox is unchecked when nothing is selected or nothing is
// visible, checked when every visible identifier is selected and indeterminate
// otherwise.
func (s Selection) Summary(visible []string) Summary {
	sum := Summary{Selected: len(s.ids), Visible: len(visible)}
	for _, id := range visible {
		if s.IsSelected(id) {
			sum.VisibleSelected++
		}
	}

	switch {
	case sum.Selected == 0 || sum.Visible == 0:
		sum.State = Unchecked
	case sum.VisibleSelected == sum.Visible:
		sum.State = Checked
	default:
		sum.State = Indeterminate
	}
	return sum
}

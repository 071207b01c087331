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
	"io"

	"github.com/google/arenaboard/core/columns"
	"github.com/google/arenaboard/core/selection"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// NoResults is the placeholder shown instead of the body when no rows are visible.
const NoResults = "No results."

// checkboxText returns the terminal glyph for a checkbox state.
func checkboxText(state selection.CheckState) string {
	switch state {
	case selection.Checked:
		return "[x]"
	case selection.Indeterminate:
		return "[-]"
	default:
		return "[ ]"
	}
}

// sortIndicator returns the marker appended to a sorted column header.
func sortIndicator(d Direction) string {
	switch d {
	case Ascending:
		return " ^"
	case Descending:
		return " v"
	default:
		return ""
	}
}

// WriteText renders the result as a terminal table: a leading select-all checkbox
// column, one column per definition and either the visible rows or a single
// "No results." row.
func WriteText[R Record](w io.Writer, cols columns.Set[R], res Result[R], sel selection.Selection, sort SortState) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, 0, cols.Len()+1)
	header = append(header, checkboxText(sel.Summary(res.IDs).State))
	for _, def := range cols.All() {
		header = append(header, def.Header+sortIndicator(sort.DirectionOf(def.Key)))
	}
	t.AppendHeader(header)

	if res.Empty() {
		row := make(table.Row, len(header))
		for i := range row {
			row[i] = NoResults
		}
		t.AppendRow(row, table.RowConfig{AutoMerge: true})
	}
	for _, r := range res.Rows {
		row := make(table.Row, 0, len(header))
		if sel.IsSelected(r.RecordID()) {
			row = append(row, checkboxText(selection.Checked))
		} else {
			row = append(row, checkboxText(selection.Unchecked))
		}
		for _, def := range cols.All() {
			row = append(row, def.ValueOf(r).String())
		}
		t.AppendRow(row)
	}

	t.Render()
	_, err := fmt.Fprintf(w, "(%d of %d rows)\n", len(res.Rows), res.Total)
	return err
}

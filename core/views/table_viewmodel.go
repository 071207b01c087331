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
	"sort"
	"strconv"

	"github.com/google/arenaboard/core/columns"
	"github.com/google/arenaboard/core/query"
	"github.com/google/arenaboard/core/selection"
	"github.com/google/arenaboard/core/tables"
	"github.com/google/safehtml"
)

// EmptyMessage is shown in place of the rows when nothing is visible.
const EmptyMessage = tables.NoResults

// LimitChoices are the row limits offered below the table. 0 shows all rows.
var LimitChoices = []int{10, 25, 50, 100, 0}

// Page carries the page-level data of a table view that does not come from the table.
type Page struct {
	Title       string
	Description string
	TableName   string
	UserName    string
	CanDelete   bool
	Flash       string
}

// TableViewModel contains the data from the table formatted for template consumption
type TableViewModel struct {
	Title       string
	Description string
	TableName   string
	UserName    string
	Flash       string
	CurrentURL  safehtml.URL // Current URL for building links

	// Filter layer
	Search         string
	SearchAction   safehtml.URL
	SearchState    string // Rest of the URL state, submitted with the search form
	ClearSearchURL safehtml.URL
	Filters        []FilterControl
	FilterErrors   []string // Messages about ignored filters
	HasFilters     bool
	ClearAllURL    safehtml.URL

	// Header and body
	SelectAll    SelectAllCheckbox
	Headers      []HeaderCell
	Rows         []RowViewModel
	NoResults    bool   // True when there are no visible rows
	EmptyMessage string // Placeholder text when NoResults
	ColumnCount  int    // Number of columns including the checkbox column

	// Pagination info
	TotalRows     int  // Total number of rows in the table
	MatchedRows   int  // Number of rows matching the filters
	DisplayedRows int  // Number of rows actually displayed
	HasMoreRows   bool // True if there are more rows than displayed
	CurrentLimit  int
	MoreURL       safehtml.URL
	Limits        []LimitOption

	// Selection
	SelectedIDs       []string
	SelectedCount     int
	HiddenSelected    int // Selected rows that are not visible
	ClearSelectionURL safehtml.URL
	CanDelete         bool
	DeleteURL         safehtml.URL
}

// SelectAllCheckbox is the leading tri-state checkbox of the header row.
type SelectAllCheckbox struct {
	State         string // "unchecked", "indeterminate" or "checked"
	Checked       bool
	Indeterminate bool
	AriaChecked   string // "true", "false" or "mixed"
	Disabled      bool   // No visible rows
	ToggleURL     safehtml.URL
}

// HeaderCell is one column header.
type HeaderCell struct {
	Key       string
	Label     safehtml.HTML
	Sortable  bool
	Indicator string // Arrow for the active sort direction
	AriaSort  string // "ascending", "descending" or "none"
	SortURL   safehtml.URL
}

// RowViewModel is one visible row.
type RowViewModel struct {
	ID        string
	Selected  bool
	ToggleURL safehtml.URL
	Cells     []safehtml.HTML
}

// FilterControl is the discrete filter of one column.
type FilterControl struct {
	Key     string
	Label   string
	Active  bool
	Value   string // Current value, "all" when inactive
	Options []FilterOption
}

// FilterOption is one choice of a FilterControl.
type FilterOption struct {
	Label    string
	Value    string
	Selected bool
	URL      safehtml.URL
}

// LimitOption is one entry of the row limit selector.
type LimitOption struct {
	Label    string
	Selected bool
	URL      safehtml.URL
}

// BuildTableViewModel creates the view model of a table page. It is a pure function
// of its inputs: the column definitions, the derived result, the URL state, the
// selection and the filter validation errors.
func BuildTableViewModel[R tables.Record](page Page, cols columns.Set[R], res tables.Result[R], q *query.Query, sel selection.Selection, filterErrors map[string]string) TableViewModel {
	sortState := q.SortState()

	vm := TableViewModel{
		Title:        page.Title,
		Description:  page.Description,
		TableName:    page.TableName,
		UserName:     page.UserName,
		Flash:        page.Flash,
		CurrentURL:   q.ToSafeURL(),
		Search:       q.Search,
		ColumnCount:  cols.Len() + 1,
		TotalRows:    res.Total,
		MatchedRows:  res.Matched,
		CurrentLimit: q.Limit,
		CanDelete:    page.CanDelete,
	}

	// Filters
	vm.SearchAction = safehtml.URLSanitized(q.Path)
	vm.SearchState = q.EncodedState()
	vm.ClearSearchURL = q.WithSearch("")
	for _, def := range cols.Filterable() {
		vm.Filters = append(vm.Filters, buildFilterControl(def.Key, def.Header, def.Choices, q))
	}
	vm.HasFilters = q.Search != "" || len(q.Filters) > 0
	vm.ClearAllURL = q.WithoutFilters()
	for _, key := range sortedKeys(filterErrors) {
		vm.FilterErrors = append(vm.FilterErrors, filterErrors[key])
	}

	// Header
	sum := sel.Summary(res.IDs)
	vm.SelectAll = SelectAllCheckbox{
		State:         sum.State.String(),
		Checked:       sum.State == selection.Checked,
		Indeterminate: sum.State == selection.Indeterminate,
		AriaChecked:   ariaChecked(sum.State),
		Disabled:      len(res.IDs) == 0,
		ToggleURL:     q.WithAllToggled(res.IDs),
	}
	for _, def := range cols.All() {
		dir := sortState.DirectionOf(def.Key)
		cell := HeaderCell{
			Key:       def.Key,
			Label:     def.HeaderCell(),
			Sortable:  def.Sortable,
			Indicator: indicator(dir),
			AriaSort:  ariaSort(dir),
		}
		if def.Sortable {
			cell.SortURL = q.WithSortCycled(def.Key)
		}
		vm.Headers = append(vm.Headers, cell)
	}

	// Body
	if res.Empty() {
		vm.NoResults = true
		vm.EmptyMessage = EmptyMessage
	}
	for _, r := range res.Rows {
		id := r.RecordID()
		row := RowViewModel{
			ID:        id,
			Selected:  sel.IsSelected(id),
			ToggleURL: q.WithRowToggled(id),
			Cells:     make([]safehtml.HTML, 0, cols.Len()),
		}
		for _, def := range cols.All() {
			row.Cells = append(row.Cells, def.RenderCell(r))
		}
		vm.Rows = append(vm.Rows, row)
	}
	vm.DisplayedRows = len(vm.Rows)

	// Pagination
	vm.HasMoreRows = res.Limited()
	if vm.HasMoreRows {
		vm.MoreURL = q.WithLimit(q.Limit * 2)
	}
	for _, limit := range LimitChoices {
		label := "All"
		if limit > 0 {
			label = strconv.Itoa(limit)
		}
		vm.Limits = append(vm.Limits, LimitOption{
			Label:    label,
			Selected: limit == q.Limit,
			URL:      q.WithLimit(limit),
		})
	}

	// Selection
	vm.SelectedIDs = sel.IDs()
	vm.SelectedCount = sel.Len()
	vm.HiddenSelected = sum.Selected - sum.VisibleSelected
	vm.ClearSelectionURL = q.WithSelection(selection.New())
	vm.CanDelete = page.CanDelete && sel.Len() > 0
	if page.CanDelete {
		vm.DeleteURL = q.WithPath(q.Path + "/delete")
	}

	return vm
}

func buildFilterControl(key, label string, choices []string, q *query.Query) FilterControl {
	current, active := q.Filters[key]
	fc := FilterControl{
		Key:    key,
		Label:  label,
		Active: active,
		Value:  tables.AllValue,
	}
	if active {
		fc.Value = current
	}

	fc.Options = append(fc.Options, FilterOption{
		Label:    "All",
		Value:    tables.AllValue,
		Selected: !active,
		URL:      q.WithoutFilter(key),
	})
	for _, choice := range choices {
		fc.Options = append(fc.Options, FilterOption{
			Label:    choice,
			Value:    choice,
			Selected: active && current == choice,
			URL:      q.WithFilter(key, choice),
		})
	}
	return fc
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indicator(d tables.Direction) string {
	switch d {
	case tables.Ascending:
		return "▲"
	case tables.Descending:
		return "▼"
	default:
		return ""
	}
}

func ariaSort(d tables.Direction) string {
	switch d {
	case tables.Ascending:
		return "ascending"
	case tables.Descending:
		return "descending"
	default:
		return "none"
	}
}

func ariaChecked(state selection.CheckState) string {
	switch state {
	case selection.Checked:
		return "true"
	case selection.Indeterminate:
		return "mixed"
	default:
		return "false"
	}
}

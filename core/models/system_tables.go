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

package models

import (
	"strconv"
	"strings"

	"github.com/google/arenaboard/core/auth"
	"github.com/google/arenaboard/core/columns"
	"github.com/google/arenaboard/core/tables"
)

// System table name constants
const (
	ColumnsTableName = "_columns"
)

// BuildColumnsTable creates a system table containing metadata about all columns
// in the DataModel. Each row represents one column from any table.
//
// Schema:
//   - table: the table this column belongs to
//   - key: the column's key as used in URLs
//   - header: the column's display header
//   - position: column index within the table
//   - sortable, searchable, filterable: capabilities of the column
//   - choices: the discrete filter options
func BuildColumnsTable(dm *DataModel) (*tables.Table[ColumnInfo], error) {
	var rows []ColumnInfo
	for _, name := range dm.TableNames() {
		// Skip system tables
		if isSystemTable(name) {
			continue
		}
		info, _ := dm.GetTable(name)
		rows = append(rows, info.Columns...)
	}
	return tables.NewTable(rows)
}

// ColumnInfoColumns returns the columns of the _columns system table.
func ColumnInfoColumns() columns.Set[ColumnInfo] {
	yesNo := []string{"yes", "no"}
	return columns.MustSet(
		columns.Def[ColumnInfo]{
			Key: "table", Header: "Table", Sortable: true, Searchable: true,
			Value: func(c ColumnInfo) columns.Value { return columns.Text(c.Table) },
		},
		columns.Def[ColumnInfo]{
			Key: "key", Header: "Key", Sortable: true, Searchable: true,
			Value: func(c ColumnInfo) columns.Value { return columns.Text(c.Key) },
		},
		columns.Def[ColumnInfo]{
			Key: "header", Header: "Header", Sortable: true, Searchable: true,
			Value: func(c ColumnInfo) columns.Value { return columns.Text(c.Header) },
		},
		columns.Def[ColumnInfo]{
			Key: "position", Header: "Position", Sortable: true,
			Value: func(c ColumnInfo) columns.Value { return columns.Int(int64(c.Position)) },
		},
		columns.Def[ColumnInfo]{
			Key: "sortable", Header: "Sortable", Choices: yesNo,
			Value: func(c ColumnInfo) columns.Value { return columns.Bool(c.Sortable) },
		},
		columns.Def[ColumnInfo]{
			Key: "searchable", Header: "Searchable", Choices: yesNo,
			Value: func(c ColumnInfo) columns.Value { return columns.Bool(c.Searchable) },
		},
		columns.Def[ColumnInfo]{
			Key: "filterable", Header: "Filterable", Choices: yesNo,
			Value: func(c ColumnInfo) columns.Value { return columns.Bool(c.Filterable) },
		},
		columns.Def[ColumnInfo]{
			Key: "choices", Header: "Choices",
			Value: func(c ColumnInfo) columns.Value { return columns.Text(strings.Join(c.Choices, ", ")) },
		},
	)
}

// isSystemTable returns true if the table name is a system table
func isSystemTable(name string) bool {
	return name == ColumnsTableName
}

// IsSystemTable reports whether the table is generated from the catalog itself.
func IsSystemTable(name string) bool {
	return isSystemTable(name)
}

// AddSystemTables registers all system tables in the DataModel.
// This should be called after all user tables have been added.
func AddSystemTables(dm *DataModel) {
	count := 0
	for _, info := range dm.GetAllTables() {
		if !isSystemTable(info.Name) {
			count += len(info.Columns)
		}
	}
	dm.AddTable(TableInfo{
		Name:        ColumnsTableName,
		Title:       "Columns",
		Description: "Every column of every table (" + strconv.Itoa(count) + " columns).",
		Roles:       []auth.Role{auth.RoleAdmin},
		Columns:     Describe(ColumnsTableName, ColumnInfoColumns()),
	})
}

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
	"slices"
	"strings"

	"github.com/google/arenaboard/core/auth"
	"github.com/google/arenaboard/core/columns"
)

// Table names.
const (
	AccountsTableName    = "accounts"
	QuestionsTableName   = "questions"
	LeaderboardTableName = "leaderboard"
)

// TableInfo describes a table offered by the dashboard.
type TableInfo struct {
	Name        string
	Title       string
	Description string
	Roles       []auth.Role // roles allowed to view the table
	Deletable   bool        // rows can be deleted in batches
	DeleteRoles []auth.Role // roles allowed to delete, defaults to Roles
	Columns     []ColumnInfo
}

// URL returns the path of the table page.
func (t TableInfo) URL() string {
	return "/tables/" + t.Name
}

// CanView reports whether the session may view the table.
func (t TableInfo) CanView(session *auth.Session) bool {
	return auth.HasAnyRole(session, t.Roles)
}

// CanDelete reports whether the session may delete rows of the table.
func (t TableInfo) CanDelete(session *auth.Session) bool {
	if !t.Deletable {
		return false
	}
	if len(t.DeleteRoles) > 0 {
		return auth.HasAnyRole(session, t.DeleteRoles)
	}
	return t.CanView(session)
}

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Table      string
	Key        string
	Header     string
	Position   int
	Sortable   bool
	Searchable bool
	Filterable bool
	Choices    []string
}

func (c ColumnInfo) RecordID() string { return c.Table + "." + c.Key }

// Describe lists the columns of a column set.
func Describe[R any](table string, cols columns.Set[R]) []ColumnInfo {
	searchable := make(map[string]bool)
	for _, def := range cols.Searchable() {
		searchable[def.Key] = true
	}

	infos := make([]ColumnInfo, 0, cols.Len())
	for i, def := range cols.All() {
		infos = append(infos, ColumnInfo{
			Table:      table,
			Key:        def.Key,
			Header:     def.Header,
			Position:   i,
			Sortable:   def.Sortable,
			Searchable: searchable[def.Key],
			Filterable: def.Filterable(),
			Choices:    slices.Clone(def.Choices),
		})
	}
	return infos
}

// DataModel is the catalog of tables the dashboard serves.
type DataModel struct {
	tables map[string]TableInfo
	order  []string
}

// NewDataModel creates a new DataModel instance
func NewDataModel() *DataModel {
	return &DataModel{
		tables: make(map[string]TableInfo),
	}
}

// AddTable adds a table to the data model. Adding a name twice replaces the entry
// and keeps its position.
func (dm *DataModel) AddTable(info TableInfo) {
	if _, exists := dm.tables[info.Name]; !exists {
		dm.order = append(dm.order, info.Name)
	}
	dm.tables[info.Name] = info
}

// GetTable returns a table by name
func (dm *DataModel) GetTable(name string) (TableInfo, bool) {
	info, ok := dm.tables[name]
	return info, ok
}

// GetAllTables returns all tables in the order they were added.
func (dm *DataModel) GetAllTables() []TableInfo {
	all := make([]TableInfo, 0, len(dm.order))
	for _, name := range dm.order {
		all = append(all, dm.tables[name])
	}
	return all
}

// TablesFor returns the tables the session may view.
func (dm *DataModel) TablesFor(session *auth.Session) []TableInfo {
	var visible []TableInfo
	for _, info := range dm.GetAllTables() {
		if info.CanView(session) {
			visible = append(visible, info)
		}
	}
	return visible
}

// TableNames returns the names of the tables, system tables last.
func (dm *DataModel) TableNames() []string {
	names := slices.Clone(dm.order)
	slices.SortStableFunc(names, func(a, b string) int {
		as, bs := isSystemTable(a), isSystemTable(b)
		switch {
		case as == bs:
			return 0
		case as:
			return 1
		default:
			return -1
		}
	})
	return names
}

// DefaultDataModel returns the catalog of the platform tables, including system tables.
func DefaultDataModel() *DataModel {
	dm := NewDataModel()
	dm.AddTable(TableInfo{
		Name:        AccountsTableName,
		Title:       "Accounts",
		Description: "Manage platform accounts and their roles.",
		Roles:       []auth.Role{auth.RoleAdmin},
		Deletable:   true,
		Columns:     Describe(AccountsTableName, AccountColumns()),
	})
	dm.AddTable(TableInfo{
		Name:        QuestionsTableName,
		Title:       "Questions",
		Description: "Browse and curate the question bank.",
		Roles:       []auth.Role{auth.RoleAdmin, auth.RoleModerator},
		Deletable:   true,
		Columns:     Describe(QuestionsTableName, QuestionColumns()),
	})
	dm.AddTable(TableInfo{
		Name:        LeaderboardTableName,
		Title:       "Leaderboard",
		Description: "Current contest standings.",
		Roles:       []auth.Role{auth.RoleAdmin, auth.RoleModerator, auth.RoleContestant},
		Columns:     Describe(LeaderboardTableName, StandingColumns()),
	})
	AddSystemTables(dm)
	return dm
}

// Title returns a display title for a table name, used when the catalog has no entry.
func Title(name string) string {
	name = strings.TrimPrefix(name, "_")
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + strings.ReplaceAll(name[1:], "_", " ")
}

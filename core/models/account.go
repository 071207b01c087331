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
	"time"

	"github.com/google/arenaboard/core/auth"
	"github.com/google/arenaboard/core/columns"
)

// Account is a platform user account.
type Account struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (a Account) RecordID() string { return a.ID }

func roleChoices() []string {
	choices := make([]string, len(auth.Roles))
	for i, r := range auth.Roles {
		choices[i] = string(r)
	}
	return choices
}

// AccountColumns returns the columns of the accounts table.
func AccountColumns() columns.Set[Account] {
	return columns.MustSet(
		columns.Def[Account]{
			Key: "username", Header: "Username", Sortable: true, Searchable: true,
			Value: func(a Account) columns.Value { return columns.Text(a.Username) },
		},
		columns.Def[Account]{
			Key: "email", Header: "Email", Sortable: true, Searchable: true,
			Value: func(a Account) columns.Value { return columns.Text(a.Email) },
		},
		columns.Def[Account]{
			Key: "role", Header: "Role", Sortable: true,
			Choices: roleChoices(),
			Value:   func(a Account) columns.Value { return columns.Text(string(a.Role)) },
		},
		columns.Def[Account]{
			Key: "active", Header: "Active", Sortable: true,
			Choices: []string{"yes", "no"},
			Value:   func(a Account) columns.Value { return columns.Bool(a.Active) },
		},
		columns.Def[Account]{
			Key: "created_at", Header: "Created", Sortable: true,
			Value: func(a Account) columns.Value { return columns.Datetime(a.CreatedAt) },
		},
	)
}

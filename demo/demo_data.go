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

// Package demo holds the sample contest data used by the memory backend and the
// seed command.
package demo

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/google/arenaboard/datasources"
)

//go:embed data/accounts.csv
var accountsCSV string

//go:embed data/questions.csv
var questionsCSV string

//go:embed data/standings.csv
var standingsCSV string

// Dataset returns a fresh copy of the demo records.
func Dataset() (datasources.Dataset, error) {
	var ds datasources.Dataset
	var err error

	if ds.Accounts, err = datasources.LoadAccountsCSV(strings.NewReader(accountsCSV)); err != nil {
		return ds, fmt.Errorf("demo accounts: %w", err)
	}
	if ds.Questions, err = datasources.LoadQuestionsCSV(strings.NewReader(questionsCSV)); err != nil {
		return ds, fmt.Errorf("demo questions: %w", err)
	}
	if ds.Standings, err = datasources.LoadStandingsCSV(strings.NewReader(standingsCSV)); err != nil {
		return ds, fmt.Errorf("demo standings: %w", err)
	}
	ds.FillUsernames()
	return ds, nil
}

// Opener opens memory backends holding the demo records.
func Opener() datasources.MemoryOpener {
	return datasources.MemoryOpener{Load: Dataset}
}

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
	"fmt"
	"time"

	"github.com/google/arenaboard/core/columns"
	"github.com/google/safehtml"
	"github.com/google/safehtml/template"
)

// Question difficulties.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Question statuses.
const (
	StatusDraft     = "Draft"
	StatusPublished = "Published"
	StatusArchived  = "Archived"
)

// Question is an entry of the question bank.
type Question struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Difficulty string    `json:"difficulty"`
	Status     string    `json:"status"`
	Category   string    `json:"category"`
	Acceptance float64   `json:"acceptance"` // percentage of accepted submissions
	CreatedAt  time.Time `json:"created_at"`
}

func (q Question) RecordID() string { return q.ID }

const badgeText = `{{if eq . "Easy"}}<span class="badge badge-easy">{{.}}</span>` +
	`{{else if eq . "Medium"}}<span class="badge badge-medium">{{.}}</span>` +
	`{{else if eq . "Hard"}}<span class="badge badge-hard">{{.}}</span>` +
	`{{else}}<span class="badge">{{.}}</span>{{end}}`

var badgeTemplate = template.Must(template.New("badge").Parse(badgeText))

// DifficultyBadge renders the difficulty as a colored badge.
func DifficultyBadge(difficulty string) safehtml.HTML {
	h, err := badgeTemplate.ExecuteToHTML(difficulty)
	if err != nil {
		return safehtml.HTMLEscaped(difficulty)
	}
	return h
}

// QuestionColumns returns the columns of the questions table.
func QuestionColumns() columns.Set[Question] {
	return columns.MustSet(
		columns.Def[Question]{
			Key: "title", Header: "Title", Sortable: true, Searchable: true,
			Value: func(q Question) columns.Value { return columns.Text(q.Title) },
		},
		columns.Def[Question]{
			Key: "difficulty", Header: "Difficulty", Sortable: true,
			Choices: []string{DifficultyEasy, DifficultyMedium, DifficultyHard},
			Value:   func(q Question) columns.Value { return columns.Text(q.Difficulty) },
			Cell:    func(q Question) safehtml.HTML { return DifficultyBadge(q.Difficulty) },
		},
		columns.Def[Question]{
			Key: "status", Header: "Status", Sortable: true,
			Choices: []string{StatusDraft, StatusPublished, StatusArchived},
			Value:   func(q Question) columns.Value { return columns.Text(q.Status) },
		},
		columns.Def[Question]{
			Key: "category", Header: "Category", Sortable: true, Searchable: true,
			Value: func(q Question) columns.Value { return columns.Text(q.Category) },
		},
		columns.Def[Question]{
			Key: "acceptance", Header: "Acceptance", Sortable: true,
			Value: func(q Question) columns.Value { return columns.Number(q.Acceptance) },
			Cell: func(q Question) safehtml.HTML {
				return safehtml.HTMLEscaped(fmt.Sprintf("%.1f%%", q.Acceptance))
			},
		},
		columns.Def[Question]{
			Key: "created_at", Header: "Created", Sortable: true,
			Value: func(q Question) columns.Value { return columns.Datetime(q.CreatedAt) },
		},
	)
}

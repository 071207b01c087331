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

package rendering

import (
	"bytes"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/arenaboard/core/aggregates"
	"github.com/google/arenaboard/core/auth"
	"github.com/google/arenaboard/core/models"
	"github.com/google/arenaboard/core/query"
	"github.com/google/arenaboard/core/tables"
	"github.com/google/arenaboard/core/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableViewModel(t *testing.T, rows []models.Question, rawURL string) views.TableViewModel {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	q := query.NewQuery(u)
	table, err := tables.NewTable(rows)
	require.NoError(t, err)
	cols := models.QuestionColumns()
	res := tables.Derive(table, cols, q.State())
	page := views.Page{Title: "Questions", TableName: "questions", UserName: "ada", CanDelete: true}
	return views.BuildTableViewModel(page, cols, res, q, q.Selection(), tables.Validate(q.FilterState(), cols))
}

func TestRenderTable(t *testing.T) {
	r, err := NewTableRenderer()
	require.NoError(t, err)

	rows := []models.Question{
		{ID: "1", Title: "Two <Sum>", Difficulty: "Easy", Status: "Published"},
		{ID: "2", Title: "Palindrome", Difficulty: "Medium", Status: "Draft"},
	}
	vm := tableViewModel(t, rows, "/tables/questions?sel=1&sort=title&dir=asc&filter:nope=x")

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, vm))
	out := buf.String()

	assert.Contains(t, out, "<h1>Questions</h1>")
	assert.Contains(t, out, "Two &lt;Sum&gt;")
	assert.Contains(t, out, `<span class="badge badge-medium">Medium</span>`)
	assert.Contains(t, out, `aria-checked="mixed"`)
	assert.Contains(t, out, `aria-sort="ascending"`)
	assert.Contains(t, out, "column &#39;nope&#39; does not exist")
	assert.Contains(t, out, "Delete selected")
	assert.Contains(t, out, "/tables/questions/delete?")
	assert.Contains(t, out, `name="state"`)
	assert.NotContains(t, out, "No results.")
}

func TestRenderEmptyTable(t *testing.T) {
	r, err := NewTableRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, tableViewModel(t, nil, "/tables/questions")))
	out := buf.String()

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("No results.")))
	assert.Contains(t, out, `colspan="7"`)
	assert.Contains(t, out, `aria-disabled="true"`)
	assert.NotContains(t, out, "Select row")
}

func TestRenderPages(t *testing.T) {
	r, err := NewTableRenderer()
	require.NoError(t, err)

	t.Run("landing", func(t *testing.T) {
		session := &auth.Session{Username: "ada", Role: auth.RoleAdmin}
		vm := views.BuildLandingViewModel("Arenaboard", "Admin dashboard", session, models.DefaultDataModel().TablesFor(session))
		var buf bytes.Buffer
		require.NoError(t, r.RenderLanding(&buf, vm))
		assert.Contains(t, buf.String(), `href="/tables/accounts"`)
		assert.Contains(t, buf.String(), "Signed in as ada (admin).")
	})

	t.Run("login", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.RenderLogin(&buf, views.LoginViewModel{
			Title: "Log in", Username: "bob", Next: "/stats", Error: "Invalid credentials", Enabled: true,
		}))
		out := buf.String()
		assert.Contains(t, out, `value="bob"`)
		assert.Contains(t, out, `value="/stats"`)
		assert.Contains(t, out, "Invalid credentials")
	})

	t.Run("stats", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.RenderStats(&buf, views.StatsViewModel{
			Title:     "Statistics",
			Charts:    []views.Chart{views.BuildChart("Questions by difficulty", []views.Point{{Label: "Easy", Value: 3}})},
			Summaries: []aggregates.Summary{{
				Column: "Acceptance",
				Nulls:  1,
				Stats:  []aggregates.Stat{{Name: "avg", Value: "42.5"}},
			}},
		}))
		out := buf.String()
		assert.Contains(t, out, `<progress max="100" value="100">3</progress>`)
		assert.Contains(t, out, "<dt>avg</dt><dd>42.5</dd>")
		assert.Contains(t, out, "<dt>empty</dt><dd>1</dd>")
	})

	t.Run("error", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.RenderError(&buf, views.BuildErrorViewModel(http.StatusBadGateway, "fetching accounts: connection refused", "/")))
		assert.Contains(t, buf.String(), "502 Bad Gateway")
		assert.Contains(t, buf.String(), "connection refused")
	})
}

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

package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/arenaboard/core/auth"
	"github.com/google/arenaboard/core/models"
	"github.com/google/arenaboard/datasources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tokenSecret   = "server-test-token-secret"
	sessionSecret = "server-test-session-secret-32-bytes!"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func testDataset() datasources.Dataset {
	return datasources.Dataset{
		Accounts: []models.Account{
			{ID: "a1", Username: "alice", Role: auth.RoleAdmin, Active: true, CreatedAt: day(1)},
			{ID: "a2", Username: "bob", Role: auth.RoleContestant, Active: true, CreatedAt: day(2)},
		},
		Questions: []models.Question{
			{ID: "q1", Title: "Two Sum", Difficulty: models.DifficultyEasy, Status: models.StatusPublished, Acceptance: 49.1, CreatedAt: day(1)},
			{ID: "q2", Title: "Word Ladder", Difficulty: models.DifficultyHard, Status: models.StatusDraft, Acceptance: 37.5, CreatedAt: day(2)},
			{ID: "q3", Title: "Coin Change", Difficulty: models.DifficultyMedium, Status: models.StatusPublished, Acceptance: 42.7, CreatedAt: day(3)},
		},
		Standings: []models.Standing{
			{AccountID: "a2", Username: "bob", Score: 300, Solved: 3, LastSubmission: day(5)},
		},
	}
}

// countingBackend counts question fetches and can be made to fail.
type countingBackend struct {
	*datasources.MemoryBackend
	questionFetches atomic.Int32
	failWith        error
}

func (b *countingBackend) ListQuestions(ctx context.Context) ([]models.Question, error) {
	b.questionFetches.Add(1)
	if b.failWith != nil {
		return nil, b.failWith
	}
	return b.MemoryBackend.ListQuestions(ctx)
}

// loginBackend accepts alice/s3cret and returns a token signed by issue.
type loginBackend struct {
	*datasources.MemoryBackend
	issue func() string
}

func (b *loginBackend) Login(_ context.Context, username, password string) (string, error) {
	if username != "alice" || password != "s3cret" {
		return "", datasources.ErrUnauthorized
	}
	return b.issue(), nil
}

type testEnv struct {
	t       *testing.T
	server  *Server
	handler http.Handler
	decoder *auth.Decoder
}

func newTestEnv(t *testing.T, backend datasources.Backend) *testEnv {
	t.Helper()
	decoder := auth.NewDecoder(tokenSecret)
	srv, err := NewServer(Config{
		Title:        "Arena Admin",
		DataModel:    models.DefaultDataModel(),
		Backend:      backend,
		Store:        NewCookieStore([]byte(sessionSecret), false),
		Decoder:      decoder,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		CacheTTL:     time.Minute,
		DefaultLimit: 25,
	})
	require.NoError(t, err)
	return &testEnv{t: t, server: srv, handler: srv.Handler(), decoder: decoder}
}

func (e *testEnv) token(username string, role auth.Role) string {
	e.t.Helper()
	token, err := e.decoder.Encode(auth.Session{
		Subject:   "id-" + username,
		Username:  username,
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(e.t, err)
	return token
}

func (e *testEnv) do(method, target, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, datasources.NewMemoryBackend(testDataset()))
	rec := env.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestGuardRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t, datasources.NewMemoryBackend(testDataset()))

	rec := env.do(http.MethodGet, "/tables/questions?limit=10", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next="+url.QueryEscape("/tables/questions?limit=10"), rec.Header().Get("Location"))

	expired, err := env.decoder.Encode(auth.Session{Username: "alice", Role: auth.RoleAdmin, ExpiresAt: time.Now().Add(-time.Minute)})
	require.NoError(t, err)
	rec = env.do(http.MethodGet, "/", expired)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

// platformBackend stands in for a backend whose platform checks every token.
type platformBackend struct {
	*datasources.MemoryBackend
}

func (platformBackend) VerifiesTokens() bool { return true }

func TestNewServerRequiresTokenSecret(t *testing.T) {
	cfg := Config{
		DataModel: models.DefaultDataModel(),
		Backend:   datasources.NewMemoryBackend(testDataset()),
		Store:     NewCookieStore([]byte(sessionSecret), false),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	_, err := NewServer(cfg)
	assert.ErrorIs(t, err, ErrUnverifiedTokens)

	cfg.Decoder = auth.NewDecoder("")
	_, err = NewServer(cfg)
	assert.ErrorIs(t, err, ErrUnverifiedTokens)

	cfg.Backend = platformBackend{MemoryBackend: datasources.NewMemoryBackend(testDataset())}
	_, err = NewServer(cfg)
	assert.NoError(t, err)

	cfg.Backend = datasources.NewMemoryBackend(testDataset())
	cfg.Decoder = auth.NewDecoder(tokenSecret)
	_, err = NewServer(cfg)
	assert.NoError(t, err)
}

func TestForeignTokenCannotDelete(t *testing.T) {
	backend := datasources.NewMemoryBackend(testDataset())
	env := newTestEnv(t, backend)

	forged, err := auth.NewDecoder("some-other-key").Encode(auth.Session{
		Subject:   "id-mallory",
		Username:  "mallory",
		Role:      auth.RoleAdmin,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	rec := env.do(http.MethodPost, "/tables/questions/delete?sel=q1,q2,q3", forged)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/login"), rec.Header().Get("Location"))

	questions, err := backend.ListQuestions(context.Background())
	require.NoError(t, err)
	assert.Len(t, questions, 3)
}

func TestTablePage(t *testing.T) {
	env := newTestEnv(t, datasources.NewMemoryBackend(testDataset()))
	admin := env.token("alice", auth.RoleAdmin)

	t.Run("lists rows", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/tables/questions", admin)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Two Sum")
		assert.Contains(t, body, "Word Ladder")
		assert.Contains(t, body, "Coin Change")
	})

	t.Run("search narrows rows", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/tables/questions?q=two+SUM", admin)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Two Sum")
		assert.NotContains(t, body, "Word Ladder")
	})

	t.Run("no match shows the placeholder", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/tables/questions?q=zzz", admin)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, strings.Count(rec.Body.String(), "No results."))
	})

	t.Run("unknown sort column is reported", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/tables/questions?sort=bogus&dir=asc", admin)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "sort column &#39;bogus&#39; does not exist")
	})

	t.Run("system table", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/tables/_columns?filter:table=questions", admin)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "difficulty")
	})

	t.Run("unknown table", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/tables/nope", admin)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("role not allowed", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/tables/accounts", env.token("bob", auth.RoleContestant))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestStaleSelectionIsDropped(t *testing.T) {
	env := newTestEnv(t, datasources.NewMemoryBackend(testDataset()))
	rec := env.do(http.MethodGet, "/tables/questions?sel=q1,gone&limit=25", env.token("alice", auth.RoleAdmin))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/tables/questions", loc.Path)
	assert.Equal(t, "q1", loc.Query().Get("sel"))
}

func TestSnapshotCache(t *testing.T) {
	backend := &countingBackend{MemoryBackend: datasources.NewMemoryBackend(testDataset())}
	env := newTestEnv(t, backend)
	admin := env.token("alice", auth.RoleAdmin)

	env.do(http.MethodGet, "/tables/questions", admin)
	env.do(http.MethodGet, "/tables/questions?sort=title&dir=asc", admin)
	assert.Equal(t, int32(1), backend.questionFetches.Load())

	env.do(http.MethodGet, "/tables/questions?refresh=1", admin)
	assert.Equal(t, int32(2), backend.questionFetches.Load())

	env.do(http.MethodGet, "/tables/questions", env.token("bob", auth.RoleModerator))
	assert.Equal(t, int32(3), backend.questionFetches.Load(), "snapshots are per user")
}

func TestDelete(t *testing.T) {
	backend := &countingBackend{MemoryBackend: datasources.NewMemoryBackend(testDataset())}
	env := newTestEnv(t, backend)
	admin := env.token("alice", auth.RoleAdmin)
	moderator := env.token("bob", auth.RoleModerator)

	env.do(http.MethodGet, "/tables/questions", admin)
	env.do(http.MethodGet, "/tables/questions", moderator)
	require.Equal(t, int32(2), backend.questionFetches.Load())

	rec := env.do(http.MethodPost, "/tables/questions/delete?sel=q1,q3&sort=title&dir=asc&limit=10", admin)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/tables/questions", loc.Path)
	assert.Empty(t, loc.Query().Get("sel"), "selection is cleared")
	assert.Equal(t, "title", loc.Query().Get("sort"), "view state is kept")
	assert.Equal(t, "10", loc.Query().Get("limit"))

	questions, err := backend.MemoryBackend.ListQuestions(context.Background())
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "q2", questions[0].ID)

	page := env.do(http.MethodGet, loc.String(), admin, rec.Result().Cookies()...)
	require.Equal(t, http.StatusOK, page.Code)
	body := page.Body.String()
	assert.Contains(t, body, "Deleted 2 rows.")
	assert.NotContains(t, body, "Two Sum")
	assert.Contains(t, body, "Word Ladder")
	assert.Equal(t, int32(2), backend.questionFetches.Load(), "own snapshot is updated in place")

	env.do(http.MethodGet, "/tables/questions", moderator)
	assert.Equal(t, int32(3), backend.questionFetches.Load(), "other users refetch")
}

func TestDeleteAccountsEvictsLeaderboard(t *testing.T) {
	env := newTestEnv(t, datasources.NewMemoryBackend(testDataset()))
	admin := env.token("alice", auth.RoleAdmin)
	moderator := env.token("carol", auth.RoleModerator)

	for _, token := range []string{admin, moderator} {
		rec := env.do(http.MethodGet, "/tables/leaderboard", token)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "bob")
	}

	rec := env.do(http.MethodPost, "/tables/accounts/delete?sel=a2", admin)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	for _, token := range []string{admin, moderator} {
		rec := env.do(http.MethodGet, "/tables/leaderboard", token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "bob")
	}
}

func TestDeleteNotAllowed(t *testing.T) {
	env := newTestEnv(t, datasources.NewMemoryBackend(testDataset()))

	rec := env.do(http.MethodPost, "/tables/leaderboard/delete?sel=a2", env.token("alice", auth.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPost, "/tables/questions/delete?sel=q1", env.token("bob", auth.RoleContestant))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPost, "/tables/questions/delete?limit=25", env.token("alice", auth.RoleAdmin))
	assert.Equal(t, http.StatusSeeOther, rec.Code, "empty selection just goes back")
}

func TestBackendFailure(t *testing.T) {
	backend := &countingBackend{
		MemoryBackend: datasources.NewMemoryBackend(testDataset()),
		failWith:      errors.New("connection refused"),
	}
	env := newTestEnv(t, backend)
	admin := env.token("alice", auth.RoleAdmin)

	rec := env.do(http.MethodGet, "/tables/questions", admin)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")

	backend.failWith = datasources.ErrUnauthorized
	rec = env.do(http.MethodGet, "/tables/questions", admin)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.LoginPath, rec.Header().Get("Location"))
}

func TestLanding(t *testing.T) {
	env := newTestEnv(t, datasources.NewMemoryBackend(testDataset()))

	rec := env.do(http.MethodGet, "/", env.token("bob", auth.RoleContestant))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Leaderboard")
	assert.NotContains(t, body, "/tables/accounts")

	rec = env.do(http.MethodGet, "/", env.token("alice", auth.RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/tables/accounts")
}

func TestStats(t *testing.T) {
	env := newTestEnv(t, datasources.NewMemoryBackend(testDataset()))

	rec := env.do(http.MethodGet, "/stats", env.token("alice", auth.RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Questions by difficulty")
	assert.Contains(t, body, "Accounts by role")
	assert.Contains(t, body, "Top scores")
	assert.Contains(t, body, "<h3>Acceptance</h3>")
	assert.Contains(t, body, "<h3>Active</h3>")

	rec = env.do(http.MethodGet, "/stats", env.token("bob", auth.RoleContestant))
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.NotContains(t, body, "Accounts by role")
	assert.Contains(t, body, "Top scores")
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t, datasources.NewMemoryBackend(testDataset()))
	env.do(http.MethodGet, "/tables/questions", env.token("alice", auth.RoleAdmin))

	rec := env.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `arenaboard_table_renders_total{table="questions"} 1`)
}

func TestLogin(t *testing.T) {
	backend := &loginBackend{MemoryBackend: datasources.NewMemoryBackend(testDataset())}
	env := newTestEnv(t, backend)
	backend.issue = func() string { return env.token("alice", auth.RoleAdmin) }

	t.Run("form", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/login?next=/stats", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `name="password"`)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := env.postForm("/login", url.Values{"username": {""}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Username is required.")
		assert.Contains(t, rec.Body.String(), "Password is required.")
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.postForm("/login", url.Values{"username": {"alice"}, "password": {"nope"}})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid username or password.")
	})

	t.Run("success sets the session cookie", func(t *testing.T) {
		rec := env.postForm("/login", url.Values{
			"username": {"alice"}, "password": {"s3cret"}, "next": {"/tables/questions"},
		})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/tables/questions", rec.Header().Get("Location"))

		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)
		page := env.do(http.MethodGet, "/tables/questions", "", cookies...)
		assert.Equal(t, http.StatusOK, page.Code)

		again := env.do(http.MethodGet, "/login?next=/stats", "", cookies...)
		assert.Equal(t, http.StatusSeeOther, again.Code)
		assert.Equal(t, "/stats", again.Header().Get("Location"))
	})

	t.Run("external next is ignored", func(t *testing.T) {
		rec := env.postForm("/login", url.Values{
			"username": {"alice"}, "password": {"s3cret"}, "next": {"//evil.example"},
		})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})
}

func TestLoginUnsupported(t *testing.T) {
	env := newTestEnv(t, datasources.NewMemoryBackend(testDataset()))

	rec := env.do(http.MethodGet, "/login", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "does not issue sessions")

	rec = env.postForm("/login", url.Values{"username": {"alice"}, "password": {"s3cret"}})
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, datasources.NewMemoryBackend(testDataset()))
	rec := env.do(http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.LoginPath, rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestServe(t *testing.T) {
	env := newTestEnv(t, datasources.NewMemoryBackend(testDataset()))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- env.server.Serve(ctx, "127.0.0.1:0", time.Second, time.Second) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

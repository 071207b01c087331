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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/arenaboard/core/aggregates"
	"github.com/google/arenaboard/core/auth"
	"github.com/google/arenaboard/core/models"
	"github.com/google/arenaboard/core/query"
	"github.com/google/arenaboard/core/views"
	"github.com/google/arenaboard/datasources"
	"golang.org/x/sync/errgroup"
)

const flashSessionName = "arenaboard-flash"

// render buffers the page so that template errors never produce a partial response.
func (s *Server) render(w http.ResponseWriter, status int, fn func(io.Writer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		s.logger.Error("template rendering error", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	vm := views.BuildErrorViewModel(status, message, "/")
	if session, ok := auth.FromContext(r.Context()); ok {
		vm.UserName = session.Username
	}
	s.render(w, status, func(out io.Writer) error { return s.renderer.RenderError(out, vm) })
}

// lookup returns the catalog entry and binding of a table.
func (s *Server) lookup(name string) (models.TableInfo, binding, bool) {
	info, ok := s.dataModel.GetTable(name)
	if !ok {
		return models.TableInfo{}, binding{}, false
	}
	b, ok := s.bindings[name]
	return info, b, ok
}

// backendFailed reports a failed backend call. Calls abandoned by the client are
// dropped without a response.
func (s *Server) backendFailed(w http.ResponseWriter, r *http.Request, table string, err error) {
	if r.Context().Err() != nil {
		s.logger.Debug("request abandoned", "table", table, "error", err)
		return
	}
	s.metrics.fetchErrors.WithLabelValues(table).Inc()

	if errors.Is(err, datasources.ErrUnauthorized) {
		s.logger.Info("backend rejected session", "table", table, "error", err)
		if clearErr := s.guard.Clear(w, r); clearErr != nil {
			s.logger.Error("clearing session", "error", clearErr)
		}
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}

	s.logger.Error("backend call failed", "table", table, "error", err)
	s.renderError(w, r, http.StatusBadGateway,
		fmt.Sprintf("Could not load %s from the data source: %v", models.Title(table), err))
}

func (s *Server) addFlash(w http.ResponseWriter, r *http.Request, msg string) {
	sess, _ := s.store.Get(r, flashSessionName)
	sess.AddFlash(msg)
	if err := sess.Save(r, w); err != nil {
		s.logger.Error("saving flash", "error", err)
	}
}

func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) string {
	sess, _ := s.store.Get(r, flashSessionName)
	flashes := sess.Flashes()
	if len(flashes) == 0 {
		return ""
	}
	if err := sess.Save(r, w); err != nil {
		s.logger.Error("saving flash", "error", err)
	}
	msgs := make([]string, 0, len(flashes))
	for _, f := range flashes {
		if msg, ok := f.(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return strings.Join(msgs, " ")
}

// parseQuery parses the view state, applying the configured default limit when the
// URL carries none.
func (s *Server) parseQuery(r *http.Request) *query.Query {
	q := query.NewQuery(r.URL)
	params := r.URL.Query()
	if !params.Has("limit") && !params.Has("state") {
		q.Limit = s.defaultLimit
	}
	return q
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.FromContext(r.Context())
	vm := views.BuildLandingViewModel(s.title, s.subtitle, session, s.dataModel.TablesFor(session))
	s.render(w, http.StatusOK, func(out io.Writer) error { return s.renderer.RenderLanding(out, vm) })
}

// handleTable renders a table page. The snapshot comes from the cache unless the
// request asks for a refresh; selected identifiers of rows that no longer exist are
// dropped with a redirect.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	timing := NewTimingCollector()
	ctx := r.Context()
	name := chi.URLParam(r, "name")
	session, _ := auth.FromContext(ctx)

	info, b, ok := s.lookup(name)
	if !ok {
		s.renderError(w, r, http.StatusNotFound, fmt.Sprintf("Table '%s' not found.", name))
		return
	}
	if auth.Decide(session, s.now(), info.Roles...) != auth.Allow {
		s.renderError(w, r, http.StatusForbidden, fmt.Sprintf("You are not allowed to view %s.", info.Title))
		return
	}

	start := time.Now()
	q := s.parseQuery(r)
	timing.Since("parse", start)

	start = time.Now()
	snap, err := s.snapshot(ctx, session.Username, name, b, r.URL.Query().Get("refresh") == "1")
	timing.Since("fetch", start)
	if err != nil {
		s.backendFailed(w, r, name, err)
		return
	}

	sel := q.Selection()
	if kept := sel.Retain(snap.Contains); kept.Len() != sel.Len() {
		next := q.Clone()
		next.Selected = kept.IDs()
		http.Redirect(w, r, next.ToURL(), http.StatusSeeOther)
		return
	}

	page := views.Page{
		Title:       info.Title,
		Description: info.Description,
		TableName:   info.Name,
		UserName:    session.Username,
		CanDelete:   info.CanDelete(session) && b.delete != nil,
		Flash:       s.popFlash(w, r),
	}

	start = time.Now()
	vm := snap.View(page, q, sel)
	timing.Since("view", start)

	s.render(w, http.StatusOK, func(out io.Writer) error { return s.renderer.Render(out, vm) })
	s.metrics.renders.WithLabelValues(name).Inc()
	s.logger.Debug("rendered table", "table", name, "user", session.Username,
		"matched", vm.MatchedRows, "displayed", vm.DisplayedRows, "timing", timing)
}

// handleDelete deletes the selected rows through the backend, drops them from the
// cached snapshot and redirects to the table with an empty selection.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")
	session, _ := auth.FromContext(ctx)

	info, b, ok := s.lookup(name)
	if !ok {
		s.renderError(w, r, http.StatusNotFound, fmt.Sprintf("Table '%s' not found.", name))
		return
	}
	if b.delete == nil || !info.CanDelete(session) {
		s.renderError(w, r, http.StatusForbidden, fmt.Sprintf("You are not allowed to delete from %s.", info.Title))
		return
	}

	q := s.parseQuery(r)
	back := q.Clone()
	back.Path = info.URL()
	back.Selected = nil

	ids := q.Selected
	if len(ids) == 0 {
		http.Redirect(w, r, back.ToURL(), http.StatusSeeOther)
		return
	}

	deleted, err := b.delete(ctx, ids)
	if err != nil {
		s.backendFailed(w, r, name, err)
		return
	}
	s.forgetDeleted(session.Username, name, ids)
	s.metrics.rowsDeleted.WithLabelValues(name).Add(float64(deleted))
	s.logger.Info("deleted rows", "table", name, "user", session.Username,
		"requested", len(ids), "deleted", deleted)

	if deleted == len(ids) {
		s.addFlash(w, r, fmt.Sprintf("Deleted %d %s.", deleted, plural(deleted, "row", "rows")))
	} else {
		s.addFlash(w, r, fmt.Sprintf("Deleted %d of %d selected rows; the others no longer existed.", deleted, len(ids)))
	}
	http.Redirect(w, r, back.ToURL(), http.StatusSeeOther)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// handleStats fetches the tables the user may view concurrently and charts them.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := auth.FromContext(ctx)
	canView := func(name string) bool {
		info, ok := s.dataModel.GetTable(name)
		return ok && info.CanView(session)
	}

	var (
		accounts     []models.Account
		questions    []models.Question
		standings    []models.Standing
		accountsErr  error
		questionsErr error
		boardErr     error
	)
	var g errgroup.Group
	if canView(models.QuestionsTableName) {
		g.Go(func() error {
			questionsErr = s.timedCall(ctx, models.QuestionsTableName, func(ctx context.Context) (err error) {
				questions, err = s.backend.ListQuestions(ctx)
				return err
			})
			return nil
		})
	}
	if canView(models.AccountsTableName) {
		g.Go(func() error {
			accountsErr = s.timedCall(ctx, models.AccountsTableName, func(ctx context.Context) (err error) {
				accounts, err = s.backend.ListAccounts(ctx)
				return err
			})
			return nil
		})
	}
	if canView(models.LeaderboardTableName) {
		g.Go(func() error {
			boardErr = s.timedCall(ctx, models.LeaderboardTableName, func(ctx context.Context) (err error) {
				standings, err = s.backend.Leaderboard(ctx)
				return err
			})
			return nil
		})
	}
	_ = g.Wait()
	if ctx.Err() != nil {
		return
	}

	vm := views.StatsViewModel{Title: "Statistics", UserName: session.Username}
	addErr := func(table string, err error) {
		if err != nil {
			s.metrics.fetchErrors.WithLabelValues(table).Inc()
			s.logger.Error("backend call failed", "table", table, "error", err)
			vm.Errors = append(vm.Errors, fmt.Sprintf("%s: %v", models.Title(table), err))
		}
	}
	addErr(models.QuestionsTableName, questionsErr)
	addErr(models.AccountsTableName, accountsErr)
	addErr(models.LeaderboardTableName, boardErr)

	if canView(models.QuestionsTableName) && questionsErr == nil {
		cols := models.QuestionColumns()
		vm.Charts = append(vm.Charts,
			views.BuildChart("Questions by difficulty", views.CountBy(questions, cols, "difficulty")),
			views.BuildChart("Questions by status", views.CountBy(questions, cols, "status")),
		)
		vm.Summaries = append(vm.Summaries, aggregates.SummarizeKeys(questions, cols, "acceptance")...)
	}
	if canView(models.AccountsTableName) && accountsErr == nil {
		vm.Charts = append(vm.Charts,
			views.BuildChart("Accounts by role", views.CountBy(accounts, models.AccountColumns(), "role")))
		vm.Summaries = append(vm.Summaries, aggregates.SummarizeKeys(accounts, models.AccountColumns(), "active", "created_at")...)
	}
	if canView(models.LeaderboardTableName) && boardErr == nil {
		vm.Charts = append(vm.Charts,
			views.BuildChart("Top scores", views.TopN(standings, models.StandingColumns(), "username", "score", 10)))
		vm.Summaries = append(vm.Summaries, aggregates.SummarizeKeys(standings, models.StandingColumns(), "score", "solved")...)
	}

	s.render(w, http.StatusOK, func(out io.Writer) error { return s.renderer.RenderStats(out, vm) })
}

// timedCall runs a backend call, recording its duration.
func (s *Server) timedCall(ctx context.Context, table string, call func(context.Context) error) error {
	start := time.Now()
	err := call(ctx)
	s.metrics.fetchDuration.WithLabelValues(table).Observe(time.Since(start).Seconds())
	return err
}

// loginForm is the submitted login form.
type loginForm struct {
	Username string `validate:"required,max=64"`
	Password string `validate:"required,max=256"`
}

var formValidator = validator.New()

func (f loginForm) validate() []string {
	err := formValidator.Struct(f)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required.")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fe.Field()+" is invalid.")
		}
	}
	return msgs
}

func (s *Server) loginPage(next string) views.LoginViewModel {
	_, enabled := s.backend.(datasources.Authenticator)
	return views.LoginViewModel{
		Title:   "Sign in",
		Next:    auth.SafeNext(next),
		Enabled: enabled,
	}
}

func (s *Server) renderLogin(w http.ResponseWriter, status int, vm views.LoginViewModel) {
	s.render(w, status, func(out io.Writer) error { return s.renderer.RenderLogin(out, vm) })
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if auth.Decide(s.guard.Load(r), s.now()) == auth.Allow {
		http.Redirect(w, r, auth.SafeNext(next), http.StatusSeeOther)
		return
	}
	s.renderLogin(w, http.StatusOK, s.loginPage(next))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Malformed login form.")
		return
	}
	form := loginForm{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
	}
	vm := s.loginPage(r.PostForm.Get("next"))
	vm.Username = form.Username

	authn, ok := s.backend.(datasources.Authenticator)
	if !ok {
		vm.Error = datasources.ErrLoginUnsupported.Error()
		s.renderLogin(w, http.StatusNotImplemented, vm)
		return
	}
	if msgs := form.validate(); len(msgs) > 0 {
		vm.FieldErrors = msgs
		s.renderLogin(w, http.StatusBadRequest, vm)
		return
	}

	token, err := authn.Login(r.Context(), form.Username, form.Password)
	switch {
	case errors.Is(err, datasources.ErrUnauthorized):
		s.logger.Info("login rejected", "user", form.Username)
		vm.Error = "Invalid username or password."
		s.renderLogin(w, http.StatusUnauthorized, vm)
		return
	case err != nil:
		s.logger.Error("login failed", "user", form.Username, "error", err)
		vm.Error = "The platform could not be reached. Try again later."
		s.renderLogin(w, http.StatusBadGateway, vm)
		return
	}

	session, err := s.decoder.Decode(token)
	if err != nil || auth.Decide(session, s.now()) != auth.Allow {
		s.logger.Error("unusable token from platform", "user", form.Username, "error", err)
		vm.Error = "The platform returned an unusable session."
		s.renderLogin(w, http.StatusBadGateway, vm)
		return
	}
	if err := s.guard.SaveToken(w, r, token); err != nil {
		s.logger.Error("saving session", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Could not save the session.")
		return
	}
	s.logger.Info("logged in", "user", session.Username, "role", session.Role)
	http.Redirect(w, r, vm.Next, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.guard.Clear(w, r); err != nil {
		s.logger.Error("clearing session", "error", err)
	}
	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}

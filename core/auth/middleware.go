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

package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/sessions"
)

const (
	// SessionName is the name of the cookie session holding the token.
	SessionName = "arenaboard"
	tokenKey    = "token"

	// LoginPath is where unauthenticated requests are redirected.
	LoginPath = "/login"
)

// Middleware applies the route guard to HTTP handlers.
type Middleware struct {
	store   sessions.Store
	decoder *Decoder
	logger  *slog.Logger
	now     func() time.Time
}

// NewMiddleware creates a guard reading tokens from the cookie store.
func NewMiddleware(store sessions.Store, decoder *Decoder, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{
		store:   store,
		decoder: decoder,
		logger:  logger,
		now:     time.Now,
	}
}

// Require returns middleware that only lets sessions with one of the roles through.
// Without roles any authenticated, unexpired session passes.
func (m *Middleware) Require(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := m.Load(r)
			switch Decide(session, m.now(), roles...) {
			case Allow:
				next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
			case Expired:
				m.logger.Info("session expired", "user", session.Username, "path", r.URL.Path)
				if err := m.Clear(w, r); err != nil {
					m.logger.Error("clearing session", "error", err)
				}
				redirectToLogin(w, r)
			case Forbidden:
				m.logger.Warn("forbidden", "user", session.Username, "role", session.Role, "path", r.URL.Path)
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			default:
				redirectToLogin(w, r)
			}
		})
	}
}

// Load decodes the session of the request from an Authorization bearer header or
// the session cookie. It returns nil when there is no valid token.
func (m *Middleware) Load(r *http.Request) *Session {
	token := bearerToken(r)
	if token == "" {
		sess, err := m.store.Get(r, SessionName)
		if err != nil {
			// gorilla returns a fresh session along with the decode error
			m.logger.Debug("reading session cookie", "error", err)
		}
		if sess != nil {
			token, _ = sess.Values[tokenKey].(string)
		}
	}

	session, err := m.decoder.Decode(token)
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			m.logger.Info("rejecting token", "error", err)
		}
		return nil
	}
	return session
}

// SaveToken stores the token in the session cookie.
func (m *Middleware) SaveToken(w http.ResponseWriter, r *http.Request, token string) error {
	sess, _ := m.store.Get(r, SessionName)
	sess.Values[tokenKey] = token
	return sess.Save(r, w)
}

// Clear removes the session cookie.
func (m *Middleware) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, SessionName)
	delete(sess.Values, tokenKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := LoginPath
	if r.Method == http.MethodGet && r.URL.Path != LoginPath {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SafeNext returns the redirect target after login. Only local paths are accepted.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

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

// Package server serves the dashboard over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/arenaboard/core/auth"
	"github.com/google/arenaboard/core/models"
	"github.com/google/arenaboard/core/query"
	"github.com/google/arenaboard/core/rendering"
	"github.com/google/arenaboard/datasources"
	"github.com/gorilla/sessions"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
)

// ErrUnverifiedTokens is returned by NewServer when tokens would be trusted
// without a signature check.
var ErrUnverifiedTokens = errors.New("server: a token secret is required unless the backend verifies tokens")

// Config holds the dependencies and settings of a Server.
type Config struct {
	Title     string
	Subtitle  string
	DataModel *models.DataModel
	Backend   datasources.Backend
	Store     sessions.Store
	Decoder   *auth.Decoder
	Logger    *slog.Logger

	CacheSize    int           // snapshots kept, per user and table
	CacheTTL     time.Duration // 0 keeps snapshots until evicted or refreshed
	DefaultLimit int           // rows shown when the URL has no limit
}

// Server represents the application server with all its dependencies
type Server struct {
	title        string
	subtitle     string
	dataModel    *models.DataModel
	backend      datasources.Backend
	bindings     map[string]binding
	renderer     *rendering.TableRenderer
	store        sessions.Store
	decoder      *auth.Decoder
	guard        *auth.Middleware
	cache        *expirable.LRU[string, snapshot]
	metrics      *metrics
	logger       *slog.Logger
	defaultLimit int
	now          func() time.Time
}

// NewServer creates a new server from the config.
func NewServer(cfg Config) (*Server, error) {
	if cfg.DataModel == nil {
		return nil, errors.New("server: data model is required")
	}
	if cfg.Backend == nil {
		return nil, errors.New("server: backend is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("server: session store is required")
	}
	if cfg.Decoder == nil {
		cfg.Decoder = auth.NewDecoder("")
	}
	if !cfg.Decoder.Verifies() {
		// Unsigned tokens are only trusted when the backend checks them itself.
		if tv, ok := cfg.Backend.(datasources.TokenVerifier); !ok || !tv.VerifiesTokens() {
			return nil, ErrUnverifiedTokens
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if cfg.DefaultLimit < 0 {
		cfg.DefaultLimit = query.DefaultLimit
	}

	renderer, err := rendering.NewTableRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	return &Server{
		title:        cfg.Title,
		subtitle:     cfg.Subtitle,
		dataModel:    cfg.DataModel,
		backend:      cfg.Backend,
		bindings:     bindTables(cfg.Backend, cfg.DataModel),
		renderer:     renderer,
		store:        cfg.Store,
		decoder:      cfg.Decoder,
		guard:        auth.NewMiddleware(cfg.Store, cfg.Decoder, cfg.Logger),
		cache:        expirable.NewLRU[string, snapshot](cfg.CacheSize, nil, cfg.CacheTTL),
		metrics:      newMetrics(),
		logger:       cfg.Logger,
		defaultLimit: cfg.DefaultLimit,
		now:          time.Now,
	}, nil
}

// NewCookieStore creates the cookie store holding session tokens and flashes.
func NewCookieStore(secret []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  slog.NewLogLogger(s.logger.Handler(), slog.LevelInfo),
			NoColor: true,
		}),
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", s.metrics.handler())

	r.Get(auth.LoginPath, s.handleLoginForm)
	r.Post(auth.LoginPath, s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.guard.Require())
		r.Get("/", s.handleLanding)
		r.Get("/stats", s.handleStats)
		r.Get("/tables/{name}", s.handleTable)
		r.Post("/tables/{name}/delete", s.handleDelete)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "Page not found.")
	})
	return r
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string, readHeaderTimeout, shutdownTimeout time.Duration) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: readHeaderTimeout,
	}

	eg.Go(func() error {
		s.logger.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

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

// Package datasources provides the backends the dashboard reads records from and
// deletes records through: an in-memory store, a SQLite database and the platform's
// REST API. Backends are opened by source type through a Manager.
package datasources

import (
	"context"
	"errors"
	"time"

	"github.com/google/arenaboard/core/models"
)

var (
	// ErrNotFound is returned when a backend has no such resource.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the backend rejects the credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrLoginUnsupported is returned when the backend cannot issue sessions.
	ErrLoginUnsupported = errors.New("login is not supported by this data source")
	// ErrUnknownSource is returned when no opener is registered for a source type.
	ErrUnknownSource = errors.New("unknown source type")
)

// Backend is the contract between the dashboard and its data source. Every call
// runs under the caller's context: when the context is done the call returns its
// error and the result is discarded.
type Backend interface {
	ListAccounts(ctx context.Context) ([]models.Account, error)
	// DeleteAccounts deletes the accounts and returns how many existed.
	DeleteAccounts(ctx context.Context, ids []string) (int, error)
	ListQuestions(ctx context.Context) ([]models.Question, error)
	DeleteQuestions(ctx context.Context, ids []string) (int, error)
	Leaderboard(ctx context.Context) ([]models.Standing, error)
	Close() error
}

// Authenticator is implemented by backends that can exchange credentials for a
// session token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Seeder is implemented by backends that can be populated with a dataset.
type Seeder interface {
	Seed(ctx context.Context, ds Dataset) error
}

// TokenVerifier is implemented by backends that send the session token to a
// platform which checks its signature on every call.
type TokenVerifier interface {
	VerifiesTokens() bool
}

// Dataset is a full set of records, used for seeding.
type Dataset struct {
	Accounts  []models.Account
	Questions []models.Question
	Standings []models.Standing
}

// Config selects and configures a backend.
type Config struct {
	Type    string        // source type, e.g. "memory", "sqlite" or "api"
	Path    string        // sqlite database file
	URL     string        // api base URL
	Timeout time.Duration // api request timeout
	Retries int           // api retry count
}

// Opener is the interface that every source type must implement.
// Built-in openers exist for "sqlite" and "api"; "memory" needs a dataset and is
// registered by the caller.
type Opener interface {
	// SourceType returns the type identifier used in config.
	SourceType() string

	// Open connects to the data source.
	Open(ctx context.Context, cfg Config) (Backend, error)
}

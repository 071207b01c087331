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

package datasources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/arenaboard/core/auth"
	"github.com/google/arenaboard/core/models"
)

// DefaultAPITimeout is used when Config.Timeout is zero.
const DefaultAPITimeout = 10 * time.Second

// APIClient is a Backend talking to the platform's REST API. Requests carry the
// token of the session found in the request context.
type APIClient struct {
	client *resty.Client
}

// apiError is the error body returned by the platform.
type apiError struct {
	Message string `json:"error"`
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

type deleteResponse struct {
	Deleted int `json:"deleted"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// NewAPIClient creates a client for the API at baseURL.
func NewAPIClient(baseURL string, timeout time.Duration, retries int) (*APIClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api: base URL is required")
	}
	if timeout <= 0 {
		timeout = DefaultAPITimeout
	}
	if retries < 0 {
		retries = 0
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(retries).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	client.AddRetryCondition(retryCondition)

	return &APIClient{client: client}, nil
}

// retryCondition retries network errors, server errors and throttling of
// idempotent requests. Deletes are POSTs and are never replayed.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || !idempotent(r.Request.Method) {
		return false
	}
	if err != nil {
		return true
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// request prepares a request carrying the caller's token.
func (c *APIClient) request(ctx context.Context, body, result any) *resty.Request {
	req := c.client.R().SetContext(ctx).SetError(&apiError{})
	if session, ok := auth.FromContext(ctx); ok && session.Token != "" {
		req.SetAuthToken(session.Token)
	}
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	return req
}

// handleResponse maps error statuses to errors.
func handleResponse(method, path string, resp *resty.Response) error {
	code := resp.StatusCode()
	if code < 400 {
		return nil
	}

	msg := resp.Status()
	if e, ok := resp.Error().(*apiError); ok && e != nil && e.Message != "" {
		msg = e.Message
	}
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s %s: %w: %s", method, path, ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w: %s", method, path, ErrNotFound, msg)
	default:
		return fmt.Errorf("%s %s: API error: %s (status %d)", method, path, msg, code)
	}
}

func (c *APIClient) get(ctx context.Context, path string, result any) error {
	resp, err := c.request(ctx, nil, result).Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: request failed: %w", path, err)
	}
	return handleResponse(http.MethodGet, path, resp)
}

func (c *APIClient) post(ctx context.Context, path string, body, result any) error {
	resp, err := c.request(ctx, body, result).Post(path)
	if err != nil {
		return fmt.Errorf("POST %s: request failed: %w", path, err)
	}
	return handleResponse(http.MethodPost, path, resp)
}

func (c *APIClient) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := c.get(ctx, "/accounts", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *APIClient) DeleteAccounts(ctx context.Context, ids []string) (int, error) {
	var res deleteResponse
	if err := c.post(ctx, "/accounts/delete", idsRequest{IDs: ids}, &res); err != nil {
		return 0, err
	}
	return res.Deleted, nil
}

func (c *APIClient) ListQuestions(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	if err := c.get(ctx, "/questions", &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (c *APIClient) DeleteQuestions(ctx context.Context, ids []string) (int, error) {
	var res deleteResponse
	if err := c.post(ctx, "/questions/delete", idsRequest{IDs: ids}, &res); err != nil {
		return 0, err
	}
	return res.Deleted, nil
}

func (c *APIClient) Leaderboard(ctx context.Context) ([]models.Standing, error) {
	var standings []models.Standing
	if err := c.get(ctx, "/leaderboard", &standings); err != nil {
		return nil, err
	}
	return standings, nil
}

// Login exchanges credentials for a platform token.
func (c *APIClient) Login(ctx context.Context, username, password string) (string, error) {
	var res loginResponse
	if err := c.post(ctx, "/auth/login", loginRequest{Username: username, Password: password}, &res); err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", fmt.Errorf("POST /auth/login: %w: empty token", ErrUnauthorized)
	}
	return res.Token, nil
}

// VerifiesTokens reports true: the platform rejects forged bearer tokens.
func (c *APIClient) VerifiesTokens() bool { return true }

func (c *APIClient) Close() error { return nil }

// APIOpener opens API clients from Config.URL.
type APIOpener struct{}

// SourceType returns "api".
func (APIOpener) SourceType() string { return "api" }

func (APIOpener) Open(_ context.Context, cfg Config) (Backend, error) {
	return NewAPIClient(cfg.URL, cfg.Timeout, cfg.Retries)
}

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

// Package auth guards routes with sessions decoded from bearer tokens.
//
// The guard never reads ambient state: a Session is decoded by the caller and passed
// to Decide explicitly, which makes the decision a pure function of the session, the
// current time and the allowed roles. Middleware adapts Decide to HTTP handlers.
package auth

import (
	"context"
	"time"
)

// Session is the identity decoded from a token.
type Session struct {
	Subject   string
	Username  string
	Role      Role
	ExpiresAt time.Time
	Token     string
}

// Expired reports whether the session is expired at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying the session.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, session)
}

// FromContext returns the session stored by the guard, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(contextKey{}).(*Session)
	return session, ok && session != nil
}

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
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken is returned when there is no token to decode.
	ErrNoToken = errors.New("no token")
	// ErrInvalidToken is returned for malformed or unverifiable tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingExpiry is returned for tokens without an exp claim.
	ErrMissingExpiry = errors.New("token exp is required")
	// ErrNoSecret is returned when signing without a secret.
	ErrNoSecret = errors.New("no signing secret")
)

// tokenClaims is the claims type used for parsing.
type tokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Decoder turns bearer tokens into sessions.
//
// With a secret, tokens must be HS256-signed with it. Without one the payload is
// decoded without verifying the signature, which is only suitable when the token was
// already verified upstream.
type Decoder struct {
	secret []byte
}

// NewDecoder creates a decoder. An empty secret disables signature verification.
func NewDecoder(secret string) *Decoder {
	return &Decoder{secret: []byte(secret)}
}

// Verifies reports whether the decoder checks signatures.
func (d *Decoder) Verifies() bool {
	return len(d.secret) > 0
}

// Decode parses the token. Expiry is not enforced here; see Decide.
func (d *Decoder) Decode(token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoToken
	}

	var parsed tokenClaims
	var err error
	if d.Verifies() {
		_, err = jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
			return d.secret, nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		)
	} else {
		_, _, err = jwt.NewParser(jwt.WithoutClaimsValidation()).ParseUnverified(token, &parsed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if parsed.ExpiresAt == nil {
		return nil, ErrMissingExpiry
	}

	session := &Session{
		Subject:   parsed.Subject,
		Username:  parsed.Username,
		Role:      Role(parsed.Role),
		ExpiresAt: parsed.ExpiresAt.Time.UTC(),
		Token:     token,
	}
	if session.Username == "" {
		session.Username = session.Subject
	}
	return session, nil
}

// Encode signs an HS256 token for the session with the decoder's secret. Only
// development tokens are minted this way.
func (d *Decoder) Encode(s Session) (string, error) {
	if !d.Verifies() {
		return "", ErrNoSecret
	}
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Subject,
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Username: s.Username,
		Role:     string(s.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.secret)
}

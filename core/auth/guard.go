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

import "time"

// Decision is the outcome of a route guard check.
type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Expired
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Expired:
		return "expired"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decide checks a session against the current time and the roles allowed on a
// route. A nil session is unauthenticated. With no allowed roles any unexpired
// session is accepted.
func Decide(session *Session, now time.Time, allowed ...Role) Decision {
	if session == nil {
		return Unauthenticated
	}
	if session.Expired(now) {
		return Expired
	}
	if len(allowed) > 0 && !HasAnyRole(session, allowed) {
		return Forbidden
	}
	return Allow
}

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

// Role is the platform role carried by a session token.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleModerator  Role = "moderator"
	RoleContestant Role = "contestant"
)

// Roles lists the known roles from most to least privileged.
var Roles = []Role{RoleAdmin, RoleModerator, RoleContestant}

// Known reports whether r is one of the platform roles.
func (r Role) Known() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// HasRole checks if a session carries the given role.
func HasRole(session *Session, role Role) bool {
	if session == nil {
		return false
	}
	return session.Role == role
}

// HasAnyRole checks if a session carries any of the given roles.
func HasAnyRole(session *Session, roles []Role) bool {
	if session == nil {
		return false
	}
	for _, r := range roles {
		if session.Role == r {
			return true
		}
	}
	return false
}

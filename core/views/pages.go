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

package views

import (
	"net/http"

	"github.com/google/arenaboard/core/auth"
	"github.com/google/arenaboard/core/models"
	"github.com/google/safehtml"
)

// LandingViewModel is the index page listing the tables the user may open.
type LandingViewModel struct {
	Title    string
	Subtitle string
	UserName string
	Role     string
	Tables   []TableLink
	HasStats bool
}

// TableLink is one entry of the landing page.
type TableLink struct {
	Name        string
	Title       string
	Description string
	URL         safehtml.URL
	System      bool
}

// BuildLandingViewModel lists the tables visible to the session.
func BuildLandingViewModel(title, subtitle string, session *auth.Session, infos []models.TableInfo) LandingViewModel {
	vm := LandingViewModel{
		Title:    title,
		Subtitle: subtitle,
	}
	if session != nil {
		vm.UserName = session.Username
		vm.Role = string(session.Role)
	}
	for _, info := range infos {
		vm.Tables = append(vm.Tables, TableLink{
			Name:        info.Name,
			Title:       info.Title,
			Description: info.Description,
			URL:         safehtml.URLSanitized(info.URL()),
			System:      models.IsSystemTable(info.Name),
		})
	}
	vm.HasStats = session != nil
	return vm
}

// LoginViewModel is the login form.
type LoginViewModel struct {
	Title       string
	UserName    string // Always empty, the login page has no session
	Username    string
	Next        string
	Error       string
	FieldErrors []string
	Enabled     bool // False when the backend cannot log users in
}

// ErrorViewModel is a textual error page.
type ErrorViewModel struct {
	Title      string
	UserName   string
	Status     int
	StatusText string
	Message    string
	BackURL    safehtml.URL
}

// BuildErrorViewModel creates an error page for the status.
func BuildErrorViewModel(status int, message string, back string) ErrorViewModel {
	if back == "" {
		back = "/"
	}
	return ErrorViewModel{
		Title:      http.StatusText(status),
		Status:     status,
		StatusText: http.StatusText(status),
		Message:    message,
		BackURL:    safehtml.URLSanitized(back),
	}
}

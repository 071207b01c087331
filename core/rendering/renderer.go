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

package rendering

import (
	"embed"
	"fmt"
	"io"

	"github.com/google/arenaboard/core/views"
	"github.com/google/safehtml/template"
)

//go:embed templates/*
var templateFS embed.FS

// TableRenderer handles rendering of view models to HTML
type TableRenderer struct {
	tableTemplate   *template.Template
	landingTemplate *template.Template
	loginTemplate   *template.Template
	statsTemplate   *template.Template
	errorTemplate   *template.Template
}

// parsePage parses a page template together with the shared layout.
func parsePage(trustedFS template.TrustedFS, page string) (*template.Template, error) {
	t, err := template.New("layout.html").ParseFS(trustedFS, "templates/layout.html", "templates/"+page)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", page, err)
	}
	return t, nil
}

// NewTableRenderer creates a new renderer
func NewTableRenderer() (*TableRenderer, error) {
	trustedFS := template.TrustedFSFromEmbed(templateFS)

	r := &TableRenderer{}
	var err error
	if r.tableTemplate, err = parsePage(trustedFS, "table.html"); err != nil {
		return nil, err
	}
	if r.landingTemplate, err = parsePage(trustedFS, "landing.html"); err != nil {
		return nil, err
	}
	if r.loginTemplate, err = parsePage(trustedFS, "login.html"); err != nil {
		return nil, err
	}
	if r.statsTemplate, err = parsePage(trustedFS, "stats.html"); err != nil {
		return nil, err
	}
	if r.errorTemplate, err = parsePage(trustedFS, "error.html"); err != nil {
		return nil, err
	}
	return r, nil
}

// Render renders a TableViewModel to the provided writer
func (r *TableRenderer) Render(w io.Writer, vm views.TableViewModel) error {
	return r.tableTemplate.Execute(w, vm)
}

// RenderLanding renders a LandingViewModel to the provided writer
func (r *TableRenderer) RenderLanding(w io.Writer, vm views.LandingViewModel) error {
	return r.landingTemplate.Execute(w, vm)
}

// RenderLogin renders the login form
func (r *TableRenderer) RenderLogin(w io.Writer, vm views.LoginViewModel) error {
	return r.loginTemplate.Execute(w, vm)
}

// RenderStats renders the charts page
func (r *TableRenderer) RenderStats(w io.Writer, vm views.StatsViewModel) error {
	return r.statsTemplate.Execute(w, vm)
}

// RenderError renders a textual error page
func (r *TableRenderer) RenderError(w io.Writer, vm views.ErrorViewModel) error {
	return r.errorTemplate.Execute(w, vm)
}

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
	"fmt"
	"slices"
	"sync"
)

// Manager holds the registered openers, indexed by source type.
type Manager struct {
	mu      sync.RWMutex
	openers map[string]Opener
}

// NewManager creates a manager with the built-in sqlite and api openers.
func NewManager() *Manager {
	m := &Manager{openers: make(map[string]Opener)}
	m.Register(SQLiteOpener{})
	m.Register(APIOpener{})
	return m
}

// Register registers an opener for its source type.
// If an opener is already registered for this type, it will be replaced.
func (m *Manager) Register(opener Opener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openers[opener.SourceType()] = opener
}

// SourceTypes returns the registered source types in sorted order.
func (m *Manager) SourceTypes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	types := make([]string, 0, len(m.openers))
	for t := range m.openers {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Open opens the backend for cfg.Type.
func (m *Manager) Open(ctx context.Context, cfg Config) (Backend, error) {
	m.mu.RLock()
	opener, ok := m.openers[cfg.Type]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownSource, cfg.Type, m.SourceTypes())
	}

	backend, err := opener.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s source: %w", cfg.Type, err)
	}
	return backend, nil
}

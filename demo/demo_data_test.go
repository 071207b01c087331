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

package demo

import (
	"context"
	"testing"

	"github.com/google/arenaboard/datasources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataset(t *testing.T) {
	ds, err := Dataset()
	require.NoError(t, err)

	assert.Len(t, ds.Accounts, 10)
	assert.Len(t, ds.Questions, 12)
	assert.Len(t, ds.Standings, 7)

	accounts := make(map[string]bool)
	for _, a := range ds.Accounts {
		accounts[a.ID] = true
	}
	for _, s := range ds.Standings {
		assert.True(t, accounts[s.AccountID], "standing %s has no account", s.AccountID)
		assert.NotEmpty(t, s.Username)
	}
}

func TestOpener(t *testing.T) {
	m := datasources.NewManager()
	m.Register(Opener())

	b, err := m.Open(context.Background(), datasources.Config{Type: "memory"})
	require.NoError(t, err)
	defer b.Close()

	board, err := b.Leaderboard(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, board)
	assert.Equal(t, "carol", board[0].Username)
	assert.Equal(t, 1, board[0].Rank)
}

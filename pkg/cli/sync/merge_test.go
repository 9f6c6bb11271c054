/* Copyright 2025 Doto Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sync

import (
	"testing"

	"github.com/getdoto/doto/pkg/assert"
	"github.com/getdoto/doto/pkg/cli/database"
)

func TestMerge(t *testing.T) {
	testCases := []struct {
		name     string
		local    []database.Item
		remote   []database.Item
		expected []database.Item
	}{
		{
			name:  "remote only item is kept",
			local: []database.Item{},
			remote: []database.Item{
				{ID: "item-1", Text: "buy milk", Importance: database.ImportanceDefault, CreatedAt: 1000},
			},
			expected: []database.Item{
				{ID: "item-1", Text: "buy milk", Importance: database.ImportanceDefault, CreatedAt: 1000},
			},
		},
		{
			name: "local only item is kept",
			local: []database.Item{
				{ID: "item-1", Text: "buy milk", Importance: database.ImportanceDefault, CreatedAt: 1000},
			},
			remote: []database.Item{},
			expected: []database.Item{
				{ID: "item-1", Text: "buy milk", Importance: database.ImportanceDefault, CreatedAt: 1000},
			},
		},
		{
			name: "newer local copy wins",
			local: []database.Item{
				{ID: "item-1", Text: "buy oat milk", CreatedAt: 1000, ModifiedAt: 3000},
			},
			remote: []database.Item{
				{ID: "item-1", Text: "buy milk", CreatedAt: 1000, ModifiedAt: 2000},
			},
			expected: []database.Item{
				{ID: "item-1", Text: "buy oat milk", CreatedAt: 1000, ModifiedAt: 3000},
			},
		},
		{
			name: "newer remote copy wins",
			local: []database.Item{
				{ID: "item-1", Text: "buy milk", CreatedAt: 1000, ModifiedAt: 2000},
			},
			remote: []database.Item{
				{ID: "item-1", Text: "buy oat milk", CreatedAt: 1000, ModifiedAt: 3000},
			},
			expected: []database.Item{
				{ID: "item-1", Text: "buy oat milk", CreatedAt: 1000, ModifiedAt: 3000},
			},
		},
		{
			name: "remote copy wins a tie",
			local: []database.Item{
				{ID: "item-1", Text: "buy milk", CreatedAt: 1000, ModifiedAt: 2000},
			},
			remote: []database.Item{
				{ID: "item-1", Text: "buy oat milk", Done: true, CreatedAt: 1000, ModifiedAt: 2000},
			},
			expected: []database.Item{
				{ID: "item-1", Text: "buy oat milk", Done: true, CreatedAt: 1000, ModifiedAt: 2000},
			},
		},
		{
			name: "creation time stands in for a missing modification time",
			local: []database.Item{
				{ID: "item-1", Text: "buy milk", CreatedAt: 5000},
			},
			remote: []database.Item{
				{ID: "item-1", Text: "buy oat milk", CreatedAt: 1000, ModifiedAt: 4000},
			},
			expected: []database.Item{
				{ID: "item-1", Text: "buy milk", CreatedAt: 5000},
			},
		},
		{
			name: "disjoint and overlapping items together",
			local: []database.Item{
				{ID: "item-1", Text: "buy milk", CreatedAt: 1000, ModifiedAt: 9000},
				{ID: "item-2", Text: "water plants", CreatedAt: 2000},
			},
			remote: []database.Item{
				{ID: "item-1", Text: "buy oat milk", CreatedAt: 1000, ModifiedAt: 2000},
				{ID: "item-3", Text: "call dentist", CreatedAt: 3000},
			},
			expected: []database.Item{
				{ID: "item-1", Text: "buy milk", CreatedAt: 1000, ModifiedAt: 9000},
				{ID: "item-2", Text: "water plants", CreatedAt: 2000},
				{ID: "item-3", Text: "call dentist", CreatedAt: 3000},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Merge(tc.local, tc.remote)

			assert.DeepEqual(t, got, tc.expected, "merge result mismatch")
		})
	}
}

func TestMergeIdempotent(t *testing.T) {
	local := []database.Item{
		{ID: "item-1", Text: "buy milk", CreatedAt: 1000, ModifiedAt: 9000},
		{ID: "item-2", Text: "water plants", CreatedAt: 2000},
	}
	remote := []database.Item{
		{ID: "item-1", Text: "buy oat milk", CreatedAt: 1000, ModifiedAt: 2000},
		{ID: "item-3", Text: "call dentist", CreatedAt: 3000},
	}

	once := Merge(local, remote)
	twice := Merge(once, remote)

	assert.DeepEqual(t, twice, once, "merging twice changed the result")
}

func TestMergeKeepsEveryID(t *testing.T) {
	local := []database.Item{
		{ID: "item-1", CreatedAt: 1000},
		{ID: "item-2", CreatedAt: 2000},
	}
	remote := []database.Item{
		{ID: "item-2", CreatedAt: 2000, ModifiedAt: 2500},
		{ID: "item-3", CreatedAt: 3000},
	}

	got := Merge(local, remote)

	ids := map[string]bool{}
	for _, item := range got {
		ids[item.ID] = true
	}

	assert.Equal(t, len(got), 3, "result length mismatch")
	for _, id := range []string{"item-1", "item-2", "item-3"} {
		assert.Equal(t, ids[id], true, "missing id "+id)
	}
}

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

// Package sync reconciles the local item list with the server
package sync

import (
	"sort"

	"github.com/getdoto/doto/pkg/cli/database"
	"github.com/getdoto/doto/pkg/cli/log"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Merge reconciles the local and remote item lists into a single list. Items
// present on only one side are kept. For items present on both sides, the copy
// with the later effective timestamp wins and the remote copy wins a tie.
// The result is ordered by creation time for determinism.
func Merge(local, remote []database.Item) []database.Item {
	localByID := make(map[string]database.Item, len(local))
	for _, item := range local {
		localByID[item.ID] = item
	}

	merged := make([]database.Item, 0, len(local)+len(remote))
	seen := make(map[string]bool, len(remote))

	for _, remoteItem := range remote {
		seen[remoteItem.ID] = true

		localItem, ok := localByID[remoteItem.ID]
		if !ok {
			merged = append(merged, remoteItem)
			continue
		}

		if localItem.EffectiveTime() > remoteItem.EffectiveTime() {
			merged = append(merged, localItem)
			continue
		}

		debugConflict(localItem, remoteItem)
		merged = append(merged, remoteItem)
	}

	for _, localItem := range local {
		if !seen[localItem.ID] {
			merged = append(merged, localItem)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].CreatedAt != merged[j].CreatedAt {
			return merged[i].CreatedAt < merged[j].CreatedAt
		}
		return merged[i].ID < merged[j].ID
	})

	return merged
}

// debugConflict logs a diff of the local text being overwritten by the remote
// copy. It is a no-op unless debug logging is on.
func debugConflict(local, remote database.Item) {
	if !log.IsDebug() || local.Text == remote.Text {
		return
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(local.Text, remote.Text, false)
	log.Debug("item %s overwritten by remote: %s\n", local.ID, dmp.DiffPrettyText(diffs))
}

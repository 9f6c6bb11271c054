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
	"github.com/getdoto/doto/pkg/cli/consts"
	"github.com/getdoto/doto/pkg/cli/database"
	"github.com/pkg/errors"
)

// RevisionTracker persists the last server revision the client has seen
type RevisionTracker struct {
	db *database.DB
}

// NewRevisionTracker returns a tracker backed by the given database
func NewRevisionTracker(db *database.DB) *RevisionTracker {
	return &RevisionTracker{db: db}
}

// Get returns the last recorded revision. It is 0 for a fresh install.
func (t *RevisionTracker) Get() (int, error) {
	var revision int
	if err := database.GetSystem(t.db, consts.SystemLastRevision, &revision); err != nil {
		if database.IsNoRows(err) {
			return 0, nil
		}

		return 0, errors.Wrap(err, "getting last revision")
	}

	return revision, nil
}

// Set records the given revision
func (t *RevisionTracker) Set(revision int) error {
	if err := database.UpsertSystem(t.db, consts.SystemLastRevision, revision); err != nil {
		return errors.Wrap(err, "updating last revision")
	}

	return nil
}

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
	"github.com/pkg/errors"
)

func TestRevisionTrackerFreshInstall(t *testing.T) {
	db := database.InitTestMemoryDB(t)
	defer db.Close()

	tracker := NewRevisionTracker(db)

	got, err := tracker.Get()
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	assert.Equal(t, got, 0, "revision mismatch")
}

func TestRevisionTrackerRoundtrip(t *testing.T) {
	db := database.InitTestMemoryDB(t)
	defer db.Close()

	tracker := NewRevisionTracker(db)

	if err := tracker.Set(7); err != nil {
		t.Fatal(errors.Wrap(err, "setting"))
	}
	if err := tracker.Set(8); err != nil {
		t.Fatal(errors.Wrap(err, "overwriting"))
	}

	got, err := tracker.Get()
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting"))
	}

	assert.Equal(t, got, 8, "revision mismatch")
}

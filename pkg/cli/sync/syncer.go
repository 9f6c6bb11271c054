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
	"context"
	"sync"

	"github.com/getdoto/doto/pkg/cli/client"
	"github.com/getdoto/doto/pkg/cli/consts"
	dotoctx "github.com/getdoto/doto/pkg/cli/context"
	"github.com/getdoto/doto/pkg/cli/database"
	"github.com/getdoto/doto/pkg/cli/log"
	"github.com/pkg/errors"
)

// Remote is the subset of the server API that a sync pass uses
type Remote interface {
	GetList() (client.ListResponse, error)
	UpdateList(revision int, list []client.ItemWire) (client.ListResponse, error)
}

// httpRemote talks to the configured server over HTTP
type httpRemote struct {
	ctx dotoctx.DotoCtx
}

func (r httpRemote) GetList() (client.ListResponse, error) {
	return client.GetList(r.ctx)
}

func (r httpRemote) UpdateList(revision int, list []client.ItemWire) (client.ListResponse, error) {
	return client.UpdateList(r.ctx, revision, list)
}

// Syncer runs full synchronization passes against the server. At most one
// pass is in flight at a time. Concurrent calls wait for the running pass to
// finish and then run their own.
type Syncer struct {
	ctx       dotoctx.DotoCtx
	remote    Remote
	revisions *RevisionTracker
	retry     RetryPolicy
	deviceID  string

	mu sync.Mutex
}

// NewSyncer returns a syncer for the given environment
func NewSyncer(ctx dotoctx.DotoCtx, deviceID string) *Syncer {
	return &Syncer{
		ctx:       ctx,
		remote:    httpRemote{ctx: ctx},
		revisions: NewRevisionTracker(ctx.DB),
		retry:     DefaultRetryPolicy(),
		deviceID:  deviceID,
	}
}

// Synchronize runs one full sync pass, retrying per the retry policy. The
// error from the last attempt is returned as is.
func (s *Syncer) Synchronize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retry.Run(ctx, s.pass)
}

// pass fetches the server's list, merges it with the local list, replaces the
// local list with the result, pushes the merged list and records the server's
// new revision. Any failure aborts the pass and local state beyond already
// completed steps is untouched.
func (s *Syncer) pass() error {
	fetched, err := s.remote.GetList()
	if err != nil {
		return errors.Wrap(err, "fetching the server list")
	}
	if err := s.revisions.Set(fetched.Revision); err != nil {
		return errors.Wrap(err, "recording the fetched revision")
	}

	remote, err := client.ToLocalList(fetched.List)
	if err != nil {
		return errors.Wrap(err, "converting the server list")
	}

	local, err := database.AllItems(s.ctx.DB)
	if err != nil {
		return errors.Wrap(err, "reading the local list")
	}

	merged := Merge(local, remote)

	if err := database.ReplaceAll(s.ctx.DB, merged); err != nil {
		return errors.Wrap(err, "replacing the local list")
	}

	pushed, err := s.remote.UpdateList(fetched.Revision, client.ToWireList(merged, s.deviceID))
	if err != nil {
		return errors.Wrap(err, "pushing the merged list")
	}
	if err := s.revisions.Set(pushed.Revision); err != nil {
		return errors.Wrap(err, "recording the pushed revision")
	}

	now := s.ctx.Clock.Now().UnixMilli()
	if err := database.UpsertSystem(s.ctx.DB, consts.SystemLastSyncAt, now); err != nil {
		return errors.Wrap(err, "recording the sync time")
	}

	log.Debug("sync pass done at revision %d\n", pushed.Revision)

	return nil
}

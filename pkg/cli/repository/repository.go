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

// Package repository is the single entry point for reading and mutating the
// item list. Mutations commit locally first and are pushed to the server on a
// best effort basis. A failed push is deferred to the next sync pass rather
// than surfaced to the caller.
package repository

import (
	"context"
	"time"

	"github.com/getdoto/doto/pkg/cli/client"
	dotoctx "github.com/getdoto/doto/pkg/cli/context"
	"github.com/getdoto/doto/pkg/cli/database"
	"github.com/getdoto/doto/pkg/cli/log"
	"github.com/getdoto/doto/pkg/cli/sync"
	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
)

// Repository coordinates the local database, the server and the syncer
type Repository struct {
	ctx       dotoctx.DotoCtx
	syncer    *sync.Syncer
	revisions *sync.RevisionTracker
	deviceID  string
}

// New returns a repository for the given environment
func New(ctx dotoctx.DotoCtx, deviceID string) *Repository {
	return &Repository{
		ctx:       ctx,
		syncer:    sync.NewSyncer(ctx, deviceID),
		revisions: sync.NewRevisionTracker(ctx.DB),
		deviceID:  deviceID,
	}
}

// GetItems returns all items from the local database
func (r *Repository) GetItems() ([]database.Item, error) {
	return database.AllItems(r.ctx.DB)
}

// GetItem returns the item with the given id from the local database
func (r *Repository) GetItem(id string) (database.Item, error) {
	return database.GetItem(r.ctx.DB, id)
}

// Add inserts the item locally and pushes it to the server. A failed push is
// logged and left for the next sync pass.
func (r *Repository) Add(item database.Item) error {
	if err := item.Insert(r.ctx.DB); err != nil {
		return errors.Wrap(err, "inserting item")
	}

	revision, err := r.revisions.Get()
	if err != nil {
		return errors.Wrap(err, "getting revision")
	}

	if _, err := client.CreateItem(r.ctx, revision, client.ToWire(item, r.deviceID)); err != nil {
		log.Debug("deferring push of %s to the next sync: %v\n", item.ID, err)
	}

	return nil
}

// Save updates the item locally, stamping its modification time, and pushes
// it to the server. A failed push is logged and left for the next sync pass.
func (r *Repository) Save(item database.Item) error {
	item.ModifiedAt = r.ctx.Clock.Now().UnixMilli()

	if err := item.Update(r.ctx.DB); err != nil {
		return errors.Wrap(err, "updating item")
	}

	revision, err := r.revisions.Get()
	if err != nil {
		return errors.Wrap(err, "getting revision")
	}

	if _, err := client.UpdateItem(r.ctx, revision, client.ToWire(item, r.deviceID)); err != nil {
		log.Debug("deferring push of %s to the next sync: %v\n", item.ID, err)
	}

	return nil
}

// Delete removes the item locally and in the server. The item being already
// gone from the server counts as success. A stale revision triggers one sync
// pass followed by one more delete attempt.
func (r *Repository) Delete(ctx context.Context, id string) error {
	item, err := database.GetItem(r.ctx.DB, id)
	if err != nil {
		return errors.Wrap(err, "getting item")
	}

	if err := item.Expunge(r.ctx.DB); err != nil {
		return errors.Wrap(err, "expunging item")
	}

	revision, err := r.revisions.Get()
	if err != nil {
		return errors.Wrap(err, "getting revision")
	}

	_, err = client.DeleteItem(r.ctx, revision, id)
	if err == nil {
		return nil
	}

	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.IsNotFound() {
			return nil
		}

		if httpErr.IsBadRequest() {
			if err := r.Synchronize(ctx); err != nil {
				return errors.Wrap(err, "synchronizing before delete retry")
			}

			revision, err := r.revisions.Get()
			if err != nil {
				return errors.Wrap(err, "getting revision")
			}

			_, err = client.DeleteItem(r.ctx, revision, id)
			if err == nil {
				return nil
			}
			if errors.As(err, &httpErr) && httpErr.IsNotFound() {
				return nil
			}

			return errors.Wrap(err, "deleting item in the server")
		}
	}

	log.Debug("deferring delete of %s to the next sync: %v\n", id, err)

	return nil
}

// Synchronize runs one full sync pass
func (r *Repository) Synchronize(ctx context.Context) error {
	return r.syncer.Synchronize(ctx)
}

// watchPollInterval is how often the database file is polled for changes
const watchPollInterval = 250 * time.Millisecond

// Watch emits a snapshot of the item list whenever the local database file
// changes. The initial snapshot is emitted right away. The channel is closed
// when ctx is done.
func (r *Repository) Watch(ctx context.Context) (<-chan []database.Item, error) {
	w := watcher.New()
	w.FilterOps(watcher.Write, watcher.Create)

	dbPath := dotoctx.DBPath(r.ctx.Paths)
	if err := w.Add(dbPath); err != nil {
		return nil, errors.Wrap(err, "watching the database file")
	}

	out := make(chan []database.Item, 1)

	emit := func() {
		items, err := r.GetItems()
		if err != nil {
			log.Debug("reading items for watch: %v\n", err)
			return
		}

		select {
		case out <- items:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(out)
		defer w.Close()

		emit()

		for {
			select {
			case <-ctx.Done():
				return
			case <-w.Event:
				emit()
			case err := <-w.Error:
				log.Debug("watching the database file: %v\n", err)
			case <-w.Closed:
				return
			}
		}
	}()

	go func() {
		if err := w.Start(watchPollInterval); err != nil {
			log.Debug("starting the watcher: %v\n", err)
		}
	}()

	return out, nil
}

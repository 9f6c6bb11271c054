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
	"net/http"
	"time"

	dotoctx "github.com/getdoto/doto/pkg/cli/context"
	"github.com/getdoto/doto/pkg/cli/log"
	"github.com/robfig/cron"
)

// periodicSpec is how often a scheduled sync pass runs
const periodicSpec = "@every 8h"

// probeInterval is how often connectivity is checked
const probeInterval = 30 * time.Second

// Connectivity reports transitions from offline to online
type Connectivity interface {
	// Regained returns a channel that receives a value each time the
	// server becomes reachable after having been unreachable
	Regained() <-chan struct{}
}

// Prober checks server reachability by polling the health endpoint
type Prober struct {
	ctx      dotoctx.DotoCtx
	interval time.Duration
	regained chan struct{}
}

// NewProber returns a prober for the configured server
func NewProber(ctx dotoctx.DotoCtx) *Prober {
	return &Prober{
		ctx:      ctx,
		interval: probeInterval,
		regained: make(chan struct{}, 1),
	}
}

// Regained implements Connectivity
func (p *Prober) Regained() <-chan struct{} {
	return p.regained
}

func (p *Prober) reachable() bool {
	hc := p.ctx.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Second}
	}

	res, err := hc.Get(p.ctx.APIEndpoint + "/health")
	if err != nil {
		return false
	}
	defer res.Body.Close()

	return res.StatusCode < 500
}

// Run polls until ctx is done. It must be called at most once.
func (p *Prober) Run(ctx context.Context) {
	online := p.reachable()

	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		nowOnline := p.reachable()
		if nowOnline && !online {
			log.Debug("server reachable again\n")

			select {
			case p.regained <- struct{}{}:
			default:
			}
		}
		online = nowOnline
	}
}

// Scheduler triggers sync passes periodically and whenever connectivity is
// regained
type Scheduler struct {
	syncer       *Syncer
	connectivity Connectivity
	cron         *cron.Cron
}

// NewScheduler returns a scheduler for the given syncer
func NewScheduler(syncer *Syncer, connectivity Connectivity) *Scheduler {
	return &Scheduler{
		syncer:       syncer,
		connectivity: connectivity,
		cron:         cron.New(),
	}
}

// Run triggers sync passes until ctx is done
func (s *Scheduler) Run(ctx context.Context) error {
	trigger := func() {
		if err := s.syncer.Synchronize(ctx); err != nil {
			log.Errorf("sync failed: %v\n", err)
		}
	}

	if err := s.cron.AddFunc(periodicSpec, trigger); err != nil {
		return err
	}

	s.cron.Start()
	defer s.cron.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.connectivity.Regained():
			trigger()
		}
	}
}

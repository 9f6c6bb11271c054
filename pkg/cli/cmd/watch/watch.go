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

package watch

import (
	gocontext "context"
	"os"
	"os/signal"
	"syscall"

	"github.com/getdoto/doto/pkg/cli/context"
	"github.com/getdoto/doto/pkg/cli/infra"
	"github.com/getdoto/doto/pkg/cli/log"
	"github.com/getdoto/doto/pkg/cli/repository"
	"github.com/getdoto/doto/pkg/cli/sync"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  doto watch`

// NewCmd returns a new watch command
func NewCmd(ctx context.DotoCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch",
		Short:   "Watch the to-do list and keep it synced in the background",
		Example: example,
		RunE:    newRun(ctx),
	}

	return cmd
}

func newRun(ctx context.DotoCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		deviceID, err := infra.GetDeviceID(ctx)
		if err != nil {
			return errors.Wrap(err, "getting device id")
		}

		runCtx, stop := signal.NotifyContext(gocontext.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		repo := repository.New(ctx, deviceID)

		snapshots, err := repo.Watch(runCtx)
		if err != nil {
			return errors.Wrap(err, "watching the list")
		}

		prober := sync.NewProber(ctx)
		go prober.Run(runCtx)

		scheduler := sync.NewScheduler(sync.NewSyncer(ctx, deviceID), prober)
		go func() {
			if err := scheduler.Run(runCtx); err != nil && runCtx.Err() == nil {
				log.Errorf("scheduling syncs: %v\n", err)
			}
		}()

		log.Infof("watching. press ctrl-c to stop.\n")

		for items := range snapshots {
			var pending int
			for _, item := range items {
				if !item.Done {
					pending++
				}
			}

			log.Infof("%d to-dos, %d pending\n", len(items), pending)
		}

		return nil
	}
}

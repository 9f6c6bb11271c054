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
	"github.com/getdoto/doto/pkg/cli/client"
	"github.com/getdoto/doto/pkg/cli/context"
	"github.com/getdoto/doto/pkg/cli/infra"
	"github.com/getdoto/doto/pkg/cli/log"
	"github.com/getdoto/doto/pkg/cli/repository"
	"github.com/getdoto/doto/pkg/cli/upgrade"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  doto sync`

var apiEndpointFlag string

// NewCmd returns a new sync command
func NewCmd(ctx context.DotoCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync",
		Aliases: []string{"s"},
		Short:   "Sync the to-do list with the server",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&apiEndpointFlag, "apiEndpoint", "", "API endpoint to connect to (defaults to value in config)")

	return cmd
}

func newRun(ctx context.DotoCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if apiEndpointFlag != "" {
			ctx.APIEndpoint = apiEndpointFlag
		}

		if ctx.SessionKey == "" {
			log.Error("not logged in. please run `doto login`\n")
			return nil
		}

		deviceID, err := infra.GetDeviceID(ctx)
		if err != nil {
			return errors.Wrap(err, "getting device id")
		}

		log.Infof("syncing with %s\n", ctx.APIEndpoint)

		repo := repository.New(ctx, deviceID)
		err = repo.Synchronize(cmd.Context())
		if err == nil {
			log.Success("synced\n")

			if err := upgrade.Check(ctx); err != nil {
				log.Error(errors.Wrap(err, "automatically checking updates").Error())
			}

			return nil
		}

		var httpErr *client.HTTPError
		switch {
		case errors.As(err, &httpErr):
			log.Errorf("the server rejected the sync: %s\n", httpErr.Message)
		case errors.Is(err, client.ErrEmptyResponse):
			log.Error("the server sent an empty response\n")
		default:
			log.Warnf("could not reach the server. your changes are saved locally and will sync once the connection is back.\n")
			log.Debug("sync error: %v\n", err)
		}

		return nil
	}
}

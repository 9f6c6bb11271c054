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

package remove

import (
	"fmt"

	"github.com/getdoto/doto/pkg/cli/context"
	"github.com/getdoto/doto/pkg/cli/database"
	"github.com/getdoto/doto/pkg/cli/infra"
	"github.com/getdoto/doto/pkg/cli/log"
	"github.com/getdoto/doto/pkg/cli/repository"
	"github.com/getdoto/doto/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var yesFlag bool

var example = `
  doto rm 3c95b1e2`

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new remove command
func NewCmd(ctx context.DotoCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <id>",
		Short:   "Remove a to-do",
		Aliases: []string{"rm"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVarP(&yesFlag, "yes", "y", false, "remove without asking for confirmation")

	return cmd
}

func newRun(ctx context.DotoCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		id := args[0]

		deviceID, err := infra.GetDeviceID(ctx)
		if err != nil {
			return errors.Wrap(err, "getting device id")
		}

		if !yesFlag {
			item, err := database.GetItem(ctx.DB, id)
			if err != nil {
				if database.IsNoRows(err) {
					log.Errorf("no to-do with id %s\n", id)
					return nil
				}
				return errors.Wrap(err, "finding item")
			}

			confirmed, err := ui.Confirm(fmt.Sprintf("remove \"%s\"?", item.Text), false)
			if err != nil {
				return errors.Wrap(err, "getting confirmation")
			}
			if !confirmed {
				log.Plain("aborted\n")
				return nil
			}
		}

		repo := repository.New(ctx, deviceID)
		if err := repo.Delete(cmd.Context(), id); err != nil {
			if database.IsNoRows(err) {
				log.Errorf("no to-do with id %s\n", id)
				return nil
			}
			return errors.Wrap(err, "removing item")
		}

		log.Successf("removed %s\n", id)

		return nil
	}
}

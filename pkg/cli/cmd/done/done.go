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

package done

import (
	"github.com/getdoto/doto/pkg/cli/context"
	"github.com/getdoto/doto/pkg/cli/database"
	"github.com/getdoto/doto/pkg/cli/infra"
	"github.com/getdoto/doto/pkg/cli/log"
	"github.com/getdoto/doto/pkg/cli/repository"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var undoneFlag bool

var example = `
 * Mark a to-do as completed
 doto done 3c95b1e2

 * Mark it as pending again
 doto done 3c95b1e2 --undo`

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new done command
func NewCmd(ctx context.DotoCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "done <id>",
		Short:   "Mark a to-do as completed",
		Aliases: []string{"d"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&undoneFlag, "undo", false, "mark the to-do as pending instead")

	return cmd
}

func newRun(ctx context.DotoCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		id := args[0]

		item, err := database.GetItem(ctx.DB, id)
		if err != nil {
			if database.IsNoRows(err) {
				log.Errorf("no to-do with id %s\n", id)
				return nil
			}
			return errors.Wrap(err, "getting item")
		}

		item.Done = !undoneFlag

		deviceID, err := infra.GetDeviceID(ctx)
		if err != nil {
			return errors.Wrap(err, "getting device id")
		}

		repo := repository.New(ctx, deviceID)
		if err := repo.Save(item); err != nil {
			return errors.Wrap(err, "saving item")
		}

		if item.Done {
			log.Successf("completed %s\n", id)
		} else {
			log.Successf("reopened %s\n", id)
		}

		return nil
	}
}

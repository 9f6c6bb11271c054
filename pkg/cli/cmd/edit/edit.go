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

package edit

import (
	"time"

	"github.com/getdoto/doto/pkg/cli/context"
	"github.com/getdoto/doto/pkg/cli/database"
	"github.com/getdoto/doto/pkg/cli/infra"
	"github.com/getdoto/doto/pkg/cli/log"
	"github.com/getdoto/doto/pkg/cli/repository"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var textFlag string
var importanceFlag string
var deadlineFlag string
var clearDeadlineFlag bool

const deadlineFormat = "2006-01-02"

var example = `
 * Change the text of a to-do
 doto edit 3c95b1e2 -t "buy oat milk"

 * Raise the importance and set a deadline
 doto edit 3c95b1e2 -i high -d 2026-04-15

 * Remove the deadline
 doto edit 3c95b1e2 --clear-deadline`

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new edit command
func NewCmd(ctx context.DotoCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "edit <id>",
		Short:   "Edit a to-do",
		Aliases: []string{"e"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&textFlag, "text", "t", "", "the new text")
	f.StringVarP(&importanceFlag, "importance", "i", "", "the new importance (low, default or high)")
	f.StringVarP(&deadlineFlag, "deadline", "d", "", "the new deadline in the YYYY-MM-DD format")
	f.BoolVar(&clearDeadlineFlag, "clear-deadline", false, "remove the deadline")

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

		if textFlag != "" {
			item.Text = textFlag
		}
		if importanceFlag != "" {
			importance, err := database.ParseImportance(importanceFlag)
			if err != nil {
				return errors.Wrap(err, "invalid importance")
			}
			item.Importance = importance
		}
		if clearDeadlineFlag {
			item.Deadline = 0
		} else if deadlineFlag != "" {
			t, err := time.Parse(deadlineFormat, deadlineFlag)
			if err != nil {
				return errors.Wrap(err, "invalid deadline")
			}
			item.Deadline = t.UnixMilli()
		}

		deviceID, err := infra.GetDeviceID(ctx)
		if err != nil {
			return errors.Wrap(err, "getting device id")
		}

		repo := repository.New(ctx, deviceID)
		if err := repo.Save(item); err != nil {
			return errors.Wrap(err, "saving item")
		}

		log.Successf("edited %s\n", id)

		return nil
	}
}

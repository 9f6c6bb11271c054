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

package add

import (
	"strings"
	"time"

	"github.com/getdoto/doto/pkg/cli/context"
	"github.com/getdoto/doto/pkg/cli/database"
	"github.com/getdoto/doto/pkg/cli/infra"
	"github.com/getdoto/doto/pkg/cli/log"
	"github.com/getdoto/doto/pkg/cli/repository"
	"github.com/getdoto/doto/pkg/cli/upgrade"
	"github.com/getdoto/doto/pkg/cli/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var importanceFlag string
var deadlineFlag string

// deadlineFormat is the accepted layout for the --deadline flag
const deadlineFormat = "2006-01-02"

var example = `
 * Add a new to-do
 doto add "buy milk"

 * Add an important to-do with a deadline
 doto add "file tax return" -i high -d 2026-04-15`

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return errors.New("Missing argument")
	}

	return nil
}

// NewCmd returns a new add command
func NewCmd(ctx context.DotoCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add <text>",
		Short:   "Add a new to-do",
		Aliases: []string{"a", "n", "new"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&importanceFlag, "importance", "i", "default", "the importance of the to-do (low, default or high)")
	f.StringVarP(&deadlineFlag, "deadline", "d", "", "the deadline in the YYYY-MM-DD format")

	return cmd
}

func parseDeadline(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}

	t, err := time.Parse(deadlineFormat, s)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s", s)
	}

	return t.UnixMilli(), nil
}

func newRun(ctx context.DotoCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if strings.TrimSpace(text) == "" {
			return errors.New("Empty text")
		}

		importance, err := database.ParseImportance(importanceFlag)
		if err != nil {
			return errors.Wrap(err, "invalid importance")
		}

		deadline, err := parseDeadline(deadlineFlag)
		if err != nil {
			return errors.Wrap(err, "invalid deadline")
		}

		id, err := utils.GenerateUUID()
		if err != nil {
			return errors.Wrap(err, "generating id")
		}

		deviceID, err := infra.GetDeviceID(ctx)
		if err != nil {
			return errors.Wrap(err, "getting device id")
		}

		ts := ctx.Clock.Now().UnixMilli()
		item := database.NewItem(id, text, importance, deadline, false, ts, 0)

		repo := repository.New(ctx, deviceID)
		if err := repo.Add(item); err != nil {
			return errors.Wrap(err, "adding item")
		}

		log.Successf("added %s\n", id)

		if err := upgrade.Check(ctx); err != nil {
			log.Error(errors.Wrap(err, "automatically checking updates").Error())
		}

		return nil
	}
}

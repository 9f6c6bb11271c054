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

package ls

import (
	"fmt"
	"time"

	"github.com/getdoto/doto/pkg/cli/context"
	"github.com/getdoto/doto/pkg/cli/database"
	"github.com/getdoto/doto/pkg/cli/infra"
	"github.com/getdoto/doto/pkg/cli/log"
	"github.com/getdoto/doto/pkg/cli/repository"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var allFlag bool

var example = `
 * List pending to-dos
 doto ls

 * List all to-dos including completed ones
 doto ls -a`

// NewCmd returns a new ls command
func NewCmd(ctx context.DotoCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Short:   "List to-dos",
		Aliases: []string{"l", "list"},
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVarP(&allFlag, "all", "a", false, "include completed to-dos")

	return cmd
}

func formatMarker(item database.Item) string {
	if item.Done {
		return log.ColorGreen.Sprint("✔")
	}

	switch item.Importance {
	case database.ImportanceHigh:
		return log.ColorRed.Sprint("!")
	case database.ImportanceLow:
		return log.ColorGray.Sprint("·")
	}

	return log.ColorBlue.Sprint("•")
}

func formatDeadline(item database.Item) string {
	if item.Deadline == 0 {
		return ""
	}

	d := time.UnixMilli(item.Deadline).Format("2006-01-02")

	return log.ColorYellow.Sprintf(" (due %s)", d)
}

func printItem(item database.Item) {
	shortID := item.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	log.Plainf("%s %s %s%s\n", log.ColorGray.Sprint(shortID), formatMarker(item), item.Text, formatDeadline(item))
}

func newRun(ctx context.DotoCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		deviceID, err := infra.GetDeviceID(ctx)
		if err != nil {
			return errors.Wrap(err, "getting device id")
		}

		repo := repository.New(ctx, deviceID)
		items, err := repo.GetItems()
		if err != nil {
			return errors.Wrap(err, "getting items")
		}

		var pending, done int
		for _, item := range items {
			if item.Done {
				done++
			} else {
				pending++
			}

			if item.Done && !allFlag {
				continue
			}

			printItem(item)
		}

		fmt.Println()
		log.Infof("%d pending, %d completed\n", pending, done)

		return nil
	}
}

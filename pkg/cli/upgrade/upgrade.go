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

// Package upgrade checks for a newer release of doto
package upgrade

import (
	gocontext "context"
	"strings"

	"github.com/getdoto/doto/pkg/cli/consts"
	"github.com/getdoto/doto/pkg/cli/context"
	"github.com/getdoto/doto/pkg/cli/database"
	"github.com/getdoto/doto/pkg/cli/log"
	"github.com/google/go-github/github"
	"github.com/pkg/errors"
)

// upgradeInterval is the minimum number of seconds between upgrade checks
var upgradeInterval int64 = 86400 * 7

func shouldCheck(ctx context.DotoCtx) (bool, error) {
	if !ctx.EnableUpgradeCheck {
		return false, nil
	}

	var lastUpgrade int64
	err := database.GetSystem(ctx.DB, consts.SystemLastUpgrade, &lastUpgrade)
	if err != nil {
		return false, errors.Wrap(err, "getting last upgrade timestamp")
	}

	now := ctx.Clock.Now().Unix()

	return now-lastUpgrade > upgradeInterval, nil
}

func touchLastUpgrade(ctx context.DotoCtx) error {
	now := ctx.Clock.Now().Unix()
	if err := database.UpsertSystem(ctx.DB, consts.SystemLastUpgrade, now); err != nil {
		return errors.Wrap(err, "updating last upgrade timestamp")
	}

	return nil
}

func fetchLatestTag() (string, error) {
	gh := github.NewClient(nil)

	release, _, err := gh.Repositories.GetLatestRelease(gocontext.Background(), "getdoto", "doto")
	if err != nil {
		return "", errors.Wrap(err, "fetching the latest release")
	}

	return release.GetTagName(), nil
}

func checkVersion(ctx context.DotoCtx) error {
	log.Infof("current version is %s\n", ctx.Version)

	tag := ""
	tagName, err := fetchLatestTag()
	if err != nil {
		return err
	}
	tag = strings.TrimPrefix(tagName, "v")

	log.Infof("latest version is %s\n", tag)

	if tag == ctx.Version {
		log.Success("you are up-to-date\n\n")
	} else {
		log.Infof("to upgrade, see https://github.com/getdoto/doto\n")
	}

	return nil
}

// Check checks for a newer release if the last check happened a while ago
func Check(ctx context.DotoCtx) error {
	ok, err := shouldCheck(ctx)
	if err != nil {
		return errors.Wrap(err, "checking if upgrade check is needed")
	}
	if !ok {
		return nil
	}

	if err := checkVersion(ctx); err != nil {
		return errors.Wrap(err, "checking version")
	}

	if err := touchLastUpgrade(ctx); err != nil {
		return errors.Wrap(err, "recording the check")
	}

	return nil
}

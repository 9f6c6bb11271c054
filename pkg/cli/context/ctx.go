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

// Package context defines the context of the runtime environment
package context

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/getdoto/doto/pkg/cli/consts"
	"github.com/getdoto/doto/pkg/cli/database"
	"github.com/getdoto/doto/pkg/clock"
	"github.com/pkg/errors"
)

// Paths contain directory definitions
type Paths struct {
	Home   string
	Config string
	Data   string
	Cache  string
}

// DotoCtx is a context holding the information of the current runtime
type DotoCtx struct {
	Paths              Paths
	APIEndpoint        string
	Version            string
	DB                 *database.DB
	SessionKey         string
	SessionKeyExpiry   int64
	Clock              clock.Clock
	EnableUpgradeCheck bool
	HTTPClient         *http.Client
}

// DBPath returns the path to the local database file
func DBPath(paths Paths) string {
	return filepath.Join(paths.Data, consts.DotoDirName, consts.DotoDBFileName)
}

// InitDotoDirs creates, if missing, the directories doto owns under the
// user's config, data and cache homes
func InitDotoDirs(paths Paths) error {
	for _, base := range []string{paths.Config, paths.Data, paths.Cache} {
		dir := filepath.Join(base, consts.DotoDirName)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}

	return nil
}

// Redact replaces private information from the context with a set of
// placeholder values.
func Redact(ctx DotoCtx) DotoCtx {
	var sessionKey string
	if ctx.SessionKey != "" {
		sessionKey = "1"
	} else {
		sessionKey = "0"
	}
	ctx.SessionKey = sessionKey

	return ctx
}

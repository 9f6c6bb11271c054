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

package main

import (
	"bytes"
	"fmt"
	"log"
	"net/http/httptest"
	"os"
	"os/exec"
	"testing"

	clicontext "github.com/getdoto/doto/pkg/cli/context"
	clitest "github.com/getdoto/doto/pkg/cli/testutils"
	"github.com/getdoto/doto/pkg/clock"
	"github.com/getdoto/doto/pkg/server/app"
	"github.com/getdoto/doto/pkg/server/controllers"
	"github.com/getdoto/doto/pkg/server/database"
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var cliBinaryName string
var server *httptest.Server
var serverDB *gorm.DB

var testDir = "./tmp"
var tmpDirPath string
var dotoCmdOpts clitest.RunDotoCmdOptions
var paths clicontext.Paths

func init() {
	tmpDirPath = fmt.Sprintf("%s/home", testDir)
	cliBinaryName = fmt.Sprintf("%s/test-cli", testDir)
	dotoCmdOpts = clitest.RunDotoCmdOptions{
		Env: []string{
			fmt.Sprintf("XDG_CONFIG_HOME=%s", tmpDirPath),
			fmt.Sprintf("XDG_DATA_HOME=%s", tmpDirPath),
			fmt.Sprintf("XDG_CACHE_HOME=%s", tmpDirPath),
		},
	}

	paths = clicontext.Paths{
		Home:   tmpDirPath,
		Data:   tmpDirPath,
		Cache:  tmpDirPath,
		Config: tmpDirPath,
	}
}

func TestMain(m *testing.M) {
	// Set up the server with a shared in-memory database
	var err error
	serverDB, err = gorm.Open(sqlite.Open("file:e2e-server?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatal(errors.Wrap(err, "opening server database"))
	}
	database.InitSchema(serverDB)

	server, err = controllers.NewServer(&app.App{
		DB:     serverDB,
		Clock:  clock.New(),
		Port:   "3001",
		DBPath: ":memory:",
	})
	if err != nil {
		log.Fatal(errors.Wrap(err, "initializing server"))
	}
	defer server.Close()

	if err := os.MkdirAll(testDir, 0755); err != nil {
		log.Fatal(errors.Wrap(err, "creating test directory"))
	}

	// Build the CLI binary pointing at the test server
	apiEndpoint := fmt.Sprintf("%s/api", server.URL)
	ldflags := fmt.Sprintf("-X main.apiEndpoint=%s", apiEndpoint)

	cmd := exec.Command("go", "build", "-o", cliBinaryName, "-ldflags", ldflags, "github.com/getdoto/doto/pkg/cli")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Print(errors.Wrap(err, "building a CLI binary").Error())
		log.Print(stderr.String())
		os.Exit(1)
	}

	code := m.Run()

	os.RemoveAll(testDir)
	os.Exit(code)
}

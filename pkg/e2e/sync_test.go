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
	"io"
	"os"
	"testing"
	"time"

	"github.com/getdoto/doto/pkg/assert"
	"github.com/getdoto/doto/pkg/cli/consts"
	clicontext "github.com/getdoto/doto/pkg/cli/context"
	cliDatabase "github.com/getdoto/doto/pkg/cli/database"
	clitest "github.com/getdoto/doto/pkg/cli/testutils"
	"github.com/getdoto/doto/pkg/server/database"
	apitest "github.com/getdoto/doto/pkg/server/testutils"
)

const promptTimeout = 10 * time.Second

func clearTmp(t *testing.T) {
	if err := os.RemoveAll(tmpDirPath); err != nil {
		t.Fatal("cleaning tmp dir")
	}
}

func clearServerData(t *testing.T) {
	apitest.MustExec(t, serverDB.Where("1 = 1").Delete(&database.Item{}), "clearing items")
	apitest.MustExec(t, serverDB.Where("1 = 1").Delete(&database.Session{}), "clearing sessions")
	apitest.MustExec(t, serverDB.Where("1 = 1").Delete(&database.User{}), "clearing users")
}

func setupEnv(t *testing.T) (clicontext.DotoCtx, database.User) {
	clearServerData(t)
	clearTmp(t)

	ctx := clicontext.InitTestCtxWithPaths(t, paths)

	user := apitest.SetupUserData(serverDB, "alice@example.com", "pass1234")
	session := apitest.SetupSession(serverDB, user)
	clitest.Login(t, &ctx, session.Key)

	return ctx, user
}

type systemState struct {
	clientItemCount    int
	clientLastRevision int
	serverItemCount    int
	serverUserRevision int
}

// checkState compares the state of the client and the server with the given system state
func checkState(t *testing.T, ctx clicontext.DotoCtx, user database.User, expected systemState) {
	var clientItemCount int
	cliDatabase.MustScan(t, "counting client items", ctx.DB.QueryRow("SELECT count(*) FROM items"), &clientItemCount)
	assert.Equal(t, clientItemCount, expected.clientItemCount, "client item count mismatch")

	var clientLastRevision int
	cliDatabase.MustScan(t, "finding system last_revision", ctx.DB.QueryRow("SELECT value FROM system WHERE key = ?", consts.SystemLastRevision), &clientLastRevision)
	assert.Equal(t, clientLastRevision, expected.clientLastRevision, "client last_revision mismatch")

	var serverItemCount int64
	apitest.MustExec(t, serverDB.Model(&database.Item{}).Count(&serverItemCount), "counting server items")
	assert.Equal(t, int(serverItemCount), expected.serverItemCount, "server item count mismatch")

	var serverUser database.User
	apitest.MustExec(t, serverDB.Where("id = ?", user.ID).First(&serverUser), "finding user")
	assert.Equal(t, serverUser.Revision, expected.serverUserRevision, "server user revision mismatch")
}

func TestSyncEmpty(t *testing.T) {
	ctx, user := setupEnv(t)

	clitest.RunDotoCmd(t, dotoCmdOpts, cliBinaryName, "sync")

	checkState(t, ctx, user, systemState{
		clientItemCount:    0,
		clientLastRevision: 1,
		serverItemCount:    0,
		serverUserRevision: 1,
	})
}

func TestSyncPull(t *testing.T) {
	ctx, user := setupEnv(t)

	item := database.Item{
		UUID:          "8a91cb93-9bc3-4297-a79d-17b2f8c3a001",
		UserID:        user.ID,
		Text:          "buy groceries",
		Importance:    "basic",
		AddedOn:       1700000000,
		EditedOn:      1700000000,
		LastUpdatedBy: "other-device",
	}
	apitest.MustExec(t, serverDB.Save(&item), "preparing server item")

	clitest.RunDotoCmd(t, dotoCmdOpts, cliBinaryName, "sync")

	checkState(t, ctx, user, systemState{
		clientItemCount:    1,
		clientLastRevision: 1,
		serverItemCount:    1,
		serverUserRevision: 1,
	})

	var text, importance string
	var createdAt int64
	cliDatabase.MustScan(t, "finding client item",
		ctx.DB.QueryRow("SELECT text, importance, created_at FROM items WHERE id = ?", "8a91cb93-9bc3-4297-a79d-17b2f8c3a001"),
		&text, &importance, &createdAt)
	assert.Equal(t, text, "buy groceries", "client item text mismatch")
	assert.Equal(t, importance, "default", "client item importance mismatch")
	assert.Equal(t, createdAt, int64(1700000000000), "client item created_at mismatch")
}

func TestSyncPush(t *testing.T) {
	ctx, user := setupEnv(t)

	cliDatabase.MustExec(t, "preparing local item", ctx.DB,
		"INSERT INTO items (id, text, importance, deadline, done, created_at, modified_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		"d4c5e2f0-0001-4a7e-9f55-2f12e1a7b001", "walk the dog", "high", 0, false, 1700000000000, 0)

	clitest.RunDotoCmd(t, dotoCmdOpts, cliBinaryName, "sync")

	checkState(t, ctx, user, systemState{
		clientItemCount:    1,
		clientLastRevision: 1,
		serverItemCount:    1,
		serverUserRevision: 1,
	})

	var serverItem database.Item
	apitest.MustExec(t, serverDB.Where("uuid = ?", "d4c5e2f0-0001-4a7e-9f55-2f12e1a7b001").First(&serverItem), "finding server item")
	assert.Equal(t, serverItem.Text, "walk the dog", "server item text mismatch")
	assert.Equal(t, serverItem.Importance, "important", "server item importance mismatch")
	assert.Equal(t, serverItem.AddedOn, int64(1700000000), "server item added_on mismatch")
	assert.NotEqual(t, serverItem.LastUpdatedBy, "", "server item last_updated_by should be set")
}

func TestSyncMergeRemoteWins(t *testing.T) {
	ctx, user := setupEnv(t)

	uuid := "d4c5e2f0-0002-4a7e-9f55-2f12e1a7b002"

	cliDatabase.MustExec(t, "preparing local item", ctx.DB,
		"INSERT INTO items (id, text, importance, deadline, done, created_at, modified_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		uuid, "old local text", "default", 0, false, 1700000000000, 1700000100000)

	item := database.Item{
		UUID:          uuid,
		UserID:        user.ID,
		Text:          "newer remote text",
		Importance:    "basic",
		AddedOn:       1700000000,
		EditedOn:      1700000200,
		LastUpdatedBy: "other-device",
	}
	apitest.MustExec(t, serverDB.Save(&item), "preparing server item")

	clitest.RunDotoCmd(t, dotoCmdOpts, cliBinaryName, "sync")

	checkState(t, ctx, user, systemState{
		clientItemCount:    1,
		clientLastRevision: 1,
		serverItemCount:    1,
		serverUserRevision: 1,
	})

	var text string
	cliDatabase.MustScan(t, "finding client item", ctx.DB.QueryRow("SELECT text FROM items WHERE id = ?", uuid), &text)
	assert.Equal(t, text, "newer remote text", "remote edit should have won")
}

func TestSyncMergeLocalWins(t *testing.T) {
	ctx, user := setupEnv(t)

	uuid := "d4c5e2f0-0003-4a7e-9f55-2f12e1a7b003"

	cliDatabase.MustExec(t, "preparing local item", ctx.DB,
		"INSERT INTO items (id, text, importance, deadline, done, created_at, modified_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		uuid, "newer local text", "default", 0, false, 1700000000000, 1700000300000)

	item := database.Item{
		UUID:          uuid,
		UserID:        user.ID,
		Text:          "old remote text",
		Importance:    "basic",
		AddedOn:       1700000000,
		EditedOn:      1700000200,
		LastUpdatedBy: "other-device",
	}
	apitest.MustExec(t, serverDB.Save(&item), "preparing server item")

	clitest.RunDotoCmd(t, dotoCmdOpts, cliBinaryName, "sync")

	var text string
	cliDatabase.MustScan(t, "finding client item", ctx.DB.QueryRow("SELECT text FROM items WHERE id = ?", uuid), &text)
	assert.Equal(t, text, "newer local text", "local edit should have won")

	var serverItem database.Item
	apitest.MustExec(t, serverDB.Where("uuid = ?", uuid).First(&serverItem), "finding server item")
	assert.Equal(t, serverItem.Text, "newer local text", "local edit should have been pushed")
}

func TestAddPushesToServer(t *testing.T) {
	ctx, user := setupEnv(t)

	clitest.RunDotoCmd(t, dotoCmdOpts, cliBinaryName, "add", "water plants")

	var clientItemCount int
	cliDatabase.MustScan(t, "counting client items", ctx.DB.QueryRow("SELECT count(*) FROM items"), &clientItemCount)
	assert.Equal(t, clientItemCount, 1, "client item count mismatch")

	var serverItemCount int64
	apitest.MustExec(t, serverDB.Model(&database.Item{}).Where("user_id = ?", user.ID).Count(&serverItemCount), "counting server items")
	assert.Equal(t, int(serverItemCount), 1, "server item count mismatch")

	var serverItem database.Item
	apitest.MustExec(t, serverDB.Where("user_id = ?", user.ID).First(&serverItem), "finding server item")
	assert.Equal(t, serverItem.Text, "water plants", "server item text mismatch")
}

func TestRemoveConfirmation(t *testing.T) {
	ctx, _ := setupEnv(t)

	cliDatabase.MustExec(t, "preparing local item", ctx.DB,
		"INSERT INTO items (id, text, importance, deadline, done, created_at, modified_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		"d4c5e2f0-0004-4a7e-9f55-2f12e1a7b004", "to be removed", "default", 0, false, 1700000000000, 0)

	clitest.MustWaitDotoCmd(t, dotoCmdOpts, func(stdout io.Reader, stdin io.WriteCloser) error {
		return assert.RespondToPrompt(stdout, stdin, clitest.PromptRemoveItem, "y\n", promptTimeout)
	}, cliBinaryName, "remove", "d4c5e2f0-0004-4a7e-9f55-2f12e1a7b004")

	var clientItemCount int
	cliDatabase.MustScan(t, "counting client items", ctx.DB.QueryRow("SELECT count(*) FROM items"), &clientItemCount)
	assert.Equal(t, clientItemCount, 0, "item should have been removed")
}

func TestRemoveDeclined(t *testing.T) {
	ctx, _ := setupEnv(t)

	cliDatabase.MustExec(t, "preparing local item", ctx.DB,
		"INSERT INTO items (id, text, importance, deadline, done, created_at, modified_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		"d4c5e2f0-0005-4a7e-9f55-2f12e1a7b005", "kept around", "default", 0, false, 1700000000000, 0)

	clitest.MustWaitDotoCmd(t, dotoCmdOpts, func(stdout io.Reader, stdin io.WriteCloser) error {
		return assert.RespondToPrompt(stdout, stdin, clitest.PromptRemoveItem, "n\n", promptTimeout)
	}, cliBinaryName, "remove", "d4c5e2f0-0005-4a7e-9f55-2f12e1a7b005")

	var clientItemCount int
	cliDatabase.MustScan(t, "counting client items", ctx.DB.QueryRow("SELECT count(*) FROM items"), &clientItemCount)
	assert.Equal(t, clientItemCount, 1, "item should have been kept")
}

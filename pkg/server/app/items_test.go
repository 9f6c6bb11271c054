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

package app

import (
	"testing"

	"github.com/getdoto/doto/pkg/assert"
	"github.com/getdoto/doto/pkg/server/database"
	"github.com/getdoto/doto/pkg/server/testutils"
	"github.com/pkg/errors"
)

func TestReplaceItemsBumpsRevision(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	// Setup
	a := NewTest()
	a.DB = db

	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	incoming := []database.Item{
		{
			UUID:          testutils.MustUUID(t),
			Text:          "buy groceries",
			Importance:    "basic",
			AddedOn:       1700000000,
			EditedOn:      1700000000,
			LastUpdatedBy: "device-1",
		},
		{
			UUID:          testutils.MustUUID(t),
			Text:          "file taxes",
			Importance:    "important",
			AddedOn:       1700000100,
			EditedOn:      1700000100,
			LastUpdatedBy: "device-1",
		},
	}

	// Execute
	revision, stored, err := a.ReplaceItems(user, 0, incoming)
	if err != nil {
		t.Fatal(errors.Wrap(err, "replacing items"))
	}

	// Test
	assert.Equal(t, revision, 1, "revision mismatch")
	assert.Equal(t, len(stored), 2, "stored length mismatch")

	var count int64
	testutils.MustExec(t, db.Model(&database.Item{}).Where("user_id = ?", user.ID).Count(&count), "counting items")
	assert.Equal(t, count, int64(2), "item count mismatch")
}

func TestReplaceItemsStaleRevision(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	// Setup
	a := NewTest()
	a.DB = db

	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")
	testutils.MustExec(t, db.Model(&database.User{}).Where("id = ?", user.ID).Update("revision", 3), "preparing revision")
	user.Revision = 3

	existing := database.Item{
		UUID:          testutils.MustUUID(t),
		UserID:        user.ID,
		Text:          "keep me",
		Importance:    "basic",
		AddedOn:       1700000000,
		EditedOn:      1700000000,
		LastUpdatedBy: "device-1",
	}
	testutils.MustExec(t, db.Save(&existing), "preparing existing item")

	// Execute
	_, _, err := a.ReplaceItems(user, 2, []database.Item{})

	// Test
	assert.Equal(t, errors.Cause(err), ErrRevisionMismatch, "error mismatch")

	var count int64
	testutils.MustExec(t, db.Model(&database.Item{}).Where("user_id = ?", user.ID).Count(&count), "counting items")
	assert.Equal(t, count, int64(1), "existing item should have survived")
}

func TestReplaceItemsRejectsInvalid(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	// Setup
	a := NewTest()
	a.DB = db

	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	incoming := []database.Item{
		{
			UUID:          testutils.MustUUID(t),
			Text:          "valid",
			Importance:    "urgent",
			AddedOn:       1700000000,
			EditedOn:      1700000000,
			LastUpdatedBy: "device-1",
		},
	}

	// Execute
	_, _, err := a.ReplaceItems(user, 0, incoming)

	// Test
	if err == nil {
		t.Fatal("expected an error")
	}

	var userRecord database.User
	testutils.MustExec(t, db.Where("id = ?", user.ID).First(&userRecord), "finding user")
	assert.Equal(t, userRecord.Revision, 0, "revision should not have changed")
}

func TestCreateItemBumpsRevision(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	// Setup
	a := NewTest()
	a.DB = db

	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	item := database.Item{
		UUID:          testutils.MustUUID(t),
		Text:          "water plants",
		Importance:    "low",
		AddedOn:       1700000000,
		EditedOn:      1700000000,
		LastUpdatedBy: "device-1",
	}

	// Execute
	revision, created, err := a.CreateItem(user, 0, item)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating item"))
	}

	// Test
	assert.Equal(t, revision, 1, "revision mismatch")
	assert.Equal(t, created.UserID, user.ID, "user id mismatch")

	var userRecord database.User
	testutils.MustExec(t, db.Where("id = ?", user.ID).First(&userRecord), "finding user")
	assert.Equal(t, userRecord.Revision, 1, "user revision mismatch")
}

func TestDeleteItemMissing(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	// Setup
	a := NewTest()
	a.DB = db

	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	// Execute
	_, _, err := a.DeleteItem(user, 0, "nonexistent")

	// Test
	assert.Equal(t, errors.Cause(err), ErrItemNotFound, "error mismatch")

	var userRecord database.User
	testutils.MustExec(t, db.Where("id = ?", user.ID).First(&userRecord), "finding user")
	assert.Equal(t, userRecord.Revision, 0, "revision should not have changed")
}

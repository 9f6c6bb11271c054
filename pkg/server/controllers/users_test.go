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

package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/getdoto/doto/pkg/assert"
	"github.com/getdoto/doto/pkg/server/app"
	"github.com/getdoto/doto/pkg/server/database"
	"github.com/getdoto/doto/pkg/server/testutils"
	"github.com/pkg/errors"
)

func TestRegister(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	// Setup
	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	// Execute
	req := testutils.MakeReq(server.URL, "POST", "/api/register", `{"email": "alice@example.com", "password": "pass1234"}`)
	res := testutils.HTTPDo(t, req)

	// Test
	assert.StatusCodeEquals(t, res, http.StatusCreated, "")

	var payload SessionResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatal(errors.Wrap(err, "decoding payload"))
	}
	assert.NotEqual(t, payload.Key, "", "session key should not be empty")

	var user database.User
	testutils.MustExec(t, db.Where("email = ?", "alice@example.com").First(&user), "finding user")
	assert.Equal(t, user.Revision, 0, "initial revision mismatch")
	assert.NotEqual(t, user.Password, "pass1234", "password should have been hashed")

	var session database.Session
	testutils.MustExec(t, db.Where("key = ?", payload.Key).First(&session), "finding session")
	assert.Equal(t, session.UserID, user.ID, "session user mismatch")
}

func TestRegisterDisabled(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	// Setup
	a := app.NewTest()
	a.DB = db
	a.DisableRegistration = true
	server := MustNewServer(t, &a)
	defer server.Close()

	// Execute
	req := testutils.MakeReq(server.URL, "POST", "/api/register", `{"email": "alice@example.com", "password": "pass1234"}`)
	res := testutils.HTTPDo(t, req)

	// Test
	assert.StatusCodeEquals(t, res, http.StatusNotFound, "")

	var count int64
	testutils.MustExec(t, db.Model(&database.User{}).Count(&count), "counting users")
	assert.Equal(t, count, int64(0), "user count mismatch")
}

func TestRegisterPasswordTooShort(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	// Setup
	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	// Execute
	req := testutils.MakeReq(server.URL, "POST", "/api/register", `{"email": "alice@example.com", "password": "short"}`)
	res := testutils.HTTPDo(t, req)

	// Test
	assert.StatusCodeEquals(t, res, http.StatusBadRequest, "")
}

func TestSignin(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	// Setup
	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	testutils.SetupUserData(db, "alice@example.com", "pass1234")

	// Execute
	req := testutils.MakeReq(server.URL, "POST", "/api/signin", `{"email": "alice@example.com", "password": "pass1234"}`)
	res := testutils.HTTPDo(t, req)

	// Test
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var payload SessionResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatal(errors.Wrap(err, "decoding payload"))
	}
	assert.NotEqual(t, payload.Key, "", "session key should not be empty")

	var session database.Session
	testutils.MustExec(t, db.Where("key = ?", payload.Key).First(&session), "finding session")
}

func TestSigninWrongPassword(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	// Setup
	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	testutils.SetupUserData(db, "alice@example.com", "pass1234")

	// Execute
	req := testutils.MakeReq(server.URL, "POST", "/api/signin", `{"email": "alice@example.com", "password": "wrongpass"}`)
	res := testutils.HTTPDo(t, req)

	// Test
	assert.StatusCodeEquals(t, res, http.StatusUnauthorized, "")

	var count int64
	testutils.MustExec(t, db.Model(&database.Session{}).Count(&count), "counting sessions")
	assert.Equal(t, count, int64(0), "session count mismatch")
}

func TestSignout(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	// Setup
	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")
	session := testutils.SetupSession(db, user)

	// Execute
	req := testutils.MakeReq(server.URL, "POST", "/api/signout", "")
	req.Header.Set("Authorization", "Bearer "+session.Key)
	res := testutils.HTTPDo(t, req)

	// Test
	assert.StatusCodeEquals(t, res, http.StatusNoContent, "")

	var count int64
	testutils.MustExec(t, db.Model(&database.Session{}).Where("key = ?", session.Key).Count(&count), "counting sessions")
	assert.Equal(t, count, int64(0), "session should have been deleted")
}

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

	"github.com/getdoto/doto/pkg/server/app"
	"github.com/getdoto/doto/pkg/server/database"
	"github.com/getdoto/doto/pkg/server/middleware"
	"github.com/pkg/errors"
)

// NewUsers creates a new Users controller.
func NewUsers(app *app.App) *Users {
	return &Users{
		app: app,
	}
}

// Users is a user controller.
type Users struct {
	app *app.App
}

type authPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is the response containing a session
type SessionResponse struct {
	Key       string `json:"key"`
	ExpiresAt int64  `json:"expires_at"`
}

func respondWithSession(w http.ResponseWriter, statusCode int, session *database.Session) {
	respondJSON(w, statusCode, SessionResponse{
		Key:       session.Key,
		ExpiresAt: session.ExpiresAt.Unix(),
	})
}

// Register registers a new user and signs them in
func (u *Users) Register(w http.ResponseWriter, r *http.Request) {
	if u.app.DisableRegistration {
		http.Error(w, "registration is disabled", http.StatusForbidden)
		return
	}

	var params authPayload
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	user, err := u.app.CreateUser(params.Email, params.Password)
	if err != nil {
		handleJSONError(w, err, "creating user")
		return
	}

	session, err := u.app.SignIn(&user)
	if err != nil {
		handleJSONError(w, err, "signing in the user")
		return
	}

	respondWithSession(w, http.StatusCreated, session)
}

// Login signs in a user
func (u *Users) Login(w http.ResponseWriter, r *http.Request) {
	var params authPayload
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	user, err := u.app.Authenticate(params.Email, params.Password)
	if err != nil {
		handleJSONError(w, err, "authenticating user")
		return
	}

	session, err := u.app.SignIn(user)
	if err != nil {
		handleJSONError(w, err, "signing in the user")
		return
	}

	respondWithSession(w, http.StatusOK, session)
}

// Logout deletes the session of the user
func (u *Users) Logout(w http.ResponseWriter, r *http.Request) {
	key, err := middleware.GetCredential(r)
	if err != nil {
		handleJSONError(w, errors.Wrap(err, "getting credential"), "getting credential")
		return
	}

	if key == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := u.app.DeleteSession(key); err != nil {
		handleJSONError(w, err, "deleting session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

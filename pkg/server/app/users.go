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
	"github.com/getdoto/doto/pkg/server/database"
	"github.com/getdoto/doto/pkg/server/helpers"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrEmailRequired is an error for a missing email
	ErrEmailRequired = errors.New("Please enter an email")
	// ErrPasswordTooShort is an error for a password that is too short
	ErrPasswordTooShort = errors.New("Password should be longer than 8 characters")
	// ErrDuplicateEmail is an error for an email that is already registered
	ErrDuplicateEmail = errors.New("Duplicate email")
	// ErrLoginInvalid is an error for invalid credentials
	ErrLoginInvalid = errors.New("Wrong email and password combination")
)

// TouchLastLoginAt updates the last login timestamp
func (a *App) TouchLastLoginAt(user database.User, tx *gorm.DB) error {
	t := a.Clock.Now()
	if err := tx.Model(&user).Update("last_login_at", &t).Error; err != nil {
		return errors.Wrap(err, "updating last_login_at")
	}

	return nil
}

// CreateUser creates a new user
func (a *App) CreateUser(email, password string) (database.User, error) {
	if email == "" {
		return database.User{}, ErrEmailRequired
	}
	if len(password) < 8 {
		return database.User{}, ErrPasswordTooShort
	}

	var count int64
	if err := a.DB.Model(&database.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return database.User{}, errors.Wrap(err, "counting users with the email")
	}
	if count > 0 {
		return database.User{}, ErrDuplicateEmail
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return database.User{}, errors.Wrap(err, "hashing password")
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		return database.User{}, errors.Wrap(err, "generating uuid")
	}

	user := database.User{
		UUID:     uuid,
		Email:    email,
		Password: string(hashed),
	}
	if err := a.DB.Create(&user).Error; err != nil {
		return database.User{}, errors.Wrap(err, "creating user")
	}

	return user, nil
}

// Authenticate authenticates the user with the given email and password
func (a *App) Authenticate(email, password string) (*database.User, error) {
	var user database.User
	err := a.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLoginInvalid
	} else if err != nil {
		return nil, errors.Wrap(err, "finding user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrLoginInvalid
	}

	return &user, nil
}

// SignIn signs in the given user by creating a new session
func (a *App) SignIn(user *database.User) (*database.Session, error) {
	session, err := a.CreateSession(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "creating session")
	}

	if err := a.TouchLastLoginAt(*user, a.DB); err != nil {
		return nil, errors.Wrap(err, "touching last login")
	}

	return &session, nil
}

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

package database

import (
	"time"
)

// Model is the base model definition
type Model struct {
	ID        int       `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// User is a model for a user. Revision is the version of the user's to-do
// list. It grows by one on every accepted write.
type User struct {
	Model
	UUID        string     `json:"uuid" gorm:"type:text;index"`
	Email       string     `gorm:"index"`
	Password    string     `json:"-"`
	LastLoginAt *time.Time `json:"-"`
	Revision    int        `json:"-" gorm:"default:0"`
}

// Item is a model for an entry in a user's to-do list. AddedOn and EditedOn
// are unix epoch seconds.
type Item struct {
	Model
	UUID          string  `json:"id" gorm:"index;type:text"`
	UserID        int     `json:"-" gorm:"index"`
	Text          string  `json:"text"`
	Importance    string  `json:"importance"`
	Deadline      *int64  `json:"deadline"`
	Done          bool    `json:"done" gorm:"default:false"`
	Color         *string `json:"color"`
	AddedOn       int64   `json:"added_on"`
	EditedOn      int64   `json:"edited_on"`
	LastUpdatedBy string  `json:"last_updated_by"`
}

// Session represents a user session
type Session struct {
	Model
	UserID     int    `gorm:"index"`
	Key        string `gorm:"index"`
	LastUsedAt time.Time
	ExpiresAt  time.Time
}

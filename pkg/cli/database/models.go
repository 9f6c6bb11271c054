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
	"database/sql"

	"github.com/pkg/errors"
)

// Importance is the priority of an item
type Importance string

const (
	// ImportanceLow is the low priority
	ImportanceLow Importance = "low"
	// ImportanceDefault is the default priority
	ImportanceDefault Importance = "default"
	// ImportanceHigh is the high priority
	ImportanceHigh Importance = "high"
)

// ParseImportance validates and converts the given string into an Importance
func ParseImportance(s string) (Importance, error) {
	switch Importance(s) {
	case ImportanceLow, ImportanceDefault, ImportanceHigh:
		return Importance(s), nil
	}

	return "", errors.Errorf("unknown importance %q", s)
}

// Item represents a to-do item. Timestamps are Unix milliseconds.
// Deadline and ModifiedAt use 0 to denote absence.
type Item struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Importance Importance `json:"importance"`
	Deadline   int64      `json:"deadline"`
	Done       bool       `json:"done"`
	CreatedAt  int64      `json:"created_at"`
	ModifiedAt int64      `json:"modified_at"`
}

// NewItem constructs an item with the given data
func NewItem(id, text string, importance Importance, deadline int64, done bool, createdAt, modifiedAt int64) Item {
	return Item{
		ID:         id,
		Text:       text,
		Importance: importance,
		Deadline:   deadline,
		Done:       done,
		CreatedAt:  createdAt,
		ModifiedAt: modifiedAt,
	}
}

// EffectiveTime is the timestamp used for conflict resolution: the last
// modification time if known, else the creation time.
func (i Item) EffectiveTime() int64 {
	if i.ModifiedAt != 0 {
		return i.ModifiedAt
	}

	return i.CreatedAt
}

// Insert inserts a new item
func (i Item) Insert(db *DB) error {
	_, err := db.Exec("INSERT INTO items (id, text, importance, deadline, done, created_at, modified_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		i.ID, i.Text, i.Importance, i.Deadline, i.Done, i.CreatedAt, i.ModifiedAt)

	if err != nil {
		return errors.Wrapf(err, "inserting item with id %s", i.ID)
	}

	return nil
}

// Update updates the item with the given data
func (i Item) Update(db *DB) error {
	_, err := db.Exec("UPDATE items SET text = ?, importance = ?, deadline = ?, done = ?, created_at = ?, modified_at = ? WHERE id = ?",
		i.Text, i.Importance, i.Deadline, i.Done, i.CreatedAt, i.ModifiedAt, i.ID)

	if err != nil {
		return errors.Wrapf(err, "updating the item with id %s", i.ID)
	}

	return nil
}

// Expunge hard-deletes the item from the database
func (i Item) Expunge(db *DB) error {
	_, err := db.Exec("DELETE FROM items WHERE id = ?", i.ID)
	if err != nil {
		return errors.Wrapf(err, "expunging the item with id %s", i.ID)
	}

	return nil
}

func scanItem(row interface{ Scan(...interface{}) error }) (Item, error) {
	var ret Item
	err := row.Scan(&ret.ID, &ret.Text, &ret.Importance, &ret.Deadline, &ret.Done, &ret.CreatedAt, &ret.ModifiedAt)

	return ret, err
}

// GetItem retrieves the item with the given id. It returns sql.ErrNoRows
// as the cause if no such item exists.
func GetItem(db *DB, id string) (Item, error) {
	row := db.QueryRow("SELECT id, text, importance, deadline, done, created_at, modified_at FROM items WHERE id = ?", id)

	ret, err := scanItem(row)
	if err != nil {
		return ret, errors.Wrapf(err, "getting item %s", id)
	}

	return ret, nil
}

// AllItems retrieves every item in the local store
func AllItems(db *DB) ([]Item, error) {
	rows, err := db.Query("SELECT id, text, importance, deadline, done, created_at, modified_at FROM items ORDER BY created_at")
	if err != nil {
		return nil, errors.Wrap(err, "querying items")
	}
	defer rows.Close()

	var ret []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning an item row")
		}

		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating item rows")
	}

	return ret, nil
}

// ReplaceAll atomically replaces the contents of the local store with the
// given items. The delete and the inserts run in a single transaction so
// a concurrent reader never observes an empty intermediate state.
func ReplaceAll(db *DB, items []Item) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	if _, err := tx.Exec("DELETE FROM items"); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "clearing items")
	}

	for _, item := range items {
		if err := item.Insert(tx); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "inserting a merged item")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	return nil
}

// ItemExists checks whether an item with the given id is present
func ItemExists(db *DB, id string) (bool, error) {
	var count int
	if err := db.QueryRow("SELECT count(*) FROM items WHERE id = ?", id).Scan(&count); err != nil {
		return false, errors.Wrapf(err, "counting items with id %s", id)
	}

	return count > 0, nil
}

// IsNoRows checks if the cause of the given error is sql.ErrNoRows
func IsNoRows(err error) bool {
	return errors.Cause(err) == sql.ErrNoRows
}

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

package client

import (
	"github.com/getdoto/doto/pkg/cli/database"
	"github.com/pkg/errors"
)

// Importance levels as they appear on the wire
const (
	WireImportanceLow       = "low"
	WireImportanceBasic     = "basic"
	WireImportanceImportant = "important"
)

// ItemWire is an item as represented in request and response payloads.
// Timestamps are in unix epoch seconds.
type ItemWire struct {
	ID            string  `json:"id"`
	Text          string  `json:"text"`
	Importance    string  `json:"importance"`
	Deadline      *int64  `json:"deadline,omitempty"`
	Done          bool    `json:"done"`
	Color         *string `json:"color,omitempty"`
	CreatedAt     int64   `json:"created_at"`
	ChangedAt     int64   `json:"changed_at"`
	LastUpdatedBy string  `json:"last_updated_by"`
}

func importanceToWire(i database.Importance) string {
	switch i {
	case database.ImportanceLow:
		return WireImportanceLow
	case database.ImportanceHigh:
		return WireImportanceImportant
	default:
		return WireImportanceBasic
	}
}

func importanceFromWire(s string) (database.Importance, error) {
	switch s {
	case WireImportanceLow:
		return database.ImportanceLow, nil
	case WireImportanceBasic:
		return database.ImportanceDefault, nil
	case WireImportanceImportant:
		return database.ImportanceHigh, nil
	}

	return "", errors.Errorf("unknown importance %q", s)
}

// ToWire converts a local item into its wire form. The given deviceID is
// recorded as the last updater.
func ToWire(item database.Item, deviceID string) ItemWire {
	ret := ItemWire{
		ID:            item.ID,
		Text:          item.Text,
		Importance:    importanceToWire(item.Importance),
		Done:          item.Done,
		CreatedAt:     item.CreatedAt / 1000,
		LastUpdatedBy: deviceID,
	}

	if item.Deadline != 0 {
		deadline := item.Deadline / 1000
		ret.Deadline = &deadline
	}

	if item.ModifiedAt != 0 {
		ret.ChangedAt = item.ModifiedAt / 1000
	} else {
		ret.ChangedAt = item.CreatedAt / 1000
	}

	return ret
}

// ToLocal converts a wire item into its local form
func ToLocal(w ItemWire) (database.Item, error) {
	importance, err := importanceFromWire(w.Importance)
	if err != nil {
		return database.Item{}, errors.Wrapf(err, "converting item %s", w.ID)
	}

	ret := database.Item{
		ID:         w.ID,
		Text:       w.Text,
		Importance: importance,
		Done:       w.Done,
		CreatedAt:  w.CreatedAt * 1000,
		ModifiedAt: w.ChangedAt * 1000,
	}

	if w.Deadline != nil {
		ret.Deadline = *w.Deadline * 1000
	}

	return ret, nil
}

// ToWireList converts local items into their wire form
func ToWireList(items []database.Item, deviceID string) []ItemWire {
	ret := make([]ItemWire, 0, len(items))
	for _, item := range items {
		ret = append(ret, ToWire(item, deviceID))
	}

	return ret
}

// ToLocalList converts wire items into their local form
func ToLocalList(items []ItemWire) ([]database.Item, error) {
	ret := make([]database.Item, 0, len(items))
	for _, w := range items {
		item, err := ToLocal(w)
		if err != nil {
			return nil, err
		}

		ret = append(ret, item)
	}

	return ret, nil
}

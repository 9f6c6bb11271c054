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
	"testing"

	"github.com/getdoto/doto/pkg/assert"
	"github.com/pkg/errors"
)

func TestItemRoundtrip(t *testing.T) {
	db := InitTestMemoryDB(t)
	defer db.Close()

	item := Item{
		ID:         "item-1",
		Text:       "buy milk",
		Importance: ImportanceHigh,
		Deadline:   1700000000000,
		Done:       false,
		CreatedAt:  1600000000000,
		ModifiedAt: 1650000000000,
	}

	if err := item.Insert(db); err != nil {
		t.Fatal(errors.Wrap(err, "inserting"))
	}

	got, err := GetItem(db, "item-1")
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting"))
	}

	assert.DeepEqual(t, got, item, "item mismatch")
}

func TestItemUpdate(t *testing.T) {
	db := InitTestMemoryDB(t)
	defer db.Close()

	item := Item{ID: "item-1", Text: "buy milk", Importance: ImportanceDefault, CreatedAt: 1000}
	if err := item.Insert(db); err != nil {
		t.Fatal(errors.Wrap(err, "inserting"))
	}

	item.Text = "buy oat milk"
	item.Done = true
	item.ModifiedAt = 2000
	if err := item.Update(db); err != nil {
		t.Fatal(errors.Wrap(err, "updating"))
	}

	got, err := GetItem(db, "item-1")
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting"))
	}

	assert.Equal(t, got.Text, "buy oat milk", "text mismatch")
	assert.Equal(t, got.Done, true, "done mismatch")
	assert.Equal(t, got.ModifiedAt, int64(2000), "modified time mismatch")
}

func TestItemExpunge(t *testing.T) {
	db := InitTestMemoryDB(t)
	defer db.Close()

	item := Item{ID: "item-1", Text: "buy milk", Importance: ImportanceDefault, CreatedAt: 1000}
	if err := item.Insert(db); err != nil {
		t.Fatal(errors.Wrap(err, "inserting"))
	}

	if err := item.Expunge(db); err != nil {
		t.Fatal(errors.Wrap(err, "expunging"))
	}

	ok, err := ItemExists(db, "item-1")
	if err != nil {
		t.Fatal(errors.Wrap(err, "checking"))
	}

	assert.Equal(t, ok, false, "item should be gone")
}

func TestReplaceAll(t *testing.T) {
	db := InitTestMemoryDB(t)
	defer db.Close()

	old := Item{ID: "item-1", Text: "buy milk", Importance: ImportanceDefault, CreatedAt: 1000}
	if err := old.Insert(db); err != nil {
		t.Fatal(errors.Wrap(err, "inserting"))
	}

	replacement := []Item{
		{ID: "item-2", Text: "water plants", Importance: ImportanceLow, CreatedAt: 2000},
		{ID: "item-3", Text: "call dentist", Importance: ImportanceHigh, CreatedAt: 3000},
	}
	if err := ReplaceAll(db, replacement); err != nil {
		t.Fatal(errors.Wrap(err, "replacing"))
	}

	got, err := AllItems(db)
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting all"))
	}

	assert.DeepEqual(t, got, replacement, "items mismatch")
}

func TestEffectiveTime(t *testing.T) {
	testCases := []struct {
		item     Item
		expected int64
	}{
		{Item{CreatedAt: 1000, ModifiedAt: 2000}, 2000},
		{Item{CreatedAt: 1000}, 1000},
	}

	for _, tc := range testCases {
		got := tc.item.EffectiveTime()

		assert.Equal(t, got, tc.expected, "effective time mismatch")
	}
}

func TestParseImportance(t *testing.T) {
	for _, s := range []string{"low", "default", "high"} {
		got, err := ParseImportance(s)
		if err != nil {
			t.Fatal(errors.Wrap(err, "parsing"))
		}

		assert.Equal(t, string(got), s, "importance mismatch")
	}

	_, err := ParseImportance("urgent")
	assert.NotEqual(t, err, nil, "expected an error")
}

func TestSystemRoundtrip(t *testing.T) {
	db := InitTestMemoryDB(t)
	defer db.Close()

	if err := UpsertSystem(db, "somekey", "someval"); err != nil {
		t.Fatal(errors.Wrap(err, "upserting"))
	}
	if err := UpsertSystem(db, "somekey", "newval"); err != nil {
		t.Fatal(errors.Wrap(err, "overwriting"))
	}

	var got string
	if err := GetSystem(db, "somekey", &got); err != nil {
		t.Fatal(errors.Wrap(err, "getting"))
	}

	assert.Equal(t, got, "newval", "value mismatch")

	if err := DeleteSystem(db, "somekey"); err != nil {
		t.Fatal(errors.Wrap(err, "deleting"))
	}

	err := GetSystem(db, "somekey", &got)
	assert.Equal(t, IsNoRows(err), true, "expected a no rows error")
}

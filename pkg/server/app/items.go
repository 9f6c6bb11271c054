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
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrRevisionMismatch is an error for a write based on a stale revision
	ErrRevisionMismatch = errors.New("unsynchronized data")
	// ErrItemNotFound is an error for a missing item
	ErrItemNotFound = errors.New("element not found")
	// ErrDuplicateItem is an error for creating an item with an id that already exists
	ErrDuplicateItem = errors.New("duplicate element")
	// ErrItemTextRequired is an error for an item with no text
	ErrItemTextRequired = errors.New("element text is empty")
)

func validateItem(item database.Item) error {
	if item.Text == "" {
		return ErrItemTextRequired
	}

	switch item.Importance {
	case "low", "basic", "important":
	default:
		return errors.Errorf("unknown importance %q", item.Importance)
	}

	return nil
}

// incrementUserRevision bumps the user's list revision and returns the new value
func incrementUserRevision(tx *gorm.DB, userID int) (int, error) {
	if err := tx.Model(&database.User{}).Where("id = ?", userID).
		Update("revision", gorm.Expr("revision + 1")).Error; err != nil {
		return 0, errors.Wrap(err, "incrementing user revision")
	}

	var user database.User
	if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
		return 0, errors.Wrap(err, "getting user revision")
	}

	return user.Revision, nil
}

// GetItems returns the user's items ordered by the time they were added
func (a *App) GetItems(user database.User) ([]database.Item, error) {
	items := []database.Item{}
	if err := a.DB.Where("user_id = ?", user.ID).Order("added_on ASC").Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "finding items")
	}

	return items, nil
}

// ReplaceItems replaces the user's entire list with the given items. The
// caller's last known revision must match the user's current revision.
// It returns the new revision and the stored list.
func (a *App) ReplaceItems(user database.User, lastKnown int, incoming []database.Item) (int, []database.Item, error) {
	if lastKnown != user.Revision {
		return 0, nil, ErrRevisionMismatch
	}

	for _, item := range incoming {
		if err := validateItem(item); err != nil {
			return 0, nil, err
		}
	}

	var revision int

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&database.Item{}).Error; err != nil {
			return errors.Wrap(err, "deleting items")
		}

		for i := range incoming {
			incoming[i].ID = 0
			incoming[i].UserID = user.ID

			if err := tx.Create(&incoming[i]).Error; err != nil {
				return errors.Wrapf(err, "creating item %s", incoming[i].UUID)
			}
		}

		rev, err := incrementUserRevision(tx, user.ID)
		if err != nil {
			return err
		}
		revision = rev

		return nil
	})
	if err != nil {
		return 0, nil, err
	}

	return revision, incoming, nil
}

// CreateItem adds a single item to the user's list
func (a *App) CreateItem(user database.User, lastKnown int, item database.Item) (int, database.Item, error) {
	if lastKnown != user.Revision {
		return 0, database.Item{}, ErrRevisionMismatch
	}
	if err := validateItem(item); err != nil {
		return 0, database.Item{}, err
	}

	var count int64
	if err := a.DB.Model(&database.Item{}).
		Where("user_id = ? AND uuid = ?", user.ID, item.UUID).Count(&count).Error; err != nil {
		return 0, database.Item{}, errors.Wrap(err, "counting items")
	}
	if count > 0 {
		return 0, database.Item{}, ErrDuplicateItem
	}

	var revision int

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		item.UserID = user.ID
		if err := tx.Create(&item).Error; err != nil {
			return errors.Wrap(err, "creating item")
		}

		rev, err := incrementUserRevision(tx, user.ID)
		if err != nil {
			return err
		}
		revision = rev

		return nil
	})
	if err != nil {
		return 0, database.Item{}, err
	}

	return revision, item, nil
}

// UpdateItem overwrites the item with the given uuid in the user's list
func (a *App) UpdateItem(user database.User, lastKnown int, uuid string, item database.Item) (int, database.Item, error) {
	if lastKnown != user.Revision {
		return 0, database.Item{}, ErrRevisionMismatch
	}
	if err := validateItem(item); err != nil {
		return 0, database.Item{}, err
	}

	var existing database.Item
	err := a.DB.Where("user_id = ? AND uuid = ?", user.ID, uuid).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, database.Item{}, ErrItemNotFound
	} else if err != nil {
		return 0, database.Item{}, errors.Wrap(err, "finding item")
	}

	existing.Text = item.Text
	existing.Importance = item.Importance
	existing.Deadline = item.Deadline
	existing.Done = item.Done
	existing.Color = item.Color
	existing.EditedOn = item.EditedOn
	existing.LastUpdatedBy = item.LastUpdatedBy

	var revision int

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&existing).Error; err != nil {
			return errors.Wrap(err, "saving item")
		}

		rev, err := incrementUserRevision(tx, user.ID)
		if err != nil {
			return err
		}
		revision = rev

		return nil
	})
	if err != nil {
		return 0, database.Item{}, err
	}

	return revision, existing, nil
}

// DeleteItem removes the item with the given uuid from the user's list
func (a *App) DeleteItem(user database.User, lastKnown int, uuid string) (int, database.Item, error) {
	if lastKnown != user.Revision {
		return 0, database.Item{}, ErrRevisionMismatch
	}

	var existing database.Item
	err := a.DB.Where("user_id = ? AND uuid = ?", user.ID, uuid).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, database.Item{}, ErrItemNotFound
	} else if err != nil {
		return 0, database.Item{}, errors.Wrap(err, "finding item")
	}

	var revision int

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&existing).Error; err != nil {
			return errors.Wrap(err, "deleting item")
		}

		rev, err := incrementUserRevision(tx, user.ID)
		if err != nil {
			return err
		}
		revision = rev

		return nil
	})
	if err != nil {
		return 0, database.Item{}, err
	}

	return revision, existing, nil
}

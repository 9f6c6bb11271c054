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
	"github.com/getdoto/doto/pkg/server/context"
	"github.com/getdoto/doto/pkg/server/database"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// NewItems creates a new Items controller.
func NewItems(app *app.App) *Items {
	return &Items{
		app: app,
	}
}

// Items is an item controller.
type Items struct {
	app *app.App
}

// PresentedItem is how an item appears in API responses
type PresentedItem struct {
	ID            string  `json:"id"`
	Text          string  `json:"text"`
	Importance    string  `json:"importance"`
	Deadline      *int64  `json:"deadline"`
	Done          bool    `json:"done"`
	Color         *string `json:"color"`
	CreatedAt     int64   `json:"created_at"`
	ChangedAt     int64   `json:"changed_at"`
	LastUpdatedBy string  `json:"last_updated_by"`
}

// ListResponse is the response for operations on the whole list
type ListResponse struct {
	Status   string          `json:"status"`
	List     []PresentedItem `json:"list"`
	Revision int             `json:"revision"`
}

// ItemResponse is the response for operations on a single item
type ItemResponse struct {
	Status   string        `json:"status"`
	Element  PresentedItem `json:"element"`
	Revision int           `json:"revision"`
}

type listPayload struct {
	List []PresentedItem `json:"list"`
}

type itemPayload struct {
	Element PresentedItem `json:"element"`
}

func presentItem(item database.Item) PresentedItem {
	return PresentedItem{
		ID:            item.UUID,
		Text:          item.Text,
		Importance:    item.Importance,
		Deadline:      item.Deadline,
		Done:          item.Done,
		Color:         item.Color,
		CreatedAt:     item.AddedOn,
		ChangedAt:     item.EditedOn,
		LastUpdatedBy: item.LastUpdatedBy,
	}
}

func presentItems(items []database.Item) []PresentedItem {
	ret := []PresentedItem{}
	for _, item := range items {
		ret = append(ret, presentItem(item))
	}

	return ret
}

func toItem(p PresentedItem) database.Item {
	return database.Item{
		UUID:          p.ID,
		Text:          p.Text,
		Importance:    p.Importance,
		Deadline:      p.Deadline,
		Done:          p.Done,
		Color:         p.Color,
		AddedOn:       p.CreatedAt,
		EditedOn:      p.ChangedAt,
		LastUpdatedBy: p.LastUpdatedBy,
	}
}

// GetList returns the user's list along with their revision
func (i *Items) GetList(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	items, err := i.app.GetItems(*user)
	if err != nil {
		handleJSONError(w, err, "getting items")
		return
	}

	respondJSON(w, http.StatusOK, ListResponse{
		Status:   "ok",
		List:     presentItems(items),
		Revision: user.Revision,
	})
}

// ReplaceList replaces the user's entire list
func (i *Items) ReplaceList(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	lastKnown, err := getLastKnownRevision(r)
	if err != nil {
		http.Error(w, errors.Cause(err).Error(), http.StatusBadRequest)
		return
	}

	var payload listPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	incoming := make([]database.Item, 0, len(payload.List))
	for _, p := range payload.List {
		incoming = append(incoming, toItem(p))
	}

	revision, stored, err := i.app.ReplaceItems(*user, lastKnown, incoming)
	if err != nil {
		handleJSONError(w, err, "replacing items")
		return
	}

	respondJSON(w, http.StatusOK, ListResponse{
		Status:   "ok",
		List:     presentItems(stored),
		Revision: revision,
	})
}

// CreateItem adds a single item to the user's list
func (i *Items) CreateItem(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	lastKnown, err := getLastKnownRevision(r)
	if err != nil {
		http.Error(w, errors.Cause(err).Error(), http.StatusBadRequest)
		return
	}

	var payload itemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	revision, item, err := i.app.CreateItem(*user, lastKnown, toItem(payload.Element))
	if err != nil {
		handleJSONError(w, err, "creating item")
		return
	}

	respondJSON(w, http.StatusCreated, ItemResponse{
		Status:   "ok",
		Element:  presentItem(item),
		Revision: revision,
	})
}

// UpdateItem overwrites a single item in the user's list
func (i *Items) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	itemUUID := vars["itemUUID"]

	lastKnown, err := getLastKnownRevision(r)
	if err != nil {
		http.Error(w, errors.Cause(err).Error(), http.StatusBadRequest)
		return
	}

	var payload itemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	revision, item, err := i.app.UpdateItem(*user, lastKnown, itemUUID, toItem(payload.Element))
	if err != nil {
		handleJSONError(w, err, "updating item")
		return
	}

	respondJSON(w, http.StatusOK, ItemResponse{
		Status:   "ok",
		Element:  presentItem(item),
		Revision: revision,
	})
}

// DeleteItem removes a single item from the user's list
func (i *Items) DeleteItem(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	itemUUID := vars["itemUUID"]

	lastKnown, err := getLastKnownRevision(r)
	if err != nil {
		http.Error(w, errors.Cause(err).Error(), http.StatusBadRequest)
		return
	}

	revision, item, err := i.app.DeleteItem(*user, lastKnown, itemUUID)
	if err != nil {
		handleJSONError(w, err, "deleting item")
		return
	}

	respondJSON(w, http.StatusOK, ItemResponse{
		Status:   "ok",
		Element:  presentItem(item),
		Revision: revision,
	})
}

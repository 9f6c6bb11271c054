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
	"strconv"

	"github.com/getdoto/doto/pkg/server/app"
	"github.com/getdoto/doto/pkg/server/log"
	"github.com/pkg/errors"
)

// revisionHeaderName carries the client's last known list revision on writes
const revisionHeaderName = "X-Last-Known-Revision"

// statusCodeForErr maps application errors to HTTP status codes.
// Unrecognized errors are treated as internal errors.
func statusCodeForErr(err error) int {
	cause := errors.Cause(err)

	switch cause {
	case app.ErrRevisionMismatch, app.ErrDuplicateItem, app.ErrItemTextRequired,
		app.ErrEmailRequired, app.ErrPasswordTooShort, app.ErrDuplicateEmail:
		return http.StatusBadRequest
	case app.ErrItemNotFound:
		return http.StatusNotFound
	case app.ErrLoginInvalid:
		return http.StatusUnauthorized
	}

	return http.StatusInternalServerError
}

// handleJSONError logs the error and responds with its message
func handleJSONError(w http.ResponseWriter, err error, msg string) {
	statusCode := statusCodeForErr(err)

	if statusCode == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"statusCode": statusCode,
		}).ErrorWrap(err, msg)
		http.Error(w, http.StatusText(statusCode), statusCode)
		return
	}

	http.Error(w, errors.Cause(err).Error(), statusCode)
}

// respondJSON writes the given payload as a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.ErrorWrap(err, "encoding JSON response")
	}
}

// getLastKnownRevision reads the revision header from the request
func getLastKnownRevision(r *http.Request) (int, error) {
	val := r.Header.Get(revisionHeaderName)
	if val == "" {
		return 0, errors.Errorf("missing %s header", revisionHeaderName)
	}

	revision, err := strconv.Atoi(val)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s header", revisionHeaderName)
	}

	return revision, nil
}

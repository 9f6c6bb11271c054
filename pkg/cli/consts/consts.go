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

// Package consts provides definitions of constant values used across the client
package consts

var (
	// DotoDirName is the name of the directory containing doto files
	DotoDirName = "doto"
	// DotoDBFileName is a filename for the doto SQLite database
	DotoDBFileName = "doto.db"
	// ConfigFilename is the name of the config file
	ConfigFilename = "dotorc"

	// SystemLastRevision is the last known server revision observed by this device
	SystemLastRevision = "last_revision"
	// SystemLastSyncAt is the timestamp of the server at the last sync
	SystemLastSyncAt = "last_sync_time"
	// SystemDeviceID is the identifier this device reports as last_updated_by
	SystemDeviceID = "device_id"
	// SystemLastUpgrade is the timestamp at which the system most recently checked for an upgrade
	SystemLastUpgrade = "last_upgrade"
	// SystemSessionKey is the session key
	SystemSessionKey = "session_token"
	// SystemSessionKeyExpiry is the timestamp at which the session key will expire
	SystemSessionKeyExpiry = "session_token_expiry"
)

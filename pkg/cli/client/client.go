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

// Package client provides interfaces for interacting with the doto server
// and the data structures for requests and responses
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/getdoto/doto/pkg/cli/context"
	"github.com/getdoto/doto/pkg/cli/log"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// ErrInvalidLogin is an error for invalid credentials for login
var ErrInvalidLogin = errors.New("wrong credentials")

// ErrEmptyResponse is an error for a success response with no usable body
var ErrEmptyResponse = errors.New("empty response body")

// revisionHeaderName carries the client's last known server revision on writes
const revisionHeaderName = "X-Last-Known-Revision"

// HTTPError represents an HTTP error response from the server
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// IsBadRequest returns true if the error is a 400 Bad Request error
func (e *HTTPError) IsBadRequest() bool {
	return e.StatusCode == http.StatusBadRequest
}

// IsNotFound returns true if the error is a 404 Not Found error
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsConflict returns true if the error is a 409 Conflict error
func (e *HTTPError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

const (
	// clientRateLimitPerSecond is the max requests per second the client will make
	clientRateLimitPerSecond = 50
	// clientRateLimitBurst is the burst capacity for rate limiting
	clientRateLimitBurst = 100
)

// rateLimitedTransport wraps an http.RoundTripper with rate limiting
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewRateLimitedHTTPClient creates an HTTP client with rate limiting
func NewRateLimitedHTTPClient() *http.Client {
	interval := time.Second / time.Duration(clientRateLimitPerSecond)

	transport := &rateLimitedTransport{
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Every(interval), clientRateLimitBurst),
	}
	return &http.Client{
		Transport: transport,
	}
}

func getHTTPClient(ctx context.DotoCtx) *http.Client {
	if ctx.HTTPClient != nil {
		return ctx.HTTPClient
	}

	return &http.Client{}
}

func getReq(ctx context.DotoCtx, method, path, body string, revision *int) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s%s", ctx.APIEndpoint, path)
	req, err := http.NewRequest(method, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("CLI-Version", ctx.Version)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if revision != nil {
		req.Header.Set(revisionHeaderName, fmt.Sprintf("%d", *revision))
	}

	if ctx.SessionKey != "" {
		credential := fmt.Sprintf("Bearer %s", ctx.SessionKey)
		req.Header.Set("Authorization", credential)
	}

	return req, nil
}

// checkRespErr checks if the given http response indicates an error. It returns
// a decoded HTTPError if so.
func checkRespErr(res *http.Response) error {
	if res.StatusCode < 400 {
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "server responded with %d but client could not read the response body", res.StatusCode)
	}

	return &HTTPError{
		StatusCode: res.StatusCode,
		Message:    strings.TrimRight(string(body), "\n"),
	}
}

// doReq does a http request to the given path in the api endpoint
func doReq(ctx context.DotoCtx, method, path, body string, revision *int) (*http.Response, error) {
	req, err := getReq(ctx, method, path, body, revision)
	if err != nil {
		return nil, errors.Wrap(err, "getting request")
	}

	log.Debug("HTTP %s %s\n", method, path)

	hc := getHTTPClient(ctx)
	res, err := hc.Do(req)
	if err != nil {
		return res, errors.Wrap(err, "making http request")
	}

	log.Debug("HTTP %d %s\n", res.StatusCode, res.Status)

	if err = checkRespErr(res); err != nil {
		return res, errors.Wrap(err, "server responded with an error")
	}

	return res, nil
}

// doAuthorizedReq does a http request to the given path in the api endpoint as
// a user, with the appropriate headers. The given path should include the
// preceding slash.
func doAuthorizedReq(ctx context.DotoCtx, method, path, body string, revision *int) (*http.Response, error) {
	if ctx.SessionKey == "" {
		return nil, errors.New("no session key found")
	}

	return doReq(ctx, method, path, body, revision)
}

// decodeBody decodes a success response body into dest. A 2xx response with
// an empty body is a failure for retry and error purposes.
func decodeBody(res *http.Response, dest interface{}) error {
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "reading the response body")
	}

	if len(body) == 0 {
		return ErrEmptyResponse
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return errors.Wrap(err, "unmarshalling the payload")
	}

	return nil
}

// ListResponse is the response from the list endpoints
type ListResponse struct {
	Status   string     `json:"status"`
	List     []ItemWire `json:"list"`
	Revision int        `json:"revision"`
}

// ItemResponse is the response from the single-element endpoints
type ItemResponse struct {
	Status   string   `json:"status"`
	Element  ItemWire `json:"element"`
	Revision int      `json:"revision"`
}

// ListRequest is the payload for replacing the server's list
type ListRequest struct {
	List []ItemWire `json:"list"`
}

// ItemRequest is the payload for the single-element endpoints
type ItemRequest struct {
	Element ItemWire `json:"element"`
}

// GetList fetches the full item list and the server's current revision
func GetList(ctx context.DotoCtx) (ListResponse, error) {
	var ret ListResponse

	res, err := doAuthorizedReq(ctx, "GET", "/list", "", nil)
	if err != nil {
		return ret, errors.Wrap(err, "fetching the list")
	}

	if err := decodeBody(res, &ret); err != nil {
		return ret, errors.Wrap(err, "decoding the list response")
	}

	return ret, nil
}

// UpdateList replaces the server's list with the given items, tagged with the
// client's last known revision
func UpdateList(ctx context.DotoCtx, revision int, list []ItemWire) (ListResponse, error) {
	var ret ListResponse

	payload := ListRequest{List: list}
	b, err := json.Marshal(payload)
	if err != nil {
		return ret, errors.Wrap(err, "marshaling payload")
	}

	res, err := doAuthorizedReq(ctx, "PATCH", "/list", string(b), &revision)
	if err != nil {
		return ret, errors.Wrap(err, "pushing the list")
	}

	if err := decodeBody(res, &ret); err != nil {
		return ret, errors.Wrap(err, "decoding the list response")
	}

	return ret, nil
}

// CreateItem creates a single item in the server
func CreateItem(ctx context.DotoCtx, revision int, item ItemWire) (ItemResponse, error) {
	var ret ItemResponse

	payload := ItemRequest{Element: item}
	b, err := json.Marshal(payload)
	if err != nil {
		return ret, errors.Wrap(err, "marshaling payload")
	}

	res, err := doAuthorizedReq(ctx, "POST", "/list", string(b), &revision)
	if err != nil {
		return ret, errors.Wrap(err, "posting an item to the server")
	}

	if err := decodeBody(res, &ret); err != nil {
		return ret, errors.Wrap(err, "decoding the item response")
	}

	return ret, nil
}

// UpdateItem updates a single item in the server
func UpdateItem(ctx context.DotoCtx, revision int, item ItemWire) (ItemResponse, error) {
	var ret ItemResponse

	payload := ItemRequest{Element: item}
	b, err := json.Marshal(payload)
	if err != nil {
		return ret, errors.Wrap(err, "marshaling payload")
	}

	endpoint := fmt.Sprintf("/list/%s", item.ID)
	res, err := doAuthorizedReq(ctx, "PUT", endpoint, string(b), &revision)
	if err != nil {
		return ret, errors.Wrap(err, "putting an item to the server")
	}

	if err := decodeBody(res, &ret); err != nil {
		return ret, errors.Wrap(err, "decoding the item response")
	}

	return ret, nil
}

// DeleteItem removes a single item in the server
func DeleteItem(ctx context.DotoCtx, revision int, id string) (ItemResponse, error) {
	var ret ItemResponse

	endpoint := fmt.Sprintf("/list/%s", id)
	res, err := doAuthorizedReq(ctx, "DELETE", endpoint, "", &revision)
	if err != nil {
		return ret, errors.Wrap(err, "deleting an item in the server")
	}

	if err := decodeBody(res, &ret); err != nil {
		return ret, errors.Wrap(err, "decoding the item response")
	}

	return ret, nil
}

// SigninPayload is a payload for /signin
type SigninPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninResponse is a response from the signin endpoint
type SigninResponse struct {
	Key       string `json:"key"`
	ExpiresAt int64  `json:"expires_at"`
}

// Signin requests a session key
func Signin(ctx context.DotoCtx, email, password string) (SigninResponse, error) {
	payload := SigninPayload{
		Email:    email,
		Password: password,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return SigninResponse{}, errors.Wrap(err, "marshaling payload")
	}

	res, err := doReq(ctx, "POST", "/signin", string(b), nil)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized {
			return SigninResponse{}, ErrInvalidLogin
		}
		return SigninResponse{}, errors.Wrap(err, "making http request")
	}

	var resp SigninResponse
	if err := decodeBody(res, &resp); err != nil {
		return resp, errors.Wrap(err, "decoding the signin response")
	}

	return resp, nil
}

// Signout deletes a user session on the server side
func Signout(ctx context.DotoCtx) error {
	_, err := doAuthorizedReq(ctx, "POST", "/signout", "", nil)
	if err != nil {
		return errors.Wrap(err, "making http request")
	}

	return nil
}

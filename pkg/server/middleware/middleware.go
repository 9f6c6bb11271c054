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

// Package middleware provides middlewares for the server
package middleware

import (
	"net/http"
	"strings"

	"github.com/getdoto/doto/pkg/server/app"
	"github.com/getdoto/doto/pkg/server/log"
	"github.com/pkg/errors"
)

// Middleware wraps a handler with a chain of middlewares
type Middleware func(h http.Handler, app *app.App, rateLimit bool) http.Handler

// APIMw is the middleware for api routes
func APIMw(h http.Handler, app *app.App, rateLimit bool) http.Handler {
	ret := h
	ret = ApplyLimit(ret, rateLimit)
	ret = logging(ret)

	return ret
}

// Global applies middlewares that affect all routes
func Global(h http.Handler) http.Handler {
	return h
}

// logging logs each request
func logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)

		log.WithFields(log.Fields{
			"remoteAddr": r.RemoteAddr,
			"method":     r.Method,
			"uri":        r.RequestURI,
		}).Debug("incoming request")
	})
}

// getSessionKeyFromCookie reads the session key from the request cookie
func getSessionKeyFromCookie(r *http.Request) (string, error) {
	c, err := r.Cookie("id")

	if err == http.ErrNoCookie {
		return "", nil
	} else if err != nil {
		return "", errors.Wrap(err, "reading cookie")
	}

	return c.Value, nil
}

// getSessionKeyFromAuth reads the session key from the Authorization header
func getSessionKeyFromAuth(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", nil
	}

	payload := strings.SplitN(h, " ", 2)
	if len(payload) != 2 || strings.ToLower(payload[0]) != "bearer" {
		return "", errors.New("Invalid authorization header")
	}

	return payload[1], nil
}

// GetCredential extracts the session key from the request. The Authorization
// header takes precedence over the cookie.
func GetCredential(r *http.Request) (string, error) {
	ret, err := getSessionKeyFromAuth(r)
	if err != nil {
		return "", errors.Wrap(err, "getting session key from the authorization header")
	}
	if ret != "" {
		return ret, nil
	}

	ret, err = getSessionKeyFromCookie(r)
	if err != nil {
		return "", errors.Wrap(err, "getting session key from the cookie")
	}

	return ret, nil
}

// DoError logs the error and responds with the given status code
func DoError(w http.ResponseWriter, msg string, err error, statusCode int) {
	log.WithFields(log.Fields{
		"statusCode": statusCode,
	}).ErrorWrap(err, msg)

	http.Error(w, http.StatusText(statusCode), statusCode)
}

// RespondUnauthorized responds with a 401
func RespondUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="doto"`)
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

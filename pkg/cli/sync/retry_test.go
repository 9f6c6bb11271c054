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

package sync

import (
	"context"
	"testing"
	"time"

	"github.com/getdoto/doto/pkg/assert"
	"github.com/pkg/errors"
)

// fastRetryPolicy keeps tests quick while preserving attempt counting
func fastRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func TestRetryRunSuccess(t *testing.T) {
	attempts := 0

	err := fastRetryPolicy().Run(context.Background(), func() error {
		attempts++
		return nil
	})

	assert.Equal(t, err, nil, "error mismatch")
	assert.Equal(t, attempts, 1, "attempt count mismatch")
}

func TestRetryRunEventualSuccess(t *testing.T) {
	attempts := 0

	err := fastRetryPolicy().Run(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return errors.New("not yet")
		}
		return nil
	})

	assert.Equal(t, err, nil, "error mismatch")
	assert.Equal(t, attempts, 2, "attempt count mismatch")
}

func TestRetryRunExhausted(t *testing.T) {
	attempts := 0
	boom := errors.New("still broken")

	err := fastRetryPolicy().Run(context.Background(), func() error {
		attempts++
		return boom
	})

	assert.Equal(t, attempts, 3, "attempt count mismatch")
	assert.Equal(t, errors.Is(err, boom), true, "last error was not preserved")
}

func TestRetryRunPreservesErrorKind(t *testing.T) {
	type kindErr struct{ error }

	err := fastRetryPolicy().Run(context.Background(), func() error {
		return &kindErr{errors.New("typed failure")}
	})

	var ke *kindErr
	assert.Equal(t, errors.As(err, &ke), true, "error kind was not preserved")
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()

	assert.Equal(t, p.MaxAttempts, 3, "MaxAttempts mismatch")
	assert.Equal(t, p.InitialDelay, time.Second, "InitialDelay mismatch")
	assert.Equal(t, p.MaxDelay, 5*time.Second, "MaxDelay mismatch")
}

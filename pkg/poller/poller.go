// Copyright 2025 The Kube Resource Orchestrator Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"). You may
// not use this file except in compliance with the License. A copy of the
// License is located at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// or in the "license" file accompanying this file. This file is distributed
// on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
// express or implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package poller repeatedly evaluates a resource's readiness on an
// exponential backoff until it reports ready, the context is cancelled, or
// an overall timeout elapses.
package poller

import (
	"context"
	"fmt"
	"math"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Options configures a single poll loop.
type Options struct {
	InitialDelay     time.Duration
	MaxDelay         time.Duration
	Multiplier       float64
	ErrorRetryDelay  time.Duration
	ProgressInterval int
	Timeout          time.Duration
}

// DefaultOptions returns the engine's default poll cadence.
func DefaultOptions() Options {
	return Options{
		InitialDelay:     time.Second,
		MaxDelay:         10 * time.Second,
		Multiplier:       1.5,
		ErrorRetryDelay:  2 * time.Second,
		ProgressInterval: 5,
		Timeout:          300 * time.Second,
	}
}

// ProgressEvent is emitted periodically (every ProgressInterval attempts)
// while a resource is still being polled, so a caller can report status to
// a user without logging every single attempt.
type ProgressEvent struct {
	ResourceID string
	Attempt    int
	Elapsed    time.Duration
	Verdict    string
}

// ReadinessTimeoutError is returned when a resource never became ready
// within Options.Timeout.
type ReadinessTimeoutError struct {
	ResourceID string
	Elapsed    time.Duration
	Attempts   int
	LastErr    error
}

func (e *ReadinessTimeoutError) Error() string {
	if e.LastErr != nil {
		return fmt.Sprintf("resource %q did not become ready after %d attempts (%s): %v",
			e.ResourceID, e.Attempts, e.Elapsed, e.LastErr)
	}
	return fmt.Sprintf("resource %q did not become ready after %d attempts (%s)",
		e.ResourceID, e.Attempts, e.Elapsed)
}

func (e *ReadinessTimeoutError) Unwrap() error { return e.LastErr }

// CheckFunc performs one readiness check. done is true once the resource
// has reached its steady state; message describes the current state for
// progress reporting, and is ignored once done is true.
type CheckFunc func(ctx context.Context) (done bool, message string, err error)

// Wait polls check on an exponential backoff (capped at Options.MaxDelay,
// reset to Options.ErrorRetryDelay whenever check itself errors) until it
// reports done, the context is cancelled, or Options.Timeout elapses. If
// progress is non-nil, a ProgressEvent is sent (non-blocking) on the first
// attempt, every Options.ProgressInterval attempts thereafter, on every
// attempt that errors, and once more when the resource becomes ready.
func Wait(ctx context.Context, resourceID string, opts Options, progress chan<- ProgressEvent, check CheckFunc) error {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	backoff := wait.Backoff{
		Duration: opts.InitialDelay,
		Factor:   opts.Multiplier,
		Cap:      opts.MaxDelay,
		Steps:    math.MaxInt32,
	}

	start := time.Now()
	attempt := 0
	var lastErr error

	emit := func(verdict string) {
		if progress == nil {
			return
		}
		select {
		case progress <- ProgressEvent{ResourceID: resourceID, Attempt: attempt, Elapsed: time.Since(start), Verdict: verdict}:
		default:
		}
	}

	for {
		attempt++
		done, message, err := check(ctx)
		if err == nil && done {
			emit("ready")
			return nil
		}
		lastErr = err

		switch {
		case err != nil:
			emit(err.Error())
		case attempt == 1 || (opts.ProgressInterval > 0 && attempt%opts.ProgressInterval == 0):
			emit(message)
		}

		delay := opts.ErrorRetryDelay
		if err == nil {
			delay = backoff.Step()
		}

		select {
		case <-ctx.Done():
			return &ReadinessTimeoutError{ResourceID: resourceID, Elapsed: time.Since(start), Attempts: attempt, LastErr: lastErr}
		case <-time.After(delay):
		}
	}
}

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

package poller

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastOptions() Options {
	o := DefaultOptions()
	o.InitialDelay = time.Millisecond
	o.MaxDelay = 5 * time.Millisecond
	o.ErrorRetryDelay = time.Millisecond
	o.Timeout = 200 * time.Millisecond
	o.ProgressInterval = 2
	return o
}

func TestWaitSucceedsEventually(t *testing.T) {
	attempts := 0
	check := func(ctx context.Context) (bool, string, error) {
		attempts++
		return attempts >= 3, "waiting", nil
	}

	if err := Wait(context.Background(), "res", fastOptions(), nil, check); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWaitTimesOut(t *testing.T) {
	check := func(ctx context.Context) (bool, string, error) {
		return false, "never ready", nil
	}

	err := Wait(context.Background(), "res", fastOptions(), nil, check)
	var timeoutErr *ReadinessTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Wait() error = %v (%T), want *ReadinessTimeoutError", err, err)
	}
	if timeoutErr.ResourceID != "res" {
		t.Errorf("ResourceID = %q, want res", timeoutErr.ResourceID)
	}
}

func TestWaitReportsProgress(t *testing.T) {
	attempts := 0
	check := func(ctx context.Context) (bool, string, error) {
		attempts++
		return attempts >= 5, "waiting", nil
	}

	progress := make(chan ProgressEvent, 10)
	if err := Wait(context.Background(), "res", fastOptions(), progress, check); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	close(progress)

	var got []int
	for ev := range progress {
		got = append(got, ev.Attempt)
	}
	// fastOptions has ProgressInterval=2: attempt 1 (first attempt), attempts
	// 2 and 4 (every ProgressInterval attempts), and attempt 5 (readiness).
	want := []int{1, 2, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("events at attempts %v, want %v", got, want)
	}
	for i, a := range want {
		if got[i] != a {
			t.Errorf("events at attempts %v, want %v", got, want)
			break
		}
	}
}

func TestWaitReportsProgressOnEveryError(t *testing.T) {
	wantErr := errors.New("transient API error")
	attempts := 0
	check := func(ctx context.Context) (bool, string, error) {
		attempts++
		if attempts < 3 {
			return false, "", wantErr
		}
		return true, "", nil
	}

	opts := fastOptions()
	opts.ProgressInterval = 1000 // large enough that the interval never fires on its own

	progress := make(chan ProgressEvent, 10)
	if err := Wait(context.Background(), "res", opts, progress, check); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	close(progress)

	var got []ProgressEvent
	for ev := range progress {
		got = append(got, ev)
	}
	// attempts 1 and 2 error (emitted regardless of the interval); attempt 3
	// succeeds and emits the final readiness event.
	if len(got) != 3 {
		t.Fatalf("events = %v, want 3 (two errors plus final readiness)", got)
	}
	if got[0].Verdict != wantErr.Error() || got[1].Verdict != wantErr.Error() {
		t.Errorf("events = %v, want the first two to carry the check error", got)
	}
	if got[2].Verdict != "ready" {
		t.Errorf("final event verdict = %q, want \"ready\"", got[2].Verdict)
	}
}

func TestWaitRetriesAfterCheckError(t *testing.T) {
	wantErr := errors.New("transient API error")
	attempts := 0
	check := func(ctx context.Context) (bool, string, error) {
		attempts++
		if attempts < 3 {
			return false, "", wantErr
		}
		return true, "", nil
	}

	if err := Wait(context.Background(), "res", fastOptions(), nil, check); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestWaitRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	check := func(ctx context.Context) (bool, string, error) {
		return false, "", nil
	}

	err := Wait(ctx, "res", fastOptions(), nil, check)
	var timeoutErr *ReadinessTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Wait() error = %v, want *ReadinessTimeoutError", err)
	}
}

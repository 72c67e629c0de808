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

package engine

import "fmt"

// ApplyError wraps a failure applying or waiting for one resource, so a
// caller can tell which node of the graph failed without parsing a message.
type ApplyError struct {
	ResourceID string
	Err        error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("resource %q: %v", e.ResourceID, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

// DuplicateResourceError is returned when a Graph names the same resource ID
// twice.
type DuplicateResourceError struct {
	ResourceID string
}

func (e *DuplicateResourceError) Error() string {
	return fmt.Sprintf("duplicate resource id %q", e.ResourceID)
}

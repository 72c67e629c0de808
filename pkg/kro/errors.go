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

package kro

import "fmt"

// InstanceFailedError is returned the moment an instance reports
// status.state == FAILED; the orchestrator never waits out the remainder of
// the readiness timeout once this happens.
type InstanceFailedError struct {
	Name    string
	Message string
}

func (e *InstanceFailedError) Error() string {
	return fmt.Sprintf("instance %q reported FAILED: %s", e.Name, e.Message)
}

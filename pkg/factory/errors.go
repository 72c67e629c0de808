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

package factory

import "fmt"

// DuplicateInstanceError is returned by Deploy when the derived instance name
// is already tracked in the registry; re-entrant deploys of an existing name
// are rejected rather than silently overwriting the tracked Handle.
type DuplicateInstanceError struct {
	Name string
}

func (e *DuplicateInstanceError) Error() string {
	return fmt.Sprintf("factory: instance %q is already deployed", e.Name)
}

// NotFoundError is returned when DeleteInstance, GetStatus, or ToYAML is
// called with a name the registry has no Handle for.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("factory: no instance named %q is tracked", e.Name)
}

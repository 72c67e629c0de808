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

package reference

import "fmt"

// CyclicInputError is returned when a field's expression references the
// resource it belongs to. The dependency graph
// (pkg/depgraph) catches cycles across resources; this catches the
// degenerate case of a resource referencing its own fields before the
// graph is even built.
type CyclicInputError struct {
	ResourceID string
	Path       string
}

func (e *CyclicInputError) Error() string {
	return fmt.Sprintf("resource %q field %q references itself", e.ResourceID, e.Path)
}

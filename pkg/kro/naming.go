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

import (
	"fmt"
	"strings"

	"github.com/gobuffalo/flect"
)

// pluralize converts a Kind to the plural, lowercased form Kubernetes CRD
// naming expects, e.g. "VirtualCluster" -> "virtualclusters".
func pluralize(kind string) string {
	return flect.Pluralize(strings.ToLower(kind))
}

// crdName returns the CRD object name Kro derives for an RGD's schema Kind,
// "{pluralKind}.kro.run".
func crdName(kind string) string {
	return fmt.Sprintf("%s.kro.run", pluralize(kind))
}

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
	"encoding/json"

	"github.com/yehudacohen/typekro-go/api/v1alpha1"
)

// statusSchemaDeclaresCustomFields reports whether an RGD's status schema
// declares anything beyond the built-in {state, conditions} pair. When it
// doesn't, instance readiness can't wait on "a status field beyond
// state/conditions appearing" because none will ever appear.
func statusSchemaDeclaresCustomFields(rgd *v1alpha1.ResourceGraphDefinition) bool {
	if rgd.Spec.Schema == nil || len(rgd.Spec.Schema.Status.Raw) == 0 {
		return false
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(rgd.Spec.Schema.Status.Raw, &fields); err != nil {
		return false
	}
	for key := range fields {
		if key != "state" && key != "conditions" {
			return true
		}
	}
	return false
}

// mergeStatus overlays dynamic fields (hydrated from the live instance) onto
// a copy of the statically-evaluated fields. Dynamic values win on
// collision, matching the factory's static/dynamic status contract.
func mergeStatus(static, dynamic map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(static)+len(dynamic))
	for k, v := range static {
		merged[k] = v
	}
	for k, v := range dynamic {
		merged[k] = v
	}
	return merged
}

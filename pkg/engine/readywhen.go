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

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/yehudacohen/typekro-go/pkg/reference"
	"github.com/yehudacohen/typekro-go/pkg/readiness"
)

// selfResourceID is the synthetic resource ID a readyWhen expression uses to
// address the resource's own, just-observed object, e.g.
// "${self.status.phase == 'Active'}".
const selfResourceID = "self"

// evaluateBoolExprs evaluates every expr against data (plus, if self is
// non-nil, the synthetic "self" resource) and requires all of them to
// evaluate to a true boolean. The first false or error short-circuits.
func evaluateBoolExprs(exprs []string, data map[string]map[string]interface{}, self map[string]interface{}) (bool, string, error) {
	lookup := func(ref reference.Reference) (interface{}, bool, error) {
		var resourceData map[string]interface{}
		if ref.ResourceID == selfResourceID && self != nil {
			resourceData = self
		} else {
			var ok bool
			resourceData, ok = data[ref.ResourceID]
			if !ok {
				return nil, false, nil
			}
		}
		if ref.Path == "" {
			return resourceData, true, nil
		}
		return reference.GetValueAtPath(resourceData, ref.Path)
	}

	for _, expr := range exprs {
		val, err := reference.EvaluateExpr(expr, lookup)
		if err != nil {
			return false, "", fmt.Errorf("evaluating %q: %w", expr, err)
		}
		b, ok := val.(bool)
		if !ok {
			return false, "", fmt.Errorf("expression %q did not evaluate to a boolean, got %T", expr, val)
		}
		if !b {
			return false, fmt.Sprintf("waiting for %q", expr), nil
		}
	}
	return true, "", nil
}

// customReadinessEvaluator adapts a resource's readyWhen expressions into a
// readiness.Evaluator, given the already-resolved data of every resource it
// may also reference alongside its own observed state.
func customReadinessEvaluator(exprs []string, data map[string]map[string]interface{}) readiness.Evaluator {
	return func(obj *unstructured.Unstructured) (readiness.Verdict, error) {
		ok, msg, err := evaluateBoolExprs(exprs, data, obj.Object)
		if err != nil {
			return readiness.Verdict{}, err
		}
		if ok {
			return readiness.Verdict{Ready: true, Reason: "ReadyWhen"}, nil
		}
		return readiness.Verdict{Ready: false, Reason: "ReadyWhen", Message: msg}, nil
	}
}

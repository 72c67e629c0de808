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

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// instanceVerdict is the outcome of evaluating one poll of an instance
// custom resource against Kro's own readiness rule (spec.md's Kro
// Orchestrator step 4), distinct from the generic per-Kind table: Kro
// instances have no dedicated Kind, so the generic table's fallback would
// never see this object's state/condition vocabulary.
type instanceVerdict struct {
	ready   bool
	message string
}

func conditionStatus(obj *unstructured.Unstructured, condType string) (status, message string) {
	conditions, _, _ := unstructured.NestedSlice(obj.Object, "status", "conditions")
	for _, c := range conditions {
		m, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		t, _, _ := unstructured.NestedString(m, "type")
		if t != condType {
			continue
		}
		s, _, _ := unstructured.NestedString(m, "status")
		msg, _, _ := unstructured.NestedString(m, "message")
		return s, msg
	}
	return "", ""
}

// firstFailingConditionMessage finds a human-readable reason for a FAILED
// instance: the message of the first False condition, or a generic
// fallback if none carries one.
func firstFailingConditionMessage(obj *unstructured.Unstructured) string {
	conditions, _, _ := unstructured.NestedSlice(obj.Object, "status", "conditions")
	for _, c := range conditions {
		m, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		status, _, _ := unstructured.NestedString(m, "status")
		if status != "False" {
			continue
		}
		if msg, _, _ := unstructured.NestedString(m, "message"); msg != "" {
			return msg
		}
		condType, _, _ := unstructured.NestedString(m, "type")
		return fmt.Sprintf("condition %s is False", condType)
	}
	return "instance reported state FAILED"
}

// evaluateInstance implements spec.md's combined instance-readiness rule:
// ready iff state == ACTIVE, InstanceSynced == True, and (the RGD declares
// no custom status fields, or the instance's own status has grown at least
// one field beyond {state, conditions}).
func evaluateInstance(obj *unstructured.Unstructured, declaresCustomFields bool) instanceVerdict {
	state, _, _ := unstructured.NestedString(obj.Object, "status", "state")
	if !strings.EqualFold(state, "ACTIVE") {
		return instanceVerdict{ready: false, message: fmt.Sprintf("state=%s", state)}
	}

	syncedStatus, syncedMsg := conditionStatus(obj, "InstanceSynced")
	if syncedStatus != "True" {
		if syncedMsg != "" {
			return instanceVerdict{ready: false, message: syncedMsg}
		}
		return instanceVerdict{ready: false, message: "waiting for InstanceSynced condition"}
	}

	if !declaresCustomFields {
		return instanceVerdict{ready: true}
	}

	status, _, _ := unstructured.NestedMap(obj.Object, "status")
	for k := range status {
		if k != "state" && k != "conditions" {
			return instanceVerdict{ready: true}
		}
	}
	return instanceVerdict{ready: false, message: "waiting for a custom status field beyond state/conditions"}
}

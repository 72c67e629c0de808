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

// Package condition holds small, dependency-free helpers for working with
// []v1alpha1.Condition slices outside of the full apis.ConditionSet
// machinery, for callers (like the readiness evaluator) that only need to
// read a condition off an arbitrary unstructured status, not own a typed
// resource's condition lifecycle.
package condition

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/yehudacohen/typekro-go/api/v1alpha1"
)

// NewCondition returns a new Condition instance.
func NewCondition(t v1alpha1.ConditionType, status metav1.ConditionStatus, reason, message string) v1alpha1.Condition {
	return v1alpha1.Condition{
		Type:               t,
		Status:             status,
		LastTransitionTime: &metav1.Time{Time: metav1.Now().Time},
		Reason:             &reason,
		Message:            &message,
	}
}

// GetCondition returns the condition of type t, or nil if absent.
func GetCondition(conditions []v1alpha1.Condition, t v1alpha1.ConditionType) *v1alpha1.Condition {
	for i, c := range conditions {
		if c.Type == t {
			return &conditions[i]
		}
	}
	return nil
}

// SetCondition upserts condition into conditions by Type.
func SetCondition(conditions []v1alpha1.Condition, condition v1alpha1.Condition) []v1alpha1.Condition {
	for i, c := range conditions {
		if c.Type == condition.Type {
			conditions[i] = condition
			return conditions
		}
	}
	return append(conditions, condition)
}

// HasCondition reports whether conditions contains a condition of type t.
func HasCondition(conditions []v1alpha1.Condition, t v1alpha1.ConditionType) bool {
	return GetCondition(conditions, t) != nil
}

// IsTrue reports whether conditions contains a condition of type t with
// status True. Used by the readiness evaluator's generic fallback rule.
func IsTrue(conditions []v1alpha1.Condition, t v1alpha1.ConditionType) bool {
	c := GetCondition(conditions, t)
	return c != nil && c.Status == metav1.ConditionTrue
}

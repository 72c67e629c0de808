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

// Package factory deploys instances of a resource graph through either
// strategy (Direct or Kro) behind one Handle/Registry API, so a caller
// doesn't need to know which engine actually applied its resources.
package factory

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/yehudacohen/typekro-go/pkg/apis"
)

// Condition types an instance's Handle carries, beyond the Knative-style
// Ready root condition: Degraded for a ready-but-unhealthy instance,
// Progressing while resources are still being applied/awaited, and Error
// for a terminal deployment failure.
const (
	ConditionDegraded    = "Degraded"
	ConditionProgressing = "Progressing"
	ConditionError       = "Error"
)

// State is the coarse lifecycle state of a deployed instance.
type State string

const (
	StateDeployed  State = "deployed"
	StateReady     State = "ready"
	StateDegraded  State = "degraded"
	StateFailed    State = "failed"
	StateDestroyed State = "destroyed"
)

// Strategy names which deployment engine produced a Handle.
type Strategy string

const (
	StrategyDirect Strategy = "direct"
	StrategyKro    Strategy = "kro"
)

// Handle is a live reference to one deployed instance: its underlying
// object (the instance CR for Kro, or a synthetic aggregate object for
// Direct, see newAggregateObject), which resource graph it came from, and
// its own Ready/Degraded/Progressing/Error condition set.
type Handle struct {
	*unstructured.Unstructured

	GraphName string
	Strategy  Strategy

	destroyed bool
}

var conditionTypes = apis.NewReadyConditions()

// handleConditionsField is a bookkeeping slot distinct from "status.conditions":
// for a Kro instance that field already belongs to the live CR (state,
// InstanceSynced, any custom conditions kro itself reports), and refreshing
// a Handle from a live read must never clobber this package's own
// Ready/Degraded/Progressing/Error view with the instance's unrelated ones.
const handleConditionsField = "handleConditions"

// GetConditions implements apis.Object, reading this Handle's own condition
// bookkeeping back into the typed Condition vocabulary the ConditionSet
// operates on.
func (h *Handle) GetConditions() []apis.Condition {
	raw, found, _ := unstructured.NestedSlice(h.Object, "status", handleConditionsField)
	if !found {
		return nil
	}
	conditions := make([]apis.Condition, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		var c metav1.Condition
		if err := runtime.DefaultUnstructuredConverter.FromUnstructured(m, &c); err != nil {
			continue
		}
		conditions = append(conditions, apis.Condition(c))
	}
	return conditions
}

// SetConditions implements apis.Object, writing the typed Condition
// vocabulary back into this Handle's own condition bookkeeping.
func (h *Handle) SetConditions(conditions []apis.Condition) {
	raw := make([]interface{}, 0, len(conditions))
	for _, c := range conditions {
		m, err := runtime.DefaultUnstructuredConverter.ToUnstructured((*metav1.Condition)(&c))
		if err != nil {
			continue
		}
		raw = append(raw, m)
	}
	if err := unstructured.SetNestedSlice(h.Object, raw, "status", handleConditionsField); err != nil {
		// Object carries only JSON-safe values already converted above;
		// SetNestedSlice only fails on a type SetNestedField rejects.
		return
	}
}

// conditions returns the ConditionSet this Handle evaluates and mutates its
// Ready/Degraded/Progressing/Error conditions through.
//
// Degraded/Error are independent conditions, not dependents of Ready in the
// ConditionSet sense (Set's automatic root recomputation assumes a
// dependent is healthy when True; Degraded/Error are the opposite polarity,
// healthy when False). Every mark* method below therefore always finishes
// with its own explicit Ready write, intentionally overriding whatever the
// automatic recompute triggered by the preceding Set calls left behind.
func (h *Handle) conditions() apis.ConditionSet {
	return conditionTypes.For(h)
}

// markProgressing records that the instance has been applied but is not yet
// known to be healthy.
func (h *Handle) markProgressing(message string) {
	c := h.conditions()
	c.SetUnknownWithReason(ConditionProgressing, "Deploying", message)
	c.SetUnknown(apis.ConditionReady)
}

// markReady records that the instance reached steady state cleanly.
func (h *Handle) markReady() {
	c := h.conditions()
	c.SetFalse(ConditionProgressing, "Deployed", "")
	c.SetTrue(apis.ConditionReady)
}

// markDegraded records that the instance deployed but is reporting an
// unhealthy condition of its own (e.g. kro's InstanceSynced == False).
func (h *Handle) markDegraded(reason, message string) {
	c := h.conditions()
	c.SetFalse(ConditionProgressing, "Deployed", "")
	c.SetTrue(ConditionDegraded)
	c.Set(apis.Condition{Type: apis.ConditionReady, Status: metav1.ConditionFalse, Reason: reason, Message: message})
}

// markFailed records a terminal deployment failure.
func (h *Handle) markFailed(reason, message string) {
	c := h.conditions()
	c.SetFalse(ConditionProgressing, reason, message)
	c.SetTrue(ConditionError)
	c.Set(apis.Condition{Type: apis.ConditionReady, Status: metav1.ConditionFalse, Reason: reason, Message: message})
}

// State reports the Handle's coarse lifecycle state, derived from its
// Error/Degraded/Ready/Progressing conditions.
func (h *Handle) State() State {
	if h.destroyed {
		return StateDestroyed
	}
	c := h.conditions()
	switch {
	case c.Get(ConditionError).IsTrue():
		return StateFailed
	case c.Get(ConditionDegraded).IsTrue():
		return StateDegraded
	case c.Get(apis.ConditionReady).IsTrue():
		return StateReady
	default:
		return StateDeployed
	}
}

// Name returns the instance's name.
func (h *Handle) Name() string {
	return h.GetName()
}

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

// Package readiness decides whether a deployed Kubernetes resource has
// reached its steady state: a per-Kind table of predicates, overridable per
// resource by an attached evaluator (a resource's own readyWhen clause).
package readiness

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Verdict is the outcome of evaluating one resource's readiness.
type Verdict struct {
	Ready   bool
	Reason  string
	Message string
}

func ready(reason string) Verdict {
	return Verdict{Ready: true, Reason: reason}
}

func notReady(reason, message string) Verdict {
	return Verdict{Ready: false, Reason: reason, Message: message}
}

// Evaluator decides the readiness of one unstructured resource.
type Evaluator func(obj *unstructured.Unstructured) (Verdict, error)

// Registry holds the default per-Kind predicate table plus any
// resource-attached overrides (a resource's own readyWhen evaluator, which
// always takes priority over the Kind table).
type Registry struct {
	byKind map[string]Evaluator
	custom map[string]Evaluator
}

// NewRegistry returns a Registry pre-populated with the default per-Kind
// table.
func NewRegistry() *Registry {
	return &Registry{
		byKind: defaultTable(),
		custom: make(map[string]Evaluator),
	}
}

// RegisterCustom attaches eval as the readiness evaluator for resourceID,
// overriding the Kind table for that one resource (the readyWhen case).
func (r *Registry) RegisterCustom(resourceID string, eval Evaluator) {
	r.custom[resourceID] = eval
}

// Evaluate decides the readiness of obj, which was deployed under
// resourceID. A registered custom evaluator for resourceID always wins;
// otherwise the Kind table is consulted, falling back to the generic rule
// when the Kind has no dedicated predicate.
func (r *Registry) Evaluate(resourceID string, obj *unstructured.Unstructured) (Verdict, error) {
	if eval, ok := r.custom[resourceID]; ok {
		return eval(obj)
	}
	if eval, ok := r.byKind[obj.GetKind()]; ok {
		return eval(obj)
	}
	return genericFallback(obj)
}

func defaultTable() map[string]Evaluator {
	return map[string]Evaluator{
		"ConfigMap":              immediate,
		"Secret":                 immediate,
		"CronJob":                immediate,
		"Namespace":              immediate,
		"ServiceAccount":         immediate,
		"Deployment":             deploymentReady,
		"StatefulSet":            replicaCountReady,
		"ReplicaSet":             replicaCountReady,
		"DaemonSet":              daemonSetReady,
		"Service":                serviceReady,
		"Pod":                    podReady,
		"Job":                    jobReady,
		"PersistentVolumeClaim":  pvcReady,
		"Ingress":                ingressReady,
		"HorizontalPodAutoscaler": hpaReady,
		"CustomResourceDefinition": crdReady,
	}
}

func immediate(obj *unstructured.Unstructured) (Verdict, error) {
	return ready("Exists"), nil
}

func deploymentReady(obj *unstructured.Unstructured) (Verdict, error) {
	specReplicas, _, err := unstructured.NestedInt64(obj.Object, "spec", "replicas")
	if err != nil {
		return Verdict{}, err
	}
	if specReplicas == 0 {
		specReplicas = 1
	}

	readyReplicas, _, err := unstructured.NestedInt64(obj.Object, "status", "readyReplicas")
	if err != nil {
		return Verdict{}, err
	}
	availableReplicas, _, err := unstructured.NestedInt64(obj.Object, "status", "availableReplicas")
	if err != nil {
		return Verdict{}, err
	}
	unavailableReplicas, hasUnavailable, err := unstructured.NestedInt64(obj.Object, "status", "unavailableReplicas")
	if err != nil {
		return Verdict{}, err
	}

	if readyReplicas == specReplicas && availableReplicas == specReplicas && (!hasUnavailable || unavailableReplicas == 0) {
		return ready("MinimumReplicasAvailable"), nil
	}
	return notReady("ReplicasNotReady",
		fmt.Sprintf("ready=%d available=%d unavailable=%d want=%d", readyReplicas, availableReplicas, unavailableReplicas, specReplicas)), nil
}

func replicaCountReady(obj *unstructured.Unstructured) (Verdict, error) {
	specReplicas, _, err := unstructured.NestedInt64(obj.Object, "spec", "replicas")
	if err != nil {
		return Verdict{}, err
	}
	if specReplicas == 0 {
		specReplicas = 1
	}
	readyReplicas, _, err := unstructured.NestedInt64(obj.Object, "status", "readyReplicas")
	if err != nil {
		return Verdict{}, err
	}

	if readyReplicas == specReplicas {
		return ready("ReplicasReady"), nil
	}
	return notReady("ReplicasNotReady", fmt.Sprintf("ready=%d want=%d", readyReplicas, specReplicas)), nil
}

func daemonSetReady(obj *unstructured.Unstructured) (Verdict, error) {
	numberReady, _, err := unstructured.NestedInt64(obj.Object, "status", "numberReady")
	if err != nil {
		return Verdict{}, err
	}
	desired, _, err := unstructured.NestedInt64(obj.Object, "status", "desiredNumberScheduled")
	if err != nil {
		return Verdict{}, err
	}

	if desired > 0 && numberReady == desired {
		return ready("AllNodesScheduled"), nil
	}
	return notReady("NotAllNodesScheduled", fmt.Sprintf("ready=%d desired=%d", numberReady, desired)), nil
}

func serviceReady(obj *unstructured.Unstructured) (Verdict, error) {
	svcType, _, err := unstructured.NestedString(obj.Object, "spec", "type")
	if err != nil {
		return Verdict{}, err
	}
	if svcType != "LoadBalancer" {
		return ready("Exists"), nil
	}

	ingress, _, err := unstructured.NestedSlice(obj.Object, "status", "loadBalancer", "ingress")
	if err != nil {
		return Verdict{}, err
	}
	if len(ingress) > 0 {
		return ready("LoadBalancerAssigned"), nil
	}
	return notReady("LoadBalancerPending", "waiting for an ingress address to be assigned"), nil
}

func podReady(obj *unstructured.Unstructured) (Verdict, error) {
	phase, _, err := unstructured.NestedString(obj.Object, "status", "phase")
	if err != nil {
		return Verdict{}, err
	}
	if phase != "Running" {
		return notReady("NotRunning", fmt.Sprintf("phase=%s", phase)), nil
	}

	statuses, _, err := unstructured.NestedSlice(obj.Object, "status", "containerStatuses")
	if err != nil {
		return Verdict{}, err
	}
	if len(statuses) == 0 {
		return notReady("NoContainerStatuses", "container statuses not yet reported"), nil
	}
	for _, s := range statuses {
		m, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		if r, _, _ := unstructured.NestedBool(m, "ready"); !r {
			name, _, _ := unstructured.NestedString(m, "name")
			return notReady("ContainerNotReady", fmt.Sprintf("container %q is not ready", name)), nil
		}
	}
	return ready("PodRunning"), nil
}

func jobReady(obj *unstructured.Unstructured) (Verdict, error) {
	completions, hasCompletions, err := unstructured.NestedInt64(obj.Object, "spec", "completions")
	if err != nil {
		return Verdict{}, err
	}
	if !hasCompletions {
		completions = 1
	}
	succeeded, _, err := unstructured.NestedInt64(obj.Object, "status", "succeeded")
	if err != nil {
		return Verdict{}, err
	}

	if succeeded >= completions {
		return ready("JobComplete"), nil
	}
	return notReady("JobIncomplete", fmt.Sprintf("succeeded=%d want=%d", succeeded, completions)), nil
}

func pvcReady(obj *unstructured.Unstructured) (Verdict, error) {
	phase, _, err := unstructured.NestedString(obj.Object, "status", "phase")
	if err != nil {
		return Verdict{}, err
	}
	if phase == "Bound" {
		return ready("Bound"), nil
	}
	return notReady("NotBound", fmt.Sprintf("phase=%s", phase)), nil
}

func ingressReady(obj *unstructured.Unstructured) (Verdict, error) {
	ingress, _, err := unstructured.NestedSlice(obj.Object, "status", "loadBalancer", "ingress")
	if err != nil {
		return Verdict{}, err
	}
	if len(ingress) > 0 {
		return ready("LoadBalancerAssigned"), nil
	}
	return notReady("LoadBalancerPending", "waiting for an ingress address to be assigned"), nil
}

func hpaReady(obj *unstructured.Unstructured) (Verdict, error) {
	_, found, err := unstructured.NestedInt64(obj.Object, "status", "currentReplicas")
	if err != nil {
		return Verdict{}, err
	}
	if found {
		return ready("CurrentReplicasReported"), nil
	}
	return notReady("CurrentReplicasUnknown", "status.currentReplicas not yet reported"), nil
}

func crdReady(obj *unstructured.Unstructured) (Verdict, error) {
	conditions, _, err := unstructured.NestedSlice(obj.Object, "status", "conditions")
	if err != nil {
		return Verdict{}, err
	}

	established, namesAccepted := false, false
	for _, c := range conditions {
		m, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		condType, _, _ := unstructured.NestedString(m, "type")
		status, _, _ := unstructured.NestedString(m, "status")
		switch condType {
		case "Established":
			established = status == "True"
		case "NamesAccepted":
			namesAccepted = status == "True"
		}
	}

	if established && namesAccepted {
		return ready("Established"), nil
	}
	return notReady("NotEstablished", fmt.Sprintf("established=%v namesAccepted=%v", established, namesAccepted)), nil
}

// genericFallback implements the last-resort rule for any Kind without a
// dedicated predicate: a Ready=True condition wins, then an Available=True
// condition, otherwise the mere presence of a non-empty status is treated
// as ready (many CRDs never populate conditions at all).
func genericFallback(obj *unstructured.Unstructured) (Verdict, error) {
	conditions, _, err := unstructured.NestedSlice(obj.Object, "status", "conditions")
	if err != nil {
		return Verdict{}, err
	}

	for _, want := range []string{"Ready", "Available"} {
		for _, c := range conditions {
			m, ok := c.(map[string]interface{})
			if !ok {
				continue
			}
			condType, _, _ := unstructured.NestedString(m, "type")
			status, _, _ := unstructured.NestedString(m, "status")
			if condType == want && status == "True" {
				return ready(want + "Condition"), nil
			}
		}
	}

	status, found, err := unstructured.NestedMap(obj.Object, "status")
	if err != nil {
		return Verdict{}, err
	}
	if found && len(status) > 0 {
		return ready("StatusReported"), nil
	}

	return notReady("NoStatus", "resource has not reported status yet"), nil
}

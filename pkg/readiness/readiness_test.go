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

package readiness

import (
	"testing"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func unstructuredFromMap(m map[string]interface{}) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: m}
}

func TestDeploymentReady(t *testing.T) {
	obj := unstructuredFromMap(map[string]interface{}{
		"kind": "Deployment",
		"spec": map[string]interface{}{"replicas": int64(3)},
		"status": map[string]interface{}{
			"readyReplicas":     int64(3),
			"availableReplicas": int64(3),
		},
	})

	v, err := NewRegistry().Evaluate("app", obj)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !v.Ready {
		t.Errorf("Evaluate() = %+v, want Ready=true", v)
	}
}

func TestDeploymentNotReadyUnavailable(t *testing.T) {
	obj := unstructuredFromMap(map[string]interface{}{
		"kind": "Deployment",
		"spec": map[string]interface{}{"replicas": int64(3)},
		"status": map[string]interface{}{
			"readyReplicas":        int64(3),
			"availableReplicas":    int64(3),
			"unavailableReplicas":  int64(1),
		},
	})

	v, err := NewRegistry().Evaluate("app", obj)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Ready {
		t.Error("Evaluate() = Ready=true, want false when unavailableReplicas > 0")
	}
}

func TestServiceLoadBalancerPending(t *testing.T) {
	obj := unstructuredFromMap(map[string]interface{}{
		"kind": "Service",
		"spec": map[string]interface{}{"type": "LoadBalancer"},
		"status": map[string]interface{}{
			"loadBalancer": map[string]interface{}{},
		},
	})

	v, err := NewRegistry().Evaluate("svc", obj)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Ready {
		t.Error("Evaluate() = Ready=true, want false before ingress is assigned")
	}
}

func TestServiceClusterIPImmediate(t *testing.T) {
	obj := unstructuredFromMap(map[string]interface{}{
		"kind": "Service",
		"spec": map[string]interface{}{"type": "ClusterIP"},
	})

	v, err := NewRegistry().Evaluate("svc", obj)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !v.Ready {
		t.Errorf("Evaluate() = %+v, want Ready=true for ClusterIP service", v)
	}
}

func TestConfigMapImmediate(t *testing.T) {
	obj := unstructuredFromMap(map[string]interface{}{"kind": "ConfigMap"})

	v, err := NewRegistry().Evaluate("cm", obj)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !v.Ready {
		t.Error("Evaluate() = Ready=false, want true for ConfigMap")
	}
}

func TestCustomEvaluatorOverridesKindTable(t *testing.T) {
	obj := unstructuredFromMap(map[string]interface{}{"kind": "Deployment"})

	r := NewRegistry()
	r.RegisterCustom("app", func(obj *unstructured.Unstructured) (Verdict, error) {
		return Verdict{Ready: true, Reason: "CustomReadyWhen"}, nil
	})

	v, err := r.Evaluate("app", obj)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !v.Ready || v.Reason != "CustomReadyWhen" {
		t.Errorf("Evaluate() = %+v, want custom evaluator's verdict", v)
	}
}

func TestGenericFallbackUnknownKind(t *testing.T) {
	obj := unstructuredFromMap(map[string]interface{}{
		"kind": "Widget",
		"status": map[string]interface{}{
			"conditions": []interface{}{
				map[string]interface{}{"type": "Ready", "status": "True"},
			},
		},
	})

	v, err := NewRegistry().Evaluate("widget", obj)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !v.Ready {
		t.Errorf("Evaluate() = %+v, want Ready=true from Ready condition", v)
	}
}

func TestGenericFallbackNoStatus(t *testing.T) {
	obj := unstructuredFromMap(map[string]interface{}{"kind": "Widget"})

	v, err := NewRegistry().Evaluate("widget", obj)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Ready {
		t.Error("Evaluate() = Ready=true, want false with no status at all")
	}
}

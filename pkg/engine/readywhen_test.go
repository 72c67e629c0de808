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
	"testing"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func TestEvaluateBoolExprsAllTrue(t *testing.T) {
	data := map[string]map[string]interface{}{
		"schema": {"spec": map[string]interface{}{"enabled": true}},
	}
	ok, _, err := evaluateBoolExprs([]string{"${schema.spec.enabled}"}, data, nil)
	if err != nil {
		t.Fatalf("evaluateBoolExprs: %v", err)
	}
	if !ok {
		t.Error("expected true")
	}
}

func TestEvaluateBoolExprsSelfReference(t *testing.T) {
	self := map[string]interface{}{"status": map[string]interface{}{"phase": "Active"}}
	ok, _, err := evaluateBoolExprs([]string{"${self.status.phase == 'Active'}"}, nil, self)
	if err != nil {
		t.Fatalf("evaluateBoolExprs: %v", err)
	}
	if !ok {
		t.Error("expected true")
	}
}

func TestEvaluateBoolExprsShortCircuitsOnFalse(t *testing.T) {
	self := map[string]interface{}{"status": map[string]interface{}{"phase": "Pending"}}
	ok, msg, err := evaluateBoolExprs([]string{"${self.status.phase == 'Active'}"}, nil, self)
	if err != nil {
		t.Fatalf("evaluateBoolExprs: %v", err)
	}
	if ok {
		t.Error("expected false")
	}
	if msg == "" {
		t.Error("expected a non-empty waiting message")
	}
}

func TestCustomReadinessEvaluatorOverridesDefault(t *testing.T) {
	obj := &unstructured.Unstructured{Object: map[string]interface{}{
		"kind":   "Deployment",
		"status": map[string]interface{}{"phase": "Active"},
	}}

	eval := customReadinessEvaluator([]string{"${self.status.phase == 'Active'}"}, nil)
	verdict, err := eval(obj)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !verdict.Ready {
		t.Errorf("verdict = %+v, want Ready=true", verdict)
	}
}

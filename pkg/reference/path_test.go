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

import "testing"

func TestSetValueAtPathCreatesIntermediates(t *testing.T) {
	root := map[string]interface{}{}
	if err := setValueAtPath(root, "spec.containers[0].image", "nginx"); err != nil {
		t.Fatalf("setValueAtPath: %v", err)
	}

	v, found, err := getValueAtPath(root, "spec.containers[0].image")
	if err != nil {
		t.Fatalf("getValueAtPath: %v", err)
	}
	if !found || v != "nginx" {
		t.Errorf("getValueAtPath() = (%v, %v), want (nginx, true)", v, found)
	}
}

func TestSetValueAtPathOverwritesExisting(t *testing.T) {
	root := map[string]interface{}{
		"spec": map[string]interface{}{
			"replicas": 1,
		},
	}
	if err := setValueAtPath(root, "spec.replicas", 3); err != nil {
		t.Fatalf("setValueAtPath: %v", err)
	}
	if root["spec"].(map[string]interface{})["replicas"] != 3 {
		t.Errorf("spec.replicas = %v, want 3", root["spec"])
	}
}

func TestGetValueAtPathMissing(t *testing.T) {
	root := map[string]interface{}{"spec": map[string]interface{}{}}
	_, found, err := getValueAtPath(root, "spec.replicas")
	if err != nil {
		t.Fatalf("getValueAtPath: %v", err)
	}
	if found {
		t.Error("expected found=false for missing field")
	}
}

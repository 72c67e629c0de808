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
	"testing"

	"k8s.io/apimachinery/pkg/runtime"

	"github.com/yehudacohen/typekro-go/api/v1alpha1"
)

func TestMergeStatusDynamicWinsOnCollision(t *testing.T) {
	static := map[string]interface{}{"replicas": int64(1), "url": "pending"}
	dynamic := map[string]interface{}{"url": "http://ready.example.com"}

	got := mergeStatus(static, dynamic)
	if got["replicas"] != int64(1) {
		t.Errorf("replicas = %v, want the static field preserved", got["replicas"])
	}
	if got["url"] != "http://ready.example.com" {
		t.Errorf("url = %v, want the dynamic field to win", got["url"])
	}
}

func TestStatusSchemaDeclaresCustomFields(t *testing.T) {
	withCustom := &v1alpha1.ResourceGraphDefinition{
		Spec: v1alpha1.ResourceGraphDefinitionSpec{
			Schema: &v1alpha1.Schema{
				Status: runtime.RawExtension{Raw: []byte(`{"state":"string","conditions":"[]condition","url":"string"}`)},
			},
		},
	}
	if !statusSchemaDeclaresCustomFields(withCustom) {
		t.Error("expected a status schema with a url field to declare custom fields")
	}

	builtinOnly := &v1alpha1.ResourceGraphDefinition{
		Spec: v1alpha1.ResourceGraphDefinitionSpec{
			Schema: &v1alpha1.Schema{
				Status: runtime.RawExtension{Raw: []byte(`{"state":"string","conditions":"[]condition"}`)},
			},
		},
	}
	if statusSchemaDeclaresCustomFields(builtinOnly) {
		t.Error("expected a status schema with only state/conditions to declare no custom fields")
	}

	noSchema := &v1alpha1.ResourceGraphDefinition{
		Spec: v1alpha1.ResourceGraphDefinitionSpec{Schema: &v1alpha1.Schema{}},
	}
	if statusSchemaDeclaresCustomFields(noSchema) {
		t.Error("expected an empty status schema to declare no custom fields")
	}
}

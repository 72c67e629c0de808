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

package factory

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery/fake"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	clienttesting "k8s.io/client-go/testing"

	"github.com/yehudacohen/typekro-go/api/v1alpha1"
	"github.com/yehudacohen/typekro-go/pkg/engine"
)

func newTestDirectFactory(t *testing.T, objs ...runtime.Object) (*Factory, *dynamicfake.FakeDynamicClient) {
	t.Helper()

	scheme := runtime.NewScheme()
	gvrToListKind := map[schema.GroupVersionResource]string{
		{Group: "", Version: "v1", Resource: "configmaps"}: "ConfigMapList",
	}
	dyn := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme, gvrToListKind, objs...)

	fakeDisc := &fake.FakeDiscovery{Fake: &clienttesting.Fake{}}
	fakeDisc.Resources = []*metav1.APIResourceList{
		{
			GroupVersion: "v1",
			APIResources: []metav1.APIResource{
				{Name: "configmaps", Namespaced: true, Kind: "ConfigMap"},
			},
		},
	}

	f := NewDirect(dyn, fakeDisc, logr.Discard(), Options{Namespace: "default"})
	return f, dyn
}

func configMapGraph() GraphDefinition {
	return GraphDefinition{
		Name: "web-config",
		Kind: "WebConfig",
		Resources: []engine.Resource{{
			ID: "cm",
			Template: map[string]interface{}{
				"apiVersion": "v1",
				"kind":       "ConfigMap",
				"metadata": map[string]interface{}{
					"name":      "${schema.spec.name}-config",
					"namespace": "${schema.spec.namespace}",
				},
				"data": map[string]interface{}{
					"key": "value",
				},
			},
		}},
	}
}

func TestDeployDirectMarksHandleReadyAndRegistersIt(t *testing.T) {
	f, _ := newTestDirectFactory(t)

	handle, err := f.Deploy(context.Background(), configMapGraph(), map[string]interface{}{"name": "site"}, 1)
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}
	if handle.State() != StateReady {
		t.Errorf("State = %v, want ready", handle.State())
	}
	if handle.Name() != "site" {
		t.Errorf("Name = %q, want the spec's name field honored", handle.Name())
	}

	instances := f.GetInstances()
	if len(instances) != 1 || instances[0].Name() != "site" {
		t.Fatalf("GetInstances = %v, want exactly [site]", instances)
	}
}

func TestDeployDirectRejectsDuplicateInstanceName(t *testing.T) {
	f, _ := newTestDirectFactory(t)

	if _, err := f.Deploy(context.Background(), configMapGraph(), map[string]interface{}{"name": "site"}, 1); err != nil {
		t.Fatalf("first Deploy: %v", err)
	}

	_, err := f.Deploy(context.Background(), configMapGraph(), map[string]interface{}{"name": "site"}, 2)
	var dup *DuplicateInstanceError
	if !errors.As(err, &dup) {
		t.Fatalf("error = %v, want *DuplicateInstanceError", err)
	}
}

func TestDeployDirectRunsPreflightsInOrderAndAbortsOnFirstFailure(t *testing.T) {
	f, _ := newTestDirectFactory(t)

	var ran []string
	graph := configMapGraph()
	graph.Preflights = []PreflightFunc{
		{Name: "first", Run: func(ctx context.Context, spec map[string]interface{}) error {
			ran = append(ran, "first")
			return nil
		}},
		{Name: "second", Run: func(ctx context.Context, spec map[string]interface{}) error {
			ran = append(ran, "second")
			return errors.New("boom")
		}},
		{Name: "third", Run: func(ctx context.Context, spec map[string]interface{}) error {
			ran = append(ran, "third")
			return nil
		}},
	}

	_, err := f.Deploy(context.Background(), graph, map[string]interface{}{"name": "site"}, 1)
	var preflightErr *PreflightError
	if !errors.As(err, &preflightErr) || preflightErr.Name != "second" {
		t.Fatalf("error = %v, want *PreflightError for %q", err, "second")
	}
	if len(ran) != 2 || ran[0] != "first" || ran[1] != "second" {
		t.Errorf("ran = %v, want [first second] (third must not run)", ran)
	}
	if _, ok := f.registry.get("site"); ok {
		t.Error("a failed preflight must not leave an instance registered")
	}
}

func TestDeployKroRejectsDynamicPreflightsBeforeRunningAny(t *testing.T) {
	_, dyn := newTestDirectFactory(t)
	fakeDisc := &fake.FakeDiscovery{Fake: &clienttesting.Fake{}}
	f := NewKro(dyn, fakeDisc, logr.Discard(), Options{Namespace: "default"})

	ran := false
	graph := GraphDefinition{
		Name: "web-config",
		RGD:  &v1alpha1.ResourceGraphDefinition{},
		Preflights: []PreflightFunc{
			{Name: "needs-live-state", Dynamic: true, Run: func(ctx context.Context, spec map[string]interface{}) error {
				ran = true
				return nil
			}},
		},
	}

	_, err := f.Deploy(context.Background(), graph, map[string]interface{}{"name": "site"}, 1)
	var validationErr *PreflightValidationError
	if !errors.As(err, &validationErr) || validationErr.Name != "needs-live-state" {
		t.Fatalf("error = %v, want *PreflightValidationError for %q", err, "needs-live-state")
	}
	if ran {
		t.Error("a Dynamic preflight must never run in Kro mode")
	}
}

func TestDeleteInstanceDeletesResourcesAndDeregisters(t *testing.T) {
	f, dyn := newTestDirectFactory(t)

	if _, err := f.Deploy(context.Background(), configMapGraph(), map[string]interface{}{"name": "site"}, 1); err != nil {
		t.Fatalf("Deploy: %v", err)
	}

	result, err := f.DeleteInstance(context.Background(), "site")
	if err != nil {
		t.Fatalf("DeleteInstance: %v", err)
	}
	if result.Status != "success" {
		t.Errorf("Status = %v, want success", result.Status)
	}

	if _, ok := f.registry.get("site"); ok {
		t.Error("instance should have been removed from the registry")
	}

	gvr := schema.GroupVersionResource{Group: "", Version: "v1", Resource: "configmaps"}
	_, err = dyn.Resource(gvr).Namespace("default").Get(context.Background(), "site-config", metav1.GetOptions{})
	if err == nil {
		t.Error("expected the ConfigMap to have been deleted")
	}
}

func TestGetStatusReportsReadyForAnImmediateResource(t *testing.T) {
	f, _ := newTestDirectFactory(t)

	if _, err := f.Deploy(context.Background(), configMapGraph(), map[string]interface{}{"name": "site"}, 1); err != nil {
		t.Fatalf("Deploy: %v", err)
	}

	state, err := f.GetStatus(context.Background(), "site")
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if state != StateReady {
		t.Errorf("State = %v, want ready (ConfigMap is immediately ready)", state)
	}
}

func TestGetStatusReturnsNotFoundErrorForUntrackedName(t *testing.T) {
	f, _ := newTestDirectFactory(t)

	_, err := f.GetStatus(context.Background(), "missing")
	if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}
}

func TestToYAMLEmitsMultiDocumentOutputForEveryAppliedResource(t *testing.T) {
	f, _ := newTestDirectFactory(t)

	if _, err := f.Deploy(context.Background(), configMapGraph(), map[string]interface{}{"name": "site"}, 1); err != nil {
		t.Fatalf("Deploy: %v", err)
	}

	doc, err := f.ToYAML("site")
	if err != nil {
		t.Fatalf("ToYAML: %v", err)
	}
	if doc == "" {
		t.Fatal("expected non-empty YAML")
	}
}

func TestNewAggregateObjectCarriesSpec(t *testing.T) {
	obj := newAggregateObject("WebConfig", "default", "site", map[string]interface{}{"name": "site"})
	spec, found, _ := unstructured.NestedMap(obj.Object, "spec")
	if !found || spec["name"] != "site" {
		t.Errorf("spec = %v, want the deployed spec echoed back", spec)
	}
	if obj.GetKind() != "WebConfig" {
		t.Errorf("Kind = %q, want WebConfig", obj.GetKind())
	}
}

func TestStampInstanceLabelsTagsEachResourceWithoutMutatingTheOriginal(t *testing.T) {
	graph := configMapGraph()
	stamped := stampInstanceLabels(graph.Resources, graph.Name, "default", "site")

	labels, found, _ := unstructured.NestedStringMap(stamped[0].Template, "metadata", "labels")
	if !found {
		t.Fatal("expected labels to be set on the stamped template")
	}
	if labels["typekro.dev/instance-name"] != "site" || labels["typekro.dev/owned"] != "true" {
		t.Errorf("labels = %v, want instance-name=site and owned=true", labels)
	}
	if labels["typekro.dev/graph-name"] != graph.Name {
		t.Errorf("labels[graph-name] = %q, want %q", labels["typekro.dev/graph-name"], graph.Name)
	}

	if _, found, _ := unstructured.NestedStringMap(graph.Resources[0].Template, "metadata", "labels"); found {
		t.Error("stampInstanceLabels must not mutate the caller's original templates")
	}
}

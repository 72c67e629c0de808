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

package rollback

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
)

func configMapResource(id, name string) (Resource, *unstructured.Unstructured) {
	gvk := schema.GroupVersionKind{Group: "", Version: "v1", Kind: "ConfigMap"}
	obj := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "ConfigMap",
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": "default",
		},
	}}
	return Resource{ID: id, GVK: gvk, Namespace: "default", Name: name}, obj
}

func newTestManager(t *testing.T, objs ...runtime.Object) (*Manager, *dynamicfake.FakeDynamicClient) {
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

	return New(dyn, fakeDisc, logr.Discard()), dyn
}

func TestRollbackDeletesAllSucceeds(t *testing.T) {
	r1, o1 := configMapResource("cm1", "a")
	r2, o2 := configMapResource("cm2", "b")
	mgr, dyn := newTestManager(t, o1, o2)

	result, err := mgr.Rollback(context.Background(), []Resource{r2, r1}, Options{})
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if result.Status != StatusSuccess {
		t.Errorf("Status = %q, want success", result.Status)
	}
	if len(result.RolledBack) != 2 {
		t.Errorf("RolledBack = %v, want 2 entries", result.RolledBack)
	}

	gvr := schema.GroupVersionResource{Group: "", Version: "v1", Resource: "configmaps"}
	if _, err := dyn.Resource(gvr).Namespace("default").Get(context.Background(), "a", metav1.GetOptions{}); err == nil {
		t.Error("expected configmap a to be deleted")
	}
}

func TestRollbackToleratesNotFound(t *testing.T) {
	r, _ := configMapResource("cm1", "missing")
	mgr, _ := newTestManager(t)

	result, err := mgr.Rollback(context.Background(), []Resource{r}, Options{})
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if result.Status != StatusSuccess {
		t.Errorf("Status = %q, want success (404 counts as already rolled back)", result.Status)
	}
	if len(result.RolledBack) != 1 || result.RolledBack[0] != "cm1" {
		t.Errorf("RolledBack = %v, want [cm1]", result.RolledBack)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}
}

func TestRollbackRecordsErrorsAndContinues(t *testing.T) {
	r1, o1 := configMapResource("cm1", "a")
	r2, _ := configMapResource("cm2", "b")
	mgr, dyn := newTestManager(t, o1)

	dyn.PrependReactor("delete", "configmaps", func(action clienttesting.Action) (bool, runtime.Object, error) {
		da := action.(clienttesting.DeleteAction)
		if da.GetName() == "a" {
			return true, nil, errors.New("etcd timeout")
		}
		return false, nil, nil
	})

	result, err := mgr.Rollback(context.Background(), []Resource{r1, r2}, Options{})
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if result.Status != StatusPartial {
		t.Errorf("Status = %q, want partial", result.Status)
	}
	if len(result.Errors) != 1 || result.Errors[0].ResourceID != "cm1" {
		t.Errorf("Errors = %v, want one entry for cm1", result.Errors)
	}
	if len(result.RolledBack) != 1 || result.RolledBack[0] != "cm2" {
		t.Errorf("RolledBack = %v, want [cm2]", result.RolledBack)
	}
}

func TestRollbackClearsKroInstanceFinalizerAfterDelete(t *testing.T) {
	gvk := schema.GroupVersionKind{Group: "kro.run", Version: "v1alpha1", Kind: "WebConfig"}
	gvr := schema.GroupVersionResource{Group: "kro.run", Version: "v1alpha1", Resource: "webconfigs"}
	obj := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "kro.run/v1alpha1",
		"kind":       "WebConfig",
		"metadata": map[string]interface{}{
			"name":       "site",
			"namespace":  "default",
			"finalizers": []interface{}{"kro.run/finalizer"},
		},
	}}

	scheme := runtime.NewScheme()
	dyn := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme, map[schema.GroupVersionResource]string{gvr: "WebConfigList"}, obj)

	fakeDisc := &fake.FakeDiscovery{Fake: &clienttesting.Fake{}}
	fakeDisc.Resources = []*metav1.APIResourceList{
		{
			GroupVersion: "kro.run/v1alpha1",
			APIResources: []metav1.APIResource{
				{Name: "webconfigs", Namespaced: true, Kind: "WebConfig"},
			},
		},
	}

	// Simulate the API server honoring the finalizer: the delete is accepted
	// but the object is not actually removed from the tracker, the same as a
	// real cluster leaving it under a deletionTimestamp until every
	// finalizer is gone.
	dyn.PrependReactor("delete", "webconfigs", func(action clienttesting.Action) (bool, runtime.Object, error) {
		return true, nil, nil
	})

	mgr := New(dyn, fakeDisc, logr.Discard())
	res := Resource{ID: "site", GVK: gvk, Namespace: "default", Name: "site"}

	result, err := mgr.Rollback(context.Background(), []Resource{res}, Options{})
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if result.Status != StatusSuccess {
		t.Errorf("Status = %q, want success", result.Status)
	}

	live, err := dyn.Resource(gvr).Namespace("default").Get(context.Background(), "site", metav1.GetOptions{})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	finalizers, _, _ := unstructured.NestedStringSlice(live.Object, "metadata", "finalizers")
	if len(finalizers) != 0 {
		t.Errorf("finalizers = %v, want none after rollback clears the instance finalizer", finalizers)
	}
}

func TestRollbackFailedWhenNoneSucceed(t *testing.T) {
	r1, o1 := configMapResource("cm1", "a")
	mgr, dyn := newTestManager(t, o1)

	dyn.PrependReactor("delete", "configmaps", func(action clienttesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("forbidden")
	})

	result, err := mgr.Rollback(context.Background(), []Resource{r1}, Options{})
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if result.Status != StatusFailed {
		t.Errorf("Status = %q, want failed", result.Status)
	}
}

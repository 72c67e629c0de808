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

package hydrate

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery/fake"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	clienttesting "k8s.io/client-go/testing"
)

func deploymentGVK() schema.GroupVersionKind {
	return schema.GroupVersionKind{Group: "apps", Version: "v1", Kind: "Deployment"}
}

func deploymentObject(name string, readyReplicas int64) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "apps/v1",
		"kind":       "Deployment",
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": "default",
		},
		"status": map[string]interface{}{
			"readyReplicas":     readyReplicas,
			"availableReplicas": readyReplicas,
		},
	}}
}

func newTestHydrator(t *testing.T, opts []Option, objs ...runtime.Object) (*Hydrator, *dynamicfake.FakeDynamicClient) {
	t.Helper()

	scheme := runtime.NewScheme()
	gvrToListKind := map[schema.GroupVersionResource]string{
		{Group: "apps", Version: "v1", Resource: "deployments"}: "DeploymentList",
	}
	dyn := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme, gvrToListKind, objs...)

	fakeDisc := &fake.FakeDiscovery{Fake: &clienttesting.Fake{}}
	fakeDisc.Resources = []*metav1.APIResourceList{
		{
			GroupVersion: "apps/v1",
			APIResources: []metav1.APIResource{
				{Name: "deployments", Namespaced: true, Kind: "Deployment"},
			},
		},
	}

	return New(dyn, fakeDisc, logr.Discard(), opts...), dyn
}

func TestHydrateReadsLiveStatus(t *testing.T) {
	h, _ := newTestHydrator(t, nil, deploymentObject("app", 3))

	dst := map[string]interface{}{}
	result, err := h.Hydrate(context.Background(), dst, deploymentGVK(), "default", "app", nil)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if !result.Success {
		t.Fatalf("result = %+v, want Success", result)
	}
	if len(result.Fields) != 2 {
		t.Errorf("Fields = %v, want 2 entries", result.Fields)
	}
	if dst["readyReplicas"] != int64(3) {
		t.Errorf("dst[readyReplicas] = %v, want 3", dst["readyReplicas"])
	}
}

func TestHydrateUsesProvidedSnapshotWithoutReading(t *testing.T) {
	h, dyn := newTestHydrator(t, nil)
	dyn.PrependReactor("get", "*", func(action clienttesting.Action) (bool, runtime.Object, error) {
		t.Fatalf("unexpected API read when a snapshot was provided: %v", action)
		return false, nil, nil
	})

	dst := map[string]interface{}{}
	snapshot := deploymentObject("app", 5)
	result, err := h.Hydrate(context.Background(), dst, deploymentGVK(), "default", "app", snapshot)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if !result.Success || dst["readyReplicas"] != int64(5) {
		t.Fatalf("result = %+v, dst = %v", result, dst)
	}
}

func TestHydrateNotFound(t *testing.T) {
	h, _ := newTestHydrator(t, nil)

	dst := map[string]interface{}{}
	result, err := h.Hydrate(context.Background(), dst, deploymentGVK(), "default", "missing", nil)
	if err != nil {
		t.Fatalf("Hydrate returned error for NotFound, want nil error with Success=false: %v", err)
	}
	if result.Success {
		t.Error("expected Success=false for a missing object")
	}
	if result.Reason != ReasonNotFound {
		t.Errorf("Reason = %q, want %q", result.Reason, ReasonNotFound)
	}
}

func TestHydrateCachesReadsWithinTTL(t *testing.T) {
	h, dyn := newTestHydrator(t, nil, deploymentObject("app", 1))

	reads := 0
	dyn.PrependReactor("get", "deployments", func(action clienttesting.Action) (bool, runtime.Object, error) {
		reads++
		return false, nil, nil
	})

	dst := map[string]interface{}{}
	if _, err := h.Hydrate(context.Background(), dst, deploymentGVK(), "default", "app", nil); err != nil {
		t.Fatalf("Hydrate (1st): %v", err)
	}
	if _, err := h.Hydrate(context.Background(), dst, deploymentGVK(), "default", "app", nil); err != nil {
		t.Fatalf("Hydrate (2nd): %v", err)
	}
	if reads != 1 {
		t.Errorf("reads = %d, want 1 (second call should hit the cache)", reads)
	}
}

func TestHydrateInvalidateForcesReread(t *testing.T) {
	h, dyn := newTestHydrator(t, nil, deploymentObject("app", 1))

	reads := 0
	dyn.PrependReactor("get", "deployments", func(action clienttesting.Action) (bool, runtime.Object, error) {
		reads++
		return false, nil, nil
	})

	dst := map[string]interface{}{}
	if _, err := h.Hydrate(context.Background(), dst, deploymentGVK(), "default", "app", nil); err != nil {
		t.Fatalf("Hydrate (1st): %v", err)
	}
	h.Invalidate(deploymentGVK(), "default", "app")
	if _, err := h.Hydrate(context.Background(), dst, deploymentGVK(), "default", "app", nil); err != nil {
		t.Fatalf("Hydrate (2nd): %v", err)
	}
	if reads != 2 {
		t.Errorf("reads = %d, want 2 (invalidate should force a re-read)", reads)
	}
}

func TestWithTTLExpiresEntries(t *testing.T) {
	h, dyn := newTestHydrator(t, []Option{WithTTL(time.Nanosecond)}, deploymentObject("app", 1))

	reads := 0
	dyn.PrependReactor("get", "deployments", func(action clienttesting.Action) (bool, runtime.Object, error) {
		reads++
		return false, nil, nil
	})

	dst := map[string]interface{}{}
	if _, err := h.Hydrate(context.Background(), dst, deploymentGVK(), "default", "app", nil); err != nil {
		t.Fatalf("Hydrate (1st): %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := h.Hydrate(context.Background(), dst, deploymentGVK(), "default", "app", nil); err != nil {
		t.Fatalf("Hydrate (2nd): %v", err)
	}
	if reads != 2 {
		t.Errorf("reads = %d, want 2 (TTL should have expired the cached entry)", reads)
	}
}

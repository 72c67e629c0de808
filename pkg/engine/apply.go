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
	"context"
	"encoding/json"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"

	"github.com/yehudacohen/typekro-go/pkg/delta"
)

// applyObject creates obj if it does not exist; if it already exists, it is
// merge-patched only when delta.Compare finds a real difference, so a deploy
// that changes nothing doesn't bump resourceVersion or disturb watchers.
// When dryRun is true, every create/patch carries DryRun: []string{"All"},
// so the API server still validates and defaults the object but persists
// nothing.
func (e *Engine) applyObject(ctx context.Context, res *resourceMapper, desired *unstructured.Unstructured, dryRun bool) (*unstructured.Unstructured, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	ri, err := res.resourceFor(desired)
	if err != nil {
		return nil, fmt.Errorf("resolving REST mapping for %s: %w", desired.GroupVersionKind(), err)
	}

	createOpts := metav1.CreateOptions{}
	if dryRun {
		createOpts.DryRun = []string{metav1.DryRunAll}
	}

	created, err := ri.Create(ctx, desired, createOpts)
	if err == nil {
		return created, nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return nil, fmt.Errorf("creating %s/%s: %w", desired.GetKind(), desired.GetName(), err)
	}

	existing, err := ri.Get(ctx, desired.GetName(), metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetching existing %s/%s: %w", desired.GetKind(), desired.GetName(), err)
	}

	diffs, err := delta.Compare(desired, existing)
	if err != nil {
		return nil, fmt.Errorf("comparing %s/%s: %w", desired.GetKind(), desired.GetName(), err)
	}
	if len(diffs) == 0 {
		return existing, nil
	}

	patch := desired.DeepCopy()
	patch.SetResourceVersion(existing.GetResourceVersion())
	patchBytes, err := json.Marshal(patch.Object)
	if err != nil {
		return nil, fmt.Errorf("marshaling patch for %s/%s: %w", desired.GetKind(), desired.GetName(), err)
	}

	patchOpts := metav1.PatchOptions{}
	if dryRun {
		patchOpts.DryRun = []string{metav1.DryRunAll}
	}

	updated, err := ri.Patch(ctx, desired.GetName(), types.MergePatchType, patchBytes, patchOpts)
	if err != nil {
		return nil, fmt.Errorf("patching %s/%s: %w", desired.GetKind(), desired.GetName(), err)
	}
	return updated, nil
}

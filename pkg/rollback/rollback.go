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

// Package rollback deletes a set of previously-deployed resources as a
// compensating action: best-effort, 404-tolerant, no readiness waiting.
package rollback

import (
	"context"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"

	"github.com/yehudacohen/typekro-go/pkg/metadata"
)

// Resource identifies one previously-deployed object to delete.
type Resource struct {
	ID        string
	GVK       schema.GroupVersionKind
	Namespace string
	Name      string
}

// Status summarizes how a rollback completed.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Error records one resource's delete failure.
type Error struct {
	ResourceID string
	Err        error
}

func (e *Error) Error() string {
	return "rollback: resource " + e.ResourceID + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Result is the outcome of one Rollback call.
type Result struct {
	Status     Status
	RolledBack []string
	Errors     []*Error
}

// Options configures a Rollback call. It is currently empty; it exists so
// callers and future options (e.g. a deletion grace period override) don't
// require a signature change.
type Options struct{}

// Manager deletes tracked resources, used to compensate a partially-applied
// or explicitly torn-down deploy.
type Manager struct {
	mapper *resourceMapper
	log    logr.Logger
}

// New returns a Manager that deletes through dyn, resolving Kind-to-resource
// mappings through disc.
func New(dyn dynamic.Interface, disc discovery.DiscoveryInterface, log logr.Logger) *Manager {
	return &Manager{
		mapper: newResourceMapper(disc, dyn),
		log:    log.WithName("rollback"),
	}
}

// Rollback deletes every resource in resources, in the order given — the
// caller is expected to have ordered them in reverse dependency order
// (pkg/depgraph.Graph.ReverseOrder) when a dependency graph is available,
// or in reverse creation order otherwise. A 404 counts as already rolled
// back. A non-404 failure is recorded and rollback continues with the
// remaining resources; it never aborts early. No readiness is awaited:
// deletion is considered complete once the API accepts it (or reports the
// object already gone).
func (m *Manager) Rollback(ctx context.Context, resources []Resource, _ Options) (*Result, error) {
	result := &Result{}

	for _, res := range resources {
		if err := m.deleteOne(ctx, res); err != nil {
			if apierrors.IsNotFound(err) {
				result.RolledBack = append(result.RolledBack, res.ID)
				continue
			}
			m.log.Error(err, "failed to delete resource during rollback", "resourceID", res.ID)
			result.Errors = append(result.Errors, &Error{ResourceID: res.ID, Err: err})
			continue
		}
		result.RolledBack = append(result.RolledBack, res.ID)
	}

	switch {
	case len(result.Errors) == 0:
		result.Status = StatusSuccess
	case len(result.RolledBack) > 0:
		result.Status = StatusPartial
	default:
		result.Status = StatusFailed
	}

	return result, nil
}

func (m *Manager) deleteOne(ctx context.Context, res Resource) error {
	ri, err := m.mapper.resourceFor(res.GVK, res.Namespace)
	if err != nil {
		return err
	}
	if err := ri.Delete(ctx, res.Name, metav1.DeleteOptions{}); err != nil {
		return err
	}
	return m.clearInstanceFinalizer(ctx, ri, res.Name)
}

// clearInstanceFinalizer strips the kro instance finalizer from res if it is
// still present under a deletionTimestamp, letting the API server's garbage
// collector actually remove it. The Kro-strategy instance custom resource
// carries this finalizer (set in pkg/kro.deployInstance) precisely so its
// deletion can't complete until this manager has recorded the outcome above;
// a plain resource with no such finalizer is simply gone already, and Get
// returns NotFound.
func (m *Manager) clearInstanceFinalizer(ctx context.Context, ri dynamic.ResourceInterface, name string) error {
	obj, err := ri.Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	has, err := metadata.HasInstanceFinalizerUnstructured(obj)
	if err != nil || !has {
		return err
	}
	if err := metadata.RemoveInstanceFinalizerUnstructured(obj); err != nil {
		return err
	}
	_, err = ri.Update(ctx, obj, metav1.UpdateOptions{})
	return err
}

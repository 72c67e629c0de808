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

// Package hydrate reads the live status of a deployed resource and copies it
// into a typed handle's status slot, short-circuiting repeated reads through
// a small TTL cache.
package hydrate

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
)

// ReasonNotFound is returned when the live object no longer exists.
const ReasonNotFound = "NotFound"

// Result is the outcome of one Hydrate call.
type Result struct {
	// Success is false only when the object could not be read at all
	// (NotFound, or a transport error reported in Err).
	Success bool
	// Fields lists the top-level status keys that were copied.
	Fields []string
	// Reason explains a Success=false result, e.g. ReasonNotFound.
	Reason string
	// Err carries a transport or decode error. Never set for an
	// individual field's copy failure: those are skipped, not fatal.
	Err error
}

// Hydrator reads live object status and copies it into a caller-owned
// status map, caching reads for a bounded window so repeated hydration of
// the same object within one reconcile doesn't repeatedly hit the API
// server.
type Hydrator struct {
	mapper *resourceMapper
	cache  *cache
	log    logr.Logger
}

// Option configures a Hydrator.
type Option func(*Hydrator)

// WithTTL overrides the default 30s cache TTL.
func WithTTL(ttl time.Duration) Option {
	return func(h *Hydrator) { h.cache = newCache(ttl) }
}

// New returns a Hydrator that reads through dyn, resolving Kind-to-resource
// mappings through disc.
func New(dyn dynamic.Interface, disc discovery.DiscoveryInterface, log logr.Logger, opts ...Option) *Hydrator {
	h := &Hydrator{
		mapper: newResourceMapper(disc, dyn),
		cache:  newCache(DefaultTTL),
		log:    log.WithName("hydrate"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hydrate copies every key of the live object's status into dst (the typed
// handle's status slot). If snapshot is non-nil it is used directly instead
// of issuing a read, the case where a caller (e.g. the deployment engine)
// just applied or polled the object and already holds its latest state.
// Otherwise a cached read is used if still fresh, falling back to the API.
//
// Hydration is best-effort: a failure copying one field is skipped and
// omitted from Fields, it never aborts the whole call. The only failures
// that produce Success=false are the object not existing, or the read
// itself failing.
func (h *Hydrator) Hydrate(ctx context.Context, dst map[string]interface{}, gvk schema.GroupVersionKind, namespace, name string, snapshot *unstructured.Unstructured) (Result, error) {
	key := cacheKey(gvk, namespace, name)

	obj := snapshot
	if obj == nil {
		if cached, ok := h.cache.get(key); ok {
			obj = cached
		} else {
			fetched, err := h.fetch(ctx, gvk, namespace, name)
			if err != nil {
				if apierrors.IsNotFound(err) {
					return Result{Success: false, Reason: ReasonNotFound}, nil
				}
				return Result{Success: false, Err: err}, fmt.Errorf("reading %s %s/%s: %w", gvk.Kind, namespace, name, err)
			}
			obj = fetched
			h.cache.set(key, obj)
		}
	} else {
		h.cache.set(key, obj)
	}

	status, found, err := unstructured.NestedMap(obj.Object, "status")
	if err != nil || !found {
		return Result{Success: true}, nil
	}

	var fields []string
	for field, value := range status {
		if err := unstructured.SetNestedField(dst, value, field); err != nil {
			h.log.V(1).Info("skipping field during hydration", "field", field, "error", err)
			continue
		}
		fields = append(fields, field)
	}

	return Result{Success: true, Fields: fields}, nil
}

func (h *Hydrator) fetch(ctx context.Context, gvk schema.GroupVersionKind, namespace, name string) (*unstructured.Unstructured, error) {
	ri, err := h.mapper.resourceFor(gvk, namespace)
	if err != nil {
		return nil, err
	}
	return ri.Get(ctx, name, metav1.GetOptions{})
}

// Seed populates the cache with a known-fresh object, so a subsequent
// Hydrate call for the same object within the TTL window skips the read
// entirely. Callers typically seed right after a successful deploy.
func (h *Hydrator) Seed(gvk schema.GroupVersionKind, namespace, name string, obj *unstructured.Unstructured) {
	h.cache.set(cacheKey(gvk, namespace, name), obj)
}

// Invalidate evicts any cached entry for the given object, forcing the next
// Hydrate call to read through to the API. Callers invalidate once a
// resource has finished redeploying, since its status may have changed.
func (h *Hydrator) Invalidate(gvk schema.GroupVersionKind, namespace, name string) {
	h.cache.invalidate(cacheKey(gvk, namespace, name))
}

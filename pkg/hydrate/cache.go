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
	"fmt"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// DefaultTTL is how long a cached read is trusted before the hydrator reads
// the object again.
const DefaultTTL = 30 * time.Second

// cacheKey identifies one object's cache slot: apiVersion:kind:namespace:name.
func cacheKey(gvk schema.GroupVersionKind, namespace, name string) string {
	return fmt.Sprintf("%s:%s:%s:%s", gvk.GroupVersion().String(), gvk.Kind, namespace, name)
}

type cacheEntry struct {
	obj       *unstructured.Unstructured
	expiresAt time.Time
}

// cache is a process-wide, TTL-expiring cache of the last observed state of
// each object the hydrator has read or been handed. Entries are immutable
// once written; a stale entry is simply evicted and re-fetched, never
// mutated in place.
type cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func newCache(ttl time.Duration) *cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &cache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

func (c *cache) get(key string) (*unstructured.Unstructured, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.obj, true
}

func (c *cache) set(key string, obj *unstructured.Unstructured) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{obj: obj, expiresAt: time.Now().Add(c.ttl)}
}

func (c *cache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

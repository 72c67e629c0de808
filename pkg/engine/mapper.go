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
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/restmapper"
)

// resourceMapper resolves a resource's GroupVersionKind to the
// GroupVersionResource and scope the dynamic client needs, backed by a
// memory-cached discovery client so repeated lookups for the same Kind
// within one deploy don't re-hit the API server's discovery endpoint.
type resourceMapper struct {
	dynamicClient dynamic.Interface
	restMapper    meta.RESTMapper
}

func newResourceMapper(disc discovery.DiscoveryInterface, dyn dynamic.Interface) *resourceMapper {
	cached := memory.NewMemCacheClient(disc)
	return &resourceMapper{
		dynamicClient: dyn,
		restMapper:    restmapper.NewDeferredDiscoveryRESTMapper(cached),
	}
}

// resourceFor returns the dynamic.ResourceInterface for obj's GVK, namespaced
// to obj's own namespace when the resource is namespace-scoped.
func (m *resourceMapper) resourceFor(obj *unstructured.Unstructured) (dynamic.ResourceInterface, error) {
	gvk := obj.GroupVersionKind()
	mapping, err := m.restMapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return nil, err
	}

	if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
		return m.dynamicClient.Resource(mapping.Resource).Namespace(obj.GetNamespace()), nil
	}
	return m.dynamicClient.Resource(mapping.Resource), nil
}

// gvrFor resolves gvk to its GroupVersionResource only, without building a
// resource client.
func (m *resourceMapper) gvrFor(gvk schema.GroupVersionKind) (schema.GroupVersionResource, error) {
	mapping, err := m.restMapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return schema.GroupVersionResource{}, err
	}
	return mapping.Resource, nil
}

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
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/restmapper"
)

// resourceMapper resolves a GroupVersionKind to the dynamic.ResourceInterface
// that deletes it. Kept local to this package rather than shared with
// pkg/engine or pkg/hydrate so the Rollback Manager can run on its own,
// pointed at a Deployment State recovered from storage without any other
// component in scope.
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

func (m *resourceMapper) resourceFor(gvk schema.GroupVersionKind, namespace string) (dynamic.ResourceInterface, error) {
	mapping, err := m.restMapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return nil, err
	}
	if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
		return m.dynamicClient.Resource(mapping.Resource).Namespace(namespace), nil
	}
	return m.dynamicClient.Resource(mapping.Resource), nil
}

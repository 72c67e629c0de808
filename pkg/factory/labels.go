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
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/yehudacohen/typekro-go/pkg/engine"
	"github.com/yehudacohen/typekro-go/pkg/metadata"
)

// stampInstanceLabels returns a copy of resources with typekro.dev
// bookkeeping labels (owned, graph name, instance name/namespace, engine
// version) applied to each template, so a Direct-strategy deploy's
// resources stay identifiable by label selector (e.g. `kubectl get all -l
// typekro.dev/instance-name=...`) the same way kro.run's own dynamic
// controller labels its managed objects — even though a Direct deploy has
// no ResourceGraphDefinition controller to do the stamping itself.
//
// typekro.dev is a distinct domain from kro.run (pkg/metadata's
// LabelKROPrefix): those labels belong to objects the kro.run control
// plane manages (the RGD and the instance CR, see pkg/kro.deployInstance),
// which a Direct deploy never creates.
//
// A Direct deploy has no instance custom resource, so there is no UID to
// put in an owner reference; resources are instead addressed by
// GVK/namespace/name through pkg/rollback, see Deploy/deployDirect.
func stampInstanceLabels(resources []engine.Resource, graphName, namespace, name string) []engine.Resource {
	labeler := metadata.NewDirectInstanceLabeler(graphName, namespace, name)

	stamped := make([]engine.Resource, len(resources))
	for i, r := range resources {
		obj := &unstructured.Unstructured{Object: unstructured.DeepCopyJSON(r.Template)}
		labeler.ApplyLabels(obj)
		stamped[i] = r
		stamped[i].Template = obj.Object
	}
	return stamped
}

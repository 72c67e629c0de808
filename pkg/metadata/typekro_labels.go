// Copyright 2025 The Kube Resource Orchestrator Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metadata

import "sigs.k8s.io/release-utils/version"

// TypeKroDomainName is the label/annotation domain the Direct engine uses
// for its own resource bookkeeping — distinct from LabelKROPrefix, which
// belongs to objects the kro.run control plane itself manages (the
// ResourceGraphDefinition and the instance custom resource). A
// Direct-strategy deploy has neither, so its applied resources are tagged
// under this domain instead of kro.run's.
const TypeKroDomainName = "typekro.dev"

const TypeKroLabelPrefix = TypeKroDomainName + "/"

const (
	TypeKroOwnedLabel             = TypeKroLabelPrefix + "owned"
	TypeKroEngineVersionLabel     = TypeKroLabelPrefix + "engine-version"
	TypeKroInstanceLabel          = TypeKroLabelPrefix + "instance-name"
	TypeKroInstanceNamespaceLabel = TypeKroLabelPrefix + "instance-namespace"
	TypeKroGraphNameLabel         = TypeKroLabelPrefix + "graph-name"
)

// NewDirectInstanceLabeler returns the label set the Direct engine stamps
// onto every resource it applies on an instance's behalf, following the
// same Labeler shape NewInstanceLabeler uses for kro.run-managed resources.
func NewDirectInstanceLabeler(graphName, namespace, name string) GenericLabeler {
	return map[string]string{
		TypeKroOwnedLabel:             "true",
		TypeKroEngineVersionLabel:     safeVersion(version.GetVersionInfo().GitVersion),
		TypeKroGraphNameLabel:         graphName,
		TypeKroInstanceLabel:          name,
		TypeKroInstanceNamespaceLabel: namespace,
	}
}

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

package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	kyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"

	"github.com/yehudacohen/typekro-go/api/v1alpha1"
	"github.com/yehudacohen/typekro-go/pkg/engine"
)

// readManifests splits a multi-document YAML (or JSON) file into its
// constituent objects, the same decode-until-EOF idiom a plain `kubectl
// apply -f` style tool uses for arbitrary manifest bundles.
func readManifests(path string) ([]*unstructured.Unstructured, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	decoder := kyaml.NewYAMLOrJSONDecoder(bytes.NewReader(data), 4096)
	var objs []*unstructured.Unstructured
	for {
		raw := map[string]interface{}{}
		if err := decoder.Decode(&raw); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		if len(raw) == 0 {
			continue
		}
		objs = append(objs, &unstructured.Unstructured{Object: raw})
	}
	return objs, nil
}

// readSpec loads a single YAML/JSON document as an instance spec.
func readSpec(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	spec := map[string]interface{}{}
	if err := yaml.UnmarshalStrict(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return spec, nil
}

// graphFile is the on-disk shape of a Direct-strategy resource graph: a
// named, kinded bundle of engine resource templates, mirroring the
// resources block of a ResourceGraphDefinition without requiring one.
type graphFile struct {
	Name      string               `json:"name"`
	Kind      string               `json:"kind"`
	Resources []*v1alpha1.Resource `json:"resources"`
}

func readGraphFile(path string) (*graphFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	gf := &graphFile{}
	if err := yaml.UnmarshalStrict(data, gf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if gf.Name == "" {
		return nil, fmt.Errorf("%s: name is required", path)
	}
	if gf.Kind == "" {
		return nil, fmt.Errorf("%s: kind is required", path)
	}
	return gf, nil
}

// toEngineResources converts the RawExtension templates a graphFile carries
// into the plain map[string]interface{} templates the engine operates on.
func toEngineResources(resources []*v1alpha1.Resource) ([]engine.Resource, error) {
	out := make([]engine.Resource, 0, len(resources))
	for _, r := range resources {
		if r.ID == "" {
			return nil, fmt.Errorf("resource is missing an id")
		}
		template := map[string]interface{}{}
		if len(r.Template.Raw) > 0 {
			if err := yaml.UnmarshalStrict(r.Template.Raw, &template); err != nil {
				return nil, fmt.Errorf("resource %q: parsing template: %w", r.ID, err)
			}
		}
		out = append(out, engine.Resource{
			ID:          r.ID,
			Template:    template,
			ReadyWhen:   r.ReadyWhen,
			IncludeWhen: r.IncludeWhen,
		})
	}
	return out, nil
}

func readRGD(path string) (*v1alpha1.ResourceGraphDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	rgd := &v1alpha1.ResourceGraphDefinition{}
	if err := yaml.UnmarshalStrict(data, rgd); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rgd, nil
}

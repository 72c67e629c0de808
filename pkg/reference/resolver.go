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

// Package reference resolves the fields in a resource template that contain
// "${resourceID.path}" expressions, substituting each one with the literal
// value found at that path in another resource's already-applied state (or
// the owning instance's schema), evaluated through a narrow literal-substitution
// subset of CEL.
package reference

import (
	"fmt"
	"strings"

	"github.com/yehudacohen/typekro-go/pkg/graph/variable"
)

// SchemaResourceID is the synthetic resource ID under which the owning
// instance's spec/status is made available to expressions, e.g.
// "${schema.spec.replicas}".
const SchemaResourceID = "schema"

// Resolver resolves the ${...} expressions found in a single resource's
// template in place, given the already-resolved data of every resource it
// may depend on (plus the instance schema, under SchemaResourceID).
type Resolver struct {
	resourceID string
	data       map[string]map[string]interface{}
}

// NewResolver returns a Resolver for resourceID. data holds the current
// resolved view of every other resource (and the instance schema) the
// template may reference.
func NewResolver(resourceID string, data map[string]map[string]interface{}) *Resolver {
	return &Resolver{resourceID: resourceID, data: data}
}

// ResolutionSummary reports what Resolve did: the set of resource IDs the
// template turned out to depend on, and any fields that fell back to their
// literal (unevaluated) expression text because a reference could not yet
// be resolved.
type ResolutionSummary struct {
	Dependencies []string
	Resolved     int
	Unresolved   []FieldError
}

// FieldError pairs a field path with the error encountered resolving it.
type FieldError struct {
	Path string
	Err  error
}

// Resolve mutates object in place, substituting every FieldDescriptor's
// expressions with their resolved values. A field whose expression cannot
// be evaluated (a dependency not yet in r.data, or a CEL evaluation
// failure) is left holding its literal, substituted-but-failed expression
// text, and recorded in ResolutionSummary.Unresolved — resolution never
// aborts a whole resource over one lagging field.
func (r *Resolver) Resolve(object map[string]interface{}, fields []variable.FieldDescriptor) (ResolutionSummary, error) {
	var summary ResolutionSummary
	depSet := map[string]struct{}{}

	for _, f := range fields {
		for _, exprBody := range f.Expressions {
			for _, ref := range ExtractReferences(exprBody) {
				if ref.ResourceID == SchemaResourceID {
					continue
				}
				if ref.ResourceID == r.resourceID {
					return summary, &CyclicInputError{ResourceID: r.resourceID, Path: f.Path}
				}
				depSet[ref.ResourceID] = struct{}{}
			}
		}

		if err := r.resolveField(object, f, &summary); err != nil {
			return summary, err
		}
	}

	for dep := range depSet {
		summary.Dependencies = append(summary.Dependencies, dep)
	}
	return summary, nil
}

func (r *Resolver) resolveField(object map[string]interface{}, f variable.FieldDescriptor, summary *ResolutionSummary) error {
	if len(f.Expressions) == 0 {
		return nil
	}

	if f.StandaloneExpression {
		val, err := EvaluateExpr(f.Expressions[0], r.lookup)
		if err != nil {
			summary.Unresolved = append(summary.Unresolved, FieldError{Path: f.Path, Err: err})
			return setValueAtPath(object, f.Path, literalExpressionText(f.Expressions[0]))
		}
		summary.Resolved++
		return setValueAtPath(object, f.Path, val)
	}

	raw, found, err := getValueAtPath(object, f.Path)
	if err != nil {
		return fmt.Errorf("resource %q: %w", r.resourceID, err)
	}
	str, ok := raw.(string)
	if !found || !ok {
		return fmt.Errorf("resource %q: field %q expected a string template, got %T", r.resourceID, f.Path, raw)
	}

	result := str
	for _, exprBody := range f.Expressions {
		token := expressionToken(exprBody)
		val, err := EvaluateExpr(exprBody, r.lookup)
		if err != nil {
			summary.Unresolved = append(summary.Unresolved, FieldError{Path: f.Path, Err: err})
			result = strings.Replace(result, token, literalExpressionText(exprBody), 1)
			continue
		}
		summary.Resolved++
		result = strings.Replace(result, token, fmt.Sprintf("%v", val), 1)
	}

	return setValueAtPath(object, f.Path, result)
}

func (r *Resolver) lookup(ref Reference) (interface{}, bool, error) {
	resourceData, ok := r.data[ref.ResourceID]
	if !ok {
		return nil, false, nil
	}
	if ref.Path == "" {
		return resourceData, true, nil
	}
	return getValueAtPath(resourceData, ref.Path)
}

// literalExpressionText is the fallback value substituted for an expression
// that can't be evaluated yet: the bare expression body, not the original
// "${...}" template, so a lenient-mode deploy's manifest stays valid for
// opaque downstream fields without leaking resolver syntax into it.
func literalExpressionText(exprBody string) string {
	return exprBody
}

// expressionToken is the literal "${...}" substring that appears in a
// resource template for exprBody, used to locate and replace it within a
// larger string field.
func expressionToken(exprBody string) string {
	return "${" + exprBody + "}"
}

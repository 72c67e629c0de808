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

package reference

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/yehudacohen/typekro-go/pkg/graph/fieldpath"
)

// Reference is one "${resourceID.field.path}" token resolved out of an
// expression: ResourceID is the first path segment (either another
// resource's ID, or the literal string "schema" for the owning instance),
// Path is the remainder addressing a field within that resource's data.
type Reference struct {
	ResourceID string
	Path       string
}

// refToken matches bare identifier/dotted/bracket reference expressions
// that can appear inside a CEL expression body, e.g. "vpc.status.vpcID" or
// `schema.spec["my-field"]`.
var refToken = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*|\[[0-9]+\]|\["[^"]*"\])*`)

// celReservedWords are bare identifiers that refToken would otherwise catch
// but that are CEL syntax, not resource references.
var celReservedWords = map[string]bool{
	"true": true, "false": true, "null": true,
	"in": true, "size": true,
}

// ExtractReferences returns every resource reference found in a CEL
// expression body (the text between "${" and "}"). Bare identifiers with no
// further path segment (e.g. a lone "true") are not references.
func ExtractReferences(expr string) []Reference {
	var refs []Reference
	seen := map[string]bool{}

	for _, tok := range refToken.FindAllString(expr, -1) {
		if celReservedWords[tok] {
			continue
		}
		if !strings.ContainsAny(tok, ".[") {
			continue
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true

		segments, err := fieldpath.Parse(tok)
		if err != nil || len(segments) == 0 || segments[0].Name == "" {
			continue
		}
		refs = append(refs, Reference{
			ResourceID: segments[0].Name,
			Path:       fieldpath.Build(segments[1:]),
		})
	}

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].ResourceID != refs[j].ResourceID {
			return refs[i].ResourceID < refs[j].ResourceID
		}
		return refs[i].Path < refs[j].Path
	})
	return refs
}

// lookupFunc resolves a single Reference to its current literal value.
// found is false when the owning resource hasn't been resolved yet.
type lookupFunc func(ref Reference) (value interface{}, found bool, err error)

// EvaluateExpr evaluates a single "${...}" expression body. When the
// expression is exactly one reference with no surrounding operators, the
// referenced value is returned as-is (preserving its native type, including
// objects/slices). Otherwise every reference is resolved to a literal,
// declared as a CEL variable, and the expression is evaluated with cel-go —
// deliberately never a general CEL authoring surface, just arithmetic and
// string-concatenation over already-resolved literals.
func EvaluateExpr(expr string, lookup lookupFunc) (interface{}, error) {
	refs := ExtractReferences(expr)

	if len(refs) == 1 && strings.TrimSpace(expr) == formatRefToken(refs[0]) {
		v, found, err := lookup(refs[0])
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("reference %s.%s is not yet available", refs[0].ResourceID, refs[0].Path)
		}
		return v, nil
	}

	env, err := cel.NewEnv(celVariableDecls(refs)...)
	if err != nil {
		return nil, fmt.Errorf("building CEL environment: %w", err)
	}

	rewritten := expr
	vars := make(map[string]interface{}, len(refs))
	for i, ref := range refs {
		v, found, err := lookup(ref)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("reference %s.%s is not yet available", ref.ResourceID, ref.Path)
		}
		name := celVarName(i)
		rewritten = strings.ReplaceAll(rewritten, formatRefToken(ref), name)
		vars[name] = v
	}

	ast, issues := env.Compile(rewritten)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compiling expression %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("building CEL program for %q: %w", expr, err)
	}
	out, _, err := prg.Eval(vars)
	if err != nil {
		return nil, fmt.Errorf("evaluating expression %q: %w", expr, err)
	}
	return out.Value(), nil
}

func formatRefToken(ref Reference) string {
	if ref.Path == "" {
		return ref.ResourceID
	}
	if strings.HasPrefix(ref.Path, "[") {
		return ref.ResourceID + ref.Path
	}
	return ref.ResourceID + "." + ref.Path
}

func celVarName(i int) string {
	return fmt.Sprintf("ref%d", i)
}

func celVariableDecls(refs []Reference) []cel.EnvOption {
	decls := make([]cel.EnvOption, 0, len(refs))
	for i := range refs {
		decls = append(decls, cel.Variable(celVarName(i), cel.DynType))
	}
	return decls
}

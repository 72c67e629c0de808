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

	"github.com/yehudacohen/typekro-go/pkg/graph/variable"
)

// exprToken matches a single "${...}" template placeholder.
var exprToken = regexp.MustCompile(`\$\{([^}]*)\}`)

// ScanTemplate walks a resource template (the unstructured manifest a
// resource's `template` field decodes to) and returns a FieldDescriptor for
// every string leaf that contains one or more ${...} placeholders.
func ScanTemplate(obj map[string]interface{}) []variable.FieldDescriptor {
	var descriptors []variable.FieldDescriptor
	walkScan(obj, "", &descriptors)

	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Path < descriptors[j].Path
	})
	return descriptors
}

func walkScan(node interface{}, path string, out *[]variable.FieldDescriptor) {
	switch v := node.(type) {
	case map[string]interface{}:
		for k, child := range v {
			childPath := k
			if path != "" {
				childPath = fmt.Sprintf("%s.%s", path, k)
			}
			walkScan(child, childPath, out)
		}
	case []interface{}:
		for i, child := range v {
			walkScan(child, fmt.Sprintf("%s[%d]", path, i), out)
		}
	case string:
		matches := exprToken.FindAllStringSubmatch(v, -1)
		if len(matches) == 0 {
			return
		}
		expressions := make([]string, 0, len(matches))
		for _, m := range matches {
			expressions = append(expressions, m[1])
		}
		*out = append(*out, variable.FieldDescriptor{
			Path:                 path,
			Expressions:          expressions,
			StandaloneExpression: len(matches) == 1 && matches[0][0] == v,
		})
	}
}

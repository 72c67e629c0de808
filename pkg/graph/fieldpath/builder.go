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

package fieldpath

import (
	"strconv"
	"strings"
)

// Build renders a Segment slice back into dotted/bracketed path notation.
// It is the inverse of Parse for any path Parse can produce.
func Build(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		switch {
		case s.Index >= 0:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
		case isSimpleName(s.Name):
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s.Name)
		default:
			b.WriteString(`["`)
			b.WriteString(s.Name)
			b.WriteString(`"]`)
		}
	}
	return b.String()
}

// isSimpleName reports whether name can be written as a bare dotted segment
// (letters, digits, underscore only) or must be bracket-quoted instead.
func isSimpleName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

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

// Package fieldpath parses and builds dotted/bracketed field paths, the same
// notation used to address a field inside a map[string]interface{} resource
// (e.g. "spec.containers[0].env[0].value" or `spec["aws.eks.cluster"]`).
package fieldpath

import (
	"fmt"
	"strconv"
)

// Segment is one step of a field path: either a named map key (Index == -1)
// or an array index (Name == "").
type Segment struct {
	Name  string
	Index int
}

// NewNamedSegment returns a Segment addressing a map key.
func NewNamedSegment(name string) Segment {
	return Segment{Name: name, Index: -1}
}

// NewIndexedSegment returns a Segment addressing an array index.
func NewIndexedSegment(index int) Segment {
	return Segment{Name: "", Index: index}
}

// Parse splits a field path into its Segments. Bracket notation
// (`["quoted.name"]` or `[42]`) is required for names containing dots,
// slashes, or other characters that would otherwise be ambiguous with the
// dotted separator.
func Parse(path string) ([]Segment, error) {
	var segments []Segment

	i, n := 0, len(path)
	for i < n {
		switch path[i] {
		case '.':
			i++
		case '[':
			i++
			if i >= n {
				return nil, fmt.Errorf("unexpected end of path after '['")
			}
			if path[i] == '"' {
				i++
				start := i
				for i < n && path[i] != '"' {
					i++
				}
				if i >= n {
					return nil, fmt.Errorf("unterminated quote in path %q", path)
				}
				name := path[start:i]
				i++ // skip closing quote
				if i >= n || path[i] != ']' {
					return nil, fmt.Errorf("missing closing bracket in path %q", path)
				}
				i++ // skip ']'
				segments = append(segments, Segment{Name: name, Index: -1})
			} else {
				start := i
				for i < n && path[i] != ']' {
					i++
				}
				if i >= n {
					return nil, fmt.Errorf("missing closing bracket in path %q", path)
				}
				idx, err := strconv.Atoi(path[start:i])
				if err != nil {
					return nil, fmt.Errorf("invalid array index %q: %w", path[start:i], err)
				}
				i++ // skip ']'
				segments = append(segments, Segment{Name: "", Index: idx})
			}
		default:
			start := i
			for i < n && path[i] != '.' && path[i] != '[' {
				i++
			}
			segments = append(segments, Segment{Name: path[start:i], Index: -1})
		}
	}

	return segments, nil
}

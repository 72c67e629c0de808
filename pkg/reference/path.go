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

	"github.com/yehudacohen/typekro-go/pkg/graph/fieldpath"
)

// GetValueAtPath is the exported form of getValueAtPath, for callers
// outside this package (e.g. the engine's readyWhen evaluator) that need to
// address an arbitrary resolved-data tree with the same dotted/bracket
// notation used by resource templates.
func GetValueAtPath(root interface{}, path string) (value interface{}, found bool, err error) {
	return getValueAtPath(root, path)
}

// getValueAtPath walks root following path and returns whatever it finds
// there. found is false if any intermediate segment is missing.
func getValueAtPath(root interface{}, path string) (value interface{}, found bool, err error) {
	segments, err := fieldpath.Parse(path)
	if err != nil {
		return nil, false, fmt.Errorf("parsing path %q: %w", path, err)
	}

	current := root
	for _, seg := range segments {
		if seg.Index >= 0 {
			slice, ok := current.([]interface{})
			if !ok || seg.Index >= len(slice) {
				return nil, false, nil
			}
			current = slice[seg.Index]
			continue
		}

		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false, nil
		}
		next, ok := m[seg.Name]
		if !ok {
			return nil, false, nil
		}
		current = next
	}

	return current, true, nil
}

// setValueAtPath walks root following path, materializing intermediate
// maps/slices as needed, and sets the final segment to value.
func setValueAtPath(root map[string]interface{}, path string, value interface{}) error {
	segments, err := fieldpath.Parse(path)
	if err != nil {
		return fmt.Errorf("parsing path %q: %w", path, err)
	}
	if len(segments) == 0 {
		return fmt.Errorf("empty path")
	}

	_, err = setAtSegments(root, segments, value)
	return err
}

// setAtSegments sets value at the location described by segments within
// current, materializing missing maps/slices along the way, and returns the
// (possibly reallocated) container the caller should store back into its
// own parent — slices can be reallocated by append, maps never are.
func setAtSegments(current interface{}, segments []fieldpath.Segment, value interface{}) (interface{}, error) {
	seg := segments[0]
	rest := segments[1:]

	if seg.Index >= 0 {
		slice, ok := current.([]interface{})
		if !ok {
			if current != nil {
				return nil, fmt.Errorf("expected array at index %d, got %T", seg.Index, current)
			}
			slice = nil
		}
		for len(slice) <= seg.Index {
			slice = append(slice, nil)
		}

		if len(rest) == 0 {
			slice[seg.Index] = value
			return slice, nil
		}

		child := slice[seg.Index]
		if child == nil {
			child = nextContainer(rest[0])
		}
		newChild, err := setAtSegments(child, rest, value)
		if err != nil {
			return nil, err
		}
		slice[seg.Index] = newChild
		return slice, nil
	}

	m, ok := current.(map[string]interface{})
	if !ok {
		if current != nil {
			return nil, fmt.Errorf("expected object at field %q, got %T", seg.Name, current)
		}
		m = map[string]interface{}{}
	}

	if len(rest) == 0 {
		m[seg.Name] = value
		return m, nil
	}

	child, exists := m[seg.Name]
	if !exists || child == nil {
		child = nextContainer(rest[0])
	}
	newChild, err := setAtSegments(child, rest, value)
	if err != nil {
		return nil, err
	}
	m[seg.Name] = newChild
	return m, nil
}

// nextContainer returns the zero-value container (map or slice) appropriate
// for addressing the upcoming segment.
func nextContainer(next fieldpath.Segment) interface{} {
	if next.Index >= 0 {
		return []interface{}{}
	}
	return map[string]interface{}{}
}

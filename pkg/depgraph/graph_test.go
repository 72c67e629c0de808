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

package depgraph

import (
	"reflect"
	"testing"
)

func TestAddVertexDuplicate(t *testing.T) {
	g := New[string]()
	if err := g.AddVertex("a", 0); err != nil {
		t.Fatalf("AddVertex(a): %v", err)
	}
	if err := g.AddVertex("a", 1); err == nil {
		t.Error("expected error adding duplicate vertex, got nil")
	}
}

func TestAddDependenciesCycle(t *testing.T) {
	g := New[string]()
	for i, id := range []string{"a", "b", "c"} {
		if err := g.AddVertex(id, i); err != nil {
			t.Fatalf("AddVertex(%s): %v", id, err)
		}
	}
	if err := g.AddDependencies("b", []string{"a"}); err != nil {
		t.Fatalf("AddDependencies(b, a): %v", err)
	}
	if err := g.AddDependencies("c", []string{"b"}); err != nil {
		t.Fatalf("AddDependencies(c, b): %v", err)
	}
	if err := g.AddDependencies("a", []string{"c"}); err == nil {
		t.Error("expected cycle error, got nil")
	} else if AsCycleError[string](err) == nil {
		t.Errorf("expected CycleError, got %T: %v", err, err)
	}
	// The rejected edge must not have been applied.
	if _, ok := g.Vertices["a"].DependsOn["c"]; ok {
		t.Error("cyclic edge should have been rolled back")
	}
}

func TestAddDependenciesSelfReference(t *testing.T) {
	g := New[string]()
	if err := g.AddVertex("a", 0); err != nil {
		t.Fatalf("AddVertex(a): %v", err)
	}
	if err := g.AddDependencies("a", []string{"a"}); err == nil {
		t.Error("expected error for self reference, got nil")
	}
}

func TestLevelsLinearChain(t *testing.T) {
	g := New[string]()
	for i, id := range []string{"a", "b", "c"} {
		if err := g.AddVertex(id, i); err != nil {
			t.Fatalf("AddVertex(%s): %v", id, err)
		}
	}
	if err := g.AddDependencies("b", []string{"a"}); err != nil {
		t.Fatalf("AddDependencies(b, a): %v", err)
	}
	if err := g.AddDependencies("c", []string{"b"}); err != nil {
		t.Fatalf("AddDependencies(c, b): %v", err)
	}

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("Levels: %v", err)
	}
	want := [][]string{{"a"}, {"b"}, {"c"}}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("Levels() = %v, want %v", levels, want)
	}
}

func TestLevelsFanOut(t *testing.T) {
	g := New[string]()
	for i, id := range []string{"root", "leaf1", "leaf2", "merge"} {
		if err := g.AddVertex(id, i); err != nil {
			t.Fatalf("AddVertex(%s): %v", id, err)
		}
	}
	if err := g.AddDependencies("leaf1", []string{"root"}); err != nil {
		t.Fatalf("AddDependencies(leaf1, root): %v", err)
	}
	if err := g.AddDependencies("leaf2", []string{"root"}); err != nil {
		t.Fatalf("AddDependencies(leaf2, root): %v", err)
	}
	if err := g.AddDependencies("merge", []string{"leaf1", "leaf2"}); err != nil {
		t.Fatalf("AddDependencies(merge, leaf1, leaf2): %v", err)
	}

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("Levels: %v", err)
	}
	want := [][]string{{"root"}, {"leaf1", "leaf2"}, {"merge"}}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("Levels() = %v, want %v", levels, want)
	}
}

func TestReverseOrder(t *testing.T) {
	g := New[string]()
	for i, id := range []string{"a", "b", "c"} {
		if err := g.AddVertex(id, i); err != nil {
			t.Fatalf("AddVertex(%s): %v", id, err)
		}
	}
	if err := g.AddDependencies("b", []string{"a"}); err != nil {
		t.Fatalf("AddDependencies(b, a): %v", err)
	}
	if err := g.AddDependencies("c", []string{"b"}); err != nil {
		t.Fatalf("AddDependencies(c, b): %v", err)
	}

	order, err := g.ReverseOrder()
	if err != nil {
		t.Fatalf("ReverseOrder: %v", err)
	}
	want := []string{"c", "b", "a"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("ReverseOrder() = %v, want %v", order, want)
	}
}

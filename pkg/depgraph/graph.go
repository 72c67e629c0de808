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

// Package depgraph builds and orders the dependency graph between the
// resources in a resource graph: a directed acyclic graph keyed by resource
// ID, used to decide apply order (forward topological order, batched into
// parallel-apply levels) and delete order (reverse of apply order).
package depgraph

import (
	"cmp"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Vertex is one resource ID in the graph and the IDs it depends on.
type Vertex[T cmp.Ordered] struct {
	ID        T
	Order     int
	DependsOn map[T]struct{}
}

// Graph is a directed acyclic graph of resource IDs.
type Graph[T cmp.Ordered] struct {
	Vertices map[T]*Vertex[T]
}

// New returns an empty Graph.
func New[T cmp.Ordered]() *Graph[T] {
	return &Graph[T]{Vertices: make(map[T]*Vertex[T])}
}

// AddVertex registers id in the graph. order preserves the caller's
// original ordering when topologically-equal vertices are otherwise tied.
func (g *Graph[T]) AddVertex(id T, order int) error {
	if _, exists := g.Vertices[id]; exists {
		return fmt.Errorf("node %v already exists", id)
	}
	g.Vertices[id] = &Vertex[T]{
		ID:        id,
		Order:     order,
		DependsOn: make(map[T]struct{}),
	}
	return nil
}

// CycleError reports a dependency cycle found among the named vertices.
type CycleError[T cmp.Ordered] struct {
	Cycle []T
}

func (e *CycleError[T]) Error() string {
	var b strings.Builder
	for i, s := range e.Cycle {
		fmt.Fprintf(&b, "%v", s)
		if i < len(e.Cycle)-1 {
			b.WriteString(" -> ")
		}
	}
	return fmt.Sprintf("dependency graph contains a cycle: %s", b.String())
}

// AsCycleError returns the (possibly wrapped) CycleError, or nil.
func AsCycleError[T cmp.Ordered](err error) *CycleError[T] {
	cycleErr := &CycleError[T]{}
	if errors.As(err, &cycleErr) {
		return cycleErr
	}
	return nil
}

// AddDependencies records that "from" depends on every vertex in
// dependencies: each dependency must be applied, and ready, before "from".
// Adding an edge that would introduce a cycle is rejected and left
// unapplied.
func (g *Graph[T]) AddDependencies(from T, dependencies []T) error {
	fromNode, ok := g.Vertices[from]
	if !ok {
		return fmt.Errorf("node %v does not exist", from)
	}

	for _, dep := range dependencies {
		if _, ok := g.Vertices[dep]; !ok {
			return fmt.Errorf("node %v does not exist", dep)
		}
		if from == dep {
			return fmt.Errorf("self references are not allowed: %v", from)
		}
		fromNode.DependsOn[dep] = struct{}{}
	}

	if hasCycle, cycle := g.hasCycle(); hasCycle {
		for _, dep := range dependencies {
			delete(fromNode.DependsOn, dep)
		}
		return &CycleError[T]{Cycle: cycle}
	}

	return nil
}

// TopologicalSort returns a flat order respecting dependencies, preserving
// insertion order among vertices that are otherwise unconstrained relative
// to each other.
func (g *Graph[T]) TopologicalSort() ([]T, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	var order []T
	for _, level := range levels {
		order = append(order, level...)
	}
	return order, nil
}

// Levels groups vertices into successive "ready frontiers": level 0 holds
// every vertex with no dependencies, level 1 every vertex whose dependencies
// are all in level 0, and so on. Everything within a level can be applied
// concurrently; levels themselves must be applied in order. Within a level,
// vertices are ordered by their original insertion Order.
func (g *Graph[T]) Levels() ([][]T, error) {
	visited := make(map[T]bool)

	vertices := make([]*Vertex[T], 0, len(g.Vertices))
	for _, v := range g.Vertices {
		vertices = append(vertices, v)
	}
	sort.Slice(vertices, func(i, j int) bool {
		return vertices[i].Order < vertices[j].Order
	})

	var levels [][]T
	for len(visited) < len(vertices) {
		var frontier []T
		for _, v := range vertices {
			if visited[v.ID] {
				continue
			}
			ready := true
			for dep := range v.DependsOn {
				if !visited[dep] {
					ready = false
					break
				}
			}
			if ready {
				frontier = append(frontier, v.ID)
			}
		}

		if len(frontier) == 0 {
			hasCycle, cycle := g.hasCycle()
			if !hasCycle {
				return nil, &CycleError[T]{}
			}
			return nil, &CycleError[T]{Cycle: cycle}
		}

		for _, id := range frontier {
			visited[id] = true
		}
		levels = append(levels, frontier)
	}

	return levels, nil
}

// ReverseOrder returns TopologicalSort's order reversed in place: the order
// a rollback or delete pass should visit resources in, so that a resource is
// always removed before anything it depends on.
func (g *Graph[T]) ReverseOrder() ([]T, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}
	reversed := make([]T, len(order))
	for i, id := range order {
		reversed[len(order)-1-i] = id
	}
	return reversed, nil
}

func (g *Graph[T]) hasCycle() (bool, []T) {
	visited := make(map[T]bool)
	recStack := make(map[T]bool)
	var path []T

	var dfs func(T) bool
	dfs = func(node T) bool {
		visited[node] = true
		recStack[node] = true
		path = append(path, node)

		for dep := range g.Vertices[node].DependsOn {
			if !visited[dep] {
				if dfs(dep) {
					return true
				}
			} else if recStack[dep] {
				path = append(path, dep)
				return true
			}
		}

		recStack[node] = false
		path = path[:len(path)-1]
		return false
	}

	for id := range g.Vertices {
		if !visited[id] {
			path = nil
			if dfs(id) {
				start := 0
				for i, v := range path[:len(path)-1] {
					if v == path[len(path)-1] {
						start = i
						break
					}
				}
				return true, path[start:]
			}
		}
	}

	return false, nil
}

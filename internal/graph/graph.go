package graph

import (
	"reflect"
)

// DependencyGraph records which bound types each binding depends on.
// It provides cycle detection and topological sorting.
type DependencyGraph struct {
	edges map[reflect.Type][]reflect.Type
	order []reflect.Type // insertion order, for deterministic traversal
}

// New creates an empty dependency graph
func New() *DependencyGraph {
	return &DependencyGraph{
		edges: make(map[reflect.Type][]reflect.Type),
	}
}

// Add registers t with its dependencies, replacing any earlier edges for t.
// Dependencies that are not yet nodes are created as leaves.
func (g *DependencyGraph) Add(t reflect.Type, dependencies []reflect.Type) {
	g.ensure(t)
	g.edges[t] = append([]reflect.Type(nil), dependencies...)
	for _, d := range dependencies {
		g.ensure(d)
	}
}

func (g *DependencyGraph) ensure(t reflect.Type) {
	if _, ok := g.edges[t]; !ok {
		g.edges[t] = nil
		g.order = append(g.order, t)
	}
}

// DetectCycles returns a CircularDependencyError for the first cycle found.
func (g *DependencyGraph) DetectCycles() error {
	_, err := g.TopologicalSort()
	return err
}

// TopologicalSort orders the nodes so that every node follows all of its
// dependencies. Ties are broken by insertion order.
func (g *DependencyGraph) TopologicalSort() ([]reflect.Type, error) {
	const (
		unvisited = iota
		visiting
		visited
	)

	state := make(map[reflect.Type]int, len(g.edges))
	result := make([]reflect.Type, 0, len(g.edges))
	var stack []reflect.Type

	var visit func(t reflect.Type) error
	visit = func(t reflect.Type) error {
		switch state[t] {
		case visited:
			return nil
		case visiting:
			return CircularDependencyError{Node: t, Path: CyclePath(stack, t)}
		}

		state[t] = visiting
		stack = append(stack, t)

		for _, dep := range g.edges[t] {
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		state[t] = visited
		result = append(result, t)
		return nil
	}

	for _, t := range g.order {
		if err := visit(t); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// CyclePath slices a resolution stack from the first occurrence of t and
// closes the loop with t.
func CyclePath(stack []reflect.Type, t reflect.Type) []reflect.Type {
	for i, s := range stack {
		if s == t {
			path := make([]reflect.Type, 0, len(stack)-i+1)
			path = append(path, stack[i:]...)
			return append(path, t)
		}
	}
	return []reflect.Type{t, t}
}

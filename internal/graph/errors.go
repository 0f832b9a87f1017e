package graph

import (
	"fmt"
	"reflect"
	"strings"
)

// CircularDependencyError represents a circular dependency between bindings.
// Path lists the cycle in resolution order, starting and ending at Node.
type CircularDependencyError struct {
	Node reflect.Type
	Path []reflect.Type
}

func (e CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("circular dependency detected:\n\n")

	path := e.Path
	if len(path) == 0 {
		path = []reflect.Type{e.Node, e.Node}
	}

	for i, node := range path {
		if i > 0 {
			b.WriteString("      ↓\n")
		}
		if i == len(path)-1 {
			b.WriteString(fmt.Sprintf("    %v (cycle)\n", node))
		} else {
			b.WriteString(fmt.Sprintf("    %v\n", node))
		}
	}

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Bind an interface to break the dependency\n")
	b.WriteString("  • Restructure to remove the circular relationship\n")

	return b.String()
}

package dag

import (
	"strings"
	"sync"
)

// Graph is a collection of nodes and their dependencies.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by task name.
	nodes map[string]*node
}

// node is a single vertex. It is un-exported so callers work with names only.
type node struct {
	id string
	// deps holds the upstream nodes (predecessors).
	deps map[string]*node
	// dependents holds the downstream nodes (successors).
	dependents map[string]*node
}

// CycleError reports a dependency cycle. Path starts and ends on the same
// node.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "cycle detected: " + strings.Join(e.Path, " => ")
}

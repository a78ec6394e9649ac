package config

import (
	"sort"

	"github.com/gitcluster/gitcluster/internal/errors"
)

// NodeRef pairs a node with its name, for callers walking the dependency graph.
type NodeRef struct {
	Name string
	Node *Node
}

// checkAcyclic verifies the dependency graph has no cycles by repeatedly removing nodes whose
// dependencies have all been removed. If any node survives, the graph has at least one cycle and
// the error names every unremoved node. That set is a superset of the actual cycle: nodes that
// merely depend on a cycle cannot be removed either.
func (c *Cluster) checkAcyclic() error {
	pending := make(map[string]int, len(c.Nodes))
	dependents := make(map[string][]string, len(c.Nodes))

	for name, node := range c.Nodes {
		seen := make(map[string]bool, len(node.Depends))

		for _, dep := range node.Depends {
			if seen[dep] {
				continue
			}

			seen[dep] = true
			pending[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	queue := make([]string, 0, len(c.Nodes))

	for name := range c.Nodes {
		if pending[name] == 0 {
			queue = append(queue, name)
		}
	}

	removed := 0

	for len(queue) > 0 {
		name := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		removed++

		for _, dependent := range dependents[name] {
			pending[dependent]--
			if pending[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if removed == len(c.Nodes) {
		return nil
	}

	remaining := make([]string, 0, len(c.Nodes)-removed)

	for name := range c.Nodes {
		if pending[name] > 0 {
			remaining = append(remaining, name)
		}
	}

	sort.Strings(remaining)

	return errors.WithStackTrace(DependencyCycleError{Nodes: remaining})
}

// DependencyClosure returns the given node together with every node reachable through Depends
// edges, each exactly once. The result is in traversal order, not topological order: callers that
// deploy the closure treat each repository independently, so ordering does not matter.
func (c *Cluster) DependencyClosure(start string) ([]NodeRef, error) {
	if _, ok := c.Nodes[start]; !ok {
		return nil, errors.WithStackTrace(NodeNotFoundError{Name: start})
	}

	stack := []string{start}
	visited := map[string]bool{start: true}
	closure := make([]NodeRef, 0, len(c.Nodes))

	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := c.Nodes[name]

		closure = append(closure, NodeRef{Name: name, Node: node})

		for _, dep := range node.Depends {
			if visited[dep] {
				continue
			}

			visited[dep] = true
			stack = append(stack, dep)
		}
	}

	return closure, nil
}

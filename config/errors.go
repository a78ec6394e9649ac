package config

import (
	"fmt"
	"strings"
)

// ParseError is returned when the cluster definition is not valid TOML.
type ParseError struct {
	Underlying error
}

func (err ParseError) Error() string {
	return fmt.Sprintf("invalid cluster definition: %v", err.Underlying)
}

func (err ParseError) Unwrap() error {
	return err.Underlying
}

// UndefinedDependencyError is returned when a node depends on a name that is not defined in the
// cluster.
type UndefinedDependencyError struct {
	Node       string
	Dependency string
}

func (err UndefinedDependencyError) Error() string {
	return fmt.Sprintf("node %q depends on undefined node %q", err.Node, err.Dependency)
}

// DependencyCycleError is returned when the dependency graph contains a cycle. Nodes lists every
// node that could not be cleared, which includes the cycle members and anything depending on them.
type DependencyCycleError struct {
	Nodes []string
}

func (err DependencyCycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected among nodes: %s", strings.Join(err.Nodes, ", "))
}

// NodeNotFoundError is returned when a named node is not defined in the cluster.
type NodeNotFoundError struct {
	Name string
}

func (err NodeNotFoundError) Error() string {
	return fmt.Sprintf("node %q is not defined in the cluster", err.Name)
}

// NodeExistsError is returned when adding a node whose name is already taken.
type NodeExistsError struct {
	Name string
}

func (err NodeExistsError) Error() string {
	return fmt.Sprintf("node %q already exists in the cluster", err.Name)
}

// MissingURLError is returned when a node definition has no url entry.
type MissingURLError struct {
	Node string
}

func (err MissingURLError) Error() string {
	return fmt.Sprintf("node %q has no url", err.Node)
}

// ReservedNameError is returned when a node tries to use a name reserved for the root repository.
type ReservedNameError struct {
	Name string
}

func (err ReservedNameError) Error() string {
	return fmt.Sprintf("%q is reserved for the root repository and cannot name a node", err.Name)
}

package repository

import (
	"fmt"
)

// FileNotFoundError is returned when a path does not exist in a repository's head tree.
type FileNotFoundError struct {
	Name string
	Path string
}

func (err FileNotFoundError) Error() string {
	return fmt.Sprintf("repository %q has no file %q in its head tree", err.Name, err.Path)
}

// NotBareAliasError is returned when a deployment action reaches a bare repository that has no
// alias directory to materialize onto.
type NotBareAliasError struct {
	Name string
}

func (err NotBareAliasError) Error() string {
	return fmt.Sprintf("repository %q is bare but has no alias directory", err.Name)
}

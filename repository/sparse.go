package repository

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gitcluster/gitcluster/internal/errors"
)

// SparseRuleSet owns the sparse-checkout rule file of one repository. Deployment never edits rules
// incrementally: each action overwrites the whole file with the content for that action, so the
// file is always in one of three known states.
type SparseRuleSet struct {
	path     string
	excludes []string
}

// NewSparseRuleSet builds the rule set for the given repository configuration. Bare repositories
// keep their rules at info/sparse-checkout inside the git directory; plain repositories use
// .git/info/sparse_checkout.
func NewSparseRuleSet(cfg Config) *SparseRuleSet {
	var path string

	if cfg.Kind == Normal {
		path = filepath.Join(cfg.Path, ".git", "info", "sparse_checkout")
	} else {
		path = filepath.Join(cfg.Path, "info", "sparse-checkout")
	}

	return &SparseRuleSet{path: path, excludes: cfg.Excludes}
}

// Path returns where the rule file lives on disk.
func (s *SparseRuleSet) Path() string {
	return s.path
}

// Patterns returns the exclude rules as glob patterns. A rule with a trailing slash names a
// directory and expands to match everything under it.
func (s *SparseRuleSet) Patterns() []string {
	patterns := make([]string, 0, len(s.excludes))

	for _, rule := range s.excludes {
		if strings.HasSuffix(rule, "/") {
			rule += "*"
		}

		patterns = append(patterns, rule)
	}

	return patterns
}

// Write overwrites the rule file with the content for the given action:
//
//	Deploy and UndeployExcludes: include everything, then negate each exclude rule.
//	DeployAll:                   include everything.
//	Undeploy:                    no rules, so a checkout materializes nothing.
func (s *SparseRuleSet) Write(action Action) error {
	var content string

	switch action {
	case ActionDeploy, ActionUndeployExcludes:
		var builder strings.Builder

		builder.WriteString("/*\n")

		for _, rule := range s.excludes {
			builder.WriteString("!")
			builder.WriteString(rule)
			builder.WriteString("\n")
		}

		content = builder.String()
	case ActionDeployAll:
		content = "/*"
	case ActionUndeploy:
		content = ""
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.WithStackTrace(err)
	}

	if err := os.WriteFile(s.path, []byte(content), 0644); err != nil {
		return errors.WithStackTrace(err)
	}

	return nil
}

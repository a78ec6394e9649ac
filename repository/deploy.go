package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gitcluster/gitcluster/internal/errors"
	"github.com/gitcluster/gitcluster/util"
)

// Action is a deployment state transition applied to a bare-alias repository.
type Action int

const (
	// ActionDeploy materializes everything except the exclude rules.
	ActionDeploy Action = iota

	// ActionDeployAll materializes everything, exclude rules included.
	ActionDeployAll

	// ActionUndeploy removes all materialized content from the alias directory.
	ActionUndeploy

	// ActionUndeployExcludes removes only the excluded content, leaving a plain deploy behind.
	ActionUndeployExcludes
)

func (a Action) String() string {
	switch a {
	case ActionDeploy:
		return "deploy"
	case ActionDeployAll:
		return "deploy all"
	case ActionUndeploy:
		return "undeploy"
	case ActionUndeployExcludes:
		return "undeploy excludes"
	default:
		return fmt.Sprintf("unknown action %d", int(a))
	}
}

// DeployState selects which notion of "deployed" a check uses.
type DeployState int

const (
	// WithoutExcluded asks whether everything a plain deploy materializes is present.
	WithoutExcluded DeployState = iota

	// WithExcluded asks whether everything, exclude rules included, is present.
	WithExcluded
)

// IsDeployed reports whether the repository's content is materialized in its alias directory. Only
// bare-alias repositories with at least one commit can be deployed; everything else reports false.
//
// The check enumerates the top-level entries of the head tree, subtracts exclude-matched names for
// WithoutExcluded, and requires each remaining name to exist under the alias directory. Content
// nested below the top level is not checked, so a rule touching only nested paths can make the
// answer wrong. Sparse rule files are still written correctly in that case; only the skip
// heuristic degrades.
func (r *Repository) IsDeployed(state DeployState) (bool, error) {
	if r.cfg.Kind != BareAlias || r.IsEmpty() {
		return false, nil
	}

	entries, err := r.TopLevelEntries()
	if err != nil {
		return false, err
	}

	if state == WithoutExcluded {
		excluded := util.MatchNames(r.cfg.Logger, r.rules.Patterns(), entries)
		entries = util.RemoveSublistFromList(entries, excluded)
	}

	for _, name := range entries {
		if _, err := os.Stat(filepath.Join(r.cfg.AliasDir, name)); err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}

			return false, errors.WithStackTrace(err)
		}
	}

	return true, nil
}

// Deploy applies the given action: write the sparse rule file for it, then let the git binary check
// the work tree out against the alias directory. Actions are idempotent, a repository already in
// the target state is skipped. Empty and plain repositories are skipped with a warning rather than
// failing, so batch operations keep going.
func (r *Repository) Deploy(action Action) error {
	logger := r.cfg.Logger

	if r.IsEmpty() {
		logger.Warnf("Repository %q has no commits, skipping %s", r.cfg.Name, action)
		return nil
	}

	switch r.cfg.Kind {
	case Normal:
		logger.Warnf("Repository %q is a plain clone, nothing to %s", r.cfg.Name, action)
		return nil
	case Bare:
		return errors.WithStackTrace(NotBareAliasError{Name: r.cfg.Name})
	}

	var state DeployState

	skipWhenDeployed := false

	switch action {
	case ActionDeploy:
		state, skipWhenDeployed = WithoutExcluded, true
	case ActionDeployAll:
		state, skipWhenDeployed = WithExcluded, true
	case ActionUndeploy:
		state = WithoutExcluded
	case ActionUndeployExcludes:
		state = WithExcluded
	}

	deployed, err := r.IsDeployed(state)
	if err != nil {
		return err
	}

	if deployed == skipWhenDeployed {
		logger.Debugf("Repository %q already in target state, skipping %s", r.cfg.Name, action)
		return nil
	}

	if err := r.rules.Write(action); err != nil {
		return err
	}

	if err := os.MkdirAll(r.cfg.AliasDir, 0755); err != nil {
		return errors.WithStackTrace(err)
	}

	if _, err := r.GitWithOutput("checkout"); err != nil {
		return err
	}

	logger.Infof("Applied %s to repository %q", action, r.cfg.Name)

	return nil
}

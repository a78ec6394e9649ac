// Package shell runs the git binary and prompts the user on the terminal.
package shell

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gitcluster/gitcluster/internal/errors"
)

// RunGitCommand runs git with the given arguments, wiring the current process's stdin, stdout, and
// stderr straight through. Used for command delegation, where git may be interactive (pagers,
// editors, credential prompts).
func RunGitCommand(logger *logrus.Entry, gitPath string, args ...string) error {
	logger.Debugf("Running interactive command: %s %s", gitPath, strings.Join(args, " "))

	cmd := exec.Command(gitPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.WithStackTrace(CommandError{Args: args, Underlying: err})
	}

	return nil
}

// RunGitCommandWithOutput runs git with the given arguments non-interactively and returns its
// combined output, each stream labeled, with a single trailing newline chomped. On a non-zero exit
// the output is carried inside the returned error so callers can surface what git said.
func RunGitCommandWithOutput(logger *logrus.Entry, gitPath string, args ...string) (string, error) {
	logger.Debugf("Running command: %s %s", gitPath, strings.Join(args, " "))

	var stdout, stderr bytes.Buffer

	cmd := exec.Command(gitPath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	output := func() string {
		return labelOutput(stdout.String(), stderr.String())
	}

	if err := cmd.Run(); err != nil {
		return output(), errors.WithStackTrace(CommandError{Args: args, Output: output(), Underlying: err})
	}

	return output(), nil
}

func labelOutput(stdout, stderr string) string {
	var parts []string

	if stdout = chompNewline(stdout); stdout != "" {
		parts = append(parts, "stdout: "+stdout)
	}

	if stderr = chompNewline(stderr); stderr != "" {
		parts = append(parts, "stderr: "+stderr)
	}

	return strings.Join(parts, "\n")
}

func chompNewline(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

// CommandError is returned when a delegated git command fails.
type CommandError struct {
	Args       []string
	Output     string
	Underlying error
}

func (err CommandError) Error() string {
	if err.Output != "" {
		return fmt.Sprintf("git %s failed: %v\n%s", strings.Join(err.Args, " "), err.Underlying, err.Output)
	}

	return fmt.Sprintf("git %s failed: %v", strings.Join(err.Args, " "), err.Underlying)
}

func (err CommandError) Unwrap() error {
	return err.Underlying
}

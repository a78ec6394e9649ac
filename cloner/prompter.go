package cloner

import (
	"fmt"

	"github.com/gitcluster/gitcluster/shell"
)

// CredentialPrompter supplies credentials when a remote rejects a transfer. Implementations are
// called from clone goroutines, so they must be safe for concurrent use.
type CredentialPrompter interface {
	// UsernamePassword prompts for both parts of a basic-auth credential.
	UsernamePassword(url string) (string, string, error)

	// Password prompts for the password of a username already embedded in the URL.
	Password(username, url string) (string, error)

	// SSHPassphrase prompts for the passphrase protecting the given private key.
	SSHPassphrase(keyPath string) (string, error)
}

// TerminalPrompter asks on the terminal, suspending the progress renderer for the duration of each
// prompt so bars and prompts do not fight over the screen.
type TerminalPrompter struct {
	renderer *ProgressRenderer
}

func NewTerminalPrompter(renderer *ProgressRenderer) *TerminalPrompter {
	return &TerminalPrompter{renderer: renderer}
}

func (p *TerminalPrompter) UsernamePassword(url string) (string, string, error) {
	var username, password string

	err := p.renderer.Suspend(func() error {
		var err error

		if username, err = shell.PromptUserForInput(fmt.Sprintf("Username for %s: ", url)); err != nil {
			return err
		}

		password, err = shell.PromptUserForPassword(fmt.Sprintf("Password for %s: ", url))

		return err
	})

	return username, password, err
}

func (p *TerminalPrompter) Password(username, url string) (string, error) {
	var password string

	err := p.renderer.Suspend(func() error {
		var err error
		password, err = shell.PromptUserForPassword(fmt.Sprintf("Password for %s@%s: ", username, url))

		return err
	})

	return password, err
}

func (p *TerminalPrompter) SSHPassphrase(keyPath string) (string, error) {
	var passphrase string

	err := p.renderer.Suspend(func() error {
		var err error
		passphrase, err = shell.PromptUserForPassword(fmt.Sprintf("Passphrase for %s: ", keyPath))

		return err
	})

	return passphrase, err
}

// DisabledPrompter refuses every prompt. Used in non-interactive mode, where a transfer needing
// credentials should fail instead of hanging on a prompt nobody will answer.
type DisabledPrompter struct{}

func (DisabledPrompter) UsernamePassword(string) (string, string, error) {
	return "", "", shell.ErrNonInteractive
}

func (DisabledPrompter) Password(string, string) (string, error) {
	return "", shell.ErrNonInteractive
}

func (DisabledPrompter) SSHPassphrase(string) (string, error) {
	return "", shell.ErrNonInteractive
}

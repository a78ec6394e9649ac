package shell

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/gitcluster/gitcluster/internal/errors"
)

// ErrNonInteractive is returned when a prompt is needed but prompting is disabled.
var ErrNonInteractive = errors.Errorf("prompting is disabled in non-interactive mode")

// PromptUserForInput prompts the user for text on the terminal and returns what they entered.
func PromptUserForInput(prompt string) (string, error) {
	fmt.Print(prompt)

	reader := bufio.NewReader(os.Stdin)

	text, err := reader.ReadString('\n')
	if err != nil {
		return "", errors.WithStackTrace(err)
	}

	return strings.TrimSpace(text), nil
}

// PromptUserForPassword prompts the user for a secret without echoing it back.
func PromptUserForPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	secret, err := term.ReadPassword(int(os.Stdin.Fd()))

	fmt.Println()

	if err != nil {
		return "", errors.WithStackTrace(err)
	}

	return string(secret), nil
}

// PromptUserForYesNo prompts the user for a yes/no response and returns true if they entered yes.
func PromptUserForYesNo(prompt string) (bool, error) {
	resp, err := PromptUserForInput(prompt + " (y/n) ")
	if err != nil {
		return false, err
	}

	switch strings.ToLower(resp) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

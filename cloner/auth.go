package cloner

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	homedir "github.com/mitchellh/go-homedir"

	"github.com/gitcluster/gitcluster/internal/errors"
)

// A transfer is retried with prompted credentials at most this many times before giving up.
const maxAuthAttempts = 3

func isAuthError(err error) bool {
	return errors.IsError(err, transport.ErrAuthenticationRequired) ||
		errors.IsError(err, transport.ErrAuthorizationFailed)
}

// promptAuthMethod builds an authentication method for the given URL by asking the prompter for
// whatever the transport needs: a key passphrase for ssh, a password when the URL already names a
// user, a full username and password otherwise.
func promptAuthMethod(url string, prompter CredentialPrompter) (transport.AuthMethod, error) {
	endpoint, err := transport.NewEndpoint(url)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}

	if endpoint.Protocol == "ssh" {
		keyPath, err := defaultSSHKeyPath()
		if err != nil {
			return nil, err
		}

		passphrase, err := prompter.SSHPassphrase(keyPath)
		if err != nil {
			return nil, err
		}

		user := endpoint.User
		if user == "" {
			user = "git"
		}

		auth, err := gitssh.NewPublicKeysFromFile(user, keyPath, passphrase)
		if err != nil {
			return nil, errors.WithStackTrace(err)
		}

		return auth, nil
	}

	if endpoint.User != "" {
		password, err := prompter.Password(endpoint.User, url)
		if err != nil {
			return nil, err
		}

		return &githttp.BasicAuth{Username: endpoint.User, Password: password}, nil
	}

	username, password, err := prompter.UsernamePassword(url)
	if err != nil {
		return nil, err
	}

	return &githttp.BasicAuth{Username: username, Password: password}, nil
}

func defaultSSHKeyPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.WithStackTrace(err)
	}

	candidates := []string{"id_ed25519", "id_rsa"}

	for _, name := range candidates {
		path := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return filepath.Join(home, ".ssh", candidates[len(candidates)-1]), nil
}

package inspection

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/temirov/git-statuses/internal/utils"
)

const (
	sshProtocolConstant                   = "ssh"
	defaultSSHUserConstant                = "git"
	sshAuthSocketEnvironmentNameConstant  = "SSH_AUTH_SOCK"
	gitFetchSubcommandConstant            = "fetch"
	remoteMissingMessageConstant          = "remote is not configured"
	remoteWithoutURLMessageConstant       = "remote has no URL"
	remoteLookupTemplateConstant          = "unable to resolve remote %s: %w"
	commandFetchExitTemplateConstant      = "git fetch %s exited with code %d: %s"
	commandExecutorMissingMessageConstant = "command executor not configured"
	authenticationFailureTemplateConstant = "unable to prepare authentication for %s: %w"
)

// ErrRemoteMissing indicates the requested remote does not exist in the repository configuration.
var ErrRemoteMissing = errors.New(remoteMissingMessageConstant)

// Fetcher updates remote-tracking references for an opened repository.
type Fetcher interface {
	Fetch(executionContext context.Context, repository *git.Repository, repositoryPath string, remoteName string) error
}

// AuthMethodResolver selects transport credentials for a remote URL.
type AuthMethodResolver func(remoteURL string) (transport.AuthMethod, error)

// NativeFetcher fetches through go-git's transports.
type NativeFetcher struct {
	authMethodResolver AuthMethodResolver
}

// NewNativeFetcher constructs a NativeFetcher. A nil resolver uses SSHAgentAuthMethodResolver.
func NewNativeFetcher(resolver AuthMethodResolver) *NativeFetcher {
	if resolver == nil {
		resolver = SSHAgentAuthMethodResolver
	}
	return &NativeFetcher{authMethodResolver: resolver}
}

// Fetch retrieves the remote's references. An already up-to-date remote is not an error.
func (fetcher *NativeFetcher) Fetch(executionContext context.Context, repository *git.Repository, repositoryPath string, remoteName string) error {
	remoteURL, remoteError := resolveRemoteURL(repository, remoteName)
	if remoteError != nil {
		return remoteError
	}

	authMethod, authError := fetcher.authMethodResolver(remoteURL)
	if authError != nil {
		return fmt.Errorf(authenticationFailureTemplateConstant, remoteURL, authError)
	}

	fetchError := repository.FetchContext(executionContext, &git.FetchOptions{
		RemoteName: remoteName,
		Auth:       authMethod,
	})
	if fetchError != nil && !errors.Is(fetchError, git.NoErrAlreadyUpToDate) {
		return fetchError
	}

	return nil
}

// SSHAgentAuthMethodResolver authenticates SSH remotes through the running ssh-agent.
// Other protocols, and SSH without an agent socket, fall back to transport defaults.
func SSHAgentAuthMethodResolver(remoteURL string) (transport.AuthMethod, error) {
	endpoint, endpointError := transport.NewEndpoint(remoteURL)
	if endpointError != nil {
		return nil, endpointError
	}

	if endpoint.Protocol != sshProtocolConstant {
		return nil, nil
	}

	if len(os.Getenv(sshAuthSocketEnvironmentNameConstant)) == 0 {
		return nil, nil
	}

	userName := endpoint.User
	if len(userName) == 0 {
		userName = defaultSSHUserConstant
	}

	return ssh.NewSSHAgentAuth(userName)
}

// CommandLineFetcher delegates fetching to the git executable so user credential helpers apply.
type CommandLineFetcher struct {
	commandExecutor *utils.CommandExecutor
}

// NewCommandLineFetcher constructs a CommandLineFetcher around the provided executor.
func NewCommandLineFetcher(commandExecutor *utils.CommandExecutor) *CommandLineFetcher {
	return &CommandLineFetcher{commandExecutor: commandExecutor}
}

// Fetch runs `git fetch <remote>` inside the repository directory.
func (fetcher *CommandLineFetcher) Fetch(executionContext context.Context, repository *git.Repository, repositoryPath string, remoteName string) error {
	if fetcher.commandExecutor == nil {
		return errors.New(commandExecutorMissingMessageConstant)
	}

	if _, remoteError := resolveRemoteURL(repository, remoteName); remoteError != nil {
		return remoteError
	}

	commandResult, executionError := fetcher.commandExecutor.ExecuteGitCommand(executionContext, utils.CommandOptions{
		Arguments:        []string{gitFetchSubcommandConstant, remoteName},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return executionError
	}

	if commandResult.ExitCode != 0 {
		return fmt.Errorf(commandFetchExitTemplateConstant, remoteName, commandResult.ExitCode, strings.TrimSpace(commandResult.StandardError))
	}

	return nil
}

func resolveRemoteURL(repository *git.Repository, remoteName string) (string, error) {
	remote, remoteError := repository.Remote(remoteName)
	if remoteError != nil {
		if errors.Is(remoteError, git.ErrRemoteNotFound) {
			return "", fmt.Errorf(remoteLookupTemplateConstant, remoteName, ErrRemoteMissing)
		}
		return "", fmt.Errorf(remoteLookupTemplateConstant, remoteName, remoteError)
	}

	remoteURLs := remote.Config().URLs
	if len(remoteURLs) == 0 {
		return "", fmt.Errorf(remoteLookupTemplateConstant, remoteName, errors.New(remoteWithoutURLMessageConstant))
	}

	return remoteURLs[0], nil
}

package inspection

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/temirov/git-statuses/internal/repos/shared"
)

const (
	unknownRepositoryNameConstant         = "unknown"
	openFailureTemplateConstant           = "unable to open repository %s: %w"
	fetchFailureTemplateConstant          = "unable to fetch %s for repository %s: %w"
	notRepositoryCandidateMessageConstant = "directory does not contain git metadata"
	repositoryInspectedMessageConstant    = "repository inspected"
	repositoryFetchedMessageConstant      = "repository fetched"
	logFieldRepositoryPathConstant        = "repository_path"
	logFieldBranchConstant                = "branch"
	logFieldAheadConstant                 = "ahead"
	logFieldBehindConstant                = "behind"
	logFieldCommitsConstant               = "commits"
	logFieldUntrackedConstant             = "untracked"
	logFieldChangedConstant               = "changed"
	logFieldStatusConstant                = "status"
	logFieldRemoteNameConstant            = "remote_name"
	rootPathSegmentConstant               = string(filepath.Separator)
	currentDirectoryPathSegmentConstant   = "."
)

// ErrNotRepositoryCandidate marks directories that carry no git metadata and are excluded silently.
var ErrNotRepositoryCandidate = errors.New(notRepositoryCandidateMessageConstant)

// InspectionOptions selects the optional inspection steps.
type InspectionOptions struct {
	FetchFirst    bool
	IncludeRemote bool
}

// InspectionError reports a candidate repository that could not be inspected.
type InspectionError struct {
	RepositoryName string
	RepositoryPath string
	Cause          error
}

// Error describes the failure including the underlying cause.
func (inspectionError *InspectionError) Error() string {
	return inspectionError.Cause.Error()
}

// Unwrap exposes the underlying cause.
func (inspectionError *InspectionError) Unwrap() error {
	return inspectionError.Cause
}

// Inspector derives RepositoryStatus snapshots for candidate directories.
type Inspector struct {
	fetcher Fetcher
	logger  *zap.Logger
}

// NewInspector constructs an Inspector. A nil fetcher defaults to NativeFetcher and a nil logger discards output.
func NewInspector(fetcher Fetcher, logger *zap.Logger) *Inspector {
	if fetcher == nil {
		fetcher = NewNativeFetcher(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inspector{fetcher: fetcher, logger: logger}
}

// Inspect returns the status of the repository rooted at repositoryPath.
// It returns ErrNotRepositoryCandidate when the directory has no .git entry and an *InspectionError
// when the repository cannot be opened or the requested fetch fails.
func (inspector *Inspector) Inspect(executionContext context.Context, repositoryPath string, options InspectionOptions) (shared.RepositoryStatus, error) {
	if !HasRepositoryMarker(repositoryPath) {
		return shared.RepositoryStatus{}, ErrNotRepositoryCandidate
	}

	repositoryName := RepositoryName(repositoryPath)

	repository, openError := git.PlainOpenWithOptions(repositoryPath, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if openError != nil {
		return shared.RepositoryStatus{}, &InspectionError{
			RepositoryName: repositoryName,
			RepositoryPath: repositoryPath,
			Cause:          fmt.Errorf(openFailureTemplateConstant, repositoryPath, openError),
		}
	}

	if options.FetchFirst {
		fetchError := inspector.fetcher.Fetch(executionContext, repository, repositoryPath, shared.OriginRemoteNameConstant)
		if fetchError != nil {
			return shared.RepositoryStatus{}, &InspectionError{
				RepositoryName: repositoryName,
				RepositoryPath: repositoryPath,
				Cause:          fmt.Errorf(fetchFailureTemplateConstant, shared.OriginRemoteNameConstant, repositoryPath, fetchError),
			}
		}
		inspector.logger.Debug(
			repositoryFetchedMessageConstant,
			zap.String(logFieldRepositoryPathConstant, repositoryPath),
			zap.String(logFieldRemoteNameConstant, shared.OriginRemoteNameConstant),
		)
	}

	status := DeriveRepositoryStatus(repository, options.IncludeRemote)
	status.Name = repositoryName
	status.Path = repositoryPath

	inspector.logger.Debug(
		repositoryInspectedMessageConstant,
		zap.String(logFieldRepositoryPathConstant, repositoryPath),
		zap.String(logFieldBranchConstant, status.Branch),
		zap.Int(logFieldAheadConstant, status.Ahead),
		zap.Int(logFieldBehindConstant, status.Behind),
		zap.Int(logFieldCommitsConstant, status.Commits),
		zap.Int(logFieldUntrackedConstant, status.Untracked),
		zap.Int(logFieldChangedConstant, status.Changed),
		zap.String(logFieldStatusConstant, status.Status.String()),
	)

	return status, nil
}

// DeriveRepositoryStatus computes every metric for an opened repository.
// Name and Path are left for the caller to fill in.
func DeriveRepositoryStatus(repository *git.Repository, includeRemote bool) shared.RepositoryStatus {
	ahead, behind := DeriveAheadBehind(repository)
	workingTree := DeriveWorkingTree(repository)

	status := shared.RepositoryStatus{
		Branch:    DeriveBranchLabel(repository),
		Ahead:     ahead,
		Behind:    behind,
		Commits:   CountCommits(repository),
		Untracked: workingTree.Untracked,
		Changed:   workingTree.Changed,
		Status:    workingTree.State,
	}

	if includeRemote {
		status.RemoteURL = DeriveRemoteURL(repository, shared.OriginRemoteNameConstant)
	}

	return status
}

// HasRepositoryMarker reports whether the directory contains a .git file or directory.
func HasRepositoryMarker(directoryPath string) bool {
	_, statError := os.Lstat(filepath.Join(directoryPath, shared.GitMetadataEntryNameConstant))
	return statError == nil
}

// RepositoryName returns the final path segment used to identify a repository in reports.
func RepositoryName(repositoryPath string) string {
	baseName := filepath.Base(repositoryPath)
	switch baseName {
	case "", currentDirectoryPathSegmentConstant, rootPathSegmentConstant:
		return unknownRepositoryNameConstant
	default:
		return baseName
	}
}

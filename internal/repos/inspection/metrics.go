package inspection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/temirov/git-statuses/internal/repos/shared"
)

const (
	referencePathSeparatorConstant = "/"
	localRemoteNameConstant        = "."
	filesystemRootConstant         = "/"
	resolvedIndexStageConstant     = index.Stage(0)
)

// excludesFilesystem resolves the core.excludesfile paths named by the global and system git configuration.
var excludesFilesystem = osfs.New(filesystemRootConstant)

// WorkingTreeSummary captures the classified working tree and index state.
type WorkingTreeSummary struct {
	Untracked int
	Changed   int
	State     shared.WorkingTreeState
}

// DeriveBranchLabel returns the branch short name, an unborn branch label, a detached marker, or the no-branch label.
func DeriveBranchLabel(repository *git.Repository) string {
	headReference, headError := repository.Head()
	if headError == nil {
		if headReference.Name().IsBranch() {
			return headReference.Name().Short()
		}
		return shared.DetachedHeadLabelConstant
	}

	rawHeadReference, rawHeadError := repository.Storer.Reference(plumbing.HEAD)
	if rawHeadError != nil || rawHeadReference == nil {
		return shared.NoBranchLabelConstant
	}

	if rawHeadReference.Type() != plumbing.SymbolicReference {
		return shared.NoBranchLabelConstant
	}

	targetSegments := strings.Split(rawHeadReference.Target().String(), referencePathSeparatorConstant)
	unbornBranchName := targetSegments[len(targetSegments)-1]
	if len(unbornBranchName) == 0 {
		return shared.NoBranchLabelConstant
	}

	return fmt.Sprintf(shared.UnbornBranchLabelTemplateConstant, unbornBranchName)
}

// DeriveAheadBehind counts commits reachable from the local branch tip but not its upstream tip and vice versa.
// Any missing branch, upstream configuration, or tip yields zero for both counts.
func DeriveAheadBehind(repository *git.Repository) (int, int) {
	headReference, headError := repository.Head()
	if headError != nil || !headReference.Name().IsBranch() {
		return 0, 0
	}

	upstreamReferenceName, upstreamConfigured := resolveUpstreamReferenceName(repository, headReference.Name().Short())
	if !upstreamConfigured {
		return 0, 0
	}

	upstreamReference, upstreamError := repository.Reference(upstreamReferenceName, true)
	if upstreamError != nil {
		return 0, 0
	}

	localAncestors, localError := collectAncestors(repository, headReference.Hash())
	if localError != nil {
		return 0, 0
	}

	upstreamAncestors, upstreamAncestorsError := collectAncestors(repository, upstreamReference.Hash())
	if upstreamAncestorsError != nil {
		return 0, 0
	}

	return countMissing(localAncestors, upstreamAncestors), countMissing(upstreamAncestors, localAncestors)
}

// CountCommits returns the number of commits reachable from HEAD, or zero when HEAD has no target.
func CountCommits(repository *git.Repository) int {
	headReference, headError := repository.Head()
	if headError != nil {
		return 0
	}

	ancestors, ancestorsError := collectAncestors(repository, headReference.Hash())
	if ancestorsError != nil {
		return 0
	}

	return len(ancestors)
}

// DeriveWorkingTree classifies the working tree status entries.
// Ignore patterns come from the repository and from core.excludesfile in the global and system git configuration.
// A status query failure, including bare repositories, yields the Unknown state with zero counts.
func DeriveWorkingTree(repository *git.Repository) WorkingTreeSummary {
	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		return WorkingTreeSummary{State: shared.WorkingTreeStateUnknown}
	}
	worktree.Excludes = append(worktree.Excludes, loadExcludePatterns()...)

	worktreeStatus, statusError := worktree.Status()
	if statusError != nil {
		return WorkingTreeSummary{State: shared.WorkingTreeStateUnknown}
	}

	changedPaths := conflictedPaths(repository)
	summary := WorkingTreeSummary{State: shared.WorkingTreeStateClean}
	for filePath, fileStatus := range worktreeStatus {
		if fileStatus == nil {
			continue
		}

		if fileStatus.Worktree == git.Untracked {
			summary.Untracked++
			continue
		}

		if isTrackedChange(fileStatus.Staging) || isTrackedChange(fileStatus.Worktree) {
			changedPaths[filePath] = struct{}{}
		}
	}
	summary.Changed = len(changedPaths)

	if summary.Untracked > 0 || summary.Changed > 0 {
		summary.State = shared.WorkingTreeStateDirty
	}

	return summary
}

// DeriveRemoteURL returns the first URL configured for the named remote, or nil when the remote is absent.
func DeriveRemoteURL(repository *git.Repository, remoteName string) *string {
	remote, remoteError := repository.Remote(remoteName)
	if remoteError != nil || remote == nil {
		return nil
	}

	remoteURLs := remote.Config().URLs
	if len(remoteURLs) == 0 {
		return nil
	}

	remoteURL := remoteURLs[0]
	return &remoteURL
}

func resolveUpstreamReferenceName(repository *git.Repository, branchName string) (plumbing.ReferenceName, bool) {
	branchConfiguration, branchError := repository.Branch(branchName)
	if branchError != nil || branchConfiguration == nil {
		return "", false
	}

	if len(branchConfiguration.Remote) == 0 || len(branchConfiguration.Merge) == 0 {
		return "", false
	}

	mergeBranchName := branchConfiguration.Merge.Short()
	if branchConfiguration.Remote == localRemoteNameConstant {
		return plumbing.NewBranchReferenceName(mergeBranchName), true
	}

	return plumbing.NewRemoteReferenceName(branchConfiguration.Remote, mergeBranchName), true
}

func collectAncestors(repository *git.Repository, tip plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	if tip.IsZero() {
		return nil, plumbing.ErrReferenceNotFound
	}

	commitIterator, logError := repository.Log(&git.LogOptions{From: tip})
	if logError != nil {
		return nil, logError
	}
	defer commitIterator.Close()

	ancestors := make(map[plumbing.Hash]struct{})
	iterationError := commitIterator.ForEach(func(commit *object.Commit) error {
		ancestors[commit.Hash] = struct{}{}
		return nil
	})
	if iterationError != nil && !errors.Is(iterationError, plumbing.ErrObjectNotFound) {
		return nil, iterationError
	}

	return ancestors, nil
}

func countMissing(source map[plumbing.Hash]struct{}, excluded map[plumbing.Hash]struct{}) int {
	missing := 0
	for hash := range source {
		if _, present := excluded[hash]; !present {
			missing++
		}
	}
	return missing
}

func loadExcludePatterns() []gitignore.Pattern {
	var patterns []gitignore.Pattern
	if systemPatterns, systemError := gitignore.LoadSystemPatterns(excludesFilesystem); systemError == nil {
		patterns = append(patterns, systemPatterns...)
	}
	if globalPatterns, globalError := gitignore.LoadGlobalPatterns(excludesFilesystem); globalError == nil {
		patterns = append(patterns, globalPatterns...)
	}
	return patterns
}

// conflictedPaths lists index entries recorded at a merge stage. Status never reports them on its own.
func conflictedPaths(repository *git.Repository) map[string]struct{} {
	paths := make(map[string]struct{})
	repositoryIndex, indexError := repository.Storer.Index()
	if indexError != nil {
		return paths
	}

	for _, indexEntry := range repositoryIndex.Entries {
		if indexEntry.Stage != resolvedIndexStageConstant {
			paths[indexEntry.Name] = struct{}{}
		}
	}
	return paths
}

func isTrackedChange(statusCode git.StatusCode) bool {
	switch statusCode {
	case git.Modified, git.Deleted, git.UpdatedButUnmerged, git.Added, git.Renamed, git.Copied:
		return true
	default:
		return false
	}
}

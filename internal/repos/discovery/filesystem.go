package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/git-statuses/internal/repos/shared"
)

const (
	minimumWalkDepthConstant       = 1
	currentDirectoryMarkerConstant = "."
)

// DirectoryWalker enumerates candidate directories beneath a root without following symbolic links.
type DirectoryWalker struct{}

// NewDirectoryWalker constructs a walker backed by filepath.WalkDir.
func NewDirectoryWalker() *DirectoryWalker {
	return &DirectoryWalker{}
}

// Walk returns every directory reachable from root at depths one through maxDepth.
// A symbolic link given as root is followed; links below it are not.
// Returned paths keep root as their prefix. Unreadable entries are skipped and never fail the walk.
func (walker *DirectoryWalker) Walk(root string, maxDepth int) []string {
	if maxDepth < minimumWalkDepthConstant {
		maxDepth = minimumWalkDepthConstant
	}

	resolvedRoot, resolveError := filepath.EvalSymlinks(root)
	if resolveError != nil {
		return nil
	}

	var directories []string
	_ = filepath.WalkDir(resolvedRoot, func(path string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return nil
		}

		if !directoryEntry.IsDir() {
			return nil
		}

		relativePath, relativeError := filepath.Rel(resolvedRoot, path)
		if relativeError != nil {
			return nil
		}

		depth := relativeDepth(relativePath)
		if depth < minimumWalkDepthConstant {
			return nil
		}

		if directoryEntry.Name() == shared.GitMetadataEntryNameConstant {
			return fs.SkipDir
		}

		directories = append(directories, filepath.Join(root, relativePath))

		if depth >= maxDepth {
			return fs.SkipDir
		}
		return nil
	})

	return directories
}

func relativeDepth(relativePath string) int {
	if relativePath == currentDirectoryMarkerConstant {
		return 0
	}
	return strings.Count(relativePath, string(os.PathSeparator)) + 1
}

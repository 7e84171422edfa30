package status

import (
	"context"

	"github.com/temirov/git-statuses/internal/repos/inspection"
	"github.com/temirov/git-statuses/internal/repos/shared"
)

// DirectoryWalker enumerates candidate directories below a root.
type DirectoryWalker interface {
	Walk(root string, maxDepth int) []string
}

// RepositoryInspector derives the status of a single candidate directory.
type RepositoryInspector interface {
	Inspect(executionContext context.Context, repositoryPath string, options inspection.InspectionOptions) (shared.RepositoryStatus, error)
}

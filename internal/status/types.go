package status

import "github.com/temirov/git-statuses/internal/repos/shared"

// ScanConfiguration describes a single scan request.
type ScanConfiguration struct {
	RootDirectory string
	MaxDepth      int
	FetchFirst    bool
	IncludeRemote bool
	Workers       int
}

// ScanResult holds the successfully inspected repositories and the names of candidates that failed.
type ScanResult struct {
	Repositories []shared.RepositoryStatus `json:"repositories" yaml:"repositories"`
	Failures     []string                  `json:"failures" yaml:"failures"`
}

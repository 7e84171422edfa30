package shared

import (
	"sort"
	"strings"
)

const (
	// OriginRemoteNameConstant identifies the remote consulted for fetches and remote URL display.
	OriginRemoteNameConstant = "origin"
	// GitMetadataEntryNameConstant is the repository marker expected inside a candidate directory.
	GitMetadataEntryNameConstant = ".git"
	// NoBranchLabelConstant is reported when a repository has no HEAD reference at all.
	NoBranchLabelConstant = "(no branch)"
	// UnbornBranchLabelTemplateConstant decorates a symbolic HEAD whose branch has no commits yet.
	UnbornBranchLabelTemplateConstant = "%s (no commits)"
	// DetachedHeadLabelConstant is reported when HEAD points directly at a commit.
	DetachedHeadLabelConstant = "HEAD"
)

// WorkingTreeState enumerates the cleanliness verdicts for a repository working tree.
type WorkingTreeState string

// Supported working tree states.
const (
	WorkingTreeStateClean   WorkingTreeState = "Clean"
	WorkingTreeStateDirty   WorkingTreeState = "Dirty"
	WorkingTreeStateUnknown WorkingTreeState = "Unknown"
)

// String returns the display form of the state.
func (state WorkingTreeState) String() string {
	return string(state)
}

// RepositoryStatus is the immutable snapshot derived for one inspected repository.
type RepositoryStatus struct {
	Name      string           `json:"name" yaml:"name"`
	Path      string           `json:"path" yaml:"path"`
	Branch    string           `json:"branch" yaml:"branch"`
	Ahead     int              `json:"ahead" yaml:"ahead"`
	Behind    int              `json:"behind" yaml:"behind"`
	Commits   int              `json:"commits" yaml:"commits"`
	Untracked int              `json:"untracked" yaml:"untracked"`
	Changed   int              `json:"changed" yaml:"changed"`
	Status    WorkingTreeState `json:"status" yaml:"status"`
	RemoteURL *string          `json:"remote_url,omitempty" yaml:"remote_url,omitempty"`
}

// HasUnpushed reports whether the local branch carries commits its upstream lacks.
func (status RepositoryStatus) HasUnpushed() bool {
	return status.Ahead > 0
}

// RemoteURLOrDefault returns the configured origin URL or the provided fallback when absent.
func (status RepositoryStatus) RemoteURLOrDefault(fallback string) string {
	if status.RemoteURL == nil {
		return fallback
	}
	return *status.RemoteURL
}

// SortRepositoryStatuses returns a copy of the statuses ordered by case-insensitive name, then path.
func SortRepositoryStatuses(statuses []RepositoryStatus) []RepositoryStatus {
	sorted := append([]RepositoryStatus{}, statuses...)
	sort.SliceStable(sorted, func(leftIndex int, rightIndex int) bool {
		leftName := strings.ToLower(sorted[leftIndex].Name)
		rightName := strings.ToLower(sorted[rightIndex].Name)
		if leftName != rightName {
			return leftName < rightName
		}
		return sorted[leftIndex].Path < sorted[rightIndex].Path
	})
	return sorted
}

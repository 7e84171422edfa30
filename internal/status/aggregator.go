package status

import (
	"sync"

	"github.com/temirov/git-statuses/internal/repos/shared"
)

// ResultAggregator collects inspection outcomes from concurrent workers.
type ResultAggregator struct {
	mutex        sync.Mutex
	repositories []shared.RepositoryStatus
	failures     []string
}

// NewResultAggregator constructs an empty aggregator.
func NewResultAggregator() *ResultAggregator {
	return &ResultAggregator{}
}

// RecordSuccess appends an inspected repository status.
func (aggregator *ResultAggregator) RecordSuccess(repositoryStatus shared.RepositoryStatus) {
	aggregator.mutex.Lock()
	defer aggregator.mutex.Unlock()
	aggregator.repositories = append(aggregator.repositories, repositoryStatus)
}

// RecordFailure appends the name of a repository that could not be inspected.
func (aggregator *ResultAggregator) RecordFailure(repositoryName string) {
	aggregator.mutex.Lock()
	defer aggregator.mutex.Unlock()
	aggregator.failures = append(aggregator.failures, repositoryName)
}

// Snapshot returns copies of the collected successes and failures.
func (aggregator *ResultAggregator) Snapshot() ScanResult {
	aggregator.mutex.Lock()
	defer aggregator.mutex.Unlock()

	return ScanResult{
		Repositories: append([]shared.RepositoryStatus{}, aggregator.repositories...),
		Failures:     append([]string{}, aggregator.failures...),
	}
}

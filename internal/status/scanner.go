package status

import (
	"context"
	"errors"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/git-statuses/internal/repos/discovery"
	"github.com/temirov/git-statuses/internal/repos/inspection"
)

const (
	missingRootDirectoryMessageConstant = "scan root directory not provided"
	minimumWorkerCountConstant          = 1
	scanStartedMessageConstant          = "scanning for repositories"
	scanCompletedMessageConstant        = "scan completed"
	repositoryFailedMessageConstant     = "repository inspection failed"
	logFieldRootDirectoryConstant       = "root_directory"
	logFieldMaxDepthConstant            = "max_depth"
	logFieldWorkersConstant             = "workers"
	logFieldCandidatesConstant          = "candidates"
	logFieldRepositoriesConstant        = "repositories"
	logFieldFailuresConstant            = "failures"
	logFieldRepositoryNameConstant      = "repository_name"
	logFieldCandidatePathConstant       = "candidate_path"
)

// ErrMissingRootDirectory indicates a scan was requested without a root directory.
var ErrMissingRootDirectory = errors.New(missingRootDirectoryMessageConstant)

// Scanner walks a directory tree and inspects every candidate on a bounded worker pool.
type Scanner struct {
	walker    DirectoryWalker
	inspector RepositoryInspector
	logger    *zap.Logger
}

// NewScanner constructs a Scanner. Nil collaborators fall back to the filesystem walker,
// the go-git inspector, and a no-op logger.
func NewScanner(walker DirectoryWalker, inspector RepositoryInspector, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if walker == nil {
		walker = discovery.NewDirectoryWalker()
	}
	if inspector == nil {
		inspector = inspection.NewInspector(nil, logger)
	}
	return &Scanner{walker: walker, inspector: inspector, logger: logger}
}

// Scan inspects every candidate below the configured root. Individual inspection failures are
// recorded in the result and never abort sibling inspections.
func (scanner *Scanner) Scan(executionContext context.Context, configuration ScanConfiguration) (ScanResult, error) {
	rootDirectory := strings.TrimSpace(configuration.RootDirectory)
	if len(rootDirectory) == 0 {
		return ScanResult{}, ErrMissingRootDirectory
	}

	workerCount := resolveWorkerCount(configuration.Workers)
	candidatePaths := scanner.walker.Walk(rootDirectory, configuration.MaxDepth)

	scanner.logger.Debug(
		scanStartedMessageConstant,
		zap.String(logFieldRootDirectoryConstant, rootDirectory),
		zap.Int(logFieldMaxDepthConstant, configuration.MaxDepth),
		zap.Int(logFieldWorkersConstant, workerCount),
		zap.Int(logFieldCandidatesConstant, len(candidatePaths)),
	)

	inspectionOptions := inspection.InspectionOptions{
		FetchFirst:    configuration.FetchFirst,
		IncludeRemote: configuration.IncludeRemote,
	}

	aggregator := NewResultAggregator()
	workerGroup := &errgroup.Group{}
	workerGroup.SetLimit(workerCount)

	for _, candidatePath := range candidatePaths {
		candidatePath := candidatePath
		workerGroup.Go(func() error {
			scanner.inspectCandidate(executionContext, candidatePath, inspectionOptions, aggregator)
			return nil
		})
	}
	_ = workerGroup.Wait()

	scanResult := aggregator.Snapshot()
	scanner.logger.Debug(
		scanCompletedMessageConstant,
		zap.Int(logFieldRepositoriesConstant, len(scanResult.Repositories)),
		zap.Int(logFieldFailuresConstant, len(scanResult.Failures)),
	)

	return scanResult, nil
}

func (scanner *Scanner) inspectCandidate(executionContext context.Context, candidatePath string, options inspection.InspectionOptions, aggregator *ResultAggregator) {
	repositoryStatus, inspectError := scanner.inspector.Inspect(executionContext, candidatePath, options)
	if inspectError == nil {
		aggregator.RecordSuccess(repositoryStatus)
		return
	}

	if errors.Is(inspectError, inspection.ErrNotRepositoryCandidate) {
		return
	}

	repositoryName := inspection.RepositoryName(candidatePath)
	var inspectionError *inspection.InspectionError
	if errors.As(inspectError, &inspectionError) && len(inspectionError.RepositoryName) > 0 {
		repositoryName = inspectionError.RepositoryName
	}

	scanner.logger.Warn(
		repositoryFailedMessageConstant,
		zap.String(logFieldRepositoryNameConstant, repositoryName),
		zap.String(logFieldCandidatePathConstant, candidatePath),
		zap.Error(inspectError),
	)
	aggregator.RecordFailure(repositoryName)
}

func resolveWorkerCount(requestedWorkers int) int {
	if requestedWorkers >= minimumWorkerCountConstant {
		return requestedWorkers
	}

	availableProcessors := runtime.GOMAXPROCS(0)
	if availableProcessors < minimumWorkerCountConstant {
		return minimumWorkerCountConstant
	}
	return availableProcessors
}

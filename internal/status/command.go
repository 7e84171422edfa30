package status

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/git-statuses/internal/repos/inspection"
	"github.com/temirov/git-statuses/internal/utils"
	"github.com/temirov/git-statuses/internal/utils/flags"
	pathutils "github.com/temirov/git-statuses/internal/utils/path"
)

const (
	commandUseConstant              = "status [dir]"
	commandShortDescriptionConstant = "Report the status of every git repository below a directory"
	commandLongDescriptionConstant  = "status scans a directory for git repositories and reports branch, ahead/behind counts, commit count, untracked files, and working tree cleanliness for each one. A repository turns red when it has unpushed commits."
	maximumPositionalArguments      = 1

	depthFlagNameConstant      = "depth"
	depthFlagShorthandConstant = "d"
	depthFlagUsageConstant     = "Maximum directory depth to scan (minimum 1)"

	fetchFlagNameConstant      = "fetch"
	fetchFlagShorthandConstant = "f"
	fetchFlagUsageConstant     = "Fetch origin before reading upstream state"

	remoteFlagNameConstant      = "remote"
	remoteFlagShorthandConstant = "r"
	remoteFlagUsageConstant     = "Show the origin remote URL"

	summaryFlagNameConstant      = "summary"
	summaryFlagShorthandConstant = "s"
	summaryFlagUsageConstant     = "Show a summary of the scan"

	legendFlagNameConstant      = "legend"
	legendFlagShorthandConstant = "l"
	legendFlagUsageConstant     = "Show a legend explaining colors and statuses"

	outputFlagNameConstant      = "output"
	outputFlagShorthandConstant = "o"
	outputFlagUsageConstant     = "Output format"

	workersFlagNameConstant  = "workers"
	workersFlagUsageConstant = "Number of concurrent inspections (0 uses all available processors)"

	fetchModeFlagNameConstant  = "fetch-mode"
	fetchModeFlagUsageConstant = "Fetch implementation"

	unsupportedFetchModeTemplateConstant = "unsupported fetch mode: %s"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies persisted configuration values for the command.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the status cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Walker                DirectoryWalker
	Inspector             RepositoryInspector
	ProcessRunner         utils.ExternalProcessRunner
	HomeExpander          *pathutils.HomeExpander
}

// CommandOptions captures the resolved inputs of a single status invocation.
type CommandOptions struct {
	Scan      ScanConfiguration
	Print     PrintOptions
	FetchMode FetchMode
}

// Build constructs the cobra command for repository status reports.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(maximumPositionalArguments),
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()

	command.Flags().IntP(depthFlagNameConstant, depthFlagShorthandConstant, defaults.MaxDepth, depthFlagUsageConstant)
	flags.BindToggleFlags(command,
		flags.ToggleFlagDefinition{Name: fetchFlagNameConstant, Shorthand: fetchFlagShorthandConstant, Usage: fetchFlagUsageConstant},
		flags.ToggleFlagDefinition{Name: remoteFlagNameConstant, Shorthand: remoteFlagShorthandConstant, Usage: remoteFlagUsageConstant},
		flags.ToggleFlagDefinition{Name: summaryFlagNameConstant, Shorthand: summaryFlagShorthandConstant, Usage: summaryFlagUsageConstant},
		flags.ToggleFlagDefinition{Name: legendFlagNameConstant, Shorthand: legendFlagShorthandConstant, Usage: legendFlagUsageConstant},
	)
	command.Flags().StringP(outputFlagNameConstant, outputFlagShorthandConstant, defaults.Output, flags.FormatChoiceUsage(defaults.Output, SupportedOutputFormats(), outputFlagUsageConstant))
	command.Flags().Int(workersFlagNameConstant, defaults.Workers, workersFlagUsageConstant)
	command.Flags().String(fetchModeFlagNameConstant, defaults.FetchMode, flags.FormatChoiceUsage(defaults.FetchMode, []string{fetchModeNativeStringConstant, fetchModeCLIStringConstant}, fetchModeFlagUsageConstant))

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.parseOptions(command, arguments)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()

	inspector, inspectorError := builder.resolveInspector(options.FetchMode, logger)
	if inspectorError != nil {
		return inspectorError
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	scanResult, scanError := NewScanner(builder.Walker, inspector, logger).Scan(executionContext, options.Scan)
	if scanError != nil {
		return scanError
	}

	return NewPrinter(command.OutOrStdout(), command.ErrOrStderr()).Print(scanResult, options.Print)
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string) (CommandOptions, error) {
	configuration := builder.resolveConfiguration()

	if len(arguments) > 0 {
		configuration.RootDirectory = arguments[0]
	}
	if command.Flags().Changed(depthFlagNameConstant) {
		configuration.MaxDepth, _ = command.Flags().GetInt(depthFlagNameConstant)
	}
	if fetchValue, fetchChanged := flags.ChangedToggleValue(command, fetchFlagNameConstant); fetchChanged {
		configuration.Fetch = fetchValue
	}
	if remoteValue, remoteChanged := flags.ChangedToggleValue(command, remoteFlagNameConstant); remoteChanged {
		configuration.Remote = remoteValue
	}
	if summaryValue, summaryChanged := flags.ChangedToggleValue(command, summaryFlagNameConstant); summaryChanged {
		configuration.Summary = summaryValue
	}
	if legendValue, legendChanged := flags.ChangedToggleValue(command, legendFlagNameConstant); legendChanged {
		configuration.Legend = legendValue
	}
	if command.Flags().Changed(outputFlagNameConstant) {
		configuration.Output, _ = command.Flags().GetString(outputFlagNameConstant)
	}
	if command.Flags().Changed(workersFlagNameConstant) {
		configuration.Workers, _ = command.Flags().GetInt(workersFlagNameConstant)
	}
	if command.Flags().Changed(fetchModeFlagNameConstant) {
		configuration.FetchMode, _ = command.Flags().GetString(fetchModeFlagNameConstant)
	}

	configuration = configuration.sanitize()

	outputFormat, formatError := ParseOutputFormat(configuration.Output)
	if formatError != nil {
		return CommandOptions{}, formatError
	}

	fetchMode, fetchModeError := parseFetchMode(configuration.FetchMode)
	if fetchModeError != nil {
		return CommandOptions{}, fetchModeError
	}

	homeExpander := builder.HomeExpander
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}

	return CommandOptions{
		Scan: ScanConfiguration{
			RootDirectory: homeExpander.ResolveRootDirectory(configuration.RootDirectory),
			MaxDepth:      configuration.MaxDepth,
			FetchFirst:    configuration.Fetch,
			IncludeRemote: configuration.Remote,
			Workers:       configuration.Workers,
		},
		Print: PrintOptions{
			Format:        outputFormat,
			IncludeRemote: configuration.Remote,
			ShowSummary:   configuration.Summary,
			ShowLegend:    configuration.Legend,
		},
		FetchMode: fetchMode,
	}, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveInspector(fetchMode FetchMode, logger *zap.Logger) (RepositoryInspector, error) {
	if builder.Inspector != nil {
		return builder.Inspector, nil
	}

	switch fetchMode {
	case FetchModeCLI:
		processRunner := builder.ProcessRunner
		if processRunner == nil {
			processRunner = utils.NewOSExternalProcessRunner()
		}
		fetcher := inspection.NewCommandLineFetcher(utils.NewCommandExecutor(processRunner))
		return inspection.NewInspector(fetcher, logger), nil
	case FetchModeNative:
		return inspection.NewInspector(inspection.NewNativeFetcher(nil), logger), nil
	default:
		return nil, fmt.Errorf(unsupportedFetchModeTemplateConstant, fetchMode)
	}
}

func parseFetchMode(rawMode string) (FetchMode, error) {
	switch FetchMode(rawMode) {
	case FetchModeNative, FetchModeCLI:
		return FetchMode(rawMode), nil
	default:
		return "", fmt.Errorf(unsupportedFetchModeTemplateConstant, rawMode)
	}
}

package status

import (
	"strings"
)

const (
	configurationRootKeyConstant      = "root"
	configurationDepthKeyConstant     = "depth"
	configurationFetchKeyConstant     = "fetch"
	configurationRemoteKeyConstant    = "remote"
	configurationSummaryKeyConstant   = "summary"
	configurationLegendKeyConstant    = "legend"
	configurationOutputKeyConstant    = "output"
	configurationWorkersKeyConstant   = "workers"
	configurationFetchModeKeyConstant = "fetch_mode"

	defaultRootDirectoryConstant = "."
	defaultMaxDepthConstant      = 1
	minimumMaxDepthConstant      = 1

	fetchModeNativeStringConstant = "native"
	fetchModeCLIStringConstant    = "cli"
)

// FetchMode selects how repositories are fetched before inspection.
type FetchMode string

// Supported fetch modes.
const (
	FetchModeNative FetchMode = FetchMode(fetchModeNativeStringConstant)
	FetchModeCLI    FetchMode = FetchMode(fetchModeCLIStringConstant)
)

// CommandConfiguration captures persisted settings for the status command.
type CommandConfiguration struct {
	RootDirectory string `mapstructure:"root"`
	MaxDepth      int    `mapstructure:"depth"`
	Fetch         bool   `mapstructure:"fetch"`
	Remote        bool   `mapstructure:"remote"`
	Summary       bool   `mapstructure:"summary"`
	Legend        bool   `mapstructure:"legend"`
	Output        string `mapstructure:"output"`
	Workers       int    `mapstructure:"workers"`
	FetchMode     string `mapstructure:"fetch_mode"`
}

// DefaultCommandConfiguration returns baseline configuration values for the status command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RootDirectory: defaultRootDirectoryConstant,
		MaxDepth:      defaultMaxDepthConstant,
		Output:        outputFormatTableStringConstant,
		FetchMode:     fetchModeNativeStringConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for the status command under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationRootKeyConstant:      defaults.RootDirectory,
		rootKey + "." + configurationDepthKeyConstant:     defaults.MaxDepth,
		rootKey + "." + configurationFetchKeyConstant:     defaults.Fetch,
		rootKey + "." + configurationRemoteKeyConstant:    defaults.Remote,
		rootKey + "." + configurationSummaryKeyConstant:   defaults.Summary,
		rootKey + "." + configurationLegendKeyConstant:    defaults.Legend,
		rootKey + "." + configurationOutputKeyConstant:    defaults.Output,
		rootKey + "." + configurationWorkersKeyConstant:   defaults.Workers,
		rootKey + "." + configurationFetchModeKeyConstant: defaults.FetchMode,
	}
}

// sanitize trims whitespace and applies defaults to unset or out-of-range values.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.RootDirectory = strings.TrimSpace(configuration.RootDirectory)
	if len(sanitized.RootDirectory) == 0 {
		sanitized.RootDirectory = defaultRootDirectoryConstant
	}

	if sanitized.MaxDepth < minimumMaxDepthConstant {
		sanitized.MaxDepth = minimumMaxDepthConstant
	}

	if sanitized.Workers < 0 {
		sanitized.Workers = 0
	}

	sanitized.Output = strings.ToLower(strings.TrimSpace(configuration.Output))
	if len(sanitized.Output) == 0 {
		sanitized.Output = outputFormatTableStringConstant
	}

	sanitized.FetchMode = strings.ToLower(strings.TrimSpace(configuration.FetchMode))
	if len(sanitized.FetchMode) == 0 {
		sanitized.FetchMode = fetchModeNativeStringConstant
	}

	return sanitized
}

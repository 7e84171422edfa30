package utils_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/require"

	"github.com/temirov/git-statuses/internal/utils"
)

const (
	testEnvironmentPrefixConstant         = "TESTGITSTATUSES"
	testDepthEnvironmentVariable          = testEnvironmentPrefixConstant + "_TOOLS_STATUS_DEPTH"
	testOutputEnvironmentVariable         = testEnvironmentPrefixConstant + "_TOOLS_STATUS_OUTPUT"
	testDepthKeyConstant                  = "tools.status.depth"
	testOutputKeyConstant                 = "tools.status.output"
	testConfigurationNameConstant         = "git-statuses-loader-test"
	testConfigurationTypeConstant         = "yaml"
	testApplicationDirectoryConstant      = "git-statuses-test"
	testConfigurationContentTemplate      = "tools:\n  status:\n    depth: %d\n    output: %q\n"
	testConfigurationFilePermissions      = 0o600
	testConfigurationDirectoryPermissions = 0o755
)

type loaderFixture struct {
	Tools struct {
		Status struct {
			Depth  int    `mapstructure:"depth"`
			Output string `mapstructure:"output"`
		} `mapstructure:"status"`
	} `mapstructure:"tools"`
}

func writeConfigurationFile(testInstance *testing.T, directory string, depth int, output string) string {
	testInstance.Helper()

	configurationFilePath := filepath.Join(directory, testConfigurationNameConstant+"."+testConfigurationTypeConstant)
	content := fmt.Sprintf(testConfigurationContentTemplate, depth, output)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(content), testConfigurationFilePermissions))
	return configurationFilePath
}

func TestConfigurationLoaderPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name              string
		embeddedDepth     int
		fileDepth         int
		fileOutput        string
		environmentDepth  string
		environmentOutput string
		expectedDepth     int
		expectedOutput    string
	}{
		{
			name:           "defaults_only",
			expectedDepth:  1,
			expectedOutput: "table",
		},
		{
			name:           "embedded_overrides_defaults",
			embeddedDepth:  2,
			expectedDepth:  2,
			expectedOutput: "table",
		},
		{
			name:           "file_overrides_embedded",
			embeddedDepth:  2,
			fileDepth:      3,
			fileOutput:     "  json  ",
			expectedDepth:  3,
			expectedOutput: "json",
		},
		{
			name:              "environment_overrides_file",
			embeddedDepth:     2,
			fileDepth:         3,
			fileOutput:        "json",
			environmentDepth:  "5",
			environmentOutput: "yaml",
			expectedDepth:     5,
			expectedOutput:    "yaml",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			configurationDirectory := subTest.TempDir()
			configurationFilePath := ""
			if testCase.fileDepth > 0 {
				configurationFilePath = writeConfigurationFile(subTest, configurationDirectory, testCase.fileDepth, testCase.fileOutput)
			}
			if len(testCase.environmentDepth) > 0 {
				subTest.Setenv(testDepthEnvironmentVariable, testCase.environmentDepth)
				subTest.Setenv(testOutputEnvironmentVariable, testCase.environmentOutput)
			}

			loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
			if testCase.embeddedDepth > 0 {
				loader.SetEmbeddedConfiguration([]byte(fmt.Sprintf("tools:\n  status:\n    depth: %d\n", testCase.embeddedDepth)), testConfigurationTypeConstant)
			}

			var loaded loaderFixture
			metadata, loadError := loader.LoadConfiguration(configurationFilePath, map[string]any{
				testDepthKeyConstant:  1,
				testOutputKeyConstant: "table",
			}, &loaded)
			require.NoError(subTest, loadError)

			require.Equal(subTest, testCase.expectedDepth, loaded.Tools.Status.Depth)
			require.Equal(subTest, testCase.expectedOutput, loaded.Tools.Status.Output)
			require.Equal(subTest, configurationFilePath, metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationLoaderRejectsMissingExplicitFile(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)

	var loaded loaderFixture
	_, loadError := loader.LoadConfiguration(filepath.Join(testInstance.TempDir(), "absent.yaml"), nil, &loaded)
	require.Error(testInstance, loadError)
}

func TestConfigurationLoaderRejectsMalformedEmbeddedConfiguration(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	loader.SetEmbeddedConfiguration([]byte("tools: [unterminated"), testConfigurationTypeConstant)

	var loaded loaderFixture
	_, loadError := loader.LoadConfiguration("", nil, &loaded)
	require.Error(testInstance, loadError)
}

func TestConfigurationLoaderSearchesXDGConfigurationDirectory(testInstance *testing.T) {
	xdgConfigHome := testInstance.TempDir()
	testInstance.Cleanup(xdg.Reload)
	testInstance.Setenv("XDG_CONFIG_HOME", xdgConfigHome)
	xdg.Reload()

	searchPaths := utils.DefaultConfigurationSearchPaths(testApplicationDirectoryConstant)
	applicationDirectory := filepath.Join(xdgConfigHome, testApplicationDirectoryConstant)
	require.Equal(testInstance, []string{".", applicationDirectory}, searchPaths)

	require.NoError(testInstance, os.MkdirAll(applicationDirectory, testConfigurationDirectoryPermissions))
	configurationFilePath := writeConfigurationFile(testInstance, applicationDirectory, 4, "yaml")

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, searchPaths)

	var loaded loaderFixture
	metadata, loadError := loader.LoadConfiguration("", nil, &loaded)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 4, loaded.Tools.Status.Depth)
	require.Equal(testInstance, "yaml", loaded.Tools.Status.Output)
	require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
}

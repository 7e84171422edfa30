package status_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/git-statuses/internal/repos/shared"
	"github.com/temirov/git-statuses/internal/status"
)

const (
	printerOriginURLConstant       = "git@github.com:owner/alpha.git"
	printerFailedRepositoryName    = "broken"
	printerNoRepositoriesMessage   = "No repositories found."
	printerFailuresHeading         = "Failed to process the following repositories:"
	printerLegendHeading           = "Legend:"
	printerSummaryHeading          = "Summary:"
	printerRemoteHeader            = "Remote"
	printerDirtyStatusExpectation  = "Dirty (2 changed)"
	printerTotalLineExpectation    = "Total repositories:   3"
	printerCleanLineExpectation    = "Clean:                1"
	printerChangesLineExpectation  = "With changes:         1"
	printerUnpushedLineExpectation = "With unpushed:        1"
	printerFailedLineExpectation   = "Failed:               1"
)

func printerFixture() status.ScanResult {
	remoteURL := printerOriginURLConstant
	return status.ScanResult{
		Repositories: []shared.RepositoryStatus{
			{Name: "gamma", Path: "/src/gamma", Branch: "main", Commits: 0, Status: shared.WorkingTreeStateUnknown},
			{Name: "alpha", Path: "/src/alpha", Branch: "main", Ahead: 2, Commits: 5, Status: shared.WorkingTreeStateClean, RemoteURL: &remoteURL},
			{Name: "Beta", Path: "/src/Beta", Branch: "develop", Behind: 1, Commits: 3, Untracked: 1, Changed: 2, Status: shared.WorkingTreeStateDirty},
		},
		Failures: []string{printerFailedRepositoryName},
	}
}

func renderResult(testInstance *testing.T, result status.ScanResult, options status.PrintOptions) (string, string) {
	testInstance.Helper()

	outputBuffer := &bytes.Buffer{}
	errorBuffer := &bytes.Buffer{}
	require.NoError(testInstance, status.NewPrinter(outputBuffer, errorBuffer).Print(result, options))
	return outputBuffer.String(), errorBuffer.String()
}

func TestPrinterRendersSortedTable(testInstance *testing.T) {
	output, errorOutput := renderResult(testInstance, printerFixture(), status.PrintOptions{Format: status.OutputFormatTable})

	for _, header := range []string{"Directory", "Branch", "Ahead", "Behind", "Commits", "Untracked", "Status"} {
		require.Contains(testInstance, output, header)
	}
	require.NotContains(testInstance, output, printerRemoteHeader)
	require.Contains(testInstance, output, printerDirtyStatusExpectation)

	alphaIndex := strings.Index(output, "alpha")
	betaIndex := strings.Index(output, "Beta")
	gammaIndex := strings.Index(output, "gamma")
	require.Less(testInstance, alphaIndex, betaIndex)
	require.Less(testInstance, betaIndex, gammaIndex)

	require.Contains(testInstance, errorOutput, printerFailuresHeading)
	require.Contains(testInstance, errorOutput, " - "+printerFailedRepositoryName)
	require.NotContains(testInstance, output, printerSummaryHeading)
	require.NotContains(testInstance, output, printerLegendHeading)
}

func TestPrinterRendersRemoteColumn(testInstance *testing.T) {
	output, _ := renderResult(testInstance, printerFixture(), status.PrintOptions{Format: status.OutputFormatTable, IncludeRemote: true})

	require.Contains(testInstance, output, printerRemoteHeader)
	require.Contains(testInstance, output, printerOriginURLConstant)

	rows := strings.Split(output, "\n")
	for _, row := range rows {
		if strings.Contains(row, "gamma") {
			require.Contains(testInstance, row, " - ")
		}
	}
}

func TestPrinterRendersSummaryAndLegend(testInstance *testing.T) {
	output, _ := renderResult(testInstance, printerFixture(), status.PrintOptions{ShowSummary: true, ShowLegend: true})

	require.Contains(testInstance, output, printerSummaryHeading)
	require.Contains(testInstance, output, printerTotalLineExpectation)
	require.Contains(testInstance, output, printerCleanLineExpectation)
	require.Contains(testInstance, output, printerChangesLineExpectation)
	require.Contains(testInstance, output, printerUnpushedLineExpectation)
	require.Contains(testInstance, output, printerFailedLineExpectation)
	require.Contains(testInstance, output, printerLegendHeading)
	require.Less(testInstance, strings.Index(output, printerSummaryHeading), strings.Index(output, printerLegendHeading))
}

func TestPrinterReportsEmptyScan(testInstance *testing.T) {
	output, errorOutput := renderResult(testInstance, status.ScanResult{}, status.PrintOptions{Format: status.OutputFormatTable})

	require.Equal(testInstance, printerNoRepositoriesMessage+"\n", output)
	require.Empty(testInstance, errorOutput)
}

func TestPrinterRendersJSON(testInstance *testing.T) {
	output, errorOutput := renderResult(testInstance, printerFixture(), status.PrintOptions{Format: status.OutputFormatJSON, ShowSummary: true})
	require.Empty(testInstance, errorOutput)

	var document struct {
		Repositories []map[string]any `json:"repositories"`
		Failures     []string         `json:"failures"`
		Summary      *status.ScanSummary
	}
	require.NoError(testInstance, json.Unmarshal([]byte(output), &document))

	require.Len(testInstance, document.Repositories, 3)
	require.Equal(testInstance, "alpha", document.Repositories[0]["name"])
	require.Equal(testInstance, true, document.Repositories[0]["has_unpushed"])
	require.Equal(testInstance, false, document.Repositories[1]["has_unpushed"])
	require.Equal(testInstance, "Dirty", document.Repositories[1]["status"])
	require.NotContains(testInstance, document.Repositories[0], "remote_url")
	require.Equal(testInstance, []string{printerFailedRepositoryName}, document.Failures)
	require.NotNil(testInstance, document.Summary)
	require.Equal(testInstance, status.ScanSummary{Total: 3, Clean: 1, WithChanges: 1, WithUnpushed: 1, Failed: 1}, *document.Summary)
}

func TestPrinterRendersYAMLWithRemote(testInstance *testing.T) {
	output, _ := renderResult(testInstance, printerFixture(), status.PrintOptions{Format: status.OutputFormatYAML, IncludeRemote: true})

	var document struct {
		Repositories []struct {
			Name        string  `yaml:"name"`
			Ahead       int     `yaml:"ahead"`
			HasUnpushed bool    `yaml:"has_unpushed"`
			RemoteURL   *string `yaml:"remote_url"`
		} `yaml:"repositories"`
		Failures []string            `yaml:"failures"`
		Summary  *status.ScanSummary `yaml:"summary"`
	}
	require.NoError(testInstance, yaml.Unmarshal([]byte(output), &document))

	require.Len(testInstance, document.Repositories, 3)
	require.Equal(testInstance, "alpha", document.Repositories[0].Name)
	require.True(testInstance, document.Repositories[0].HasUnpushed)
	require.NotNil(testInstance, document.Repositories[0].RemoteURL)
	require.Equal(testInstance, printerOriginURLConstant, *document.Repositories[0].RemoteURL)
	require.Nil(testInstance, document.Repositories[2].RemoteURL)
	require.Nil(testInstance, document.Summary)
}

func TestPrinterRejectsUnknownFormat(testInstance *testing.T) {
	printError := status.NewPrinter(&bytes.Buffer{}, &bytes.Buffer{}).Print(status.ScanResult{}, status.PrintOptions{Format: status.OutputFormat("xml")})
	require.Error(testInstance, printError)
}

func TestParseOutputFormat(testInstance *testing.T) {
	testCases := []struct {
		input          string
		expectedFormat status.OutputFormat
		expectError    bool
	}{
		{input: "table", expectedFormat: status.OutputFormatTable},
		{input: " JSON ", expectedFormat: status.OutputFormatJSON},
		{input: "Yaml", expectedFormat: status.OutputFormatYAML},
		{input: "csv", expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.input, func(subTest *testing.T) {
			outputFormat, parseError := status.ParseOutputFormat(testCase.input)
			if testCase.expectError {
				require.Error(subTest, parseError)
				return
			}
			require.NoError(subTest, parseError)
			require.Equal(subTest, testCase.expectedFormat, outputFormat)
		})
	}
}

func TestFormatStatusCell(testInstance *testing.T) {
	require.Equal(testInstance, "Clean", status.FormatStatusCell(shared.RepositoryStatus{Status: shared.WorkingTreeStateClean}))
	require.Equal(testInstance, "Dirty (3 changed)", status.FormatStatusCell(shared.RepositoryStatus{Status: shared.WorkingTreeStateDirty, Changed: 3}))
	require.Equal(testInstance, "Unknown", status.FormatStatusCell(shared.RepositoryStatus{Status: shared.WorkingTreeStateUnknown}))
}

func TestDirectoryColorPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name          string
		status        shared.RepositoryStatus
		expectedColor lipgloss.TerminalColor
	}{
		{name: "unpushed_wins", status: shared.RepositoryStatus{Ahead: 1, Behind: 1, Commits: 4}, expectedColor: lipgloss.Color("1")},
		{name: "no_commits", status: shared.RepositoryStatus{}, expectedColor: lipgloss.Color("4")},
		{name: "behind", status: shared.RepositoryStatus{Behind: 2, Commits: 4}, expectedColor: lipgloss.Color("6")},
		{name: "in_sync", status: shared.RepositoryStatus{Commits: 4}, expectedColor: lipgloss.NoColor{}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			require.Equal(subTest, testCase.expectedColor, status.DirectoryColor(testCase.status))
		})
	}
}

func TestStatusColor(testInstance *testing.T) {
	require.Equal(testInstance, lipgloss.TerminalColor(lipgloss.Color("2")), status.StatusColor(shared.WorkingTreeStateClean))
	require.Equal(testInstance, lipgloss.TerminalColor(lipgloss.Color("1")), status.StatusColor(shared.WorkingTreeStateDirty))
	require.Equal(testInstance, lipgloss.TerminalColor(lipgloss.NoColor{}), status.StatusColor(shared.WorkingTreeStateUnknown))
}

func TestSummarize(testInstance *testing.T) {
	summary := status.Summarize(printerFixture())
	require.Equal(testInstance, status.ScanSummary{Total: 3, Clean: 1, WithChanges: 1, WithUnpushed: 1, Failed: 1}, summary)
}

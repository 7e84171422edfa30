package status

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/temirov/git-statuses/internal/repos/shared"
	"github.com/temirov/git-statuses/internal/utils"
)

const (
	outputFormatTableStringConstant = "table"
	outputFormatJSONStringConstant  = "json"
	outputFormatYAMLStringConstant  = "yaml"

	directoryHeaderConstant = "Directory"
	branchHeaderConstant    = "Branch"
	aheadHeaderConstant     = "Ahead"
	behindHeaderConstant    = "Behind"
	commitsHeaderConstant   = "Commits"
	untrackedHeaderConstant = "Untracked"
	statusHeaderConstant    = "Status"
	remoteHeaderConstant    = "Remote"

	directoryColumnIndexConstant = 0
	statusColumnIndexConstant    = 6

	missingRemotePlaceholderConstant  = "-"
	dirtyStatusTemplateConstant       = "%s (%d changed)"
	noRepositoriesMessageConstant     = "No repositories found."
	failuresHeadingConstant           = "Failed to process the following repositories:"
	failureLineTemplateConstant       = " - %s\n"
	summaryTemplateConstant           = "\nSummary:\n  Total repositories:   %d\n  Clean:                %d\n  With changes:         %d\n  With unpushed:        %d\n  Failed:               %d\n"
	legendTextConstant                = "\nLegend:\n  Clean: No changes, no unpushed commits.\n  Dirty: Changes present, may or may not have unpushed commits.\n  Unpushed: Commits that are not pushed to the remote repository.\n  Red: Repository has unpushed commits.\n  Blue: Repository has no commits in the current branch.\n  Cyan: Repository is behind upstream.\n"
	jsonIndentConstant                = "  "
	yamlIndentConstant                = 2
	cellHorizontalPaddingConstant     = 1
	unsupportedOutputTemplateConstant = "unsupported output format: %s"

	redColorConstant   = lipgloss.Color("1")
	greenColorConstant = lipgloss.Color("2")
	blueColorConstant  = lipgloss.Color("4")
	cyanColorConstant  = lipgloss.Color("6")
)

// OutputFormat enumerates the supported renderings of a scan result.
type OutputFormat string

// Supported output formats.
const (
	OutputFormatTable OutputFormat = OutputFormat(outputFormatTableStringConstant)
	OutputFormatJSON  OutputFormat = OutputFormat(outputFormatJSONStringConstant)
	OutputFormatYAML  OutputFormat = OutputFormat(outputFormatYAMLStringConstant)
)

// SupportedOutputFormats lists the accepted output format names in display order.
func SupportedOutputFormats() []string {
	return []string{outputFormatTableStringConstant, outputFormatJSONStringConstant, outputFormatYAMLStringConstant}
}

// ParseOutputFormat normalizes a user supplied output format name.
func ParseOutputFormat(rawFormat string) (OutputFormat, error) {
	normalized := OutputFormat(strings.ToLower(strings.TrimSpace(rawFormat)))
	switch normalized {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return normalized, nil
	default:
		return "", fmt.Errorf(unsupportedOutputTemplateConstant, rawFormat)
	}
}

// PrintOptions selects what the printer renders.
type PrintOptions struct {
	Format        OutputFormat
	IncludeRemote bool
	ShowSummary   bool
	ShowLegend    bool
}

// ScanSummary aggregates counts over a scan result.
type ScanSummary struct {
	Total        int `json:"total" yaml:"total"`
	Clean        int `json:"clean" yaml:"clean"`
	WithChanges  int `json:"with_changes" yaml:"with_changes"`
	WithUnpushed int `json:"with_unpushed" yaml:"with_unpushed"`
	Failed       int `json:"failed" yaml:"failed"`
}

// Summarize counts repositories by working tree state and unpushed commits.
func Summarize(result ScanResult) ScanSummary {
	summary := ScanSummary{Total: len(result.Repositories), Failed: len(result.Failures)}
	for _, repositoryStatus := range result.Repositories {
		switch repositoryStatus.Status {
		case shared.WorkingTreeStateClean:
			summary.Clean++
		case shared.WorkingTreeStateDirty:
			summary.WithChanges++
		}
		if repositoryStatus.HasUnpushed() {
			summary.WithUnpushed++
		}
	}
	return summary
}

type repositoryReport struct {
	shared.RepositoryStatus `yaml:",inline"`
	HasUnpushed             bool `json:"has_unpushed" yaml:"has_unpushed"`
}

type scanReport struct {
	Repositories []repositoryReport `json:"repositories" yaml:"repositories"`
	Failures     []string           `json:"failures" yaml:"failures"`
	Summary      *ScanSummary       `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Printer renders scan results to output and error streams.
type Printer struct {
	outputWriter io.Writer
	errorWriter  io.Writer
	renderer     *lipgloss.Renderer
}

// NewPrinter constructs a Printer writing results to outputWriter and failure listings to errorWriter.
func NewPrinter(outputWriter io.Writer, errorWriter io.Writer) *Printer {
	if outputWriter == nil {
		outputWriter = io.Discard
	}
	if errorWriter == nil {
		errorWriter = io.Discard
	}
	return &Printer{
		outputWriter: utils.NewFlushingWriter(outputWriter),
		errorWriter:  utils.NewFlushingWriter(errorWriter),
		renderer:     lipgloss.NewRenderer(outputWriter),
	}
}

// Print renders the result in the requested format. Repositories are sorted by name before rendering.
func (printer *Printer) Print(result ScanResult, options PrintOptions) error {
	sortedResult := ScanResult{
		Repositories: shared.SortRepositoryStatuses(result.Repositories),
		Failures:     append([]string{}, result.Failures...),
	}

	switch options.Format {
	case OutputFormatJSON:
		return printer.printJSON(sortedResult, options)
	case OutputFormatYAML:
		return printer.printYAML(sortedResult, options)
	case OutputFormatTable, "":
		return printer.printTable(sortedResult, options)
	default:
		return fmt.Errorf(unsupportedOutputTemplateConstant, options.Format)
	}
}

func (printer *Printer) printTable(result ScanResult, options PrintOptions) error {
	if len(result.Repositories) == 0 {
		if _, writeError := fmt.Fprintln(printer.outputWriter, noRepositoriesMessageConstant); writeError != nil {
			return writeError
		}
	} else {
		if _, writeError := fmt.Fprintln(printer.outputWriter, printer.renderTable(result.Repositories, options.IncludeRemote)); writeError != nil {
			return writeError
		}
	}

	if failuresError := printer.printFailures(result.Failures); failuresError != nil {
		return failuresError
	}

	if options.ShowSummary {
		summary := Summarize(result)
		if _, writeError := fmt.Fprintf(printer.outputWriter, summaryTemplateConstant, summary.Total, summary.Clean, summary.WithChanges, summary.WithUnpushed, summary.Failed); writeError != nil {
			return writeError
		}
	}

	if options.ShowLegend {
		if _, writeError := io.WriteString(printer.outputWriter, legendTextConstant); writeError != nil {
			return writeError
		}
	}

	return nil
}

func (printer *Printer) renderTable(repositories []shared.RepositoryStatus, includeRemote bool) string {
	headers := []string{
		directoryHeaderConstant,
		branchHeaderConstant,
		aheadHeaderConstant,
		behindHeaderConstant,
		commitsHeaderConstant,
		untrackedHeaderConstant,
		statusHeaderConstant,
	}
	if includeRemote {
		headers = append(headers, remoteHeaderConstant)
	}

	rows := make([][]string, 0, len(repositories))
	for _, repositoryStatus := range repositories {
		row := []string{
			repositoryStatus.Name,
			repositoryStatus.Branch,
			strconv.Itoa(repositoryStatus.Ahead),
			strconv.Itoa(repositoryStatus.Behind),
			strconv.Itoa(repositoryStatus.Commits),
			strconv.Itoa(repositoryStatus.Untracked),
			FormatStatusCell(repositoryStatus),
		}
		if includeRemote {
			row = append(row, repositoryStatus.RemoteURLOrDefault(missingRemotePlaceholderConstant))
		}
		rows = append(rows, row)
	}

	cellStyle := printer.renderer.NewStyle().Padding(0, cellHorizontalPaddingConstant)
	headerStyle := cellStyle.Bold(true)

	renderedTable := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row int, column int) lipgloss.Style {
			if row == table.HeaderRow || row < 0 || row >= len(repositories) {
				return headerStyle
			}
			switch column {
			case directoryColumnIndexConstant:
				return applyColor(cellStyle, DirectoryColor(repositories[row]))
			case statusColumnIndexConstant:
				return applyColor(cellStyle, StatusColor(repositories[row].Status))
			default:
				return cellStyle
			}
		})

	return renderedTable.Render()
}

func (printer *Printer) printFailures(failures []string) error {
	if len(failures) == 0 {
		return nil
	}

	if _, writeError := fmt.Fprintln(printer.errorWriter, failuresHeadingConstant); writeError != nil {
		return writeError
	}
	for _, repositoryName := range failures {
		if _, writeError := fmt.Fprintf(printer.errorWriter, failureLineTemplateConstant, repositoryName); writeError != nil {
			return writeError
		}
	}
	return nil
}

func (printer *Printer) printJSON(result ScanResult, options PrintOptions) error {
	encoder := json.NewEncoder(printer.outputWriter)
	encoder.SetIndent("", jsonIndentConstant)
	return encoder.Encode(buildScanReport(result, options))
}

func (printer *Printer) printYAML(result ScanResult, options PrintOptions) error {
	encoder := yaml.NewEncoder(printer.outputWriter)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(buildScanReport(result, options)); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}

func buildScanReport(result ScanResult, options PrintOptions) scanReport {
	report := scanReport{
		Repositories: make([]repositoryReport, 0, len(result.Repositories)),
		Failures:     append([]string{}, result.Failures...),
	}

	for _, repositoryStatus := range result.Repositories {
		if !options.IncludeRemote {
			repositoryStatus.RemoteURL = nil
		}
		report.Repositories = append(report.Repositories, repositoryReport{
			RepositoryStatus: repositoryStatus,
			HasUnpushed:      repositoryStatus.HasUnpushed(),
		})
	}

	if options.ShowSummary {
		summary := Summarize(result)
		report.Summary = &summary
	}

	return report
}

// FormatStatusCell renders the working tree state, annotating dirty trees with the changed count.
func FormatStatusCell(repositoryStatus shared.RepositoryStatus) string {
	if repositoryStatus.Status == shared.WorkingTreeStateDirty {
		return fmt.Sprintf(dirtyStatusTemplateConstant, repositoryStatus.Status, repositoryStatus.Changed)
	}
	return repositoryStatus.Status.String()
}

// DirectoryColor selects the highlight for the directory cell, or an empty color for none.
func DirectoryColor(repositoryStatus shared.RepositoryStatus) lipgloss.TerminalColor {
	switch {
	case repositoryStatus.HasUnpushed():
		return redColorConstant
	case repositoryStatus.Commits == 0:
		return blueColorConstant
	case repositoryStatus.Behind > 0:
		return cyanColorConstant
	default:
		return lipgloss.NoColor{}
	}
}

// StatusColor selects the highlight for the status cell.
func StatusColor(state shared.WorkingTreeState) lipgloss.TerminalColor {
	switch state {
	case shared.WorkingTreeStateClean:
		return greenColorConstant
	case shared.WorkingTreeStateDirty:
		return redColorConstant
	default:
		return lipgloss.NoColor{}
	}
}

func applyColor(style lipgloss.Style, color lipgloss.TerminalColor) lipgloss.Style {
	if _, noColor := color.(lipgloss.NoColor); noColor {
		return style
	}
	return style.Foreground(color)
}

package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"skillmatch/internal/flow"
	"skillmatch/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// Data type keys
const (
	TypeAny        = "any"
	TypeReport     = "MatchReport"
	TypeDomainList = "DomainList"
)

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", TypeAny, &JSONFormatter{})
	registry.RegisterFormatter("text", TypeReport, &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", TypeReport, &ReportMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeDomainList, &DomainsTextFormatter{})
	registry.RegisterFormatter("markdown", TypeDomainList, &DomainsMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters[TypeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns every registered format, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.MatchReport, *types.MatchReport:
		return TypeReport
	case []types.DomainInfo:
		return TypeDomainList
	default:
		return TypeAny
	}
}

func asReport(data any) (types.MatchReport, error) {
	switch r := data.(type) {
	case types.MatchReport:
		return r, nil
	case *types.MatchReport:
		if r != nil {
			return *r, nil
		}
	}
	return types.MatchReport{}, fmt.Errorf("expected MatchReport, got %T", data)
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return TypeAny
}

// ReportTextFormatter renders a match report as plain text, one block per stage
type ReportTextFormatter struct{}

func (rtf *ReportTextFormatter) Format(data any) (string, error) {
	report, err := asReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== RESUME ===\n")
	if report.Source != "" {
		fmt.Fprintf(&output, "File: %s\n", report.Source)
	}
	fmt.Fprintf(&output, "Skills found: %s\n\n", foundText(report.Result.Found))

	output.WriteString("=== JOB DOMAIN ===\n")
	fmt.Fprintf(&output, "Domain: %s\n", report.Domain)
	fmt.Fprintf(&output, "Required Skills: %s\n\n", strings.Join(report.Required, ", "))

	output.WriteString("=== SKILLS MATCHING ===\n")
	fmt.Fprintf(&output, "Matched: %s\n", joinOrNone(report.Result.Matched))
	fmt.Fprintf(&output, "Missing: %s\n\n", joinOrNone(report.Result.Missing))

	output.WriteString("=== ATS SCORE ===\n")
	if report.Score != nil {
		fmt.Fprintf(&output, "Score: %s\n", report.Score.Display)
		fmt.Fprintf(&output, "%s\n", report.Score.Verdict)
	} else {
		output.WriteString("Score: unavailable\n")
	}

	if report.Suggestions != nil {
		output.WriteString("\n=== IMPROVEMENT SUGGESTIONS ===\n")
		if len(report.Suggestions) == 0 {
			fmt.Fprintf(&output, "%s\n", flow.NoMissingText)
		}
		for _, s := range report.Suggestions {
			fmt.Fprintf(&output, "\n%s\n%s\n", s.Heading(), strings.TrimSpace(s.Body()))
		}
	}

	if len(report.Warnings) > 0 {
		output.WriteString("\n=== WARNINGS ===\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&output, "- %s\n", w)
		}
	}

	return output.String(), nil
}

func (rtf *ReportTextFormatter) SupportedType() string {
	return TypeReport
}

// ReportMarkdownFormatter renders a match report as markdown
type ReportMarkdownFormatter struct{}

func (rmf *ReportMarkdownFormatter) Format(data any) (string, error) {
	report, err := asReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Resume Analysis\n\n")
	if report.Source != "" {
		fmt.Fprintf(&output, "**File:** %s\n\n", report.Source)
	}
	fmt.Fprintf(&output, "**Skills found:** %s\n\n", foundText(report.Result.Found))

	output.WriteString("## Job Domain\n\n")
	fmt.Fprintf(&output, "**%s**\n\n", report.Domain)
	fmt.Fprintf(&output, "Required Skills: %s\n\n", strings.Join(report.Required, ", "))

	output.WriteString("## Skills Matching\n\n")
	fmt.Fprintf(&output, "- **Matched:** %s\n", joinOrNone(report.Result.Matched))
	fmt.Fprintf(&output, "- **Missing:** %s\n\n", joinOrNone(report.Result.Missing))

	output.WriteString("## ATS Score\n\n")
	if report.Score != nil {
		fmt.Fprintf(&output, "**%s** - %s\n", report.Score.Display, report.Score.Verdict)
	} else {
		output.WriteString("Score unavailable\n")
	}

	if report.Suggestions != nil {
		output.WriteString("\n## Improvement Suggestions\n")
		if len(report.Suggestions) == 0 {
			fmt.Fprintf(&output, "\n%s\n", flow.NoMissingText)
		}
		for _, s := range report.Suggestions {
			fmt.Fprintf(&output, "\n### %s\n\n%s\n", s.Heading(), strings.TrimSpace(s.Body()))
		}
	}

	if len(report.Warnings) > 0 {
		output.WriteString("\n## Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&output, "- %s\n", w)
		}
	}

	return output.String(), nil
}

func (rmf *ReportMarkdownFormatter) SupportedType() string {
	return TypeReport
}

// DomainsTextFormatter lists domains one per line
type DomainsTextFormatter struct{}

func (dtf *DomainsTextFormatter) Format(data any) (string, error) {
	domains, ok := data.([]types.DomainInfo)
	if !ok {
		return "", fmt.Errorf("expected []DomainInfo, got %T", data)
	}

	var output strings.Builder
	for _, d := range domains {
		fmt.Fprintf(&output, "%s: %s\n", d.Name, strings.Join(d.Required, ", "))
	}
	return output.String(), nil
}

func (dtf *DomainsTextFormatter) SupportedType() string {
	return TypeDomainList
}

// DomainsMarkdownFormatter lists domains as a table
type DomainsMarkdownFormatter struct{}

func (dmf *DomainsMarkdownFormatter) Format(data any) (string, error) {
	domains, ok := data.([]types.DomainInfo)
	if !ok {
		return "", fmt.Errorf("expected []DomainInfo, got %T", data)
	}

	var output strings.Builder
	output.WriteString("| Domain | Required Skills |\n")
	output.WriteString("|---|---|\n")
	for _, d := range domains {
		fmt.Fprintf(&output, "| %s | %s |\n", d.Name, strings.Join(d.Required, ", "))
	}
	return output.String(), nil
}

func (dmf *DomainsMarkdownFormatter) SupportedType() string {
	return TypeDomainList
}

func foundText(found []string) string {
	if len(found) == 0 {
		return flow.NoSkillsFoundText
	}
	return strings.Join(found, ", ")
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return flow.NoneText
	}
	return strings.Join(items, ", ")
}

// GlobalRegistry is the default formatter registry instance
var GlobalRegistry = NewFormatterRegistry()

package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"cvmatch/internal/types"
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

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "MatchResult", &MatchTextFormatter{})
	registry.RegisterFormatter("markdown", "MatchResult", &MatchMarkdownFormatter{})
	registry.RegisterFormatter("text", "BatchMatchResult", &BatchTextFormatter{})
	registry.RegisterFormatter("markdown", "BatchMatchResult", &BatchMarkdownFormatter{})
	registry.RegisterFormatter("text", "CandidateSummary", &SummaryTextFormatter{})
	registry.RegisterFormatter("markdown", "CandidateSummary", &SummaryMarkdownFormatter{})

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

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.MatchResult:
		return "MatchResult"
	case types.BatchMatchResult:
		return "BatchMatchResult"
	case types.CandidateSummary:
		return "CandidateSummary"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// MatchTextFormatter handles text formatting for match results
type MatchTextFormatter struct{}

func (mtf *MatchTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.MatchResult)
	if !ok {
		return "", fmt.Errorf("expected MatchResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== MATCH RESULT ===\n\n")
	if result.CandidateName != "" {
		output.WriteString(fmt.Sprintf("Candidate: %s\n", result.CandidateName))
	}
	if result.JobTitle != "" {
		output.WriteString(fmt.Sprintf("Job: %s\n", result.JobTitle))
	}
	output.WriteString(fmt.Sprintf("Overall Score: %.2f/100\n", result.OverallScore))
	if result.Degraded {
		output.WriteString("Note: placeholder embeddings were used for this match\n")
	}
	output.WriteString("\n")

	output.WriteString("=== SCORE BREAKDOWN ===\n")
	output.WriteString(fmt.Sprintf("Semantic Similarity: %.2f\n", result.Similarity))
	output.WriteString(fmt.Sprintf("Technical Skills:    %.2f\n", result.SubScores.TechnicalSkills))
	output.WriteString(fmt.Sprintf("Experience:          %.2f\n", result.SubScores.Experience))
	output.WriteString(fmt.Sprintf("Education:           %.2f\n", result.SubScores.Education))
	output.WriteString(fmt.Sprintf("Soft Skills:         %.2f\n", result.SubScores.SoftSkills))
	output.WriteString("\n")

	writeExplanationText(&output, result.Explanation)

	return output.String(), nil
}

func (mtf *MatchTextFormatter) SupportedType() string {
	return "MatchResult"
}

func writeExplanationText(output *strings.Builder, explanation types.Explanation) {
	if len(explanation.Strengths) > 0 {
		output.WriteString("=== STRENGTHS ===\n")
		for _, strength := range explanation.Strengths {
			output.WriteString(strength)
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}

	if len(explanation.Gaps) > 0 {
		output.WriteString("=== GAPS ===\n")
		for _, gap := range explanation.Gaps {
			output.WriteString(gap)
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}

	if len(explanation.Recommendations) > 0 {
		output.WriteString("=== RECOMMENDATIONS ===\n")
		for i, recommendation := range explanation.Recommendations {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, recommendation))
		}
		output.WriteString("\n")
	}

	if explanation.Narrative != "" {
		output.WriteString("=== SUMMARY ===\n")
		output.WriteString(explanation.Narrative)
		output.WriteString("\n")
	}
}

// MatchMarkdownFormatter handles markdown formatting for match results
type MatchMarkdownFormatter struct{}

func (mmf *MatchMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.MatchResult)
	if !ok {
		return "", fmt.Errorf("expected MatchResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Match Result\n\n")
	if result.CandidateName != "" {
		output.WriteString(fmt.Sprintf("**Candidate:** %s\n\n", result.CandidateName))
	}
	if result.JobTitle != "" {
		output.WriteString(fmt.Sprintf("**Job:** %s\n\n", result.JobTitle))
	}
	output.WriteString(fmt.Sprintf("**Overall Score:** %.2f/100\n\n", result.OverallScore))
	if result.Degraded {
		output.WriteString("> Placeholder embeddings were used for this match.\n\n")
	}

	output.WriteString("## Score Breakdown\n\n")
	output.WriteString("| Dimension | Score |\n")
	output.WriteString("|-----------|-------|\n")
	output.WriteString(fmt.Sprintf("| Semantic Similarity | %.2f |\n", result.Similarity))
	output.WriteString(fmt.Sprintf("| Technical Skills | %.2f |\n", result.SubScores.TechnicalSkills))
	output.WriteString(fmt.Sprintf("| Experience | %.2f |\n", result.SubScores.Experience))
	output.WriteString(fmt.Sprintf("| Education | %.2f |\n", result.SubScores.Education))
	output.WriteString(fmt.Sprintf("| Soft Skills | %.2f |\n\n", result.SubScores.SoftSkills))

	if len(result.Explanation.Strengths) > 0 {
		output.WriteString("## Strengths\n\n")
		for _, strength := range result.Explanation.Strengths {
			output.WriteString(fmt.Sprintf("- %s\n", strings.TrimPrefix(strength, "+ ")))
		}
		output.WriteString("\n")
	}

	if len(result.Explanation.Gaps) > 0 {
		output.WriteString("## Gaps\n\n")
		for _, gap := range result.Explanation.Gaps {
			output.WriteString(fmt.Sprintf("- %s\n", strings.TrimPrefix(gap, "- ")))
		}
		output.WriteString("\n")
	}

	if len(result.Explanation.Recommendations) > 0 {
		output.WriteString("## Recommendations\n\n")
		for i, recommendation := range result.Explanation.Recommendations {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, recommendation))
		}
		output.WriteString("\n")
	}

	if result.Explanation.Narrative != "" {
		output.WriteString("## Summary\n\n")
		output.WriteString(result.Explanation.Narrative)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (mmf *MatchMarkdownFormatter) SupportedType() string {
	return "MatchResult"
}

// BatchTextFormatter handles text formatting for batch match results
type BatchTextFormatter struct{}

func (btf *BatchTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.BatchMatchResult)
	if !ok {
		return "", fmt.Errorf("expected BatchMatchResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== BATCH MATCH RESULTS ===\n\n")
	output.WriteString(fmt.Sprintf("Candidates ranked: %d\n\n", result.Count))

	for i, match := range result.Matches {
		name := match.CandidateName
		if name == "" {
			name = "(unnamed)"
		}
		output.WriteString(fmt.Sprintf("%d. %s - %.2f/100\n", i+1, name, match.OverallScore))
		output.WriteString(fmt.Sprintf("   Similarity %.2f | Skills %.2f | Experience %.2f | Education %.2f\n",
			match.Similarity,
			match.SubScores.TechnicalSkills,
			match.SubScores.Experience,
			match.SubScores.Education))
		if match.Degraded {
			output.WriteString("   (degraded: placeholder embeddings used)\n")
		}
	}

	if len(result.Errors) > 0 {
		output.WriteString("\n=== ERRORS ===\n")
		for _, errMsg := range result.Errors {
			output.WriteString(fmt.Sprintf("- %s\n", errMsg))
		}
	}

	return output.String(), nil
}

func (btf *BatchTextFormatter) SupportedType() string {
	return "BatchMatchResult"
}

// BatchMarkdownFormatter handles markdown formatting for batch match results
type BatchMarkdownFormatter struct{}

func (bmf *BatchMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.BatchMatchResult)
	if !ok {
		return "", fmt.Errorf("expected BatchMatchResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Batch Match Results\n\n")
	output.WriteString(fmt.Sprintf("**Candidates ranked:** %d\n\n", result.Count))

	if len(result.Matches) > 0 {
		output.WriteString("| Rank | Candidate | Overall | Similarity | Skills | Experience | Education |\n")
		output.WriteString("|------|-----------|---------|------------|--------|------------|----------|\n")
		for i, match := range result.Matches {
			name := match.CandidateName
			if name == "" {
				name = "(unnamed)"
			}
			output.WriteString(fmt.Sprintf("| %d | %s | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
				i+1, name, match.OverallScore, match.Similarity,
				match.SubScores.TechnicalSkills,
				match.SubScores.Experience,
				match.SubScores.Education))
		}
		output.WriteString("\n")
	}

	if len(result.Errors) > 0 {
		output.WriteString("## Errors\n\n")
		for _, errMsg := range result.Errors {
			output.WriteString(fmt.Sprintf("- %s\n", errMsg))
		}
	}

	return output.String(), nil
}

func (bmf *BatchMarkdownFormatter) SupportedType() string {
	return "BatchMatchResult"
}

// SummaryTextFormatter handles text formatting for candidate summaries
type SummaryTextFormatter struct{}

func (stf *SummaryTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.CandidateSummary)
	if !ok {
		return "", fmt.Errorf("expected CandidateSummary, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== CANDIDATE SUMMARY ===\n\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\n")

	if len(result.MatchedSkills) > 0 {
		output.WriteString("=== MATCHED SKILLS ===\n")
		for _, skill := range result.MatchedSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}

	if len(result.InterviewQuestions) > 0 {
		output.WriteString("=== SUGGESTED INTERVIEW QUESTIONS ===\n")
		for i, question := range result.InterviewQuestions {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, question))
		}
	}

	return output.String(), nil
}

func (stf *SummaryTextFormatter) SupportedType() string {
	return "CandidateSummary"
}

// SummaryMarkdownFormatter handles markdown formatting for candidate summaries
type SummaryMarkdownFormatter struct{}

func (smf *SummaryMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.CandidateSummary)
	if !ok {
		return "", fmt.Errorf("expected CandidateSummary, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Candidate Summary\n\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\n")

	if len(result.MatchedSkills) > 0 {
		output.WriteString("## Matched Skills\n\n")
		for _, skill := range result.MatchedSkills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}

	if len(result.InterviewQuestions) > 0 {
		output.WriteString("## Suggested Interview Questions\n\n")
		for i, question := range result.InterviewQuestions {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, question))
		}
	}

	return output.String(), nil
}

func (smf *SummaryMarkdownFormatter) SupportedType() string {
	return "CandidateSummary"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()

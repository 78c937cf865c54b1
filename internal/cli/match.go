package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"cvmatch/internal/common"
	"cvmatch/internal/errors"
	"cvmatch/internal/types"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match [candidate-file] [job-file]",
	Short: "Score a candidate profile against a job posting",
	Long: `Score a single candidate profile against a job posting. Both inputs
are JSON profile files. The output includes the overall compatibility score,
the per-dimension breakdown, and a human-readable explanation with strengths,
gaps, and recommendations.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		// Apply default format if not specified
		if matchConfig.OutputFormat == "" {
			matchConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(matchConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runMatch,
}

var matchConfig common.CommandConfig

func init() {
	matchCmd.Flags().StringVarP(&matchConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	matchCmd.Flags().StringVar(&matchConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = matchCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// matchInput pairs the parsed candidate and job profiles
type matchInput struct {
	Candidate types.CandidateProfile
	Job       types.JobProfile
}

// parseMatchInput decodes candidate and job JSON profiles from file contents
func parseMatchInput(contents []string) (matchInput, error) {
	if len(contents) != 2 {
		return matchInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
	}

	var input matchInput
	if err := json.Unmarshal([]byte(contents[0]), &input.Candidate); err != nil {
		return matchInput{}, errors.NewValidationError(errors.ErrCodeInvalidProfile,
			"Invalid candidate profile", err)
	}
	if err := json.Unmarshal([]byte(contents[1]), &input.Job); err != nil {
		return matchInput{}, errors.NewValidationError(errors.ErrCodeInvalidProfile,
			"Invalid job profile", err)
	}
	return input, nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	eng, closeEngine, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeEngine(); err != nil {
			logger.Warn("Failed to close embedding provider", "error", err)
		}
	}()

	logDetails := func(input matchInput, cfg common.CommandConfig) {
		logger.Info("Starting candidate match",
			"candidate", input.Candidate.FullName,
			"job", input.Job.Title,
			"output_format", cfg.OutputFormat)
	}

	matchOperation := func(ctx context.Context, input matchInput) (types.MatchResult, bool, error) {
		result, err := eng.Match(ctx, input.Candidate, input.Job)
		if err != nil {
			return types.MatchResult{}, false, err
		}
		return *result, result.Degraded, nil
	}

	err = common.RunEngineCommand(
		cmd.Context(),
		logger,
		matchConfig,
		args,
		parseMatchInput,
		matchOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to match candidate: %w", err)
	}
	logger.Info("Candidate match completed successfully")
	return nil
}

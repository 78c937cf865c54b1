package cli

import (
	"context"
	"fmt"

	"cvmatch/internal/common"
	"cvmatch/internal/types"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [candidate-file] [job-file]",
	Short: "Produce an executive summary for a candidate",
	Long: `Produce an executive summary of a candidate against a job posting,
with matched skills and suggested interview questions. Both inputs are JSON
profile files.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if summaryConfig.OutputFormat == "" {
			summaryConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(summaryConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runSummary,
}

var summaryConfig common.CommandConfig

func init() {
	summaryCmd.Flags().StringVarP(&summaryConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	summaryCmd.Flags().StringVar(&summaryConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
}

func runSummary(cmd *cobra.Command, args []string) error {
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
		logger.Info("Starting candidate summary",
			"candidate", input.Candidate.FullName,
			"job", input.Job.Title,
			"output_format", cfg.OutputFormat)
	}

	summaryOperation := func(ctx context.Context, input matchInput) (types.CandidateSummary, bool, error) {
		return *eng.Summarize(input.Candidate, input.Job), false, nil
	}

	err = common.RunEngineCommand(
		cmd.Context(),
		logger,
		summaryConfig,
		args,
		parseMatchInput,
		summaryOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to summarize candidate: %w", err)
	}
	logger.Info("Candidate summary completed successfully")
	return nil
}

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

var batchCmd = &cobra.Command{
	Use:   "batch [candidates-file] [job-file]",
	Short: "Rank a batch of candidates against a job posting",
	Long: `Rank many candidate profiles against a single job posting. The
candidates file holds a JSON array of candidate profiles; the job file holds
one JSON job profile. Results are ordered by overall score, best first.
Failures on individual candidates are reported without aborting the batch.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if batchConfig.OutputFormat == "" {
			batchConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(batchConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runBatch,
}

var (
	batchConfig common.CommandConfig
	batchTopK   int
)

func init() {
	batchCmd.Flags().StringVarP(&batchConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	batchCmd.Flags().StringVar(&batchConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	batchCmd.Flags().IntVar(&batchTopK, "top", 0, "Limit results to the top N candidates (0 = no limit)")
}

// batchInput pairs the parsed candidate list and job profile
type batchInput struct {
	Candidates []types.CandidateProfile
	Job        types.JobProfile
}

// parseBatchInput decodes the candidates array and job profile from file contents
func parseBatchInput(contents []string) (batchInput, error) {
	if len(contents) != 2 {
		return batchInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
	}

	var input batchInput
	if err := json.Unmarshal([]byte(contents[0]), &input.Candidates); err != nil {
		return batchInput{}, errors.NewValidationError(errors.ErrCodeInvalidProfile,
			"Invalid candidates file", err)
	}
	if len(input.Candidates) == 0 {
		return batchInput{}, fmt.Errorf("candidates file holds no profiles")
	}
	if err := json.Unmarshal([]byte(contents[1]), &input.Job); err != nil {
		return batchInput{}, errors.NewValidationError(errors.ErrCodeInvalidProfile,
			"Invalid job profile", err)
	}
	return input, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
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

	topK := batchTopK
	if topK <= 0 {
		topK = cfg.Matching.TopK
	}

	logDetails := func(input batchInput, cfg common.CommandConfig) {
		logger.Info("Starting batch match",
			"candidates", len(input.Candidates),
			"job", input.Job.Title,
			"top_k", topK,
			"output_format", cfg.OutputFormat)
	}

	batchOperation := func(ctx context.Context, input batchInput) (types.BatchMatchResult, bool, error) {
		batch := eng.BatchMatch(ctx, input.Candidates, input.Job, topK)
		degraded := false
		for _, match := range batch.Matches {
			if match.Degraded {
				degraded = true
				break
			}
		}
		return *batch, degraded, nil
	}

	err = common.RunEngineCommand(
		cmd.Context(),
		logger,
		batchConfig,
		args,
		parseBatchInput,
		batchOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to run batch match: %w", err)
	}
	logger.Info("Batch match completed successfully")
	return nil
}

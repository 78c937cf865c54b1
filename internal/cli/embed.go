package cli

import (
	"context"
	"fmt"
	"strings"

	"cvmatch/internal/common"
	"cvmatch/internal/types"

	"github.com/spf13/cobra"
)

var embedCmd = &cobra.Command{
	Use:   "embed [text-file]",
	Short: "Embed free text into a vector",
	Long: `Embed the contents of a text file into an embedding vector using the
configured provider. When the provider is unavailable the command degrades to
a placeholder vector and reports the degradation.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if embedConfig.OutputFormat == "" {
			embedConfig.OutputFormat = "json"
		}
		return common.ValidateOutputFormat(embedConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runEmbed,
}

var embedConfig common.CommandConfig

func init() {
	embedCmd.Flags().StringVarP(&embedConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	embedCmd.Flags().StringVar(&embedConfig.OutputFormat, "format", "", "Output format (json)")
}

func runEmbed(cmd *cobra.Command, args []string) error {
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

	createInput := func(contents []string) (string, error) {
		if len(contents) != 1 {
			return "", fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		text := strings.TrimSpace(contents[0])
		if text == "" {
			return "", fmt.Errorf("input file is empty")
		}
		return text, nil
	}

	logDetails := func(text string, cfg common.CommandConfig) {
		logger.Info("Starting text embedding",
			"text_chars", len(text),
			"output_format", cfg.OutputFormat)
	}

	embedOperation := func(ctx context.Context, text string) (types.EmbedResult, bool, error) {
		vector, placeholder := eng.EmbedText(ctx, text)
		return types.EmbedResult{
			Embedding:   vector,
			Dimension:   len(vector),
			Placeholder: placeholder,
		}, placeholder, nil
	}

	err = common.RunEngineCommand(
		cmd.Context(),
		logger,
		embedConfig,
		args,
		createInput,
		embedOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to embed text: %w", err)
	}
	logger.Info("Text embedding completed successfully")
	return nil
}

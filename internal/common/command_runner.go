package common

import (
	"context"
	"fmt"
	"os"

	"cvmatch/internal/errors"
)

// CreateInputFunc defines how to build the operation input from file contents.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// EngineOperationFunc is a generic signature for scoring operations that may
// degrade to placeholder embeddings.
type EngineOperationFunc[Input, Output any] func(context.Context, Input) (Output, bool, error)

// RunEngineCommand encapsulates the common logic for file-based CLI commands.
func RunEngineCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	operation EngineOperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	contents, err := fileProcessor.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	logDetails(input, cmdConfig)

	result, degraded, err := operation(ctx, input)
	if err != nil {
		return err
	}

	if degraded {
		if logger != nil {
			logger.Warn("Placeholder embeddings were used; semantic similarity is approximate")
		} else {
			fmt.Fprintln(os.Stderr, "Warning: placeholder embeddings were used; semantic similarity is approximate")
		}
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}

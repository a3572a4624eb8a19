package common

import (
	"context"
	"fmt"
	"path/filepath"

	"skillmatch/internal/errors"
)

// DocumentExtractor reads the text of a resume on disk
type DocumentExtractor interface {
	ExtractFile(ctx context.Context, path string) (string, error)
}

// Document is an extracted resume
type Document struct {
	Name string
	Path string
	Text string
}

// DocumentOperationFunc turns an extracted document into a result to output
type DocumentOperationFunc[Output any] func(context.Context, Document) (Output, error)

// RunDocumentCommand encapsulates the common logic for document-based CLI
// commands: validate the output target, extract the document, run the
// operation and write the formatted result.
func RunDocumentCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	path string,
	extractor DocumentExtractor,
	operation DocumentOperationFunc[Output],
) error {
	outputHandler := NewOutputHandler(logger)

	// Fail before any work if the output cannot be written
	if err := outputHandler.Prepare(cmdConfig); err != nil {
		return err
	}

	text, err := extractor.ExtractFile(ctx, path)
	if err != nil {
		return err
	}

	if logger != nil {
		logger.Info("Resume extracted",
			"file", path,
			"characters", len(text),
			"output_format", cmdConfig.OutputFormat)
	}

	result, err := operation(ctx, Document{Name: filepath.Base(path), Path: path, Text: text})
	if err != nil {
		return fmt.Errorf("failed to process %s: %w", path, err)
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}

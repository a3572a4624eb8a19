package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"skillmatch/internal/errors"
	"skillmatch/internal/formatters"
	"skillmatch/internal/utils"
)

// CommandConfig holds the output flags shared by commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
}

// ValidateOutputFormat checks format against the configured list. An empty
// list allows anything the formatter registry can render.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 || slices.Contains(supportedFormats, format) {
		return nil
	}
	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// OutputHandler renders results through the formatter registry and writes
// them to stdout or a file
type OutputHandler struct {
	registry *formatters.FormatterRegistry
	logger   *errors.Logger
	stdout   io.Writer
}

// NewOutputHandler creates an output handler that writes to os.Stdout
func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		registry: formatters.GlobalRegistry,
		logger:   logger,
		stdout:   os.Stdout,
	}
}

// Prepare fails early when the output file cannot be written
func (oh *OutputHandler) Prepare(config CommandConfig) error {
	if err := utils.PrepareOutputPath(config.OutputFile); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", config.OutputFile), err)
	}
	return nil
}

// HandleOutput formats data and writes it to the configured destination
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	if err := oh.Prepare(config); err != nil {
		return err
	}

	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile == "" {
		_, err = io.WriteString(oh.stdout, output)
		return err
	}

	if err := writeFileAtomic(config.OutputFile, output); err != nil {
		return err
	}
	if oh.logger != nil {
		oh.logger.Info("Output written successfully",
			"file", config.OutputFile, "format", config.OutputFormat)
	}
	return nil
}

// writeFileAtomic writes content next to path and renames it into place, so
// a failed run never leaves a truncated report behind
func writeFileAtomic(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", path), err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", path), err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", path), err)
	}
	return nil
}

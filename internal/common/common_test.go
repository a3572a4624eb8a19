package common

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	appErrors "skillmatch/internal/errors"
	"skillmatch/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}

	tests := []struct {
		name      string
		format    string
		supported []string
		wantErr   string
	}{
		{"json", "json", supported, ""},
		{"markdown", "markdown", supported, ""},
		{"unknown", "xml", supported, "unsupported output format 'xml'. Supported formats: [json text markdown]"},
		{"case sensitive", "JSON", supported, "unsupported output format 'JSON'. Supported formats: [json text markdown]"},
		{"empty", "", supported, "unsupported output format ''. Supported formats: [json text markdown]"},
		{"no restrictions", "xml", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supported)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

type stubExtractor struct {
	text string
	err  error
	path string
}

func (s *stubExtractor) ExtractFile(ctx context.Context, path string) (string, error) {
	s.path = path
	return s.text, s.err
}

func TestRunDocumentCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "reports", "report.txt")
	extractor := &stubExtractor{text: "python and sql"}

	var got Document
	err := RunDocumentCommand(context.Background(), nil,
		CommandConfig{OutputFile: out, OutputFormat: "text"},
		"/resumes/jane.docx", extractor,
		func(ctx context.Context, doc Document) (types.MatchReport, error) {
			got = doc
			return types.MatchReport{Source: doc.Name, Domain: "Data Engineer"}, nil
		})
	require.NoError(t, err)

	assert.Equal(t, "/resumes/jane.docx", extractor.path)
	assert.Equal(t, Document{Name: "jane.docx", Path: "/resumes/jane.docx", Text: "python and sql"}, got)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(written), "File: jane.docx")
	assert.Contains(t, string(written), "Domain: Data Engineer")
}

func TestRunDocumentCommandErrors(t *testing.T) {
	extractErr := appErrors.NewValidationError(appErrors.ErrCodeMalformedDocument, "cannot open DOCX container", nil)

	t.Run("extraction failure is returned as is", func(t *testing.T) {
		called := false
		err := RunDocumentCommand(context.Background(), nil, CommandConfig{OutputFormat: "json"},
			"bad.docx", &stubExtractor{err: extractErr},
			func(ctx context.Context, doc Document) (any, error) {
				called = true
				return nil, nil
			})
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeMalformedDocument))
		assert.False(t, called)
	})

	t.Run("operation failure is wrapped", func(t *testing.T) {
		err := RunDocumentCommand(context.Background(), nil, CommandConfig{OutputFormat: "json"},
			"ok.docx", &stubExtractor{text: "x"},
			func(ctx context.Context, doc Document) (any, error) {
				return nil, errors.New("unknown job domain: Astronaut")
			})
		assert.EqualError(t, err, "failed to process ok.docx: unknown job domain: Astronaut")
	})

	t.Run("output path is a directory", func(t *testing.T) {
		extractor := &stubExtractor{text: "x"}
		err := RunDocumentCommand(context.Background(), nil,
			CommandConfig{OutputFile: t.TempDir(), OutputFormat: "json"},
			"ok.docx", extractor,
			func(ctx context.Context, doc Document) (any, error) { return doc, nil })
		assert.Error(t, err)
		assert.Empty(t, extractor.path, "nothing is extracted when the output is invalid")
	})
}

func TestHandleOutputStdout(t *testing.T) {
	var buf bytes.Buffer
	oh := NewOutputHandler(nil)
	oh.stdout = &buf

	require.NoError(t, oh.HandleOutput([]types.DomainInfo{{Name: "Designer", Required: []string{"figma"}}},
		CommandConfig{OutputFormat: "text"}))
	assert.Equal(t, "Designer: figma\n", buf.String())
}

func TestHandleOutputReplacesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "domains.txt")
	require.NoError(t, os.WriteFile(out, []byte("stale content that is longer than the new report"), 0600))

	err := NewOutputHandler(nil).HandleOutput([]types.DomainInfo{{Name: "Designer", Required: []string{"figma"}}},
		CommandConfig{OutputFile: out, OutputFormat: "text"})
	require.NoError(t, err)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Designer: figma\n", string(written))

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestHandleOutputUnknownFormat(t *testing.T) {
	err := NewOutputHandler(nil).HandleOutput(types.MatchReport{}, CommandConfig{OutputFormat: "xml"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeInvalidFormat))
}

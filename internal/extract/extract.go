// Package extract turns an uploaded resume document into plain text.
package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"skillmatch/internal/errors"
	"skillmatch/internal/utils"

	"github.com/nguyenthenguyen/docx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

var zipMagic = []byte("PK\x03\x04")

// Extractor reads paragraph text from DOCX documents
type Extractor struct {
	maxSize int64
	office  bool
	logger  *errors.Logger
}

// NewExtractor creates an extractor. maxSize of zero disables the size check.
func NewExtractor(maxSize int64, logger *errors.Logger) *Extractor {
	return &Extractor{maxSize: maxSize, logger: logger}
}

// Extract returns the text of every body paragraph joined with newlines.
// Nothing is returned when any part of the document cannot be read.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	_, span := otel.Tracer("skillmatch.extract").Start(ctx, "extract.docx")
	defer span.End()
	span.SetAttributes(
		attribute.String("document.name", filename),
		attribute.Int("document.size", len(data)),
	)

	text, paragraphs, err := e.extract(filename, data)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		if e.logger != nil {
			e.logger.LogError(err, "Document extraction failed", "filename", filename, "size", len(data))
		}
		return "", err
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("document.paragraphs", paragraphs),
	)
	if e.logger != nil {
		e.logger.Debug("Document extracted", "filename", filename, "paragraphs", paragraphs, "characters", len(text))
	}
	return text, nil
}

func (e *Extractor) extract(filename string, data []byte) (string, int, error) {
	if !utils.IsDocx(filename) {
		return "", 0, errors.NewValidationError(errors.ErrCodeUnsupportedDocument,
			fmt.Sprintf("unsupported document type %q, upload a .docx file", utils.Ext(filename)), nil).
			WithContext("filename", filename)
	}
	if e.maxSize > 0 && int64(len(data)) > e.maxSize {
		return "", 0, errors.NewValidationError(errors.ErrCodeUnsupportedDocument,
			fmt.Sprintf("document is %s, the limit is %s", utils.FormatFileSize(int64(len(data))), utils.FormatFileSize(e.maxSize)), nil).
			WithContext("filename", filename)
	}
	if !bytes.HasPrefix(data, zipMagic) {
		return "", 0, errors.NewValidationError(errors.ErrCodeUnsupportedDocument,
			"file is not a DOCX container", nil).WithContext("filename", filename)
	}

	if e.office {
		paragraphs, err := officeParagraphs(data)
		if err == nil {
			return strings.Join(paragraphs, "\n"), len(paragraphs), nil
		}
		if e.logger != nil {
			e.logger.Debug("unioffice extraction failed, falling back to document.xml", "filename", filename, "error", err.Error())
		}
	}

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, errors.NewValidationError(errors.ErrCodeMalformedDocument,
			"cannot open DOCX container", err).WithContext("filename", filename)
	}
	defer doc.Close() //nolint:errcheck

	paragraphs, err := Paragraphs(strings.NewReader(doc.Editable().GetContent()))
	if err != nil {
		return "", 0, errors.NewValidationError(errors.ErrCodeMalformedDocument,
			"cannot parse document body", err).WithContext("filename", filename)
	}

	return strings.Join(paragraphs, "\n"), len(paragraphs), nil
}

// ExtractFile reads and extracts a document from disk
func (e *Extractor) ExtractFile(ctx context.Context, path string) (string, error) {
	if err := utils.CheckReadable(path); err != nil {
		code := errors.ErrCodeFileNotReadable
		if stderrors.Is(err, fs.ErrNotExist) {
			code = errors.ErrCodeFileNotFound
		}
		return "", errors.NewIOError(code, fmt.Sprintf("Cannot read resume: %s", path), err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable, fmt.Sprintf("Cannot read resume: %s", path), err)
	}
	return e.Extract(ctx, path, data)
}

// Paragraphs walks a word/document.xml stream and returns the text of each
// paragraph that is a direct child of the body, in document order. Paragraphs
// inside tables and text boxes are not included. Within a run, tabs become
// "\t" and breaks become "\n".
func Paragraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		stack      []xml.Name
		paragraphs []string
		current    strings.Builder
		paraDepth  int // stack depth of the open body paragraph, 0 when none
		skipDepth  int // stack depth of an ignored subtree inside the paragraph
		sawBody    bool
	)

	isWord := func(n xml.Name, local string) bool {
		return n.Space == wordNamespace && n.Local == local
	}
	parent := func() xml.Name {
		if len(stack) < 2 {
			return xml.Name{}
		}
		return stack[len(stack)-2]
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name)
			depth := len(stack)

			if isWord(t.Name, "body") {
				sawBody = true
			}
			if paraDepth == 0 {
				if isWord(t.Name, "p") && isWord(parent(), "body") {
					paraDepth = depth
					current.Reset()
				}
				continue
			}
			if skipDepth != 0 {
				continue
			}
			if isWord(t.Name, "txbxContent") || isWord(t.Name, "del") {
				skipDepth = depth
				continue
			}
			if isWord(parent(), "r") {
				switch {
				case isWord(t.Name, "tab"), isWord(t.Name, "ptab"):
					current.WriteByte('\t')
				case isWord(t.Name, "br"), isWord(t.Name, "cr"):
					current.WriteByte('\n')
				}
			}

		case xml.CharData:
			if paraDepth != 0 && skipDepth == 0 && len(stack) > 0 && isWord(stack[len(stack)-1], "t") {
				current.Write(t)
			}

		case xml.EndElement:
			depth := len(stack)
			if skipDepth == depth {
				skipDepth = 0
			}
			if paraDepth == depth {
				paragraphs = append(paragraphs, current.String())
				paraDepth = 0
			}
			stack = stack[:depth-1]
		}
	}

	if !sawBody {
		return nil, fmt.Errorf("document has no body element")
	}
	return paragraphs, nil
}

// Preview returns at most n characters of text, counted in runes
func Preview(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

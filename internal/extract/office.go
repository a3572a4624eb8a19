package extract

import (
	"bytes"
	"strings"

	"github.com/unidoc/unioffice/common/license"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/schema/soo/wml"
)

// SetOfficeLicense registers a unidoc metered key. unioffice refuses to
// open documents without one.
func SetOfficeLicense(key string) error {
	return license.SetMeteredKey(key)
}

// EnableOfficeModel makes the extractor read paragraphs through unioffice
// first. The document.xml walker still runs when unioffice fails.
func (e *Extractor) EnableOfficeModel() {
	e.office = true
}

// officeParagraphs returns the body-level paragraphs of a DOCX using the
// unioffice document model. Table cell paragraphs are dropped so the result
// matches Paragraphs.
func officeParagraphs(data []byte) ([]string, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	defer doc.Close() //nolint:errcheck

	inTable := make(map[*wml.CT_P]struct{})
	for _, table := range doc.Tables() {
		for _, row := range table.Rows() {
			for _, cell := range row.Cells() {
				for _, p := range cell.Paragraphs() {
					inTable[p.X()] = struct{}{}
				}
			}
		}
	}

	paragraphs := []string{}
	for _, p := range doc.Paragraphs() {
		if _, ok := inTable[p.X()]; ok {
			continue
		}
		var b strings.Builder
		for _, run := range p.Runs() {
			writeRun(&b, run)
		}
		paragraphs = append(paragraphs, b.String())
	}
	return paragraphs, nil
}

func writeRun(b *strings.Builder, run document.Run) {
	for _, ic := range run.X().EG_RunInnerContent {
		switch {
		case ic.T != nil:
			b.WriteString(ic.T.Content)
		case ic.Tab != nil:
			b.WriteByte('\t')
		case ic.Br != nil, ic.Cr != nil:
			b.WriteByte('\n')
		}
	}
}

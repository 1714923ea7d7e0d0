package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driven"
)

// Ensure DOCX implements the interface.
var _ driven.Extractor = (*DOCX)(nil)

// DOCX extracts paragraph text from Word documents. A .docx file is a ZIP
// archive; the text lives in word/document.xml.
type DOCX struct{}

// NewDOCX creates a DOCX extractor.
func NewDOCX() *DOCX {
	return &DOCX{}
}

// Supports reports whether the filename has a .docx extension.
func (d *DOCX) Supports(filename string) bool {
	return hasExt(filename, ".docx")
}

// Extract returns the document text, one line per paragraph.
func (d *DOCX) Extract(_ context.Context, filename string, data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a valid docx archive", domain.ErrInvalidInput, filename)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", filename, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", filename, err)
		}

		text := parseDocumentXML(content)
		if text == "" {
			return "", fmt.Errorf("%w: %s contains no text", domain.ErrInvalidInput, filename)
		}
		return text, nil
	}

	return "", fmt.Errorf("%w: %s has no word/document.xml", domain.ErrInvalidInput, filename)
}

type documentXML struct {
	Body struct {
		Paragraphs []paragraphXML `xml:"p"`
	} `xml:"body"`
}

type paragraphXML struct {
	Runs []runXML `xml:"r"`
}

type runXML struct {
	Text []textXML `xml:"t"`
}

type textXML struct {
	Content string `xml:",chardata"`
}

func parseDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	var b strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				b.WriteString(text.Content)
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Package extract pulls plain text out of uploaded tender documents.
// Supported formats: PDF, DOCX, and ZIP archives containing either.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedFormat is returned for file types the extractor cannot
// handle. Callers translate it to a 400 response.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// maxArchiveEntrySize caps the decompressed size of any single archive
// entry to keep zip bombs from exhausting memory.
const maxArchiveEntrySize = 64 << 20 // 64 MiB

// FromUpload extracts text from data based on the uploaded filename's
// extension (.pdf, .docx, .zip).
func FromUpload(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FromPDF(data)
	case ".docx":
		return FromDOCX(data)
	case ".zip":
		return FromZIP(data)
	default:
		return "", ErrUnsupportedFormat
	}
}

// FromPDF extracts text from a PDF document, one page after another.
func FromPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// docx XML shapes: we only care about paragraphs and their text runs.
type docxDocument struct {
	Body docxBody `xml:"body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"p"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []string `xml:"t"`
}

// FromDOCX extracts text from a DOCX document. DOCX is a zip container;
// the document body lives in word/document.xml.
func FromDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx container: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		raw, err := io.ReadAll(io.LimitReader(rc, maxArchiveEntrySize))
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}

		var doc docxDocument
		if err := xml.Unmarshal(raw, &doc); err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		var b strings.Builder
		for _, p := range doc.Body.Paragraphs {
			for _, r := range p.Runs {
				for _, t := range r.Text {
					b.WriteString(t)
				}
			}
			b.WriteString("\n")
		}
		return b.String(), nil
	}
	return "", errors.New("docx container has no word/document.xml")
}

// FromZIP extracts text from every supported document inside the archive,
// concatenated in archive order. Unsupported entries are skipped; the
// archive only fails when it cannot be opened at all.
func FromZIP(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}

	var b strings.Builder
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(f.Name))
		if ext != ".pdf" && ext != ".docx" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			continue
		}
		entry, err := io.ReadAll(io.LimitReader(rc, maxArchiveEntrySize))
		rc.Close()
		if err != nil {
			continue
		}

		var text string
		switch ext {
		case ".pdf":
			text, err = FromPDF(entry)
		case ".docx":
			text, err = FromDOCX(entry)
		}
		if err != nil || text == "" {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

package service

import (
	"ai_sensei_backend/internal/util"
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ExtractService turns stored source files into plain text. Dispatch is
// strictly by filename suffix; extraction is synchronous and deterministic
// with no retries — the caller decides whether to re-run the whole
// upload+extract cycle.
type ExtractService struct{}

func NewExtractService() *ExtractService {
	return &ExtractService{}
}

// supportedExtensions are the formats generation can consume. Files with
// other extensions may still be uploaded, they are just excluded from
// generation and flagged in listings.
var supportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
}

// IsSupported reports whether a filename has an extractable extension.
func IsSupported(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Extract returns the plain text of a source file. Unknown extensions fail
// with ErrUnsupportedFormat; an extraction yielding only whitespace fails
// with ErrExtractionEmpty so callers surface "no text found" instead of
// silently generating from nothing.
func (s *ExtractService) Extract(name string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	case ".txt", ".md":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s: %w", name, util.ErrExtractionEmpty)
		}
		text = string(data)
	default:
		return "", fmt.Errorf("%s: %w", name, util.ErrUnsupportedFormat)
	}

	if err != nil {
		return "", fmt.Errorf("extract %s: %w", name, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", name, util.ErrExtractionEmpty)
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return string(b), nil
}

// extractDOCX reads word/document.xml from the OpenXML container and
// gathers the <w:t> text runs, one paragraph (<w:p>) per line.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx container: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx container: word/document.xml missing")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}

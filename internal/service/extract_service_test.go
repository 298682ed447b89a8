package service

import (
	"ai_sensei_backend/internal/util"
	"archive/zip"
	"bytes"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPDF(t *testing.T, text string) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(40, 10, text)

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>`)
		xmlEscape(&body, p)
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write(body.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func xmlEscape(buf *bytes.Buffer, s string) {
	for _, r := range s {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		default:
			buf.WriteRune(r)
		}
	}
}

func TestExtractTxt(t *testing.T) {
	svc := NewExtractService()

	text, err := svc.Extract("notes.txt", []byte("Fotosyntéza je proces."))
	require.NoError(t, err)
	assert.Equal(t, "Fotosyntéza je proces.", text)
}

func TestExtractMarkdown(t *testing.T) {
	svc := NewExtractService()

	text, err := svc.Extract("notes.md", []byte("# Kapitola\n\nObsah kapitoly."))
	require.NoError(t, err)
	assert.Contains(t, text, "Obsah kapitoly.")
}

func TestExtractPDF(t *testing.T) {
	svc := NewExtractService()
	data := buildPDF(t, "Hello lesson content")

	text, err := svc.Extract("lesson.pdf", data)
	require.NoError(t, err)
	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "lesson")
}

func TestExtractDOCX(t *testing.T) {
	svc := NewExtractService()
	data := buildDOCX(t, "First paragraph", "Second paragraph")

	text, err := svc.Extract("lesson.docx", data)
	require.NoError(t, err)
	assert.Contains(t, text, "First paragraph")
	assert.Contains(t, text, "Second paragraph")
}

func TestExtractUnsupportedFormat(t *testing.T) {
	svc := NewExtractService()

	_, err := svc.Extract("diagram.png", []byte{0x89, 0x50, 0x4e, 0x47})
	assert.ErrorIs(t, err, util.ErrUnsupportedFormat)
}

func TestExtractEmptyText(t *testing.T) {
	svc := NewExtractService()

	_, err := svc.Extract("empty.txt", []byte("   \n\t "))
	assert.ErrorIs(t, err, util.ErrExtractionEmpty)
}

func TestExtractCorruptDOCX(t *testing.T) {
	svc := NewExtractService()

	_, err := svc.Extract("broken.docx", []byte("not a zip archive"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, util.ErrUnsupportedFormat)
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("a.pdf"))
	assert.True(t, IsSupported("a.DOCX"))
	assert.True(t, IsSupported("a.md"))
	assert.False(t, IsSupported("a.png"))
	assert.False(t, IsSupported("archive.zip"))
	assert.False(t, IsSupported("noextension"))
}

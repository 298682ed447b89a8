package service

import (
	"ai_sensei_backend/internal/model"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const defaultThemeColor = "#005A9C"

// renderPresentationPDF lays out one landscape page per slide: colored
// title band, up to four bullets, page counter bottom right. Czech text
// needs the cp1250 translator since core fonts are not UTF-8.
func renderPresentationPDF(slides []model.Slide, themeColor string) ([]byte, error) {
	r, g, b, err := parseHexColor(themeColor)
	if err != nil {
		r, g, b, _ = parseHexColor(defaultThemeColor)
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1250")
	pdf.SetAutoPageBreak(false, 0)

	for i, slide := range slides {
		pdf.AddPage()

		pdf.SetFillColor(r, g, b)
		pdf.Rect(0, 0, 297, 40, "F")

		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 24)
		pdf.SetXY(15, 12)
		pdf.CellFormat(267, 16, tr(slide.Title), "", 0, "L", false, 0, "")

		pdf.SetTextColor(40, 40, 40)
		pdf.SetFont("Helvetica", "", 16)
		y := 60.0
		for _, bullet := range slide.Content {
			pdf.SetXY(20, y)
			pdf.MultiCell(257, 9, tr("• "+bullet), "", "L", false)
			y = pdf.GetY() + 6
		}

		pdf.SetTextColor(130, 130, 130)
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(260, 198)
		pdf.CellFormat(25, 6, fmt.Sprintf("%d / %d", i+1, len(slides)), "", 0, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func parseHexColor(s string) (int, int, int, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bad color %q", s)
	}
	return int(v >> 16), int(v >> 8 & 0xff), int(v & 0xff), nil
}

// Package extractor pulls plain text out of statement PDFs, one string per
// page. Adapters do all interpretation; this package only decodes.
package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Pages extracts the text of every page. Fails when the PDF cannot be
// decoded or yields no readable text (image-based or custom-font files).
func Pages(data []byte) (pages []string, err error) {
	// The pdf library panics on some malformed files; turn that into an error.
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("pdf extraction panicked: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := pageText(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}

	if !isReadable(pages) {
		return nil, fmt.Errorf("no readable text extracted; the PDF may be image-based or use custom font encodings")
	}
	return pages, nil
}

// FirstPage extracts only the first page, for cheap format detection.
func FirstPage(data []byte) (string, error) {
	pages, err := Pages(data)
	if err != nil {
		return "", err
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("empty pdf")
	}
	return pages[0], nil
}

// pageText joins the page's positioned text rows into newline-separated
// lines, preserving reading order.
func pageText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, row := range rows {
		var line strings.Builder
		for _, word := range row.Content {
			line.WriteString(word.S)
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// isReadable guards against identity-encoded fonts decoding into garbage:
// the text must be non-trivial and mostly plain characters.
func isReadable(pages []string) bool {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if r < 0x250 || r == ' ' { // Latin incl. Hungarian accents
				readable++
			}
		}
	}
	if total < 50 {
		return false
	}
	return float64(readable)/float64(total) > 0.6
}

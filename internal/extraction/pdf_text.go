package extraction

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

//go:generate mockgen -source=pdf_text.go -destination=pdf_text_mock.go -package=extraction

// TextSource turns a PDF document into plain text, one line per visual row.
type TextSource interface {
	ExtractText(ctx context.Context, r io.ReaderAt, size int64) (string, error)
}

const defaultPageSeparator = "\n"

// PDFTextReader extracts text with github.com/ledongthuc/pdf. Each page is
// rebuilt row by row so a label and its figure printed in separate columns
// end up on the same line.
type PDFTextReader struct {
	// PageSeparator is placed between pages. Defaults to a newline.
	PageSeparator string
	// MaxTextBytes caps the returned text. Zero means unlimited.
	MaxTextBytes int
}

// NewPDFTextReader creates a reader with the given page separator and text cap.
func NewPDFTextReader(pageSeparator string, maxTextBytes int) *PDFTextReader {
	if pageSeparator == "" {
		pageSeparator = defaultPageSeparator
	}
	return &PDFTextReader{PageSeparator: pageSeparator, MaxTextBytes: maxTextBytes}
}

// ExtractText reads every page in order and joins them with PageSeparator.
// Panics raised by the PDF library on malformed input are returned as errors.
func (p *PDFTextReader) ExtractText(ctx context.Context, r io.ReaderAt, size int64) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[pdf-text] recovered from panic: %v", rec)
			text = ""
			err = fmt.Errorf("panic during PDF parsing: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open PDF reader: %w", err)
	}

	sep := p.PageSeparator
	if sep == "" {
		sep = defaultPageSeparator
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	total := 0

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := pageRowsText(page)
		if err != nil {
			return "", fmt.Errorf("read page %d: %w", i, err)
		}
		pages = append(pages, pageText)

		total += len(pageText) + len(sep)
		if p.MaxTextBytes > 0 && total >= p.MaxTextBytes {
			log.Printf("[pdf-text] text cap of %d bytes reached at page %d of %d", p.MaxTextBytes, i, numPages)
			break
		}
	}

	text = strings.Join(pages, sep)
	if p.MaxTextBytes > 0 && len(text) > p.MaxTextBytes {
		text = truncateAtLine(text, p.MaxTextBytes)
	}
	return text, nil
}

// pageRowsText renders a page as lines of words, top row first.
func pageRowsText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, word := range row.Content {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(word.S)
		}
	}
	return b.String(), nil
}

// truncateAtLine cuts text to at most limit bytes, backing up to the last
// complete line so a figure is never split.
func truncateAtLine(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	if idx := strings.LastIndexByte(cut, '\n'); idx > 0 {
		return cut[:idx]
	}
	return cut
}

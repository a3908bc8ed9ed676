package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrExtractionFailed is returned when a PDF cannot be parsed at all.
var ErrExtractionFailed = errors.New("extraction failed")

// Func extracts per-page text from raw document bytes.
// It is injected into the upload handler so tests can substitute a fake.
type Func func(data []byte) ([]string, error)

// ExtractPages extracts plain text from raw PDF bytes, one string per page
// in page order. Pages without extractable text come back as empty strings;
// the caller decides whether an all-empty document is an error.
func ExtractPages(data []byte) (pages []string, err error) {
	// The parser panics on some malformed files; surface that as an error.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", ErrExtractionFailed, r)
		}
	}()
	return extractPages(data)
}

func extractPages(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrExtractionFailed)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrExtractionFailed)
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page degrades to empty rather than
			// failing the whole document.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return pages, nil
}

package extraction

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Config holds configuration for the extractor.
type Config struct {
	// Catalog to match against. Nil selects DefaultCatalog.
	Catalog *Catalog
	// PageSeparator and MaxTextBytes configure the default PDF text source.
	PageSeparator string
	MaxTextBytes  int
}

// Extractor validates input documents, obtains their text and resolves the
// catalog against it.
type Extractor struct {
	catalog *Catalog
	source  TextSource
}

// NewExtractor creates an extractor. A nil source selects the
// ledongthuc/pdf backed PDFTextReader.
func NewExtractor(cfg Config, source TextSource) *Extractor {
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if source == nil {
		source = NewPDFTextReader(cfg.PageSeparator, cfg.MaxTextBytes)
	}
	return &Extractor{catalog: catalog, source: source}
}

// Catalog returns the catalog the extractor matches against.
func (e *Extractor) Catalog() *Catalog {
	return e.catalog
}

// ExtractFile extracts the catalog's line-items from the PDF at path and
// returns them as a single-row table. The path is validated before any
// content is read; the file is closed before returning.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*Table, error) {
	result, err := e.extractFile(ctx, path)
	if err != nil {
		return nil, err
	}
	table := NewTable(e.catalog)
	table.Append(path, result)
	return table, nil
}

func (e *Extractor) extractFile(ctx context.Context, path string) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, newFileNotFound(path, nil)
		}
		return Result{}, newFileNotFound(path, err)
	}
	if !info.Mode().IsRegular() {
		return Result{}, &ExtractionError{Code: ErrFileNotFound, Message: "not a regular file", Path: path}
	}
	if !hasPDFExtension(path) {
		return Result{}, newInvalidFileType(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, newPDFReadFailure(path, err)
	}
	defer f.Close()

	text, err := e.source.ExtractText(ctx, f, info.Size())
	if err != nil {
		return Result{}, newPDFReadFailure(path, err)
	}

	result := e.catalog.ParseFinancialData(text)
	log.Printf("[extractor] %s: matched %d/%d categories", filepath.Base(path), countMatched(result), result.Len())
	return result, nil
}

// ExtractBytes runs the same pipeline over an in-memory document, e.g. an
// upload. filename is only used for the extension check and messages.
func (e *Extractor) ExtractBytes(ctx context.Context, filename string, data []byte) (*Table, error) {
	if !hasPDFExtension(filename) {
		return nil, newInvalidFileType(filename)
	}
	if len(data) == 0 {
		return nil, &ExtractionError{Code: ErrPDFReadFailure, Message: "empty document", Path: filename}
	}

	text, err := e.source.ExtractText(ctx, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, newPDFReadFailure(filename, err)
	}

	result := e.catalog.ParseFinancialData(text)
	log.Printf("[extractor] %s: matched %d/%d categories", filename, countMatched(result), result.Len())

	table := NewTable(e.catalog)
	table.Append(filename, result)
	return table, nil
}

// ExtractFiles converts a batch of PDFs into one table with a row per file
// that succeeded. Errors are returned per failed file, in input order.
func (e *Extractor) ExtractFiles(ctx context.Context, paths []string) (*Table, []error) {
	table := NewTable(e.catalog)
	var errs []error

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := e.extractFile(ctx, path)
		if err != nil {
			log.Printf("[extractor] skipping %s: %v", path, err)
			errs = append(errs, err)
			continue
		}
		table.Append(path, result)
	}

	return table, errs
}

// ParseText resolves the catalog against already-extracted text.
func (e *Extractor) ParseText(text string) Result {
	return e.catalog.ParseFinancialData(text)
}

func hasPDFExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

func countMatched(r Result) int {
	n := 0
	for _, v := range r.values {
		if v != 0 {
			n++
		}
	}
	return n
}

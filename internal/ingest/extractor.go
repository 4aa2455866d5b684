// Package ingest extracts text from uploaded documents. Rich formats are
// delegated to an external parser; the core only reads text-like files.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rfpforge/rfpforge/internal/domain"
)

// ParseFunc converts a binary document (pdf, docx, xlsx) into plain text.
type ParseFunc func(ctx context.Context, path string) (string, error)

var binaryExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
}

// FileExtractor reads text and markdown files directly and hands binary
// document formats to the configured parser.
type FileExtractor struct {
	parse ParseFunc
}

// NewFileExtractor builds an extractor. parse may be nil, in which case
// binary document formats fail extraction.
func NewFileExtractor(parse ParseFunc) *FileExtractor {
	return &FileExtractor{parse: parse}
}

// Extract returns the document text. Any failure is an IngestionError,
// which is fatal to the request that attached the file.
func (e *FileExtractor) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if binaryExtensions[ext] {
		if e.parse == nil {
			return "", &domain.IngestionError{Path: path, Err: fmt.Errorf("no parser configured for %s files", ext)}
		}
		text, err := e.parse(ctx, path)
		if err != nil {
			return "", &domain.IngestionError{Path: path, Err: err}
		}
		return text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &domain.IngestionError{Path: path, Err: err}
	}
	return string(data), nil
}

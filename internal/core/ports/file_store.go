package ports

import (
	"context"
	"io"
)

// File store categories for uploaded artifacts.
const (
	FileCategorySlides  = "slides"
	FileCategoryReports = "reports"
)

// FileStore persists uploaded artifacts (slide images, microbiology PDFs).
type FileStore interface {
	// Save streams r into the store under the given category, returning the
	// stored path. The original filename is used only for its extension.
	Save(ctx context.Context, category, filename string, r io.Reader) (string, error)
	// Open returns a reader for a previously stored path.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Remove deletes a stored file. Removing a missing file is not an error.
	Remove(ctx context.Context, path string) error
}

// Package storage persists uploaded artifacts on the local filesystem.
// Stored paths are relative to the root directory, so the root can move
// between environments without rewriting case documents.
package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DiskStore writes files under root as <category>/<yyyy>/<mm>/<dd>/<uuid><ext>.
// The date prefix keeps directory fan-out bounded as uploads accumulate.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed and returns the store.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Save(ctx context.Context, category, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	rel := filepath.Join(
		category,
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()),
		uuid.NewString()+sanitizeExt(filename),
	)

	abs := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(abs)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(abs)
		return "", fmt.Errorf("close upload: %w", err)
	}

	return filepath.ToSlash(rel), nil
}

func (s *DiskStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(abs)
}

func (s *DiskStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	abs, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stored file: %w", err)
	}
	return nil
}

// resolve maps a stored relative path back to disk, refusing anything that
// escapes the root.
func (s *DiskStore) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fs.ErrNotExist
	}
	return filepath.Join(s.root, clean), nil
}

// sanitizeExt keeps only a plausible file extension from the client-supplied
// name; everything else about the name is discarded.
func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ext == "" || len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}

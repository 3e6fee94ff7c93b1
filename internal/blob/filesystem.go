package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the path under which the server exposes filesystem
// blobs via a static file handler.
const URLPrefix = "/uploads/"

// FileStore keeps blobs on the local filesystem under
// <root>/<domain>/<itemID>/<uuid>-<filename> and returns URLs below
// /uploads/ for the server to serve statically. Used in development.
type FileStore struct {
	root string
}

// NewFileStore creates a filesystem blob store rooted at root, creating
// the directory if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Root returns the directory served under /uploads/.
func (f *FileStore) Root() string { return f.root }

// Upload writes the blob atomically (temp file + rename) and returns
// its /uploads/ URL.
func (f *FileStore) Upload(_ context.Context, domain, itemID, filename string, r io.Reader) (string, error) {
	key := path.Join(domain, itemID, uuid.New().String()+"-"+sanitizeFilename(filename))
	destPath := filepath.Join(f.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create blob directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return URLPrefix + key, nil
}

// Delete removes the blob file behind a /uploads/ URL.
func (f *FileStore) Delete(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, URLPrefix)
	if !ok || key == "" || strings.Contains(key, "..") {
		return fmt.Errorf("not a filesystem blob url: %q", url)
	}

	if err := os.Remove(filepath.Join(f.root, filepath.FromSlash(key))); err != nil {
		return fmt.Errorf("deleting blob %s: %w", key, err)
	}
	return nil
}

// Ping verifies the uploads directory is accessible.
func (f *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(f.root)
	if err != nil {
		return fmt.Errorf("uploads directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("uploads path is not a directory: %s", f.root)
	}
	return nil
}

func (f *FileStore) Backend() string { return "filesystem" }

// Compile-time check that FileStore implements the Store interface
var _ Store = (*FileStore)(nil)

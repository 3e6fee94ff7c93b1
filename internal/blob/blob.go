// Package blob stores uploaded record images and hands back the public
// URL the content records point at. Records never embed image bytes,
// only URLs; replacing an image uploads the new blob first and deletes
// the old one best-effort.
package blob

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// Store is the image blob backend interface.
type Store interface {
	// Upload stores the blob and returns its public URL. domain and
	// itemID namespace the object under the record it belongs to.
	Upload(ctx context.Context, domain, itemID, filename string, r io.Reader) (string, error)

	// Delete removes the blob at the given public URL. Callers treat
	// deletion as best-effort; an error never blocks the record
	// operation that triggered it.
	Delete(ctx context.Context, url string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Backend returns a short backend name for the health endpoint.
	Backend() string
}

// sanitizeFilename reduces an uploaded filename to a safe single path
// element, falling back to "upload" when nothing usable remains.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, name)
	name = strings.Trim(name, ".-")
	if name == "" {
		return "upload"
	}
	return name
}

package filestorage

import "errors"

// ErrInvalidPath is returned for paths that escape the storage root
var ErrInvalidPath = errors.New("invalid storage path")

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveBytes stores data under relPath and returns its public URL
	SaveBytes(relPath string, data []byte) (string, error)

	// DeleteFile removes a file given its public URL or relative path.
	// Missing files are not an error.
	DeleteFile(fileURL string) error

	// URLFor returns the public URL of relPath
	URLFor(relPath string) string
}

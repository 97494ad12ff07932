package filestorage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yigit/academy/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // Public URL prefix the root directory is served under
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is created when missing. baseURL is the prefix the directory is served at, e.g. http://host/uploads.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// physicalPath maps a relative path inside the store onto disk, rejecting traversal
func (ls *LocalStorage) physicalPath(relPath string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(relPath))
	if clean == "/" {
		return "", ErrInvalidPath
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// SaveBytes writes data to relPath, creating parent directories
func (ls *LocalStorage) SaveBytes(relPath string, data []byte) (string, error) {
	dstPath, err := ls.physicalPath(relPath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	if err := os.WriteFile(dstPath, data, 0o644); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write file")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	url := ls.URLFor(relPath)
	logger.Info().Str("path", dstPath).Str("url", url).Int("bytes", len(data)).Msg("File saved successfully")
	return url, nil
}

// URLFor returns the public URL of relPath
func (ls *LocalStorage) URLFor(relPath string) string {
	return ls.baseURL + "/" + strings.TrimPrefix(filepath.ToSlash(relPath), "/")
}

// DeleteFile removes a file from the storage filesystem.
// It accepts either the public URL returned by SaveBytes or a path relative to the root.
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	if fileURL == "" {
		return nil
	}

	relPath := strings.TrimPrefix(fileURL, ls.baseURL)
	if relPath == fileURL && strings.Contains(fileURL, "://") {
		// URL from another store; nothing of ours to delete
		return nil
	}

	physicalPath, err := ls.physicalPath(relPath)
	if err != nil {
		return fmt.Errorf("%w: %s", err, fileURL)
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

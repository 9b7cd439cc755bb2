// Package archive keeps earlier output files instead of overwriting them.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/snonux/polyglot/internal"
)

// Dir is the directory, next to the output file, that receives archived files
const Dir = "archive"

// ArchiveExisting moves an existing file at path into the archive directory
// beside it, adding a timestamp to its name. It returns the new location, or
// an empty string when there was nothing to archive.
func ArchiveExisting(path string, now time.Time) (string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("cannot archive directory %s", path)
	}

	archiveDir := filepath.Join(filepath.Dir(path), Dir)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	ext := filepath.Ext(path)
	stem := internal.SanitizeFilename(strings.TrimSuffix(filepath.Base(path), ext))

	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, now.Format("20060102-150405"), ext))
	if _, err := os.Stat(archivePath); err == nil {
		// Add microseconds to make it unique
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, now.Format("20060102-150405.000000"), ext))
	}

	if err := os.Rename(path, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", path, err)
	}
	return archivePath, nil
}

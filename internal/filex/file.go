// Package filex holds small filesystem helpers for the client: locating the
// local state directory and loading a file to upload.
package filex

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/common"
)

// EnsureSubdDir creates dirName under the working directory if needed and
// returns its absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// Load reads path into memory. The content type is sniffed from the bytes,
// not taken from the extension, so a renamed file is reported as what it is.
func Load(path string) (models.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.File{}, fmt.Errorf("read %s: %w", path, err)
	}

	return models.File{
		Name:        filepath.Base(path),
		ContentType: common.NormalizeContentType(mimetype.Detect(data).String()),
		Data:        data,
	}, nil
}

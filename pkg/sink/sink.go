// Package sink writes generated grammar documents into a target directory.
package sink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrUnsafePath is returned when the relative output path is absolute or escapes the target.
var ErrUnsafePath = errors.New("output path must stay inside the target directory")

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Path returns the destination of relPath under targetDir.
func Path(targetDir, relPath string) (string, error) {
	if relPath == "" || !filepath.IsLocal(relPath) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, relPath)
	}

	return filepath.Join(targetDir, relPath), nil
}

// Write stores data at targetDir/relPath, creating parent directories. The
// file is written to a temporary sibling and renamed into place so readers
// never observe a partial grammar. It returns the written path.
func Write(targetDir, relPath string, data []byte) (string, error) {
	dest, err := Path(targetDir, relPath)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(dest)

	err = os.MkdirAll(dir, dirPerm)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file in %s: %w", dir, err)
	}

	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		tmp.Close()
		os.Remove(tmpName)

		return cause
	}

	_, err = tmp.Write(data)
	if err != nil {
		return "", cleanup(fmt.Errorf("write %s: %w", tmpName, err))
	}

	err = tmp.Chmod(filePerm)
	if err != nil {
		return "", cleanup(fmt.Errorf("chmod %s: %w", tmpName, err))
	}

	err = tmp.Close()
	if err != nil {
		os.Remove(tmpName)

		return "", fmt.Errorf("close %s: %w", tmpName, err)
	}

	err = os.Rename(tmpName, dest)
	if err != nil {
		os.Remove(tmpName)

		return "", fmt.Errorf("rename %s to %s: %w", tmpName, dest, err)
	}

	return dest, nil
}

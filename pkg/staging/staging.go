// Package staging copies an extension skeleton into a fresh target directory
// before a grammar is written into it.
package staging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Sentinel staging errors.
var (
	ErrSourceMissing      = errors.New("staging source does not exist")
	ErrSourceNotDirectory = errors.New("staging source is not a directory")
	ErrTargetExists       = errors.New("staging target already exists")
	ErrTargetInsideSource = errors.New("staging target is inside the source")
)

// Options control [Copy].
type Options struct {
	// Overwrite allows copying into an existing target, replacing files with the same name.
	Overwrite bool
}

// Stats summarizes a finished copy.
type Stats struct {
	Files    int
	Dirs     int
	Symlinks int
	Bytes    uint64
}

// Copy recursively copies the directory src to dst. Directories, regular
// files and symlinks are copied with their permission bits; other file types
// are skipped. The context is checked between entries.
func Copy(ctx context.Context, src, dst string, opts Options) (Stats, error) {
	var stats Stats

	srcInfo, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, fmt.Errorf("%w: %s", ErrSourceMissing, src)
		}

		return stats, fmt.Errorf("stat %s: %w", src, err)
	}

	if !srcInfo.IsDir() {
		return stats, fmt.Errorf("%w: %s", ErrSourceNotDirectory, src)
	}

	err = checkTarget(src, dst, opts)
	if err != nil {
		return stats, err
	}

	err = filepath.WalkDir(src, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		ctxErr := ctx.Err()
		if ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			return fmt.Errorf("relative path for %s: %w", path, relErr)
		}

		target := filepath.Join(dst, rel)

		return copyEntry(path, target, entry, &stats)
	})
	if err != nil {
		return stats, fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}

	return stats, nil
}

func checkTarget(src, dst string, opts Options) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", src, err)
	}

	absDst, err := filepath.Abs(dst)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dst, err)
	}

	rel, err := filepath.Rel(absSrc, absDst)
	if err == nil && filepath.IsLocal(rel) {
		return fmt.Errorf("%w: %s", ErrTargetInsideSource, dst)
	}

	_, statErr := os.Lstat(dst)
	if statErr == nil && !opts.Overwrite {
		return fmt.Errorf("%w: %s", ErrTargetExists, dst)
	}

	if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", dst, statErr)
	}

	return nil
}

func copyEntry(path, target string, entry fs.DirEntry, stats *Stats) error {
	info, err := entry.Info()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	switch mode := info.Mode(); {
	case mode.IsDir():
		err = os.MkdirAll(target, mode.Perm()|0o700)
		if err != nil {
			return fmt.Errorf("create directory %s: %w", target, err)
		}

		stats.Dirs++
	case mode&fs.ModeSymlink != 0:
		err = copySymlink(path, target)
		if err != nil {
			return err
		}

		stats.Symlinks++
	case mode.IsRegular():
		written, copyErr := copyFile(path, target, mode.Perm())
		if copyErr != nil {
			return copyErr
		}

		stats.Files++
		stats.Bytes += uint64(written)
	}

	return nil
}

func copySymlink(path, target string) error {
	link, err := os.Readlink(path)
	if err != nil {
		return fmt.Errorf("read link %s: %w", path, err)
	}

	removeErr := os.Remove(target)
	if removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
		return fmt.Errorf("replace %s: %w", target, removeErr)
	}

	err = os.Symlink(link, target)
	if err != nil {
		return fmt.Errorf("create link %s: %w", target, err)
	}

	return nil
}

func copyFile(path, target string, perm fs.FileMode) (int64, error) {
	in, err := os.Open(path) //nolint:gosec // path comes from walking the operator-chosen source.
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) //nolint:gosec // target is under dst.
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", target, err)
	}

	written, err := io.Copy(out, in)
	if err != nil {
		out.Close()

		return written, fmt.Errorf("write %s: %w", target, err)
	}

	err = out.Close()
	if err != nil {
		return written, fmt.Errorf("close %s: %w", target, err)
	}

	return written, nil
}

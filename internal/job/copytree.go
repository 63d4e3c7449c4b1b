package job

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"cmdjob/internal"
)

// CopyTree copies the contents of src into dst, creating dst if needed.
func CopyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", dst, err)
	}
	return out.Close()
}

// CountEntries counts the files and directories under root, root excluded.
func CountEntries(root string) (files, dirs int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			dirs++
		} else {
			files++
		}
		return nil
	})
	return files, dirs, err
}

// CopyAndVerify copies src into dst and compares file/dir counts afterwards.
// dst is recreated empty first so reruns never verify against stale content.
func CopyAndVerify(src, dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("reset %s: %w", dst, err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if err := CopyTree(src, dst); err != nil {
		return err
	}

	srcFiles, srcDirs, err := CountEntries(src)
	if err != nil {
		return err
	}
	dstFiles, dstDirs, err := CountEntries(dst)
	if err != nil {
		return err
	}
	if srcFiles != dstFiles || srcDirs != dstDirs {
		return fmt.Errorf("%w: src %d files/%d dirs, dst %d files/%d dirs",
			internal.ErrCopyMismatch, srcFiles, srcDirs, dstFiles, dstDirs)
	}
	return nil
}

package job

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ZipJobDir zips dir (deflate) into its parent as <name>.zip and returns the
// zip path. Entry names are rooted at the folder name so the archive unpacks
// into a single directory.
func ZipJobDir(dir string) (string, error) {
	base := filepath.Base(dir)
	zipPath := filepath.Join(filepath.Dir(dir), base+".zip")

	out, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("create zip %s: %w", zipPath, err)
	}
	defer out.Close()

	w := zip.NewWriter(out)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		fw, err := w.CreateHeader(&zip.FileHeader{
			Name:   filepath.ToSlash(filepath.Join(base, rel)),
			Method: zip.Deflate,
		})
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(fw, in)
		return err
	})
	if err != nil {
		w.Close()
		return "", fmt.Errorf("zip %s: %w", dir, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close zip %s: %w", zipPath, err)
	}
	return zipPath, nil
}

// MoveZip relocates the zip into outputRoot; falls back to copy+remove when
// rename crosses filesystems.
func MoveZip(zipPath, outputRoot string) (string, error) {
	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return "", fmt.Errorf("create output root %s: %w", outputRoot, err)
	}
	target := filepath.Join(outputRoot, filepath.Base(zipPath))
	if err := os.Rename(zipPath, target); err == nil {
		return target, nil
	}
	if err := copyFile(zipPath, target); err != nil {
		return "", err
	}
	if err := os.Remove(zipPath); err != nil {
		return "", fmt.Errorf("remove %s: %w", zipPath, err)
	}
	return target, nil
}

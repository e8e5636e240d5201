package builder

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// outputFile is a generated file waiting to be written.
type outputFile struct {
	path string // slash-separated, relative to the output root
	data []byte
}

// resetOutput removes dir and recreates it empty.
func resetOutput(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%w: failed to clean %s: %w", ErrOutputUnwritable, dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create %s: %w", ErrOutputUnwritable, dir, err)
	}
	return nil
}

func writeFile(root string, f outputFile) error {
	dest := filepath.Join(root, filepath.FromSlash(f.path))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputUnwritable, err)
	}
	if err := os.WriteFile(dest, f.data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputUnwritable, err)
	}
	return nil
}

// copyFile copies src to dest byte for byte, creating parent directories.
func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// copyStatic copies every visible file under staticDir into outputDir and
// returns how many were copied. A missing staticDir copies nothing.
func copyStatic(staticDir, outputDir string) (int, error) {
	if staticDir == "" {
		return 0, nil
	}
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		return 0, nil
	}

	copied := 0
	err := filepath.WalkDir(staticDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == staticDir {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(staticDir, p)
		if err != nil {
			return err
		}
		if err := copyFile(p, filepath.Join(outputDir, rel)); err != nil {
			return fmt.Errorf("%w: %w", ErrOutputUnwritable, err)
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("failed to copy static files from %s: %w", staticDir, err)
	}
	return copied, nil
}

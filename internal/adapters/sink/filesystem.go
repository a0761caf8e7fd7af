package sink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"3tcapital/ms_service_documents/internal/core/document"
)

// Directory archives files into a local directory. Files appear atomically:
// they are written to a temporary name and renamed once complete.
type Directory struct {
	dir string
}

// NewDirectory creates a directory sink rooted at dir.
func NewDirectory(dir string) *Directory {
	return &Directory{dir: dir}
}

func (d *Directory) Name() string { return "directory" }

// Store writes the file and returns its absolute path. An existing file
// with the same name is replaced.
func (d *Directory) Store(ctx context.Context, file document.File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if file.Name == "" || file.Name != filepath.Base(file.Name) {
		return "", fmt.Errorf("invalid file name %q", file.Name)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	tmp, err := os.CreateTemp(d.dir, "."+file.Name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(file.Bytes); err != nil {
		return "", fmt.Errorf("write %s: %w", file.Name, err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("sync %s: %w", file.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", file.Name, err)
	}
	// Last chance to honour cancellation before the file becomes visible.
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(d.dir, file.Name)
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("rename %s: %w", file.Name, err)
	}
	committed = true

	abs, err := filepath.Abs(target)
	if err != nil {
		return target, nil
	}
	return abs, nil
}

// Remove deletes a file previously returned by Store. Locations outside the
// directory are refused; a file that is already gone is not an error.
func (d *Directory) Remove(_ context.Context, location string) error {
	root, err := filepath.Abs(d.dir)
	if err != nil {
		return fmt.Errorf("resolve archive dir: %w", err)
	}
	target, err := filepath.Abs(location)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", location, err)
	}
	if rel, err := filepath.Rel(root, target); err != nil || rel == "." || strings.HasPrefix(rel, "..") || strings.ContainsRune(rel, filepath.Separator) {
		return fmt.Errorf("refusing to remove %q outside %s", location, root)
	}

	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", filepath.Base(target), err)
	}
	return nil
}

package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// TempFiles holds uploaded recordings between scoring and saving.
type TempFiles struct {
	dir string
}

func NewTempFiles(dir string) (*TempFiles, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &TempFiles{dir: dir}, nil
}

// Save copies r into a new uuid-named file keeping ext and returns its name.
func (t *TempFiles) Save(r io.Reader, ext string) (string, error) {
	ext = strings.ToLower(filepath.Ext("x" + ext))
	name := uuid.NewString() + ext
	f, err := os.Create(filepath.Join(t.dir, name))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return name, nil
}

// Read returns the whole content of the temp file called name.
func (t *TempFiles) Read(name string) ([]byte, error) {
	path, err := t.path(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Remove deletes the temp file; a missing file is not an error.
func (t *TempFiles) Remove(name string) error {
	path, err := t.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// path accepts only names Save hands out: a uuid plus an optional extension.
func (t *TempFiles) path(name string) (string, error) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if _, err := uuid.Parse(stem); err != nil || len(stem) != len(uuid.Nil.String()) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return safeJoin(t.dir, name)
}

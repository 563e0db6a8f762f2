package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrDocumentMissing is returned by a Medium when no document has been written yet.
var ErrDocumentMissing = errors.New("document missing")

// Medium persists whole named documents. Every Save replaces the document.
type Medium interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
}

// FileMedium stores each document as <dir>/<name>.json.
type FileMedium struct {
	dir string
}

// NewFileMedium creates a FileMedium rooted at dir, creating the directory if needed.
func NewFileMedium(dir string) (*FileMedium, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &FileMedium{dir: dir}, nil
}

func (m *FileMedium) path(name string) string {
	return filepath.Join(m.dir, name+".json")
}

// Load reads a document from disk.
func (m *FileMedium) Load(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(m.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrDocumentMissing
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// Save writes a document through a temp file and rename so readers never see a torn write.
func (m *FileMedium) Save(_ context.Context, name string, data []byte) error {
	tmp, err := os.CreateTemp(m.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmpName, m.path(name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

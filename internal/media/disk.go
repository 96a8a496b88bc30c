package media

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Backend abstracts the object storage the coordinator writes to.
type Backend interface {
	// Store writes data under a fresh temporary id and returns it.
	Store(data []byte, category, ext string) (tempID string, err error)
	// Finalize renames a stored object to its persistent id and returns the
	// final path. The persistent id is only known after the DB insert.
	Finalize(category, tempID, finalID, ext string) (string, error)
	Delete(category, id, ext string) error
}

// DiskBackend stores objects under base/<category>/<id>.<ext>.
type DiskBackend struct {
	base string
}

func NewDiskBackend(base string) (*DiskBackend, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &DiskBackend{base: base}, nil
}

func (b *DiskBackend) path(category, id, ext string) string {
	return filepath.Join(b.base, category, id+"."+ext)
}

func (b *DiskBackend) Store(data []byte, category, ext string) (string, error) {
	if err := os.MkdirAll(filepath.Join(b.base, category), 0o755); err != nil {
		return "", err
	}
	tempID := "tmp-" + uuid.NewString()
	if err := os.WriteFile(b.path(category, tempID, ext), data, 0o644); err != nil {
		return "", err
	}
	return tempID, nil
}

func (b *DiskBackend) Finalize(category, tempID, finalID, ext string) (string, error) {
	final := b.path(category, finalID, ext)
	if err := os.Rename(b.path(category, tempID, ext), final); err != nil {
		return "", err
	}
	return final, nil
}

func (b *DiskBackend) Delete(category, id, ext string) error {
	err := os.Remove(b.path(category, id, ext))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore persists assets under two local directory roots.
type DiskStore struct {
	publicRoot  string
	managedRoot string
}

// NewDiskStore creates a DiskStore over the given roots.
func NewDiskStore(publicRoot, managedRoot string) *DiskStore {
	return &DiskStore{publicRoot: publicRoot, managedRoot: managedRoot}
}

// Write stores the payload at {root}/{path}, overwriting any existing file.
func (s *DiskStore) Write(location Location, path string, data io.Reader) error {
	root, err := s.rootFor(location)
	if err != nil {
		return err
	}

	full := filepath.Join(root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	out, err := os.Create(full)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, data); err != nil {
		out.Close()
		os.Remove(full)
		return err
	}

	return out.Close()
}

// Read opens the stored file for reading.
func (s *DiskStore) Read(location Location, path string) (io.ReadCloser, error) {
	root, err := s.rootFor(location)
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(root, filepath.FromSlash(path)))
}

// Delete removes the stored file. A missing file is not an error.
func (s *DiskStore) Delete(location Location, path string) error {
	root, err := s.rootFor(location)
	if err != nil {
		return err
	}

	full := filepath.Join(root, filepath.FromSlash(path))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *DiskStore) rootFor(location Location) (string, error) {
	switch location {
	case LocationPublic:
		return s.publicRoot, nil
	case LocationManaged:
		return s.managedRoot, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLocation, string(location))
	}
}

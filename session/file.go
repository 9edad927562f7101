package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFileName is the credentials file created under the user config dir.
const DefaultFileName = "credentials.json"

// File stores entries as one JSON object on disk. Every write replaces the
// file through a rename so a crash never leaves a torn document behind.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a file-backed storage at path. An empty path resolves to
// <user config dir>/veta/credentials.json.
func NewFile(path string) (*File, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("session: resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "veta", DefaultFileName)
	}
	return &File{path: path}, nil
}

// Path returns the location of the backing file.
func (f *File) Path() string { return f.path }

func (f *File) Get(_ context.Context, key Key) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (f *File) Put(_ context.Context, entries map[Key]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return err
	}
	for k, v := range entries {
		if v == "" {
			delete(values, k)
			continue
		}
		values[k] = v
	}
	return f.write(values)
}

func (f *File) Delete(_ context.Context, keys ...Key) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(values, k)
	}
	return f.write(values)
}

func (f *File) read() (map[Key]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[Key]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", f.path, err)
	}
	values := make(map[Key]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", f.path, err)
	}
	return values, nil
}

func (f *File) write(values map[Key]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("session: create dir: %w", err)
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("session: create temp file: %w", err)
	}
	//nolint:errcheck // best-effort cleanup; a successful rename makes this a no-op
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("session: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("session: replace %s: %w", f.path, err)
	}
	return nil
}

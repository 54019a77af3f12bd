// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

package session

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/quizrush/quizrush/internal/xdg"
)

// sessionFileMode keeps the token readable by the owning user only.
const sessionFileMode fs.FileMode = 0o600

// FileStore is a Store backed by a YAML file. Every write replaces the file
// through a rename, so readers see either the old or the new contents.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore at path. The file is created on first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, oops.Code(CodeSessionStoreFailed).Errorf("session file path is required")
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Get implements Store.
func (f *FileStore) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set implements Store.
func (f *FileStore) Set(key, value string) error {
	return f.SetAll(map[string]string{key: value})
}

// SetAll implements BatchSetter.
func (f *FileStore) SetAll(values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.read()
	if err != nil {
		return err
	}
	maps.Copy(current, values)
	return f.write(current)
}

// Remove implements Store. The file is deleted once it holds no keys.
func (f *FileStore) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := current[key]; !ok {
		return nil
	}
	delete(current, key)
	if len(current) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return oops.Code(CodeSessionStoreFailed).With("path", f.path).Wrap(err)
		}
		return nil
	}
	return f.write(current)
}

func (f *FileStore) read() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, oops.Code(CodeSessionStoreFailed).With("path", f.path).Wrap(err)
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, oops.Code(CodeSessionStoreFailed).
			With("path", f.path).
			With("operation", "decode session file").
			Wrap(err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}

func (f *FileStore) write(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return oops.Code(CodeSessionStoreFailed).With("operation", "encode session file").Wrap(err)
	}

	dir := filepath.Dir(f.path)
	if err := xdg.EnsureDir(dir); err != nil {
		return oops.Code(CodeSessionStoreFailed).Wrap(err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return oops.Code(CodeSessionStoreFailed).With("path", f.path).Wrap(err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() //nolint:errcheck // gone after a successful rename

	if err := tmp.Chmod(sessionFileMode); err != nil {
		_ = tmp.Close()
		return oops.Code(CodeSessionStoreFailed).With("path", tmpName).Wrap(err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return oops.Code(CodeSessionStoreFailed).With("path", tmpName).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return oops.Code(CodeSessionStoreFailed).With("path", tmpName).Wrap(err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return oops.Code(CodeSessionStoreFailed).With("path", f.path).Wrap(err)
	}
	return nil
}

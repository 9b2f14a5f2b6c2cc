// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

const fileSuffix = ".json"

var _ Backend = (*FileBackend)(nil)

// 📁 FileBackend stores one file per key under a directory.
//
// File names are the sha256 of the key, which keeps them short whatever the
// repository path. The key itself is the first line of the file, so listing
// can recover it.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Errorf("creating cache directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) Dir() string {
	return f.dir
}

func fileKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func (f *FileBackend) filename(key string) string {
	return filepath.Join(f.dir, fileKey(key)+fileSuffix)
}

// splitEntry separates the stored key from the data. ok is false for files
// this backend did not write.
func splitEntry(name string, raw []byte) (key string, data []byte, ok bool) {
	head, data, found := bytes.Cut(raw, []byte("\n"))
	if !found || fileKey(string(head))+fileSuffix != name {
		return "", nil, false
	}
	return string(head), data, true
}

func (f *FileBackend) Read(ctx context.Context, key string) ([]byte, error) {
	name := f.filename(key)
	raw, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, errors.Errorf("reading cache file: %w", err)
	}
	stored, data, ok := splitEntry(filepath.Base(name), raw)
	if !ok || stored != key {
		return nil, ErrNotExist
	}
	return data, nil
}

func (f *FileBackend) Write(ctx context.Context, key string, data []byte, _ time.Duration) error {
	if strings.Contains(key, "\n") {
		return errors.Errorf("cache key %q contains a newline", key)
	}

	tmp, err := os.CreateTemp(f.dir, ".entry_*.tmp")
	if err != nil {
		return errors.Errorf("creating temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(key + "\n"); err != nil {
		tmp.Close()
		return errors.Errorf("writing cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Errorf("writing cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.filename(key)); err != nil {
		return errors.Errorf("replacing cache file: %w", err)
	}
	return nil
}

func (f *FileBackend) Delete(ctx context.Context, key string) error {
	if err := os.Remove(f.filename(key)); err != nil && !os.IsNotExist(err) {
		return errors.Errorf("removing cache file: %w", err)
	}
	return nil
}

func (f *FileBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Errorf("listing cache directory: %w", err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(f.dir, name))
		if err != nil {
			// removed since the listing
			continue
		}
		key, _, ok := splitEntry(name, raw)
		if !ok {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

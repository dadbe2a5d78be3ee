package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// IndexFile holds the entries of a FileStore
const IndexFile = "index.json"

// FileStore writes pages below a directory and the entries to index.json on Close
type FileStore struct {
	fs  afero.Fs
	dir string

	mu      sync.Mutex
	entries *entryList
}

type fileIndex struct {
	Entries []Entry `json:"entries"`
}

// NewFileStore creates a store rooted at dir. Entries of an existing index.json are loaded.
func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if dir == "" {
		dir = "public"
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	s := &FileStore{fs: fs, dir: dir, entries: newEntryList()}
	if err := s.loadIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) loadIndex() error {
	data, err := afero.ReadFile(s.fs, filepath.Join(s.dir, IndexFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", IndexFile, err)
	}

	var index fileIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("failed to decode %s: %w", IndexFile, err)
	}

	grouped := make(map[string][]Entry)
	var order []string
	for _, e := range index.Entries {
		if _, ok := grouped[e.Path]; !ok {
			order = append(order, e.Path)
		}
		grouped[e.Path] = append(grouped[e.Path], e)
	}
	for _, path := range order {
		s.entries.set(path, grouped[path])
	}
	return nil
}

// Put writes the page output to its store path
func (s *FileStore) Put(_ context.Context, page Page) error {
	target := filepath.Join(s.dir, filepath.FromSlash(storePath(page)))
	if err := s.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", page.Path, err)
	}
	if err := afero.WriteFile(s.fs, target, page.Output, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	s.mu.Lock()
	s.entries.set(page.Path, page.Entries)
	s.mu.Unlock()
	return nil
}

// Get reads the page stored for path
func (s *FileStore) Get(_ context.Context, path string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, filepath.Join(s.dir, filepath.FromSlash(DefaultStorePath(path))))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read page %s: %w", path, err)
	}
	return data, nil
}

// Entries returns the entries of every page put so far
func (s *FileStore) Entries(_ context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.all(), nil
}

// Close writes index.json
func (s *FileStore) Close() error {
	s.mu.Lock()
	data, err := json.MarshalIndent(fileIndex{Entries: s.entries.all()}, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", IndexFile, err)
	}

	if err := afero.WriteFile(s.fs, filepath.Join(s.dir, IndexFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", IndexFile, err)
	}
	return nil
}

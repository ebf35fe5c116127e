// Package cache stores rendered diagrams on disk, keyed by description hash.
//
// The directory is the cache: an entry exists exactly when its
// diagram_<key>.svg file exists. There is no index, no expiry and no locking,
// so two processes must not share a directory at the same time.
package cache

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"
)

// DefaultURLPrefix is the public path diagrams are served under.
const DefaultURLPrefix = "/diagrams"

// Store is a directory of rendered diagrams.
type Store struct {
	dir       string
	urlPrefix string
}

// NewStore returns a store over dir. Images are referenced from documents
// as <urlPrefix>/diagram_<key>.svg; an empty prefix means [DefaultURLPrefix].
// The directory is created lazily by [Store.Put].
func NewStore(dir, urlPrefix string) *Store {
	if urlPrefix == "" {
		urlPrefix = DefaultURLPrefix
	}
	return &Store{dir: dir, urlPrefix: urlPrefix}
}

// Dir returns the backing directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the file path of the entry for key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, Filename(key))
}

// URL returns the public reference of the entry for key.
func (s *Store) URL(key string) string {
	return path.Join(s.urlPrefix, Filename(key))
}

// Has reports whether an entry exists for key.
func (s *Store) Has(key string) bool {
	_, err := os.Stat(s.Path(key))
	return err == nil
}

// Put writes data as the entry for key, replacing any existing file.
func (s *Store) Put(key string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(s.Path(key), data, 0644)
}

// Entry describes one cached diagram.
type Entry struct {
	Key     string
	Path    string
	Size    int64
	ModTime time.Time
}

// Entries lists the cached diagrams sorted by key. A missing directory is
// an empty cache. Files that are not cache entries are ignored.
func (s *Store) Entries() ([]Entry, error) {
	dirents, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, d := range dirents {
		if d.IsDir() {
			continue
		}
		key, ok := keyFromFilename(d.Name())
		if !ok {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue // removed while listing
		}
		entries = append(entries, Entry{
			Key:     key,
			Path:    filepath.Join(s.dir, d.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Clear removes every cached diagram and returns how many were removed.
// Other files in the directory are left alone.
func (s *Store) Clear() (int, error) {
	entries, err := s.Entries()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range entries {
		if err := os.Remove(e.Path); err != nil && !os.IsNotExist(err) {
			return count, err
		}
		count++
	}
	return count, nil
}

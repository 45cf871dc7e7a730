package casc

import (
	"fmt"
	"sort"
)

// Store is the asset gateway: it resolves logical names through the
// listfile and reads raw bytes from a stack of archives. Later archives
// shadow earlier ones, matching patch container layering.
type Store struct {
	archives []*Archive
	listfile *Listfile
}

// OpenStore opens the given archive files and the listfile that names
// their entries.
func OpenStore(archivePaths []string, listfilePath string) (*Store, error) {
	lf, err := LoadListfile(listfilePath)
	if err != nil {
		return nil, err
	}

	s := &Store{listfile: lf}
	for _, path := range archivePaths {
		a, err := OpenArchive(path)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("archive %s: %w", path, err)
		}
		s.archives = append(s.archives, a)
	}

	return s, nil
}

// NewStore assembles a store from already-opened archives. Used by tests
// and tools that manage archive lifetimes themselves.
func NewStore(archives []*Archive, listfile *Listfile) *Store {
	return &Store{archives: archives, listfile: listfile}
}

// Close closes all underlying archives.
func (s *Store) Close() error {
	var firstErr error
	for _, a := range s.archives {
		if err := a.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ReadByName resolves a logical asset name and returns its raw bytes.
func (s *Store) ReadByName(name string) ([]byte, error) {
	id, ok := s.listfile.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return s.ReadByID(id)
}

// ReadByID reads an entry by ID, searching archives newest-first.
func (s *Store) ReadByID(id uint32) ([]byte, error) {
	for i := len(s.archives) - 1; i >= 0; i-- {
		if s.archives[i].Contains(id) {
			return s.archives[i].Read(id)
		}
	}
	return nil, fmt.Errorf("entry %d: %w", id, ErrNotFound)
}

// Contains reports whether the store can resolve the given name.
func (s *Store) Contains(name string) bool {
	id, ok := s.listfile.Lookup(name)
	if !ok {
		return false
	}
	for _, a := range s.archives {
		if a.Contains(id) {
			return true
		}
	}
	return false
}

// Names returns the sorted logical names of every entry present in at
// least one archive.
func (s *Store) Names() []string {
	var names []string
	for _, name := range s.listfile.Names() {
		if s.Contains(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

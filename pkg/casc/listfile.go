package casc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Listfile maps logical asset names to entry IDs. Names are stored
// lowercase with forward slashes, matching community listfile convention.
type Listfile struct {
	byName map[string]uint32
	byID   map[uint32]string
}

// LoadListfile reads an "id;name" listfile from disk.
func LoadListfile(path string) (*Listfile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening listfile: %w", err)
	}
	defer file.Close()

	return ParseListfile(file)
}

// ParseListfile parses "id;name" lines. Blank lines and malformed lines
// are skipped rather than failing the whole file.
func ParseListfile(r io.Reader) (*Listfile, error) {
	lf := &Listfile{
		byName: make(map[string]uint32),
		byID:   make(map[uint32]string),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		id, name, ok := strings.Cut(line, ";")
		if !ok {
			continue
		}
		parsed, err := strconv.ParseUint(strings.TrimSpace(id), 10, 32)
		if err != nil {
			continue
		}

		normalized := NormalizeName(name)
		lf.byName[normalized] = uint32(parsed)
		lf.byID[uint32(parsed)] = normalized
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading listfile: %w", err)
	}

	return lf, nil
}

// Lookup resolves a logical name to its entry ID.
func (l *Listfile) Lookup(name string) (uint32, bool) {
	id, ok := l.byName[NormalizeName(name)]
	return id, ok
}

// NameOf resolves an entry ID back to its logical name.
func (l *Listfile) NameOf(id uint32) (string, bool) {
	name, ok := l.byID[id]
	return name, ok
}

// Names returns all known logical names, unsorted.
func (l *Listfile) Names() []string {
	names := make([]string, 0, len(l.byName))
	for name := range l.byName {
		names = append(names, name)
	}
	return names
}

// Len returns the number of named entries.
func (l *Listfile) Len() int {
	return len(l.byName)
}

// NormalizeName lowercases a name and converts backslashes to slashes.
func NormalizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.ToLower(strings.TrimSpace(name))
}

// Package casc provides read access to the game's content-addressable
// archive containers and the community listfile that names their entries.
package casc

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	archiveMagic      = "CARC"
	archiveVersion    = 1
	archiveHeaderSize = 16
	entrySize         = 25
)

// Entry flags.
const (
	flagCompressed = 0x01
	flagEncrypted  = 0x02
)

// Archive errors.
var (
	ErrInvalidArchiveMagic = errors.New("invalid archive magic: expected 'CARC'")
	ErrUnsupportedVersion  = errors.New("unsupported archive version")
	ErrTruncatedArchive    = errors.New("truncated archive data")

	// ErrNotFound reports that an asset is absent from the store.
	ErrNotFound = errors.New("asset not found")
)

// EncryptedError reports an entry whose decryption key is not available.
type EncryptedError struct {
	ID  uint32
	Key string
}

func (e *EncryptedError) Error() string {
	return fmt.Sprintf("entry %d is encrypted (key %s unknown)", e.ID, e.Key)
}

// Archive represents one opened content container.
type Archive struct {
	file    *os.File
	entries map[uint32]*Entry
}

// Entry describes one stored asset inside an archive.
type Entry struct {
	ID         uint32
	Offset     uint32
	StoredSize uint32
	Size       uint32
	Flags      uint8
	Key        string
}

// OpenArchive opens a container file for reading.
func OpenArchive(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	a := &Archive{
		file:    file,
		entries: make(map[uint32]*Entry),
	}

	if err := a.readEntryTable(); err != nil {
		file.Close()
		return nil, fmt.Errorf("reading entry table: %w", err)
	}

	return a, nil
}

// Close closes the underlying container file.
func (a *Archive) Close() error {
	if a.file != nil {
		return a.file.Close()
	}
	return nil
}

func (a *Archive) readEntryTable() error {
	header := make([]byte, archiveHeaderSize)
	if _, err := a.file.ReadAt(header, 0); err != nil {
		return ErrTruncatedArchive
	}

	if string(header[:4]) != archiveMagic {
		return ErrInvalidArchiveMagic
	}
	if version := binary.LittleEndian.Uint32(header[4:]); version != archiveVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	count := binary.LittleEndian.Uint32(header[8:])
	tableOffset := binary.LittleEndian.Uint32(header[12:])

	table := make([]byte, int(count)*entrySize)
	if _, err := a.file.ReadAt(table, int64(tableOffset)); err != nil {
		return ErrTruncatedArchive
	}

	for i := uint32(0); i < count; i++ {
		raw := table[i*entrySize:]
		entry := &Entry{
			ID:         binary.LittleEndian.Uint32(raw),
			Offset:     binary.LittleEndian.Uint32(raw[4:]),
			StoredSize: binary.LittleEndian.Uint32(raw[8:]),
			Size:       binary.LittleEndian.Uint32(raw[12:]),
			Flags:      raw[16],
		}
		entry.Key = string(bytes.TrimRight(raw[17:25], "\x00"))
		a.entries[entry.ID] = entry
	}

	return nil
}

// Contains checks whether the archive holds the given entry ID.
func (a *Archive) Contains(id uint32) bool {
	_, ok := a.entries[id]
	return ok
}

// IDs returns the IDs of all entries in the archive.
func (a *Archive) IDs() []uint32 {
	ids := make([]uint32, 0, len(a.entries))
	for id := range a.entries {
		ids = append(ids, id)
	}
	return ids
}

// Read returns the raw bytes of an entry, decompressing when needed.
// Encrypted entries fail with *EncryptedError carrying the key name.
func (a *Archive) Read(id uint32) ([]byte, error) {
	entry, ok := a.entries[id]
	if !ok {
		return nil, fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}

	if entry.Flags&flagEncrypted != 0 {
		return nil, &EncryptedError{ID: id, Key: entry.Key}
	}

	stored := make([]byte, entry.StoredSize)
	if _, err := a.file.ReadAt(stored, int64(entry.Offset)); err != nil {
		return nil, fmt.Errorf("reading entry %d: %w", id, err)
	}

	if entry.Flags&flagCompressed == 0 {
		return stored, nil
	}

	reader, err := zlib.NewReader(bytes.NewReader(stored))
	if err != nil {
		return nil, fmt.Errorf("decompressing entry %d: %w", id, err)
	}
	defer reader.Close()

	result := make([]byte, entry.Size)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, fmt.Errorf("decompressing entry %d: %w", id, err)
	}
	return result, nil
}

package casc

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testEntry describes one entry for the synthetic archive builder.
type testEntry struct {
	id        uint32
	data      []byte
	compress  bool
	encrypted bool
	key       string
}

// writeTestArchive builds a minimal valid container on disk.
func writeTestArchive(t *testing.T, entries []testEntry) string {
	t.Helper()

	var body bytes.Buffer
	type placed struct {
		entry  testEntry
		offset uint32
		stored uint32
	}
	var placements []placed

	offset := uint32(archiveHeaderSize)
	for _, e := range entries {
		stored := e.data
		if e.compress {
			var buf bytes.Buffer
			w := zlib.NewWriter(&buf)
			if _, err := w.Write(e.data); err != nil {
				t.Fatalf("compressing fixture: %v", err)
			}
			w.Close()
			stored = buf.Bytes()
		}
		body.Write(stored)
		placements = append(placements, placed{e, offset, uint32(len(stored))})
		offset += uint32(len(stored))
	}

	var table bytes.Buffer
	for _, p := range placements {
		var raw [entrySize]byte
		binary.LittleEndian.PutUint32(raw[0:], p.entry.id)
		binary.LittleEndian.PutUint32(raw[4:], p.offset)
		binary.LittleEndian.PutUint32(raw[8:], p.stored)
		binary.LittleEndian.PutUint32(raw[12:], uint32(len(p.entry.data)))
		var flags uint8
		if p.entry.compress {
			flags |= flagCompressed
		}
		if p.entry.encrypted {
			flags |= flagEncrypted
		}
		raw[16] = flags
		copy(raw[17:25], p.entry.key)
		table.Write(raw[:])
	}

	var file bytes.Buffer
	file.WriteString(archiveMagic)
	binary.Write(&file, binary.LittleEndian, uint32(archiveVersion))
	binary.Write(&file, binary.LittleEndian, uint32(len(entries)))
	binary.Write(&file, binary.LittleEndian, offset)
	file.Write(body.Bytes())
	file.Write(table.Bytes())

	path := filepath.Join(t.TempDir(), "test.arc")
	if err := os.WriteFile(path, file.Bytes(), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestOpenArchive_InvalidMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.arc")
	if err := os.WriteFile(path, []byte("XXXX\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := OpenArchive(path)
	if !errors.Is(err, ErrInvalidArchiveMagic) {
		t.Errorf("got %v, want ErrInvalidArchiveMagic", err)
	}
}

func TestOpenArchive_Truncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.arc")
	if err := os.WriteFile(path, []byte("CAR"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := OpenArchive(path)
	if !errors.Is(err, ErrTruncatedArchive) {
		t.Errorf("got %v, want ErrTruncatedArchive", err)
	}
}

func TestArchive_Read(t *testing.T) {
	payload := []byte("model geometry bytes")
	path := writeTestArchive(t, []testEntry{
		{id: 7, data: payload},
		{id: 8, data: bytes.Repeat([]byte("abcd"), 256), compress: true},
	})

	a, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer a.Close()

	got, err := a.Read(7)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("raw payload mismatch")
	}

	got, err = a.Read(8)
	if err != nil {
		t.Fatalf("read compressed: %v", err)
	}
	if !bytes.Equal(got, bytes.Repeat([]byte("abcd"), 256)) {
		t.Errorf("compressed payload mismatch")
	}
}

func TestArchive_ReadMissing(t *testing.T) {
	path := writeTestArchive(t, []testEntry{{id: 1, data: []byte("x")}})

	a, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer a.Close()

	_, err = a.Read(99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestArchive_ReadEncrypted(t *testing.T) {
	path := writeTestArchive(t, []testEntry{
		{id: 5, data: []byte("ciphertext"), encrypted: true, key: "K1"},
	})

	a, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer a.Close()

	_, err = a.Read(5)
	var encErr *EncryptedError
	if !errors.As(err, &encErr) {
		t.Fatalf("got %v, want *EncryptedError", err)
	}
	if encErr.Key != "K1" {
		t.Errorf("key: got %q, want K1", encErr.Key)
	}
}

func TestParseListfile(t *testing.T) {
	input := strings.Join([]string{
		"100;Creature\\Wolf\\Wolf.mdx",
		"101;creature/wolf/wolfskin.blp",
		"",
		"garbage line without separator",
		"notanumber;foo.blp",
		"102;World\\Doodad\\Tree.mdx",
	}, "\n")

	lf, err := ParseListfile(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if lf.Len() != 3 {
		t.Errorf("entries: got %d, want 3", lf.Len())
	}

	// Lookup normalizes case and separators.
	id, ok := lf.Lookup("CREATURE/WOLF/WOLF.MDX")
	if !ok || id != 100 {
		t.Errorf("lookup: got (%d, %v), want (100, true)", id, ok)
	}
	id, ok = lf.Lookup("creature\\wolf\\wolfskin.blp")
	if !ok || id != 101 {
		t.Errorf("lookup backslash: got (%d, %v)", id, ok)
	}

	name, ok := lf.NameOf(102)
	if !ok || name != "world/doodad/tree.mdx" {
		t.Errorf("NameOf: got (%q, %v)", name, ok)
	}
}

func TestStore_Layering(t *testing.T) {
	base := writeTestArchive(t, []testEntry{
		{id: 1, data: []byte("old version")},
		{id: 2, data: []byte("base only")},
	})
	patch := writeTestArchive(t, []testEntry{
		{id: 1, data: []byte("patched version")},
	})

	a1, err := OpenArchive(base)
	if err != nil {
		t.Fatal(err)
	}
	a2, err := OpenArchive(patch)
	if err != nil {
		t.Fatal(err)
	}

	lf, err := ParseListfile(strings.NewReader("1;a.mdx\n2;b.mdx\n3;missing.mdx"))
	if err != nil {
		t.Fatal(err)
	}

	s := NewStore([]*Archive{a1, a2}, lf)
	defer s.Close()

	got, err := s.ReadByName("a.mdx")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "patched version" {
		t.Errorf("layering: got %q, want patch to shadow base", got)
	}

	got, err = s.ReadByName("b.mdx")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "base only" {
		t.Errorf("base entry: got %q", got)
	}

	if _, err := s.ReadByName("missing.mdx"); !errors.Is(err, ErrNotFound) {
		t.Errorf("listed but absent: got %v, want ErrNotFound", err)
	}
	if _, err := s.ReadByName("unlisted.mdx"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unlisted: got %v, want ErrNotFound", err)
	}

	names := s.Names()
	if len(names) != 2 {
		t.Errorf("Names: got %v, want only present entries", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("Names not sorted: %v", names)
		}
	}
}

package formats

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// mdxBuilder assembles synthetic MDX files for tests.
type mdxBuilder struct {
	version  uint32
	vertices []MDXVertex
	textures []MDXTexture
}

func (b *mdxBuilder) bytes() []byte {
	if b.version == 0 {
		b.version = 1000
	}

	ofsVertices := uint32(mdxHeaderSize)
	ofsTextures := ofsVertices + uint32(len(b.vertices))*mdxVertexSize
	nameOfs := ofsTextures + uint32(len(b.textures))*mdxTextureDefSize

	// Name block layout decided up front.
	type namePos struct{ ofs, size uint32 }
	names := make([]namePos, len(b.textures))
	cursor := nameOfs
	for i, tex := range b.textures {
		if tex.Type == 0 && tex.Filename != "" {
			size := uint32(len(tex.Filename) + 1)
			names[i] = namePos{cursor, size}
			cursor += size
		}
	}

	data := make([]byte, cursor)
	copy(data, mdxMagic)
	binary.LittleEndian.PutUint32(data[4:], b.version)
	binary.LittleEndian.PutUint32(data[8:], uint32(len(b.vertices)))
	binary.LittleEndian.PutUint32(data[12:], ofsVertices)
	binary.LittleEndian.PutUint32(data[16:], uint32(len(b.textures)))
	binary.LittleEndian.PutUint32(data[20:], ofsTextures)

	for i, v := range b.vertices {
		raw := data[ofsVertices+uint32(i)*mdxVertexSize:]
		for j := 0; j < 3; j++ {
			binary.LittleEndian.PutUint32(raw[j*4:], math.Float32bits(v.Position[j]))
			binary.LittleEndian.PutUint32(raw[12+j*4:], math.Float32bits(v.Normal[j]))
		}
		binary.LittleEndian.PutUint32(raw[24:], math.Float32bits(v.TexCoord[0]))
		binary.LittleEndian.PutUint32(raw[28:], math.Float32bits(v.TexCoord[1]))
	}

	for i, tex := range b.textures {
		raw := data[ofsTextures+uint32(i)*mdxTextureDefSize:]
		binary.LittleEndian.PutUint32(raw, tex.Type)
		binary.LittleEndian.PutUint32(raw[4:], tex.Flags)
		if names[i].size > 0 {
			binary.LittleEndian.PutUint32(raw[8:], names[i].size)
			binary.LittleEndian.PutUint32(raw[12:], names[i].ofs)
			copy(data[names[i].ofs:], tex.Filename)
		}
	}

	return data
}

func TestParseMDX_MagicValidation(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrTruncatedMDXData},
		{"short", []byte("MDL"), ErrTruncatedMDXData},
		{"wrong magic", append([]byte("XXXX"), make([]byte, mdxHeaderSize)...), ErrInvalidMDXMagic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMDX(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseMDX_VersionSupport(t *testing.T) {
	tests := []struct {
		name    string
		version uint32
		wantErr bool
	}{
		{"v800", 800, false},
		{"v1000", 1000, false},
		{"v1100", 1100, false},
		{"v799 unsupported", 799, true},
		{"v1101 unsupported", 1101, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mdxBuilder{version: tt.version}
			_, err := ParseMDX(b.bytes())
			if (err != nil) != tt.wantErr {
				t.Errorf("version %d: err=%v, wantErr=%v", tt.version, err, tt.wantErr)
			}
		})
	}
}

func TestParseMDX_Vertices(t *testing.T) {
	b := mdxBuilder{
		vertices: []MDXVertex{
			{Position: [3]float32{1, 2, 3}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{0.5, 0.25}},
			{Position: [3]float32{-1, -2, -3}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{1, 1}},
		},
	}

	m, err := ParseMDX(b.bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if m.VertexCount() != 2 {
		t.Fatalf("vertex count: got %d, want 2", m.VertexCount())
	}
	if m.Vertices[0].Position != [3]float32{1, 2, 3} {
		t.Errorf("position: got %v", m.Vertices[0].Position)
	}
	if m.Vertices[1].TexCoord != [2]float32{1, 1} {
		t.Errorf("texcoord: got %v", m.Vertices[1].TexCoord)
	}
}

func TestParseMDX_Textures(t *testing.T) {
	b := mdxBuilder{
		textures: []MDXTexture{
			{Type: 0, Flags: MDXTextureWrapU, Filename: "creature/wolf/body.blp"},
			{Type: 11, Flags: MDXTextureWrapU | MDXTextureWrapV}, // runtime-resolved, no name
		},
	}

	m, err := ParseMDX(b.bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(m.Textures) != 2 {
		t.Fatalf("texture count: got %d", len(m.Textures))
	}
	if m.Textures[0].Filename != "creature/wolf/body.blp" {
		t.Errorf("filename: got %q", m.Textures[0].Filename)
	}
	if !m.Textures[0].WrapU() || m.Textures[0].WrapV() {
		t.Errorf("flags: wrapU=%v wrapV=%v, want true/false", m.Textures[0].WrapU(), m.Textures[0].WrapV())
	}
	if m.Textures[1].Filename != "" {
		t.Errorf("runtime texture should have no filename, got %q", m.Textures[1].Filename)
	}
}

func TestParseMDX_TruncatedVertexBlock(t *testing.T) {
	b := mdxBuilder{vertices: make([]MDXVertex, 4)}
	data := b.bytes()

	_, err := ParseMDX(data[:len(data)-8])
	if !errors.Is(err, ErrTruncatedMDXData) {
		t.Errorf("got %v, want ErrTruncatedMDXData", err)
	}
}

// Package formats provides parsers for the game's binary asset formats.
// MDX (model) parser: geometry, texture definitions and declared bounds.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

func fromBits(b uint32) float32 { return math.Float32frombits(b) }

// MDX format errors.
var (
	ErrInvalidMDXMagic       = errors.New("invalid MDX magic: expected 'MDLX'")
	ErrUnsupportedMDXVersion = errors.New("unsupported MDX version")
	ErrTruncatedMDXData      = errors.New("truncated MDX data")
)

const (
	mdxMagic          = "MDLX"
	mdxHeaderSize     = 48
	mdxVertexSize     = 32
	mdxTextureDefSize = 16
)

// Texture flags: per-axis addressing modes.
const (
	MDXTextureWrapU = 0x1
	MDXTextureWrapV = 0x2
)

// MDXVertex is one model vertex.
type MDXVertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// MDXTexture is a texture definition referenced by material slot index.
// Type 0 textures carry an inline filename; other types are resolved by
// the runtime and have no source identifier here.
type MDXTexture struct {
	Type     uint32
	Flags    uint32
	Filename string
}

// WrapU reports whether the U axis uses repeat addressing.
func (t MDXTexture) WrapU() bool { return t.Flags&MDXTextureWrapU != 0 }

// WrapV reports whether the V axis uses repeat addressing.
func (t MDXTexture) WrapV() bool { return t.Flags&MDXTextureWrapV != 0 }

// MDX is a parsed model file.
type MDX struct {
	Version   uint32
	Vertices  []MDXVertex
	Textures  []MDXTexture
	BoundsMin [3]float32
	BoundsMax [3]float32
}

// VertexCount returns the number of vertices.
func (m *MDX) VertexCount() int { return len(m.Vertices) }

// ParseMDX parses a model file from raw bytes.
func ParseMDX(data []byte) (*MDX, error) {
	if len(data) < mdxHeaderSize {
		return nil, ErrTruncatedMDXData
	}

	if string(data[:4]) != mdxMagic {
		return nil, ErrInvalidMDXMagic
	}

	m := &MDX{Version: binary.LittleEndian.Uint32(data[4:])}
	if m.Version < 800 || m.Version > 1100 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMDXVersion, m.Version)
	}

	nVertices := binary.LittleEndian.Uint32(data[8:])
	ofsVertices := binary.LittleEndian.Uint32(data[12:])
	nTextures := binary.LittleEndian.Uint32(data[16:])
	ofsTextures := binary.LittleEndian.Uint32(data[20:])

	for i := 0; i < 6; i++ {
		v := fromBits(binary.LittleEndian.Uint32(data[24+i*4:]))
		if i < 3 {
			m.BoundsMin[i] = v
		} else {
			m.BoundsMax[i-3] = v
		}
	}

	if err := m.parseVertices(data, nVertices, ofsVertices); err != nil {
		return nil, err
	}
	if err := m.parseTextures(data, nTextures, ofsTextures); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *MDX) parseVertices(data []byte, count, offset uint32) error {
	end := uint64(offset) + uint64(count)*mdxVertexSize
	if end > uint64(len(data)) {
		return ErrTruncatedMDXData
	}

	m.Vertices = make([]MDXVertex, count)
	for i := uint32(0); i < count; i++ {
		raw := data[offset+i*mdxVertexSize:]
		v := &m.Vertices[i]
		for j := 0; j < 3; j++ {
			v.Position[j] = fromBits(binary.LittleEndian.Uint32(raw[j*4:]))
			v.Normal[j] = fromBits(binary.LittleEndian.Uint32(raw[12+j*4:]))
		}
		v.TexCoord[0] = fromBits(binary.LittleEndian.Uint32(raw[24:]))
		v.TexCoord[1] = fromBits(binary.LittleEndian.Uint32(raw[28:]))
	}
	return nil
}

func (m *MDX) parseTextures(data []byte, count, offset uint32) error {
	end := uint64(offset) + uint64(count)*mdxTextureDefSize
	if end > uint64(len(data)) {
		return ErrTruncatedMDXData
	}

	m.Textures = make([]MDXTexture, count)
	for i := uint32(0); i < count; i++ {
		raw := data[offset+i*mdxTextureDefSize:]
		tex := &m.Textures[i]
		tex.Type = binary.LittleEndian.Uint32(raw)
		tex.Flags = binary.LittleEndian.Uint32(raw[4:])

		nameLen := binary.LittleEndian.Uint32(raw[8:])
		nameOfs := binary.LittleEndian.Uint32(raw[12:])
		if tex.Type != 0 || nameLen == 0 {
			continue
		}
		if uint64(nameOfs)+uint64(nameLen) > uint64(len(data)) {
			return ErrTruncatedMDXData
		}
		name := data[nameOfs : nameOfs+nameLen]
		if idx := bytes.IndexByte(name, 0); idx >= 0 {
			name = name[:idx]
		}
		tex.Filename = string(name)
	}
	return nil
}

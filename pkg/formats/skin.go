// SKIN parser: the index buffer, submesh ranges and texture-unit
// bindings for one level of detail of an MDX model.
package formats

import (
	"encoding/binary"
	"errors"
)

// Skin format errors.
var (
	ErrInvalidSkinMagic  = errors.New("invalid skin magic: expected 'SKIN'")
	ErrTruncatedSkinData = errors.New("truncated skin data")
)

const (
	skinMagic       = "SKIN"
	skinHeaderSize  = 28
	skinSubmeshSize = 12
	skinTexUnitSize = 8
)

// SkinSubmesh is a contiguous index-buffer range drawn as one piece.
type SkinSubmesh struct {
	ID         uint32
	IndexStart uint32
	IndexCount uint32
}

// SkinTextureUnit binds a submesh to a material slot index.
type SkinTextureUnit struct {
	SubmeshIndex uint32
	TextureSlot  uint32
}

// Skin is a parsed skin file.
type Skin struct {
	Indices      []uint16
	Submeshes    []SkinSubmesh
	TextureUnits []SkinTextureUnit
}

// ParseSkin parses a skin file from raw bytes.
func ParseSkin(data []byte) (*Skin, error) {
	if len(data) < skinHeaderSize {
		return nil, ErrTruncatedSkinData
	}
	if string(data[:4]) != skinMagic {
		return nil, ErrInvalidSkinMagic
	}

	nIndices := binary.LittleEndian.Uint32(data[4:])
	ofsIndices := binary.LittleEndian.Uint32(data[8:])
	nSubmeshes := binary.LittleEndian.Uint32(data[12:])
	ofsSubmeshes := binary.LittleEndian.Uint32(data[16:])
	nTexUnits := binary.LittleEndian.Uint32(data[20:])
	ofsTexUnits := binary.LittleEndian.Uint32(data[24:])

	if uint64(ofsIndices)+uint64(nIndices)*2 > uint64(len(data)) ||
		uint64(ofsSubmeshes)+uint64(nSubmeshes)*skinSubmeshSize > uint64(len(data)) ||
		uint64(ofsTexUnits)+uint64(nTexUnits)*skinTexUnitSize > uint64(len(data)) {
		return nil, ErrTruncatedSkinData
	}

	s := &Skin{
		Indices:      make([]uint16, nIndices),
		Submeshes:    make([]SkinSubmesh, nSubmeshes),
		TextureUnits: make([]SkinTextureUnit, nTexUnits),
	}

	for i := uint32(0); i < nIndices; i++ {
		s.Indices[i] = binary.LittleEndian.Uint16(data[ofsIndices+i*2:])
	}
	for i := uint32(0); i < nSubmeshes; i++ {
		raw := data[ofsSubmeshes+i*skinSubmeshSize:]
		s.Submeshes[i] = SkinSubmesh{
			ID:         binary.LittleEndian.Uint32(raw),
			IndexStart: binary.LittleEndian.Uint32(raw[4:]),
			IndexCount: binary.LittleEndian.Uint32(raw[8:]),
		}
	}
	for i := uint32(0); i < nTexUnits; i++ {
		raw := data[ofsTexUnits+i*skinTexUnitSize:]
		s.TextureUnits[i] = SkinTextureUnit{
			SubmeshIndex: binary.LittleEndian.Uint32(raw),
			TextureSlot:  binary.LittleEndian.Uint32(raw[4:]),
		}
	}

	return s, nil
}

// SlotForSubmesh returns the material slot bound to the given submesh
// index, first match wins. Linear scan over texture units: O(n*m) across
// all submeshes, fine at the tens-of-entries scale these files have.
func (s *Skin) SlotForSubmesh(submesh int) (int, bool) {
	for _, unit := range s.TextureUnits {
		if int(unit.SubmeshIndex) == submesh {
			return int(unit.TextureSlot), true
		}
	}
	return 0, false
}

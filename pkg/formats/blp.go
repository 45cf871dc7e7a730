// BLP texture decoder: palettized and raw-BGRA encodings to RGBA.
package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
)

// BLP format errors.
var (
	ErrInvalidBLPMagic        = errors.New("invalid BLP magic: expected 'BLP2'")
	ErrUnsupportedBLPType     = errors.New("unsupported BLP type")
	ErrUnsupportedBLPEncoding = errors.New("unsupported BLP encoding")
	ErrTruncatedBLPData       = errors.New("truncated BLP data")
	ErrInvalidBLPSize         = errors.New("invalid BLP dimensions")
)

const (
	blpMagic      = "BLP2"
	blpHeaderSize = 1172

	blpEncodingPalette = 1
	blpEncodingRaw     = 3

	blpMaxDimension = 8192
)

// DecodeBLP decodes a BLP texture's top mip level into an RGBA image.
func DecodeBLP(data []byte) (*image.RGBA, error) {
	if len(data) < blpHeaderSize {
		return nil, ErrTruncatedBLPData
	}
	if string(data[:4]) != blpMagic {
		return nil, ErrInvalidBLPMagic
	}
	if blpType := binary.LittleEndian.Uint32(data[4:]); blpType != 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBLPType, blpType)
	}

	encoding := data[8]
	alphaDepth := data[9]
	width := binary.LittleEndian.Uint32(data[12:])
	height := binary.LittleEndian.Uint32(data[16:])

	if width == 0 || height == 0 || width > blpMaxDimension || height > blpMaxDimension {
		return nil, ErrInvalidBLPSize
	}

	mipOffset := binary.LittleEndian.Uint32(data[20:])
	mipSize := binary.LittleEndian.Uint32(data[84:])
	if uint64(mipOffset)+uint64(mipSize) > uint64(len(data)) {
		return nil, ErrTruncatedBLPData
	}
	mip := data[mipOffset : mipOffset+mipSize]

	switch encoding {
	case blpEncodingPalette:
		return decodePalettized(data[148:1172], mip, int(width), int(height), alphaDepth)
	case blpEncodingRaw:
		return decodeRawBGRA(mip, int(width), int(height))
	default:
		return nil, fmt.Errorf("%w: encoding %d", ErrUnsupportedBLPEncoding, encoding)
	}
}

// decodePalettized expands 8-bit palette indices (BGRA palette) plus an
// optional trailing 8-bit alpha channel.
func decodePalettized(palette, mip []byte, width, height int, alphaDepth uint8) (*image.RGBA, error) {
	pixels := width * height
	need := pixels
	if alphaDepth == 8 {
		need += pixels
	} else if alphaDepth != 0 {
		return nil, fmt.Errorf("%w: palette alpha depth %d", ErrUnsupportedBLPEncoding, alphaDepth)
	}
	if len(mip) < need {
		return nil, ErrTruncatedBLPData
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < pixels; i++ {
		entry := palette[int(mip[i])*4:]
		alpha := uint8(255)
		if alphaDepth == 8 {
			alpha = mip[pixels+i]
		}
		img.Pix[i*4+0] = entry[2] // palette is BGRA
		img.Pix[i*4+1] = entry[1]
		img.Pix[i*4+2] = entry[0]
		img.Pix[i*4+3] = alpha
	}
	return img, nil
}

func decodeRawBGRA(mip []byte, width, height int) (*image.RGBA, error) {
	if len(mip) < width*height*4 {
		return nil, ErrTruncatedBLPData
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		img.Pix[i*4+0] = mip[i*4+2]
		img.Pix[i*4+1] = mip[i*4+1]
		img.Pix[i*4+2] = mip[i*4+0]
		img.Pix[i*4+3] = mip[i*4+3]
	}
	return img, nil
}

// Package render defines the GPU resource boundary used by the viewer.
// The GL implementation lives alongside it; tests substitute fakes.
package render

import "image"

// MeshID is a GPU-resident geometry handle. Zero means no mesh.
type MeshID uint32

// TextureID is a GPU-resident texture handle. Zero means the shared
// default material.
type TextureID uint32

// WrapMode selects texture addressing along one axis.
type WrapMode int

const (
	WrapClamp WrapMode = iota
	WrapRepeat
)

// Vertex is the interleaved vertex format for uploaded meshes.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Renderer owns GPU resource creation and disposal. Implementations are
// not safe for concurrent use; callers serialize access on one thread.
type Renderer interface {
	UploadMesh(vertices []Vertex, indices []uint16) (MeshID, error)
	UploadTexture(img *image.RGBA, wrapU, wrapV WrapMode) (TextureID, error)
	DeleteMesh(id MeshID)
	DeleteTexture(id TextureID)
}

// Scene assembly: decoded geometry plus resolved textures become one
// renderable object with camera framing derived from its bounds.
package viewer

import (
	"fmt"
	"image"
	gomath "math"

	"github.com/cascbox/cascview/internal/render"
	"github.com/cascbox/cascview/pkg/formats"
	"github.com/cascbox/cascview/pkg/math"
)

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max math.Vec3
}

// Center returns the box midpoint.
func (b Box) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extents.
func (b Box) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// TextureRef identifies one material slot's texture source.
type TextureRef struct {
	Slot     int
	Filename string // empty: no valid source, bind default material
	WrapU    render.WrapMode
	WrapV    render.WrapMode
}

// ResolvedTexture pairs a TextureRef with its decoded image and, once
// uploaded, its GPU handle. A zero Handle means the default material.
type ResolvedTexture struct {
	Ref    TextureRef
	Image  *image.RGBA
	Handle render.TextureID
}

// SubmeshGroup is one index-buffer range with its material binding.
type SubmeshGroup struct {
	IndexStart uint32
	IndexCount uint32
	Slot       int
	Texture    render.TextureID
}

// Framing positions the camera to fit the object.
type Framing struct {
	Target   math.Vec3
	Distance float32
	FarPlane float32
	MaxDim   float32
}

// LoadedScene is the installed renderable object. It owns its mesh and
// texture handles; the scene slot is its only owner.
type LoadedScene struct {
	Name     string
	Mesh     render.MeshID
	Groups   []SubmeshGroup
	Textures []ResolvedTexture
	Bounds   Box
	Framing  Framing
}

// sourceOrientation compensates for the asset coordinate convention:
// two fixed-axis 270 degree rotations, applied to vertices at build time.
var sourceOrientation = math.RotateX(3 * gomath.Pi / 2).Mul(math.RotateZ(3 * gomath.Pi / 2))

// textureRefs maps the model's texture definitions to resolver inputs.
func textureRefs(model *formats.MDX) []TextureRef {
	refs := make([]TextureRef, len(model.Textures))
	for i, tex := range model.Textures {
		refs[i] = TextureRef{Slot: i, Filename: tex.Filename}
		if tex.WrapU() {
			refs[i].WrapU = render.WrapRepeat
		}
		if tex.WrapV() {
			refs[i].WrapV = render.WrapRepeat
		}
	}
	return refs
}

// buildScene uploads geometry and textures and assembles the renderable
// object. Must run on the renderer's thread. The returned scene owns all
// GPU handles it references.
func buildScene(name string, model *formats.MDX, skin *formats.Skin, resolved []ResolvedTexture, renderer render.Renderer, fovDegrees float32) (*LoadedScene, error) {
	vertices := make([]render.Vertex, len(model.Vertices))
	bounds := Box{
		Min: math.Vec3{X: gomath.MaxFloat32, Y: gomath.MaxFloat32, Z: gomath.MaxFloat32},
		Max: math.Vec3{X: -gomath.MaxFloat32, Y: -gomath.MaxFloat32, Z: -gomath.MaxFloat32},
	}

	for i, v := range model.Vertices {
		p := sourceOrientation.TransformVec3(math.Vec3{X: v.Position[0], Y: v.Position[1], Z: v.Position[2]})
		vertices[i] = render.Vertex{
			Position: [3]float32{p.X, p.Y, p.Z},
			Normal:   sourceOrientation.TransformPoint(v.Normal),
			TexCoord: v.TexCoord,
		}
		bounds.Min = bounds.Min.Min(p)
		bounds.Max = bounds.Max.Max(p)
	}

	mesh, err := renderer.UploadMesh(vertices, skin.Indices)
	if err != nil {
		return nil, fmt.Errorf("uploading mesh for %s: %w", name, err)
	}

	scene := &LoadedScene{
		Name:    name,
		Mesh:    mesh,
		Bounds:  bounds,
		Framing: frameCamera(bounds, fovDegrees),
	}

	for i := range resolved {
		if resolved[i].Image == nil {
			continue
		}
		handle, err := renderer.UploadTexture(resolved[i].Image, resolved[i].Ref.WrapU, resolved[i].Ref.WrapV)
		if err != nil {
			// Missing texture falls back to the default material.
			continue
		}
		resolved[i].Handle = handle
		scene.Textures = append(scene.Textures, resolved[i])
	}

	scene.Groups = make([]SubmeshGroup, len(skin.Submeshes))
	for i, sm := range skin.Submeshes {
		group := SubmeshGroup{IndexStart: sm.IndexStart, IndexCount: sm.IndexCount}
		if slot, ok := skin.SlotForSubmesh(i); ok {
			group.Slot = slot
			group.Texture = textureForSlot(scene.Textures, slot)
		}
		scene.Groups[i] = group
	}

	return scene, nil
}

func textureForSlot(textures []ResolvedTexture, slot int) render.TextureID {
	for _, tex := range textures {
		if tex.Ref.Slot == slot {
			return tex.Handle
		}
	}
	return 0
}

// frameCamera derives camera placement from the bounds. The distance
// constants are empirically tuned and kept bit-for-bit for parity with
// previously exported framing: |maxDim/4 * tan(fov*2)| * 6, fov in
// degrees fed to a radian tangent.
func frameCamera(b Box, fovDegrees float32) Framing {
	center := b.Center()
	maxDim := b.Size().MaxComponent()

	dist := float32(gomath.Abs(float64(maxDim/4*float32(gomath.Tan(float64(fovDegrees*2)))))) * 6

	// Far plane: 3x the distance from the camera to the box's far edge
	// along the viewing axis, covering boxes spanning negative Z.
	camZ := center.Z + dist
	far := 3 * (camZ - b.Min.Z)
	if far < 0 {
		far = -far
	}

	return Framing{
		Target:   center,
		Distance: dist,
		FarPlane: far,
		MaxDim:   maxDim,
	}
}

// OpenGL 4.1 core implementation of the Renderer boundary.
package render

import (
	"fmt"
	"image"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/cascbox/cascview/pkg/math"
)

const vertexShaderSource = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoord;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vNormal;
out vec2 vTexCoord;

void main() {
    vNormal = mat3(uModel) * aNormal;
    vTexCoord = aTexCoord;
    gl_Position = uProjection * uView * uModel * vec4(aPosition, 1.0);
}
` + "\x00"

const fragmentShaderSource = `#version 410 core
in vec3 vNormal;
in vec2 vTexCoord;

uniform sampler2D uTexture;
uniform vec3 uLightDir;
uniform vec3 uAmbient;
uniform vec3 uDiffuse;

out vec4 FragColor;

void main() {
    vec3 normal = normalize(vNormal);
    vec3 lightDir = normalize(uLightDir);
    float diff = max(dot(normal, lightDir), 0.0);
    vec4 tex = texture(uTexture, vTexCoord);
    vec3 result = (uAmbient + diff * uDiffuse) * tex.rgb;
    FragColor = vec4(result, tex.a);
}
` + "\x00"

type glMesh struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
}

// GLRenderer implements Renderer against an active OpenGL context. All
// methods must be called on the thread that owns the context.
type GLRenderer struct {
	program       uint32
	locModel      int32
	locView       int32
	locProjection int32
	locLightDir   int32
	locAmbient    int32
	locDiffuse    int32
	locTexture    int32

	meshes         map[MeshID]*glMesh
	nextID         uint32
	defaultTexture uint32
}

// DrawGroup is one submesh draw: an index range and its texture.
// A zero Texture binds the shared default material.
type DrawGroup struct {
	IndexStart uint32
	IndexCount uint32
	Texture    TextureID
}

// DrawCall describes one frame's draw of a mesh.
type DrawCall struct {
	Mesh       MeshID
	Groups     []DrawGroup
	Model      math.Mat4
	View       math.Mat4
	Projection math.Mat4
}

// NewGLRenderer compiles the shader program and creates the default
// material texture. Requires a current OpenGL context.
func NewGLRenderer() (*GLRenderer, error) {
	r := &GLRenderer{meshes: make(map[MeshID]*glMesh)}

	if err := r.createProgram(); err != nil {
		return nil, fmt.Errorf("shader: %w", err)
	}
	r.createDefaultTexture()

	return r, nil
}

func (r *GLRenderer) createProgram() error {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fragmentShader)

	r.program = gl.CreateProgram()
	gl.AttachShader(r.program, vertexShader)
	gl.AttachShader(r.program, fragmentShader)
	gl.LinkProgram(r.program)

	var status int32
	gl.GetProgramiv(r.program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(r.program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(r.program, logLength, nil, gl.Str(log))
		return fmt.Errorf("link failed: %s", log)
	}

	r.locModel = gl.GetUniformLocation(r.program, gl.Str("uModel\x00"))
	r.locView = gl.GetUniformLocation(r.program, gl.Str("uView\x00"))
	r.locProjection = gl.GetUniformLocation(r.program, gl.Str("uProjection\x00"))
	r.locLightDir = gl.GetUniformLocation(r.program, gl.Str("uLightDir\x00"))
	r.locAmbient = gl.GetUniformLocation(r.program, gl.Str("uAmbient\x00"))
	r.locDiffuse = gl.GetUniformLocation(r.program, gl.Str("uDiffuse\x00"))
	r.locTexture = gl.GetUniformLocation(r.program, gl.Str("uTexture\x00"))

	return nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("compile failed: %s", log)
	}

	return shader, nil
}

func (r *GLRenderer) createDefaultTexture() {
	gl.GenTextures(1, &r.defaultTexture)
	gl.BindTexture(gl.TEXTURE_2D, r.defaultTexture)
	white := []uint8{255, 255, 255, 255}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&white[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
}

// UploadMesh uploads interleaved vertices and a 16-bit index buffer.
func (r *GLRenderer) UploadMesh(vertices []Vertex, indices []uint16) (MeshID, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return 0, fmt.Errorf("empty mesh")
	}

	m := &glMesh{indexCount: int32(len(indices))}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(unsafe.Sizeof(Vertex{})), unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*2, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	stride := int32(unsafe.Sizeof(Vertex{}))
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 12)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 24)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	r.nextID++
	id := MeshID(r.nextID)
	r.meshes[id] = m
	return id, nil
}

// UploadTexture uploads an RGBA image with per-axis wrap modes.
func (r *GLRenderer) UploadTexture(img *image.RGBA, wrapU, wrapV WrapMode) (TextureID, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return 0, fmt.Errorf("empty texture")
	}

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(wrapU))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(wrapV))
	gl.GenerateMipmap(gl.TEXTURE_2D)

	return TextureID(texID), nil
}

func glWrap(mode WrapMode) int32 {
	if mode == WrapRepeat {
		return gl.REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

// DeleteMesh releases a mesh's GPU buffers.
func (r *GLRenderer) DeleteMesh(id MeshID) {
	m, ok := r.meshes[id]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
	delete(r.meshes, id)
}

// DeleteTexture releases a texture.
func (r *GLRenderer) DeleteTexture(id TextureID) {
	if id == 0 {
		return
	}
	tex := uint32(id)
	gl.DeleteTextures(1, &tex)
}

// Clear prepares the frame: viewport, depth test, blending.
func (r *GLRenderer) Clear(width, height int32) {
	gl.Viewport(0, 0, width, height)
	gl.ClearColor(0.15, 0.15, 0.2, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
}

// Draw renders one mesh with its per-submesh texture bindings.
func (r *GLRenderer) Draw(call DrawCall) {
	m, ok := r.meshes[call.Mesh]
	if !ok || m.indexCount == 0 {
		return
	}

	gl.UseProgram(r.program)

	model, view, proj := call.Model, call.View, call.Projection
	gl.UniformMatrix4fv(r.locModel, 1, false, model.Ptr())
	gl.UniformMatrix4fv(r.locView, 1, false, view.Ptr())
	gl.UniformMatrix4fv(r.locProjection, 1, false, proj.Ptr())

	gl.Uniform3f(r.locLightDir, 0.5, 1.0, 0.5)
	gl.Uniform3f(r.locAmbient, 0.4, 0.4, 0.4)
	gl.Uniform3f(r.locDiffuse, 0.6, 0.6, 0.6)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.Uniform1i(r.locTexture, 0)
	gl.BindVertexArray(m.vao)

	for _, group := range call.Groups {
		texID := r.defaultTexture
		if group.Texture != 0 {
			texID = uint32(group.Texture)
		}
		gl.BindTexture(gl.TEXTURE_2D, texID)
		//nolint:govet // valid OpenGL offset pointer usage
		gl.DrawElements(gl.TRIANGLES, int32(group.IndexCount), gl.UNSIGNED_SHORT, unsafe.Pointer(uintptr(group.IndexStart*2)))
	}

	gl.BindVertexArray(0)
}

// Destroy releases the program, default texture and any live meshes.
func (r *GLRenderer) Destroy() {
	for id := range r.meshes {
		r.DeleteMesh(id)
	}
	if r.defaultTexture != 0 {
		gl.DeleteTextures(1, &r.defaultTexture)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

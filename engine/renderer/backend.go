package renderer

import (
	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/go-gl/mathgl/mgl32"
)

// RendererBackend is the thin layer over the graphics API. Every call must be
// issued from the render thread; the backend owns the implicit driver state
// (bound framebuffer, matrix stacks, current program) and the frontend types
// in this package restore whatever they change.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	// CheckError sweeps the driver error flag and returns a core.ErrGPU wrapped
	// error naming op when it was set.
	CheckError(op string) error
	MaxTextureUnits() uint32

	Clear()
	SetClearColor(r, g, b, a float32)
	SetDepthTest(enabled bool)
	IsDepthTestEnabled() bool
	SetCulling(enabled bool)
	SetBlending(enabled bool)
	// SetWireframe draws polygons as outlines until it is called with false.
	SetWireframe(enabled bool)
	SetViewport(viewport metadata.Viewport)
	GetViewport() metadata.Viewport

	// Push2D saves the projection and modelview matrices, then loads an
	// orthographic [0,1]x[0,1] projection. Pop2D restores them. The viewport is
	// not part of the saved state.
	Push2D()
	Pop2D()
	// DrawQuad draws the axis aligned quad (x0,y0)-(x1,y1) with texture
	// coordinates running from (0,0) at the first corner to (1,1) at the second.
	DrawQuad(x0, y0, x1, y1 float32)
	LoadMatrices(projection, modelView mgl32.Mat4)
	DrawTriangles(positions, normals []float32, indices []uint32)

	TextureCreate(texture *metadata.Texture, layers [][]float32) error
	TextureDestroy(texture *metadata.Texture)
	TextureBind(texture *metadata.Texture, unit uint32)
	TextureGenerateMipmaps(texture *metadata.Texture)
	// TextureRead downloads the base level of a 2D texture as RGBA float32.
	// It blocks until the GPU has finished writing the texture.
	TextureRead(texture *metadata.Texture, out []float32) error
	// ScreenRead downloads the given rectangle of the last presented frame as RGBA8.
	ScreenRead(viewport metadata.Viewport, out []uint8) error

	FramebufferCreate(depth bool) (*metadata.Framebuffer, error)
	FramebufferDestroy(framebuffer *metadata.Framebuffer)
	// FramebufferBind routes draw calls to framebuffer, or to the screen when nil.
	FramebufferBind(framebuffer *metadata.Framebuffer)
	// The attach and status calls act on the currently bound framebuffer.
	FramebufferAttachColor(texture *metadata.Texture)
	FramebufferAttachDepth(framebuffer *metadata.Framebuffer, width, height uint32)
	FramebufferStatus() (complete bool, status uint32)

	ShaderCreate(shader *metadata.Shader, vertexSource, fragmentSource string) error
	ShaderDestroy(shader *metadata.Shader)
	// ShaderUse makes shader the current program, or restores fixed function when nil.
	ShaderUse(shader *metadata.Shader)
	ShaderUniformLocation(shader *metadata.Shader, name string) int32
	// The uniform setters act on the current program.
	SetUniformFloat(location int32, uniformType metadata.ShaderUniformType, count int32, data []float32)
	SetUniformInt(location int32, uniformType metadata.ShaderUniformType, count int32, data []int32)
}

// ShaderSource resolves a shader path to its source text.
type ShaderSource interface {
	ShaderSource(path string) (string, error)
}

package opengl

import (
	"fmt"
	"strings"

	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/engine/platform"
	"github.com/dletozeun/3D/engine/renderer"
	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// OpenGLRenderer implements the renderer backend on an OpenGL 2.1 context
// with the framebuffer object and float texture extensions.
type OpenGLRenderer struct {
	platform        *platform.Platform
	maxTextureUnits uint32
	viewport        metadata.Viewport
}

var _ renderer.RendererBackend = (*OpenGLRenderer)(nil)

func New(p *platform.Platform) *OpenGLRenderer {
	return &OpenGLRenderer{
		platform: p,
	}
}

func (r *OpenGLRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	if r.platform != nil {
		r.platform.MakeContextCurrent()
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	core.LogInfo("%s running on OpenGL %s (%s)", appName,
		gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))

	extensions := gl.GoStr(gl.GetString(gl.EXTENSIONS))
	if err := checkExtensions(extensions); err != nil {
		return err
	}

	var units int32
	gl.GetIntegerv(gl.MAX_TEXTURE_IMAGE_UNITS, &units)
	r.maxTextureUnits = uint32(units)
	core.LogDebug("%d texture image units", units)

	gl.Enable(gl.TEXTURE_2D)
	gl.Disable(gl.LIGHTING)
	gl.Hint(gl.PERSPECTIVE_CORRECTION_HINT, gl.NICEST)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r.SetViewport(metadata.Viewport{Width: int32(appWidth), Height: int32(appHeight)})
	return r.CheckError("initialize")
}

func checkExtensions(extensions string) error {
	available := make(map[string]bool)
	for _, ext := range strings.Fields(extensions) {
		available[ext] = true
	}
	for _, alternatives := range requiredExtensions {
		found := false
		for _, ext := range alternatives {
			if available[ext] {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%s: %w", strings.Join(alternatives, " or "), core.ErrUnsupportedHardware)
		}
	}
	return nil
}

func (r *OpenGLRenderer) Shutdown() error {
	return r.CheckError("shutdown")
}

func (r *OpenGLRenderer) CheckError(op string) error {
	var codes []string
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		codes = append(codes, errorString(code))
	}
	if len(codes) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %s: %w", op, strings.Join(codes, ", "), core.ErrGPU)
}

func errorString(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.STACK_OVERFLOW:
		return "GL_STACK_OVERFLOW"
	case gl.STACK_UNDERFLOW:
		return "GL_STACK_UNDERFLOW"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	}
	return fmt.Sprintf("0x%x", code)
}

func (r *OpenGLRenderer) MaxTextureUnits() uint32 {
	return r.maxTextureUnits
}

func (r *OpenGLRenderer) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (r *OpenGLRenderer) SetClearColor(red, green, blue, alpha float32) {
	gl.ClearColor(red, green, blue, alpha)
}

func setCapability(capability uint32, enabled bool) {
	if enabled {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

func (r *OpenGLRenderer) SetDepthTest(enabled bool) {
	setCapability(gl.DEPTH_TEST, enabled)
}

func (r *OpenGLRenderer) IsDepthTestEnabled() bool {
	return gl.IsEnabled(gl.DEPTH_TEST)
}

func (r *OpenGLRenderer) SetCulling(enabled bool) {
	setCapability(gl.CULL_FACE, enabled)
}

func (r *OpenGLRenderer) SetBlending(enabled bool) {
	setCapability(gl.BLEND, enabled)
}

func (r *OpenGLRenderer) SetWireframe(enabled bool) {
	if enabled {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

func (r *OpenGLRenderer) SetViewport(viewport metadata.Viewport) {
	r.viewport = viewport
	gl.Viewport(viewport.X, viewport.Y, viewport.Width, viewport.Height)
}

func (r *OpenGLRenderer) GetViewport() metadata.Viewport {
	return r.viewport
}

func (r *OpenGLRenderer) Push2D() {
	gl.MatrixMode(gl.PROJECTION)
	gl.PushMatrix()
	gl.LoadIdentity()
	gl.Ortho(0, 1, 0, 1, -1, 1)

	gl.MatrixMode(gl.MODELVIEW)
	gl.PushMatrix()
	gl.LoadIdentity()
}

func (r *OpenGLRenderer) Pop2D() {
	gl.MatrixMode(gl.PROJECTION)
	gl.PopMatrix()
	gl.MatrixMode(gl.MODELVIEW)
	gl.PopMatrix()
}

func (r *OpenGLRenderer) DrawQuad(x0, y0, x1, y1 float32) {
	gl.Begin(gl.QUADS)

	gl.TexCoord2f(0, 0)
	gl.Vertex2f(x0, y0)

	gl.TexCoord2f(1, 0)
	gl.Vertex2f(x1, y0)

	gl.TexCoord2f(1, 1)
	gl.Vertex2f(x1, y1)

	gl.TexCoord2f(0, 1)
	gl.Vertex2f(x0, y1)

	gl.End()
}

func (r *OpenGLRenderer) LoadMatrices(projection, modelView mgl32.Mat4) {
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadMatrixf(&projection[0])
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadMatrixf(&modelView[0])
}

// DrawTriangles draws an indexed triangle list from client side arrays.
func (r *OpenGLRenderer) DrawTriangles(positions, normals []float32, indices []uint32) {
	if len(positions) == 0 || len(indices) == 0 {
		return
	}
	gl.EnableClientState(gl.VERTEX_ARRAY)
	gl.VertexPointer(3, gl.FLOAT, 0, gl.Ptr(positions))
	if len(normals) > 0 {
		gl.EnableClientState(gl.NORMAL_ARRAY)
		gl.NormalPointer(gl.FLOAT, 0, gl.Ptr(normals))
	}

	gl.DrawElements(gl.TRIANGLES, int32(len(indices)), gl.UNSIGNED_INT, gl.Ptr(indices))

	if len(normals) > 0 {
		gl.DisableClientState(gl.NORMAL_ARRAY)
	}
	gl.DisableClientState(gl.VERTEX_ARRAY)
}

func (r *OpenGLRenderer) ScreenRead(viewport metadata.Viewport, out []uint8) error {
	if want := int(viewport.Width) * int(viewport.Height) * 4; len(out) < want {
		return fmt.Errorf("screen read: buffer holds %d bytes, need %d", len(out), want)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.ReadBuffer(gl.FRONT)
	defer gl.ReadBuffer(gl.BACK)
	gl.ReadPixels(viewport.X, viewport.Y, viewport.Width, viewport.Height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(out))
	return r.CheckError("screen read")
}

package renderer

import (
	"github.com/dletozeun/3D/engine/renderer/metadata"
)

const (
	// BlitVertexShader is the vertex stage shared by every full screen pass.
	BlitVertexShader = "shaders/DiffuseTex2D.vert"
	// BlitFragmentShader samples BlitSampler and writes it unchanged.
	BlitFragmentShader = "shaders/DiffuseTex2D.frag"
	BlitSampler        = "u_texSampler"
)

// stateGuard restores the 2D drawing state saved by begin2D.
type stateGuard struct {
	backend   RendererBackend
	viewport  metadata.Viewport
	depthTest bool
	released  bool
}

// begin2D saves matrices and viewport, loads the unit square orthographic
// projection and disables depth testing. The returned guard must be released
// on every path, usually with defer.
func (r *Renderer) begin2D() *stateGuard {
	g := &stateGuard{backend: r.backend, viewport: r.backend.GetViewport()}
	r.backend.Push2D()
	if r.backend.IsDepthTestEnabled() {
		r.backend.SetDepthTest(false)
		g.depthTest = true
	}
	return g
}

func (g *stateGuard) Release() {
	if g.released {
		return
	}
	g.released = true
	if g.depthTest {
		g.backend.SetDepthTest(true)
	}
	g.backend.Pop2D()
	g.backend.SetViewport(g.viewport)
}

// blit draws the unit square. The caller has set up the projection and
// enabled an effect.
func (r *Renderer) blit() {
	r.backend.DrawQuad(0, 0, 1, 1)
}

// drawPass renders one full screen pass of effect into output, or into the
// screen when output is nil.
func (r *Renderer) drawPass(target *RenderTarget, effect *Effect, output *metadata.Texture) error {
	if output != nil {
		if err := target.Attach(output); err != nil {
			return err
		}
		target.Bind(true)
		r.backend.SetViewport(metadata.Viewport{Width: int32(output.Width), Height: int32(output.Height)})
	} else {
		target.Bind(false)
		r.backend.SetViewport(r.screenViewport())
	}

	if err := effect.Enable(); err != nil {
		return err
	}
	r.blit()

	if output.IsMipmapped() {
		r.backend.TextureGenerateMipmaps(output)
	}
	return nil
}

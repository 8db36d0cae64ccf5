package renderer

import (
	"fmt"

	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/engine/renderer/metadata"
)

// RenderTarget manages a framebuffer object used for render to texture. The
// color attachment is swapped freely between draws; the optional depth
// buffer follows the size of the attached texture.
type RenderTarget struct {
	backend     RendererBackend
	framebuffer *metadata.Framebuffer
	texture     *metadata.Texture
	depthTest   bool
}

func NewRenderTarget(backend RendererBackend, depthTest bool) (*RenderTarget, error) {
	fb, err := backend.FramebufferCreate(depthTest)
	if err != nil {
		return nil, fmt.Errorf("render target: %w", err)
	}
	return &RenderTarget{
		backend:     backend,
		framebuffer: fb,
		depthTest:   depthTest,
	}, nil
}

// Attach sets the texture to render to. The framebuffer is left unbound. An
// incomplete framebuffer is a configuration error (mismatched sizes or an
// unsupported format) and is reported as core.ErrFramebufferIncomplete.
func (rt *RenderTarget) Attach(texture *metadata.Texture) error {
	if texture == nil {
		return fmt.Errorf("render target attach: %w", core.ErrNullTexture)
	}
	rt.texture = texture

	rt.Bind(true)
	defer rt.Bind(false)

	rt.backend.FramebufferAttachColor(texture)
	if rt.depthTest {
		rt.backend.FramebufferAttachDepth(rt.framebuffer, texture.Width, texture.Height)
	}

	if complete, status := rt.backend.FramebufferStatus(); !complete {
		return fmt.Errorf("render target attach %q (%dx%d): status 0x%x: %w",
			texture.Name, texture.Width, texture.Height, status, core.ErrFramebufferIncomplete)
	}
	return nil
}

// Texture returns the texture currently attached, nil before the first Attach.
func (rt *RenderTarget) Texture() *metadata.Texture {
	return rt.texture
}

// Bind routes draw calls to the attached texture when state is true and to
// the screen otherwise. Viewport and matrices are left to the caller.
func (rt *RenderTarget) Bind(state bool) {
	if state {
		rt.backend.FramebufferBind(rt.framebuffer)
	} else {
		rt.backend.FramebufferBind(nil)
	}
}

func (rt *RenderTarget) Destroy() {
	if rt.framebuffer == nil {
		return
	}
	rt.backend.FramebufferDestroy(rt.framebuffer)
	rt.framebuffer = nil
	rt.texture = nil
}

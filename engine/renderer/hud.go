package renderer

import (
	"fmt"

	"github.com/dletozeun/3D/engine/renderer/metadata"
)

// Hud draws a texture over the screen, alpha blended, in the rectangle
// (x0,y0)-(x1,y1) given in normalized screen coordinates with the origin at
// the top left corner.
type Hud struct {
	renderer *Renderer
	texture  *metadata.Texture
	effect   *Effect
	x0, y0   float32
	x1, y1   float32
}

func (r *Renderer) NewHud(texture *metadata.Texture, x0, y0, x1, y1 float32) (*Hud, error) {
	effect, err := r.NewEffect(BlitVertexShader, BlitFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("hud: %w", err)
	}
	if _, err := effect.AddTexture(texture, 0, BlitSampler); err != nil {
		effect.Destroy()
		return nil, fmt.Errorf("hud: %w", err)
	}
	return &Hud{
		renderer: r,
		texture:  texture,
		effect:   effect,
		x0:       x0,
		y0:       y0,
		x1:       x1,
		y1:       y1,
	}, nil
}

// Draw paints the overlay into whatever is currently bound, usually the
// screen after the post processing chains ran.
func (h *Hud) Draw() error {
	backend := h.renderer.backend

	guard := h.renderer.begin2D()
	defer guard.Release()

	backend.SetViewport(h.renderer.screenViewport())
	backend.SetBlending(true)
	defer backend.SetBlending(false)

	if err := h.effect.Enable(); err != nil {
		return fmt.Errorf("hud: %w", err)
	}
	defer h.effect.Disable()

	// The projection has its origin at the bottom left and the texture rows
	// are stored bottom-up, so texture coordinate (0,0) goes to the bottom
	// left corner of the rectangle.
	backend.DrawQuad(h.x0, 1-h.y1, h.x1, 1-h.y0)
	return nil
}

func (h *Hud) Texture() *metadata.Texture {
	return h.texture
}

func (h *Hud) Destroy() {
	h.effect.Destroy()
}

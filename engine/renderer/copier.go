package renderer

import (
	"fmt"

	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/engine/renderer/metadata"
)

// TextureCopier copies a 2D texture into another one, or to the screen, by
// drawing it through the blit effect.
type TextureCopier struct {
	renderer *Renderer
	target   *RenderTarget
	effect   *Effect
	sourceID int
}

func NewTextureCopier(r *Renderer) (*TextureCopier, error) {
	if r == nil {
		return nil, fmt.Errorf("texture copier: %w", core.ErrInvalidRenderer)
	}
	target, err := NewRenderTarget(r.backend, false)
	if err != nil {
		return nil, fmt.Errorf("texture copier: %w", err)
	}
	effect, err := r.NewEffect(BlitVertexShader, BlitFragmentShader)
	if err != nil {
		target.Destroy()
		return nil, fmt.Errorf("texture copier: %w", err)
	}
	sourceID, err := effect.AddTexture(nil, 0, BlitSampler)
	if err != nil {
		effect.Destroy()
		target.Destroy()
		return nil, fmt.Errorf("texture copier: %w", err)
	}
	return &TextureCopier{
		renderer: r,
		target:   target,
		effect:   effect,
		sourceID: sourceID,
	}, nil
}

// Copy draws src into dst. A nil dst copies to the screen.
func (tc *TextureCopier) Copy(src, dst *metadata.Texture) error {
	if src == nil {
		return fmt.Errorf("texture copy: %w", core.ErrNullSource)
	}

	guard := tc.renderer.begin2D()
	defer guard.Release()
	defer tc.target.Bind(false)
	defer tc.effect.Disable()

	if err := tc.effect.SetTexture(tc.sourceID, src); err != nil {
		return err
	}
	if err := tc.renderer.drawPass(tc.target, tc.effect, dst); err != nil {
		return fmt.Errorf("texture copy %q: %w", src.Name, err)
	}
	return nil
}

func (tc *TextureCopier) Destroy() {
	tc.effect.Destroy()
	tc.target.Destroy()
}

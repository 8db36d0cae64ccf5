package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/dletozeun/3D/engine/assets/loaders"
	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoRowTexture uploads a 1x2 image, red on top and blue below, the way the
// texture system loads images.
func twoRowTexture(t *testing.T, r *Renderer) *metadata.Texture {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})
	data := loaders.ImageData(img, metadata.ImageResourceParams{FlipY: true})

	texture := metadata.NewTexture(metadata.TextureConfig{
		Name:        "help",
		TextureType: metadata.TextureType2d,
		Width:       data.Width,
		Height:      data.Height,
		Format:      metadata.TextureFormatRGBA8,
	})
	require.NoError(t, r.backend.TextureCreate(texture, [][]float32{data.Pixels}))
	return texture
}

func TestHudDrawsImageUpright(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 4, 10)
	hud, err := r.NewHud(twoRowTexture(t, r), 0.1, 0.1, 0.9, 0.7)
	require.NoError(t, err)
	defer hud.Destroy()

	screen := backend.viewport
	require.NoError(t, hud.Draw())

	// texture coordinate (0,0) sits at the bottom of the rectangle
	require.Len(t, backend.quads, 1)
	quad := backend.quads[0]
	assert.InDelta(t, 0.1, quad[0], 1e-6)
	assert.InDelta(t, 0.3, quad[1], 1e-6)
	assert.InDelta(t, 0.9, quad[2], 1e-6)
	assert.InDelta(t, 0.9, quad[3], 1e-6)

	// screen rows are stored bottom first
	pixel := func(x, y int) []float32 {
		i := 4 * (y*4 + x)
		return backend.screen[i : i+4]
	}
	red := []float32{1, 0, 0, 1}
	blue := []float32{0, 0, 1, 1}
	assert.Equal(t, red, pixel(1, 8), "the top row of the image is at the top of the rectangle")
	assert.Equal(t, blue, pixel(1, 3))
	assert.Equal(t, []float32{0, 0, 0, 0}, pixel(1, 9), "outside the rectangle")
	assert.Equal(t, []float32{0, 0, 0, 0}, pixel(1, 2))

	assert.False(t, backend.blending)
	requireRestored(t, backend, screen, true)
}

func TestHudNullTexture(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 4, 4)
	hud, err := r.NewHud(nil, 0, 0, 1, 1)
	require.NoError(t, err)
	defer hud.Destroy()

	screen := backend.viewport
	require.Error(t, hud.Draw())
	assert.Empty(t, backend.quads)
	assert.False(t, backend.blending)
	requireRestored(t, backend, screen, true)
}

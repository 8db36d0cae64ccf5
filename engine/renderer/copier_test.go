package renderer

import (
	"testing"

	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkerboard(x, y int) [4]float32 {
	if (x+y)%2 == 0 {
		return [4]float32{1, 1, 1, 1}
	}
	return [4]float32{0, 0, 0, 1}
}

func readTexture(t *testing.T, b *simBackend, texture *metadata.Texture) []float32 {
	t.Helper()
	out := make([]float32, 4*texture.PixelCount())
	require.NoError(t, b.TextureRead(texture, out))
	return out
}

func TestTextureCopierRoundTrip(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 64, 32)
	copier, err := NewTextureCopier(r)
	require.NoError(t, err)
	defer copier.Destroy()

	testCases := []struct {
		name    string
		pattern func(x, y int) [4]float32
	}{
		{"solid", func(x, y int) [4]float32 { return [4]float32{0.25, 0.5, 3, 1} }},
		{"checkerboard", checkerboard},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := newTestTexture(t, r, tc.name+"_src", 16, 16)
			dst := newTestTexture(t, r, tc.name+"_dst", 16, 16)
			backend.fill(src, tc.pattern)

			screen := backend.viewport
			require.NoError(t, copier.Copy(src, dst))
			assert.Equal(t, readTexture(t, backend, src), readTexture(t, backend, dst))
			requireRestored(t, backend, screen, true)
		})
	}
}

func TestTextureCopierDownsample(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 64, 32)
	copier, err := NewTextureCopier(r)
	require.NoError(t, err)
	defer copier.Destroy()

	src := newTestTexture(t, r, "large", 128, 128)
	dst := newTestTexture(t, r, "small", 64, 64)
	backend.fill(src, func(x, y int) [4]float32 { return [4]float32{0.5, 0.5, 0.5, 1} })

	require.NoError(t, copier.Copy(src, dst))
	for i, v := range readTexture(t, backend, dst) {
		if i%4 == 3 {
			assert.Equal(t, float32(1), v)
		} else {
			assert.Equal(t, float32(0.5), v)
		}
	}

	last := backend.draws[len(backend.draws)-1]
	assert.Equal(t, metadata.Viewport{Width: 64, Height: 64}, last.viewport)
	assert.Equal(t, "shaders/DiffuseTex2D.frag", last.program)
}

func TestTextureCopierToScreen(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 4, 4)
	copier, err := NewTextureCopier(r)
	require.NoError(t, err)
	defer copier.Destroy()

	src := newTestTexture(t, r, "src", 4, 4)
	backend.fill(src, checkerboard)
	require.NoError(t, copier.Copy(src, nil))

	assert.Equal(t, readTexture(t, backend, src), backend.screen)
	require.Len(t, backend.draws, 1)
	assert.Equal(t, "screen", backend.draws[0].target)
}

func TestTextureCopierNullSource(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 64, 32)
	copier, err := NewTextureCopier(r)
	require.NoError(t, err)
	defer copier.Destroy()

	err = copier.Copy(nil, newTestTexture(t, r, "dst", 4, 4))
	require.ErrorIs(t, err, core.ErrNullSource)
	assert.Empty(t, backend.draws)
	assert.Zero(t, backend.stack)
}

func TestTextureCopierIncompleteTarget(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 64, 32)
	copier, err := NewTextureCopier(r)
	require.NoError(t, err)
	defer copier.Destroy()

	src := newTestTexture(t, r, "src", 4, 4)
	screen := backend.viewport
	backend.forceIncomplete = true
	err = copier.Copy(src, newTestTexture(t, r, "dst", 4, 4))
	require.ErrorIs(t, err, core.ErrFramebufferIncomplete)
	assert.Empty(t, backend.draws)
	requireRestored(t, backend, screen, true)
}

func TestNewTextureCopierWithoutRenderer(t *testing.T) {
	_, err := NewTextureCopier(nil)
	require.ErrorIs(t, err, core.ErrInvalidRenderer)
}

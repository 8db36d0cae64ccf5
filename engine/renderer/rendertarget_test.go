package renderer

import (
	"testing"

	"github.com/dletozeun/3D/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTargetAttach(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 64, 32)

	rt, err := NewRenderTarget(backend, true)
	require.NoError(t, err)
	defer rt.Destroy()

	small := newTestTexture(t, r, "small", 16, 8)
	require.NoError(t, rt.Attach(small))
	assert.Same(t, small, rt.Texture())
	assert.Nil(t, backend.bound, "Attach leaves the framebuffer unbound")
	assert.Equal(t, uint32(16), rt.framebuffer.DepthWidth)
	assert.Equal(t, uint32(8), rt.framebuffer.DepthHeight)

	// the depth buffer follows the new color attachment
	large := newTestTexture(t, r, "large", 128, 128)
	require.NoError(t, rt.Attach(large))
	assert.Same(t, large, rt.Texture())
	assert.Equal(t, uint32(128), rt.framebuffer.DepthWidth)
	assert.Equal(t, uint32(128), rt.framebuffer.DepthHeight)
}

func TestRenderTargetAttachIncomplete(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 64, 32)

	rt, err := NewRenderTarget(backend, false)
	require.NoError(t, err)
	defer rt.Destroy()

	backend.forceIncomplete = true
	err = rt.Attach(newTestTexture(t, r, "bad", 16, 16))
	require.ErrorIs(t, err, core.ErrFramebufferIncomplete)
	assert.Nil(t, backend.bound)

	err = rt.Attach(nil)
	require.ErrorIs(t, err, core.ErrNullTexture)
}

func TestRenderTargetBind(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 64, 32)

	rt, err := NewRenderTarget(backend, false)
	require.NoError(t, err)
	require.NoError(t, rt.Attach(newTestTexture(t, r, "color", 4, 4)))

	rt.Bind(true)
	require.NotNil(t, backend.bound)
	assert.Equal(t, "color", backend.targetName())

	rt.Bind(false)
	assert.Equal(t, "screen", backend.targetName())

	fbos := backend.liveFBOs
	rt.Destroy()
	rt.Destroy()
	assert.Equal(t, fbos-1, backend.liveFBOs)
	assert.Nil(t, rt.Texture())
}

func TestNewRendererIncompleteOutputIsFatal(t *testing.T) {
	backend := newSimBackend(64, 32)
	backend.forceIncomplete = true

	_, err := New("test", backend, simSources{}, 64, 32)
	require.ErrorIs(t, err, core.ErrFramebufferIncomplete)
	assert.True(t, core.IsFatal(err))
}

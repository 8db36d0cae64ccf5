package testbed

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHelp(t *testing.T) {
	img, err := renderHelp(820, 460)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 820, 460), img.Bounds())

	// the panel is translucent, the border opaque
	assert.Less(t, img.RGBAAt(400, 450).A, uint8(255))
	assert.Equal(t, uint8(255), img.RGBAAt(0, 0).A)

	// some text was drawn in the text column
	bright := 0
	for y := 24; y < 440; y++ {
		for x := 24; x < 600; x++ {
			if img.RGBAAt(x, y).G > 200 {
				bright++
			}
		}
	}
	assert.Greater(t, bright, 500)
}

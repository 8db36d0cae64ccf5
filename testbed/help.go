package testbed

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const helpImagePath = "images/help.png"

var helpLines = []string{
	"HDR rendering demo",
	"",
	"F1          show / hide this help",
	"F2          wireframe on / off",
	"A  Z  E     switch scene",
	"Left drag   orbit around the object",
	"Right drag  move closer / farther",
	"P           save a screenshot",
	"Esc         close the help, then quit",
	"",
	"The exposure adapts to the average luminance of the frame,",
	"bright areas glow.",
}

// renderHelp draws the help text on a translucent panel of the given size.
func renderHelp(width, height int) (*image.RGBA, error) {
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    20,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	defer face.Close()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{R: 10, G: 10, B: 24, A: 200}), image.Point{}, draw.Src)

	// frame
	border := image.NewUniform(color.NRGBA{R: 240, G: 180, B: 60, A: 255})
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, width, 3),
		image.Rect(0, height-3, width, height),
		image.Rect(0, 0, 3, height),
		image.Rect(width-3, 0, width, height),
	} {
		draw.Draw(img, r, border, image.Point{}, draw.Over)
	}

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil() + 6
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	y := 24 + metrics.Ascent.Ceil()
	for i, line := range helpLines {
		if i == 0 {
			d.Src = image.NewUniform(color.NRGBA{R: 240, G: 180, B: 60, A: 255})
		} else {
			d.Src = image.NewUniform(color.White)
		}
		d.Dot = fixed.Point26_6{X: fixed.I(24), Y: fixed.I(y)}
		d.DrawString(line)
		y += lineHeight
	}
	return img, nil
}

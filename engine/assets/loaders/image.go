package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/dletozeun/3D/engine/renderer/metadata"
	"golang.org/x/image/draw"
)

type ImageLoader struct{}

func (il *ImageLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	var typedParams metadata.ImageResourceParams
	if p, ok := params.(*metadata.ImageResourceParams); ok && p != nil {
		typedParams = *p
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	data := ImageData(img, typedParams)
	return &metadata.Resource{
		Name:     "image",
		FullPath: path,
		DataSize: uint64(len(data.Pixels) * 4),
		Data:     data,
	}, nil
}

func (il *ImageLoader) Unload(*metadata.Resource) error {
	return nil
}

// ImageData converts img to normalized RGBA floats.
func ImageData(img image.Image, params metadata.ImageResourceParams) *metadata.ImageResourceData {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if limit := int(params.MaxSize); limit > 0 && (width > limit || height > limit) {
		if width >= height {
			height = height * limit / width
			width = limit
		} else {
			width = width * limit / height
			height = limit
		}
		if width == 0 {
			width = 1
		}
		if height == 0 {
			height = 1
		}
	}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	if width == bounds.Dx() && height == bounds.Dy() {
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(rgba, rgba.Bounds(), img, bounds, draw.Src, nil)
	}

	pixels := make([]float32, width*height*4)
	for y := 0; y < height; y++ {
		row := y
		if params.FlipY {
			row = height - 1 - y
		}
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+width*4]
		dst := pixels[row*width*4 : (row+1)*width*4]
		for i, v := range src {
			dst[i] = float32(v) / 255
		}
	}

	return &metadata.ImageResourceData{
		Width:  uint32(width),
		Height: uint32(height),
		Pixels: pixels,
	}
}

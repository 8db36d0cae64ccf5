package opengl

import (
	"fmt"
	"unsafe"

	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/go-gl/gl/v2.1/gl"
)

func textureTarget(texture *metadata.Texture) uint32 {
	if texture.TextureType == metadata.TextureTypeCube {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

func internalFormat(format metadata.TextureFormat) int32 {
	switch format {
	case metadata.TextureFormatRGBA32F:
		return int32(glRGBA32F)
	case metadata.TextureFormatRGBA16F:
		return int32(glRGBA16F)
	}
	return gl.RGBA8
}

func filterMode(filter metadata.TextureFilter) int32 {
	switch filter {
	case metadata.TextureFilterModeNearest:
		return gl.NEAREST
	case metadata.TextureFilterModeLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	}
	return gl.LINEAR
}

func repeatMode(repeat metadata.TextureRepeat) int32 {
	switch repeat {
	case metadata.TextureRepeatMirroredRepeat:
		return gl.MIRRORED_REPEAT
	case metadata.TextureRepeatClampToEdge:
		return gl.CLAMP_TO_EDGE
	case metadata.TextureRepeatClampToBorder:
		return gl.CLAMP_TO_BORDER
	}
	return gl.REPEAT
}

// TextureCreate allocates storage for texture and uploads layers, RGBA float
// pixels bottom row first. A 2D texture takes one layer, a cube map six in
// metadata.CubeFace order. nil layers leave the storage uninitialized.
func (r *OpenGLRenderer) TextureCreate(texture *metadata.Texture, layers [][]float32) error {
	faces := 1
	if texture.TextureType == metadata.TextureTypeCube {
		faces = int(metadata.CubeFaceCount)
	}
	if layers != nil && len(layers) != faces {
		return fmt.Errorf("texture %q: %d layers for %d faces", texture.Name, len(layers), faces)
	}
	for i, layer := range layers {
		if want := texture.PixelCount() * 4; layer != nil && len(layer) != want {
			return fmt.Errorf("texture %q layer %d: %d values, need %d", texture.Name, i, len(layer), want)
		}
	}

	target := textureTarget(texture)
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(target, id)

	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, filterMode(texture.FilterMinify))
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, filterMode(texture.FilterMagnify))
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, repeatMode(texture.Repeat))
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, repeatMode(texture.Repeat))
	if target == gl.TEXTURE_CUBE_MAP {
		gl.TexParameteri(target, gl.TEXTURE_WRAP_R, repeatMode(texture.Repeat))
	}

	for face := 0; face < faces; face++ {
		imageTarget := target
		if target == gl.TEXTURE_CUBE_MAP {
			imageTarget = gl.TEXTURE_CUBE_MAP_POSITIVE_X + uint32(face)
		}
		var pixels []float32
		if layers != nil {
			pixels = layers[face]
		}
		var ptr unsafe.Pointer
		if len(pixels) > 0 {
			ptr = gl.Ptr(pixels)
		}
		gl.TexImage2D(imageTarget, 0, internalFormat(texture.Format),
			int32(texture.Width), int32(texture.Height), 0, gl.RGBA, gl.FLOAT, ptr)
	}

	if texture.Mipmapped {
		gl.GenerateMipmap(target)
	}
	gl.BindTexture(target, 0)

	texture.ID = id
	texture.Generation++
	if err := r.CheckError(fmt.Sprintf("texture create %q", texture.Name)); err != nil {
		gl.DeleteTextures(1, &id)
		texture.ID = metadata.InvalidID
		return err
	}
	return nil
}

func (r *OpenGLRenderer) TextureDestroy(texture *metadata.Texture) {
	if !texture.IsCreated() {
		return
	}
	gl.DeleteTextures(1, &texture.ID)
	texture.ID = metadata.InvalidID
}

func (r *OpenGLRenderer) TextureBind(texture *metadata.Texture, unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(textureTarget(texture), texture.ID)
	gl.ActiveTexture(gl.TEXTURE0)
}

func (r *OpenGLRenderer) TextureGenerateMipmaps(texture *metadata.Texture) {
	target := textureTarget(texture)
	gl.BindTexture(target, texture.ID)
	gl.GenerateMipmap(target)
	gl.BindTexture(target, 0)
}

func (r *OpenGLRenderer) TextureRead(texture *metadata.Texture, out []float32) error {
	if texture.TextureType != metadata.TextureType2d {
		return fmt.Errorf("texture read %q: only 2D textures can be read back", texture.Name)
	}
	if want := texture.PixelCount() * 4; len(out) < want {
		return fmt.Errorf("texture read %q: buffer holds %d values, need %d", texture.Name, len(out), want)
	}
	gl.BindTexture(gl.TEXTURE_2D, texture.ID)
	gl.GetTexImage(gl.TEXTURE_2D, 0, gl.RGBA, gl.FLOAT, gl.Ptr(out))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return r.CheckError(fmt.Sprintf("texture read %q", texture.Name))
}

package metadata

/** @brief Marks a GPU handle or generation that does not refer to anything yet. */
const InvalidID uint32 = 4294967295

/**
 * @brief Represents various types of textures.
 */
type TextureType int

const (
	/** @brief A standard two-dimensional texture. */
	TextureType2d TextureType = iota
	/** @brief A cube texture, used for cubemaps. */
	TextureTypeCube
)

/** @brief The pixel storage of a texture. */
type TextureFormat int

const (
	/** @brief 8 bits per channel RGBA, used for LDR images such as the help overlay. */
	TextureFormatRGBA8 TextureFormat = iota
	/** @brief 32 bits float per channel RGBA, used for every HDR target. */
	TextureFormatRGBA32F
	/** @brief 16 bits float per channel RGBA. */
	TextureFormatRGBA16F
)

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = 0x0
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear TextureFilter = 0x1
	/** @brief Trilinear filtering, only valid for minification of mip-mapped textures. */
	TextureFilterModeLinearMipmapLinear TextureFilter = 0x2
)

type TextureRepeat int

const (
	TextureRepeatRepeat         TextureRepeat = 0x1
	TextureRepeatMirroredRepeat TextureRepeat = 0x2
	TextureRepeatClampToEdge    TextureRepeat = 0x3
	TextureRepeatClampToBorder  TextureRepeat = 0x4
)

/** @brief Cube map faces in upload order (+X, -X, +Y, -Y, +Z, -Z). */
type CubeFace int

const (
	CubeFacePositiveX CubeFace = iota
	CubeFaceNegativeX
	CubeFacePositiveY
	CubeFaceNegativeY
	CubeFacePositiveZ
	CubeFaceNegativeZ
	CubeFaceCount
)

/**
 * @brief Describes how a texture must be allocated on the GPU.
 */
type TextureConfig struct {
	Name          string
	TextureType   TextureType
	Width         uint32
	Height        uint32
	Format        TextureFormat
	FilterMinify  TextureFilter
	FilterMagnify TextureFilter
	Repeat        TextureRepeat
	Mipmapped     bool
}

/**
 * @brief Represents a texture.
 */
type Texture struct {
	/** @brief The backend texture handle. InvalidID until created. */
	ID uint32
	/** @brief The texture type. */
	TextureType TextureType
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The pixel Format. */
	Format TextureFormat
	FilterMinify  TextureFilter
	FilterMagnify TextureFilter
	Repeat        TextureRepeat
	/** @brief True when the mip chain must be regenerated after every write. */
	Mipmapped bool
	/** @brief The texture Generation. Incremented every time the data is reloaded. */
	Generation uint32
	/** @brief The texture Name. */
	Name string
	/** @brief Backend specific data. */
	InternalData interface{}
}

// NewTexture returns a texture shell described by config. The texture has no
// GPU storage until a backend creates it.
func NewTexture(config TextureConfig) *Texture {
	return &Texture{
		ID:            InvalidID,
		TextureType:   config.TextureType,
		Width:         config.Width,
		Height:        config.Height,
		Format:        config.Format,
		FilterMinify:  config.FilterMinify,
		FilterMagnify: config.FilterMagnify,
		Repeat:        config.Repeat,
		Mipmapped:     config.Mipmapped,
		Generation:    InvalidID,
		Name:          config.Name,
	}
}

// IsMipmapped reports whether the mip chain must be regenerated after the
// texture has been rendered to.
func (t *Texture) IsMipmapped() bool {
	return t != nil && t.Mipmapped
}

// PixelCount returns the number of texels of the base level of one face.
func (t *Texture) PixelCount() int {
	return int(t.Width) * int(t.Height)
}

// IsCreated reports whether the texture owns GPU storage.
func (t *Texture) IsCreated() bool {
	return t != nil && t.ID != InvalidID
}

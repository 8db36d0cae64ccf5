package systems

import (
	"errors"
	"fmt"

	"github.com/dletozeun/3D/engine/assets"
	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/engine/renderer"
	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/google/uuid"
)

var ErrTextureNotFound = errors.New("texture not found")

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
}

type textureReference struct {
	texture        *metadata.Texture
	referenceCount uint64
}

// TextureSystem owns every texture created for the application, by name.
type TextureSystem struct {
	Config *TextureSystemConfig
	// Hashtable for texture lookups.
	registeredTextures map[string]*textureReference
	// sub systems
	assetManager *assets.AssetManager
	backend      renderer.RendererBackend
}

func NewTextureSystem(config *TextureSystemConfig, am *assets.AssetManager, backend renderer.RendererBackend) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		return nil, errors.New("texture system: config.MaxTextureCount must be > 0")
	}
	return &TextureSystem{
		Config:             config,
		registeredTextures: make(map[string]*textureReference),
		assetManager:       am,
		backend:            backend,
	}, nil
}

func (ts *TextureSystem) Shutdown() error {
	// Destroy all loaded textures.
	for name, ref := range ts.registeredTextures {
		ts.backend.TextureDestroy(ref.texture)
		delete(ts.registeredTextures, name)
	}
	return nil
}

// Create allocates a texture described by config and uploads layers (see
// RendererBackend.TextureCreate). An empty name is replaced by a unique one.
func (ts *TextureSystem) Create(config metadata.TextureConfig, layers [][]float32) (*metadata.Texture, error) {
	if config.Name == "" {
		config.Name = uuid.NewString()
	}
	if _, exists := ts.registeredTextures[config.Name]; exists {
		return nil, fmt.Errorf("texture %q already exists", config.Name)
	}
	if uint32(len(ts.registeredTextures)) >= ts.Config.MaxTextureCount {
		return nil, fmt.Errorf("texture %q: the system holds the maximum of %d textures", config.Name, ts.Config.MaxTextureCount)
	}

	texture := metadata.NewTexture(config)
	if err := ts.backend.TextureCreate(texture, layers); err != nil {
		return nil, err
	}
	ts.registeredTextures[config.Name] = &textureReference{
		texture:        texture,
		referenceCount: 1,
	}
	core.LogDebug("texture %q created (%dx%d)", texture.Name, texture.Width, texture.Height)
	return texture, nil
}

// RenderTarget creates an uninitialized float texture meant to be rendered to.
func (ts *TextureSystem) RenderTarget(name string, width, height uint32) (*metadata.Texture, error) {
	return ts.Create(metadata.TextureConfig{
		Name:          name,
		TextureType:   metadata.TextureType2d,
		Width:         width,
		Height:        height,
		Format:        metadata.TextureFormatRGBA32F,
		FilterMinify:  metadata.TextureFilterModeLinear,
		FilterMagnify: metadata.TextureFilterModeLinear,
		Repeat:        metadata.TextureRepeatClampToEdge,
	}, nil)
}

// FromImage uploads decoded image data as an 8 bit texture.
func (ts *TextureSystem) FromImage(name string, image *metadata.ImageResourceData) (*metadata.Texture, error) {
	return ts.Create(metadata.TextureConfig{
		Name:          name,
		TextureType:   metadata.TextureType2d,
		Width:         image.Width,
		Height:        image.Height,
		Format:        metadata.TextureFormatRGBA8,
		FilterMinify:  metadata.TextureFilterModeLinear,
		FilterMagnify: metadata.TextureFilterModeLinear,
		Repeat:        metadata.TextureRepeatClampToEdge,
	}, [][]float32{image.Pixels})
}

// Load creates a texture from the image asset at path, or returns the
// already loaded one with its reference count incremented.
func (ts *TextureSystem) Load(path string) (*metadata.Texture, error) {
	if texture, err := ts.Acquire(path); err == nil {
		return texture, nil
	}
	resource, err := ts.assetManager.LoadAsset(path, metadata.ResourceTypeImage, &metadata.ImageResourceParams{FlipY: true})
	if err != nil {
		return nil, err
	}
	defer ts.assetManager.UnloadAsset(resource)
	return ts.FromImage(path, resource.Data.(*metadata.ImageResourceData))
}

// Acquire returns the texture called name and increments its reference count.
func (ts *TextureSystem) Acquire(name string) (*metadata.Texture, error) {
	ref, exists := ts.registeredTextures[name]
	if !exists {
		return nil, fmt.Errorf("%q: %w", name, ErrTextureNotFound)
	}
	ref.referenceCount++
	return ref.texture, nil
}

// Release decrements the reference count of name and destroys the texture
// when it drops to zero.
func (ts *TextureSystem) Release(name string) {
	ref, exists := ts.registeredTextures[name]
	if !exists {
		core.LogWarn("texture system release: unknown texture %q", name)
		return
	}
	ref.referenceCount--
	if ref.referenceCount > 0 {
		return
	}
	ts.backend.TextureDestroy(ref.texture)
	delete(ts.registeredTextures, name)
	core.LogDebug("texture %q released", name)
}

func (ts *TextureSystem) Count() int {
	return len(ts.registeredTextures)
}

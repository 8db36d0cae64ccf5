package scene

import (
	"fmt"

	"github.com/dletozeun/3D/engine/renderer"
	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/go-gl/mathgl/mgl32"
)

// TextureCreator allocates GPU textures, see systems.TextureSystem.
type TextureCreator interface {
	Create(config metadata.TextureConfig, layers [][]float32) (*metadata.Texture, error)
}

type EnvironmentSizes struct {
	Sky      int
	Diffuse  int
	Specular int
	// Samples is the number of directions used by the convolutions.
	Samples int
}

var DefaultEnvironmentSizes = EnvironmentSizes{
	Sky:      128,
	Diffuse:  16,
	Specular: 32,
	Samples:  256,
}

// EnvironmentData holds the baked cube map faces of a preset, CPU side.
type EnvironmentData struct {
	Preset   EnvironmentPreset
	Sizes    EnvironmentSizes
	Sky      [][]float32
	Diffuse  [][]float32
	Specular [][]float32
}

// Bake evaluates the sky and its two convolutions. It touches no GPU state
// and can run on a worker.
func Bake(preset EnvironmentPreset, sizes EnvironmentSizes) *EnvironmentData {
	return &EnvironmentData{
		Preset:   preset,
		Sizes:    sizes,
		Sky:      RenderCube(sizes.Sky, preset.Radiance),
		Diffuse:  RenderCube(sizes.Diffuse, preset.Convolve(1, sizes.Samples)),
		Specular: RenderCube(sizes.Specular, preset.Convolve(32, sizes.Samples)),
	}
}

// Environment is the set of cube maps lighting a scene.
type Environment struct {
	Name     string
	Sky      *metadata.Texture
	Diffuse  *metadata.Texture
	Specular *metadata.Texture
}

// Upload creates the cube map textures. Must run on the render thread.
func (d *EnvironmentData) Upload(tc TextureCreator) (*Environment, error) {
	env := &Environment{Name: d.Preset.Name}
	var err error
	if env.Sky, err = createCube(tc, d.Preset.Name+"_env", d.Sizes.Sky, d.Sky); err != nil {
		return nil, err
	}
	if env.Diffuse, err = createCube(tc, d.Preset.Name+"_diffuse", d.Sizes.Diffuse, d.Diffuse); err != nil {
		return nil, err
	}
	if env.Specular, err = createCube(tc, d.Preset.Name+"_specular", d.Sizes.Specular, d.Specular); err != nil {
		return nil, err
	}
	return env, nil
}

func createCube(tc TextureCreator, name string, size int, faces [][]float32) (*metadata.Texture, error) {
	texture, err := tc.Create(metadata.TextureConfig{
		Name:          name,
		TextureType:   metadata.TextureTypeCube,
		Width:         uint32(size),
		Height:        uint32(size),
		Format:        metadata.TextureFormatRGBA16F,
		FilterMinify:  metadata.TextureFilterModeLinear,
		FilterMagnify: metadata.TextureFilterModeLinear,
		Repeat:        metadata.TextureRepeatClampToEdge,
	}, faces)
	if err != nil {
		return nil, fmt.Errorf("environment %s: %w", name, err)
	}
	return texture, nil
}

// Preset pairs a mesh with an environment and a starting point of view.
type Preset struct {
	Name        string
	Mesh        MeshKind
	Environment EnvironmentPreset
	Eye         mgl32.Vec3
}

var DefaultPresets = []Preset{
	{Name: "beach", Mesh: MeshBlob, Environment: EnvironmentBeach, Eye: mgl32.Vec3{1.72221, 0.130611, 0.130098}},
	{Name: "kitchen", Mesh: MeshTorus, Environment: EnvironmentKitchen, Eye: mgl32.Vec3{0.767144, 0.0578506, 1.24567}},
	{Name: "building", Mesh: MeshSphere, Environment: EnvironmentBuilding, Eye: mgl32.Vec3{0.842112, -0.426883, -2.80972}},
}

// Scene draws one mesh lit by its environment.
type Scene struct {
	name        string
	camera      *Camera
	mesh        *Mesh
	environment *Environment
	lighting    *Lighting
}

func New(preset Preset, env *Environment, lighting *Lighting) *Scene {
	return &Scene{
		name:        preset.Name,
		camera:      NewCamera(preset.Eye, mgl32.Vec3{}),
		mesh:        NewMesh(preset.Mesh),
		environment: env,
		lighting:    lighting,
	}
}

func (s *Scene) Name() string {
	return s.name
}

func (s *Scene) Camera() *Camera {
	return s.camera
}

func (s *Scene) Environment() *Environment {
	return s.environment
}

func (s *Scene) Activate(width, height uint32) {
	s.camera.SetAspect(width, height)
}

func (s *Scene) Draw(r *renderer.Renderer) error {
	backend := r.Backend()
	backend.LoadMatrices(s.camera.Projection(), s.camera.View())

	if err := s.lighting.Bind(s.environment, s.camera.Position()); err != nil {
		return err
	}
	s.mesh.Draw(backend)
	s.lighting.Unbind()
	return nil
}

package scene

import (
	"errors"
	"testing"

	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeshes(t *testing.T) {
	for _, kind := range []MeshKind{MeshSphere, MeshTorus, MeshBlob} {
		t.Run(kind.String(), func(t *testing.T) {
			mesh := NewMesh(kind)
			assert.Equal(t, kind.String(), mesh.Name)
			require.Equal(t, len(mesh.Positions), len(mesh.Normals))
			require.Zero(t, len(mesh.Indices)%3)

			n := uint32(mesh.VertexCount())
			for _, i := range mesh.Indices {
				require.Less(t, i, n)
			}
			for v := 0; v < mesh.VertexCount(); v++ {
				p := mgl32.Vec3{mesh.Positions[3*v], mesh.Positions[3*v+1], mesh.Positions[3*v+2]}
				normal := mgl32.Vec3{mesh.Normals[3*v], mesh.Normals[3*v+1], mesh.Normals[3*v+2]}
				require.LessOrEqual(t, p.Len(), float32(1.0001), "vertex %d outside the unit sphere", v)
				require.InDelta(t, 1, normal.Len(), 1e-3, "normal %d", v)
			}
		})
	}
	assert.Equal(t, "unknown", MeshKind(42).String())
}

func TestCameraOrbit(t *testing.T) {
	c := NewCamera(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{})
	assert.True(t, c.Position().ApproxEqualThreshold(mgl32.Vec3{0, 0, 2}, 1e-5))

	c.Orbit(mgl32.DegToRad(90), 0)
	assert.True(t, c.Position().ApproxEqualThreshold(mgl32.Vec3{2, 0, 0}, 1e-5), "%v", c.Position())

	// the pitch stops short of the pole
	c.Orbit(0, 10)
	p := c.Position()
	assert.InDelta(t, 2, p.Len(), 1e-4)
	assert.Less(t, p.Y(), float32(2))
	assert.Greater(t, p.Y(), float32(1.99))

	view := c.View()
	eye := view.Mul4x1(p.Vec4(1))
	assert.True(t, eye.Vec3().ApproxEqualThreshold(mgl32.Vec3{}, 1e-4), "the view matrix moves the eye to the origin")
}

func TestCameraZoom(t *testing.T) {
	c := NewCamera(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{})
	c.Zoom(1)
	assert.InDelta(t, 1, c.Position().Len(), 1e-5)

	c.Zoom(100)
	assert.InDelta(t, minDistance, c.Position().Len(), 1e-5)
	c.Zoom(-100)
	assert.InDelta(t, maxDistance, c.Position().Len(), 1e-4)

	far := NewCamera(mgl32.Vec3{0, 0, 50}, mgl32.Vec3{})
	assert.InDelta(t, maxDistance, far.Position().Len(), 1e-4)
}

func TestCameraAspect(t *testing.T) {
	c := NewCamera(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{})
	c.SetAspect(200, 100)
	assert.Equal(t, float32(2), c.aspect)
	c.SetAspect(200, 0)
	assert.Equal(t, float32(2), c.aspect)
	assert.Equal(t, mgl32.Perspective(mgl32.DegToRad(60), 2, 0.1, 100), c.Projection())
}

func TestCubeFaceDirection(t *testing.T) {
	axes := map[metadata.CubeFace]mgl32.Vec3{
		metadata.CubeFacePositiveX: {1, 0, 0},
		metadata.CubeFaceNegativeX: {-1, 0, 0},
		metadata.CubeFacePositiveY: {0, 1, 0},
		metadata.CubeFaceNegativeY: {0, -1, 0},
		metadata.CubeFacePositiveZ: {0, 0, 1},
		metadata.CubeFaceNegativeZ: {0, 0, -1},
	}
	for face, axis := range axes {
		// the center of an odd sized face looks down the axis
		d := CubeFaceDirection(face, 1, 1, 3)
		assert.True(t, d.ApproxEqualThreshold(axis, 1e-6), "face %d: %v", face, d)

		corner := CubeFaceDirection(face, 0, 0, 3)
		assert.InDelta(t, 1, corner.Len(), 1e-6)
		assert.Greater(t, corner.Dot(axis), float32(0.5))
	}
}

func TestRadiance(t *testing.T) {
	p := EnvironmentBeach
	sun := p.Radiance(p.SunDir.Normalize())
	up := p.Radiance(mgl32.Vec3{0, 1, 0})
	down := p.Radiance(mgl32.Vec3{0, -1, 0})

	assert.Equal(t, p.Ground, down)
	assert.True(t, up.ApproxEqualThreshold(p.Zenith, 1e-6))
	assert.Greater(t, sun.X(), 10*up.X(), "the sun dominates the sky")
}

func TestBakeAndUpload(t *testing.T) {
	sizes := EnvironmentSizes{Sky: 4, Diffuse: 2, Specular: 2, Samples: 32}
	data := Bake(EnvironmentKitchen, sizes)
	require.Len(t, data.Sky, int(metadata.CubeFaceCount))
	assert.Len(t, data.Sky[0], 4*4*4)
	assert.Len(t, data.Diffuse[5], 2*2*4)

	for _, face := range data.Diffuse {
		for _, v := range face {
			require.Greater(t, v, float32(0))
		}
	}
	assert.Greater(t, maxChannel(data.Diffuse), float32(0))

	creator := &recordingCreator{}
	env, err := data.Upload(creator)
	require.NoError(t, err)
	assert.Equal(t, "kitchen", env.Name)
	assert.Equal(t, []string{"kitchen_env", "kitchen_diffuse", "kitchen_specular"}, creator.names)
	assert.Equal(t, metadata.TextureTypeCube, env.Sky.TextureType)
	assert.Equal(t, uint32(4), env.Sky.Width)
	assert.Equal(t, uint32(2), env.Specular.Height)

	creator.err = errors.New("out of memory")
	_, err = data.Upload(creator)
	assert.ErrorIs(t, err, creator.err)
}

func maxChannel(faces [][]float32) float32 {
	var best float32
	for _, face := range faces {
		for i, v := range face {
			if i%4 != 3 && v > best {
				best = v
			}
		}
	}
	return best
}

type recordingCreator struct {
	names []string
	err   error
}

func (c *recordingCreator) Create(config metadata.TextureConfig, layers [][]float32) (*metadata.Texture, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.names = append(c.names, config.Name)
	return metadata.NewTexture(config), nil
}

func TestNewScene(t *testing.T) {
	preset := DefaultPresets[1]
	s := New(preset, &Environment{Name: "kitchen"}, nil)
	assert.Equal(t, "kitchen", s.Name())
	assert.Equal(t, "kitchen", s.Environment().Name)
	assert.InDelta(t, preset.Eye.Len(), s.Camera().Position().Len(), 1e-4)

	s.Activate(300, 100)
	assert.Equal(t, float32(3), s.Camera().aspect)
}

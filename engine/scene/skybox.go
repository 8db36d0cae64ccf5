package scene

import (
	"fmt"

	"github.com/dletozeun/3D/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// SkyBox draws an environment cube map on a large cube centered on the
// camera of the scene it belongs to.
type SkyBox struct {
	effect    *renderer.Effect
	textureID int
	cube      *Mesh
	scene     *Scene
}

func NewSkyBox(r *renderer.Renderer) (*SkyBox, error) {
	effect, err := r.NewEffect(SkyBoxVertexShader, SkyBoxFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("sky box: %w", err)
	}
	textureID, err := effect.AddTexture(nil, 0, "u_cubeMapSampler")
	if err != nil {
		effect.Destroy()
		return nil, fmt.Errorf("sky box: %w", err)
	}
	return &SkyBox{
		effect:    effect,
		textureID: textureID,
		cube:      cube(),
	}, nil
}

// For returns a drawable showing the environment of s.
func (sb *SkyBox) For(s *Scene) renderer.Drawable {
	return &SkyBox{
		effect:    sb.effect,
		textureID: sb.textureID,
		cube:      sb.cube,
		scene:     s,
	}
}

func (sb *SkyBox) Draw(r *renderer.Renderer) error {
	if sb.scene == nil {
		return nil
	}
	backend := r.Backend()
	camera := sb.scene.camera

	// the box follows the camera, sized to stay inside the far plane
	size := camera.Far() * 0.5
	eye := camera.Position()
	view := camera.View().
		Mul4(mgl32.Translate3D(eye.X(), eye.Y(), eye.Z())).
		Mul4(mgl32.Scale3D(size, size, size))
	backend.LoadMatrices(camera.Projection(), view)

	if err := sb.effect.SetTexture(sb.textureID, sb.scene.environment.Sky); err != nil {
		return err
	}
	if err := sb.effect.Enable(); err != nil {
		return err
	}
	backend.SetCulling(false)
	sb.cube.Draw(backend)
	backend.SetCulling(true)
	sb.effect.Disable()
	return nil
}

func (sb *SkyBox) Destroy() {
	sb.effect.Destroy()
}

// cube is the [-1,1] box. Culling is off while it is drawn, so winding
// does not matter.
func cube() *Mesh {
	mesh := &Mesh{Name: "cube"}
	for i := 0; i < 8; i++ {
		p := mgl32.Vec3{float32(i&1)*2 - 1, float32(i>>1&1)*2 - 1, float32(i>>2&1)*2 - 1}
		n := p.Normalize()
		mesh.Positions = append(mesh.Positions, p[:]...)
		mesh.Normals = append(mesh.Normals, n[:]...)
	}
	mesh.Indices = []uint32{
		0, 2, 1, 1, 2, 3, // -z
		4, 5, 6, 5, 7, 6, // +z
		0, 1, 4, 1, 5, 4, // -y
		2, 6, 3, 3, 6, 7, // +y
		0, 4, 2, 2, 4, 6, // -x
		1, 3, 5, 3, 7, 5, // +x
	}
	return mesh
}

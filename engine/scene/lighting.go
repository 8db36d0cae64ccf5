package scene

import (
	"fmt"

	"github.com/dletozeun/3D/engine/renderer"
	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	LightingVertexShader   = "shaders/GI.vert"
	LightingFragmentShader = "shaders/GI.frag"
	SkyBoxVertexShader     = "shaders/SkyBox.vert"
	SkyBoxFragmentShader   = "shaders/SkyBox.frag"
)

// Lighting is the image based lighting effect shared by every scene: a
// diffuse irradiance cube map on unit 0, a glossy one on unit 1 and the eye
// position used for reflections.
type Lighting struct {
	effect     *renderer.Effect
	diffuseID  int
	specularID int
	eyeID      int
	eye        mgl32.Vec3
}

func NewLighting(r *renderer.Renderer) (*Lighting, error) {
	effect, err := r.NewEffect(LightingVertexShader, LightingFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("lighting: %w", err)
	}
	l := &Lighting{effect: effect}
	if err := l.bindSlots(); err != nil {
		effect.Destroy()
		return nil, fmt.Errorf("lighting: %w", err)
	}
	return l, nil
}

func (l *Lighting) bindSlots() error {
	var err error
	if l.diffuseID, err = l.effect.AddTexture(nil, 0, "u_cubeMapDiffuseSampler"); err != nil {
		return err
	}
	if l.specularID, err = l.effect.AddTexture(nil, 1, "u_cubeMapSpecularSampler"); err != nil {
		return err
	}
	l.eyeID, err = l.effect.AddParameter("u_wsvEyePos", metadata.ShaderUniformTypeFloat32_3, 1, &l.eye)
	return err
}

// Bind selects the environment maps and eye position before a draw.
func (l *Lighting) Bind(env *Environment, eye mgl32.Vec3) error {
	if err := l.effect.SetTexture(l.diffuseID, env.Diffuse); err != nil {
		return err
	}
	if err := l.effect.SetTexture(l.specularID, env.Specular); err != nil {
		return err
	}
	if l.eye != eye {
		l.eye = eye
		if err := l.effect.RefreshParameter(l.eyeID); err != nil {
			return err
		}
	}
	return l.effect.Enable()
}

func (l *Lighting) Unbind() {
	l.effect.Disable()
}

func (l *Lighting) Destroy() {
	l.effect.Destroy()
}

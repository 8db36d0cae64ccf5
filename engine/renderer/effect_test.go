package renderer

import (
	"testing"

	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectParameters(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 64, 32)
	effect, err := r.NewEffect("shaders/GI.vert", "shaders/GI.frag")
	require.NoError(t, err)
	defer effect.Destroy()

	eye := mgl32.Vec3{1, 2, 3}
	eyeID, err := effect.AddParameter("u_wsvEyePos", metadata.ShaderUniformTypeFloat32_3, 1, &eye)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, backend.uniformFloat(effect.shader, "u_wsvEyePos"))

	mode := int32(2)
	_, err = effect.AddParameter("u_iMode", metadata.ShaderUniformTypeInt32, 1, &mode)
	require.NoError(t, err)
	assert.Equal(t, []int32{2}, backend.uniformInt(effect.shader, "u_iMode"))

	eye = mgl32.Vec3{4, 5, 6}
	require.NoError(t, effect.RefreshParameter(eyeID))
	assert.Equal(t, []float32{4, 5, 6}, backend.uniformFloat(effect.shader, "u_wsvEyePos"))

	// pointing at a new value does not upload it
	other := mgl32.Vec3{7, 8, 9}
	require.NoError(t, effect.UpdateParameter(eyeID, &other))
	assert.Equal(t, []float32{4, 5, 6}, backend.uniformFloat(effect.shader, "u_wsvEyePos"))
	require.NoError(t, effect.RefreshParameter(eyeID))
	assert.Equal(t, []float32{7, 8, 9}, backend.uniformFloat(effect.shader, "u_wsvEyePos"))

	require.NoError(t, effect.RemoveParameter(eyeID))
	assert.ErrorIs(t, effect.RefreshParameter(eyeID), core.ErrBadParameterID)
	assert.ErrorIs(t, effect.RemoveParameter(eyeID), core.ErrBadParameterID)
	assert.ErrorIs(t, effect.RefreshParameter(42), core.ErrBadParameterID)
	assert.ErrorIs(t, effect.UpdateParameter(-1, &other), core.ErrBadParameterID)
	assert.NoError(t, backend.CheckError("parameters"))
}

func TestEffectParameterErrors(t *testing.T) {
	r, _, _ := newTestRenderer(t, 64, 32)
	effect, err := r.NewEffect("shaders/GI.vert", "shaders/GI.frag")
	require.NoError(t, err)
	defer effect.Destroy()

	testCases := []struct {
		name        string
		uniformType metadata.ShaderUniformType
		count       int32
		value       interface{}
	}{
		{"sampler", metadata.ShaderUniformTypeSampler, 1, new(int32)},
		{"not a pointer", metadata.ShaderUniformTypeFloat32, 1, float32(1)},
		{"wrong kind", metadata.ShaderUniformTypeInt32, 1, new(float32)},
		{"too short", metadata.ShaderUniformTypeFloat32_4, 1, &mgl32.Vec2{}},
		{"short array", metadata.ShaderUniformTypeFloat32, 3, []float32{1, 2}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := effect.AddParameter("u_value", tc.uniformType, tc.count, tc.value)
			require.ErrorIs(t, err, ErrUnsupportedUniformValue)
			assert.Equal(t, -1, id)
		})
	}
	assert.Empty(t, effect.parameters)
}

func TestEffectUnusedUniform(t *testing.T) {
	r, _, _ := newTestRenderer(t, 64, 32)
	effect, err := r.NewEffect("shaders/GI.vert", "shaders/GI.frag")
	require.NoError(t, err)
	defer effect.Destroy()

	v := float32(1)
	id, err := effect.AddParameter("unused_exposure", metadata.ShaderUniformTypeFloat32, 1, &v)
	require.NoError(t, err)
	assert.NoError(t, effect.RefreshParameter(id))
}

func TestEffectTextures(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 64, 32)
	effect, err := r.NewEffect("shaders/GI.vert", "shaders/GI.frag")
	require.NoError(t, err)
	defer effect.Destroy()

	diffuse := newTestTexture(t, r, "diffuse", 4, 4)
	specular := newTestTexture(t, r, "specular", 4, 4)

	_, err = effect.AddTexture(diffuse, backend.maxUnits, "u_diffuse")
	require.ErrorIs(t, err, core.ErrTextureUnitOutOfRange)

	diffuseID, err := effect.AddTexture(diffuse, 0, "u_diffuse")
	require.NoError(t, err)
	specularID, err := effect.AddTexture(nil, backend.maxUnits-1, "u_specular")
	require.NoError(t, err)
	assert.Equal(t, []int32{int32(backend.maxUnits - 1)}, backend.uniformInt(effect.shader, "u_specular"))

	// an empty slot fails the frame
	require.ErrorIs(t, effect.Enable(), core.ErrNullTexture)

	require.NoError(t, effect.SetTexture(specularID, specular))
	assert.Same(t, specular, effect.Texture(specularID))
	require.NoError(t, effect.Enable())
	assert.Same(t, diffuse, backend.units[0])
	assert.Same(t, specular, backend.units[backend.maxUnits-1])
	assert.Same(t, effect.shader, backend.program)

	effect.Disable()
	assert.Nil(t, backend.program)

	require.NoError(t, effect.RemoveTexture(diffuseID))
	assert.Nil(t, effect.Texture(diffuseID))
	assert.ErrorIs(t, effect.RemoveTexture(diffuseID), core.ErrBadTextureID)
	assert.ErrorIs(t, effect.SetTexture(7, diffuse), core.ErrBadTextureID)
	assert.Same(t, specular, effect.Texture(specularID), "other ids stay valid")
}

func TestEffectCompileFailure(t *testing.T) {
	r, backend, sources := newTestRenderer(t, 64, 32)
	sources["shaders/Broken.frag"] = "#error broken"
	sources["shaders/Missing.frag"] = ""

	_, err := r.NewEffect(BlitVertexShader, "shaders/Broken.frag")
	require.ErrorIs(t, err, core.ErrShaderCompile)
	_, err = r.NewEffect(BlitVertexShader, "shaders/Missing.frag")
	require.Error(t, err)

	assert.Empty(t, r.effects)
	assert.Zero(t, backend.liveShaders)
}

func TestEffectReload(t *testing.T) {
	r, backend, sources := newTestRenderer(t, 64, 32)
	effect, err := r.NewEffect(BlitVertexShader, "shaders/Tonemap.frag")
	require.NoError(t, err)
	defer effect.Destroy()

	luminance := float32(3)
	_, err = effect.AddParameter("u_fAvgLuminance", metadata.ShaderUniformTypeFloat32, 1, &luminance)
	require.NoError(t, err)
	_, err = effect.AddTexture(nil, 1, "u_oRenderTexSampler")
	require.NoError(t, err)
	before := effect.shader

	// a broken edit keeps the running program
	sources["shaders/Tonemap.frag"] = "#error half saved"
	require.ErrorIs(t, r.ReloadShader("shaders/Tonemap.frag"), core.ErrShaderCompile)
	assert.Same(t, before, effect.shader)
	assert.Equal(t, 1, backend.liveShaders)

	sources["shaders/Tonemap.frag"] = "void main() { gl_FragColor = vec4(1.0); }"
	luminance = 5
	require.NoError(t, r.ReloadShader("shaders/Tonemap.frag"))
	assert.NotSame(t, before, effect.shader)
	assert.Equal(t, 1, backend.liveShaders)
	assert.Equal(t, []float32{5}, backend.uniformFloat(effect.shader, "u_fAvgLuminance"))
	assert.Equal(t, []int32{1}, backend.uniformInt(effect.shader, "u_oRenderTexSampler"))

	// unrelated files leave the effect alone
	current := effect.shader
	require.NoError(t, r.ReloadShader("shaders/Other.frag"))
	assert.Same(t, current, effect.shader)
}

func TestEffectDestroy(t *testing.T) {
	r, backend, _ := newTestRenderer(t, 64, 32)
	effect, err := r.NewEffect("shaders/GI.vert", "shaders/GI.frag")
	require.NoError(t, err)
	require.Len(t, r.effects, 1)

	effect.Destroy()
	effect.Destroy()
	assert.Empty(t, r.effects)
	assert.Zero(t, backend.liveShaders)
	assert.Nil(t, backend.program)
}

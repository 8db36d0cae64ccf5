package renderer

import (
	"errors"
	"fmt"

	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrUnsupportedUniformValue = errors.New("unsupported uniform value")

// effectParameter is a uniform whose value is read through a pointer each
// time it is refreshed.
type effectParameter struct {
	name        string
	uniformType metadata.ShaderUniformType
	count       int32
	value       interface{}
	location    int32
}

type effectTexture struct {
	texture  *metadata.Texture
	unit     uint32
	name     string
	location int32
}

// Effect is a linked vertex+fragment program with its uniform parameters and
// the textures it samples.
type Effect struct {
	renderer   *Renderer
	shader     *metadata.Shader
	parameters []*effectParameter
	textures   []*effectTexture
}

// NewEffect compiles the given shader files into an effect. A compile or link
// failure is fatal when it happens during setup.
func (r *Renderer) NewEffect(vertexPath, fragmentPath string) (*Effect, error) {
	shader := &metadata.Shader{
		ID:           metadata.InvalidID,
		Name:         vertexPath + "+" + fragmentPath,
		VertexPath:   vertexPath,
		FragmentPath: fragmentPath,
	}
	if err := r.compile(shader); err != nil {
		return nil, err
	}
	e := &Effect{
		renderer: r,
		shader:   shader,
	}
	r.effects = append(r.effects, e)
	return e, nil
}

func (r *Renderer) compile(shader *metadata.Shader) error {
	vs, err := r.sources.ShaderSource(shader.VertexPath)
	if err != nil {
		return fmt.Errorf("effect %s: %w", shader.Name, err)
	}
	fs, err := r.sources.ShaderSource(shader.FragmentPath)
	if err != nil {
		return fmt.Errorf("effect %s: %w", shader.Name, err)
	}
	if err := r.backend.ShaderCreate(shader, vs, fs); err != nil {
		return fmt.Errorf("effect %s: %w", shader.Name, err)
	}
	return nil
}

func (e *Effect) Name() string {
	return e.shader.Name
}

// Uses reports whether path is one of the effect's shader files.
func (e *Effect) Uses(path string) bool {
	return e.shader.VertexPath == path || e.shader.FragmentPath == path
}

func (e *Effect) use() {
	if e.renderer.currentShader != e.shader {
		e.renderer.backend.ShaderUse(e.shader)
		e.renderer.currentShader = e.shader
	}
}

// Enable makes the effect's program current and binds its textures to their
// units. A texture slot that was never filled is an error for this frame.
func (e *Effect) Enable() error {
	e.use()
	for _, t := range e.textures {
		if t == nil {
			continue
		}
		if t.texture == nil {
			return fmt.Errorf("effect %s sampler %q: %w", e.shader.Name, t.name, core.ErrNullTexture)
		}
		e.renderer.backend.TextureBind(t.texture, t.unit)
	}
	return nil
}

// Disable restores the fixed function pipeline.
func (e *Effect) Disable() {
	e.renderer.backend.ShaderUse(nil)
	e.renderer.currentShader = nil
}

// AddParameter registers a uniform called name. value must be a pointer (or a
// slice) whose content is uploaded on every RefreshParameter call: *float32,
// *int32, *mgl32.Vec2/3/4, *mgl32.Mat2/3/4, []float32 or []int32. The value is
// uploaded once right away. The returned id is used to refresh it.
func (e *Effect) AddParameter(name string, uniformType metadata.ShaderUniformType, count int32, value interface{}) (int, error) {
	if uniformType == metadata.ShaderUniformTypeSampler {
		return -1, fmt.Errorf("effect %s parameter %q: samplers are added with AddTexture: %w", e.shader.Name, name, ErrUnsupportedUniformValue)
	}
	p := &effectParameter{
		name:        name,
		uniformType: uniformType,
		count:       count,
		value:       value,
		location:    e.renderer.backend.ShaderUniformLocation(e.shader, name),
	}
	if p.location == metadata.NoUniform {
		core.LogWarn("effect %s: uniform %q is not used by the program", e.shader.Name, name)
	}
	if err := e.upload(p); err != nil {
		return -1, err
	}
	e.parameters = append(e.parameters, p)
	return len(e.parameters) - 1, nil
}

// UpdateParameter points the parameter id at a new value without uploading it.
func (e *Effect) UpdateParameter(id int, value interface{}) error {
	p, err := e.parameter(id)
	if err != nil {
		return err
	}
	p.value = value
	return nil
}

// RefreshParameter uploads the current content of the parameter id.
func (e *Effect) RefreshParameter(id int) error {
	p, err := e.parameter(id)
	if err != nil {
		return err
	}
	return e.upload(p)
}

// RemoveParameter drops the parameter id. Other ids stay valid.
func (e *Effect) RemoveParameter(id int) error {
	if _, err := e.parameter(id); err != nil {
		return err
	}
	e.parameters[id] = nil
	return nil
}

func (e *Effect) parameter(id int) (*effectParameter, error) {
	if id < 0 || id >= len(e.parameters) || e.parameters[id] == nil {
		return nil, fmt.Errorf("effect %s parameter %d: %w", e.shader.Name, id, core.ErrBadParameterID)
	}
	return e.parameters[id], nil
}

func (e *Effect) upload(p *effectParameter) error {
	e.use()
	if p.uniformType.IsInteger() {
		data, err := intValues(p.value)
		if err != nil {
			return fmt.Errorf("effect %s parameter %q: %w", e.shader.Name, p.name, err)
		}
		e.renderer.backend.SetUniformInt(p.location, p.uniformType, p.count, data)
		return nil
	}
	data, err := floatValues(p.value)
	if err != nil {
		return fmt.Errorf("effect %s parameter %q: %w", e.shader.Name, p.name, err)
	}
	if want := p.uniformType.Components() * int(p.count); len(data) < want {
		return fmt.Errorf("effect %s parameter %q: %d values for %d: %w", e.shader.Name, p.name, len(data), want, ErrUnsupportedUniformValue)
	}
	e.renderer.backend.SetUniformFloat(p.location, p.uniformType, p.count, data)
	return nil
}

func floatValues(value interface{}) ([]float32, error) {
	switch v := value.(type) {
	case *float32:
		return []float32{*v}, nil
	case []float32:
		return v, nil
	case *mgl32.Vec2:
		return v[:], nil
	case *mgl32.Vec3:
		return v[:], nil
	case *mgl32.Vec4:
		return v[:], nil
	case *mgl32.Mat2:
		return v[:], nil
	case *mgl32.Mat3:
		return v[:], nil
	case *mgl32.Mat4:
		return v[:], nil
	}
	return nil, fmt.Errorf("%T: %w", value, ErrUnsupportedUniformValue)
}

func intValues(value interface{}) ([]int32, error) {
	switch v := value.(type) {
	case *int32:
		return []int32{*v}, nil
	case []int32:
		return v, nil
	}
	return nil, fmt.Errorf("%T: %w", value, ErrUnsupportedUniformValue)
}

// AddTexture binds texture to the sampler name on the given unit. texture may
// be nil and set later with SetTexture.
func (e *Effect) AddTexture(texture *metadata.Texture, unit uint32, name string) (int, error) {
	if unit >= e.renderer.backend.MaxTextureUnits() {
		return -1, fmt.Errorf("effect %s sampler %q unit %d: %w", e.shader.Name, name, unit, core.ErrTextureUnitOutOfRange)
	}
	t := &effectTexture{
		texture:  texture,
		unit:     unit,
		name:     name,
		location: e.renderer.backend.ShaderUniformLocation(e.shader, name),
	}
	e.bindSampler(t)
	e.textures = append(e.textures, t)
	return len(e.textures) - 1, nil
}

func (e *Effect) bindSampler(t *effectTexture) {
	e.use()
	e.renderer.backend.SetUniformInt(t.location, metadata.ShaderUniformTypeSampler, 1, []int32{int32(t.unit)})
}

// SetTexture replaces the texture sampled by the texture slot id.
func (e *Effect) SetTexture(id int, texture *metadata.Texture) error {
	if id < 0 || id >= len(e.textures) || e.textures[id] == nil {
		return fmt.Errorf("effect %s texture %d: %w", e.shader.Name, id, core.ErrBadTextureID)
	}
	e.textures[id].texture = texture
	return nil
}

// Texture returns the texture currently held by slot id, nil if empty or unknown.
func (e *Effect) Texture(id int) *metadata.Texture {
	if id < 0 || id >= len(e.textures) || e.textures[id] == nil {
		return nil
	}
	return e.textures[id].texture
}

// RemoveTexture drops the texture slot id. Other ids stay valid.
func (e *Effect) RemoveTexture(id int) error {
	if id < 0 || id >= len(e.textures) || e.textures[id] == nil {
		return fmt.Errorf("effect %s texture %d: %w", e.shader.Name, id, core.ErrBadTextureID)
	}
	e.textures[id] = nil
	return nil
}

// Reload recompiles the effect from its shader files. On failure the current
// program is kept and the error returned.
func (e *Effect) Reload() error {
	shader := &metadata.Shader{
		ID:           metadata.InvalidID,
		Name:         e.shader.Name,
		VertexPath:   e.shader.VertexPath,
		FragmentPath: e.shader.FragmentPath,
	}
	if err := e.renderer.compile(shader); err != nil {
		return err
	}

	old := e.shader
	if e.renderer.currentShader == old {
		e.Disable()
	}
	e.renderer.backend.ShaderDestroy(old)
	e.shader = shader

	for _, t := range e.textures {
		if t == nil {
			continue
		}
		t.location = e.renderer.backend.ShaderUniformLocation(shader, t.name)
		e.bindSampler(t)
	}
	for _, p := range e.parameters {
		if p == nil {
			continue
		}
		p.location = e.renderer.backend.ShaderUniformLocation(shader, p.name)
		if err := e.upload(p); err != nil {
			return err
		}
	}
	return nil
}

func (e *Effect) Destroy() {
	if e.shader == nil {
		return
	}
	if e.renderer.currentShader == e.shader {
		e.Disable()
	}
	e.renderer.backend.ShaderDestroy(e.shader)
	e.renderer.forgetEffect(e)
	e.shader = nil
	e.parameters = nil
	e.textures = nil
}

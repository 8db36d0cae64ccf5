package renderer

import (
	"fmt"

	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/engine/renderer/metadata"
)

// PassStage is one full screen pass of a PostProcessChain. It borrows its
// input and output textures and owns its effect.
type PassStage struct {
	name    string
	effect  *Effect
	input   *metadata.Texture
	inputID int
	output  *metadata.Texture
}

func (p *PassStage) Name() string {
	return p.name
}

func (p *PassStage) Effect() *Effect {
	return p.effect
}

func (p *PassStage) Input() *metadata.Texture {
	return p.input
}

// Output returns the texture the stage renders into, nil for the stage
// drawing to the screen.
func (p *PassStage) Output() *metadata.Texture {
	return p.output
}

// SetInputTexture replaces the texture bound to the input sampler on unit 0.
func (p *PassStage) SetInputTexture(texture *metadata.Texture) error {
	if err := p.effect.SetTexture(p.inputID, texture); err != nil {
		return err
	}
	p.input = texture
	return nil
}

// AddParameter registers a uniform of the stage's effect, see Effect.AddParameter.
func (p *PassStage) AddParameter(name string, uniformType metadata.ShaderUniformType, count int32, value interface{}) (int, error) {
	return p.effect.AddParameter(name, uniformType, count, value)
}

// AddTexture binds an extra texture to the stage's effect. Unit 0 holds the input.
func (p *PassStage) AddTexture(texture *metadata.Texture, unit uint32, name string) (int, error) {
	return p.effect.AddTexture(texture, unit, name)
}

func (p *PassStage) RefreshParameter(id int) error {
	return p.effect.RefreshParameter(id)
}

// PostProcessChain runs an ordered list of passes sharing one render target.
// A stage's input is whatever texture the caller wired to it: passes are not
// chained automatically.
type PostProcessChain struct {
	name     string
	renderer *Renderer
	target   *RenderTarget
	stages   []*PassStage
	toScreen bool
}

func NewPostProcessChain(name string, r *Renderer) (*PostProcessChain, error) {
	if r == nil {
		return nil, fmt.Errorf("post process %s: %w", name, core.ErrInvalidRenderer)
	}
	target, err := NewRenderTarget(r.backend, true)
	if err != nil {
		return nil, fmt.Errorf("post process %s: %w", name, err)
	}
	return &PostProcessChain{
		name:     name,
		renderer: r,
		target:   target,
	}, nil
}

func (c *PostProcessChain) Name() string {
	return c.name
}

// AddPass appends a stage running the fragment shader at shaderPath with
// input bound to samplerName on unit 0. A nil output makes this the last
// stage: it draws to the screen and the chain is registered with the
// renderer. No stage can be added after that one.
func (c *PostProcessChain) AddPass(name, shaderPath, samplerName string, input, output *metadata.Texture) (*PassStage, error) {
	if c.toScreen {
		return nil, fmt.Errorf("post process %s: add pass %s: %w", c.name, name, core.ErrDuplicateTerminalStage)
	}

	if n := len(c.stages); n > 0 && input != nil && input != c.stages[n-1].output {
		core.LogWarn("post process %s: pass %s does not read the output of pass %s", c.name, name, c.stages[n-1].name)
	}

	effect, err := c.renderer.NewEffect(BlitVertexShader, shaderPath)
	if err != nil {
		return nil, fmt.Errorf("post process %s: add pass %s: %w", c.name, name, err)
	}
	inputID, err := effect.AddTexture(input, 0, samplerName)
	if err != nil {
		effect.Destroy()
		return nil, fmt.Errorf("post process %s: add pass %s: %w", c.name, name, err)
	}

	stage := &PassStage{
		name:    name,
		effect:  effect,
		input:   input,
		inputID: inputID,
		output:  output,
	}
	c.stages = append(c.stages, stage)

	if output == nil {
		c.toScreen = true
		c.renderer.AddPostProcessingFX(c)
	}
	return stage, nil
}

// Pass returns the stage at index i, in insertion order.
func (c *PostProcessChain) Pass(i int) (*PassStage, error) {
	if i < 0 || i >= len(c.stages) {
		return nil, fmt.Errorf("post process %s: pass %d of %d: %w", c.name, i, len(c.stages), core.ErrBadPassIndex)
	}
	return c.stages[i], nil
}

func (c *PostProcessChain) Len() int {
	return len(c.stages)
}

// IsTerminated reports whether the last stage draws to the screen.
func (c *PostProcessChain) IsTerminated() bool {
	return c.toScreen
}

// Compute runs every stage once, in insertion order. The matrices, viewport
// and depth test state are restored on return, error or not.
func (c *PostProcessChain) Compute() error {
	if len(c.stages) == 0 {
		return nil
	}

	guard := c.renderer.begin2D()
	defer guard.Release()
	defer c.target.Bind(false)

	var last *Effect
	defer func() {
		if last != nil {
			last.Disable()
		}
	}()

	for _, stage := range c.stages {
		last = stage.effect
		if err := c.renderer.drawPass(c.target, stage.effect, stage.output); err != nil {
			return fmt.Errorf("post process %s: pass %s: %w", c.name, stage.name, err)
		}
	}
	return nil
}

// Destroy releases the stages' effects and the render target. Borrowed
// textures are left alone.
func (c *PostProcessChain) Destroy() {
	c.renderer.removePostProcessingFX(c)
	for _, stage := range c.stages {
		stage.effect.Destroy()
	}
	c.stages = nil
	c.toScreen = false
	if c.target != nil {
		c.target.Destroy()
		c.target = nil
	}
}

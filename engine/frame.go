package engine

import (
	"errors"

	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/engine/exposure"
	"github.com/dletozeun/3D/engine/renderer/metadata"
)

// SceneRenderer draws the active scene into the render output and runs the
// post processing chains.
type SceneRenderer interface {
	Render() error
	CheckError(op string) error
}

// Sampler is the luminance measuring side of the loop.
type Sampler interface {
	Busy() bool
	BeginSample(source *metadata.Texture) error
	Latest() float32
	Samples() uint64
}

// UniformRefresher re-uploads a registered shader parameter.
type UniformRefresher interface {
	RefreshParameter(id int) error
}

type Overlay interface {
	Draw() error
}

// FrameLoop runs one displayed frame: it feeds the exposure filter from the
// luminance measures, pushes the filtered value to the tone mapping uniform,
// renders, then presents. Errors inside a frame are logged and the next frame
// runs normally.
type FrameLoop struct {
	renderer   SceneRenderer
	source     *metadata.Texture
	sampler    Sampler
	controller *exposure.Controller
	present    func()

	tonemap UniformRefresher
	// luminance is the value the tone mapping parameter points to.
	luminance   *float32
	parameterID int

	overlay       Overlay
	helpVisible   bool
	helpLuminance float32

	frames uint64
}

type FrameLoopConfig struct {
	Renderer SceneRenderer
	// Source is the texture the luminance is measured on.
	Source     *metadata.Texture
	Sampler    Sampler
	Controller *exposure.Controller
	Present    func()
	// Tonemap and ParameterID name the uniform refreshed with Luminance every frame.
	Tonemap     UniformRefresher
	ParameterID int
	Luminance   *float32

	Overlay       Overlay
	HelpLuminance float32
	// ShowHelp displays the overlay from the first frame.
	ShowHelp bool
}

func NewFrameLoop(config FrameLoopConfig) (*FrameLoop, error) {
	if config.Renderer == nil || config.Sampler == nil || config.Controller == nil {
		return nil, errors.New("frame loop needs a renderer, a sampler and an exposure controller")
	}
	if config.Source == nil {
		return nil, core.ErrNullSource
	}
	if config.Tonemap != nil && config.Luminance == nil {
		return nil, errors.New("frame loop tone mapping parameter has no value")
	}
	present := config.Present
	if present == nil {
		present = func() {}
	}
	f := &FrameLoop{
		renderer:      config.Renderer,
		source:        config.Source,
		sampler:       config.Sampler,
		controller:    config.Controller,
		present:       present,
		tonemap:       config.Tonemap,
		luminance:     config.Luminance,
		parameterID:   config.ParameterID,
		overlay:       config.Overlay,
		helpLuminance: config.HelpLuminance,
	}
	if config.ShowHelp && config.Overlay != nil {
		f.SetHelpVisible(true)
	}
	return f, nil
}

// SetHelpVisible shows or hides the overlay. While it is shown the luminance
// is not measured and the exposure drifts toward the help luminance.
func (f *FrameLoop) SetHelpVisible(visible bool) {
	f.helpVisible = visible
	f.controller.SetOverride(f.helpLuminance, visible)
}

func (f *FrameLoop) HelpVisible() bool {
	return f.helpVisible
}

func (f *FrameLoop) Frames() uint64 {
	return f.frames
}

// Frame runs one frame. It returns the first error met, after logging it; the
// frame is still presented.
func (f *FrameLoop) Frame() error {
	var first error
	report := func(op string, err error) {
		if err == nil {
			return
		}
		core.LogError("%s: %s", op, err)
		if first == nil {
			first = err
		}
	}

	if !f.sampler.Busy() {
		if f.sampler.Samples() > 0 {
			f.controller.SetSample(f.sampler.Latest())
		}
		if !f.helpVisible {
			report("luminance", f.sampler.BeginSample(f.source))
		}
	}

	value := f.controller.Tick()
	if f.tonemap != nil {
		*f.luminance = value
		report("tone mapping", f.tonemap.RefreshParameter(f.parameterID))
	}

	report("render", f.renderer.Render())

	if f.helpVisible && f.overlay != nil {
		report("help", f.overlay.Draw())
	}
	report("frame", f.renderer.CheckError("frame"))

	f.present()
	f.frames++
	return first
}

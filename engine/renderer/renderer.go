package renderer

import (
	"fmt"
	"image"

	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/engine/renderer/metadata"
)

// Drawable is anything the renderer can paint into the current target: a
// scene, a sky box.
type Drawable interface {
	Draw(r *Renderer) error
}

// Scene fully repaints one frame from its camera point of view.
type Scene interface {
	Drawable
	Name() string
	// Activate is called when the scene becomes the active one, with the
	// dimensions of the target it will be drawn into.
	Activate(width, height uint32)
}

type Renderer struct {
	backend RendererBackend
	sources ShaderSource

	scenes      []Scene
	activeScene int
	skyBox      Drawable

	screenWidth  uint32
	screenHeight uint32

	outputTexture  *metadata.Texture
	outputTarget   *RenderTarget
	postProcessing bool
	chains         []*PostProcessChain
	wireframe      bool

	effects       []*Effect
	currentShader *metadata.Shader
}

// New initializes the backend and allocates the HDR render output: a float
// texture the size of the screen attached to a depth tested render target.
// Any failure here is fatal.
func New(appName string, backend RendererBackend, sources ShaderSource, width, height uint32) (*Renderer, error) {
	if err := backend.Initialize(appName, width, height); err != nil {
		return nil, core.Fatal("renderer initialize", err)
	}

	r := &Renderer{
		backend:        backend,
		sources:        sources,
		activeScene:    -1,
		screenWidth:    width,
		screenHeight:   height,
		postProcessing: true,
	}

	backend.SetDepthTest(true)
	backend.SetCulling(true)
	backend.SetClearColor(0.1, 0.2, 0.0, 1.0)

	r.outputTexture = metadata.NewTexture(metadata.TextureConfig{
		Name:          "render_output",
		TextureType:   metadata.TextureType2d,
		Width:         width,
		Height:        height,
		Format:        metadata.TextureFormatRGBA32F,
		FilterMinify:  metadata.TextureFilterModeLinear,
		FilterMagnify: metadata.TextureFilterModeLinear,
		Repeat:        metadata.TextureRepeatClampToEdge,
	})
	if err := backend.TextureCreate(r.outputTexture, nil); err != nil {
		return nil, core.Fatal("renderer output texture", err)
	}

	target, err := NewRenderTarget(backend, true)
	if err != nil {
		return nil, core.Fatal("renderer output target", err)
	}
	if err := target.Attach(r.outputTexture); err != nil {
		return nil, core.Fatal("renderer output target", err)
	}
	r.outputTarget = target

	backend.SetViewport(r.screenViewport())
	if err := backend.CheckError("renderer initialize"); err != nil {
		return nil, core.Fatal("renderer initialize", err)
	}
	return r, nil
}

func (r *Renderer) Backend() RendererBackend {
	return r.backend
}

// OutputTexture is the texture the active scene is rendered into when post
// processing is enabled.
func (r *Renderer) OutputTexture() *metadata.Texture {
	return r.outputTexture
}

func (r *Renderer) ScreenSize() (uint32, uint32) {
	return r.screenWidth, r.screenHeight
}

func (r *Renderer) screenViewport() metadata.Viewport {
	return metadata.Viewport{Width: int32(r.screenWidth), Height: int32(r.screenHeight)}
}

// AddPostProcessingFX registers chain to run after the main scene, in
// registration order. If the first stage of the chain has no input texture
// the render output is wired into it.
func (r *Renderer) AddPostProcessingFX(chain *PostProcessChain) {
	for _, c := range r.chains {
		if c == chain {
			return
		}
	}
	if first, err := chain.Pass(0); err == nil && first.Input() == nil {
		if err := first.SetInputTexture(r.outputTexture); err != nil {
			core.LogError(err.Error())
		}
	}
	r.chains = append(r.chains, chain)
}

func (r *Renderer) removePostProcessingFX(chain *PostProcessChain) {
	for i, c := range r.chains {
		if c == chain {
			r.chains = append(r.chains[:i], r.chains[i+1:]...)
			return
		}
	}
}

func (r *Renderer) EnablePostProcessing() {
	r.postProcessing = true
}

func (r *Renderer) DisablePostProcessing() {
	r.postProcessing = false
}

func (r *Renderer) IsPostProcessing() bool {
	return r.postProcessing
}

// SetWireframe outlines the scene geometry. Post processing passes are always
// filled.
func (r *Renderer) SetWireframe(enabled bool) {
	r.wireframe = enabled
}

func (r *Renderer) Wireframe() bool {
	return r.wireframe
}

// AddScene appends scene and returns its id.
func (r *Renderer) AddScene(scene Scene) int {
	r.scenes = append(r.scenes, scene)
	return len(r.scenes) - 1
}

func (r *Renderer) SetActiveScene(id int) error {
	if id < 0 || id >= len(r.scenes) {
		return fmt.Errorf("set active scene %d (%d scenes): %w", id, len(r.scenes), core.ErrInvalidSceneID)
	}
	r.activeScene = id
	r.scenes[id].Activate(r.targetSize())
	return nil
}

// ActiveScene returns the active scene id, -1 when none.
func (r *Renderer) ActiveScene() int {
	return r.activeScene
}

// SetSkyBox sets what is drawn behind the scene. nil removes it.
func (r *Renderer) SetSkyBox(skyBox Drawable) {
	r.skyBox = skyBox
}

func (r *Renderer) targetSize() (uint32, uint32) {
	if r.postProcessing {
		return r.outputTexture.Width, r.outputTexture.Height
	}
	return r.screenWidth, r.screenHeight
}

// Resize changes the screen dimensions used by the passes drawing to screen.
// The render output keeps the size it was created with.
func (r *Renderer) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	r.screenWidth = width
	r.screenHeight = height
	r.backend.SetViewport(r.screenViewport())
	if r.activeScene >= 0 {
		r.scenes[r.activeScene].Activate(r.targetSize())
	}
}

// Render draws the active scene into the render output, then runs every
// registered post processing chain.
func (r *Renderer) Render() error {
	if r.activeScene < 0 {
		return fmt.Errorf("render: %w", core.ErrNoActiveScene)
	}
	scene := r.scenes[r.activeScene]

	if r.postProcessing {
		r.outputTarget.Bind(true)
		r.backend.SetViewport(metadata.Viewport{
			Width:  int32(r.outputTexture.Width),
			Height: int32(r.outputTexture.Height),
		})
	} else {
		r.outputTarget.Bind(false)
		r.backend.SetViewport(r.screenViewport())
	}

	r.backend.Clear()
	if r.wireframe {
		r.backend.SetWireframe(true)
	}
	err := scene.Draw(r)
	if err == nil && r.skyBox != nil {
		err = r.skyBox.Draw(r)
	}
	if r.wireframe {
		r.backend.SetWireframe(false)
	}
	if err != nil {
		r.outputTarget.Bind(false)
		return fmt.Errorf("render scene %s: %w", scene.Name(), err)
	}

	if !r.postProcessing {
		return nil
	}
	r.outputTarget.Bind(false)
	for _, chain := range r.chains {
		if err := chain.Compute(); err != nil {
			return err
		}
	}
	return nil
}

// Screenshot reads the screen back, top row first.
func (r *Renderer) Screenshot() (*image.RGBA, error) {
	vp := r.screenViewport()
	width, height := int(vp.Width), int(vp.Height)
	pixels := make([]uint8, width*height*4)
	if err := r.backend.ScreenRead(vp, pixels); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	stride := width * 4
	for y := 0; y < height; y++ {
		src := pixels[(height-1-y)*stride : (height-y)*stride]
		copy(img.Pix[y*img.Stride:y*img.Stride+stride], src)
	}
	return img, nil
}

// CheckError sweeps the GPU error flag, see RendererBackend.CheckError.
func (r *Renderer) CheckError(op string) error {
	return r.backend.CheckError(op)
}

// ReloadShader recompiles every effect using the shader file at path. Effects
// that fail to compile keep running their previous program.
func (r *Renderer) ReloadShader(path string) error {
	var failed error
	for _, e := range r.effects {
		if !e.Uses(path) {
			continue
		}
		if err := e.Reload(); err != nil {
			core.LogError("reload %s: %s", e.Name(), err)
			failed = err
			continue
		}
		core.LogInfo("reloaded effect %s", e.Name())
	}
	return failed
}

func (r *Renderer) forgetEffect(effect *Effect) {
	for i, e := range r.effects {
		if e == effect {
			r.effects = append(r.effects[:i], r.effects[i+1:]...)
			return
		}
	}
}

func (r *Renderer) Shutdown() error {
	for _, chain := range append([]*PostProcessChain(nil), r.chains...) {
		chain.Destroy()
	}
	for len(r.effects) > 0 {
		r.effects[0].Destroy()
	}
	if r.outputTarget != nil {
		r.outputTarget.Destroy()
		r.outputTarget = nil
	}
	if r.outputTexture != nil {
		r.backend.TextureDestroy(r.outputTexture)
		r.outputTexture = nil
	}
	return r.backend.Shutdown()
}

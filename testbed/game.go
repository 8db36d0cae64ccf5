package testbed

import (
	"errors"
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/dletozeun/3D/engine"
	"github.com/dletozeun/3D/engine/assets/loaders"
	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/engine/renderer"
	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/dletozeun/3D/engine/scene"
	"github.com/dletozeun/3D/engine/systems"
)

const (
	highPassShader  = "shaders/HighPass.frag"
	blurShader      = "shaders/Hblur.frag"
	finalGlowShader = "shaders/FinalGlow.frag"
	passSampler     = "IN"

	orbitSpeed = 0.01
	zoomSpeed  = 0.01
)

// sceneKeys maps the scene switching keys to the index of the scene.
var sceneKeys = map[core.KeyCode]int{
	core.KEY_A: 0,
	core.KEY_Z: 1,
	core.KEY_E: 2,
}

type HDRDemo struct {
	*engine.Game
}

type demoState struct {
	engine *engine.Engine

	lighting *scene.Lighting
	skyBox   *scene.SkyBox
	scenes   []*scene.Scene
	sceneIDs []int
	current  int

	chain *renderer.PostProcessChain
	help  *renderer.Hud

	lastX, lastY int32
}

func NewHDRDemo(config *engine.ApplicationConfig) *HDRDemo {
	g := &HDRDemo{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &demoState{current: -1},
		},
	}
	g.FnInitialize = g.Initialize
	g.FnUpdate = g.Update
	g.FnOnResize = g.OnResize
	g.FnOnKey = g.OnKey
	g.FnShutdown = g.Shutdown
	return g
}

func (g *HDRDemo) state() *demoState {
	return g.State.(*demoState)
}

// Initialize bakes the environments on a worker while the passes and the
// effects are built, then uploads the environments and creates the scenes.
func (g *HDRDemo) Initialize(e *engine.Engine) error {
	core.LogDebug("HDR demo initialize...")
	state := g.state()
	state.engine = e
	r := e.Renderer()
	sm := e.Systems()

	presets := scene.DefaultPresets
	baked := make([]*scene.EnvironmentData, len(presets))
	bake, err := sm.JobSystem.Submit(systems.JobTask{
		Name: "environments",
		OnStart: func(interface{}) error {
			for i, p := range presets {
				baked[i] = scene.Bake(p.Environment, scene.DefaultEnvironmentSizes)
			}
			return nil
		},
		OnComplete: func() {
			core.LogInfo("%d environments baked", len(presets))
		},
	})
	if err != nil {
		return core.Fatal("environments", err)
	}

	if err := g.buildPostProcessing(e); err != nil {
		return err
	}
	if err := g.buildHelp(e); err != nil {
		return err
	}

	state.lighting, err = scene.NewLighting(r)
	if err != nil {
		return core.Fatal("lighting", err)
	}
	state.skyBox, err = scene.NewSkyBox(r)
	if err != nil {
		return core.Fatal("skybox", err)
	}

	if err := bake.Wait(); err != nil {
		return core.Fatal("environments", err)
	}
	for i, p := range presets {
		env, err := baked[i].Upload(sm.TextureSystem)
		if err != nil {
			return core.Fatal("environments", err)
		}
		s := scene.New(p, env, state.lighting)
		state.scenes = append(state.scenes, s)
		state.sceneIDs = append(state.sceneIDs, r.AddScene(s))
	}
	return g.selectScene(0)
}

// buildPostProcessing sets up the glow and tone mapping chain:
// bright pass, vertical blur, then horizontal blur and tone mapping to screen.
func (g *HDRDemo) buildPostProcessing(e *engine.Engine) error {
	state := g.state()
	r := e.Renderer()
	textures := e.Systems().TextureSystem
	width, height := r.OutputTexture().Width, r.OutputTexture().Height

	highPass, err := textures.RenderTarget("high_pass", width, height)
	if err != nil {
		return core.Fatal("post processing", err)
	}
	blur, err := textures.RenderTarget("blur", width, height)
	if err != nil {
		return core.Fatal("post processing", err)
	}

	chain, err := renderer.NewPostProcessChain("Glow+Tonemapping", r)
	if err != nil {
		return core.Fatal("post processing", err)
	}
	state.chain = chain
	if _, err := chain.AddPass("HighPass", highPassShader, passSampler, nil, highPass); err != nil {
		return core.Fatal("post processing", err)
	}
	if _, err := chain.AddPass("Hblur", blurShader, passSampler, highPass, blur); err != nil {
		return core.Fatal("post processing", err)
	}
	final, err := chain.AddPass("FinalGlow", finalGlowShader, passSampler, blur, nil)
	if err != nil {
		return core.Fatal("post processing", err)
	}
	if _, err := final.AddTexture(r.OutputTexture(), 1, "u_oRenderTexSampler"); err != nil {
		return core.Fatal("post processing", err)
	}
	luminanceID, err := final.AddParameter("u_fAvgLuminance", metadata.ShaderUniformTypeFloat32, 1, e.LuminanceUniform())
	if err != nil {
		return core.Fatal("post processing", err)
	}
	e.SetToneMapping(final, luminanceID)
	return nil
}

// buildHelp loads the help image from the assets, or renders the help text
// when there is none.
func (g *HDRDemo) buildHelp(e *engine.Engine) error {
	textures := e.Systems().TextureSystem
	texture, err := textures.Load(helpImagePath)
	if err != nil {
		core.LogDebug("no help image (%s), rendering the help text", err)
		img, err := renderHelp(820, 460)
		if err != nil {
			return core.Fatal("help", err)
		}
		texture, err = textures.FromImage("help", loaders.ImageData(img, metadata.ImageResourceParams{FlipY: true}))
		if err != nil {
			return core.Fatal("help", err)
		}
	}
	hud, err := e.Renderer().NewHud(texture, 0.1, 0.1, 0.9, 0.7)
	if err != nil {
		return core.Fatal("help", err)
	}
	g.state().help = hud
	e.SetHelpOverlay(hud)
	return nil
}

func (g *HDRDemo) selectScene(index int) error {
	state := g.state()
	if index == state.current {
		return nil
	}
	if index < 0 || index >= len(state.scenes) {
		return fmt.Errorf("scene %d: %w", index, core.ErrInvalidSceneID)
	}
	r := state.engine.Renderer()
	if err := r.SetActiveScene(state.sceneIDs[index]); err != nil {
		return err
	}
	r.SetSkyBox(state.skyBox.For(state.scenes[index]))
	state.current = index
	core.LogInfo("scene %s", state.scenes[index].Name())
	return nil
}

func (g *HDRDemo) Update(deltaTime float64) error {
	state := g.state()
	x, y := core.InputGetMousePosition()
	dx, dy := x-state.lastX, y-state.lastY
	state.lastX, state.lastY = x, y
	if state.current < 0 || state.engine.HelpVisible() {
		return nil
	}

	camera := state.scenes[state.current].Camera()
	if core.InputIsButtonDown(core.BUTTON_LEFT) {
		camera.Orbit(-float32(dx)*orbitSpeed, float32(dy)*orbitSpeed)
	}
	if core.InputIsButtonDown(core.BUTTON_RIGHT) {
		camera.Zoom(float32(-dy) * zoomSpeed)
	}
	return nil
}

func (g *HDRDemo) OnKey(key core.KeyCode) bool {
	state := g.state()
	if index, ok := sceneKeys[key]; ok {
		if index == state.current {
			return true
		}
		if err := g.selectScene(index); err != nil {
			core.LogError("switch scene: %s", err)
			return true
		}
		// the new scene starts dark and the exposure adapts
		state.engine.Exposure().Reset(0)
		return true
	}
	if key == core.KEY_P {
		if err := g.screenshot(); err != nil {
			core.LogError("screenshot: %s", err)
		}
		return true
	}
	return false
}

func (g *HDRDemo) screenshot() error {
	img, err := g.state().engine.Renderer().Screenshot()
	if err != nil {
		return err
	}
	name := fmt.Sprintf("screenshot-%s.png", time.Now().Format("20060102-150405"))
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		return errors.Join(err, f.Close())
	}
	if err := f.Close(); err != nil {
		return err
	}
	core.LogInfo("saved %s", name)
	return nil
}

func (g *HDRDemo) OnResize(width uint32, height uint32) error {
	core.LogDebug("HDR demo resized to %dx%d", width, height)
	return nil
}

func (g *HDRDemo) Shutdown() error {
	state := g.state()
	if state.help != nil {
		state.help.Destroy()
	}
	if state.skyBox != nil {
		state.skyBox.Destroy()
	}
	if state.lighting != nil {
		state.lighting.Destroy()
	}
	if state.chain != nil {
		state.chain.Destroy()
	}
	return nil
}

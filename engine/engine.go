package engine

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/dletozeun/3D/engine/assets"
	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/engine/exposure"
	"github.com/dletozeun/3D/engine/platform"
	"github.com/dletozeun/3D/engine/renderer"
	"github.com/dletozeun/3D/engine/renderer/opengl"
	"github.com/dletozeun/3D/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Seconds between two frame statistics log lines.
const metricsLogPeriod = 5.0

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *ApplicationConfig
	isRunning     bool
	isSuspended   bool
	platform      *platform.Platform
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	renderer      *renderer.Renderer
	width         uint32
	height        uint32
	clock         *core.Clock
	metrics       *core.Metrics
	lastTime      float64

	controller *exposure.Controller
	estimator  *exposure.Estimator
	copier     *renderer.TextureCopier
	frameLoop  *FrameLoop

	// luminance is uploaded to the tone mapping pass every frame.
	luminance   float32
	tonemap     UniformRefresher
	tonemapID   int
	helpOverlay Overlay
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, errors.New("engine needs a game and its configuration")
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		return nil, err
	}
	p, err := platform.New()
	if err != nil {
		return nil, err
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       g.ApplicationConfig,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		platform:     p,
		assetManager: am,
		isRunning:    true,
		isSuspended:  false,
		width:        g.ApplicationConfig.Window.Width,
		height:       g.ApplicationConfig.Window.Height,
		tonemapID:    -1,
	}, nil
}

// Initialize opens the window, creates the renderer and the engine systems,
// lets the game build its scenes and passes, then assembles the frame loop.
// Any error returned here is fatal.
func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	config := e.config

	level, err := core.ParseLogLevel(config.Log.Level)
	if err != nil {
		return core.Fatal("config", err)
	}
	core.SetLogLevel(level)

	// initialize input
	if err := core.InputInitialize(); err != nil {
		return err
	}

	// initialize events
	if !core.EventInitialize() {
		return core.Fatal("events", errors.New("failed to initialize the event system"))
	}

	// register some events
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_KEY_RELEASED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e, e.onResized)

	if err := e.platform.Startup(config.Window.Name,
		config.Window.PosX,
		config.Window.PosY,
		config.Window.Width,
		config.Window.Height,
		config.Window.VSync); err != nil {
		return core.Fatal("platform", err)
	}
	e.platform.MakeContextCurrent()
	e.width, e.height = platform.FramebufferSize(e.platform.Window)

	// initialize subsystems
	assetsDir := config.Assets.Dir
	if !filepath.IsAbs(assetsDir) {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		assetsDir = filepath.Join(wd, assetsDir)
	}
	if err := e.assetManager.Initialize(assetsDir, config.Assets.Watch); err != nil {
		return core.Fatal("assets", err)
	}

	backend := opengl.New(e.platform)
	e.renderer, err = renderer.New(config.Window.Name, backend, e.assetManager, e.width, e.height)
	if err != nil {
		return err
	}
	if config.PostProcess.Enabled {
		e.renderer.EnablePostProcessing()
	} else {
		e.renderer.DisablePostProcessing()
	}

	e.systemManager, err = systems.NewSystemManager(systems.SystemManagerConfig{
		MaxTextureCount: 64,
		JobWorkers:      1,
		JobQueueDepth:   1,
	}, e.assetManager, backend)
	if err != nil {
		return core.Fatal("systems", err)
	}

	if err := e.initializeExposure(); err != nil {
		return err
	}

	if err := e.gameInstance.FnInitialize(e); err != nil {
		return err
	}

	e.frameLoop, err = NewFrameLoop(FrameLoopConfig{
		Renderer:      e.renderer,
		Source:        e.renderer.OutputTexture(),
		Sampler:       e.estimator,
		Controller:    e.controller,
		Present:       e.platform.SwapBuffers,
		Tonemap:       e.tonemap,
		ParameterID:   e.tonemapID,
		Luminance:     &e.luminance,
		Overlay:       e.helpOverlay,
		HelpLuminance: config.Exposure.HelpLuminance,
		ShowHelp:      config.Window.ShowHelp,
	})
	if err != nil {
		return core.Fatal("frame loop", err)
	}

	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	if err := e.renderer.CheckError("initialize"); err != nil {
		return core.Fatal("initialize", err)
	}
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) initializeExposure() error {
	config := e.config.Exposure

	controller, err := exposure.NewController(config.SeedLuminance, config.ShutterSpeed)
	if err != nil {
		return core.Fatal("exposure", err)
	}
	e.controller = controller
	e.luminance = config.SeedLuminance

	e.copier, err = renderer.NewTextureCopier(e.renderer)
	if err != nil {
		return core.Fatal("exposure", err)
	}
	staging, err := e.systemManager.TextureSystem.RenderTarget("luminance_staging", config.StagingSize, config.StagingSize)
	if err != nil {
		return core.Fatal("exposure", err)
	}
	interval, err := config.Interval()
	if err != nil {
		return core.Fatal("exposure", err)
	}
	e.estimator, err = exposure.NewEstimator(exposure.EstimatorConfig{
		Staging:  staging,
		Copier:   e.copier,
		Reader:   e.renderer.Backend(),
		Spawner:  e.systemManager.JobSystem,
		Interval: interval,
	})
	if err != nil {
		return core.Fatal("exposure", err)
	}
	return nil
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return errors.New("engine is not initialized")
	}
	e.currentStage = EngineStageRunning

	e.clock.Start()
	e.clock.Update()

	e.lastTime = e.clock.Elapsed()
	var lastReport float64 = e.lastTime

	for e.isRunning {
		e.platform.PumpMessages()
		if e.platform.ShouldClose() {
			e.isRunning = false
			break
		}
		e.processReloads()

		if e.isSuspended {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()

		var currentTime float64 = e.clock.Elapsed()
		var delta float64 = (currentTime - e.lastTime)
		var frameStartTime float64 = platform.GetAbsoluteTime()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("game update failed: %s", err)
			}
		}

		// errors are already logged by the frame loop
		_ = e.frameLoop.Frame()

		var frameEndTime float64 = platform.GetAbsoluteTime()
		e.metrics.Update(frameEndTime - frameStartTime)
		if currentTime-lastReport > metricsLogPeriod {
			fps, frameTime := e.metrics.Frame()
			core.LogDebug("%.0f fps, %.3f ms/frame, luminance %.3f (sampled %.3f)", fps, frameTime, e.controller.Current(), e.estimator.Latest())
			lastReport = currentTime
		}

		// NOTE: Input update/state copying should always be handled
		// after any input should be recorded; I.E. before this line.
		// As a safety, input is the last thing to be updated before
		// this frame ends.
		core.InputUpdate(delta)

		// Update last time
		e.lastTime = currentTime
	}

	return nil
}

// processReloads recompiles the effects whose shader sources changed on disk.
func (e *Engine) processReloads() {
	for {
		select {
		case path := <-e.assetManager.Reloads():
			if err := e.renderer.ReloadShader(path); err != nil {
				core.LogError("reload %s: %s", path, err)
			}
		default:
			return
		}
	}
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown

	if e.estimator != nil {
		if err := e.estimator.Wait(); err != nil {
			core.LogWarn("luminance job: %s", err)
		}
	}
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown: %s", err)
		}
	}
	if e.copier != nil {
		e.copier.Destroy()
	}
	if e.systemManager != nil {
		if err := e.systemManager.Shutdown(); err != nil {
			return err
		}
	}
	if e.renderer != nil {
		if err := e.renderer.Shutdown(); err != nil {
			core.LogError(err.Error())
		}
	}
	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}
	if err := core.EventShutdown(); err != nil {
		return err
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}
	return e.platform.Shutdown()
}

func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

func (e *Engine) Systems() *systems.SystemManager {
	return e.systemManager
}

func (e *Engine) Assets() *assets.AssetManager {
	return e.assetManager
}

func (e *Engine) Exposure() *exposure.Controller {
	return e.controller
}

// LuminanceUniform is the value to register as the tone mapping parameter;
// the frame loop writes the filtered luminance into it every frame.
func (e *Engine) LuminanceUniform() *float32 {
	return &e.luminance
}

// SetToneMapping names the parameter refreshed with LuminanceUniform.
// It must be called from the game's initialize function.
func (e *Engine) SetToneMapping(pass UniformRefresher, parameterID int) {
	e.tonemap = pass
	e.tonemapID = parameterID
}

// HelpVisible reports whether the help overlay is displayed.
func (e *Engine) HelpVisible() bool {
	return e.frameLoop != nil && e.frameLoop.HelpVisible()
}

// SetHelpOverlay registers the overlay toggled with F1.
func (e *Engine) SetHelpOverlay(overlay Overlay) {
	e.helpOverlay = overlay
}

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) Quit() {
	core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	keyCode := core.KeyCode(context.Data.U16[0])
	if code != core.EVENT_CODE_KEY_PRESSED {
		return false
	}

	switch keyCode {
	case core.KEY_ESCAPE:
		// The first escape closes the help.
		if e.frameLoop != nil && e.frameLoop.HelpVisible() {
			e.frameLoop.SetHelpVisible(false)
			return true
		}
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
		// Block anything else from processing this.
		return true
	case core.KEY_F1:
		if e.frameLoop != nil && e.helpOverlay != nil {
			e.frameLoop.SetHelpVisible(!e.frameLoop.HelpVisible())
			return true
		}
	case core.KEY_F2:
		if e.renderer != nil {
			e.renderer.SetWireframe(!e.renderer.Wireframe())
			core.LogDebug("wireframe %t", e.renderer.Wireframe())
			return true
		}
	}
	if e.gameInstance.FnOnKey != nil {
		return e.gameInstance.FnOnKey(keyCode)
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	if code != core.EVENT_CODE_RESIZED {
		return false
	}
	width := context.Data.U32[0]
	height := context.Data.U32[1]

	// Check if different. If so, trigger a resize event.
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height

	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.renderer != nil {
		e.renderer.Resize(width, height)
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError("resize: %s", err)
		}
	}
	return false
}

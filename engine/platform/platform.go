package platform

import (
	"runtime"

	"github.com/dletozeun/3D/engine/core"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window
	vsync  bool
}

func New() (*Platform, error) {
	return &Platform{
		Window: nil,
	}, nil
}

// Startup opens the window with an OpenGL 2.1 context and routes its input to
// the core input system.
func (p *Platform) Startup(applicationName string, x, y, width, height uint32, vsync bool) error {
	if err := glfw.Init(); err != nil {
		core.LogFatal("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.DepthBits, 24)

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogFatal("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	p.Window = window
	p.vsync = vsync

	p.Window.SetKeyCallback(keyCallback)
	p.Window.SetMouseButtonCallback(mouseButtonCallback)
	p.Window.SetCursorPosCallback(cursorPosCallback)
	p.Window.SetFramebufferSizeCallback(framebufferSizeCallback)
	p.Window.SetCloseCallback(closeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	return nil
}

// MakeContextCurrent binds the window's GL context to the calling thread.
func (p *Platform) MakeContextCurrent() {
	p.Window.MakeContextCurrent()
	if p.vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

func (p *Platform) SwapBuffers() {
	p.Window.SwapBuffers()
}

func (p *Platform) ShouldClose() bool {
	return p.Window.ShouldClose()
}

func GetAbsoluteTime() float64 {
	return glfw.GetTime()
}

func FramebufferSize(w *glfw.Window) (uint32, uint32) {
	width, height := w.GetFramebufferSize()
	return uint32(width), uint32(height)
}

var keyMap = map[glfw.Key]core.KeyCode{
	glfw.KeyBackspace:   core.KEY_BACKSPACE,
	glfw.KeyTab:         core.KEY_TAB,
	glfw.KeyEnter:       core.KEY_ENTER,
	glfw.KeyEscape:      core.KEY_ESCAPE,
	glfw.KeySpace:       core.KEY_SPACE,
	glfw.KeyA:           core.KEY_A,
	glfw.KeyE:           core.KEY_E,
	glfw.KeyP:           core.KEY_P,
	glfw.KeyQ:           core.KEY_Q,
	glfw.KeyZ:           core.KEY_Z,
	glfw.KeyF1:          core.KEY_F1,
	glfw.KeyF2:          core.KEY_F2,
	glfw.KeyF12:         core.KEY_F12,
	glfw.KeyLeftShift:   core.KEY_LSHIFT,
	glfw.KeyLeftControl: core.KEY_LCONTROL,
}

func keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	code, ok := keyMap[key]
	if !ok || action == glfw.Repeat {
		return
	}
	core.InputProcessKey(code, action == glfw.Press)
}

func mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	var b core.Button
	switch button {
	case glfw.MouseButtonLeft:
		b = core.BUTTON_LEFT
	case glfw.MouseButtonRight:
		b = core.BUTTON_RIGHT
	case glfw.MouseButtonMiddle:
		b = core.BUTTON_MIDDLE
	default:
		return
	}
	core.InputProcessButton(b, action == glfw.Press)
}

func cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	core.InputProcessMouseMove(int32(xpos), int32(ypos))
}

func framebufferSizeCallback(w *glfw.Window, width, height int) {
	ctx := core.EventContext{}
	ctx.Data.U32[0] = uint32(width)
	ctx.Data.U32[1] = uint32(height)
	core.EventFire(core.EVENT_CODE_RESIZED, nil, ctx)
}

func closeCallback(w *glfw.Window) {
	core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{})
}

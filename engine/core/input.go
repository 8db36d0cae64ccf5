package core

import "sync"

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// KeyCode follows the virtual key table: letters are their upper-case ASCII
// code.
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_A         KeyCode = 0x41
	KEY_E         KeyCode = 0x45
	KEY_P         KeyCode = 0x50
	KEY_Q         KeyCode = 0x51
	KEY_Z         KeyCode = 0x5A
	KEY_F1        KeyCode = 0x70
	KEY_F2        KeyCode = 0x71
	KEY_F12       KeyCode = 0x7B
	KEY_LSHIFT    KeyCode = 0xA0
	KEY_LCONTROL  KeyCode = 0xA2

	KEYS_MAX_KEYS KeyCode = 0xFF
)

type KeyboardState struct {
	Keys [KEYS_MAX_KEYS + 1]bool
}

type MouseState struct {
	X       int32
	Y       int32
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// InputState is a snapshot of the devices for this frame and the previous one.
type InputState struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState
}

var input struct {
	mu    sync.Mutex
	state *InputState
}

// withInput runs fn under the input lock. It reports false when the
// subsystem is not running.
func withInput(fn func(s *InputState)) bool {
	input.mu.Lock()
	defer input.mu.Unlock()
	if input.state == nil {
		return false
	}
	fn(input.state)
	return true
}

func InputInitialize() error {
	input.mu.Lock()
	input.state = &InputState{}
	input.mu.Unlock()
	LogInfo("Input subsystem initialized.")
	return nil
}

func InputShutdown() error {
	input.mu.Lock()
	input.state = nil
	input.mu.Unlock()
	return nil
}

// InputUpdate rolls the current state into the previous one. Call it once per
// frame, after everything that reads input this frame.
func InputUpdate(deltaTime float64) error {
	withInput(func(s *InputState) {
		s.KeyboardPrevious = s.KeyboardCurrent
		s.MousePrevious = s.MouseCurrent
	})
	return nil
}

func InputIsKeyDown(key KeyCode) (down bool) {
	withInput(func(s *InputState) { down = s.KeyboardCurrent.Keys[key] })
	return
}

func InputWasKeyDown(key KeyCode) (down bool) {
	withInput(func(s *InputState) { down = s.KeyboardPrevious.Keys[key] })
	return
}

func InputIsButtonDown(button Button) (down bool) {
	withInput(func(s *InputState) { down = s.MouseCurrent.Buttons[button] })
	return
}

func InputGetMousePosition() (x, y int32) {
	withInput(func(s *InputState) { x, y = s.MouseCurrent.X, s.MouseCurrent.Y })
	return
}

func InputGetPreviousMousePosition() (x, y int32) {
	withInput(func(s *InputState) { x, y = s.MousePrevious.X, s.MousePrevious.Y })
	return
}

// InputProcessKey records a key transition. The press or release event only
// fires when the state actually changed.
func InputProcessKey(key KeyCode, pressed bool) {
	changed := false
	withInput(func(s *InputState) {
		if s.KeyboardCurrent.Keys[key] != pressed {
			s.KeyboardCurrent.Keys[key] = pressed
			changed = true
		}
	})
	if changed {
		var ctx EventContext
		ctx.Data.U16[0] = uint16(key)
		EventFire(pick(pressed, EVENT_CODE_KEY_PRESSED, EVENT_CODE_KEY_RELEASED), nil, ctx)
	}
}

func InputProcessButton(button Button, pressed bool) {
	changed := false
	withInput(func(s *InputState) {
		if s.MouseCurrent.Buttons[button] != pressed {
			s.MouseCurrent.Buttons[button] = pressed
			changed = true
		}
	})
	if changed {
		var ctx EventContext
		ctx.Data.U16[0] = uint16(button)
		EventFire(pick(pressed, EVENT_CODE_BUTTON_PRESSED, EVENT_CODE_BUTTON_RELEASED), nil, ctx)
	}
}

func InputProcessMouseMove(x, y int32) {
	changed := false
	withInput(func(s *InputState) {
		if s.MouseCurrent.X != x || s.MouseCurrent.Y != y {
			s.MouseCurrent.X, s.MouseCurrent.Y = x, y
			changed = true
		}
	})
	if changed {
		var ctx EventContext
		ctx.Data.I32[0] = x
		ctx.Data.I32[1] = y
		EventFire(EVENT_CODE_MOUSE_MOVED, nil, ctx)
	}
}

func pick(pressed bool, down, up SystemEventCode) SystemEventCode {
	if pressed {
		return down
	}
	return up
}

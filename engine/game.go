package engine

import "github.com/dletozeun/3D/engine/core"

// Game is the application side of the engine. Only FnInitialize is required.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnOnResize        OnResize
	FnOnKey           OnKey
	FnShutdown        Shutdown
}

// Initialize builds the scenes and the post processing of the game. It runs
// on the render thread once the renderer and the systems exist.
type Initialize func(e *Engine) error
type Update func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error

// OnKey receives the key presses the engine did not handle. Returns true if
// the key was used.
type OnKey func(key core.KeyCode) bool
type Shutdown func() error

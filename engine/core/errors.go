package core

import (
	"errors"
	"fmt"
)

var (
	ErrFramebufferIncomplete  = errors.New("framebuffer is not complete")
	ErrDuplicateTerminalStage = errors.New("a render-to-screen pass already exists, can't add an additional pass")
	ErrNullSource             = errors.New("invalid texture input")
	ErrNullTexture            = errors.New("texture is not set")
	ErrInvalidRenderer        = errors.New("invalid renderer")
	ErrNoActiveScene          = errors.New("no active scene in the renderer")
	ErrInvalidSceneID         = errors.New("can not activate a scene with an invalid ID")
	ErrSampleInFlight         = errors.New("a luminance sample is already in flight")
	ErrTextureUnitOutOfRange  = errors.New("specified texture unit is higher than the maximum supported texture unit number")
	ErrBadParameterID         = errors.New("bad parameter id")
	ErrBadTextureID           = errors.New("bad texture id")
	ErrBadPassIndex           = errors.New("bad pass index")
	ErrShaderCompile          = errors.New("shader compilation failed")
	ErrShaderLink             = errors.New("shader link failed")
	ErrGPU                    = errors.New("gpu error")
	ErrUnsupportedHardware    = errors.New("hardware is not able to run the demo")
	ErrUnknown                = errors.New("unknown")
)

// Error carries the operation that failed and whether the failure must stop
// the application. Setup code marks configuration and environment failures
// as fatal; everything else is reported and the frame loop moves on.
type Error struct {
	Op    string
	Err   error
	Fatal bool
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fatal wraps err as a fatal setup error for op.
func Fatal(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err, Fatal: true}
}

// IsFatal reports whether any error in err's chain was marked fatal.
func IsFatal(err error) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Fatal {
			return true
		}
		err = e.Err
	}
	return false
}

package exposure

import (
	"fmt"
	"sync"

	"github.com/dletozeun/3D/engine/math"
)

// Controller owns the exposure state fed to the tone mapping pass: a
// luminance that follows the measured samples through a one pole low pass
// filter, current += rate * (sample - current), once per frame.
type Controller struct {
	mu       sync.Mutex
	current  float32
	rate     float32
	sample   float32
	override float32
	forced   bool
}

// NewController starts from seed, usually a bright value so the first frames
// do not flash black. The value holds until the first sample arrives. rate
// must lie in (0, 1].
func NewController(seed, rate float32) (*Controller, error) {
	if !(rate > 0 && rate <= 1) {
		return nil, fmt.Errorf("exposure rate %v outside (0, 1]", rate)
	}
	return &Controller{
		current: seed,
		sample:  seed,
		rate:    rate,
	}, nil
}

// SetSample records the latest measured luminance.
func (c *Controller) SetSample(sample float32) {
	c.mu.Lock()
	c.sample = sample
	c.mu.Unlock()
}

// SetOverride replaces the measured sample by value while active is true.
// The help overlay uses it to keep a comfortable exposure whatever the scene
// underneath.
func (c *Controller) SetOverride(value float32, active bool) {
	c.mu.Lock()
	c.override = value
	c.forced = active
	c.mu.Unlock()
}

// Target returns the value the filter is moving toward.
func (c *Controller) Target() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target()
}

func (c *Controller) target() float32 {
	if c.forced {
		return c.override
	}
	return c.sample
}

// Tick advances the filter by one frame and returns the new value.
func (c *Controller) Tick() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.target()
	next := c.current + c.rate*(target-c.current)
	// rounding must not carry the value past the target
	if c.current <= target {
		next = math.Clamp(next, c.current, target)
	} else {
		next = math.Clamp(next, target, c.current)
	}
	c.current = next
	return next
}

// Current returns the filtered luminance.
func (c *Controller) Current() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Reset sets the filtered luminance, used when the scene changes.
func (c *Controller) Reset(value float32) {
	c.mu.Lock()
	c.current = value
	c.mu.Unlock()
}

func (c *Controller) Rate() float32 {
	return c.rate
}

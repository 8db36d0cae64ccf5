package core

import "github.com/dletozeun/3D/engine/containers"

const AVG_COUNT int = 30

// Metrics keeps a rolling average of the frame time and the number of frames
// rendered during the last full second.
type Metrics struct {
	frameTimes         *containers.RingQueue[float64]
	frameTimeSum       float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
}

func NewMetrics() *Metrics {
	return &Metrics{
		frameTimes: containers.NewRingQueue[float64](AVG_COUNT),
	}
}

// Update records a frame that took frameElapsedTime seconds.
func (m *Metrics) Update(frameElapsedTime float64) {
	frameMS := frameElapsedTime * 1000.0
	if m.frameTimes.IsFull() {
		oldest, _ := m.frameTimes.Dequeue()
		m.frameTimeSum -= oldest
	}
	_ = m.frameTimes.Enqueue(frameMS)
	m.frameTimeSum += frameMS

	// Calculate frames per second.
	m.accumulatedFrameMS += frameMS
	if m.accumulatedFrameMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedFrameMS -= 1000
		m.frames = 0
	}

	// Count all frames.
	m.frames++
}

func (m *Metrics) FPS() float64 {
	return m.fps
}

// FrameTime returns the average frame time in milliseconds over the last
// AVG_COUNT frames.
func (m *Metrics) FrameTime() float64 {
	if m.frameTimes.Len() == 0 {
		return 0
	}
	return m.frameTimeSum / float64(m.frameTimes.Len())
}

func (m *Metrics) Frame() (float64, float64) {
	return m.FPS(), m.FrameTime()
}

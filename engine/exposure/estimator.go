package exposure

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/dletozeun/3D/engine/systems"
)

// DefaultSampleInterval is the minimum time between two published samples.
const DefaultSampleInterval = 100 * time.Millisecond

// Copier draws a texture into another one on the GPU.
type Copier interface {
	Copy(src, dst *metadata.Texture) error
}

// Reader downloads a 2D texture as RGBA float32.
type Reader interface {
	TextureRead(texture *metadata.Texture, out []float32) error
}

// Spawner runs a function off the render thread.
type Spawner interface {
	Spawn(name string, fn func() error) (systems.Job, error)
}

// Estimator measures the mean luminance of the rendered frame. The frame is
// copied into a small staging texture and read back on the render thread; the
// reduction runs on a worker. At most one reduction is in flight.
type Estimator struct {
	staging  *metadata.Texture
	pixels   []float32
	copier   Copier
	reader   Reader
	spawner  Spawner
	interval time.Duration
	sleep    func(time.Duration)

	job     systems.Job
	latest  atomic.Uint32
	samples atomic.Uint64
}

type EstimatorConfig struct {
	// Staging receives the copy of the frame, usually 64x64 RGBA float.
	Staging *metadata.Texture
	Copier  Copier
	Reader  Reader
	Spawner Spawner
	// Interval is the minimum time between two published samples.
	Interval time.Duration
}

func NewEstimator(config EstimatorConfig) (*Estimator, error) {
	if config.Staging == nil {
		return nil, fmt.Errorf("luminance estimator staging texture: %w", core.ErrNullTexture)
	}
	if config.Staging.PixelCount() == 0 {
		return nil, errors.New("luminance estimator staging texture is empty")
	}
	if config.Copier == nil || config.Reader == nil || config.Spawner == nil {
		return nil, errors.New("luminance estimator needs a copier, a reader and a spawner")
	}
	interval := config.Interval
	if interval < 0 {
		interval = 0
	}
	return &Estimator{
		staging:  config.Staging,
		pixels:   make([]float32, 4*config.Staging.PixelCount()),
		copier:   config.Copier,
		reader:   config.Reader,
		spawner:  config.Spawner,
		interval: interval,
		sleep:    time.Sleep,
	}, nil
}

// Busy reports whether a reduction is still running. It never blocks.
func (e *Estimator) Busy() bool {
	return e.job != nil && !e.job.Done()
}

// BeginSample copies source into the staging texture, reads it back and
// starts the reduction on a worker. It must be called from the render thread
// and fails with core.ErrSampleInFlight while a previous reduction runs.
func (e *Estimator) BeginSample(source *metadata.Texture) error {
	if e.Busy() {
		return core.ErrSampleInFlight
	}
	if err := e.copier.Copy(source, e.staging); err != nil {
		return fmt.Errorf("luminance sample: %w", err)
	}
	if err := e.reader.TextureRead(e.staging, e.pixels); err != nil {
		return fmt.Errorf("luminance sample: %w", err)
	}

	job, err := e.spawner.Spawn("luminance", e.reduce)
	if err != nil {
		return fmt.Errorf("luminance sample: %w", err)
	}
	e.job = job
	return nil
}

// reduce runs on the worker. The buffer is not touched by the render thread
// until the job is done.
func (e *Estimator) reduce() error {
	e.publish(MeanLuminance(e.pixels))
	if e.interval > 0 {
		e.sleep(e.interval)
	}
	return nil
}

func (e *Estimator) publish(value float32) {
	e.latest.Store(math.Float32bits(value))
	e.samples.Add(1)
}

// Latest returns the last published mean luminance, 0 before the first one.
func (e *Estimator) Latest() float32 {
	return math.Float32frombits(e.latest.Load())
}

// Samples returns how many samples have been published.
func (e *Estimator) Samples() uint64 {
	return e.samples.Load()
}

func (e *Estimator) Staging() *metadata.Texture {
	return e.staging
}

// Wait blocks until the running reduction, if any, has finished.
func (e *Estimator) Wait() error {
	if e.job == nil {
		return nil
	}
	return e.job.Wait()
}

// MeanLuminance returns (sum(r) + sum(g) + sum(b)) / (3 * n) over RGBA pixels.
func MeanLuminance(pixels []float32) float32 {
	n := len(pixels) / 4
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		p := pixels[4*i : 4*i+3]
		sum += float64(p[0]) + float64(p[1]) + float64(p[2])
	}
	return float32(sum / (3 * float64(n)))
}

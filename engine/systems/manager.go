package systems

import (
	"github.com/dletozeun/3D/engine/assets"
	"github.com/dletozeun/3D/engine/renderer"
)

type SystemManagerConfig struct {
	MaxTextureCount uint32
	// JobWorkers run the work kept off the render thread.
	JobWorkers    int
	JobQueueDepth int
}

// SystemManager holds the engine systems and shuts them down in reverse
// creation order.
type SystemManager struct {
	JobSystem     *JobSystem
	TextureSystem *TextureSystem
}

func NewSystemManager(config SystemManagerConfig, am *assets.AssetManager, backend renderer.RendererBackend) (*SystemManager, error) {
	js, err := NewJobSystem(config.JobWorkers, config.JobQueueDepth)
	if err != nil {
		return nil, err
	}
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: config.MaxTextureCount,
	}, am, backend)
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	return &SystemManager{
		JobSystem:     js,
		TextureSystem: ts,
	}, nil
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.TextureSystem.Shutdown(); err != nil {
		return err
	}
	return sm.JobSystem.Shutdown()
}

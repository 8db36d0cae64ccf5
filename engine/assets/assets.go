package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dletozeun/3D/engine/assets/loaders"
	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/fsnotify/fsnotify"
)

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrClosed        = errors.New("asset manager already closed")
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// AssetManager indexes the files under the assets directory, loads them
// through the loader registered for their type and, when watching, tracks
// changes on disk. Paths are relative to the assets directory and use
// forward slashes, e.g. "shaders/HighPass.frag".
type AssetManager struct {
	baseDir string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader
	shaders map[string]string

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	reloads  chan string
}

func NewAssetManager() (*AssetManager, error) {
	return &AssetManager{
		assets:  make(map[string]AssetInfo),
		loaders: make(map[metadata.ResourceType]Loader),
		shaders: make(map[string]string),
		reloads: make(chan string, 16),
		done:    make(chan struct{}),
	}, nil
}

// Initialize indexes assetsDir. With watch set, modified shader sources are
// dropped from the cache and reported on Reloads.
func (am *AssetManager) Initialize(assetsDir string, watch bool) error {
	am.baseDir = filepath.Clean(assetsDir)

	// Register loaders
	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})

	if err := am.index(); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	am.fsnotify = fsWatch
	if err := am.watchRecursive(am.baseDir); err != nil {
		fsWatch.Close()
		am.fsnotify = nil
		return err
	}
	am.stopped = make(chan struct{})
	go am.start()
	return nil
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	if am.stopped != nil {
		<-am.stopped
	}
	return nil
}

// Reloads delivers the relative path of every shader source changed on disk.
func (am *AssetManager) Reloads() <-chan string {
	return am.reloads
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// LoadAsset loads the asset at name, relative to the assets directory, with
// the loader registered for its type.
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	path := filepath.ToSlash(filepath.Clean(name))

	am.mutex.Lock()
	asset, exists := am.assets[path]
	if exists {
		// Update the loaded time
		asset.LastLoaded = time.Now()
		am.assets[path] = asset
	}
	am.mutex.Unlock()
	if !exists {
		return nil, fmt.Errorf("%s: %w", path, ErrAssetNotFound)
	}
	if asset.Type != resourceType {
		return nil, fmt.Errorf("asset %s has type %d, not %d", path, asset.Type, resourceType)
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %d", asset.Type)
	}

	resource, err := loader.Load(am.fullPath(path), resourceType, params)
	if err != nil {
		return nil, err
	}
	resource.Name = path
	return resource, nil
}

func (am *AssetManager) UnloadAsset(resource *metadata.Resource) error {
	path, err := filepath.Rel(am.baseDir, resource.FullPath)
	if err != nil {
		return err
	}
	am.mutex.RLock()
	asset, exists := am.assets[filepath.ToSlash(path)]
	am.mutex.RUnlock()
	if !exists {
		return nil
	}
	if loader, ok := am.loaders[asset.Type]; ok {
		return loader.Unload(resource)
	}
	return nil
}

// ShaderSource returns the source text of the shader at path, cached until
// the file changes.
func (am *AssetManager) ShaderSource(path string) (string, error) {
	path = filepath.ToSlash(filepath.Clean(path))

	am.mutex.RLock()
	source, cached := am.shaders[path]
	am.mutex.RUnlock()
	if cached {
		return source, nil
	}

	resource, err := am.LoadAsset(path, metadata.ResourceTypeShader, nil)
	if err != nil {
		return "", err
	}
	source = resource.Data.(string)

	am.mutex.Lock()
	am.shaders[path] = source
	am.mutex.Unlock()
	return source, nil
}

func (am *AssetManager) fullPath(path string) string {
	return filepath.Join(am.baseDir, filepath.FromSlash(path))
}

func (am *AssetManager) relPath(fullPath string) (string, bool) {
	rel, err := filepath.Rel(am.baseDir, fullPath)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogError(err.Error())
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) index() error {
	if _, err := os.Stat(am.baseDir); err != nil {
		return err
	}
	return filepath.Walk(am.baseDir, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			am.register(walkPath)
		}
		return nil
	})
}

// watchRecursive adds all directories under the given one to the watch list.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.register(walkPath)
		return nil
	})
}

func (am *AssetManager) register(fullPath string) (string, metadata.ResourceType) {
	path, ok := am.relPath(fullPath)
	if !ok {
		return "", metadata.ResourceTypeNone
	}
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return path, assetType
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path: path,
		Type: assetType,
	}
	return path, assetType
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(fullPath string) {
	path, assetType := am.register(fullPath)
	if assetType != metadata.ResourceTypeShader {
		return
	}

	am.mutex.Lock()
	delete(am.shaders, path)
	am.mutex.Unlock()

	select {
	case am.reloads <- path:
	default:
		core.LogWarn("shader reload queue full, dropping %s", path)
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(fullPath string) {
	path, ok := am.relPath(fullPath)
	if !ok {
		return
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
	delete(am.shaders, path)
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case ".vert", ".frag", ".glsl":
		return metadata.ResourceTypeShader
	case ".png", ".jpg", ".jpeg":
		return metadata.ResourceTypeImage
	case ".toml":
		return metadata.ResourceTypeConfig
	case ".txt":
		return metadata.ResourceTypeText
	default:
		return metadata.ResourceTypeNone
	}
}

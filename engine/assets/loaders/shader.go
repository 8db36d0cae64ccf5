package loaders

import (
	"os"

	"github.com/dletozeun/3D/engine/renderer/metadata"
)

type ShaderLoader struct{}

// Load reads a GLSL source file. The resource data is the source text.
func (sl *ShaderLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     "shader",
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     string(data),
	}, nil
}

func (sl *ShaderLoader) Unload(*metadata.Resource) error {
	return nil
}

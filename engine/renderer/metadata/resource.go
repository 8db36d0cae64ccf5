package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	ResourceTypeNone ResourceType = iota
	/** @brief Text resource type. */
	ResourceTypeText
	/** @brief Image resource type. */
	ResourceTypeImage
	/** @brief Shader source resource type. */
	ResourceTypeShader
	/** @brief Configuration file resource type. */
	ResourceTypeConfig
)

/**
 * @brief A loaded asset.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

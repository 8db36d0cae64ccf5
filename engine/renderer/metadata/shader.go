package metadata

/**
 * @brief Shader stages available in the system.
 */
type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
)

/**
 * @brief The types of values an effect can upload as a uniform.
 */
type ShaderUniformType uint

const (
	ShaderUniformTypeFloat32   ShaderUniformType = 0
	ShaderUniformTypeFloat32_2 ShaderUniformType = 1
	ShaderUniformTypeFloat32_3 ShaderUniformType = 2
	ShaderUniformTypeFloat32_4 ShaderUniformType = 3
	ShaderUniformTypeInt32     ShaderUniformType = 4
	ShaderUniformTypeInt32_2   ShaderUniformType = 5
	ShaderUniformTypeInt32_3   ShaderUniformType = 6
	ShaderUniformTypeInt32_4   ShaderUniformType = 7
	ShaderUniformTypeMatrix2   ShaderUniformType = 8
	ShaderUniformTypeMatrix3   ShaderUniformType = 9
	ShaderUniformTypeMatrix4   ShaderUniformType = 10
	ShaderUniformTypeSampler   ShaderUniformType = 11
)

// Components returns the number of scalars one element of the type holds.
func (t ShaderUniformType) Components() int {
	switch t {
	case ShaderUniformTypeFloat32, ShaderUniformTypeInt32, ShaderUniformTypeSampler:
		return 1
	case ShaderUniformTypeFloat32_2, ShaderUniformTypeInt32_2:
		return 2
	case ShaderUniformTypeFloat32_3, ShaderUniformTypeInt32_3:
		return 3
	case ShaderUniformTypeFloat32_4, ShaderUniformTypeInt32_4, ShaderUniformTypeMatrix2:
		return 4
	case ShaderUniformTypeMatrix3:
		return 9
	case ShaderUniformTypeMatrix4:
		return 16
	}
	return 0
}

// IsInteger reports whether the uniform is uploaded through the integer entry points.
func (t ShaderUniformType) IsInteger() bool {
	switch t {
	case ShaderUniformTypeInt32, ShaderUniformTypeInt32_2, ShaderUniformTypeInt32_3, ShaderUniformTypeInt32_4, ShaderUniformTypeSampler:
		return true
	}
	return false
}

/**
 * @brief Represents a linked GPU program on the frontend.
 */
type Shader struct {
	/** @brief The program handle. InvalidID until linked. */
	ID uint32
	/** @brief A readable name, usually "<vertex>+<fragment>". */
	Name string
	VertexPath   string
	FragmentPath string
	/** @brief Backend specific data (attached shader objects). */
	InternalData interface{}
}

// NoUniform is the location reported for a name the program does not use.
// Uploads to it are silently ignored by the driver.
const NoUniform int32 = -1

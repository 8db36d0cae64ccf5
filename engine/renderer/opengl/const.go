package opengl

// Float internal formats from ARB_texture_float. They are core from 3.0 on
// and spelled out here so the 2.1 bindings can use them.
const (
	glRGBA32F uint32 = 0x8814
	glRGBA16F uint32 = 0x881A
)

// Extensions the post processing pipeline cannot run without. Each entry
// lists alternatives, any one of them is enough.
var requiredExtensions = [][]string{
	{"GL_ARB_vertex_shader"},
	{"GL_ARB_fragment_shader"},
	{"GL_ARB_framebuffer_object", "GL_EXT_framebuffer_object"},
	{"GL_ARB_texture_non_power_of_two"},
	{"GL_ARB_texture_float", "GL_ATI_texture_float"},
}

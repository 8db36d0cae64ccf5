package opengl

import (
	"fmt"
	"strings"

	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/engine/renderer/metadata"
	"github.com/go-gl/gl/v2.1/gl"
)

type shaderObjects struct {
	vertex   uint32
	fragment uint32
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s: %w", strings.TrimRight(log, "\x00"), core.ErrShaderCompile)
	}
	return shader, nil
}

func (r *OpenGLRenderer) ShaderCreate(shader *metadata.Shader, vertexSource, fragmentSource string) error {
	vertex, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return fmt.Errorf("%s: %w", shader.VertexPath, err)
	}
	fragment, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertex)
		return fmt.Errorf("%s: %w", shader.FragmentPath, err)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertex)
	gl.AttachShader(program, fragment)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		gl.DeleteShader(vertex)
		gl.DeleteShader(fragment)
		return fmt.Errorf("%s: %s: %w", shader.Name, strings.TrimRight(log, "\x00"), core.ErrShaderLink)
	}

	shader.ID = program
	shader.InternalData = &shaderObjects{vertex: vertex, fragment: fragment}
	return nil
}

func (r *OpenGLRenderer) ShaderDestroy(shader *metadata.Shader) {
	if shader.ID == metadata.InvalidID {
		return
	}
	if objects, ok := shader.InternalData.(*shaderObjects); ok {
		gl.DetachShader(shader.ID, objects.vertex)
		gl.DetachShader(shader.ID, objects.fragment)
		gl.DeleteShader(objects.vertex)
		gl.DeleteShader(objects.fragment)
	}
	gl.DeleteProgram(shader.ID)
	shader.ID = metadata.InvalidID
	shader.InternalData = nil
}

func (r *OpenGLRenderer) ShaderUse(shader *metadata.Shader) {
	if shader == nil {
		gl.UseProgram(0)
		return
	}
	gl.UseProgram(shader.ID)
}

func (r *OpenGLRenderer) ShaderUniformLocation(shader *metadata.Shader, name string) int32 {
	return gl.GetUniformLocation(shader.ID, gl.Str(name+"\x00"))
}

func (r *OpenGLRenderer) SetUniformFloat(location int32, uniformType metadata.ShaderUniformType, count int32, data []float32) {
	if location == metadata.NoUniform || len(data) == 0 {
		return
	}
	switch uniformType {
	case metadata.ShaderUniformTypeFloat32:
		gl.Uniform1fv(location, count, &data[0])
	case metadata.ShaderUniformTypeFloat32_2:
		gl.Uniform2fv(location, count, &data[0])
	case metadata.ShaderUniformTypeFloat32_3:
		gl.Uniform3fv(location, count, &data[0])
	case metadata.ShaderUniformTypeFloat32_4:
		gl.Uniform4fv(location, count, &data[0])
	case metadata.ShaderUniformTypeMatrix2:
		gl.UniformMatrix2fv(location, count, false, &data[0])
	case metadata.ShaderUniformTypeMatrix3:
		gl.UniformMatrix3fv(location, count, false, &data[0])
	case metadata.ShaderUniformTypeMatrix4:
		gl.UniformMatrix4fv(location, count, false, &data[0])
	default:
		core.LogWarn("uniform type %d is not a float type", uniformType)
	}
}

func (r *OpenGLRenderer) SetUniformInt(location int32, uniformType metadata.ShaderUniformType, count int32, data []int32) {
	if location == metadata.NoUniform || len(data) == 0 {
		return
	}
	switch uniformType {
	case metadata.ShaderUniformTypeInt32, metadata.ShaderUniformTypeSampler:
		gl.Uniform1iv(location, count, &data[0])
	case metadata.ShaderUniformTypeInt32_2:
		gl.Uniform2iv(location, count, &data[0])
	case metadata.ShaderUniformTypeInt32_3:
		gl.Uniform3iv(location, count, &data[0])
	case metadata.ShaderUniformTypeInt32_4:
		gl.Uniform4iv(location, count, &data[0])
	default:
		core.LogWarn("uniform type %d is not an integer type", uniformType)
	}
}

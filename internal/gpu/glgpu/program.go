package glgpu

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/scenery3d/internal/gpu"
)

// CompileProgram compiles the stages of src and links them into a program.
func (d *Device) CompileProgram(src gpu.ProgramSource) (gpu.Program, error) {
	type stage struct {
		source string
		kind   uint32
		name   string
	}
	stages := []stage{
		{src.Vertex, gl.VERTEX_SHADER, "vertex"},
		{src.Geometry, gl.GEOMETRY_SHADER, "geometry"},
		{src.Fragment, gl.FRAGMENT_SHADER, "fragment"},
	}

	program := gl.CreateProgram()
	var shaders []uint32
	defer func() {
		for _, s := range shaders {
			gl.DeleteShader(s)
		}
	}()

	for _, st := range stages {
		if st.source == "" {
			continue
		}
		s, err := compileShader(st.source, st.kind, st.name)
		if err != nil {
			gl.DeleteProgram(program)
			d.log.Warn("shader compile failed", zap.String("program", src.Name), zap.Error(err))
			return 0, fmt.Errorf("%s: %w", src.Name, err)
		}
		shaders = append(shaders, s)
		gl.AttachShader(program, s)
	}

	gl.BindAttribLocation(program, uint32(gpu.AttribPosition), gl.Str("a_vertex\x00"))
	gl.BindAttribLocation(program, uint32(gpu.AttribTexCoord), gl.Str("a_texcoord\x00"))
	gl.BindAttribLocation(program, uint32(gpu.AttribNormal), gl.Str("a_normal\x00"))
	gl.BindAttribLocation(program, uint32(gpu.AttribTangent), gl.Str("a_tangent\x00"))
	gl.BindAttribLocation(program, uint32(gpu.AttribBitangent), gl.Str("a_bitangent\x00"))
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
		gl.DeleteProgram(program)
		d.log.Warn("shader link failed", zap.String("program", src.Name), zap.String("log", log))
		return 0, fmt.Errorf("%s: link: %s", src.Name, strings.TrimRight(log, "\x00"))
	}

	return gpu.Program(program), nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, strings.TrimRight(log, "\x00"))
	}

	return shader, nil
}

// DeleteProgram releases a program. Zero is ignored.
func (d *Device) DeleteProgram(p gpu.Program) {
	if p != 0 {
		gl.DeleteProgram(uint32(p))
	}
}

// UseProgram binds p for subsequent draws.
func (d *Device) UseProgram(p gpu.Program) {
	gl.UseProgram(uint32(p))
}

// UniformLocation returns -1 for unknown or inactive uniforms.
func (d *Device) UniformLocation(p gpu.Program, name string) int32 {
	return gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
}

package gldevice

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goblend/graphics"
	"github.com/richinsley/goblend/logger"
	"github.com/richinsley/goblend/translator"
)

// Program is a linked GL program with its uniform and attribute locations
// resolved under their source names.
type Program struct {
	id       uint32
	uniforms map[string]int32
	attribs  map[string]int32
}

// Uniform implements graphics.Program.
func (p *Program) Uniform(name string) (int32, bool) {
	loc, ok := p.uniforms[name]
	return loc, ok
}

func (p *Program) attrib(name string) int32 {
	if loc, ok := p.attribs[name]; ok {
		return loc
	}
	return -1
}

// NewProgram translates, compiles and links both stages.
func (d *Device) NewProgram(src graphics.ProgramSource) (graphics.Program, error) {
	vs, err := translator.Translate(src.Vert, translator.StageVertex)
	if err != nil {
		return nil, err
	}
	fs, err := translator.Translate(src.Frag, translator.StageFragment)
	if err != nil {
		return nil, err
	}

	id, err := newProgram(vs.Code, fs.Code)
	if err != nil {
		return nil, err
	}

	p := &Program{
		id:       id,
		uniforms: make(map[string]int32),
		attribs:  make(map[string]int32),
	}
	for _, s := range []*translator.Shader{vs, fs} {
		for name := range s.Names {
			mapped := s.MappedName(name)
			if loc := gl.GetUniformLocation(id, gl.Str(mapped+"\x00")); loc >= 0 {
				p.uniforms[name] = loc
			}
		}
	}
	for name := range vs.Names {
		if loc := gl.GetAttribLocation(id, gl.Str(vs.MappedName(name)+"\x00")); loc >= 0 {
			p.attribs[name] = loc
		}
	}

	logger.Logger().Info("program linked", "id", id, "uniforms", len(p.uniforms), "attributes", len(p.attribs))
	return p, nil
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: %v", graphics.ErrLink, log)
	}

	return program, nil
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
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %v", graphics.ErrCompile, logText)
	}
	return shader, nil
}

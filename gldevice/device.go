// Package gldevice implements graphics.Device on OpenGL 4.1 core.
//
// All methods must be called on the thread that owns the current GL context.
package gldevice

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goblend/graphics"
	"github.com/richinsley/goblend/logger"
)

var glInitOnce sync.Once

const maxVertexSlots = 4

type textureBinding struct {
	tex  *Texture
	unit int
}

// Device tracks the bindings of the next draw and commits them in Draw.
type Device struct {
	debug bool
	vao   uint32

	uniforms map[string]any

	// per-draw state, cleared after every Draw
	textures map[string]textureBinding
	vbs      [maxVertexSlots]*VertexBuffer
	ib       *IndexBuffer
	program  *Program
}

// Options configures a Device.
type Options struct {
	// Debug checks glGetError after every draw.
	Debug bool
}

// New initializes the GL bindings for the current context and returns a
// device drawing into it.
func New(opts Options) (*Device, error) {
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}

	d := &Device{
		debug:    opts.Debug,
		uniforms: make(map[string]any),
		textures: make(map[string]textureBinding),
	}

	// Core profiles have no default vertex array.
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	gl.Disable(gl.BLEND)

	logger.Logger().Info("gl device ready", "version", gl.GoStr(gl.GetString(gl.VERSION)), "renderer", gl.GoStr(gl.GetString(gl.RENDERER)))
	return d, nil
}

func (d *Device) SetViewport(x, y, w, h int) {
	gl.Viewport(int32(x), int32(y), int32(w), int32(h))
}

func (d *Device) Clear(opts graphics.ClearOptions) {
	if opts.Flags&graphics.ClearColor != 0 {
		gl.ClearColor(opts.Color[0], opts.Color[1], opts.Color[2], opts.Color[3])
	}
	if opts.Flags&graphics.ClearDepth != 0 {
		gl.DepthMask(true)
		gl.ClearDepth(float64(opts.Depth))
	}
	gl.Clear(glClearBits(opts.Flags))
}

// SetUniform stores value for name. It is applied to every program drawn
// afterwards that declares name.
func (d *Device) SetUniform(name string, value any) {
	d.uniforms[name] = value
}

func (d *Device) SetTexture(name string, tex graphics.Texture, unit int) {
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		logger.Logger().Warn("ignoring foreign texture", "name", name, "type", fmt.Sprintf("%T", tex))
		return
	}
	d.textures[name] = textureBinding{tex: t, unit: unit}
}

func (d *Device) SetVertexBuffer(slot int, vb graphics.VertexBuffer) {
	b, ok := vb.(*VertexBuffer)
	if !ok || slot < 0 || slot >= maxVertexSlots {
		logger.Logger().Warn("ignoring vertex buffer", "slot", slot, "type", fmt.Sprintf("%T", vb))
		return
	}
	d.vbs[slot] = b
}

func (d *Device) SetIndexBuffer(ib graphics.IndexBuffer) {
	b, ok := ib.(*IndexBuffer)
	if !ok {
		logger.Logger().Warn("ignoring index buffer", "type", fmt.Sprintf("%T", ib))
		return
	}
	d.ib = b
}

func (d *Device) SetProgram(p graphics.Program) {
	prog, ok := p.(*Program)
	if !ok {
		logger.Logger().Warn("ignoring program", "type", fmt.Sprintf("%T", p))
		return
	}
	d.program = prog
}

func (d *Device) EnableBlend()  { gl.Enable(gl.BLEND) }
func (d *Device) DisableBlend() { gl.Disable(gl.BLEND) }

func (d *Device) SetBlendFunction(src, dst graphics.BlendFactor) {
	gl.BlendFunc(glBlendFactor(src), glBlendFactor(dst))
}

func (d *Device) SetBlendEquation(eq graphics.BlendEquation) {
	gl.BlendEquation(glBlendEquation(eq))
}

// Draw commits the pending bindings and issues the draw. It is indexed when
// an index buffer is bound.
func (d *Device) Draw(start, count int) {
	defer d.resetDrawState()

	p := d.program
	if p == nil {
		logger.Logger().Warn("draw without program")
		return
	}

	gl.UseProgram(p.id)
	gl.BindVertexArray(d.vao)

	enabled := d.bindAttributes(p)
	d.bindTextures(p)
	d.commitUniforms(p)

	if d.ib != nil {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, d.ib.id)
		offset := start * d.ib.format.Size()
		gl.DrawElements(gl.TRIANGLES, int32(count), glIndexType(d.ib.format), gl.PtrOffset(offset))
	} else {
		gl.DrawArrays(gl.TRIANGLES, int32(start), int32(count))
	}

	for _, loc := range enabled {
		gl.DisableVertexAttribArray(loc)
	}

	if d.debug {
		if code := gl.GetError(); code != gl.NO_ERROR {
			logger.Logger().Warn("gl error after draw", "code", fmt.Sprintf("0x%04x", code), "count", count)
		}
	}
}

func (d *Device) bindAttributes(p *Program) []uint32 {
	var enabled []uint32
	for _, vb := range d.vbs {
		if vb == nil {
			continue
		}
		gl.BindBuffer(gl.ARRAY_BUFFER, vb.id)
		stride := int32(vb.format.Stride())
		offset := 0
		for _, a := range vb.format {
			if loc := p.attrib(a.Name); loc >= 0 {
				gl.EnableVertexAttribArray(uint32(loc))
				gl.VertexAttribPointer(uint32(loc), int32(a.Num), glAttrType(a.Type), false, stride, gl.PtrOffset(offset))
				enabled = append(enabled, uint32(loc))
			}
			offset += a.Type.Size() * a.Num
		}
	}
	return enabled
}

func (d *Device) bindTextures(p *Program) {
	names := make([]string, 0, len(d.textures))
	for name := range d.textures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b := d.textures[name]
		gl.ActiveTexture(gl.TEXTURE0 + uint32(b.unit))
		gl.BindTexture(gl.TEXTURE_2D, b.tex.id)
		if loc, ok := p.Uniform(name); ok {
			gl.Uniform1i(loc, int32(b.unit))
		}
	}
}

func (d *Device) commitUniforms(p *Program) {
	for name, value := range d.uniforms {
		loc, ok := p.Uniform(name)
		if !ok {
			continue
		}
		if err := applyUniform(loc, value); err != nil {
			logger.Logger().Warn("uniform not applied", "name", name, "err", err)
		}
	}
}

func (d *Device) resetDrawState() {
	d.program = nil
	d.ib = nil
	for i := range d.vbs {
		d.vbs[i] = nil
	}
	for name := range d.textures {
		delete(d.textures, name)
	}
}

var _ graphics.Device = (*Device)(nil)

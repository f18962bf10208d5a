// Package graphicstest provides a call-recording graphics.Device for tests.
package graphicstest

import (
	"fmt"
	"sync"

	"github.com/richinsley/goblend/graphics"
)

// Call is one recorded device call.
type Call struct {
	Op   string
	Args []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Op, c.Args)
}

// Program is a fake linked program.
type Program struct {
	Src      graphics.ProgramSource
	Uniforms map[string]int32
}

func (p *Program) Uniform(name string) (int32, bool) {
	loc, ok := p.Uniforms[name]
	return loc, ok
}

// VertexBuffer is a fake vertex buffer that keeps its data.
type VertexBuffer struct {
	Fmt   graphics.VertexFormat
	Usage graphics.Usage
	Data  []float32
	N     int
}

func (b *VertexBuffer) Format() graphics.VertexFormat { return b.Fmt }
func (b *VertexBuffer) Count() int                    { return b.N }

// IndexBuffer is a fake index buffer that keeps its data.
type IndexBuffer struct {
	Fmt   graphics.IndexFormat
	Usage graphics.Usage
	Data  []byte
	N     int
}

func (b *IndexBuffer) Format() graphics.IndexFormat { return b.Fmt }
func (b *IndexBuffer) Count() int                   { return b.N }

// Texture is a fake texture that keeps its creation options.
type Texture struct {
	Opts graphics.TextureOptions
}

func (t *Texture) Size() (int, int) { return t.Opts.Width, t.Opts.Height }

// Device records every call made to it. Setting ProgramErr or TextureErr
// makes the corresponding factory fail.
type Device struct {
	ProgramErr error
	TextureErr error

	mu    sync.Mutex
	calls []Call
}

// New returns an empty recording device.
func New() *Device {
	return &Device{}
}

func (d *Device) record(op string, args ...any) {
	d.mu.Lock()
	d.calls = append(d.calls, Call{Op: op, Args: args})
	d.mu.Unlock()
}

// Calls returns a copy of the recorded calls.
func (d *Device) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// Reset forgets all recorded calls.
func (d *Device) Reset() {
	d.mu.Lock()
	d.calls = nil
	d.mu.Unlock()
}

// Ops returns the recorded operation names in order.
func (d *Device) Ops() []string {
	calls := d.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many times op was called.
func (d *Device) Count(op string) int {
	n := 0
	for _, c := range d.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Last returns the most recent call to op.
func (d *Device) Last(op string) (Call, bool) {
	calls := d.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Op == op {
			return calls[i], true
		}
	}
	return Call{}, false
}

func (d *Device) NewProgram(src graphics.ProgramSource) (graphics.Program, error) {
	d.record("NewProgram", src)
	if d.ProgramErr != nil {
		return nil, d.ProgramErr
	}
	return &Program{Src: src, Uniforms: map[string]int32{"time": 0, "texture": 1}}, nil
}

func (d *Device) NewVertexBuffer(format graphics.VertexFormat, usage graphics.Usage, data []float32, count int) (graphics.VertexBuffer, error) {
	d.record("NewVertexBuffer", format, usage, count)
	return &VertexBuffer{Fmt: format, Usage: usage, Data: append([]float32(nil), data...), N: count}, nil
}

func (d *Device) NewIndexBuffer(format graphics.IndexFormat, usage graphics.Usage, data []byte, count int) (graphics.IndexBuffer, error) {
	d.record("NewIndexBuffer", format, usage, count)
	return &IndexBuffer{Fmt: format, Usage: usage, Data: append([]byte(nil), data...), N: count}, nil
}

func (d *Device) NewTexture2D(opts graphics.TextureOptions) (graphics.Texture, error) {
	d.record("NewTexture2D", opts.Width, opts.Height)
	if d.TextureErr != nil {
		return nil, d.TextureErr
	}
	return &Texture{Opts: opts}, nil
}

func (d *Device) SetViewport(x, y, w, h int) { d.record("SetViewport", x, y, w, h) }
func (d *Device) Clear(opts graphics.ClearOptions) {
	d.record("Clear", opts)
}
func (d *Device) SetUniform(name string, value any) { d.record("SetUniform", name, value) }
func (d *Device) SetTexture(name string, tex graphics.Texture, unit int) {
	d.record("SetTexture", name, tex, unit)
}
func (d *Device) SetVertexBuffer(slot int, vb graphics.VertexBuffer) {
	d.record("SetVertexBuffer", slot, vb)
}
func (d *Device) SetIndexBuffer(ib graphics.IndexBuffer) { d.record("SetIndexBuffer", ib) }
func (d *Device) SetProgram(p graphics.Program)          { d.record("SetProgram", p) }
func (d *Device) Draw(start, count int)                  { d.record("Draw", start, count) }
func (d *Device) EnableBlend()                           { d.record("EnableBlend") }
func (d *Device) DisableBlend()                          { d.record("DisableBlend") }
func (d *Device) SetBlendFunction(src, dst graphics.BlendFactor) {
	d.record("SetBlendFunction", src, dst)
}
func (d *Device) SetBlendEquation(eq graphics.BlendEquation) { d.record("SetBlendEquation", eq) }

// Surface is a fixed-size framebuffer.
type Surface struct {
	W, H int
}

func (s Surface) GetFramebufferSize() (int, int) { return s.W, s.H }

var _ graphics.Device = (*Device)(nil)

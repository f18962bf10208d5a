package graphics

import (
	"errors"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrCompile is returned when a shader stage fails to compile.
	ErrCompile = errors.New("shader compile failed")
	// ErrLink is returned when a program fails to link.
	ErrLink = errors.New("program link failed")
)

// Usage hints how often a buffer's contents change after creation.
type Usage int

const (
	UsageStatic Usage = iota
	UsageDynamic
	UsageStream
)

// AttrType is the component type of a vertex attribute.
type AttrType int

const (
	AttrFloat32 AttrType = iota
	AttrUint8
	AttrUint16
)

// Size returns the size in bytes of one component.
func (t AttrType) Size() int {
	switch t {
	case AttrUint8:
		return 1
	case AttrUint16:
		return 2
	default:
		return 4
	}
}

// Well known attribute names.
const (
	AttrPosition = "a_position"
	AttrUV       = "a_uv"
)

// Attribute describes one interleaved vertex attribute.
type Attribute struct {
	Name string
	Type AttrType
	Num  int
}

// VertexFormat is the ordered attribute layout of a vertex buffer.
type VertexFormat []Attribute

// Stride returns the size in bytes of a single vertex.
func (f VertexFormat) Stride() int {
	stride := 0
	for _, a := range f {
		stride += a.Type.Size() * a.Num
	}
	return stride
}

// Components returns the number of scalar components in a single vertex.
func (f VertexFormat) Components() int {
	n := 0
	for _, a := range f {
		n += a.Num
	}
	return n
}

// Offset returns the byte offset of the named attribute, or -1.
func (f VertexFormat) Offset(name string) int {
	off := 0
	for _, a := range f {
		if a.Name == name {
			return off
		}
		off += a.Type.Size() * a.Num
	}
	return -1
}

// IndexFormat is the width of one index.
type IndexFormat int

const (
	IndexUint8 IndexFormat = iota
	IndexUint16
	IndexUint32
)

// Size returns the size in bytes of one index.
func (f IndexFormat) Size() int {
	switch f {
	case IndexUint16:
		return 2
	case IndexUint32:
		return 4
	default:
		return 1
	}
}

// Wrap is a texture addressing mode.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapClamp
	WrapMirror
)

// BlendFactor is a source or destination blend weight.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

// BlendEquation combines the weighted source and destination.
type BlendEquation int

const (
	BlendFuncAdd BlendEquation = iota
	BlendFuncSubtract
	BlendFuncReverseSubtract
)

// Clear flags.
const (
	ClearColor = 1 << iota
	ClearDepth
	ClearStencil
)

// ClearOptions selects which attachments Clear resets and to what.
type ClearOptions struct {
	Color mgl32.Vec4
	Depth float32
	Flags int
}

// ProgramSource is the vertex and fragment source of a program.
type ProgramSource struct {
	Vert string
	Frag string
}

// TextureOptions describes a 2D texture upload.
type TextureOptions struct {
	Images []image.Image
	Width  int
	Height int
	WrapS  Wrap
	WrapT  Wrap
	Mipmap bool
}

// Program is a linked vertex+fragment program.
type Program interface {
	// Uniform resolves a named uniform slot.
	Uniform(name string) (int32, bool)
}

// VertexBuffer is an immutable buffer of interleaved vertices.
type VertexBuffer interface {
	Format() VertexFormat
	Count() int
}

// IndexBuffer is an immutable buffer of triangle indices.
type IndexBuffer interface {
	Format() IndexFormat
	Count() int
}

// Texture is a GPU image.
type Texture interface {
	Size() (width, height int)
}

// Device is the capability set the renderer draws through.
//
// Per-draw bindings (program, buffers, textures) are consumed by Draw and must
// be set again for the next draw. Uniforms and blend state persist until they
// are changed.
type Device interface {
	NewProgram(src ProgramSource) (Program, error)
	NewVertexBuffer(format VertexFormat, usage Usage, data []float32, count int) (VertexBuffer, error)
	NewIndexBuffer(format IndexFormat, usage Usage, data []byte, count int) (IndexBuffer, error)
	NewTexture2D(opts TextureOptions) (Texture, error)

	SetViewport(x, y, w, h int)
	Clear(opts ClearOptions)
	SetUniform(name string, value any)
	SetTexture(name string, tex Texture, unit int)
	SetVertexBuffer(slot int, vb VertexBuffer)
	SetIndexBuffer(ib IndexBuffer)
	SetProgram(p Program)
	// Draw issues an indexed draw if an index buffer is bound, otherwise a
	// non-indexed one.
	Draw(start, count int)

	EnableBlend()
	DisableBlend()
	SetBlendFunction(src, dst BlendFactor)
	SetBlendEquation(eq BlendEquation)
}

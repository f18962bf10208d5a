package gldevice

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goblend/graphics"
)

// VertexBuffer is a GL array buffer.
type VertexBuffer struct {
	id     uint32
	format graphics.VertexFormat
	count  int
}

func (b *VertexBuffer) Format() graphics.VertexFormat { return b.format }
func (b *VertexBuffer) Count() int                    { return b.count }

// IndexBuffer is a GL element array buffer.
type IndexBuffer struct {
	id     uint32
	format graphics.IndexFormat
	count  int
}

func (b *IndexBuffer) Format() graphics.IndexFormat { return b.format }
func (b *IndexBuffer) Count() int                   { return b.count }

// NewVertexBuffer uploads count vertices laid out as format.
func (d *Device) NewVertexBuffer(format graphics.VertexFormat, usage graphics.Usage, data []float32, count int) (graphics.VertexBuffer, error) {
	if len(format) == 0 {
		return nil, fmt.Errorf("vertex format is empty")
	}
	if want := count * format.Components(); len(data) < want || count <= 0 {
		return nil, fmt.Errorf("vertex data has %d floats, need %d for %d vertices", len(data), want, count)
	}

	var vbo uint32
	gl.BindVertexArray(d.vao)
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), glUsage(usage))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	return &VertexBuffer{id: vbo, format: format, count: count}, nil
}

// NewIndexBuffer uploads count indices of the given width.
func (d *Device) NewIndexBuffer(format graphics.IndexFormat, usage graphics.Usage, data []byte, count int) (graphics.IndexBuffer, error) {
	if want := count * format.Size(); len(data) < want || count <= 0 {
		return nil, fmt.Errorf("index data has %d bytes, need %d for %d indices", len(data), want, count)
	}

	var ebo uint32
	gl.BindVertexArray(d.vao)
	gl.GenBuffers(1, &ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data), gl.Ptr(data), glUsage(usage))

	return &IndexBuffer{id: ebo, format: format, count: count}, nil
}

// Package geometry builds the two static drawables of the demo: an
// over-sized background triangle and a unit sprite quad.
package geometry

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goblend/graphics"
	"github.com/richinsley/goblend/logger"
	"github.com/richinsley/goblend/shader"
)

// ErrIncomplete is returned by Validate when a drawable is missing a field.
var ErrIncomplete = errors.New("drawable is incomplete")

// Drawable groups a program with the buffers it draws.
type Drawable struct {
	Name         string
	Program      graphics.Program
	VertexBuffer graphics.VertexBuffer
	// IndexBuffer is nil for non-indexed drawables.
	IndexBuffer graphics.IndexBuffer
	indexed     bool
}

// Indexed reports whether the drawable is drawn through an index buffer.
func (d *Drawable) Indexed() bool { return d.indexed }

// DrawCount is the element count passed to Draw.
func (d *Drawable) DrawCount() int {
	if d.indexed {
		return d.IndexBuffer.Count()
	}
	return d.VertexBuffer.Count()
}

// Validate checks that every field the drawable needs is set.
func (d *Drawable) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil", ErrIncomplete)
	}
	switch {
	case d.Program == nil:
		return fmt.Errorf("%w: %s has no program", ErrIncomplete, d.Name)
	case d.VertexBuffer == nil:
		return fmt.Errorf("%w: %s has no vertex buffer", ErrIncomplete, d.Name)
	case d.indexed && d.IndexBuffer == nil:
		return fmt.Errorf("%w: %s has no index buffer", ErrIncomplete, d.Name)
	}
	return nil
}

// BackgroundVertices cover the whole viewport with a single triangle, which
// avoids the diagonal seam of a two-triangle quad.
var BackgroundVertices = []mgl32.Vec2{
	{-1, 4},
	{-1, -1},
	{4, -1},
}

// SpritePositions span [-0.5,0.5] in both axes.
var SpritePositions = []mgl32.Vec2{
	{-0.5, -0.5},
	{-0.5, 0.5},
	{0.5, 0.5},
	{0.5, -0.5},
}

// SpriteUVs are the texture coordinates of SpritePositions, corner by corner.
var SpriteUVs = []mgl32.Vec2{
	{0, 0},
	{0, 1},
	{1, 1},
	{1, 0},
}

// SpriteIndices form two triangles over the quad without repeating vertices.
var SpriteIndices = []uint8{0, 3, 1, 1, 3, 2}

// BackgroundFormat is position only.
var BackgroundFormat = graphics.VertexFormat{
	{Name: graphics.AttrPosition, Type: graphics.AttrFloat32, Num: 2},
}

// SpriteFormat is interleaved position and uv.
var SpriteFormat = graphics.VertexFormat{
	{Name: graphics.AttrPosition, Type: graphics.AttrFloat32, Num: 2},
	{Name: graphics.AttrUV, Type: graphics.AttrFloat32, Num: 2},
}

// interleave flattens parallel attribute streams into one vertex array.
func interleave(streams ...[]mgl32.Vec2) []float32 {
	if len(streams) == 0 {
		return nil
	}
	n := len(streams[0])
	out := make([]float32, 0, n*2*len(streams))
	for i := 0; i < n; i++ {
		for _, s := range streams {
			out = append(out, s[i].X(), s[i].Y())
		}
	}
	return out
}

// BackgroundData returns the background vertex array.
func BackgroundData() []float32 {
	return interleave(BackgroundVertices)
}

// SpriteData returns the sprite vertex array.
func SpriteData() []float32 {
	return interleave(SpritePositions, SpriteUVs)
}

// BuildBackground links the background program and uploads its triangle.
func BuildBackground(dev graphics.Device) (*Drawable, error) {
	program, err := dev.NewProgram(shader.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to create background program: %w", err)
	}

	vb, err := dev.NewVertexBuffer(BackgroundFormat, graphics.UsageStatic, BackgroundData(), len(BackgroundVertices))
	if err != nil {
		return nil, fmt.Errorf("failed to create background vertex buffer: %w", err)
	}

	d := &Drawable{Name: "background", Program: program, VertexBuffer: vb}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	logger.Logger().Debug("geometry built", "name", d.Name, "vertices", vb.Count())
	return d, nil
}

// BuildSprite links the sprite program and uploads its quad and indices.
func BuildSprite(dev graphics.Device) (*Drawable, error) {
	program, err := dev.NewProgram(shader.Sprite())
	if err != nil {
		return nil, fmt.Errorf("failed to create sprite program: %w", err)
	}

	vb, err := dev.NewVertexBuffer(SpriteFormat, graphics.UsageStatic, SpriteData(), len(SpritePositions))
	if err != nil {
		return nil, fmt.Errorf("failed to create sprite vertex buffer: %w", err)
	}

	ib, err := dev.NewIndexBuffer(graphics.IndexUint8, graphics.UsageStatic, SpriteIndices, len(SpriteIndices))
	if err != nil {
		return nil, fmt.Errorf("failed to create sprite index buffer: %w", err)
	}

	d := &Drawable{Name: "sprite", Program: program, VertexBuffer: vb, IndexBuffer: ib, indexed: true}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	logger.Logger().Debug("geometry built", "name", d.Name, "vertices", vb.Count(), "indices", ib.Count())
	return d, nil
}

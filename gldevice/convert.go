package gldevice

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goblend/graphics"
)

func glWrap(w graphics.Wrap) int32 {
	switch w {
	case graphics.WrapClamp:
		return gl.CLAMP_TO_EDGE
	case graphics.WrapMirror:
		return gl.MIRRORED_REPEAT
	default:
		return gl.REPEAT
	}
}

func glFilter(mipmap bool) (minFilter, magFilter int32) {
	if mipmap {
		return gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR
	}
	return gl.LINEAR, gl.LINEAR
}

func glUsage(u graphics.Usage) uint32 {
	switch u {
	case graphics.UsageDynamic:
		return gl.DYNAMIC_DRAW
	case graphics.UsageStream:
		return gl.STREAM_DRAW
	default:
		return gl.STATIC_DRAW
	}
}

func glAttrType(t graphics.AttrType) uint32 {
	switch t {
	case graphics.AttrUint8:
		return gl.UNSIGNED_BYTE
	case graphics.AttrUint16:
		return gl.UNSIGNED_SHORT
	default:
		return gl.FLOAT
	}
}

func glIndexType(f graphics.IndexFormat) uint32 {
	switch f {
	case graphics.IndexUint16:
		return gl.UNSIGNED_SHORT
	case graphics.IndexUint32:
		return gl.UNSIGNED_INT
	default:
		return gl.UNSIGNED_BYTE
	}
}

func glBlendFactor(f graphics.BlendFactor) uint32 {
	switch f {
	case graphics.BlendZero:
		return gl.ZERO
	case graphics.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case graphics.BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case graphics.BlendDstAlpha:
		return gl.DST_ALPHA
	case graphics.BlendOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	default:
		return gl.ONE
	}
}

func glBlendEquation(eq graphics.BlendEquation) uint32 {
	switch eq {
	case graphics.BlendFuncSubtract:
		return gl.FUNC_SUBTRACT
	case graphics.BlendFuncReverseSubtract:
		return gl.FUNC_REVERSE_SUBTRACT
	default:
		return gl.FUNC_ADD
	}
}

func glClearBits(flags int) uint32 {
	var bits uint32
	if flags&graphics.ClearColor != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if flags&graphics.ClearDepth != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	if flags&graphics.ClearStencil != 0 {
		bits |= gl.STENCIL_BUFFER_BIT
	}
	return bits
}

// applyUniform uploads a Go value to the uniform at loc.
func applyUniform(loc int32, value any) error {
	switch v := value.(type) {
	case float32:
		gl.Uniform1f(loc, v)
	case float64:
		gl.Uniform1f(loc, float32(v))
	case int:
		gl.Uniform1i(loc, int32(v))
	case int32:
		gl.Uniform1i(loc, v)
	case mgl32.Vec2:
		gl.Uniform2f(loc, v[0], v[1])
	case mgl32.Vec3:
		gl.Uniform3f(loc, v[0], v[1], v[2])
	case mgl32.Vec4:
		gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	case [4]float32:
		gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	case mgl32.Mat4:
		gl.UniformMatrix4fv(loc, 1, false, &v[0])
	default:
		return fmt.Errorf("unsupported uniform type %T", value)
	}
	return nil
}

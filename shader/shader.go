package shader

import "github.com/richinsley/goblend/graphics"

// Sources are GLSL ES 1.00 (WebGL) and are translated to the desktop
// dialect by the device at link time. The sampler keeps the name "texture",
// which only GLSL ES 1.00 allows since the builtin there is texture2D.

// ─────────────────────────────── Background ────────────────────────────────

const backgroundVertexSource = `precision mediump float;
attribute vec2 a_position;
varying vec2 uv;

void main() {
    uv = (a_position + 1.0) * 0.5;
    gl_Position = vec4(a_position, 0.0, 1.0);
}
`

// The checkerboard is tiled 8x across the screen and scrolls diagonally
// with time.
const backgroundFragmentSource = `precision mediump float;
varying vec2 uv;
uniform sampler2D texture;
uniform float time;

void main() {
    vec2 offset = vec2(time * -0.1);
    gl_FragColor = texture2D(texture, 8.0 * (uv + offset));
}
`

// ───────────────────────────────── Sprite ──────────────────────────────────

const spriteVertexSource = `precision mediump float;
attribute vec2 a_position;
attribute vec2 a_uv;
varying vec2 uv;

void main() {
    uv = a_uv;
    gl_Position = vec4(a_position, 0.0, 1.0);
}
`

const spriteFragmentSource = `precision mediump float;
varying vec2 uv;
uniform sampler2D texture;

void main() {
    gl_FragColor = texture2D(texture, uv);
}
`

// ──────────────────────────────── Public API ───────────────────────────────

// Background returns the full-screen triangle program source.
func Background() graphics.ProgramSource {
	return graphics.ProgramSource{Vert: backgroundVertexSource, Frag: backgroundFragmentSource}
}

// Sprite returns the textured quad program source.
func Sprite() graphics.ProgramSource {
	return graphics.ProgramSource{Vert: spriteVertexSource, Frag: spriteFragmentSource}
}

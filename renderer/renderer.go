// Package renderer draws the scrolling background and, once its texture has
// loaded, the alpha-blended sprite on top.
package renderer

import (
	"fmt"
	"image"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goblend/assets"
	"github.com/richinsley/goblend/geometry"
	"github.com/richinsley/goblend/graphics"
	"github.com/richinsley/goblend/logger"
)

// Uniform names shared by both programs.
const (
	UniformTime    = "time"
	UniformTexture = "texture"
)

// ClearColor is the colour behind the background.
var ClearColor = mgl32.Vec4{0.1, 0.1, 0.1, 1}

type spriteSlot struct {
	tex graphics.Texture
}

// Renderer owns the per-frame state: the accumulated time and the sprite
// texture slot. Tick must be called from the thread that owns the device.
type Renderer struct {
	device            graphics.Device
	surface           graphics.Surface
	background        *geometry.Drawable
	sprite            *geometry.Drawable
	backgroundTexture graphics.Texture

	t float64

	// spriteTexture goes from nil to set exactly once.
	spriteTexture atomic.Pointer[spriteSlot]

	pending   *assets.Pending
	spriteKey string
}

// New returns a renderer drawing bg and sprite through dev into surface.
func New(dev graphics.Device, surface graphics.Surface, bg, sprite *geometry.Drawable, bgTexture graphics.Texture) (*Renderer, error) {
	if dev == nil || surface == nil {
		return nil, fmt.Errorf("renderer needs a device and a surface")
	}
	if err := bg.Validate(); err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	if err := sprite.Validate(); err != nil {
		return nil, fmt.Errorf("sprite: %w", err)
	}
	if bgTexture == nil {
		return nil, fmt.Errorf("background texture is nil")
	}
	return &Renderer{
		device:            dev,
		surface:           surface,
		background:        bg,
		sprite:            sprite,
		backgroundTexture: bgTexture,
	}, nil
}

// Time returns the accumulated elapsed time.
func (r *Renderer) Time() float64 {
	return r.t
}

// SetSpriteTexture publishes the sprite texture. Only the first non-nil
// texture is accepted; it reports whether tex was published.
func (r *Renderer) SetSpriteTexture(tex graphics.Texture) bool {
	if tex == nil {
		return false
	}
	return r.spriteTexture.CompareAndSwap(nil, &spriteSlot{tex: tex})
}

// SpriteTexture returns the published sprite texture, or nil.
func (r *Renderer) SpriteTexture() graphics.Texture {
	if s := r.spriteTexture.Load(); s != nil {
		return s.tex
	}
	return nil
}

// SpriteReady reports whether the sprite is drawn.
func (r *Renderer) SpriteReady() bool {
	return r.spriteTexture.Load() != nil
}

// Tick advances time by dt and draws one frame.
func (r *Renderer) Tick(dt float64) {
	r.t += dt
	r.pollSprite()

	dev := r.device
	w, h := r.surface.GetFramebufferSize()
	dev.SetViewport(0, 0, w, h)
	dev.Clear(graphics.ClearOptions{
		Color: ClearColor,
		Depth: 1,
		Flags: graphics.ClearColor | graphics.ClearDepth,
	})
	dev.SetUniform(UniformTime, float32(r.t))

	r.drawBackground()
	if tex := r.SpriteTexture(); tex != nil {
		r.drawSprite(tex)
	}
}

// drawBackground is the opaque under layer. Blending is switched off
// explicitly so the previous frame's sprite pass cannot leak into it.
func (r *Renderer) drawBackground() {
	dev := r.device
	bg := r.background
	dev.DisableBlend()
	dev.SetTexture(UniformTexture, r.backgroundTexture, 0)
	dev.SetVertexBuffer(0, bg.VertexBuffer)
	dev.SetProgram(bg.Program)
	dev.Draw(0, bg.DrawCount())
}

func (r *Renderer) drawSprite(tex graphics.Texture) {
	dev := r.device
	sp := r.sprite
	dev.EnableBlend()
	dev.SetBlendFunction(graphics.BlendSrcAlpha, graphics.BlendOneMinusSrcAlpha)
	dev.SetBlendEquation(graphics.BlendFuncAdd)

	dev.SetTexture(UniformTexture, tex, 0)
	dev.SetVertexBuffer(0, sp.VertexBuffer)
	dev.SetIndexBuffer(sp.IndexBuffer)
	dev.SetProgram(sp.Program)
	dev.Draw(0, sp.DrawCount())
}

// AttachSprite makes the renderer pick the sprite up from p once it
// resolves. The GPU texture is created inside Tick, on the render thread.
func (r *Renderer) AttachSprite(p *assets.Pending, key string) {
	r.pending = p
	r.spriteKey = key
}

// pollSprite checks the pending load without blocking. A failed load is
// logged once and the sprite stays hidden.
func (r *Renderer) pollSprite() {
	p := r.pending
	if p == nil || !p.Ready() {
		return
	}
	r.pending = nil

	loaded, err := p.Result()
	if err != nil {
		logger.Logger().Warn("sprite load failed, drawing background only", "err", err)
		return
	}
	img := loaded[r.spriteKey]
	if img == nil {
		logger.Logger().Warn("sprite missing from loaded assets", "key", r.spriteKey)
		return
	}
	tex, err := NewSpriteTexture(r.device, img)
	if err != nil {
		logger.Logger().Warn("failed to create sprite texture", "key", r.spriteKey, "err", err)
		return
	}
	if r.SetSpriteTexture(tex) {
		logger.Logger().Info("sprite ready", "key", r.spriteKey, "width", img.Width, "height", img.Height)
	}
}

// NewSpriteTexture uploads a decoded image at the size the loader reported.
func NewSpriteTexture(dev graphics.Device, img *assets.Image) (graphics.Texture, error) {
	return dev.NewTexture2D(graphics.TextureOptions{
		Images: []image.Image{img.Source},
		Width:  img.Width,
		Height: img.Height,
	})
}

package renderer

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goblend/assets"
	"github.com/richinsley/goblend/geometry"
	"github.com/richinsley/goblend/graphics"
	"github.com/richinsley/goblend/graphics/graphicstest"
	"github.com/richinsley/goblend/procedural"
)

type fixture struct {
	dev    *graphicstest.Device
	r      *Renderer
	bg     *geometry.Drawable
	sprite *geometry.Drawable
	bgTex  graphics.Texture
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev := graphicstest.New()
	bg, err := geometry.BuildBackground(dev)
	if err != nil {
		t.Fatalf("BuildBackground: %v", err)
	}
	sprite, err := geometry.BuildSprite(dev)
	if err != nil {
		t.Fatalf("BuildSprite: %v", err)
	}
	bgTex, err := procedural.BuildBackgroundTexture(dev)
	if err != nil {
		t.Fatalf("BuildBackgroundTexture: %v", err)
	}
	r, err := New(dev, graphicstest.Surface{W: 640, H: 480}, bg, sprite, bgTex)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dev.Reset()
	return &fixture{dev: dev, r: r, bg: bg, sprite: sprite, bgTex: bgTex}
}

func spriteTexture() graphics.Texture {
	return &graphicstest.Texture{Opts: graphics.TextureOptions{Width: 64, Height: 64}}
}

func indexOf(ops []string, op string, from int) int {
	for i := from; i < len(ops); i++ {
		if ops[i] == op {
			return i
		}
	}
	return -1
}

func TestTickBeforeSpriteLoads(t *testing.T) {
	f := newFixture(t)
	f.r.Tick(0.016)

	if f.r.Time() != 0.016 {
		t.Errorf("Time() = %v, want 0.016", f.r.Time())
	}
	c, ok := f.dev.Last("SetUniform")
	if !ok {
		t.Fatal("time uniform was not set")
	}
	if c.Args[0] != UniformTime || c.Args[1] != float32(f.r.Time()) {
		t.Errorf("SetUniform args = %v, want [time 0.016]", c.Args)
	}
	if n := f.dev.Count("Draw"); n != 1 {
		t.Fatalf("Draw called %d times, want 1", n)
	}
	draw, _ := f.dev.Last("Draw")
	if draw.Args[0] != 0 || draw.Args[1] != 3 {
		t.Errorf("Draw args = %v, want [0 3]", draw.Args)
	}
	if f.dev.Count("EnableBlend") != 0 {
		t.Error("blending enabled without a sprite")
	}
	if f.dev.Count("SetIndexBuffer") != 0 {
		t.Error("index buffer bound without a sprite")
	}
}

func TestTickFrameSetup(t *testing.T) {
	f := newFixture(t)
	f.r.Tick(0.5)

	vp, ok := f.dev.Last("SetViewport")
	if !ok {
		t.Fatal("viewport not set")
	}
	if vp.Args[0] != 0 || vp.Args[1] != 0 || vp.Args[2] != 640 || vp.Args[3] != 480 {
		t.Errorf("SetViewport args = %v, want [0 0 640 480]", vp.Args)
	}

	clr, ok := f.dev.Last("Clear")
	if !ok {
		t.Fatal("frame not cleared")
	}
	opts := clr.Args[0].(graphics.ClearOptions)
	if opts.Color != (mgl32.Vec4{0.1, 0.1, 0.1, 1}) {
		t.Errorf("clear color = %v", opts.Color)
	}
	if opts.Depth != 1 {
		t.Errorf("clear depth = %v, want 1", opts.Depth)
	}
	if opts.Flags != graphics.ClearColor|graphics.ClearDepth {
		t.Errorf("clear flags = %b", opts.Flags)
	}

	tex, _ := f.dev.Last("SetTexture")
	if tex.Args[0] != UniformTexture || tex.Args[1] != f.bgTex || tex.Args[2] != 0 {
		t.Errorf("SetTexture args = %v", tex.Args)
	}
	vb, _ := f.dev.Last("SetVertexBuffer")
	if vb.Args[1] != f.bg.VertexBuffer {
		t.Error("background vertex buffer not bound")
	}
	prog, _ := f.dev.Last("SetProgram")
	if prog.Args[0] != f.bg.Program {
		t.Error("background program not bound")
	}
}

func TestTickWithSprite(t *testing.T) {
	f := newFixture(t)
	tex := spriteTexture()
	if !f.r.SetSpriteTexture(tex) {
		t.Fatal("SetSpriteTexture rejected the first texture")
	}
	f.r.Tick(0.016)

	ops := f.dev.Ops()
	bgDraw := indexOf(ops, "Draw", 0)
	spriteDraw := indexOf(ops, "Draw", bgDraw+1)
	if bgDraw < 0 || spriteDraw < 0 {
		t.Fatalf("expected two draws, got ops %v", ops)
	}

	disable := indexOf(ops, "DisableBlend", 0)
	if disable < 0 || disable > bgDraw {
		t.Errorf("blending not disabled before the background draw: %v", ops)
	}
	if enable := indexOf(ops, "EnableBlend", 0); enable < bgDraw {
		t.Errorf("blending enabled before the background draw: %v", ops)
	}

	enable := indexOf(ops, "EnableBlend", bgDraw)
	fn := indexOf(ops, "SetBlendFunction", bgDraw)
	eq := indexOf(ops, "SetBlendEquation", bgDraw)
	if !(enable < fn && fn < eq && eq < spriteDraw) {
		t.Errorf("blend setup out of order: %v", ops)
	}

	calls := f.dev.Calls()
	if calls[fn].Args[0] != graphics.BlendSrcAlpha || calls[fn].Args[1] != graphics.BlendOneMinusSrcAlpha {
		t.Errorf("SetBlendFunction args = %v", calls[fn].Args)
	}
	if calls[eq].Args[0] != graphics.BlendFuncAdd {
		t.Errorf("SetBlendEquation args = %v", calls[eq].Args)
	}
	if calls[spriteDraw].Args[0] != 0 || calls[spriteDraw].Args[1] != 6 {
		t.Errorf("sprite Draw args = %v, want [0 6]", calls[spriteDraw].Args)
	}

	texCall, _ := f.dev.Last("SetTexture")
	if texCall.Args[1] != tex {
		t.Error("sprite texture not bound for the sprite draw")
	}
	ib, _ := f.dev.Last("SetIndexBuffer")
	if ib.Args[0] != f.sprite.IndexBuffer {
		t.Error("sprite index buffer not bound")
	}
	prog, _ := f.dev.Last("SetProgram")
	if prog.Args[0] != f.sprite.Program {
		t.Error("sprite program not bound last")
	}
}

func TestSpriteAppearsAfterLoad(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.r.Tick(0.01)
	}
	if n := f.dev.Count("Draw"); n != 5 {
		t.Fatalf("Draw called %d times before load, want 5", n)
	}

	f.r.SetSpriteTexture(spriteTexture())
	f.dev.Reset()
	f.r.Tick(0.01)

	if n := f.dev.Count("Draw"); n != 2 {
		t.Errorf("Draw called %d times after load, want 2", n)
	}
	if math.Abs(f.r.Time()-0.06) > 1e-12 {
		t.Errorf("Time() = %v, want 0.06", f.r.Time())
	}
	c, _ := f.dev.Last("SetUniform")
	if c.Args[1] != float32(f.r.Time()) {
		t.Errorf("time uniform = %v, want %v", c.Args[1], float32(f.r.Time()))
	}
}

func TestTimeAccumulates(t *testing.T) {
	f := newFixture(t)
	deltas := []float64{0.25, 0.5, 0, 1.25}
	want := 0.0
	for _, dt := range deltas {
		f.r.Tick(dt)
		want += dt
		if f.r.Time() != want {
			t.Fatalf("Time() = %v, want %v", f.r.Time(), want)
		}
	}
	if n := f.dev.Count("Draw"); n != len(deltas) {
		t.Errorf("background drawn %d times, want %d", n, len(deltas))
	}
}

func TestHundredTicksReachOneSecond(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 100; i++ {
		f.r.Tick(0.01)
	}
	if math.Abs(f.r.Time()-1.0) > 1e-9 {
		t.Errorf("Time() = %v, want 1.0", f.r.Time())
	}
	c, _ := f.dev.Last("SetUniform")
	if c.Args[0] != UniformTime || c.Args[1] != float32(f.r.Time()) {
		t.Errorf("last time uniform = %v, want %v", c.Args, float32(f.r.Time()))
	}
	if n := f.dev.Count("Draw"); n != 100 {
		t.Errorf("background drawn %d times, want 100", n)
	}
}

func TestBlendStateDoesNotLeakIntoNextFrame(t *testing.T) {
	f := newFixture(t)
	f.r.SetSpriteTexture(spriteTexture())
	for frame := 0; frame < 3; frame++ {
		f.r.Tick(0.016)
	}

	// Per frame: background Draw then sprite Draw. Every background draw
	// must be preceded by a DisableBlend issued after the previous frame's
	// EnableBlend.
	ops := f.dev.Ops()
	blending := false
	draws := 0
	for i, op := range ops {
		switch op {
		case "EnableBlend":
			blending = true
		case "DisableBlend":
			blending = false
		case "Draw":
			background := draws%2 == 0
			if background && blending {
				t.Fatalf("background draw %d at op %d ran with blending on: %v", draws/2, i, ops)
			}
			if !background && !blending {
				t.Fatalf("sprite draw %d at op %d ran with blending off: %v", draws/2, i, ops)
			}
			draws++
		}
	}
	if draws != 6 {
		t.Errorf("Draw called %d times over 3 frames, want 6", draws)
	}
}

func TestSetSpriteTextureIsOneWay(t *testing.T) {
	f := newFixture(t)
	if f.r.SpriteReady() {
		t.Fatal("sprite ready before any texture")
	}
	if f.r.SetSpriteTexture(nil) {
		t.Error("nil texture accepted")
	}
	first := spriteTexture()
	if !f.r.SetSpriteTexture(first) {
		t.Fatal("first texture rejected")
	}
	if f.r.SetSpriteTexture(spriteTexture()) {
		t.Error("second texture accepted")
	}
	if f.r.SpriteTexture() != first {
		t.Error("sprite texture replaced")
	}
	for i := 0; i < 3; i++ {
		f.r.Tick(0.1)
		if !f.r.SpriteReady() {
			t.Fatal("sprite became unready")
		}
	}
}

func TestAttachSprite(t *testing.T) {
	f := newFixture(t)
	img := image.NewRGBA(image.Rect(0, 0, 32, 16))
	loaded := assets.Assets{assets.SpriteKey: {Width: 32, Height: 16, Source: img}}
	f.r.AttachSprite(assets.Resolved(loaded, nil), assets.SpriteKey)

	f.r.Tick(0.016)
	if !f.r.SpriteReady() {
		t.Fatal("sprite not ready after resolved load")
	}
	c, ok := f.dev.Last("NewTexture2D")
	if !ok {
		t.Fatal("sprite texture not created")
	}
	if c.Args[0] != 32 || c.Args[1] != 16 {
		t.Errorf("NewTexture2D size = %v, want [32 16]", c.Args)
	}
	if n := f.dev.Count("Draw"); n != 2 {
		t.Errorf("Draw called %d times, want 2", n)
	}

	tex := f.r.SpriteTexture().(*graphicstest.Texture)
	if tex.Opts.Images[0] != image.Image(img) {
		t.Error("texture not built from the decoded image")
	}
}

func TestAttachSpriteInvalidManifest(t *testing.T) {
	f := newFixture(t)
	l := assets.NewLoader(t.TempDir())
	p := l.Load(context.Background(), assets.Manifest{assets.SpriteKey: {Type: "video", Src: "x"}})
	f.r.AttachSprite(p, assets.SpriteKey)
	f.r.Tick(0.016)
	if f.r.SpriteReady() {
		t.Error("sprite ready after a failed load")
	}
}

func TestAttachSpriteFailures(t *testing.T) {
	img := &assets.Image{Width: 8, Height: 8, Source: image.NewRGBA(image.Rect(0, 0, 8, 8))}
	tests := []struct {
		name       string
		pending    *assets.Pending
		textureErr error
	}{
		{"load error", assets.Resolved(nil, assets.ErrNotFound), nil},
		{"missing key", assets.Resolved(assets.Assets{"other": img}, nil), nil},
		{"texture error", assets.Resolved(assets.Assets{assets.SpriteKey: img}, nil), errors.New("out of memory")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.dev.TextureErr = tt.textureErr
			f.r.AttachSprite(tt.pending, assets.SpriteKey)
			for i := 0; i < 3; i++ {
				f.r.Tick(0.016)
			}
			if f.r.SpriteReady() {
				t.Fatal("sprite ready after failure")
			}
			if n := f.dev.Count("Draw"); n != 3 {
				t.Errorf("Draw called %d times, want 3", n)
			}
			if n := f.dev.Count("NewTexture2D"); n > 1 {
				t.Errorf("texture creation retried %d times", n)
			}
		})
	}
}

func TestNewRejectsIncompleteDrawables(t *testing.T) {
	dev := graphicstest.New()
	bg, _ := geometry.BuildBackground(dev)
	sprite, _ := geometry.BuildSprite(dev)
	tex, _ := procedural.BuildBackgroundTexture(dev)
	surface := graphicstest.Surface{W: 1, H: 1}

	if _, err := New(dev, surface, &geometry.Drawable{Name: "bg"}, sprite, tex); !errors.Is(err, geometry.ErrIncomplete) {
		t.Errorf("incomplete background: err = %v", err)
	}
	if _, err := New(dev, surface, bg, nil, tex); !errors.Is(err, geometry.ErrIncomplete) {
		t.Errorf("nil sprite: err = %v", err)
	}
	if _, err := New(dev, surface, bg, sprite, nil); err == nil {
		t.Error("nil background texture accepted")
	}
	if _, err := New(nil, surface, bg, sprite, tex); err == nil {
		t.Error("nil device accepted")
	}
}

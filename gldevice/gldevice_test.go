package gldevice

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goblend/graphics"
)

func TestFlipRows(t *testing.T) {
	pix := []byte{
		1, 1,
		2, 2,
		3, 3,
	}
	got := flipRows(pix, 2, 3)
	want := []byte{3, 3, 2, 2, 1, 1}
	if !bytes.Equal(got, want) {
		t.Errorf("flipRows() = %v, want %v", got, want)
	}
}

func TestRGBAPixelsPassThrough(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(1, 1, color.RGBA{R: 9, A: 255})
	if got := rgbaPixels(img); &got[0] != &img.Pix[0] {
		t.Error("origin-anchored RGBA should be uploaded without a copy")
	}
}

func TestRGBAPixelsConvert(t *testing.T) {
	img := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	img.SetNRGBA(5, 5, color.NRGBA{R: 255, A: 255})
	got := rgbaPixels(img)
	if len(got) != 2*1*4 {
		t.Fatalf("len = %d, want 8", len(got))
	}
	if got[0] != 255 || got[3] != 255 {
		t.Errorf("first pixel = %v, want opaque red", got[:4])
	}
}

func TestRGBAPixelsKeepsStraightAlpha(t *testing.T) {
	translucent := color.NRGBA{R: 200, G: 80, B: 40, A: 128}

	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, translucent)
	got := rgbaPixels(img)
	if &got[0] != &img.Pix[0] {
		t.Error("origin-anchored NRGBA should be uploaded without a copy")
	}
	if !bytes.Equal(got, []byte{200, 80, 40, 128}) {
		t.Errorf("NRGBA pixel uploaded as %v, want [200 80 40 128]", got)
	}

	// A sub-image forces the redraw path.
	wide := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	wide.SetNRGBA(1, 0, translucent)
	got = rgbaPixels(wide.SubImage(image.Rect(1, 0, 2, 1)))
	if !bytes.Equal(got, []byte{200, 80, 40, 128}) {
		t.Errorf("redrawn pixel uploaded as %v, want [200 80 40 128]", got)
	}

	pal := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{translucent})
	got = rgbaPixels(pal)
	if !bytes.Equal(got, []byte{200, 80, 40, 128}) {
		t.Errorf("paletted pixel uploaded as %v, want [200 80 40 128]", got)
	}
}

func TestEnumMapping(t *testing.T) {
	if glWrap(graphics.WrapRepeat) != gl.REPEAT || glWrap(graphics.WrapClamp) != gl.CLAMP_TO_EDGE {
		t.Error("wrap mapping wrong")
	}
	if minFilter, _ := glFilter(true); minFilter != gl.LINEAR_MIPMAP_LINEAR {
		t.Error("mipmap filter should be LINEAR_MIPMAP_LINEAR")
	}
	if glBlendFactor(graphics.BlendSrcAlpha) != gl.SRC_ALPHA || glBlendFactor(graphics.BlendOneMinusSrcAlpha) != gl.ONE_MINUS_SRC_ALPHA {
		t.Error("blend factor mapping wrong")
	}
	if glBlendEquation(graphics.BlendFuncAdd) != gl.FUNC_ADD {
		t.Error("blend equation mapping wrong")
	}
	if glIndexType(graphics.IndexUint8) != gl.UNSIGNED_BYTE {
		t.Error("index type mapping wrong")
	}
	if bits := glClearBits(graphics.ClearColor | graphics.ClearDepth); bits != gl.COLOR_BUFFER_BIT|gl.DEPTH_BUFFER_BIT {
		t.Errorf("clear bits = %x", bits)
	}
}

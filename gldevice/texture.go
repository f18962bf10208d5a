package gldevice

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goblend/graphics"
	"github.com/richinsley/goblend/logger"
)

// Texture is a GL 2D texture.
type Texture struct {
	id     uint32
	width  int
	height int
}

func (t *Texture) Size() (int, int) { return t.width, t.height }

// rgbaPixels returns the tightly packed, straight-alpha RGBA bytes of img.
// Origin-anchored *image.NRGBA and *image.RGBA are used as is; the RGBA case
// only carries the opaque background pattern, where premultiplied and
// straight bytes agree. Anything else is redrawn into an NRGBA.
func rgbaPixels(img image.Image) []byte {
	switch src := img.(type) {
	case *image.NRGBA:
		if src.Rect.Min == (image.Point{}) && src.Stride == src.Rect.Dx()*4 {
			return src.Pix
		}
	case *image.RGBA:
		if src.Rect.Min == (image.Point{}) && src.Stride == src.Rect.Dx()*4 {
			return src.Pix
		}
	}
	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	return nrgba.Pix
}

// NewTexture2D uploads the first image of opts at the size opts reports.
func (d *Device) NewTexture2D(opts graphics.TextureOptions) (graphics.Texture, error) {
	if len(opts.Images) == 0 || opts.Images[0] == nil {
		return nil, fmt.Errorf("texture has no source image")
	}
	img := opts.Images[0]
	if b := img.Bounds(); b.Dx() != opts.Width || b.Dy() != opts.Height {
		return nil, fmt.Errorf("texture is %dx%d but image is %dx%d", opts.Width, opts.Height, b.Dx(), b.Dy())
	}

	var textureID uint32
	gl.GenTextures(1, &textureID)
	gl.BindTexture(gl.TEXTURE_2D, textureID)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(opts.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(opts.WrapT))
	minFilter, magFilter := glFilter(opts.Mipmap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA8,
		int32(opts.Width),
		int32(opts.Height),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(rgbaPixels(img)),
	)

	if opts.Mipmap {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	logger.Logger().Info("texture created", "id", textureID, "width", opts.Width, "height", opts.Height, "mipmap", opts.Mipmap)
	return &Texture{id: textureID, width: opts.Width, height: opts.Height}, nil
}

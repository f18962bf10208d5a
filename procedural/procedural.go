// Package procedural synthesizes the tiling background texture.
package procedural

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/richinsley/goblend/graphics"
	"github.com/richinsley/goblend/logger"
)

// Size is the edge length of the background pattern in pixels.
const Size = 128

type fill struct {
	rect image.Rectangle
	c    color.RGBA
}

func gray(v uint8) color.RGBA { return color.RGBA{R: v, G: v, B: v, A: 0xff} }

// Fills are painted in order; later fills cover earlier ones.
var fills = []fill{
	{image.Rect(0, 0, 128, 128), gray(0xdd)},
	{image.Rect(0, 0, 64, 64), gray(0x55)},
	{image.Rect(32, 32, 64, 64), gray(0x99)},
	{image.Rect(64, 64, 128, 128), gray(0x55)},
	{image.Rect(96, 96, 128, 128), gray(0x77)},
}

// BackgroundPattern paints the layered checkerboard. The result depends on
// nothing but the fill table.
func BackgroundPattern() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	for _, f := range fills {
		draw.Draw(img, f.rect, &image.Uniform{C: f.c}, image.Point{}, draw.Src)
	}
	return img
}

// BuildBackgroundTexture uploads the pattern as a repeating, mipmapped texture.
func BuildBackgroundTexture(dev graphics.Device) (graphics.Texture, error) {
	tex, err := dev.NewTexture2D(graphics.TextureOptions{
		Images: []image.Image{BackgroundPattern()},
		Width:  Size,
		Height: Size,
		WrapS:  graphics.WrapRepeat,
		WrapT:  graphics.WrapRepeat,
		Mipmap: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create background texture: %w", err)
	}
	logger.Logger().Debug("background texture created", "size", Size)
	return tex, nil
}

package domain

import (
	"image"
	"image/color"
)

// RasterImage is an immutable ARGB pixel grid. Pixels are row-major and
// packed as 0xAARRGGBB.
type RasterImage struct {
	Width  int
	Height int
	Pixels []uint32
}

// NewRasterImage allocates a transparent image.
func NewRasterImage(width, height int) *RasterImage {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &RasterImage{Width: width, Height: height, Pixels: make([]uint32, width*height)}
}

// FromImage converts a decoded image into packed ARGB form.
func FromImage(src image.Image) *RasterImage {
	b := src.Bounds()
	out := NewRasterImage(b.Dx(), b.Dy())
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			out.Pixels[y*out.Width+x] = uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
		}
	}
	return out
}

// Empty reports whether either dimension is zero.
func (img *RasterImage) Empty() bool {
	return img == nil || img.Width <= 0 || img.Height <= 0
}

// At returns the pixel at (x, y); out-of-range coordinates return 0.
func (img *RasterImage) At(x, y int) uint32 {
	if img.Empty() || x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return 0
	}
	return img.Pixels[y*img.Width+x]
}

// Set writes a pixel. Only used while an image is being built.
func (img *RasterImage) Set(x, y int, argb uint32) {
	if img.Empty() || x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return
	}
	img.Pixels[y*img.Width+x] = argb
}

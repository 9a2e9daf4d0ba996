package shmimage

import (
	"image"
	"image/color"
	"image/draw"

	"deedles.dev/layerbuf/internal/bin"
)

// XRGB8888 is an in-memory image whose At method returns XRGB8888Color
// values.
type XRGB8888 struct {
	// Pix holds the image's pixels as host-order 32-bit words. The
	// pixel at (x, y) starts at Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*4].
	Pix []uint8
	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

func (p *XRGB8888) Bounds() image.Rectangle { return p.Rect }

func (p *XRGB8888) ColorModel() color.Model { return XRGB8888Model }

func (p *XRGB8888) At(x, y int) color.Color {
	return p.XRGB8888At(x, y)
}

func (p *XRGB8888) XRGB8888At(x, y int) XRGB8888Color {
	if !(image.Point{x, y}.In(p.Rect)) {
		return XRGB8888Color(0)
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+4 : i+4] // Small cap improves performance, see https://golang.org/issue/27857
	return bin.Value[XRGB8888Color](*(*[4]byte)(s))
}

// PixOffset returns the index of the first element of Pix that corresponds to
// the pixel at (x, y).
func (p *XRGB8888) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*4
}

func (p *XRGB8888) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	ca := bin.Bytes(XRGB8888Model.Convert(c).(XRGB8888Color))
	copy(p.Pix[i:i+4:i+4], ca[:])
}

// SubImage returns an image representing the portion of the image p visible
// through r. The returned value shares pixels with the original image.
func (p *XRGB8888) SubImage(r image.Rectangle) draw.Image {
	r = r.Intersect(p.Rect)
	if r.Empty() {
		return &XRGB8888{}
	}
	i := p.PixOffset(r.Min.X, r.Min.Y)
	return &XRGB8888{
		Pix:    p.Pix[i:],
		Stride: p.Stride,
		Rect:   r,
	}
}

// RGB565 is an in-memory image of 16-bit host-order RGB565 pixels.
type RGB565 struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

func (p *RGB565) Bounds() image.Rectangle { return p.Rect }

func (p *RGB565) ColorModel() color.Model { return RGB565Model }

func (p *RGB565) At(x, y int) color.Color {
	return p.RGB565At(x, y)
}

func (p *RGB565) RGB565At(x, y int) RGB565Color {
	if !(image.Point{x, y}.In(p.Rect)) {
		return RGB565Color(0)
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+2 : i+2]
	return bin.Value16[RGB565Color](*(*[2]byte)(s))
}

func (p *RGB565) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}

func (p *RGB565) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	ca := bin.Bytes16(RGB565Model.Convert(c).(RGB565Color))
	copy(p.Pix[i:i+2:i+2], ca[:])
}

func (p *RGB565) SubImage(r image.Rectangle) draw.Image {
	r = r.Intersect(p.Rect)
	if r.Empty() {
		return &RGB565{}
	}
	i := p.PixOffset(r.Min.X, r.Min.Y)
	return &RGB565{
		Pix:    p.Pix[i:],
		Stride: p.Stride,
		Rect:   r,
	}
}

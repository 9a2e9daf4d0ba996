// Package shmimage provides draw.Image implementations over raw
// shared-memory pixel data in formats that the image package does not
// provide.
package shmimage

import "image/color"

// XRGB8888Color is a 32-bit color with an unused top byte. It is
// always fully opaque.
type XRGB8888Color uint32

func NewXRGB8888Color(r, g, b uint8) XRGB8888Color {
	return XRGB8888Color((uint32(r) << 16) | (uint32(g) << 8) | uint32(b))
}

func (c XRGB8888Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.r()) * 0x101
	g = uint32(c.g()) * 0x101
	b = uint32(c.b()) * 0x101
	a = 0xFFFF
	return
}

func (c XRGB8888Color) r() uint8 {
	return uint8((c & 0x00FF0000) >> 16)
}

func (c XRGB8888Color) g() uint8 {
	return uint8((c & 0x0000FF00) >> 8)
}

func (c XRGB8888Color) b() uint8 {
	return uint8(c & 0x000000FF)
}

var XRGB8888Model color.Model = color.ModelFunc(xrgb8888Model)

func xrgb8888Model(c color.Color) color.Color {
	if c, ok := c.(XRGB8888Color); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return NewXRGB8888Color(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// RGB565Color is a 16-bit color with 5 bits of red, 6 of green and 5
// of blue.
type RGB565Color uint16

func NewRGB565Color(r, g, b uint8) RGB565Color {
	return RGB565Color((uint16(r>>3) << 11) | (uint16(g>>2) << 5) | uint16(b>>3))
}

func (c RGB565Color) RGBA() (r, g, b, a uint32) {
	r5 := uint32(c>>11) & 0x1F
	g6 := uint32(c>>5) & 0x3F
	b5 := uint32(c) & 0x1F

	// Replicate the high bits into the low ones so that full intensity
	// maps to 0xFFFF.
	r8 := (r5 << 3) | (r5 >> 2)
	g8 := (g6 << 2) | (g6 >> 4)
	b8 := (b5 << 3) | (b5 >> 2)
	return r8 * 0x101, g8 * 0x101, b8 * 0x101, 0xFFFF
}

var RGB565Model color.Model = color.ModelFunc(rgb565Model)

func rgb565Model(c color.Color) color.Color {
	if c, ok := c.(RGB565Color); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return NewRGB565Color(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

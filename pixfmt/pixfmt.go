// Package pixfmt describes the pixel formats that a client may use
// for buffers and overlay planes.
package pixfmt

import "fmt"

// Format is a pixel format code. The values match the wl_shm format
// codes for the two mandatory formats and the DRM fourcc codes for the
// rest.
type Format uint32

const (
	ARGB8888 Format = 0
	XRGB8888 Format = 1
	ABGR8888 Format = 0x34324241
	XBGR8888 Format = 0x34324258
	RGB565   Format = 0x36314752
	RGBA4444 Format = 0x32314152
	RGB888   Format = 0x34324752
	A8       Format = 0x20203841
)

// Info is the metadata for a single format.
type Info struct {
	Name string

	// BytesPerPixel is the size of a single pixel in memory.
	BytesPerPixel int

	// HAlpha and LAlpha are the high and low bit positions of the alpha
	// channel. A format without alpha has HAlpha == LAlpha.
	HAlpha, LAlpha int
}

// HasAlpha reports whether the format carries an alpha channel.
func (info Info) HasAlpha() bool {
	return info.HAlpha-info.LAlpha > 0
}

// ScanlineSize returns the size in bytes of a row of stride pixels.
func (info Info) ScanlineSize(stride int) int {
	return info.BytesPerPixel * stride
}

var formats = map[Format]Info{
	ARGB8888: {Name: "ARGB8888", BytesPerPixel: 4, HAlpha: 32, LAlpha: 24},
	XRGB8888: {Name: "XRGB8888", BytesPerPixel: 4},
	ABGR8888: {Name: "ABGR8888", BytesPerPixel: 4, HAlpha: 32, LAlpha: 24},
	XBGR8888: {Name: "XBGR8888", BytesPerPixel: 4},
	RGB565:   {Name: "RGB565", BytesPerPixel: 2},
	RGBA4444: {Name: "RGBA4444", BytesPerPixel: 2, HAlpha: 4, LAlpha: 0},
	RGB888:   {Name: "RGB888", BytesPerPixel: 3},
	A8:       {Name: "A8", BytesPerPixel: 1, HAlpha: 8, LAlpha: 0},
}

// Lookup returns the metadata for f.
func Lookup(f Format) (Info, error) {
	info, ok := formats[f]
	if !ok {
		return Info{}, UnknownFormatError{Format: f}
	}
	return info, nil
}

func (f Format) String() string {
	if info, ok := formats[f]; ok {
		return info.Name
	}
	return fmt.Sprintf("Format(%#x)", uint32(f))
}

// Table is a format-metadata source. The package-level Lookup is the
// default implementation.
type Table interface {
	Lookup(Format) (Info, error)
}

// TableFunc adapts a function to the Table interface.
type TableFunc func(Format) (Info, error)

func (f TableFunc) Lookup(format Format) (Info, error) {
	return f(format)
}

// Default is a Table backed by Lookup.
var Default Table = TableFunc(Lookup)

// UnknownFormatError is returned by Lookup for format codes that it
// has no metadata for.
type UnknownFormatError struct {
	Format Format
}

func (err UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown pixel format: %v", err.Format)
}

// Package overlay defines the interface to a hardware overlay engine.
//
// An overlay plane is a rectangle composited by the display hardware
// rather than by the GPU. Planes are scarce: a device usually has only
// a handful of them, and creation fails once they are used up.
package overlay

import (
	"errors"
	"image"

	"deedles.dev/layerbuf/pixfmt"
)

var (
	// ErrNoCapacity is returned by CreatePlane when the device has no
	// free planes left.
	ErrNoCapacity = errors.New("no free overlay planes")

	// ErrUnknownPlane is returned when a plane that the device does not
	// own is passed to it, including a plane that was already
	// destroyed.
	ErrUnknownPlane = errors.New("unknown overlay plane")
)

// Handle identifies a plane to processes other than the compositor.
type Handle uint64

// Plane is a live overlay plane as negotiated with the device. The
// negotiated geometry may differ from what was requested.
type Plane struct {
	Handle        Handle
	Width, Height int
	Format        pixfmt.Format
	WidthStride   int
	HeightStride  int
}

// Param is a plane parameter key.
type Param int

const (
	ParamDither Param = 3 + iota
	ParamTransform
)

const (
	Disable = 0
	Enable  = 1
)

// Device is an overlay engine. Implementations must be safe for
// concurrent use, but callers never act on a single plane from more
// than one goroutine at a time.
type Device interface {
	CreatePlane(w, h int, format pixfmt.Format) (*Plane, error)
	DestroyPlane(p *Plane) error
	SetPosition(p *Plane, r image.Rectangle) error
	SetParameter(p *Plane, key Param, value int) error
}

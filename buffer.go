package layerbuf

import (
	"image"
	"image/draw"
	"sync"

	"deedles.dev/layerbuf/pixfmt"
	"deedles.dev/layerbuf/shm/shmimage"
	"deedles.dev/ximage/format"
)

// Heap is a block of memory shared with a client. A heap whose memory
// can be remapped should also implement Pin, returning its current
// memory and a function that must be called once the caller is done
// reading it. *shm.Heap does.
type Heap interface {
	Size() int
	Base() []byte

	// ID identifies the heap. Negative values are invalid.
	ID() int
}

type pinner interface {
	Pin() (base []byte, unpin func())
}

// BufferHeap describes the frames that a client will post out of a
// heap. A nil Heap is allowed and makes the Surface transparent.
type BufferHeap struct {
	Heap Heap

	Width, Height int

	// HorStride and VerStride are the dimensions, in pixels, of the
	// memory backing each frame. Zero means the same as Width or
	// Height.
	HorStride, VerStride int

	Format    pixfmt.Format
	Transform Orientation
}

// EffectiveStrides returns the strides with zero values defaulted.
func (b BufferHeap) EffectiveStrides() (w, h int) {
	w, h = b.HorStride, b.VerStride
	if w == 0 {
		w = b.Width
	}
	if h == 0 {
		h = b.Height
	}
	return w, h
}

// Buffer is a single posted frame. It is immutable.
type Buffer struct {
	heap      Heap
	heapID    int
	base      []byte
	crop      image.Rectangle
	size      image.Point
	format    pixfmt.Format
	offset    int
	stride    int
	nbytes    int
	transform Orientation
}

func newBuffer(b BufferHeap, offset, stride, n int) *Buffer {
	w, h := b.EffectiveStrides()
	return &Buffer{
		heap:      b.Heap,
		heapID:    b.Heap.ID(),
		base:      b.Heap.Base(),
		crop:      image.Rect(0, 0, b.Width, b.Height),
		size:      image.Pt(w, h),
		format:    b.Format,
		offset:    offset,
		stride:    stride,
		nbytes:    n,
		transform: b.Transform,
	}
}

// Crop is the visible part of the frame.
func (b *Buffer) Crop() image.Rectangle { return b.crop }

// Size is the size of the frame in memory, in pixels.
func (b *Buffer) Size() image.Point { return b.size }

func (b *Buffer) Format() pixfmt.Format { return b.format }

// Offset is the offset of the frame into its heap.
func (b *Buffer) Offset() int { return b.offset }

func (b *Buffer) HeapID() int { return b.heapID }

// Base is the heap memory as it was when the frame was posted. Use
// Lock to read pixels.
func (b *Buffer) Base() []byte { return b.base }

func (b *Buffer) Transform() Orientation { return b.transform }

// Lock makes the frame's pixels available for reading. The returned
// LockedBuffer must be unlocked once the caller is done with it.
func (b *Buffer) Lock() (*LockedBuffer, error) {
	base, unpin := b.heap.Base(), func() {}
	if p, ok := b.heap.(pinner); ok {
		base, unpin = p.Pin()
	}

	if (b.offset < 0) || (b.nbytes > len(base)) || (b.offset > len(base)-b.nbytes) {
		unpin()
		return nil, OutOfRangeError{Offset: b.offset, Size: b.nbytes, HeapSize: len(base)}
	}
	end := b.offset + b.nbytes

	return &LockedBuffer{
		Buffer: b,
		Pix:    base[b.offset:end:end],
		Stride: b.stride,
		unpin:  unpin,
	}, nil
}

// LockedBuffer is a read-only view of a frame's pixels.
type LockedBuffer struct {
	*Buffer

	Pix    []byte
	Stride int

	once  sync.Once
	unpin func()
}

// Unlock releases the view. Pix must not be used afterwards.
func (lb *LockedBuffer) Unlock() {
	lb.once.Do(lb.unpin)
}

// Image returns the pixels as an image. The bounds of the image are
// the full size of the frame, not just the crop rectangle. It returns
// false if the format has no image representation.
func (lb *LockedBuffer) Image() (draw.Image, bool) {
	r := image.Rectangle{Max: lb.size}
	switch lb.format {
	case pixfmt.ARGB8888:
		return &format.Image{
			Format: format.ARGB8888,
			Rect:   r,
			Pix:    lb.Pix,
		}, true
	case pixfmt.XRGB8888:
		return &shmimage.XRGB8888{Pix: lb.Pix, Stride: lb.Stride, Rect: r}, true
	case pixfmt.ABGR8888:
		return &image.RGBA{Pix: lb.Pix, Stride: lb.Stride, Rect: r}, true
	case pixfmt.RGB565:
		return &shmimage.RGB565{Pix: lb.Pix, Stride: lb.Stride, Rect: r}, true
	case pixfmt.A8:
		return &image.Alpha{Pix: lb.Pix, Stride: lb.Stride, Rect: r}, true
	default:
		return nil, false
	}
}

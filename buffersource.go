package layerbuf

import (
	"fmt"
	"image"
	"math"
	"math/bits"
	"sync"

	"golang.org/x/exp/slog"
)

// BufferSource is a Source that shows frames posted out of a shared
// memory heap.
type BufferSource struct {
	source
	err    error
	stride int
	size   int

	m      sync.Mutex
	heap   BufferHeap
	gen    uint64
	buffer *Buffer
}

func newBufferSource(surface *Surface, b BufferHeap) *BufferSource {
	s := BufferSource{source: source{surface: surface}}

	if b.Heap == nil {
		// Allowed, but nothing can be posted. The surface is drawn as
		// fully transparent.
		s.heap = b
		surface.setNeedsBlending(false)
		return &s
	}

	if b.Heap.ID() < 0 {
		s.err = ErrInvalidHeap
		surface.logger.Error("register buffers", "err", s.err, "heap", b.Heap.ID())
		return &s
	}

	info, err := surface.comp.formats.Lookup(b.Format)
	if err != nil {
		s.err = fmt.Errorf("%w: %w", ErrInvalidFormat, err)
		surface.logger.Error("register buffers", "err", s.err)
		return &s
	}

	if (b.HorStride < 0) || (b.VerStride < 0) || (b.Width < 0) || (b.Height < 0) {
		s.err = ErrInvalidDimensions
		surface.logger.Error(
			"register buffers",
			"err", s.err,
			"w", b.Width,
			"h", b.Height,
			"xs", b.HorStride,
			"ys", b.VerStride,
		)
		return &s
	}

	w, h := b.EffectiveStrides()
	stride, ok := mulInt(info.BytesPerPixel, w)
	if ok {
		s.size, ok = mulInt(stride, h)
	}
	if !ok {
		s.err = ErrInvalidDimensions
		surface.logger.Error("register buffers", "err", s.err, "xs", w, "ys", h)
		return &s
	}

	s.heap = b
	s.stride = stride
	surface.setNeedsBlending(info.HasAlpha())
	surface.forceVisibilityTransaction()

	return &s
}

// mulInt returns a*b for non-negative a and b, or false if the product
// does not fit in an int.
func mulInt(a, b int) (int, bool) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if (hi != 0) || (lo > math.MaxInt) {
		return 0, false
	}
	return int(lo), true
}

// Err returns the validation error, if any, from when the source was
// created.
func (s *BufferSource) Err() error {
	return s.err
}

func (s *BufferSource) Kind() Kind {
	return KindBuffer
}

// FrameSize is the number of bytes that each posted frame occupies.
func (s *BufferSource) FrameSize() int {
	return s.size
}

// PostBuffer makes the frame at offset into the heap the current
// frame. Frames that don't fit into the heap are logged and dropped,
// leaving the previous frame in place.
func (s *BufferSource) PostBuffer(offset int) {
	s.m.Lock()
	b, gen := s.heap, s.gen
	if b.Heap == nil {
		s.m.Unlock()
		return
	}
	heapSize := b.Heap.Size()
	s.m.Unlock()

	if (offset < 0) || (s.size > heapSize) || (offset > heapSize-s.size) {
		err := OutOfRangeError{Offset: offset, Size: s.size, HeapSize: heapSize}
		s.surface.logger.Error("post buffer", "err", err)
		return
	}

	buf := newBuffer(b, offset, s.stride, s.size)

	s.m.Lock()
	// Drop the frame if the heap was unregistered while it was being
	// built.
	ok := s.gen == gen
	if ok {
		s.buffer = buf
	}
	s.m.Unlock()

	if ok {
		s.surface.invalidate()
	}
}

// UnregisterBuffers forgets the heap and the current frame.
func (s *BufferSource) UnregisterBuffers() {
	s.m.Lock()
	s.heap.Heap = nil
	s.buffer = nil
	s.gen++
	s.m.Unlock()

	s.surface.invalidate()
}

// Buffer returns the current frame, or nil if there isn't one.
func (s *BufferSource) Buffer() *Buffer {
	s.m.Lock()
	defer s.m.Unlock()
	return s.buffer
}

func (s *BufferSource) Transformed() bool {
	s.m.Lock()
	t := s.heap.Transform
	s.m.Unlock()

	return (t != Rot0) || s.source.Transformed()
}

// Draw draws the current frame, or clears clip if there isn't one. It
// never waits for producers.
func (s *BufferSource) Draw(clip image.Rectangle) {
	r := s.surface.comp.renderer
	if r == nil {
		return
	}

	s.m.Lock()
	buf, gen := s.buffer, s.gen
	s.m.Unlock()
	if buf == nil {
		r.Clear(clip)
		return
	}

	lb, err := buf.Lock()
	if err != nil {
		s.surface.logger.Error("lock buffer", "err", err)
		r.Clear(clip)
		return
	}
	defer lb.Unlock()

	r.Draw(DrawOp{
		Key:         s,
		Bounds:      s.surface.bounds,
		Clip:        clip,
		Orientation: buf.Transform(),
		Blend:       s.surface.NeedsBlending(),
	}, lb)

	// If the source was unregistered or released during the draw, the
	// texture that was just uploaded may belong to a detached source.
	s.m.Lock()
	stale := s.gen != gen
	s.m.Unlock()
	if stale {
		s.releaseTexture()
	}
}

func (s *BufferSource) Release() {
	s.m.Lock()
	s.heap.Heap = nil
	s.buffer = nil
	s.gen++
	s.m.Unlock()

	s.releaseTexture()
	s.surface.logger.Debug("buffer source released", slog.Int("frame_size", s.size))
}

func (s *BufferSource) releaseTexture() {
	if tr, ok := s.surface.comp.renderer.(TextureReleaser); ok {
		tr.ReleaseTexture(s)
	}
}

package layerbuf

import (
	"image"
	"sync"
	"sync/atomic"

	"deedles.dev/layerbuf/pixfmt"
	"golang.org/x/exp/slog"
)

// Surface is a composited layer that shows the content of at most one
// Source.
//
// Clients reach a Surface through its SurfaceProxy. The compositor
// goroutine drives it once per frame with Transaction,
// ValidateVisibility, VisibilityResolved and Draw, in that order.
type Surface struct {
	id     uint32
	comp   *Compositor
	logger *slog.Logger

	// m guards only which Source is attached.
	m         sync.Mutex
	source    Source
	destroyed bool

	needsBlending   atomic.Bool
	transformed     atomic.Bool
	forceVisibility atomic.Bool
	dirty           atomic.Bool

	sm      sync.Mutex
	current State

	// Only touched by the compositor goroutine.
	drawing State
	bounds  image.Rectangle
}

func newSurface(comp *Compositor, id uint32) *Surface {
	return &Surface{
		id:     id,
		comp:   comp,
		logger: comp.logger.With("surface", id),
	}
}

func (s *Surface) ID() uint32 {
	return s.id
}

func (s *Surface) proxy() *SurfaceProxy {
	return &SurfaceProxy{comp: s.comp, id: s.id}
}

// RegisterBuffers attaches a new BufferSource for the heap described
// by b. It returns ErrAlreadyBound if a Source is already attached and
// the validation error if b is invalid. Nothing is attached on error.
func (s *Surface) RegisterBuffers(b BufferHeap) error {
	s.m.Lock()
	defer s.m.Unlock()

	if s.destroyed {
		return ErrNoOwner
	}
	if s.source != nil {
		return ErrAlreadyBound
	}

	source := newBufferSource(s, b)
	if source.Err() != nil {
		return source.Err()
	}

	s.source = source
	s.logger.Debug("buffers registered", "format", b.Format, "w", b.Width, "h", b.Height)
	return nil
}

// CreateOverlay attaches a new OverlaySource with a plane of the
// requested size and format. If a Source is already attached or no
// plane could be created, it returns a nil OverlayRef and attaches
// nothing.
func (s *Surface) CreateOverlay(w, h int, format pixfmt.Format) (*OverlayRef, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if s.destroyed {
		return nil, ErrNoOwner
	}
	if s.source != nil {
		return nil, ErrAlreadyBound
	}

	source, ref, err := newOverlaySource(s, w, h, format)
	if ref == nil {
		s.logger.Debug("overlay not created", "err", err)
		return nil, err
	}

	s.source = source
	s.logger.Debug("overlay created", "handle", ref.Handle, "w", ref.Width, "h", ref.Height)
	return ref, nil
}

// PostBuffer forwards to the attached Source, if any.
func (s *Surface) PostBuffer(offset int) {
	if source := s.Source(); source != nil {
		source.PostBuffer(offset)
	}
}

// UnregisterBuffers detaches the Source, if any, and releases it.
func (s *Surface) UnregisterBuffers() {
	source := s.ClearSource()
	if source == nil {
		return
	}

	source.UnregisterBuffers()
	source.Release()
}

// Source returns the attached Source, or nil.
func (s *Surface) Source() Source {
	s.m.Lock()
	defer s.m.Unlock()
	return s.source
}

// ClearSource detaches and returns the attached Source. Of any number
// of concurrent callers, only one gets a given Source back, and that
// caller is responsible for releasing it.
func (s *Surface) ClearSource() Source {
	s.m.Lock()
	defer s.m.Unlock()

	source := s.source
	s.source = nil
	return source
}

// clearSourceIf detaches source if it is the attached Source.
func (s *Surface) clearSourceIf(source Source) bool {
	s.m.Lock()
	defer s.m.Unlock()

	if s.source != source {
		return false
	}
	s.source = nil
	return true
}

// Destroy detaches and releases the Source. Once destroyed, a Surface
// rejects new Sources with ErrNoOwner.
func (s *Surface) Destroy() {
	s.m.Lock()
	s.destroyed = true
	source := s.source
	s.source = nil
	s.m.Unlock()

	if source != nil {
		source.Release()
	}
	s.logger.Debug("surface destroyed")
}

func (s *Surface) NeedsBlending() bool {
	return s.needsBlending.Load()
}

func (s *Surface) setNeedsBlending(blending bool) {
	s.needsBlending.Store(blending)
}

// forceVisibilityTransaction makes the next Transaction report a
// visible region change.
func (s *Surface) forceVisibilityTransaction() {
	s.forceVisibility.Store(true)
}

// invalidate marks the Surface as needing to be redrawn.
func (s *Surface) invalidate() {
	s.dirty.Store(true)
	s.comp.invalidate(s.id)
}

// Dirty reports whether the content changed since the last Draw.
func (s *Surface) Dirty() bool {
	return s.dirty.Load()
}

// SetGeometry changes the pending geometry. The change takes effect at
// the next Transaction.
func (s *Surface) SetGeometry(bounds image.Rectangle, orientation Orientation) {
	s.sm.Lock()
	defer s.sm.Unlock()

	s.current.Bounds = bounds
	s.current.Orientation = orientation
	s.current.Sequence++
}

func (s *Surface) pendingSequence() uint32 {
	s.sm.Lock()
	defer s.sm.Unlock()
	return s.current.Sequence
}

// Transaction commits the pending geometry. It returns flags with
// VisibleRegion added if the visible region needs to be recomputed.
func (s *Surface) Transaction(flags uint32) uint32 {
	if source := s.Source(); source != nil {
		source.Transaction(flags)
	}

	s.sm.Lock()
	current := s.current
	s.sm.Unlock()

	if current.Sequence != s.drawing.Sequence {
		s.drawing = current
		flags |= VisibleRegion
	}
	if s.forceVisibility.Swap(false) {
		flags |= VisibleRegion
	}
	return flags
}

// Drawing returns the committed geometry.
func (s *Surface) Drawing() State {
	return s.drawing
}

// ValidateVisibility computes where the Surface is on the display.
func (s *Surface) ValidateVisibility(t Transform) {
	s.bounds = t.Map(s.drawing.Bounds)
	s.transformed.Store((s.drawing.Orientation != Rot0) || (t.Orientation() != Rot0))
}

// TransformedBounds returns the bounds computed by the last
// ValidateVisibility.
func (s *Surface) TransformedBounds() image.Rectangle {
	return s.bounds
}

// VisibilityResolved gives the Source a chance to react to the
// resolved geometry before the frame is drawn.
func (s *Surface) VisibilityResolved(t Transform) {
	if source := s.Source(); source != nil {
		source.VisibilityResolved(t)
	}
}

// Draw draws the Source's content, or clears clip if there is no
// Source.
func (s *Surface) Draw(clip image.Rectangle) {
	s.dirty.Store(false)

	source := s.Source()
	if source != nil {
		source.Draw(clip)
		return
	}
	if r := s.comp.renderer; r != nil {
		r.Clear(clip)
	}
}

// Transformed reports whether the content is drawn with anything other
// than a plain translation.
func (s *Surface) Transformed() bool {
	if source := s.Source(); source != nil {
		return source.Transformed()
	}
	return false
}

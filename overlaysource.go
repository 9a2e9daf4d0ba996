package layerbuf

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"deedles.dev/layerbuf/overlay"
	"deedles.dev/layerbuf/pixfmt"
)

// OverlayState is the lifecycle state of an OverlaySource.
type OverlayState int

const (
	// OverlayUnbound means that no plane could be created. It is
	// terminal.
	OverlayUnbound OverlayState = iota

	// OverlayBound means that the source owns a live plane.
	OverlayBound

	// OverlayDestroyed means that the plane has been destroyed.
	OverlayDestroyed
)

func (s OverlayState) String() string {
	switch s {
	case OverlayUnbound:
		return "unbound"
	case OverlayBound:
		return "bound"
	case OverlayDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("OverlayState(%d)", int(s))
	}
}

// OverlaySource is a Source backed by a hardware overlay plane. The
// client fills the plane itself. The source only keeps the plane's
// position in sync with the Surface and destroys it when done.
type OverlaySource struct {
	source
	device   overlay.Device
	geometry overlay.Plane
	bound    bool

	// Only touched by the compositor goroutine.
	geometryChanged bool

	// live mirrors plane != nil so that the per-frame path can skip
	// the lock when there is nothing to do.
	live atomic.Bool

	m     sync.Mutex
	plane *overlay.Plane
}

// newOverlaySource creates the plane for a new OverlaySource. If the
// returned OverlayRef is nil, the source is unbound and must not be
// attached.
func newOverlaySource(surface *Surface, w, h int, format pixfmt.Format) (*OverlaySource, *OverlayRef, error) {
	s := OverlaySource{
		source: source{surface: surface},
		device: surface.comp.device,
	}

	if s.device == nil {
		return &s, nil, ErrOverlayUnavailable
	}

	plane, err := s.device.CreatePlane(w, h, format)
	if err != nil {
		return &s, nil, fmt.Errorf("%w: %w", ErrOverlayUnavailable, err)
	}
	if plane == nil {
		return &s, nil, ErrOverlayUnavailable
	}

	err = s.device.SetParameter(plane, overlay.ParamDither, overlay.Enable)
	if err != nil {
		surface.logger.Warn("enable overlay dithering", "err", err)
	}

	s.plane = plane
	s.geometry = *plane
	s.bound = true
	s.live.Store(true)

	ref := OverlayRef{
		Handle:       plane.Handle,
		Width:        plane.Width,
		Height:       plane.Height,
		Format:       plane.Format,
		WidthStride:  plane.WidthStride,
		HeightStride: plane.HeightStride,
		Channel: &OverlayChannel{
			SurfaceProxy: surface.proxy(),
			source:       &s,
		},
	}

	return &s, &ref, nil
}

func (s *OverlaySource) Kind() Kind {
	return KindOverlay
}

// Geometry returns the plane geometry as negotiated with the device.
func (s *OverlaySource) Geometry() overlay.Plane {
	return s.geometry
}

func (s *OverlaySource) State() OverlayState {
	if !s.bound {
		return OverlayUnbound
	}

	s.m.Lock()
	defer s.m.Unlock()

	if s.plane == nil {
		return OverlayDestroyed
	}
	return OverlayBound
}

// Transaction notes whether the Surface's geometry is about to change.
func (s *OverlaySource) Transaction(flags uint32) {
	if s.surface.pendingSequence() != s.surface.drawing.Sequence {
		s.geometryChanged = true
	}
}

// VisibilityResolved moves the plane to where the Surface now is. It
// is called for every composited frame and does nothing unless the
// geometry changed.
func (s *OverlaySource) VisibilityResolved(t Transform) {
	if !s.live.Load() || !s.geometryChanged {
		return
	}
	s.geometryChanged = false

	bounds := s.surface.bounds
	orientation := s.surface.drawing.Orientation

	// Teardown may be running concurrently on another goroutine.
	s.m.Lock()
	defer s.m.Unlock()

	if s.plane == nil {
		return
	}

	err := s.device.SetPosition(s.plane, bounds)
	if err != nil {
		s.surface.logger.Error("set overlay position", "err", err)
	}
	err = s.device.SetParameter(s.plane, overlay.ParamTransform, int(orientation))
	if err != nil {
		s.surface.logger.Error("set overlay transform", "err", err)
	}
}

// Release destroys the plane. It is safe to call more than once and
// concurrently with VisibilityResolved.
func (s *OverlaySource) Release() {
	s.destroyOverlay()
}

// serverDestroy handles teardown requested by the remote end of the
// overlay channel.
func (s *OverlaySource) serverDestroy() {
	s.surface.clearSourceIf(s)
	s.destroyOverlay()
}

func (s *OverlaySource) destroyOverlay() {
	s.m.Lock()
	defer s.m.Unlock()

	if s.plane == nil {
		return
	}

	err := s.device.DestroyPlane(s.plane)
	if err != nil {
		s.surface.logger.Error("destroy overlay", "err", err)
	}
	s.plane = nil
	s.live.Store(false)

	s.surface.logger.Debug("overlay destroyed", "handle", s.geometry.Handle)
}

// OverlayRef is handed to the client that created an overlay. It
// carries everything the client needs to drive the plane itself.
type OverlayRef struct {
	Handle        overlay.Handle
	Width, Height int
	Format        pixfmt.Format
	WidthStride   int
	HeightStride  int

	Channel *OverlayChannel
}

// Bounds returns the plane's size as a rectangle at the origin.
func (ref *OverlayRef) Bounds() image.Rectangle {
	return image.Rect(0, 0, ref.Width, ref.Height)
}

// OverlayChannel is the remote end of an overlay. Its SurfaceProxy
// methods refer to the Surface by ID, so holding a channel does not
// keep a destroyed Surface usable.
type OverlayChannel struct {
	*SurfaceProxy

	source *OverlaySource
}

// Destroy detaches the overlay from its Surface and destroys the
// plane. It is idempotent.
func (c *OverlayChannel) Destroy() {
	c.source.serverDestroy()
}

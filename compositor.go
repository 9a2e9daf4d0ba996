package layerbuf

import (
	"context"
	"sync"

	"deedles.dev/layerbuf/internal/debug"
	"deedles.dev/layerbuf/internal/ev"
	"deedles.dev/layerbuf/internal/objstore"
	"deedles.dev/layerbuf/internal/set"
	"deedles.dev/layerbuf/overlay"
	"deedles.dev/layerbuf/pixfmt"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// Config configures a Compositor. The zero value is usable.
type Config struct {
	// Overlay is the overlay engine. If it is nil, overlays are not
	// supported and CreateOverlay always fails.
	Overlay overlay.Device

	// Formats provides pixel format metadata. It defaults to
	// pixfmt.Default.
	Formats pixfmt.Table

	// Renderer draws buffer content. If it is nil, nothing is drawn.
	Renderer Renderer

	// Logger defaults to a text logger on stderr whose level depends
	// on the LAYERBUF_DEBUG environment variable.
	Logger *slog.Logger
}

// Compositor owns a set of Surfaces and the collaborators that they
// share.
type Compositor struct {
	done  chan struct{}
	close sync.Once

	device   overlay.Device
	formats  pixfmt.Table
	renderer Renderer
	logger   *slog.Logger

	surfaces *objstore.Store[*Surface]
	queue    *ev.Queue

	// Only touched by events, which run on the goroutine calling
	// Flush.
	dirty set.Set[uint32]
}

func New(cfg Config) *Compositor {
	c := Compositor{
		done:     make(chan struct{}),
		device:   cfg.Overlay,
		formats:  cfg.Formats,
		renderer: cfg.Renderer,
		logger:   cfg.Logger,
		surfaces: objstore.New[*Surface](1),
		queue:    ev.NewQueue(),
		dirty:    make(set.Set[uint32]),
	}
	if c.formats == nil {
		c.formats = pixfmt.Default
	}
	if c.logger == nil {
		c.logger = debug.Logger()
	}

	return &c
}

// Close destroys every Surface and stops the invalidation queue.
// Invalidations that happen after Close are dropped.
func (c *Compositor) Close() error {
	c.close.Do(func() {
		close(c.done)

		for _, s := range c.surfaces.Clear() {
			s.Destroy()
		}
		c.queue.Stop()
	})
	return nil
}

// CreateSurface creates a new Surface and returns the proxy that a
// client uses to talk to it.
func (c *Compositor) CreateSurface() *SurfaceProxy {
	s := c.surfaces.Add(func(id uint32) *Surface { return newSurface(c, id) })
	return s.proxy()
}

// Surface returns the Surface with the given ID, if it exists.
func (c *Compositor) Surface(id uint32) (*Surface, bool) {
	return c.surfaces.Get(id)
}

// Surfaces returns all Surfaces, ordered by ID.
func (c *Compositor) Surfaces() []*Surface {
	return c.surfaces.All()
}

// DestroySurface destroys the Surface with the given ID. It returns
// false if there was no such Surface.
func (c *Compositor) DestroySurface(id uint32) bool {
	s, ok := c.surfaces.Delete(id)
	if !ok {
		return false
	}
	s.Destroy()
	return true
}

func (c *Compositor) invalidate(id uint32) {
	select {
	case <-c.done:
	case c.queue.Add() <- func() error { c.dirty.Add(id); return nil }:
	}
}

func (c *Compositor) takeDirty() []uint32 {
	ids := c.dirty.Slice()
	clear(c.dirty)
	slices.Sort(ids)
	return ids
}

// Flush processes pending invalidations without waiting and returns
// the IDs of the Surfaces that were invalidated since the last Flush.
func (c *Compositor) Flush() ([]uint32, error) {
	select {
	case events := <-c.queue.Get():
		err := events.Flush()
		return c.takeDirty(), err
	default:
		return c.takeDirty(), nil
	}
}

// FlushWait is like Flush, but waits until there is at least one
// invalidation to process or ctx is done.
func (c *Compositor) FlushWait(ctx context.Context) ([]uint32, error) {
	select {
	case <-ctx.Done():
		return c.takeDirty(), ctx.Err()
	case <-c.done:
		return c.takeDirty(), nil
	case events := <-c.queue.Get():
		err := events.Flush()
		return c.takeDirty(), err
	}
}

// Composite runs a single frame on the calling goroutine, which is
// then the compositor goroutine for the duration of the call. It
// returns the IDs of the Surfaces whose content changed since the
// previous frame.
func (c *Compositor) Composite(t Transform) ([]uint32, error) {
	dirty, err := c.Flush()

	for _, s := range c.surfaces.All() {
		s.Transaction(0)
		s.ValidateVisibility(t)
		s.VisibilityResolved(t)
		s.Draw(s.TransformedBounds())
	}

	return dirty, err
}

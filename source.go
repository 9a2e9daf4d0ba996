package layerbuf

import "image"

// Kind is the kind of a Source. It never changes for the lifetime of
// the Source.
type Kind int

const (
	KindBuffer Kind = 1 + iota
	KindOverlay
)

func (k Kind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindOverlay:
		return "overlay"
	default:
		return "unknown"
	}
}

// Source provides the content of a Surface.
//
// Draw, Transaction and VisibilityResolved are called only by the
// compositor goroutine. PostBuffer and UnregisterBuffers are called by
// producers. Release is called exactly once, by whoever detached the
// Source from its Surface.
type Source interface {
	Kind() Kind

	Draw(clip image.Rectangle)
	Transaction(flags uint32)
	VisibilityResolved(t Transform)

	PostBuffer(offset int)
	UnregisterBuffers()

	Transformed() bool
	Release()
}

// Renderer is the GPU side of the draw path.
type Renderer interface {
	// Clear fills clip with fully transparent pixels.
	Clear(clip image.Rectangle)

	// Draw uploads buf and draws it. buf is only valid until Draw
	// returns.
	Draw(op DrawOp, buf *LockedBuffer)
}

// TextureReleaser is implemented by Renderers that cache uploaded
// content per DrawOp.Key.
type TextureReleaser interface {
	ReleaseTexture(key any)
}

// DrawOp describes where and how to draw a frame.
type DrawOp struct {
	// Key identifies the Source that the frame came from.
	Key any

	Bounds      image.Rectangle
	Clip        image.Rectangle
	Orientation Orientation
	Blend       bool
}

// source holds what is common to all Sources, including default no-op
// implementations of most of the interface.
type source struct {
	surface *Surface
}

func (s source) Draw(clip image.Rectangle)      {}
func (s source) Transaction(flags uint32)       {}
func (s source) VisibilityResolved(t Transform) {}
func (s source) PostBuffer(offset int)          {}
func (s source) UnregisterBuffers()             {}
func (s source) Release()                       {}

func (s source) Transformed() bool {
	return s.surface.transformed.Load()
}

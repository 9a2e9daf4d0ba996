// Package layerbuf implements the content sources of a compositor
// surface.
//
// A Surface shows the contents of at most one Source at a time. A
// client attaches a Source through the Surface's SurfaceProxy, either
// by registering a shared-memory heap with RegisterBuffers and then
// posting frames out of it with PostBuffer, or by asking for a
// hardware overlay plane with CreateOverlay. The compositor goroutine
// drives every Surface once per frame through Transaction,
// ValidateVisibility, VisibilityResolved and Draw, usually by way of
// Compositor.Composite.
//
// Producers and the compositor may run on different goroutines. Posted
// frames are immutable snapshots published under a lock, so the
// compositor always sees either the previous frame or the newest one.
// Overlay planes are destroyed exactly once, no matter whether
// teardown comes from the surface being destroyed, from the client
// unregistering, or from the remote end of the OverlayChannel, and it
// is safe for that to happen while a frame is being composited.
package layerbuf

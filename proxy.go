package layerbuf

import "deedles.dev/layerbuf/pixfmt"

// SurfaceProxy is the client's handle to a Surface. It refers to the
// Surface by ID, so it does not keep the Surface alive. Once the
// Surface is destroyed, calls fail with ErrNoOwner or do nothing.
type SurfaceProxy struct {
	comp *Compositor
	id   uint32
}

func (p *SurfaceProxy) ID() uint32 {
	return p.id
}

func (p *SurfaceProxy) owner() *Surface {
	s, _ := p.comp.surfaces.Get(p.id)
	return s
}

// Surface returns the Surface that p refers to, or nil if it has been
// destroyed.
func (p *SurfaceProxy) Surface() *Surface {
	return p.owner()
}

func (p *SurfaceProxy) RegisterBuffers(b BufferHeap) error {
	owner := p.owner()
	if owner == nil {
		return ErrNoOwner
	}
	return owner.RegisterBuffers(b)
}

func (p *SurfaceProxy) PostBuffer(offset int) {
	if owner := p.owner(); owner != nil {
		owner.PostBuffer(offset)
	}
}

func (p *SurfaceProxy) UnregisterBuffers() {
	if owner := p.owner(); owner != nil {
		owner.UnregisterBuffers()
	}
}

func (p *SurfaceProxy) CreateOverlay(w, h int, format pixfmt.Format) (*OverlayRef, error) {
	owner := p.owner()
	if owner == nil {
		return nil, ErrNoOwner
	}
	return owner.CreateOverlay(w, h, format)
}

// Release is called when the client lets go of the proxy. It
// unregisters whatever Source the Surface has.
func (p *SurfaceProxy) Release() {
	p.UnregisterBuffers()
}

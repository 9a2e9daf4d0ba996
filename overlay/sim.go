package overlay

import (
	"image"
	"sync"

	"deedles.dev/layerbuf/pixfmt"
	"golang.org/x/exp/maps"
)

// Sim is an in-memory Device. It enforces a plane limit and records
// every call so that tests can check how a plane was driven.
type Sim struct {
	m       sync.Mutex
	max     int
	next    Handle
	planes  map[*Plane]*SimPlane
	destroy int
	fail    int
}

// SimPlane is the state that Sim tracks for a single plane.
type SimPlane struct {
	Bounds    image.Rectangle
	Params    map[Param]int
	Positions int
}

// NewSim returns a Sim that allows at most limit planes to exist at
// once.
func NewSim(limit int) *Sim {
	return &Sim{
		max:    limit,
		next:   1,
		planes: make(map[*Plane]*SimPlane),
	}
}

func (sim *Sim) CreatePlane(w, h int, format pixfmt.Format) (*Plane, error) {
	info, err := pixfmt.Lookup(format)
	if err != nil {
		return nil, err
	}

	sim.m.Lock()
	defer sim.m.Unlock()

	if len(sim.planes) >= sim.max {
		return nil, ErrNoCapacity
	}

	// Real engines round strides up to their alignment requirements.
	align := 16 / info.BytesPerPixel
	if align == 0 {
		align = 1
	}

	p := Plane{
		Handle:       sim.next,
		Width:        w,
		Height:       h,
		Format:       format,
		WidthStride:  (w + align - 1) / align * align,
		HeightStride: h,
	}
	sim.next++
	sim.planes[&p] = &SimPlane{Params: make(map[Param]int)}
	return &p, nil
}

func (sim *Sim) DestroyPlane(p *Plane) error {
	sim.m.Lock()
	defer sim.m.Unlock()

	if _, ok := sim.planes[p]; !ok {
		sim.fail++
		return ErrUnknownPlane
	}
	delete(sim.planes, p)
	sim.destroy++
	return nil
}

func (sim *Sim) SetPosition(p *Plane, r image.Rectangle) error {
	sim.m.Lock()
	defer sim.m.Unlock()

	sp, ok := sim.planes[p]
	if !ok {
		sim.fail++
		return ErrUnknownPlane
	}
	sp.Bounds = r
	sp.Positions++
	return nil
}

func (sim *Sim) SetParameter(p *Plane, key Param, value int) error {
	sim.m.Lock()
	defer sim.m.Unlock()

	sp, ok := sim.planes[p]
	if !ok {
		sim.fail++
		return ErrUnknownPlane
	}
	sp.Params[key] = value
	return nil
}

// Live returns the number of planes that currently exist.
func (sim *Sim) Live() int {
	sim.m.Lock()
	defer sim.m.Unlock()
	return len(sim.planes)
}

// Destroyed returns the number of successful DestroyPlane calls.
func (sim *Sim) Destroyed() int {
	sim.m.Lock()
	defer sim.m.Unlock()
	return sim.destroy
}

// Failures returns the number of calls that were made with a plane
// that the device did not own.
func (sim *Sim) Failures() int {
	sim.m.Lock()
	defer sim.m.Unlock()
	return sim.fail
}

// State returns a copy of the tracked state of p. The second return
// value is false if p is not live.
func (sim *Sim) State(p *Plane) (SimPlane, bool) {
	sim.m.Lock()
	defer sim.m.Unlock()

	sp, ok := sim.planes[p]
	if !ok {
		return SimPlane{}, false
	}

	return SimPlane{Bounds: sp.Bounds, Params: maps.Clone(sp.Params), Positions: sp.Positions}, true
}

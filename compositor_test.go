package layerbuf

import (
	"image"
	"testing"
	"time"

	"deedles.dev/layerbuf/overlay"
	"deedles.dev/layerbuf/pixfmt"
	"github.com/google/go-cmp/cmp"
)

func TestCreateSurface(t *testing.T) {
	c := newTestCompositor(t, Config{})

	var ids []uint32
	for i := 0; i < 3; i++ {
		p := c.CreateSurface()
		if p.Surface() == nil {
			t.Fatalf("proxy %v does not resolve", p.ID())
		}
		if id := p.Surface().ID(); id != p.ID() {
			t.Fatalf("proxy %v resolves to surface %v", p.ID(), id)
		}
		ids = append(ids, p.ID())
	}

	var got []uint32
	for _, s := range c.Surfaces() {
		got = append(got, s.ID())
	}
	if diff := cmp.Diff(ids, got); diff != "" {
		t.Errorf("surfaces (-want +got):\n%v", diff)
	}

	c.DestroySurface(ids[1])
	if _, ok := c.Surface(ids[1]); ok {
		t.Error("destroyed surface still registered")
	}
	if n := len(c.Surfaces()); n != 2 {
		t.Errorf("%v surfaces left, want 2", n)
	}
}

func TestPostInvalidates(t *testing.T) {
	c := newTestCompositor(t, Config{})
	p := c.CreateSurface()
	s := p.Surface()

	if err := p.RegisterBuffers(argbHeap(newMemHeap(4*4*4), 4, 4)); err != nil {
		t.Fatal(err)
	}
	p.PostBuffer(0)

	if !s.Dirty() {
		t.Error("surface not dirty after post")
	}
	waitDirty(t, c, p.ID())

	s.Draw(image.Rect(0, 0, 4, 4))
	if s.Dirty() {
		t.Error("surface still dirty after draw")
	}

	dirty, err := c.Flush()
	if err != nil {
		t.Fatal(err)
	}
	if len(dirty) != 0 {
		t.Errorf("dirty = %v with nothing posted", dirty)
	}
}

func TestComposite(t *testing.T) {
	r := new(recorder)
	c := newTestCompositor(t, Config{Renderer: r})

	posted := c.CreateSurface()
	empty := c.CreateSurface()

	if err := posted.RegisterBuffers(argbHeap(newMemHeap(4*4*4), 4, 4)); err != nil {
		t.Fatal(err)
	}
	posted.Surface().SetGeometry(image.Rect(0, 0, 4, 4), Rot0)
	empty.Surface().SetGeometry(image.Rect(10, 10, 20, 20), Rot0)
	posted.PostBuffer(0)
	waitDirty(t, c, posted.ID())

	if _, err := c.Composite(Translation{X: 1, Y: 2}); err != nil {
		t.Fatal(err)
	}

	source := posted.Surface().Source()
	want := []DrawOp{{
		Key:    source,
		Bounds: image.Rect(1, 2, 5, 6),
		Clip:   image.Rect(1, 2, 5, 6),
		Blend:  true,
	}}
	if diff := cmp.Diff(want, r.draws, sameSource); diff != "" {
		t.Errorf("draws (-want +got):\n%v", diff)
	}
	if diff := cmp.Diff([]image.Rectangle{image.Rect(11, 12, 21, 22)}, r.clears); diff != "" {
		t.Errorf("clears (-want +got):\n%v", diff)
	}
}

func TestInvalidateAfterClose(t *testing.T) {
	c := newTestCompositor(t, Config{})
	p := c.CreateSurface()
	s := p.Surface()
	if err := s.RegisterBuffers(argbHeap(newMemHeap(64), 4, 4)); err != nil {
		t.Fatal(err)
	}
	source := s.Source().(*BufferSource)

	c.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		source.PostBuffer(0)
		s.invalidate()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("invalidation blocked after Close")
	}
}

func TestCloseReleasesOverlays(t *testing.T) {
	sim := overlay.NewSim(4)
	c := newTestCompositor(t, Config{Overlay: sim})

	for i := 0; i < 3; i++ {
		if _, err := c.CreateSurface().CreateOverlay(8, 8, pixfmt.RGB565); err != nil {
			t.Fatal(err)
		}
	}
	if sim.Live() != 3 {
		t.Fatalf("%v planes live, want 3", sim.Live())
	}

	c.Close()
	c.Close()

	if sim.Live() != 0 {
		t.Errorf("%v planes survived Close", sim.Live())
	}
	if sim.Failures() != 0 {
		t.Errorf("%v calls with a dead plane", sim.Failures())
	}
	if len(c.Surfaces()) != 0 {
		t.Error("surfaces survived Close")
	}
}

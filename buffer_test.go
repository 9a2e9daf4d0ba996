package layerbuf

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"deedles.dev/layerbuf/pixfmt"
	"deedles.dev/layerbuf/shm"
	"deedles.dev/layerbuf/shm/shmimage"
)

func TestLockedBufferImage(t *testing.T) {
	heap := newMemHeap(64)
	b := BufferHeap{
		Heap:   heap,
		Width:  2,
		Height: 2,
		Format: pixfmt.ABGR8888,
	}
	// Second frame, pixel (1, 0).
	copy(heap.mem[16+4:], []byte{0x10, 0x20, 0x30, 0xFF})

	buf := newBuffer(b, 16, 8, 16)
	lb, err := buf.Lock()
	if err != nil {
		t.Fatal(err)
	}
	defer lb.Unlock()

	if len(lb.Pix) != 16 {
		t.Fatalf("locked %v bytes, want 16", len(lb.Pix))
	}

	img, ok := lb.Image()
	if !ok {
		t.Fatal("no image for ABGR8888")
	}
	if img.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("bounds = %v", img.Bounds())
	}
	want := color.RGBA{0x10, 0x20, 0x30, 0xFF}
	if c := img.At(1, 0); c != want {
		t.Errorf("At(1, 0) = %v, want %v", c, want)
	}
}

func TestLockedBufferImageFormats(t *testing.T) {
	tests := []struct {
		format pixfmt.Format
		bpp    int
		check  func(any) bool
	}{
		{format: pixfmt.XRGB8888, bpp: 4, check: func(img any) bool { _, ok := img.(*shmimage.XRGB8888); return ok }},
		{format: pixfmt.ABGR8888, bpp: 4, check: func(img any) bool { _, ok := img.(*image.RGBA); return ok }},
		{format: pixfmt.RGB565, bpp: 2, check: func(img any) bool { _, ok := img.(*shmimage.RGB565); return ok }},
		{format: pixfmt.A8, bpp: 1, check: func(img any) bool { _, ok := img.(*image.Alpha); return ok }},
		{format: pixfmt.RGB888, bpp: 3},
	}

	for _, test := range tests {
		t.Run(test.format.String(), func(t *testing.T) {
			b := BufferHeap{
				Heap:   newMemHeap(4 * 4 * test.bpp),
				Width:  4,
				Height: 4,
				Format: test.format,
			}
			lb, err := newBuffer(b, 0, 4*test.bpp, 4*4*test.bpp).Lock()
			if err != nil {
				t.Fatal(err)
			}
			defer lb.Unlock()

			img, ok := lb.Image()
			if test.check == nil {
				if ok {
					t.Errorf("got %T, want no image", img)
				}
				return
			}
			if !ok || !test.check(img) {
				t.Errorf("got %T, %v", img, ok)
			}
		})
	}
}

func TestLockAfterShrink(t *testing.T) {
	heap, err := shm.NewHeap(64)
	if err != nil {
		t.Fatal(err)
	}
	defer heap.Close()

	_, s := newTestSurface(t, Config{})
	if err := s.RegisterBuffers(argbHeap(heap, 4, 4)); err != nil {
		t.Fatal(err)
	}
	s.PostBuffer(0)

	buf := bufferSource(t, s).Buffer()
	if buf == nil {
		t.Fatal("frame not posted")
	}

	if err := heap.Resize(32); err != nil {
		t.Fatal(err)
	}

	_, err = buf.Lock()
	var oor OutOfRangeError
	if !errors.As(err, &oor) || !errors.Is(err, ErrBufferOutOfRange) {
		t.Fatalf("err = %v, want OutOfRangeError", err)
	}
	if oor != (OutOfRangeError{Offset: 0, Size: 64, HeapSize: 32}) {
		t.Errorf("err = %+v", oor)
	}

	// A failed Lock must not leave the heap pinned.
	if err := heap.Resize(64); err != nil {
		t.Fatal(err)
	}
}

func TestUnlockTwice(t *testing.T) {
	heap, err := shm.NewHeap(64)
	if err != nil {
		t.Fatal(err)
	}

	buf := newBuffer(argbHeap(heap, 4, 4), 0, 16, 64)
	lb, err := buf.Lock()
	if err != nil {
		t.Fatal(err)
	}
	lb.Unlock()
	lb.Unlock()

	if err := heap.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestLockRejectsOverflow(t *testing.T) {
	b := argbHeap(newMemHeap(64), 2, 2)
	for _, offset := range []int{math.MaxInt - 4, -1} {
		lb, err := newBuffer(b, offset, 8, 16).Lock()
		if !errors.Is(err, ErrBufferOutOfRange) {
			t.Errorf("offset %v: lb = %v, err = %v, want ErrBufferOutOfRange", offset, lb, err)
		}
	}
}

package layerbuf

import (
	"bytes"
	"context"
	"image"
	"io"
	"sync"
	"testing"
	"time"

	"deedles.dev/layerbuf/pixfmt"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/slog"
)

// sameSource compares sources by identity.
var sameSource = cmp.Comparer(func(a, b *BufferSource) bool { return a == b })

type memHeap struct {
	id  int
	mem []byte
}

func newMemHeap(size int) *memHeap {
	return &memHeap{id: 3, mem: make([]byte, size)}
}

func (h *memHeap) Size() int    { return len(h.mem) }
func (h *memHeap) Base() []byte { return h.mem }
func (h *memHeap) ID() int      { return h.id }

type recorder struct {
	m        sync.Mutex
	clears   []image.Rectangle
	draws    []DrawOp
	released []any
}

func (r *recorder) Clear(clip image.Rectangle) {
	r.m.Lock()
	defer r.m.Unlock()
	r.clears = append(r.clears, clip)
}

func (r *recorder) Draw(op DrawOp, buf *LockedBuffer) {
	r.m.Lock()
	defer r.m.Unlock()
	r.draws = append(r.draws, op)
}

func (r *recorder) ReleaseTexture(key any) {
	r.m.Lock()
	defer r.m.Unlock()
	r.released = append(r.released, key)
}

// syncBuffer lets a logger be written to from several goroutines.
type syncBuffer struct {
	m   sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(data []byte) (int, error) {
	b.m.Lock()
	defer b.m.Unlock()
	return b.buf.Write(data)
}

func (b *syncBuffer) String() string {
	b.m.Lock()
	defer b.m.Unlock()
	return b.buf.String()
}

func newTestCompositor(t *testing.T, cfg Config) *Compositor {
	t.Helper()

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := New(cfg)
	t.Cleanup(func() { c.Close() })
	return c
}

func newTestSurface(t *testing.T, cfg Config) (*Compositor, *Surface) {
	t.Helper()

	c := newTestCompositor(t, cfg)
	p := c.CreateSurface()
	return c, p.Surface()
}

func argbHeap(heap Heap, w, h int) BufferHeap {
	return BufferHeap{
		Heap:   heap,
		Width:  w,
		Height: h,
		Format: pixfmt.ARGB8888,
	}
}

// waitDirty flushes the compositor until id has been reported dirty.
func waitDirty(t *testing.T, c *Compositor, id uint32) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		dirty, err := c.FlushWait(ctx)
		if err != nil {
			t.Fatalf("surface %v never invalidated: %v", id, err)
		}
		for _, d := range dirty {
			if d == id {
				return
			}
		}
	}
}

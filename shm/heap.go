package shm

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrClosed is returned by operations on a Heap that has been closed.
var ErrClosed = errors.New("heap is closed")

// Heap is a block of shared memory that pixel buffers are carved out
// of by offset. The mapping may be replaced by Resize, so readers that
// hold on to the mapped memory should get it from Pin rather than
// Base.
type Heap struct {
	m    sync.RWMutex
	id   int
	file *os.File
	mmap Mmap
	prot int
}

// NewHeap creates a new writable heap of the given size.
func NewHeap(size int) (h *Heap, err error) {
	file, err := Create("layerbuf-heap")
	if err != nil {
		return nil, fmt.Errorf("create SHM file: %w", err)
	}
	defer func() {
		if err != nil {
			file.Close()
		}
	}()

	err = file.Truncate(int64(size))
	if err != nil {
		return nil, fmt.Errorf("truncate SHM file: %w", err)
	}

	return mapHeap(file, size, unix.PROT_READ|unix.PROT_WRITE)
}

// OpenHeap maps size bytes of a file received from a client. The heap
// takes ownership of file and maps it read-only.
func OpenHeap(file *os.File, size int) (*Heap, error) {
	h, err := mapHeap(file, size, unix.PROT_READ)
	if err != nil {
		file.Close()
		return nil, err
	}
	return h, nil
}

func mapHeap(file *os.File, size int, prot int) (*Heap, error) {
	mmap, err := Map(file, size, prot)
	if err != nil {
		return nil, fmt.Errorf("mmap SHM file: %w", err)
	}

	return &Heap{
		id:   int(file.Fd()),
		file: file,
		mmap: mmap,
		prot: prot,
	}, nil
}

// ID returns an identifier for the heap that is stable for its
// lifetime. It returns -1 once the heap is closed.
func (h *Heap) ID() int {
	h.m.RLock()
	defer h.m.RUnlock()
	return h.id
}

// Size returns the current size of the mapping.
func (h *Heap) Size() int {
	h.m.RLock()
	defer h.m.RUnlock()
	return len(h.mmap)
}

// Base returns the mapped memory.
func (h *Heap) Base() []byte {
	h.m.RLock()
	defer h.m.RUnlock()
	return h.mmap
}

// Pin returns the mapped memory and keeps it mapped until unpin is
// called. Resize and Close block while any mapping is pinned.
func (h *Heap) Pin() (base []byte, unpin func()) {
	h.m.RLock()
	return h.mmap, h.m.RUnlock
}

// File returns the underlying file so that it can be shared with
// another process.
func (h *Heap) File() *os.File {
	return h.file
}

// Resize grows or shrinks the heap, remapping it.
func (h *Heap) Resize(size int) error {
	h.m.Lock()
	defer h.m.Unlock()

	if h.mmap == nil {
		return ErrClosed
	}
	if size == len(h.mmap) {
		return nil
	}

	if h.prot&unix.PROT_WRITE != 0 {
		err := h.file.Truncate(int64(size))
		if err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
	}

	err := h.mmap.Unmap()
	if err != nil {
		return fmt.Errorf("unmap: %w", err)
	}
	h.mmap = nil

	mmap, err := Map(h.file, size, h.prot)
	if err != nil {
		return fmt.Errorf("mmap: %w", err)
	}
	h.mmap = mmap

	return nil
}

// Close unmaps the heap and closes the underlying file. It blocks
// until every pinned mapping has been unpinned.
func (h *Heap) Close() error {
	h.m.Lock()
	defer h.m.Unlock()

	if h.file == nil {
		return nil
	}

	var errs []error
	if h.mmap != nil {
		errs = append(errs, h.mmap.Unmap())
	}
	errs = append(errs, h.file.Close())

	h.mmap = nil
	h.file = nil
	h.id = -1
	return errors.Join(errs...)
}

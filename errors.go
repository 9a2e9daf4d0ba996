package layerbuf

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyBound is returned when a source is requested for a
	// Surface that already has one.
	ErrAlreadyBound = errors.New("surface already has a source")

	ErrInvalidHeap       = errors.New("invalid heap")
	ErrInvalidFormat     = errors.New("invalid pixel format")
	ErrInvalidDimensions = errors.New("invalid buffer dimensions")

	// ErrBufferOutOfRange indicates that a posted frame does not fit
	// inside of its heap. It is never returned to the poster. Such
	// posts are logged and dropped.
	ErrBufferOutOfRange = errors.New("buffer out of heap range")

	// ErrOverlayUnavailable is returned by CreateOverlay when there is
	// no overlay device or it couldn't create a plane.
	ErrOverlayUnavailable = errors.New("overlay unavailable")

	// ErrNoOwner is returned by SurfaceProxy methods called after the
	// Surface that they refer to has been destroyed.
	ErrNoOwner = errors.New("surface no longer exists")
)

// OutOfRangeError describes a frame that does not fit into its heap.
type OutOfRangeError struct {
	Offset   int
	Size     int
	HeapSize int
}

func (err OutOfRangeError) Error() string {
	return fmt.Sprintf("invalid buffer (offset=%v, size=%v, heap size=%v)", err.Offset, err.Size, err.HeapSize)
}

func (err OutOfRangeError) Unwrap() error {
	return ErrBufferOutOfRange
}

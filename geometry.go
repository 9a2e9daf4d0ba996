package layerbuf

import "image"

// Orientation is a combination of flips and a quarter-turn rotation.
type Orientation uint32

const (
	FlipH Orientation = 1 << iota
	FlipV
	Rot90

	Rot0   Orientation = 0
	Rot180             = FlipH | FlipV
	Rot270             = Rot180 | Rot90
)

// Transform maps surface coordinates into display coordinates. The
// math behind it belongs to the windowing system.
type Transform interface {
	Map(image.Rectangle) image.Rectangle
	Orientation() Orientation
}

// Translation is a Transform that only moves things.
type Translation image.Point

func (t Translation) Map(r image.Rectangle) image.Rectangle {
	return r.Add(image.Point(t))
}

func (t Translation) Orientation() Orientation {
	return Rot0
}

// State is the geometry of a Surface. Every change to the pending
// state of a Surface increments its Sequence.
type State struct {
	Sequence    uint32
	Bounds      image.Rectangle
	Orientation Orientation
}

// Transaction flags.
const (
	TransactionNeeded uint32 = 1 << iota
	VisibleRegion
)

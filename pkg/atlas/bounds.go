package atlas

import (
	"image"
	"math"

	"github.com/Faultbox/objminify/pkg/mesh"
)

// Box2 is an axis-aligned bounding box in pixel-space texcoord units
// (origin bottom-left, v growing upward).
type Box2 struct {
	Min, Max [2]float64
	empty    bool
}

// EmptyBox returns a box that contains nothing; Extend on it yields the
// point itself.
func EmptyBox() Box2 {
	return Box2{empty: true}
}

// Empty reports whether no point has been added.
func (b Box2) Empty() bool {
	return b.empty
}

// Extend returns the smallest box containing b and t's (u, v).
func (b Box2) Extend(t mesh.Texcoord) Box2 {
	if b.empty {
		return Box2{Min: [2]float64{t[0], t[1]}, Max: [2]float64{t[0], t[1]}}
	}
	return Box2{
		Min: [2]float64{math.Min(b.Min[0], t[0]), math.Min(b.Min[1], t[1])},
		Max: [2]float64{math.Max(b.Max[0], t[0]), math.Max(b.Max[1], t[1])},
	}
}

// Width returns the horizontal extent.
func (b Box2) Width() float64 {
	return b.Max[0] - b.Min[0]
}

// Height returns the vertical extent.
func (b Box2) Height() float64 {
	return b.Max[1] - b.Min[1]
}

// Region returns the integer pixel rectangle, in image space of a raster
// of the given height (origin top-left), that covers the box. Degenerate
// extents are widened to one pixel.
func (b Box2) Region(textureHeight int) image.Rectangle {
	h := float64(textureHeight)
	r := image.Rect(
		int(math.Floor(b.Min[0])),
		int(math.Floor(h-b.Max[1])),
		int(math.Ceil(b.Max[0])),
		int(math.Ceil(h-b.Min[1])),
	)
	if r.Dx() < 1 {
		r.Max.X = r.Min.X + 1
	}
	if r.Dy() < 1 {
		r.Max.Y = r.Min.Y + 1
	}
	return r
}

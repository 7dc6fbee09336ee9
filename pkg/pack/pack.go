// Package pack places rectangles onto a single canvas without overlap while
// keeping the canvas area small.
package pack

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"
)

// Packing errors.
var (
	ErrEmptyInput  = errors.New("no rectangles to pack")
	ErrInvalidSize = errors.New("rectangle size must be positive")
)

// Pack returns one top-left position per input size, in input order.
// No two placed rectangles overlap. The result is deterministic for a given
// input order.
func Pack(sizes []image.Point) ([]image.Point, error) {
	if len(sizes) == 0 {
		return nil, ErrEmptyInput
	}
	for i, s := range sizes {
		if s.X <= 0 || s.Y <= 0 {
			return nil, fmt.Errorf("%w: rectangle %d is %dx%d", ErrInvalidSize, i, s.X, s.Y)
		}
	}

	order := placementOrder(sizes)

	var (
		best     []image.Point
		bestSize image.Point
	)
	for _, width := range candidateWidths(sizes) {
		positions, extent, ok := packInto(sizes, order, width)
		if !ok {
			continue
		}
		if best == nil || better(extent, bestSize) {
			best, bestSize = positions, extent
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no layout found for %d rectangles", ErrInvalidSize, len(sizes))
	}
	return best, nil
}

// Bounds returns the size of the smallest origin-anchored canvas holding
// every rectangle at its position.
func Bounds(sizes, positions []image.Point) image.Point {
	var extent image.Point
	for i, pos := range positions {
		if x := pos.X + sizes[i].X; x > extent.X {
			extent.X = x
		}
		if y := pos.Y + sizes[i].Y; y > extent.Y {
			extent.Y = y
		}
	}
	return extent
}

// better prefers smaller area, then the squarer canvas.
func better(a, b image.Point) bool {
	areaA, areaB := a.X*a.Y, b.X*b.Y
	if areaA != areaB {
		return areaA < areaB
	}
	return max(a.X, a.Y) < max(b.X, b.Y)
}

// placementOrder sorts indices by decreasing height, then decreasing width.
func placementOrder(sizes []image.Point) []int {
	order := make([]int, len(sizes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := sizes[order[a]], sizes[order[b]]
		if sa.Y != sb.Y {
			return sa.Y > sb.Y
		}
		return sa.X > sb.X
	})
	return order
}

// candidateWidths lists the canvas widths worth trying: the widest
// rectangle, every prefix sum of widths in decreasing order, and a few
// widths around the square root of the total area.
func candidateWidths(sizes []image.Point) []int {
	widths := make([]int, len(sizes))
	area := 0
	for i, s := range sizes {
		widths[i] = s.X
		area += s.X * s.Y
	}
	sort.Sort(sort.Reverse(sort.IntSlice(widths)))

	minWidth := widths[0]
	sum := 0
	for _, w := range widths {
		sum += w
	}

	seen := make(map[int]bool)
	var out []int
	add := func(w int) {
		w = min(max(w, minWidth), sum)
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}

	add(minWidth)
	prefix := 0
	for _, w := range widths {
		prefix += w
		add(prefix)
	}
	root := math.Sqrt(float64(area))
	for _, f := range []float64{1, 1.1, 1.25, 1.5} {
		add(int(math.Ceil(root * f)))
	}
	return out
}

// packInto packs every rectangle into a canvas of the given width and
// unbounded height.
func packInto(sizes []image.Point, order []int, width int) ([]image.Point, image.Point, bool) {
	height := 0
	for _, s := range sizes {
		height += s.Y
	}

	p := &packer{}
	p.reset(image.Point{X: width, Y: height})

	positions := make([]image.Point, len(sizes))
	for _, idx := range order {
		pos, ok := p.tryAdd(sizes[idx])
		if !ok {
			return nil, image.Point{}, false
		}
		positions[idx] = pos
	}
	return positions, p.size, true
}

// packer is a guillotine packer: every placement splits its free space
// into at most two smaller free spaces.
type packer struct {
	spaces []image.Rectangle
	size   image.Point
}

func (p *packer) reset(limit image.Point) {
	p.size = image.Point{}
	p.spaces = append(p.spaces[:0], image.Rectangle{Max: limit})
}

func (p *packer) tryAdd(s image.Point) (image.Point, bool) {
	// Go backwards to prioritize smaller spaces first.
	for i := len(p.spaces) - 1; i >= 0; i-- {
		space := p.spaces[i]
		rightSpace := space.Dx() - s.X
		bottomSpace := space.Dy() - s.Y
		if rightSpace < 0 || bottomSpace < 0 {
			continue
		}

		p.spaces[i] = p.spaces[len(p.spaces)-1]
		p.spaces = p.spaces[:len(p.spaces)-1]

		// Put s in the top left corner and keep the remainders.
		pos := space.Min
		if bottomSpace > 0 {
			p.spaces = append(p.spaces, image.Rectangle{
				Min: image.Point{X: pos.X, Y: pos.Y + s.Y},
				Max: space.Max,
			})
		}
		if rightSpace > 0 {
			p.spaces = append(p.spaces, image.Rectangle{
				Min: image.Point{X: pos.X + s.X, Y: pos.Y},
				Max: image.Point{X: space.Max.X, Y: pos.Y + s.Y},
			})
		}

		if x := pos.X + s.X; x > p.size.X {
			p.size.X = x
		}
		if y := pos.Y + s.Y; y > p.size.Y {
			p.size.Y = y
		}
		return pos, true
	}
	return image.Point{}, false
}

package wavefront

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Faultbox/objminify/pkg/mesh"
)

// Store holds the attribute streams of one geometry file in declaration
// order. Face references index into it 1-based.
type Store struct {
	Positions []mesh.Position
	Texcoords []mesh.Texcoord
	Normals   []mesh.Position
}

// resolveIndex converts a 1-based (or negative, relative to the end) index
// string into a 0-based index into a stream of length n.
func resolveIndex(ref string, n int, stream string) (int, error) {
	i, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("%w: %s index %q is not an integer", ErrSyntax, stream, ref)
	}
	if i < 0 {
		i += n + 1
	}
	if i < 1 || i > n {
		return 0, fmt.Errorf("%w: %s index %s with %d defined", ErrIndexOutOfRange, stream, ref, n)
	}
	return i - 1, nil
}

// Vertex resolves a bare position reference.
func (s *Store) Vertex(ref string) (mesh.Vertex, error) {
	pi, err := resolveIndex(ref, len(s.Positions), "position")
	if err != nil {
		return mesh.Vertex{}, err
	}
	return mesh.NewVertex(s.Positions[pi]), nil
}

// SlashVertex resolves a "p/t", "p/t/n" or "p//n" reference. Empty texcoord
// or normal slots keep the vertex defaults.
func (s *Store) SlashVertex(ref string) (mesh.Vertex, error) {
	parts := strings.Split(ref, "/")
	if len(parts) < 2 || len(parts) > 3 {
		return mesh.Vertex{}, fmt.Errorf("%w: face reference %q", ErrSyntax, ref)
	}

	v, err := s.Vertex(parts[0])
	if err != nil {
		return mesh.Vertex{}, err
	}

	if parts[1] != "" {
		ti, err := resolveIndex(parts[1], len(s.Texcoords), "texcoord")
		if err != nil {
			return mesh.Vertex{}, err
		}
		v.Texcoord = s.Texcoords[ti]
	}

	if len(parts) == 3 && parts[2] != "" {
		ni, err := resolveIndex(parts[2], len(s.Normals), "normal")
		if err != nil {
			return mesh.Vertex{}, err
		}
		v.Normal = s.Normals[ni]
	}

	return v, nil
}

// Face resolves every reference of a face. When slashed is set (the raw line
// contains a '/') all references go through the slash path.
func (s *Store) Face(refs []string, slashed bool) (mesh.Face, error) {
	if len(refs) < 3 {
		return mesh.Face{}, fmt.Errorf("%w: face has %d vertices, need at least 3", ErrSyntax, len(refs))
	}

	face := mesh.Face{Vertices: make([]mesh.Vertex, 0, len(refs))}
	for _, ref := range refs {
		var (
			v   mesh.Vertex
			err error
		)
		if slashed {
			v, err = s.SlashVertex(ref)
		} else {
			v, err = s.Vertex(ref)
		}
		if err != nil {
			return mesh.Face{}, err
		}
		face.Vertices = append(face.Vertices, v)
	}
	return face, nil
}

// parseFloats parses args as floats into dst, leaving trailing entries of
// dst untouched when args is shorter.
func parseFloats(keyword string, args []string, dst []float64) error {
	if len(args) > len(dst) {
		return fmt.Errorf("%w: '%s' expects at most %d values, got %d", ErrSyntax, keyword, len(dst), len(args))
	}
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: '%s' value %q is not a finite number", ErrSyntax, keyword, a)
		}
		dst[i] = f
	}
	return nil
}

// parsePosition parses "x y z [w]". Vertex colors ("x y z r g b [a]") are
// accepted and dropped.
func parsePosition(args []string) (mesh.Position, error) {
	switch len(args) {
	case 3, 4:
	case 6, 7:
		args = args[:3]
	default:
		return mesh.Position{}, fmt.Errorf("%w: 'v' expects 3 or 4 values, got %d", ErrSyntax, len(args))
	}
	p := mesh.NewPosition(0, 0, 0)
	if err := parseFloats("v", args, p[:]); err != nil {
		return mesh.Position{}, err
	}
	return p, nil
}

// parseTexcoord parses "u [v [w]]".
func parseTexcoord(args []string) (mesh.Texcoord, error) {
	if len(args) == 0 {
		return mesh.Texcoord{}, fmt.Errorf("%w: 'vt' expects at least 1 value", ErrSyntax)
	}
	t := mesh.DefaultTexcoord()
	if err := parseFloats("vt", args, t[:]); err != nil {
		return mesh.Texcoord{}, err
	}
	return t, nil
}

// parseNormal parses "x y z".
func parseNormal(args []string) (mesh.Position, error) {
	if len(args) != 3 {
		return mesh.Position{}, fmt.Errorf("%w: 'vn' expects 3 values, got %d", ErrSyntax, len(args))
	}
	n := mesh.NewPosition(0, 0, 0)
	if err := parseFloats("vn", args, n[:3]); err != nil {
		return mesh.Position{}, err
	}
	return n, nil
}

// parseColor parses "r [g [b [a]]]"; missing components stay 1.
func parseColor(keyword string, args []string) (mesh.Color, error) {
	c := mesh.DefaultColor()
	if err := parseFloats(keyword, args, c[:]); err != nil {
		return mesh.Color{}, err
	}
	return c, nil
}

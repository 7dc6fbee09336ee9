// Package mesh provides the in-memory scene model shared by the importer,
// the atlas minifier and the exporter.
package mesh

import (
	"image"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Position is a homogeneous point (x, y, z, w). Normals use the same type.
type Position = mgl64.Vec4

// Texcoord is a texture coordinate (u, v, w).
//
// Between import and export, u and v of a textured mesh are stored in pixel
// space of the owning texture, not in the normalized [0,1] range of the file.
type Texcoord = mgl64.Vec3

// Color is an RGBA color with components in [0,1].
type Color = mgl64.Vec4

// NewPosition returns a position with w = 1.
func NewPosition(x, y, z float64) Position {
	return Position{x, y, z, 1}
}

// DefaultTexcoord is assigned to vertices whose face reference has no texcoord.
func DefaultTexcoord() Texcoord {
	return Texcoord{0, 0, 1}
}

// DefaultNormal is assigned to vertices whose face reference has no normal.
func DefaultNormal() Position {
	return Position{0, 1, 0, 1}
}

// DefaultColor returns opaque white.
func DefaultColor() Color {
	return Color{1, 1, 1, 1}
}

// Vertex is one face corner. Vertices are values: two corners resolving to
// the same attribute indices are still independent copies.
type Vertex struct {
	Position Position
	Texcoord Texcoord
	Normal   Position
}

// NewVertex returns a vertex at p with default texcoord and normal.
func NewVertex(p Position) Vertex {
	return Vertex{
		Position: p,
		Texcoord: DefaultTexcoord(),
		Normal:   DefaultNormal(),
	}
}

// Face is an ordered polygon of at least three vertices.
type Face struct {
	Vertices []Vertex
}

// Texture is a named RGBA raster. The name doubles as the output filename.
type Texture struct {
	Name   string
	Source string // resolved path the raster was loaded from, empty if generated
	Image  *image.RGBA
}

// Width returns the raster width in pixels.
func (t *Texture) Width() int {
	return t.Image.Bounds().Dx()
}

// Height returns the raster height in pixels.
func (t *Texture) Height() int {
	return t.Image.Bounds().Dy()
}

// Material is a named surface description with at most one diffuse texture.
type Material struct {
	Name    string
	Diffuse Color
	Ambient Color
	Texture *Texture
}

// NewMaterial returns a material with default colors and no texture.
func NewMaterial(name string) *Material {
	return &Material{
		Name:    name,
		Diffuse: DefaultColor(),
		Ambient: DefaultColor(),
	}
}

// Textured reports whether the material carries a diffuse texture.
func (m *Material) Textured() bool {
	return m != nil && m.Texture != nil
}

// Mesh is a group of faces sharing one material.
type Mesh struct {
	Material *Material
	Faces    []Face
}

// Model owns the whole scene graph of one pipeline run.
type Model struct {
	Meshes    []*Mesh
	Materials map[string]*Material
	Textures  []*Texture
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		Materials: make(map[string]*Material),
	}
}

// AddMaterial registers m under its name, replacing any previous entry.
func (m *Model) AddMaterial(mat *Material) {
	if m.Materials == nil {
		m.Materials = make(map[string]*Material)
	}
	m.Materials[mat.Name] = mat
}

// FreeTextureName returns name, or name with a numeric suffix before its
// extension when a texture of m already uses it.
func (m *Model) FreeTextureName(name string) string {
	taken := func(n string) bool {
		for _, tex := range m.Textures {
			if tex.Name == n {
				return true
			}
		}
		return false
	}
	if !taken(name) {
		return name
	}
	return UniqueName(name, taken, true)
}

// MaterialNames returns the registered material names in sorted order.
func (m *Model) MaterialNames() []string {
	return sortedKeys(m.Materials)
}

func sortedKeys(materials map[string]*Material) []string {
	names := make([]string, 0, len(materials))
	for name := range materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UsedTextures returns the distinct textures reachable through the meshes,
// in order of first use.
func (m *Model) UsedTextures() []*Texture {
	seen := make(map[*Texture]bool)
	var out []*Texture
	for _, ms := range m.Meshes {
		if !ms.Material.Textured() {
			continue
		}
		tex := ms.Material.Texture
		if seen[tex] {
			continue
		}
		seen[tex] = true
		out = append(out, tex)
	}
	return out
}

// Stats summarizes the size of a model.
type Stats struct {
	Meshes    int
	Faces     int
	Vertices  int
	Materials int
	Textures  int
}

// Stats counts meshes, faces and face corners.
func (m *Model) Stats() Stats {
	s := Stats{
		Meshes:    len(m.Meshes),
		Materials: len(m.Materials),
		Textures:  len(m.Textures),
	}
	for _, ms := range m.Meshes {
		s.Faces += len(ms.Faces)
		for _, f := range ms.Faces {
			s.Vertices += len(f.Vertices)
		}
	}
	return s
}

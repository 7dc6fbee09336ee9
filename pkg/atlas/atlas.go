// Package atlas crops every texture of a model to its used region, packs the
// regions into one atlas raster and remaps texcoords into atlas space.
package atlas

import (
	"errors"
	"fmt"
	"image"

	"github.com/Faultbox/objminify/pkg/mesh"
	"github.com/Faultbox/objminify/pkg/pack"
	"github.com/Faultbox/objminify/pkg/raster"
)

// ErrMissingTexture is returned in strict mode for a mesh whose material has
// no texture.
var ErrMissingTexture = errors.New("mesh material has no texture")

// Default names of the combined texture and material.
const (
	DefaultTextureName  = "combined.png"
	DefaultMaterialName = "combined"
)

// Options configure Minify.
type Options struct {
	TextureName  string
	MaterialName string

	// Strict fails on untextured meshes instead of leaving them untouched.
	Strict bool

	// Padding widens every cropped region by this many source pixels on
	// each side, so that filtering at region borders samples real texels.
	Padding int
}

// Placement records where one source texture ended up in the atlas.
type Placement struct {
	Texture *mesh.Texture
	Bounds  Box2            // used texcoords, pixel space
	Region  image.Rectangle // cropped source pixels, image space
	Offset  image.Point     // top-left of the region in the atlas
}

// Layout describes a finished atlas.
type Layout struct {
	Size       image.Point
	Placements []Placement
	Skipped    int // untextured meshes left untouched
}

// Minify rewrites model in place so that every textured mesh uses one
// combined material whose texture is the packed atlas.
//
// Textures are identified by object, not by name, so two different rasters
// sharing a name are packed separately. Meshes without a texture keep their
// material unless opts.Strict is set. Texture and material objects from
// before the call must not be relied upon afterwards.
func Minify(model *mesh.Model, opts Options) (*Layout, error) {
	if opts.TextureName == "" {
		opts.TextureName = DefaultTextureName
	}
	if opts.MaterialName == "" {
		opts.MaterialName = DefaultMaterialName
	}

	layout := &Layout{}
	placements, err := usedRegions(model, opts, layout)
	if err != nil {
		return nil, err
	}
	if len(placements) == 0 {
		return layout, nil
	}

	sizes := make([]image.Point, len(placements))
	for i, p := range placements {
		sizes[i] = p.Region.Size()
	}
	offsets, err := pack.Pack(sizes)
	if err != nil {
		return nil, fmt.Errorf("packing %d regions: %w", len(sizes), err)
	}
	for i := range placements {
		placements[i].Offset = offsets[i]
	}
	layout.Size = pack.Bounds(sizes, offsets)
	layout.Placements = placements

	canvas := raster.New(layout.Size.X, layout.Size.Y)
	for _, p := range placements {
		raster.Paste(canvas, raster.Crop(p.Texture.Image, p.Region), p.Offset)
	}

	combined := &mesh.Texture{Name: opts.TextureName, Image: canvas}
	material := mesh.NewMaterial(opts.MaterialName)
	material.Texture = combined

	remap(model, placements, layout.Size.Y)

	materials := map[string]*mesh.Material{material.Name: material}
	taken := func(n string) bool { _, ok := materials[n]; return ok }
	for _, m := range model.Meshes {
		if m.Material.Textured() {
			m.Material = material
			continue
		}
		// An untextured material never shadows the combined one.
		mat := m.Material
		if prev, ok := materials[mat.Name]; ok && prev != mat {
			mat.Name = mesh.UniqueName(mat.Name, taken, false)
		}
		materials[mat.Name] = mat
	}
	model.Materials = materials
	model.Textures = []*mesh.Texture{combined}

	return layout, nil
}

// usedRegions folds the texcoords of every textured mesh into one bounding
// box per texture, in order of first use.
func usedRegions(model *mesh.Model, opts Options, layout *Layout) ([]Placement, error) {
	index := make(map[*mesh.Texture]int)
	var placements []Placement

	for mi, m := range model.Meshes {
		if !m.Material.Textured() {
			if opts.Strict {
				return nil, fmt.Errorf("%w: mesh %d uses material %q", ErrMissingTexture, mi, m.Material.Name)
			}
			layout.Skipped++
			continue
		}

		tex := m.Material.Texture
		i, ok := index[tex]
		if !ok {
			i = len(placements)
			index[tex] = i
			placements = append(placements, Placement{Texture: tex, Bounds: EmptyBox()})
		}

		box := placements[i].Bounds
		for _, face := range m.Faces {
			for _, v := range face.Vertices {
				box = box.Extend(v.Texcoord)
			}
		}
		placements[i].Bounds = box
	}

	// Textures reached only through meshes without vertices have nothing
	// to crop.
	used := placements[:0]
	for _, p := range placements {
		if p.Bounds.Empty() {
			continue
		}
		p.Region = p.Bounds.Region(p.Texture.Height()).Inset(-opts.Padding)
		used = append(used, p)
	}
	return used, nil
}

// remap moves every texcoord of a textured mesh from its source texture's
// pixel space into atlas pixel space.
//
// Texcoords grow upward from the bottom-left corner while regions and
// offsets are in image space growing downward, so the vertical origin of a
// region is h - Region.Max.Y in texcoord space and its placed bottom edge is
// atlasHeight - Offset.Y - Region.Dy().
func remap(model *mesh.Model, placements []Placement, atlasHeight int) {
	byTexture := make(map[*mesh.Texture]*Placement, len(placements))
	for i := range placements {
		byTexture[placements[i].Texture] = &placements[i]
	}

	for _, m := range model.Meshes {
		if !m.Material.Textured() {
			continue
		}
		p, ok := byTexture[m.Material.Texture]
		if !ok {
			continue
		}

		h := p.Texture.Height()
		du := float64(p.Offset.X - p.Region.Min.X)
		dv := float64((atlasHeight - p.Offset.Y - p.Region.Dy()) - (h - p.Region.Max.Y))

		for fi := range m.Faces {
			verts := m.Faces[fi].Vertices
			for vi := range verts {
				verts[vi].Texcoord[0] += du
				verts[vi].Texcoord[1] += dv
			}
		}
	}
}

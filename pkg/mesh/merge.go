package mesh

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Merge combines several models into a new one. Meshes keep their order.
//
// Materials and textures are shared by pointer. When two different materials
// (or two textures loaded from different files) carry the same name, the later
// one is renamed with a numeric suffix so that names stay unique keys and the
// exporter does not overwrite one texture file with another. The input models
// are consumed: renames and texture redirects are applied to their objects.
func Merge(models ...*Model) *Model {
	out := NewModel()

	texNames := make(map[string]*Texture)
	texSeen := make(map[*Texture]bool)
	sources := make(map[string]*Texture)

	for _, src := range models {
		if src == nil {
			continue
		}
		for _, tex := range src.Textures {
			if texSeen[tex] {
				continue
			}
			if tex.Source != "" {
				if prev, ok := sources[tex.Source]; ok {
					// Same file loaded by two parses: keep one raster.
					redirectTexture(src, tex, prev)
					continue
				}
				sources[tex.Source] = tex
			}
			if _, ok := texNames[tex.Name]; ok {
				tex.Name = UniqueName(tex.Name, func(n string) bool { _, ok := texNames[n]; return ok }, true)
			}
			texNames[tex.Name] = tex
			texSeen[tex] = true
			out.Textures = append(out.Textures, tex)
		}

		for _, name := range sortedKeys(src.Materials) {
			mat := src.Materials[name]
			if prev, ok := out.Materials[mat.Name]; ok && prev != mat {
				mat.Name = UniqueName(mat.Name, func(n string) bool { _, ok := out.Materials[n]; return ok }, false)
			}
			out.Materials[mat.Name] = mat
		}

		out.Meshes = append(out.Meshes, src.Meshes...)
	}

	return out
}

// redirectTexture points every material of m using from at to instead.
func redirectTexture(m *Model, from, to *Texture) {
	for _, mat := range m.Materials {
		if mat.Texture == from {
			mat.Texture = to
		}
	}
	for _, ms := range m.Meshes {
		if ms.Material != nil && ms.Material.Texture == from {
			ms.Material.Texture = to
		}
	}
}

// UniqueName appends _2, _3, ... to name until taken reports false. File
// names (keepExt) keep their extension after the suffix.
func UniqueName(name string, taken func(string) bool, keepExt bool) string {
	stem, ext := name, ""
	if keepExt {
		ext = filepath.Ext(name)
		stem = strings.TrimSuffix(name, ext)
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !taken(candidate) {
			return candidate
		}
	}
}

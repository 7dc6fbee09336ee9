package wavefront

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/objminify/pkg/mesh"
	"github.com/Faultbox/objminify/pkg/raster"
)

// materialContext is the parser state of one material library.
type materialContext struct {
	dir      string
	model    *mesh.Model
	textures map[string]*mesh.Texture
	current  *mesh.Material
}

// ReadMaterials parses a material library from src into model. Textures are
// resolved against dir.
func ReadMaterials(src io.Reader, dir string, model *mesh.Model, opts Options) error {
	ctx := &materialContext{
		dir:      dir,
		model:    model,
		textures: make(map[string]*mesh.Texture),
	}
	return scanLines(src, "<materials>", opts, ctx.handle)
}

// loadMaterials parses the material library at path into the geometry
// file's model, sharing its texture cache.
func (ctx *geometryContext) loadMaterials(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	mctx := &materialContext{
		dir:      filepath.Dir(path),
		model:    ctx.model,
		textures: ctx.textures,
	}
	return scanLines(f, path, ctx.opts, mctx.handle)
}

// handle applies one material line.
func (ctx *materialContext) handle(line string) error {
	d := tokenize(line)

	switch d.kind {
	case dirNewMaterial:
		if d.rest == "" {
			return fmt.Errorf("%w: 'newmtl' without a name", ErrSyntax)
		}
		ctx.current = mesh.NewMaterial(d.rest)
		ctx.model.AddMaterial(ctx.current)

	case dirDiffuse, dirAmbient:
		if ctx.current == nil {
			return fmt.Errorf("%w: '%s' before 'newmtl'", ErrNoActiveMaterial, d.keyword)
		}
		c, err := parseColor(d.keyword, d.args)
		if err != nil {
			return err
		}
		if d.kind == dirDiffuse {
			ctx.current.Diffuse = c
		} else {
			ctx.current.Ambient = c
		}

	case dirDiffuseMap:
		if ctx.current == nil {
			return fmt.Errorf("%w: 'map_Kd' before 'newmtl'", ErrNoActiveMaterial)
		}
		if d.rest == "" {
			return fmt.Errorf("%w: 'map_Kd' without a path", ErrSyntax)
		}
		tex, err := ctx.loadTexture(resolvePath(ctx.dir, d.rest))
		if err != nil {
			return err
		}
		ctx.current.Texture = tex

	default:
		// other material parameters (Ks, Ns, illum, map_Bump, ...) are ignored
	}
	return nil
}

// loadTexture decodes the image at path once per parse and registers it
// with the model. The texture is named after the file, made unique within
// the model and switched to PNG when its format cannot be written back.
func (ctx *materialContext) loadTexture(path string) (*mesh.Texture, error) {
	if tex, ok := ctx.textures[path]; ok {
		return tex, nil
	}

	img, err := raster.Open(path)
	if err != nil {
		return nil, err
	}
	tex := &mesh.Texture{
		Name:   ctx.model.FreeTextureName(raster.EncodableName(filepath.Base(path))),
		Source: path,
		Image:  img,
	}
	ctx.textures[path] = tex
	ctx.model.Textures = append(ctx.model.Textures, tex)
	return tex, nil
}

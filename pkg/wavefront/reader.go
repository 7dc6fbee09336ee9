// Package wavefront reads and writes Wavefront OBJ geometry together with its
// MTL material library.
//
// Texture coordinates of textured meshes are kept in pixel space of their
// texture between Read and Write: the reader multiplies them by the texture
// size and the writer divides them back.
package wavefront

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/objminify/pkg/encoding"
	"github.com/Faultbox/objminify/pkg/mesh"
)

// maxLineSize bounds a single line of geometry text.
const maxLineSize = 16 * 1024 * 1024

// Options control how geometry and material text is read.
type Options struct {
	// Encoding names the fallback text encoding (see package encoding).
	// Empty means UTF-8.
	Encoding string
}

// geometryContext is the parser state threaded through the lines of one
// geometry file.
type geometryContext struct {
	path     string
	dir      string
	opts     Options
	model    *mesh.Model
	store    *Store
	textures map[string]*mesh.Texture // by resolved path
	current  *mesh.Mesh
	meshes   []*mesh.Mesh // meshes created by this file
}

// ReadFile parses the geometry file at path and every material library it
// references. Relative paths are resolved against the file's directory.
func ReadFile(path string, opts Options) (*mesh.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return read(f, path, filepath.Dir(path), opts)
}

// Read parses geometry text from src. Material libraries and textures are
// resolved against dir.
func Read(src io.Reader, dir string, opts Options) (*mesh.Model, error) {
	return read(src, "<input>", dir, opts)
}

func read(src io.Reader, path, dir string, opts Options) (*mesh.Model, error) {
	ctx := &geometryContext{
		path:     path,
		dir:      dir,
		opts:     opts,
		model:    mesh.NewModel(),
		store:    &Store{},
		textures: make(map[string]*mesh.Texture),
	}

	err := scanLines(src, path, opts, func(line string) error {
		return ctx.handle(line)
	})
	if err != nil {
		return nil, err
	}

	ctx.toPixelSpace()
	return ctx.model, nil
}

// scanLines feeds every decoded line of src to fn, wrapping failures in a
// LineError.
func scanLines(src io.Reader, path string, opts Options, fn func(line string) error) error {
	r, err := encoding.NewReader(src, opts.Encoding)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if err := fn(scanner.Text()); err != nil {
			return &LineError{Path: path, Line: lineNum, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// handle applies one geometry line.
func (ctx *geometryContext) handle(line string) error {
	d := tokenize(line)

	switch d.kind {
	case dirMaterialLib:
		if d.rest == "" {
			return fmt.Errorf("%w: 'mtllib' without a path", ErrSyntax)
		}
		return ctx.loadMaterials(resolvePath(ctx.dir, d.rest))

	case dirVertex:
		p, err := parsePosition(d.args)
		if err != nil {
			return err
		}
		ctx.store.Positions = append(ctx.store.Positions, p)

	case dirTexcoord:
		t, err := parseTexcoord(d.args)
		if err != nil {
			return err
		}
		ctx.store.Texcoords = append(ctx.store.Texcoords, t)

	case dirNormal:
		n, err := parseNormal(d.args)
		if err != nil {
			return err
		}
		ctx.store.Normals = append(ctx.store.Normals, n)

	case dirUseMaterial:
		mat, ok := ctx.model.Materials[d.rest]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownMaterial, d.rest)
		}
		ctx.current = &mesh.Mesh{Material: mat}
		ctx.meshes = append(ctx.meshes, ctx.current)
		ctx.model.Meshes = append(ctx.model.Meshes, ctx.current)

	case dirFace:
		if ctx.current == nil {
			// faces before any usemtl are dropped
			return nil
		}
		face, err := ctx.store.Face(d.args, strings.Contains(d.rest, "/"))
		if err != nil {
			return err
		}
		ctx.current.Faces = append(ctx.current.Faces, face)

	case dirObject, dirBlank, dirComment:
		// one object per file; 'o' does not start a new group

	default:
		// unsupported directives (g, s, l, vp, ...) are ignored
	}
	return nil
}

// toPixelSpace scales the texcoords of every textured mesh of this file by
// its texture size. Untextured meshes keep normalized values.
func (ctx *geometryContext) toPixelSpace() {
	for _, m := range ctx.meshes {
		if !m.Material.Textured() {
			continue
		}
		w := float64(m.Material.Texture.Width())
		h := float64(m.Material.Texture.Height())
		for fi := range m.Faces {
			verts := m.Faces[fi].Vertices
			for vi := range verts {
				verts[vi].Texcoord[0] *= w
				verts[vi].Texcoord[1] *= h
			}
		}
	}
}

// resolvePath joins a path found in a file with the file's directory.
// Backslash separators written by Windows tools are accepted.
func resolvePath(dir, ref string) string {
	ref = filepath.FromSlash(strings.ReplaceAll(ref, `\`, "/"))
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(dir, ref)
}

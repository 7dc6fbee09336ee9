package wavefront

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/objminify/pkg/mesh"
	"github.com/Faultbox/objminify/pkg/raster"
)

// Mode selects how vertices are written.
type Mode int

const (
	// Dedup writes each distinct attribute value once and shares indices.
	Dedup Mode = iota
	// Flat writes a fresh v/vt/vn triple for every face corner.
	Flat
)

// ErrUnknownMode is returned by ParseMode.
var ErrUnknownMode = errors.New("unknown export mode")

// DefaultMaterialFile is the material library name used when none is set.
const DefaultMaterialFile = "material.mtl"

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Dedup:
		return "dedup"
	case Flat:
		return "flat"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "dedup" or "flat".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "dedup", "":
		return Dedup, nil
	case "flat", "fast":
		return Flat, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Exporter writes a model as geometry, material library and texture files.
type Exporter struct {
	Mode Mode
	// MaterialFile is the material library filename, written next to the
	// geometry file.
	MaterialFile string
}

// Export writes model to the geometry file at path. The directory is created
// if needed; textures and the material library are written into it.
func (e *Exporter) Export(model *mesh.Model, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	for _, tex := range model.Textures {
		if err := raster.Save(filepath.Join(dir, tex.Name), tex.Image); err != nil {
			return fmt.Errorf("writing texture %s: %w", tex.Name, err)
		}
	}

	mtlName := e.MaterialFile
	if mtlName == "" {
		mtlName = DefaultMaterialFile
	}
	if err := writeFile(filepath.Join(dir, mtlName), func(w io.Writer) error {
		return WriteMaterials(w, model)
	}); err != nil {
		return err
	}

	return writeFile(path, func(w io.Writer) error {
		return WriteGeometry(w, model, e.Mode, mtlName, filepath.Base(path))
	})
}

func writeFile(path string, fn func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteMaterials writes one newmtl block per material, sorted by name.
func WriteMaterials(w io.Writer, model *mesh.Model) error {
	lw := &lineWriter{w: w}
	for _, name := range model.MaterialNames() {
		mat := model.Materials[name]
		lw.printf("newmtl %s", name)
		lw.printf("Kd %s", formatFloats(mat.Diffuse[:]))
		lw.printf("Ka %s", formatFloats(mat.Ambient[:]))
		if mat.Texture != nil {
			lw.printf("map_Kd %s", mat.Texture.Name)
		}
	}
	return lw.err
}

// WriteGeometry writes the geometry text of model in the given mode.
// mtllib and object name the material library and the object.
func WriteGeometry(w io.Writer, model *mesh.Model, mode Mode, mtllib, object string) error {
	lw := &lineWriter{w: w}
	lw.printf("mtllib %s", mtllib)
	lw.printf("o %s", object)

	switch mode {
	case Flat:
		writeFlat(lw, model)
	case Dedup:
		writeDedup(lw, model)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownMode, mode)
	}
	return lw.err
}

// writeFlat emits a v/vt/vn triple per face corner, sharing one counter
// across the three streams.
func writeFlat(lw *lineWriter, model *mesh.Model) {
	index := 1
	var refs []string
	for _, m := range model.Meshes {
		lw.printf("usemtl %s", m.Material.Name)
		for _, face := range m.Faces {
			refs = refs[:0]
			for _, v := range face.Vertices {
				lw.printf("v %s", formatPosition(v.Position))
				lw.printf("vt %s", formatTexcoord(normalized(m.Material, v.Texcoord)))
				lw.printf("vn %s", formatFloats(v.Normal[:3]))
				refs = append(refs, fmt.Sprintf("%d/%d/%d", index, index, index))
				index++
			}
			lw.printf("f %s", strings.Join(refs, " "))
		}
	}
}

// writeDedup emits every distinct position, texcoord and normal once, in
// first-seen order, then faces referencing them.
//
// Values are keyed by their exact bit pattern: values that differ only by
// rounding are not merged.
func writeDedup(lw *lineWriter, model *mesh.Model) {
	positions := newIndexer[[4]uint64]()
	texcoords := newIndexer[[3]uint64]()
	normals := newIndexer[[3]uint64]()

	for _, m := range model.Meshes {
		for _, face := range m.Faces {
			for _, v := range face.Vertices {
				positions.add(bits4(v.Position))
				texcoords.add(bits3(normalized(m.Material, v.Texcoord)))
				normals.add(bits3(mesh.Texcoord(v.Normal.Vec3())))
			}
		}
	}

	for _, k := range positions.order {
		lw.printf("v %s", formatPosition(mesh.Position(floats4(k))))
	}
	for _, k := range texcoords.order {
		lw.printf("vt %s", formatTexcoord(mesh.Texcoord(floats3(k))))
	}
	for _, k := range normals.order {
		n := floats3(k)
		lw.printf("vn %s", formatFloats(n[:]))
	}

	var (
		current *mesh.Material
		refs    []string
	)
	for _, m := range model.Meshes {
		if m.Material != current {
			lw.printf("usemtl %s", m.Material.Name)
			current = m.Material
		}
		for _, face := range m.Faces {
			refs = refs[:0]
			for _, v := range face.Vertices {
				refs = append(refs, fmt.Sprintf("%d/%d/%d",
					positions.index[bits4(v.Position)],
					texcoords.index[bits3(normalized(m.Material, v.Texcoord))],
					normals.index[bits3(mesh.Texcoord(v.Normal.Vec3()))],
				))
			}
			lw.printf("f %s", strings.Join(refs, " "))
		}
	}
}

// normalized converts a pixel-space texcoord back to [0,1] space. Texcoords
// of untextured materials are already normalized.
func normalized(mat *mesh.Material, t mesh.Texcoord) mesh.Texcoord {
	if !mat.Textured() {
		return t
	}
	return mesh.Texcoord{
		t[0] / float64(mat.Texture.Width()),
		t[1] / float64(mat.Texture.Height()),
		t[2],
	}
}

// indexer assigns 1-based indices to keys in first-seen order.
type indexer[K comparable] struct {
	index map[K]int
	order []K
}

func newIndexer[K comparable]() *indexer[K] {
	return &indexer[K]{index: make(map[K]int)}
}

func (x *indexer[K]) add(k K) {
	if _, ok := x.index[k]; ok {
		return
	}
	x.order = append(x.order, k)
	x.index[k] = len(x.order)
}

func bits4(v [4]float64) [4]uint64 {
	return [4]uint64{math.Float64bits(v[0]), math.Float64bits(v[1]), math.Float64bits(v[2]), math.Float64bits(v[3])}
}

func bits3(v [3]float64) [3]uint64 {
	return [3]uint64{math.Float64bits(v[0]), math.Float64bits(v[1]), math.Float64bits(v[2])}
}

func floats4(k [4]uint64) [4]float64 {
	return [4]float64{math.Float64frombits(k[0]), math.Float64frombits(k[1]), math.Float64frombits(k[2]), math.Float64frombits(k[3])}
}

func floats3(k [3]uint64) [3]float64 {
	return [3]float64{math.Float64frombits(k[0]), math.Float64frombits(k[1]), math.Float64frombits(k[2])}
}

// formatPosition writes "x y z", adding w only when it is not 1.
func formatPosition(p mesh.Position) string {
	if p[3] == 1 {
		return formatFloats(p[:3])
	}
	return formatFloats(p[:])
}

// formatTexcoord writes "u v", adding w only when it is not 1.
func formatTexcoord(t mesh.Texcoord) string {
	if t[2] == 1 {
		return formatFloats(t[:2])
	}
	return formatFloats(t[:])
}

// formatFloats uses the shortest representation that parses back to the
// same value.
func formatFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

// lineWriter keeps the first write error so callers can check once.
type lineWriter struct {
	w   io.Writer
	err error
}

func (lw *lineWriter) printf(format string, args ...any) {
	if lw.err != nil {
		return
	}
	_, lw.err = fmt.Fprintf(lw.w, format+"\n", args...)
}

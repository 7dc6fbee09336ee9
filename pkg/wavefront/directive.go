package wavefront

import "strings"

// directiveKind enumerates the geometry and material directives this
// package understands. Anything else tokenizes to dirUnknown.
type directiveKind int

const (
	dirUnknown directiveKind = iota
	dirBlank
	dirComment

	// geometry file
	dirMaterialLib
	dirObject
	dirVertex
	dirTexcoord
	dirNormal
	dirUseMaterial
	dirFace

	// material file
	dirNewMaterial
	dirDiffuse
	dirAmbient
	dirDiffuseMap
)

var keywords = map[string]directiveKind{
	"mtllib": dirMaterialLib,
	"o":      dirObject,
	"v":      dirVertex,
	"vt":     dirTexcoord,
	"vn":     dirNormal,
	"usemtl": dirUseMaterial,
	"f":      dirFace,
	"newmtl": dirNewMaterial,
	"Kd":     dirDiffuse,
	"Ka":     dirAmbient,
	"map_Kd": dirDiffuseMap,
}

// directive is one tokenized line.
type directive struct {
	kind    directiveKind
	keyword string
	args    []string // whitespace separated arguments
	rest    string   // raw argument text, used for names and paths with spaces
}

// tokenize splits a line into its keyword and arguments.
func tokenize(line string) directive {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return directive{kind: dirBlank}
	case strings.HasPrefix(line, "#"):
		return directive{kind: dirComment, rest: strings.TrimSpace(line[1:])}
	}

	keyword, rest := line, ""
	if i := strings.IndexAny(line, " \t"); i != -1 {
		keyword = line[:i]
		rest = strings.TrimSpace(line[i+1:])
	}

	kind, ok := keywords[keyword]
	if !ok {
		kind = dirUnknown
	}
	return directive{
		kind:    kind,
		keyword: keyword,
		args:    strings.Fields(rest),
		rest:    rest,
	}
}

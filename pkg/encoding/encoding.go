// Package encoding provides text decoding for geometry and material files
// written by tools that do not emit plain UTF-8.
package encoding

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned for an unrecognized encoding name.
var ErrUnknownEncoding = errors.New("unknown text encoding")

// Names of the supported source encodings.
const (
	UTF8     = "utf-8"
	EUCKR    = "euc-kr"
	ShiftJIS = "shift_jis"
)

// Lookup returns the encoding registered under name. The empty name is UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	switch normalize(name) {
	case "", "utf8":
		return unicode.UTF8, nil
	case "euckr", "cp949":
		return korean.EUCKR, nil
	case "shiftjis", "sjis", "cp932":
		return japanese.ShiftJIS, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}

// NewReader wraps r so that it yields UTF-8 text.
//
// A leading byte order mark always wins: UTF-8 and UTF-16 files with a BOM
// are decoded as such and the BOM is stripped. Otherwise the text is decoded
// with the named fallback encoding.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	fallback, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, unicode.BOMOverride(fallback.NewDecoder())), nil
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", "", "_", "").Replace(name)
}

// Package raster provides the image codec used for textures: decoding into
// RGBA, cropping, pasting and encoding by file extension.
package raster

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned when encoding to an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// JPEGQuality is used when a texture is saved with a .jpg/.jpeg name.
const JPEGQuality = 95

// New returns a blank (transparent) RGBA canvas.
func New(width, height int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// Open reads and decodes the image file at path.
// TGA is detected by extension since it has no magic number.
func Open(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		return img, nil
	}
	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// Decode decodes any registered format into an RGBA raster.
func Decode(r io.Reader) (*image.RGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return ToRGBA(img), nil
}

// ToRGBA converts img to an RGBA raster whose bounds start at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := New(b.Dx(), b.Dy())
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// Crop copies region r of src into a new raster of r's size. Parts of r
// outside src stay transparent.
func Crop(src image.Image, r image.Rectangle) *image.RGBA {
	dst := New(r.Dx(), r.Dy())
	draw.Copy(dst, image.Point{}, src, r, draw.Src, nil)
	return dst
}

// Paste writes src into dst with src's top-left corner at at.
func Paste(dst draw.Image, src image.Image, at image.Point) {
	draw.Copy(dst, at, src, src.Bounds(), draw.Src, nil)
}

// Save encodes img into path, choosing the format from the extension.
func Save(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := Encode(w, img, filepath.Ext(path)); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// CanEncode reports whether Save supports the extension of name.
func CanEncode(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", "", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".tga":
		return true
	}
	return false
}

// EncodableName returns name unchanged when Save can write it, otherwise
// name with its extension replaced by .png.
func EncodableName(name string) string {
	if CanEncode(name) {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
}

// Encode writes img in the format named by ext (".png", ".jpg", ...).
// An empty extension selects PNG.
func Encode(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".png", "":
		return png.Encode(w, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case ".tga":
		return EncodeTGA(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

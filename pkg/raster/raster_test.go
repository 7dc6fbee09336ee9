package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

// gradient returns a raster whose pixel (x, y) encodes its coordinates.
func gradient(w, h int) *image.RGBA {
	img := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	return img
}

func TestCrop(t *testing.T) {
	src := gradient(16, 8)
	out := Crop(src, image.Rect(4, 2, 10, 5))

	if out.Bounds() != image.Rect(0, 0, 6, 3) {
		t.Fatalf("expected 6x3 crop at origin, got %v", out.Bounds())
	}
	if c := out.RGBAAt(0, 0); c.R != 4 || c.G != 2 {
		t.Errorf("expected top-left pixel from (4,2), got %v", c)
	}
	if c := out.RGBAAt(5, 2); c.R != 9 || c.G != 4 {
		t.Errorf("expected bottom-right pixel from (9,4), got %v", c)
	}
}

func TestCrop_OutsideSourceIsTransparent(t *testing.T) {
	src := gradient(4, 4)
	out := Crop(src, image.Rect(2, 2, 6, 6))

	if c := out.RGBAAt(0, 0); c.A != 255 || c.R != 2 {
		t.Errorf("expected source pixel inside bounds, got %v", c)
	}
	if c := out.RGBAAt(3, 3); c.A != 0 {
		t.Errorf("expected transparent pixel outside source, got %v", c)
	}
}

func TestPaste(t *testing.T) {
	dst := New(10, 10)
	Paste(dst, gradient(3, 2), image.Pt(5, 6))

	if c := dst.RGBAAt(5, 6); c.A != 255 || c.R != 0 || c.G != 0 {
		t.Errorf("expected pasted origin pixel at (5,6), got %v", c)
	}
	if c := dst.RGBAAt(7, 7); c.R != 2 || c.G != 1 {
		t.Errorf("expected pasted pixel (2,1) at (7,7), got %v", c)
	}
	if c := dst.RGBAAt(4, 6); c.A != 0 {
		t.Errorf("expected untouched pixel left of paste, got %v", c)
	}
}

func TestSaveOpen_Formats(t *testing.T) {
	dir := t.TempDir()
	src := gradient(8, 5)

	// jpeg is lossy and only checked for dimensions
	for _, name := range []string{"a.png", "a.bmp", "a.tiff", "a.tga", "a.jpg"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Save(path, src); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			got, err := Open(path)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if got.Bounds() != src.Bounds() {
				t.Fatalf("expected bounds %v, got %v", src.Bounds(), got.Bounds())
			}
			if filepath.Ext(name) == ".jpg" {
				return
			}
			if !bytes.Equal(got.Pix, src.Pix) {
				t.Error("decoded pixels differ from saved pixels")
			}
		})
	}
}

func TestEncode_Unsupported(t *testing.T) {
	err := Encode(&bytes.Buffer{}, New(1, 1), ".xyz")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestCanEncode(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.png", true},
		{"a.JPG", true},
		{"a.tga", true},
		{"a.tiff", true},
		{"a", true},
		{"a.webp", false},
		{"a.gif", false},
	}
	for _, tt := range tests {
		if got := CanEncode(tt.name); got != tt.want {
			t.Errorf("CanEncode(%q): expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestEncodableName(t *testing.T) {
	if got := EncodableName("wall.bmp"); got != "wall.bmp" {
		t.Errorf("expected wall.bmp, got %s", got)
	}
	if got := EncodableName("wall.webp"); got != "wall.png" {
		t.Errorf("expected wall.png, got %s", got)
	}
}

func TestDecodeTGA_BottomUp(t *testing.T) {
	// 2x2, 24-bit, bottom-to-top rows
	data := make([]byte, 18)
	data[2] = tgaTypeUncompressed
	data[12], data[14] = 2, 2
	data[16] = 24
	data = append(data,
		0, 0, 255, 0, 255, 0, // bottom row: red, green
		255, 0, 0, 255, 255, 255, // top row: blue, white
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}
	if c := img.RGBAAt(0, 1); c != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("expected red at bottom-left, got %v", c)
	}
	if c := img.RGBAAt(0, 0); c != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("expected blue at top-left, got %v", c)
	}
}

func TestDecodeTGA_RLE(t *testing.T) {
	// 3x1, 32-bit, top-to-bottom, one run of 3 pixels
	data := make([]byte, 18)
	data[2] = tgaTypeRLE
	data[12], data[14] = 3, 1
	data[16] = 32
	data[17] = 0x20
	data = append(data, 0x80|2, 10, 20, 30, 255)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}
	for x := 0; x < 3; x++ {
		if c := img.RGBAAt(x, 0); c != (color.RGBA{R: 30, G: 20, B: 10, A: 255}) {
			t.Errorf("pixel %d: expected run color, got %v", x, c)
		}
	}
}

func TestDecodeTGA_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"truncated header", []byte{0, 0, 2}},
		{"color mapped", append([]byte{0, 1, 1}, make([]byte, 15)...)},
		{"grayscale", append([]byte{0, 0, 3}, make([]byte, 15)...)},
	}
	for _, tt := range tests {
		if _, err := DecodeTGA(tt.data); !errors.Is(err, ErrUnsupportedTGA) {
			t.Errorf("%s: expected ErrUnsupportedTGA, got %v", tt.name, err)
		}
	}
}

package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

// TGA image type constants.
const (
	tgaTypeUncompressed = 2  // Uncompressed true-color
	tgaTypeRLE          = 10 // RLE compressed true-color
)

// ErrUnsupportedTGA is returned for TGA variants other than 24/32-bit
// true-color, raw or RLE.
var ErrUnsupportedTGA = errors.New("unsupported TGA")

// tgaPixels walks the pixel stream of a TGA file in file order and stores
// each pixel at its image-space position.
type tgaPixels struct {
	img           *image.RGBA
	width, height int
	bytesPerPixel int
	topToBottom   bool
	next          int
}

func (p *tgaPixels) done() bool {
	return p.next >= p.width*p.height
}

// read decodes one BGR(A) pixel from data.
func (p *tgaPixels) read(data []byte) color.RGBA {
	c := color.RGBA{R: data[2], G: data[1], B: data[0], A: 255}
	if p.bytesPerPixel == 4 {
		c.A = data[3]
	}
	return c
}

// put stores c at the next pixel position. Alpha is premultiplied because
// image.RGBA stores premultiplied color.
func (p *tgaPixels) put(c color.RGBA) {
	x := p.next % p.width
	y := p.next / p.width
	if !p.topToBottom {
		y = p.height - 1 - y
	}
	p.img.Set(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A})
	p.next++
}

// DecodeTGA decodes an uncompressed (type 2) or RLE compressed (type 10)
// true-color TGA image.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("%w: header truncated", ErrUnsupportedTGA)
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped", ErrUnsupportedTGA)
	}
	if imageType != tgaTypeUncompressed && imageType != tgaTypeRLE {
		return nil, fmt.Errorf("%w: image type %d", ErrUnsupportedTGA, imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("%w: bit depth %d", ErrUnsupportedTGA, bpp)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: data truncated", ErrUnsupportedTGA)
	}
	pixelData := data[offset:]

	p := &tgaPixels{
		img:           image.NewRGBA(image.Rect(0, 0, width, height)),
		width:         width,
		height:        height,
		bytesPerPixel: bpp / 8,
		// bit 5 of the descriptor selects top-to-bottom row order
		topToBottom: descriptor&0x20 != 0,
	}

	if imageType == tgaTypeUncompressed {
		if len(pixelData) < width*height*p.bytesPerPixel {
			return nil, fmt.Errorf("%w: pixel data truncated", ErrUnsupportedTGA)
		}
		for i := 0; !p.done(); i += p.bytesPerPixel {
			p.put(p.read(pixelData[i:]))
		}
		return p.img, nil
	}

	decodeTGARLE(p, pixelData)
	return p.img, nil
}

// decodeTGARLE decodes RLE packets until the image is full or data runs out.
func decodeTGARLE(p *tgaPixels, data []byte) {
	i := 0
	for !p.done() && i < len(data) {
		packet := data[i]
		i++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// run-length packet: one pixel repeated
			if i+p.bytesPerPixel > len(data) {
				return
			}
			c := p.read(data[i:])
			i += p.bytesPerPixel
			for n := 0; n < count && !p.done(); n++ {
				p.put(c)
			}
			continue
		}

		// raw packet
		for n := 0; n < count && !p.done(); n++ {
			if i+p.bytesPerPixel > len(data) {
				return
			}
			p.put(p.read(data[i:]))
			i += p.bytesPerPixel
		}
	}
}

// EncodeTGA writes img as an uncompressed 32-bit top-to-bottom TGA.
func EncodeTGA(w io.Writer, img image.Image) error {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width > 0xFFFF || height > 0xFFFF {
		return fmt.Errorf("%w: %dx%d exceeds TGA limits", ErrUnsupportedTGA, width, height)
	}

	header := make([]byte, 18)
	header[2] = tgaTypeUncompressed
	header[12], header[13] = byte(width), byte(width>>8)
	header[14], header[15] = byte(height), byte(height>>8)
	header[16] = 32
	header[17] = 0x20 | 8 // top-to-bottom, 8 alpha bits
	if _, err := w.Write(header); err != nil {
		return err
	}

	row := make([]byte, width*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			i := (x - b.Min.X) * 4
			row[i], row[i+1], row[i+2], row[i+3] = c.B, c.G, c.R, c.A
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

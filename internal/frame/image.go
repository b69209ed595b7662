package frame

import (
	"image"
	"image/color"
	"image/draw"
)

// ToNRGBA converts the BGRX raster to an opaque NRGBA image.
func (r ColorRaster) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for i, n := 0, r.Len(); i < n; i++ {
		o := i * BytesPerPixel
		img.Pix[o] = r.Pix[o+2]
		img.Pix[o+1] = r.Pix[o+1]
		img.Pix[o+2] = r.Pix[o]
		img.Pix[o+3] = 255
	}
	return img
}

// ColorFromImage copies any image into a new BGRX raster of the same size.
// Alpha is dropped; the X byte is written as 255.
func ColorFromImage(src image.Image) *ColorRaster {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := NewColorRaster(w, h)

	var rgba *image.NRGBA
	switch s := src.(type) {
	case *image.NRGBA:
		rgba = s
	case *image.YCbCr, *image.Gray, *image.RGBA:
		// No straight-alpha conversion needed for opaque sources.
		rgba = image.NewNRGBA(b)
		draw.Draw(rgba, b, src, b.Min, draw.Src)
	default:
		rgba = image.NewNRGBA(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				rgba.SetNRGBA(x, y, color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA))
			}
		}
	}

	for y := 0; y < h; y++ {
		si := rgba.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * w * BytesPerPixel
		for x := 0; x < w; x++ {
			dst.Pix[di] = rgba.Pix[si+2]
			dst.Pix[di+1] = rgba.Pix[si+1]
			dst.Pix[di+2] = rgba.Pix[si]
			dst.Pix[di+3] = 255
			si += 4
			di += BytesPerPixel
		}
	}
	return dst
}

// Fill sets every pixel of the raster to the given color.
func (r *ColorRaster) Fill(c color.NRGBA) {
	for i := 0; i < len(r.Pix); i += BytesPerPixel {
		r.Pix[i] = c.B
		r.Pix[i+1] = c.G
		r.Pix[i+2] = c.R
		r.Pix[i+3] = 255
	}
}

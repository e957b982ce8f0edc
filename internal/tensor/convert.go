package tensor

import (
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// Luma weights for RGB to grayscale conversion (ITU-R BT.601).
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// FromGray converts an image.Image to a single-channel batch of one,
// with values in [0, 1].
func FromGray(img image.Image) *Image {
	bounds := img.Bounds()
	h, w := bounds.Dy(), bounds.Dx()
	out := NewImage(1, 1, h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			v := lumaR*float64(r) + lumaG*float64(g) + lumaB*float64(b)
			out.Set(0, 0, y, x, v/65535.0)
		}
	}
	return out
}

// FromRGB converts an image.Image to a three-channel batch of one,
// with values in [0, 1].
func FromRGB(img image.Image) *Image {
	bounds := img.Bounds()
	h, w := bounds.Dy(), bounds.Dx()
	out := NewImage(1, 3, h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			out.Set(0, 0, y, x, float64(r)/65535.0)
			out.Set(0, 1, y, x, float64(g)/65535.0)
			out.Set(0, 2, y, x, float64(b)/65535.0)
		}
	}
	return out
}

// Resize scales an image.Image to h x w with a bilinear kernel, returning the
// input unchanged when it already has that size.
func Resize(img image.Image, h, w int) image.Image {
	if img.Bounds().Dy() == h && img.Bounds().Dx() == w {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// ToGray renders batch element b, channel 0 as an 8-bit grayscale image,
// clamping values to [0, 1].
func (m *Image) ToGray(b int) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, m.W, m.H))
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			v := m.At(b, 0, y, x)
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			out.SetGray(x, y, color.Gray{Y: uint8(v*255 + 0.5)})
		}
	}
	return out
}

// ToNRGBA renders batch element b as an NRGBA image. Single-channel batches
// replicate the channel; three-channel batches map to RGB.
func (m *Image) ToNRGBA(b int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.W, m.H))
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			var r, g, bl float64
			if m.C >= 3 {
				r, g, bl = m.At(b, 0, y, x), m.At(b, 1, y, x), m.At(b, 2, y, x)
			} else {
				r = m.At(b, 0, y, x)
				g, bl = r, r
			}
			out.SetNRGBA(x, y, color.NRGBA{
				R: clamp8(r), G: clamp8(g), B: clamp8(bl), A: 255,
			})
		}
	}
	return out
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

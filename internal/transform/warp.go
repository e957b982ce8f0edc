// Package transform applies whole-image affine warps (rotation, translation,
// scaling) to batched tensors by inverse-mapping each output pixel through
// the shared bilinear sampler. Warps use zero-filled borders, unlike patch
// extraction which clamps.
package transform

import (
	"math"

	"lafkit/internal/laf"
	"lafkit/internal/tensor"
	"lafkit/pkg/geometry"
)

// WarpAffine warps every image of the batch with the source-to-destination
// transform m, producing an outH x outW batch. Pixels mapping outside the
// source read zero. Fails if m is not invertible.
func WarpAffine(img *tensor.Image, m geometry.AffineTransform, outH, outW int) (*tensor.Image, error) {
	inv, ok := m.Inverse()
	if !ok {
		return nil, laf.ArgumentErrorf("transform: affine matrix is singular")
	}
	out := tensor.NewImage(img.B, img.C, outH, outW)
	for b := 0; b < img.B; b++ {
		src := img.Element(b)
		for y := 0; y < outH; y++ {
			for x := 0; x < outW; x++ {
				p := inv.Apply(geometry.Point2D{X: float64(x), Y: float64(y)})
				for c := 0; c < img.C; c++ {
					out.Set(b, c, y, x, sampleZero(src, c, p.X, p.Y))
				}
			}
		}
	}
	return out, nil
}

// sampleZero bilinearly reads channel c of a single-element batch at a pixel
// coordinate, treating everything outside the image as zero.
func sampleZero(src *tensor.Image, c int, px, py float64) float64 {
	x0 := int(math.Floor(px))
	y0 := int(math.Floor(py))
	fx := px - float64(x0)
	fy := py - float64(y0)
	v := func(y, x int) float64 {
		if x < 0 || x >= src.W || y < 0 || y >= src.H {
			return 0
		}
		return src.At(0, c, y, x)
	}
	top := v(y0, x0) + fx*(v(y0, x0+1)-v(y0, x0))
	bot := v(y0+1, x0) + fx*(v(y0+1, x0+1)-v(y0+1, x0))
	return top + fy*(bot-top)
}

// RotationMatrix2D builds the transform rotating counter-clockwise by the
// given angle in degrees around a center, with isotropic scaling.
func RotationMatrix2D(center geometry.Point2D, degrees, scale float64) geometry.AffineTransform {
	rad := degrees * math.Pi / 180
	alpha := scale * math.Cos(rad)
	beta := scale * math.Sin(rad)
	return geometry.AffineTransform{
		A: alpha, B: beta, TX: (1-alpha)*center.X - beta*center.Y,
		C: -beta, D: alpha, TY: beta*center.X + (1-alpha)*center.Y,
	}
}

// Rotate rotates the batch counter-clockwise by the given angle in degrees
// around the image center.
func Rotate(img *tensor.Image, degrees float64) (*tensor.Image, error) {
	center := geometry.Point2D{X: float64(img.W-1) / 2, Y: float64(img.H-1) / 2}
	return WarpAffine(img, RotationMatrix2D(center, degrees, 1), img.H, img.W)
}

// Translate shifts the batch by (dx, dy) pixels.
func Translate(img *tensor.Image, dx, dy float64) (*tensor.Image, error) {
	return WarpAffine(img, geometry.Translation(dx, dy), img.H, img.W)
}

// Scale scales the batch by a factor around the image center.
func Scale(img *tensor.Image, factor float64) (*tensor.Image, error) {
	center := geometry.Point2D{X: float64(img.W-1) / 2, Y: float64(img.H-1) / 2}
	return WarpAffine(img, RotationMatrix2D(center, 0, factor), img.H, img.W)
}

package laf

import (
	"lafkit/internal/tensor"
)

// Denormalize maps frames from unit-square coordinates to pixel coordinates
// of the paired image batch: the linear block is scaled by min(H, W), the
// translation column by (W, H).
func Denormalize(l *LAF, img *tensor.Image) (*LAF, error) {
	return scaleBy(l, img, false)
}

// Normalize is the exact inverse of Denormalize: it maps frames from pixel
// coordinates to unit-square coordinates of the paired image batch.
func Normalize(l *LAF, img *tensor.Image) (*LAF, error) {
	return scaleBy(l, img, true)
}

func scaleBy(l *LAF, img *tensor.Image, invert bool) (*LAF, error) {
	if err := Validate(l); err != nil {
		return nil, err
	}
	w := float64(img.W)
	h := float64(img.H)
	minSize := w
	if h < w {
		minSize = h
	}
	cLin, cX, cY := minSize, w, h
	if invert {
		cLin, cX, cY = 1/minSize, 1/w, 1/h
	}
	out := l.Clone()
	for b := 0; b < l.B; b++ {
		for n := 0; n < l.N; n++ {
			for i := 0; i < 2; i++ {
				for j := 0; j < 2; j++ {
					out.Set(b, n, i, j, l.At(b, n, i, j)*cLin)
				}
			}
			out.Set(b, n, 0, 2, l.At(b, n, 0, 2)*cX)
			out.Set(b, n, 1, 2, l.At(b, n, 1, 2)*cY)
		}
	}
	return out, nil
}

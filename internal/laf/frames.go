package laf

import (
	"math"

	"lafkit/internal/tensor"
	"lafkit/pkg/geometry"
)

// Center returns the center of the frame for keypoint n in batch element b.
func (l *LAF) Center(b, n int) geometry.Point2D {
	return geometry.Point2D{X: l.At(b, n, 0, 2), Y: l.At(b, n, 1, 2)}
}

// Orientation returns the rotation of each frame in degrees, indexed
// [batch][keypoint].
func Orientation(l *LAF) ([][]float64, error) {
	if err := Validate(l); err != nil {
		return nil, err
	}
	out := make([][]float64, l.B)
	for b := 0; b < l.B; b++ {
		out[b] = make([]float64, l.N)
		for n := 0; n < l.N; n++ {
			out[b][n] = math.Atan2(l.At(b, n, 0, 1), l.At(b, n, 0, 0)) * 180 / math.Pi
		}
	}
	return out, nil
}

// SetOrientation returns frames rotated so that each has the given
// orientation in degrees, preserving scale, shear and center.
func SetOrientation(l *LAF, degrees [][]float64) (*LAF, error) {
	cur, err := Orientation(l)
	if err != nil {
		return nil, err
	}
	if len(degrees) != l.B {
		return nil, &ArgumentError{msg: "laf: orientation table batch size mismatch"}
	}
	out := l.Clone()
	for b := 0; b < l.B; b++ {
		if len(degrees[b]) != l.N {
			return nil, &ArgumentError{msg: "laf: orientation table keypoint count mismatch"}
		}
		for n := 0; n < l.N; n++ {
			rad := (degrees[b][n] - cur[b][n]) * math.Pi / 180
			cos, sin := math.Cos(rad), math.Sin(rad)
			a00 := l.At(b, n, 0, 0)
			a01 := l.At(b, n, 0, 1)
			a10 := l.At(b, n, 1, 0)
			a11 := l.At(b, n, 1, 1)
			// Right-multiply the linear block by the in-plane rotation.
			out.Set(b, n, 0, 0, a00*cos-a01*sin)
			out.Set(b, n, 0, 1, a00*sin+a01*cos)
			out.Set(b, n, 1, 0, a10*cos-a11*sin)
			out.Set(b, n, 1, 1, a10*sin+a11*cos)
		}
	}
	return out, nil
}

// FromCenterScaleOri builds frames from explicit keypoint centers, scales
// and orientations (degrees). All three tables are indexed [batch][keypoint]
// and must agree in size. A zero orientation yields a diagonal linear block
// scale*I.
func FromCenterScaleOri(centers [][]geometry.Point2D, scales, degrees [][]float64) (*LAF, error) {
	b := len(centers)
	if len(scales) != b || len(degrees) != b {
		return nil, &ArgumentError{msg: "laf: center/scale/orientation batch sizes differ"}
	}
	n := 0
	if b > 0 {
		n = len(centers[0])
	}
	out := New(b, n)
	for bi := 0; bi < b; bi++ {
		if len(centers[bi]) != n || len(scales[bi]) != n || len(degrees[bi]) != n {
			return nil, &ArgumentError{msg: "laf: center/scale/orientation keypoint counts differ"}
		}
		for ni := 0; ni < n; ni++ {
			rad := degrees[bi][ni] * math.Pi / 180
			s := scales[bi][ni]
			cos, sin := math.Cos(rad), math.Sin(rad)
			out.Set(bi, ni, 0, 0, s*cos)
			out.Set(bi, ni, 0, 1, s*sin)
			out.Set(bi, ni, 1, 0, -s*sin)
			out.Set(bi, ni, 1, 1, s*cos)
			out.Set(bi, ni, 0, 2, centers[bi][ni].X)
			out.Set(bi, ni, 1, 2, centers[bi][ni].Y)
		}
	}
	return out, nil
}

// BoundaryPoints returns n points on the boundary of each frame plus the
// center as the first point, for downstream drawing. Frames are taken in
// pixel coordinates.
func BoundaryPoints(l *LAF, n int) ([][][]geometry.Point2D, error) {
	if err := Validate(l); err != nil {
		return nil, err
	}
	circle := geometry.GenerateCirclePoints(0, 0, 1, n)
	out := make([][][]geometry.Point2D, l.B)
	for b := 0; b < l.B; b++ {
		out[b] = make([][]geometry.Point2D, l.N)
		for k := 0; k < l.N; k++ {
			frame := geometry.AffineTransform{
				A: l.At(b, k, 0, 0), B: l.At(b, k, 0, 1), TX: l.At(b, k, 0, 2),
				C: l.At(b, k, 1, 0), D: l.At(b, k, 1, 1), TY: l.At(b, k, 1, 2),
			}
			pts := make([]geometry.Point2D, 0, n+1)
			pts = append(pts, l.Center(b, k))
			for _, p := range circle {
				pts = append(pts, frame.Apply(p))
			}
			out[b][k] = pts
		}
	}
	return out, nil
}

// IsInsideImage reports, per keypoint, whether the whole frame boundary lies
// within the bounds of the paired image. Frames are taken in pixel
// coordinates.
func IsInsideImage(l *LAF, img *tensor.Image) ([][]bool, error) {
	pts, err := BoundaryPoints(l, 12)
	if err != nil {
		return nil, err
	}
	bounds := geometry.NewRect(0, 0, float64(img.W-1), float64(img.H-1))
	out := make([][]bool, l.B)
	for b := 0; b < l.B; b++ {
		out[b] = make([]bool, l.N)
		for n := 0; n < l.N; n++ {
			box := geometry.BoundingBox(pts[b][n])
			out[b][n] = bounds.ContainsRect(box)
		}
	}
	return out, nil
}

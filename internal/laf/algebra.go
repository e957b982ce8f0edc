package laf

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// scaleEps guards the determinant of near-singular linear blocks.
	scaleEps = 1e-10
	// uprightEps guards division during upright rectification.
	uprightEps = 1e-9
)

// Scale returns the scale of each frame: sqrt(|det| + eps) of the 2x2 linear
// block. The result is indexed [batch][keypoint] and is always positive.
func Scale(l *LAF) ([][]float64, error) {
	if err := Validate(l); err != nil {
		return nil, err
	}
	out := make([][]float64, l.B)
	for b := 0; b < l.B; b++ {
		out[b] = make([]float64, l.N)
		for n := 0; n < l.N; n++ {
			det := l.At(b, n, 0, 0)*l.At(b, n, 1, 1) - l.At(b, n, 1, 0)*l.At(b, n, 0, 1)
			out[b][n] = math.Sqrt(math.Abs(det) + scaleEps)
		}
	}
	return out, nil
}

// Rescale multiplies the 2x2 linear block of every frame by a coefficient,
// leaving the center untouched. coef must be a float64 applied uniformly or a
// [][]float64 table indexed [batch][keypoint]; any other kind fails with
// ArgumentError.
func Rescale(l *LAF, coef any) (*LAF, error) {
	if err := Validate(l); err != nil {
		return nil, err
	}
	var at func(b, n int) float64
	switch c := coef.(type) {
	case float64:
		at = func(int, int) float64 { return c }
	case [][]float64:
		if len(c) != l.B {
			return nil, &ArgumentError{msg: fmt.Sprintf(
				"laf: coefficient table has %d batches, frames have %d", len(c), l.B)}
		}
		for b := range c {
			if len(c[b]) != l.N {
				return nil, &ArgumentError{msg: fmt.Sprintf(
					"laf: coefficient table batch %d has %d entries, frames have %d",
					b, len(c[b]), l.N)}
			}
		}
		at = func(b, n int) float64 { return c[b][n] }
	default:
		return nil, &ArgumentError{msg: fmt.Sprintf(
			"laf: rescale coefficient must be float64 or [][]float64, got %T", coef)}
	}

	out := l.Clone()
	for b := 0; b < l.B; b++ {
		for n := 0; n < l.N; n++ {
			s := at(b, n)
			for i := 0; i < 2; i++ {
				for j := 0; j < 2; j++ {
					out.Set(b, n, i, j, l.At(b, n, i, j)*s)
				}
			}
		}
	}
	return out, nil
}

// MakeUpright removes the rotational component of every frame while
// preserving its scale and center. The result's linear block is triangular
// with a zero upper-right entry. Equivalent to a 2x2 SVD with the rotation
// reset to identity, computed in closed form.
func MakeUpright(l *LAF) (*LAF, error) {
	if err := Validate(l); err != nil {
		return nil, err
	}
	scales, err := Scale(l)
	if err != nil {
		return nil, err
	}
	out := l.Clone()
	for b := 0; b < l.B; b++ {
		for n := 0; n < l.N; n++ {
			a00 := l.At(b, n, 0, 0)
			a01 := l.At(b, n, 0, 1)
			a10 := l.At(b, n, 1, 0)
			a11 := l.At(b, n, 1, 1)
			d := scales[b][n]
			b2a2 := math.Sqrt(a01*a01+a00*a00) + uprightEps
			// Unit-scale triangular frame, then restore the original area.
			out.Set(b, n, 0, 0, b2a2)
			out.Set(b, n, 0, 1, 0)
			out.Set(b, n, 1, 0, (a11*a01+a10*a00)/b2a2)
			out.Set(b, n, 1, 1, d*d/b2a2)
		}
	}
	return out, nil
}

// Ellipses is a batch of keypoint regions in Oxford format: per keypoint a
// 5-tuple (x, y, a, b, c) holding the center and the symmetric positive
// definite shape matrix [[a, b], [b, c]].
type Ellipses struct {
	B, N int
	Data []float64
}

// NewEllipses allocates a zero-filled ellipse batch.
func NewEllipses(b, n int) *Ellipses {
	return &Ellipses{B: b, N: n, Data: make([]float64, b*n*5)}
}

// At returns component k (0..4) of ellipse n in batch element b.
func (e *Ellipses) At(b, n, k int) float64 {
	return e.Data[(b*e.N+n)*5+k]
}

// Set stores component k of ellipse n in batch element b.
func (e *Ellipses) Set(b, n, k int, v float64) {
	e.Data[(b*e.N+n)*5+k] = v
}

// EllipseToLAF converts Oxford-format ellipses to local affine frames.
// The linear block is the inverse of the lower Cholesky factor of the shape
// matrix; the center becomes the translation column. Fails with ArgumentError
// if the batch is malformed or a shape matrix is not positive definite.
func EllipseToLAF(ells *Ellipses) (*LAF, error) {
	if ells == nil || len(ells.Data) != ells.B*ells.N*5 {
		return nil, &ArgumentError{msg: "laf: ellipse batch must hold BxNx5 values"}
	}
	out := New(ells.B, ells.N)
	var chol mat.Cholesky
	shape := mat.NewSymDense(2, nil)
	for b := 0; b < ells.B; b++ {
		for n := 0; n < ells.N; n++ {
			shape.SetSym(0, 0, ells.At(b, n, 2))
			shape.SetSym(0, 1, ells.At(b, n, 3))
			shape.SetSym(1, 1, ells.At(b, n, 4))
			if ok := chol.Factorize(shape); !ok {
				return nil, &ArgumentError{msg: fmt.Sprintf(
					"laf: ellipse (%d,%d) shape matrix is not positive definite", b, n)}
			}
			var lower mat.TriDense
			chol.LTo(&lower)
			l11 := lower.At(0, 0)
			l21 := lower.At(1, 0)
			l22 := lower.At(1, 1)
			// Explicit inverse of the 2x2 lower triangular factor.
			out.Set(b, n, 0, 0, 1/l11)
			out.Set(b, n, 0, 1, 0)
			out.Set(b, n, 1, 0, -l21/(l11*l22))
			out.Set(b, n, 1, 1, 1/l22)
			out.Set(b, n, 0, 2, ells.At(b, n, 0))
			out.Set(b, n, 1, 2, ells.At(b, n, 1))
		}
	}
	return out, nil
}

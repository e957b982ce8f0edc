// Package align estimates the affine transform relating two sets of matched
// keypoints, such as the centers of corresponding local affine frames
// detected in two images.
package align

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"lafkit/internal/laf"
	"lafkit/pkg/geometry"
)

// CentersOf extracts the keypoint centers of one batch element as a point
// slice, ready for correspondence estimation.
func CentersOf(l *laf.LAF, b int) ([]geometry.Point2D, error) {
	if err := laf.Validate(l); err != nil {
		return nil, err
	}
	out := make([]geometry.Point2D, l.N)
	for n := 0; n < l.N; n++ {
		out[n] = l.Center(b, n)
	}
	return out, nil
}

// EstimateAffine computes the least-squares affine transform mapping src
// points onto dst points using a QR factorization.
func EstimateAffine(src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	n := len(src)
	if len(dst) != n {
		return geometry.AffineTransform{}, fmt.Errorf("point count mismatch: %d vs %d", n, len(dst))
	}
	if n < 3 {
		return geometry.AffineTransform{}, fmt.Errorf("need at least 3 points, got %d", n)
	}

	// Overdetermined system: [x', y'] = [a b tx; c d ty] * [x, y, 1].
	A := mat.NewDense(n*2, 6, nil)
	B := mat.NewVecDense(n*2, nil)
	for i := 0; i < n; i++ {
		x, y := src[i].X, src[i].Y
		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, dst[i].X)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		B.SetVec(i*2+1, dst[i].Y)
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return geometry.AffineTransform{}, err
	}

	return geometry.AffineTransform{
		A:  params.AtVec(0),
		B:  params.AtVec(1),
		TX: params.AtVec(2),
		C:  params.AtVec(3),
		D:  params.AtVec(4),
		TY: params.AtVec(5),
	}, nil
}

// EstimateAffineRANSAC robustly fits an affine transform in the presence of
// outlier correspondences. It samples minimal 3-point sets, keeps the model
// with the most inliers under the pixel threshold, and refits on all
// inliers. Returns the transform and the inlier indices.
func EstimateAffineRANSAC(src, dst []geometry.Point2D, iterations int, threshold float64) (geometry.AffineTransform, []int, error) {
	if len(src) != len(dst) || len(src) < 3 {
		return geometry.AffineTransform{}, nil, fmt.Errorf("invalid point sets")
	}

	n := len(src)
	bestInliers := []int{}
	var bestTransform geometry.AffineTransform

	for iter := 0; iter < iterations; iter++ {
		indices := rand.Perm(n)[:3]

		sample := make([]geometry.Point2D, 3)
		target := make([]geometry.Point2D, 3)
		for i, idx := range indices {
			sample[i] = src[idx]
			target[i] = dst[idx]
		}

		transform, err := EstimateAffine(sample, target)
		if err != nil {
			continue
		}

		var inliers []int
		for i := range src {
			if transform.Apply(src[i]).Distance(dst[i]) < threshold {
				inliers = append(inliers, i)
			}
		}

		if len(inliers) > len(bestInliers) {
			bestInliers = inliers
			bestTransform = transform
		}
	}

	if len(bestInliers) < 3 {
		return geometry.AffineTransform{}, nil, fmt.Errorf("RANSAC failed to find enough inliers")
	}

	inlierSrc := make([]geometry.Point2D, len(bestInliers))
	inlierDst := make([]geometry.Point2D, len(bestInliers))
	for i, idx := range bestInliers {
		inlierSrc[i] = src[idx]
		inlierDst[i] = dst[idx]
	}

	finalTransform, err := EstimateAffine(inlierSrc, inlierDst)
	if err != nil {
		return bestTransform, bestInliers, nil
	}
	return finalTransform, bestInliers, nil
}

// AlignmentError returns the mean distance between transformed src points
// and their dst correspondences.
func AlignmentError(src, dst []geometry.Point2D, transform geometry.AffineTransform) float64 {
	if len(src) != len(dst) || len(src) == 0 {
		return math.Inf(1)
	}
	var total float64
	for i := range src {
		total += transform.Apply(src[i]).Distance(dst[i])
	}
	return total / float64(len(src))
}

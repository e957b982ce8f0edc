package align

import (
	"math"
	"testing"

	"lafkit/internal/laf"
	"lafkit/pkg/geometry"
)

func testPoints() []geometry.Point2D {
	return []geometry.Point2D{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 0, Y: 10},
		{X: 10, Y: 10},
		{X: 3, Y: 7},
		{X: 8, Y: 2},
		{X: 5, Y: 5},
		{X: 1, Y: 9},
		{X: 6, Y: 4},
		{X: 9, Y: 6},
	}
}

func apply(t geometry.AffineTransform, pts []geometry.Point2D) []geometry.Point2D {
	out := make([]geometry.Point2D, len(pts))
	for i, p := range pts {
		out[i] = t.Apply(p)
	}
	return out
}

func TestEstimateAffineRecoversTransform(t *testing.T) {
	truth := geometry.AffineTransform{A: 0.9, B: -0.2, TX: 3.5, C: 0.2, D: 0.9, TY: -1.25}
	src := testPoints()
	dst := apply(truth, src)

	got, err := EstimateAffine(src, dst)
	if err != nil {
		t.Fatal(err)
	}
	params := [][2]float64{
		{got.A, truth.A}, {got.B, truth.B}, {got.TX, truth.TX},
		{got.C, truth.C}, {got.D, truth.D}, {got.TY, truth.TY},
	}
	for i, p := range params {
		if math.Abs(p[0]-p[1]) > 1e-9 {
			t.Errorf("param %d: got %g, want %g", i, p[0], p[1])
		}
	}
	if e := AlignmentError(src, dst, got); e > 1e-9 {
		t.Errorf("alignment error %g, want ~0", e)
	}
}

func TestEstimateAffineRejectsBadInput(t *testing.T) {
	pts := testPoints()
	if _, err := EstimateAffine(pts[:2], pts[:2]); err == nil {
		t.Error("expected error for fewer than 3 points")
	}
	if _, err := EstimateAffine(pts, pts[:5]); err == nil {
		t.Error("expected error for mismatched point counts")
	}
}

func TestEstimateAffineRANSACWithOutliers(t *testing.T) {
	truth := geometry.AffineTransform{A: 1.1, B: 0.1, TX: -2, C: -0.1, D: 1.1, TY: 4}
	src := testPoints()
	dst := apply(truth, src)
	// Corrupt two correspondences.
	dst[2] = geometry.Point2D{X: 100, Y: -40}
	dst[7] = geometry.Point2D{X: -55, Y: 60}

	got, inliers, err := EstimateAffineRANSAC(src, dst, 500, 1e-3)
	if err != nil {
		t.Fatal(err)
	}
	if len(inliers) != 8 {
		t.Fatalf("inliers: got %d, want 8 (%v)", len(inliers), inliers)
	}
	for _, idx := range inliers {
		if idx == 2 || idx == 7 {
			t.Errorf("outlier %d classified as inlier", idx)
		}
	}
	if math.Abs(got.A-truth.A) > 1e-6 || math.Abs(got.TY-truth.TY) > 1e-6 {
		t.Errorf("recovered transform %+v, want %+v", got, truth)
	}
}

func TestEstimateAffineRANSACDegenerate(t *testing.T) {
	// Collinear sources make every minimal sample rank-deficient.
	src := []geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}
	dst := []geometry.Point2D{{X: 5, Y: 0}, {X: 2, Y: 8}, {X: -3, Y: 1}, {X: 4, Y: 4}}
	if _, _, err := EstimateAffineRANSAC(src, dst, 50, 1e-6); err == nil {
		t.Error("expected failure on collinear sources")
	}
}

func TestAlignmentErrorEmpty(t *testing.T) {
	if e := AlignmentError(nil, nil, geometry.Identity()); !math.IsInf(e, 1) {
		t.Errorf("empty input: got %g, want +Inf", e)
	}
}

func TestAlignmentErrorTranslation(t *testing.T) {
	src := testPoints()
	dst := apply(geometry.Translation(3, 4), src)
	if e := AlignmentError(src, dst, geometry.Identity()); math.Abs(e-5) > 1e-9 {
		t.Errorf("got %g, want 5", e)
	}
}

func TestCentersOf(t *testing.T) {
	l := laf.New(1, 2)
	l.Set(0, 0, 0, 2, 3)
	l.Set(0, 0, 1, 2, 4)
	l.Set(0, 1, 0, 2, -1)
	l.Set(0, 1, 1, 2, 7)

	pts, err := CentersOf(l, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []geometry.Point2D{{X: 3, Y: 4}, {X: -1, Y: 7}}
	for i, w := range want {
		if pts[i] != w {
			t.Errorf("center %d: got %+v, want %+v", i, pts[i], w)
		}
	}
}

package geometry

import (
	"math"
	"testing"
)

const eps = 1e-12

func transformsClose(a, b AffineTransform, tol float64) bool {
	return math.Abs(a.A-b.A) < tol && math.Abs(a.B-b.B) < tol &&
		math.Abs(a.TX-b.TX) < tol && math.Abs(a.C-b.C) < tol &&
		math.Abs(a.D-b.D) < tol && math.Abs(a.TY-b.TY) < tol
}

func TestAffineApply(t *testing.T) {
	tr := AffineTransform{A: 2, B: 0, TX: 1, C: 0, D: 3, TY: -2}
	got := tr.Apply(Point2D{X: 4, Y: 5})
	if got.X != 9 || got.Y != 13 {
		t.Errorf("got %+v, want {9 13}", got)
	}
}

func TestAffineInverseRoundTrip(t *testing.T) {
	tr := Translation(3, -1).Compose(Rotation(math.Pi / 5)).Compose(Scale(2, 0.5))
	inv, ok := tr.Inverse()
	if !ok {
		t.Fatal("transform should be invertible")
	}
	if !transformsClose(tr.Compose(inv), Identity(), 1e-12) {
		t.Errorf("t * t^-1 != identity: %+v", tr.Compose(inv))
	}
	if !transformsClose(inv.Compose(tr), Identity(), 1e-12) {
		t.Errorf("t^-1 * t != identity: %+v", inv.Compose(tr))
	}

	p := Point2D{X: 7, Y: -3}
	back := inv.Apply(tr.Apply(p))
	if back.Distance(p) > 1e-12 {
		t.Errorf("round trip moved point: %+v", back)
	}
}

func TestAffineInverseSingular(t *testing.T) {
	if _, ok := Scale(1, 0).Inverse(); ok {
		t.Error("singular transform reported invertible")
	}
}

func TestComposeOrder(t *testing.T) {
	// Rotate then translate vs translate then rotate differ.
	rot := Rotation(math.Pi / 2)
	tr := Translation(1, 0)
	p := Point2D{X: 1, Y: 0}

	a := tr.Compose(rot).Apply(p) // rotate first: (0,1) then +(1,0) = (1,1)
	if a.Distance(Point2D{X: 1, Y: 1}) > eps {
		t.Errorf("translate after rotate: got %+v", a)
	}
	b := rot.Compose(tr).Apply(p) // translate first: (2,0) then rotate = (0,2)
	if b.Distance(Point2D{X: 0, Y: 2}) > eps {
		t.Errorf("rotate after translate: got %+v", b)
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(1, 1, 4, 3)
	cases := []struct {
		p    Point2D
		want bool
	}{
		{Point2D{X: 2, Y: 2}, true},
		{Point2D{X: 1, Y: 1}, true},
		{Point2D{X: 5, Y: 4}, true},
		{Point2D{X: 0.5, Y: 2}, false},
		{Point2D{X: 2, Y: 4.5}, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.p); got != c.want {
			t.Errorf("Contains(%+v): got %v, want %v", c.p, got, c.want)
		}
	}
}

func TestRectContainsRect(t *testing.T) {
	outer := NewRect(0, 0, 10, 10)
	if !outer.ContainsRect(NewRect(2, 3, 4, 5)) {
		t.Error("inner rect should be contained")
	}
	if !outer.ContainsRect(outer) {
		t.Error("rect should contain itself")
	}
	if outer.ContainsRect(NewRect(8, 8, 4, 1)) {
		t.Error("overhanging rect should not be contained")
	}
	if outer.ContainsRect(NewRect(-1, 2, 3, 3)) {
		t.Error("rect starting outside should not be contained")
	}
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{X: 3, Y: -1}, {X: -2, Y: 4}, {X: 0, Y: 0}}
	r := BoundingBox(pts)
	if r.X != -2 || r.Y != -1 || r.Width != 5 || r.Height != 5 {
		t.Errorf("got %+v", r)
	}
	if (BoundingBox(nil) != Rect{}) {
		t.Error("empty input should give zero rect")
	}
}

func TestCentroid(t *testing.T) {
	pts := []Point2D{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 2, Y: 6}}
	c := Centroid(pts)
	if math.Abs(c.X-2) > eps || math.Abs(c.Y-2) > eps {
		t.Errorf("got %+v, want {2 2}", c)
	}
}

func TestGenerateCirclePoints(t *testing.T) {
	pts := GenerateCirclePoints(1, 2, 3, 8)
	if len(pts) != 8 {
		t.Fatalf("got %d points", len(pts))
	}
	center := Point2D{X: 1, Y: 2}
	for i, p := range pts {
		if math.Abs(p.Distance(center)-3) > 1e-12 {
			t.Errorf("point %d not on circle: %+v", i, p)
		}
	}
	if pts[0].Distance(Point2D{X: 4, Y: 2}) > 1e-12 {
		t.Errorf("first point should sit at angle 0: %+v", pts[0])
	}
}

package feature

import (
	"math"
	"testing"

	"lafkit/internal/tensor"
)

// squareImage draws a bright square with a one-pixel dark margin.
func squareImage() *tensor.Image {
	img := tensor.NewImage(1, 1, 7, 7)
	for y := 1; y <= 5; y++ {
		for x := 1; x <= 5; x++ {
			img.Set(0, 0, y, x, 1)
		}
	}
	return img
}

func TestHarrisResponseShape(t *testing.T) {
	img := tensor.NewImage(2, 3, 6, 5)
	resp, err := HarrisResponse(img, 0.04)
	if err != nil {
		t.Fatal(err)
	}
	if resp.B != 2 || resp.C != 3 || resp.H != 6 || resp.W != 5 {
		t.Errorf("unexpected shape %v", resp)
	}
	for i, v := range resp.Data {
		if v != 0 {
			t.Fatalf("flat image has response %g at %d", v, i)
		}
	}
}

func TestHarrisResponseCorners(t *testing.T) {
	resp, err := HarrisResponse(squareImage(), 0.04)
	if err != nil {
		t.Fatal(err)
	}
	corners := [][2]int{{1, 1}, {1, 5}, {5, 1}, {5, 5}}
	for _, c := range corners {
		if got := resp.At(0, 0, c[0], c[1]); math.Abs(got-1) > 1e-6 {
			t.Errorf("corner (%d,%d): got %g, want 1", c[0], c[1], got)
		}
	}
	// Flat center and edge midpoints respond weaker than corners.
	for _, p := range [][2]int{{3, 3}, {1, 3}, {3, 1}, {5, 3}, {3, 5}} {
		if got := resp.At(0, 0, p[0], p[1]); got > 0.9 {
			t.Errorf("non-corner (%d,%d): response %g too strong", p[0], p[1], got)
		}
	}
}

func TestHarrisResponseBatch(t *testing.T) {
	single := squareImage()
	batch := tensor.NewImage(2, 1, 7, 7)
	copy(batch.Data[:49], single.Data)
	copy(batch.Data[49:], single.Data)

	respSingle, err := HarrisResponse(single, 0.04)
	if err != nil {
		t.Fatal(err)
	}
	respBatch, err := HarrisResponse(batch, 0.04)
	if err != nil {
		t.Fatal(err)
	}
	for b := 0; b < 2; b++ {
		for i := 0; i < 49; i++ {
			if respBatch.Data[b*49+i] != respSingle.Data[i] {
				t.Fatalf("batch element %d diverges at %d", b, i)
			}
		}
	}
}

func TestDetectCorners(t *testing.T) {
	params := DefaultParams()
	params.Threshold = 0.5
	params.NMSRadius = 2

	detector := NewDetector(params)
	kps, err := detector.Detect(squareImage())
	if err != nil {
		t.Fatal(err)
	}
	if len(kps[0]) != 4 {
		t.Fatalf("expected 4 corners, got %d: %v", len(kps[0]), kps[0])
	}
	want := map[[2]int]bool{{1, 1}: true, {5, 1}: true, {1, 5}: true, {5, 5}: true}
	for _, kp := range kps[0] {
		key := [2]int{int(kp.X), int(kp.Y)}
		if !want[key] {
			t.Errorf("unexpected keypoint at %v", key)
		}
	}
}

func TestDetectMaxFeatures(t *testing.T) {
	params := DefaultParams()
	params.Threshold = 0.5
	params.NMSRadius = 2
	params.MaxFeatures = 2

	detector := NewDetector(params)
	kps, err := detector.Detect(squareImage())
	if err != nil {
		t.Fatal(err)
	}
	if len(kps[0]) != 2 {
		t.Errorf("expected cap of 2 keypoints, got %d", len(kps[0]))
	}
}

func TestToLAF(t *testing.T) {
	kps := []Keypoint{{X: 3, Y: 4, Response: 1}, {X: 10, Y: 12, Response: 0.5}}
	frames, err := ToLAF(kps, 6)
	if err != nil {
		t.Fatal(err)
	}
	if frames.B != 1 || frames.N != 2 {
		t.Fatalf("unexpected frame shape %v", frames)
	}
	if frames.At(0, 0, 0, 0) != 6 || frames.At(0, 0, 1, 1) != 6 {
		t.Errorf("scale not applied: %g, %g", frames.At(0, 0, 0, 0), frames.At(0, 0, 1, 1))
	}
	if frames.At(0, 1, 0, 2) != 10 || frames.At(0, 1, 1, 2) != 12 {
		t.Errorf("center wrong: (%g, %g)", frames.At(0, 1, 0, 2), frames.At(0, 1, 1, 2))
	}
}

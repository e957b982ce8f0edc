package feature

import (
	"sort"

	"lafkit/internal/laf"
	"lafkit/internal/tensor"
	"lafkit/pkg/geometry"
)

// Keypoint is a detected corner with its response strength.
type Keypoint struct {
	X, Y     float64
	Response float64
}

// Params holds detector tuning.
type Params struct {
	K           float64 // Harris sensitivity factor
	Threshold   float64 // minimum normalized response
	NMSRadius   int     // non-maximum suppression radius in pixels
	MaxFeatures int     // cap on keypoints per image, 0 = unlimited
	Scale       float64 // frame scale assigned to detections, in pixels
}

// DefaultParams returns detector settings that work well on natural images.
func DefaultParams() Params {
	return Params{
		K:           0.04,
		Threshold:   0.1,
		NMSRadius:   3,
		MaxFeatures: 500,
		Scale:       6.0,
	}
}

// Detector finds Harris corners in image batches.
type Detector struct {
	Params Params
}

// NewDetector creates a Detector with the given parameters.
func NewDetector(params Params) *Detector {
	return &Detector{Params: params}
}

// Detect returns the keypoints of every batch element, strongest first.
// Detection runs on channel 0.
func (d *Detector) Detect(img *tensor.Image) ([][]Keypoint, error) {
	resp, err := HarrisResponse(img, d.Params.K)
	if err != nil {
		return nil, err
	}
	out := make([][]Keypoint, img.B)
	for b := 0; b < img.B; b++ {
		out[b] = d.localMaxima(resp, b)
	}
	return out, nil
}

// localMaxima selects responses above threshold that dominate their
// neighborhood, strongest first, capped at MaxFeatures.
func (d *Detector) localMaxima(resp *tensor.Image, b int) []Keypoint {
	r := d.Params.NMSRadius
	var kps []Keypoint
	for y := 0; y < resp.H; y++ {
		for x := 0; x < resp.W; x++ {
			v := resp.At(b, 0, y, x)
			if v < d.Params.Threshold {
				continue
			}
			if !isMaximum(resp, b, y, x, r, v) {
				continue
			}
			kps = append(kps, Keypoint{X: float64(x), Y: float64(y), Response: v})
		}
	}
	sort.Slice(kps, func(i, j int) bool { return kps[i].Response > kps[j].Response })
	if d.Params.MaxFeatures > 0 && len(kps) > d.Params.MaxFeatures {
		kps = kps[:d.Params.MaxFeatures]
	}
	return kps
}

func isMaximum(resp *tensor.Image, b, y, x, r int, v float64) bool {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dy == 0 && dx == 0 {
				continue
			}
			ny, nx := y+dy, x+dx
			if ny < 0 || ny >= resp.H || nx < 0 || nx >= resp.W {
				continue
			}
			n := resp.At(b, 0, ny, nx)
			if n > v {
				return false
			}
			// Ties resolve to the first pixel in scan order.
			if n == v && (dy < 0 || (dy == 0 && dx < 0)) {
				return false
			}
		}
	}
	return true
}

// ToLAF converts a single image's keypoints into a frame batch of one,
// with upright frames of the given pixel scale.
func ToLAF(kps []Keypoint, scale float64) (*laf.LAF, error) {
	centers := make([]geometry.Point2D, len(kps))
	scales := make([]float64, len(kps))
	degrees := make([]float64, len(kps))
	for i, kp := range kps {
		centers[i] = geometry.Point2D{X: kp.X, Y: kp.Y}
		scales[i] = scale
	}
	return laf.FromCenterScaleOri(
		[][]geometry.Point2D{centers}, [][]float64{scales}, [][]float64{degrees})
}

// Package detect wraps OpenCV's ORB detector as an upstream producer of
// local affine frames: keypoint centers, sizes and angles become oriented
// frames ready for patch extraction.
package detect

import (
	"fmt"

	"gocv.io/x/gocv"

	"lafkit/internal/laf"
	"lafkit/pkg/geometry"
)

// ORBDetector finds ORB keypoints and converts them to frames.
type ORBDetector struct {
	MaxFeatures int
}

// NewORBDetector creates a detector capped at maxFeatures keypoints.
func NewORBDetector(maxFeatures int) *ORBDetector {
	return &ORBDetector{MaxFeatures: maxFeatures}
}

// DetectFile detects keypoints in an image file, loaded as grayscale.
func (d *ORBDetector) DetectFile(path string) (*laf.LAF, error) {
	img := gocv.IMRead(path, gocv.IMReadGrayScale)
	if img.Empty() {
		return nil, fmt.Errorf("detect: failed to read %s", path)
	}
	defer img.Close()
	return d.Detect(img)
}

// Detect detects keypoints in a gocv image and returns them as a frame
// batch of one. The keypoint diameter becomes the frame scale (size/2) and
// the keypoint angle its orientation.
func (d *ORBDetector) Detect(img gocv.Mat) (*laf.LAF, error) {
	orb := gocv.NewORB()
	defer orb.Close()

	kps := orb.Detect(img)
	if d.MaxFeatures > 0 && len(kps) > d.MaxFeatures {
		kps = kps[:d.MaxFeatures]
	}

	centers := make([]geometry.Point2D, len(kps))
	scales := make([]float64, len(kps))
	degrees := make([]float64, len(kps))
	for i, kp := range kps {
		centers[i] = geometry.Point2D{X: kp.X, Y: kp.Y}
		scales[i] = kp.Size / 2
		degrees[i] = kp.Angle
	}
	return laf.FromCenterScaleOri(
		[][]geometry.Point2D{centers}, [][]float64{scales}, [][]float64{degrees})
}

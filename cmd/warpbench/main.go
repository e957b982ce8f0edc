// Command warpbench rotates an image with the pure Go warp and with
// OpenCV's warpAffine and reports how far the two results diverge.
package main

import (
	"flag"
	"fmt"
	"image"
	"math"
	"os"

	"gocv.io/x/gocv"

	"lafkit/internal/tensor"
	"lafkit/internal/transform"
	"lafkit/internal/version"
	"lafkit/pkg/geometry"
)

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	imagePath := flag.String("image", "", "Path to input image")
	angle := flag.Float64("angle", 30, "Rotation angle in degrees (counter-clockwise)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("warpbench %s (built %s, commit %s)\n", version.Version, version.BuildTime, version.GitCommit)
		return
	}

	if *imagePath == "" {
		fmt.Println("Usage: warpbench -image <path> [-angle 30]")
		os.Exit(1)
	}

	src := gocv.IMRead(*imagePath, gocv.IMReadGrayScale)
	if src.Empty() {
		fmt.Fprintf(os.Stderr, "Failed to read %s\n", *imagePath)
		os.Exit(1)
	}
	defer src.Close()

	decoded, err := src.ToImage()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Mat conversion failed: %v\n", err)
		os.Exit(1)
	}
	img := tensor.FromGray(decoded)
	fmt.Printf("Loaded image: %dx%d pixels, rotating by %.1f deg\n", img.W, img.H, *angle)

	// Pure Go warp.
	ours, err := transform.Rotate(img, *angle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Rotate failed: %v\n", err)
		os.Exit(1)
	}

	// OpenCV warp with the same forward matrix.
	center := geometry.Point2D{X: float64(img.W-1) / 2, Y: float64(img.H-1) / 2}
	m := transform.RotationMatrix2D(center, *angle, 1)
	matM := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	matM.SetDoubleAt(0, 0, m.A)
	matM.SetDoubleAt(0, 1, m.B)
	matM.SetDoubleAt(0, 2, m.TX)
	matM.SetDoubleAt(1, 0, m.C)
	matM.SetDoubleAt(1, 1, m.D)
	matM.SetDoubleAt(1, 2, m.TY)
	defer matM.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.WarpAffine(src, &dst, matM, image.Point{X: img.W, Y: img.H})

	cvImg, err := dst.ToImage()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Mat conversion failed: %v\n", err)
		os.Exit(1)
	}
	theirs := tensor.FromGray(cvImg)

	var sum, max float64
	for i := range ours.Data {
		d := math.Abs(ours.Data[i] - theirs.Data[i])
		sum += d
		if d > max {
			max = d
		}
	}
	n := float64(len(ours.Data))
	fmt.Printf("Mean absolute deviation: %.5f (of 1.0 range)\n", sum/n)
	fmt.Printf("Max absolute deviation:  %.5f\n", max)
}

// Command patchtest detects keypoints in an image and extracts rectified
// patches around them, writing a contact sheet for inspection. Keypoints come
// from the pure-Go Harris detector or from OpenCV's ORB.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"

	"lafkit/internal/detect"
	"lafkit/internal/feature"
	"lafkit/internal/laf"
	"lafkit/internal/patch"
	"lafkit/internal/tensor"
	"lafkit/internal/version"

	_ "golang.org/x/image/tiff"
)

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	imagePath := flag.String("image", "", "Path to input image (TIFF, PNG, or JPEG)")
	detectorName := flag.String("detector", "harris", "Keypoint detector: harris or orb")
	ps := flag.Int("ps", 32, "Patch size in pixels")
	maxFeatures := flag.Int("max", 64, "Maximum number of keypoints")
	k := flag.Float64("k", 0.04, "Harris sensitivity factor")
	threshold := flag.Float64("threshold", 0.1, "Minimum normalized corner response")
	scale := flag.Float64("scale", 12, "Frame scale assigned to Harris detections, in pixels")
	resize := flag.Int("resize", 0, "Resize input so its longer side is this many pixels (0 = keep)")
	color := flag.Bool("color", false, "Extract color patches (detection still runs on luma)")
	pyramid := flag.Bool("pyramid", true, "Extract from the matching pyramid tier")
	outPath := flag.String("out", "patches.png", "Contact sheet output path")
	flag.Parse()

	if *showVersion {
		fmt.Printf("patchtest %s (built %s, commit %s)\n", version.Version, version.BuildTime, version.GitCommit)
		return
	}

	if *imagePath == "" {
		fmt.Println("Usage: patchtest -image <path> [-detector harris|orb] [-ps 32] [-max 64] [-pyramid] [-out patches.png]")
		os.Exit(1)
	}

	f, err := os.Open(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	decoded, format, err := image.Decode(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode image: %v\n", err)
		os.Exit(1)
	}
	if *resize > 0 {
		h, w := resizeDims(decoded.Bounds().Dy(), decoded.Bounds().Dx(), *resize)
		decoded = tensor.Resize(decoded, h, w)
	}

	gray := tensor.FromGray(decoded)
	src := gray
	if *color {
		src = tensor.FromRGB(decoded)
	}
	fmt.Printf("Loaded %s image: %dx%d pixels\n", format, src.W, src.H)

	var frames *laf.LAF
	switch *detectorName {
	case "harris":
		params := feature.DefaultParams()
		params.K = *k
		params.Threshold = *threshold
		params.MaxFeatures = *maxFeatures
		params.Scale = *scale

		kps, err := feature.NewDetector(params).Detect(gray)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
			os.Exit(1)
		}
		frames, err = feature.ToLAF(kps[0], params.Scale)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Frame conversion failed: %v\n", err)
			os.Exit(1)
		}
	case "orb":
		if *resize > 0 {
			fmt.Fprintln(os.Stderr, "-resize is not supported with the ORB detector")
			os.Exit(1)
		}
		frames, err = detect.NewORBDetector(*maxFeatures).DetectFile(*imagePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown detector %q (want harris or orb)\n", *detectorName)
		os.Exit(1)
	}

	fmt.Printf("Detected %d keypoints\n", frames.N)
	if frames.N == 0 {
		os.Exit(0)
	}

	var patches *patch.Patches
	if *pyramid {
		patches, err = patch.ExtractFromPyramid(src, frames, *ps, true)
	} else {
		patches, err = patch.Extract(src, frames, *ps, true)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(1)
	}

	scales, err := laf.Scale(frames)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scale computation failed: %v\n", err)
		os.Exit(1)
	}
	levels := patch.Levels(scales, *ps)

	fmt.Printf("\n%-6s %10s %10s %10s %6s\n", "ID", "X", "Y", "Scale", "Tier")
	for n := 0; n < frames.N; n++ {
		c := frames.Center(0, n)
		fmt.Printf("%-6d %10.1f %10.1f %10.2f %6d\n", n, c.X, c.Y, scales[0][n], levels[0][n])
	}

	if err := writeContactSheet(patches, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write contact sheet: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nWrote %d patches to %s\n", patches.N, *outPath)
}

// resizeDims scales (h, w) so the longer side becomes target, keeping aspect.
func resizeDims(h, w, target int) (int, int) {
	if h >= w {
		return target, int(math.Round(float64(w) * float64(target) / float64(h)))
	}
	return int(math.Round(float64(h) * float64(target) / float64(w))), target
}

// writeContactSheet tiles all patches of batch element 0 into one PNG,
// in color when the patches carry three channels.
func writeContactSheet(p *patch.Patches, path string) error {
	cols := int(math.Ceil(math.Sqrt(float64(p.N))))
	rows := (p.N + cols - 1) / cols
	const gap = 2
	sheet := tensor.NewImage(1, p.C, rows*(p.PS+gap)-gap, cols*(p.PS+gap)-gap)
	for n := 0; n < p.N; n++ {
		ox := (n % cols) * (p.PS + gap)
		oy := (n / cols) * (p.PS + gap)
		for c := 0; c < p.C; c++ {
			for i := 0; i < p.PS; i++ {
				for j := 0; j < p.PS; j++ {
					sheet.Set(0, c, oy+i, ox+j, p.At(0, n, c, i, j))
				}
			}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if p.C >= 3 {
		return png.Encode(f, sheet.ToNRGBA(0))
	}
	return png.Encode(f, sheet.ToGray(0))
}

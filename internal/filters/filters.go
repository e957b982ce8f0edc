// Package filters provides convolution-style image filtering over batched
// tensors: box and gaussian blurs and a direct 2D filtering entry point,
// each with selectable border handling.
package filters

import (
	"math"

	"lafkit/internal/laf"
	"lafkit/internal/tensor"
)

// BorderMode selects how filtering reads pixels outside the image.
type BorderMode int

const (
	// BorderReflect mirrors the image at the edge without repeating it.
	BorderReflect BorderMode = iota
	// BorderReplicate repeats the edge pixel.
	BorderReplicate
	// BorderConstant reads zero outside the image.
	BorderConstant
)

// BoxBlur smooths the batch with a normalized kx x ky box kernel.
// Kernel sizes must be odd.
func BoxBlur(img *tensor.Image, kx, ky int, mode BorderMode) (*tensor.Image, error) {
	if kx%2 == 0 || ky%2 == 0 {
		return nil, laf.ArgumentErrorf("filters: box kernel sizes must be odd, got %dx%d", kx, ky)
	}
	hx := make([]float64, kx)
	for i := range hx {
		hx[i] = 1 / float64(kx)
	}
	hy := make([]float64, ky)
	for i := range hy {
		hy[i] = 1 / float64(ky)
	}
	return separable(img, hx, hy, mode), nil
}

// GaussianBlur smooths the batch with a separable gaussian kernel.
// Kernel sizes must be odd; non-positive sigmas derive from the kernel size
// the way OpenCV does.
func GaussianBlur(img *tensor.Image, kx, ky int, sigmaX, sigmaY float64, mode BorderMode) (*tensor.Image, error) {
	if kx%2 == 0 || ky%2 == 0 {
		return nil, laf.ArgumentErrorf("filters: gaussian kernel sizes must be odd, got %dx%d", kx, ky)
	}
	return separable(img, gaussianKernel1D(kx, sigmaX), gaussianKernel1D(ky, sigmaY), mode), nil
}

// Filter2D correlates the batch with an arbitrary 2D kernel, producing an
// output of the same size. Kernel sides must be odd.
func Filter2D(img *tensor.Image, kernel [][]float64, mode BorderMode) (*tensor.Image, error) {
	kh := len(kernel)
	if kh == 0 || kh%2 == 0 || len(kernel[0])%2 == 0 {
		return nil, laf.ArgumentErrorf("filters: kernel sides must be odd")
	}
	kw := len(kernel[0])
	ry, rx := kh/2, kw/2
	out := tensor.NewImage(img.B, img.C, img.H, img.W)
	for b := 0; b < img.B; b++ {
		for c := 0; c < img.C; c++ {
			for y := 0; y < img.H; y++ {
				for x := 0; x < img.W; x++ {
					var sum float64
					for dy := -ry; dy <= ry; dy++ {
						for dx := -rx; dx <= rx; dx++ {
							sum += kernel[dy+ry][dx+rx] * read(img, b, c, y+dy, x+dx, mode)
						}
					}
					out.Set(b, c, y, x, sum)
				}
			}
		}
	}
	return out, nil
}

// separable applies a horizontal then a vertical 1D kernel.
func separable(img *tensor.Image, hx, hy []float64, mode BorderMode) *tensor.Image {
	rx := len(hx) / 2
	ry := len(hy) / 2
	tmp := tensor.NewImage(img.B, img.C, img.H, img.W)
	out := tensor.NewImage(img.B, img.C, img.H, img.W)
	for b := 0; b < img.B; b++ {
		for c := 0; c < img.C; c++ {
			for y := 0; y < img.H; y++ {
				for x := 0; x < img.W; x++ {
					var sum float64
					for k := -rx; k <= rx; k++ {
						sum += hx[k+rx] * read(img, b, c, y, x+k, mode)
					}
					tmp.Set(b, c, y, x, sum)
				}
			}
			for y := 0; y < img.H; y++ {
				for x := 0; x < img.W; x++ {
					var sum float64
					for k := -ry; k <= ry; k++ {
						sum += hy[k+ry] * read(tmp, b, c, y+k, x, mode)
					}
					out.Set(b, c, y, x, sum)
				}
			}
		}
	}
	return out
}

// read fetches a pixel with border handling.
func read(img *tensor.Image, b, c, y, x int, mode BorderMode) float64 {
	if x >= 0 && x < img.W && y >= 0 && y < img.H {
		return img.At(b, c, y, x)
	}
	switch mode {
	case BorderConstant:
		return 0
	case BorderReplicate:
		x = clamp(x, 0, img.W-1)
		y = clamp(y, 0, img.H-1)
	default:
		x = reflect(x, img.W)
		y = reflect(y, img.H)
	}
	return img.At(b, c, y, x)
}

// gaussianKernel1D builds a normalized gaussian kernel of odd size k.
// Non-positive sigma falls back to 0.3*((k-1)*0.5 - 1) + 0.8.
func gaussianKernel1D(k int, sigma float64) []float64 {
	if sigma <= 0 {
		sigma = 0.3*(float64(k-1)*0.5-1) + 0.8
	}
	out := make([]float64, k)
	mid := float64(k / 2)
	var sum float64
	for i := range out {
		d := float64(i) - mid
		out[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

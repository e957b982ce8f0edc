package tensor

// pyrKernel is the 5-tap binomial kernel used for pyramid smoothing.
var pyrKernel = [5]float64{1.0 / 16, 4.0 / 16, 6.0 / 16, 4.0 / 16, 1.0 / 16}

// PyrDown blurs the batch with a 5-tap binomial filter and decimates it by
// two in each spatial axis. Output size is ceil(h/2) x ceil(w/2). Borders are
// handled by reflection.
func PyrDown(src *Image) *Image {
	blurred := pyrBlur(src)
	oh := (src.H + 1) / 2
	ow := (src.W + 1) / 2
	out := NewImage(src.B, src.C, oh, ow)
	for b := 0; b < src.B; b++ {
		for c := 0; c < src.C; c++ {
			for y := 0; y < oh; y++ {
				for x := 0; x < ow; x++ {
					out.Set(b, c, y, x, blurred.At(b, c, 2*y, 2*x))
				}
			}
		}
	}
	return out
}

// pyrBlur applies the separable binomial kernel with reflected borders.
func pyrBlur(src *Image) *Image {
	tmp := NewImage(src.B, src.C, src.H, src.W)
	out := NewImage(src.B, src.C, src.H, src.W)
	for b := 0; b < src.B; b++ {
		for c := 0; c < src.C; c++ {
			// Horizontal pass.
			for y := 0; y < src.H; y++ {
				for x := 0; x < src.W; x++ {
					var sum float64
					for k := -2; k <= 2; k++ {
						sum += pyrKernel[k+2] * src.At(b, c, y, reflect(x+k, src.W))
					}
					tmp.Set(b, c, y, x, sum)
				}
			}
			// Vertical pass.
			for y := 0; y < src.H; y++ {
				for x := 0; x < src.W; x++ {
					var sum float64
					for k := -2; k <= 2; k++ {
						sum += pyrKernel[k+2] * tmp.At(b, c, reflect(y+k, src.H), x)
					}
					out.Set(b, c, y, x, sum)
				}
			}
		}
	}
	return out
}

// reflect mirrors an index into [0, n) without repeating the edge sample.
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

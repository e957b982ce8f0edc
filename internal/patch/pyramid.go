package patch

import "math"

// Levels resolves the pyramid tier for each keypoint from its pixel-space
// scale and the requested patch size: floor(log2(2*scale/ps) + 0.5), clamped
// to be non-negative. Larger natural scale selects a coarser tier.
func Levels(scales [][]float64, ps int) [][]int {
	out := make([][]int, len(scales))
	for b := range scales {
		out[b] = make([]int, len(scales[b]))
		for n, s := range scales[b] {
			v := math.Log2(2*s/float64(ps)) + 0.5
			if v < 0 {
				v = 0
			}
			out[b][n] = int(v)
		}
	}
	return out
}

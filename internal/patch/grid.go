// Package patch turns local affine frames into rectified fixed-size patches:
// it builds per-keypoint sampling grids, resolves which pyramid tier each
// keypoint should sample from, and drives the border-clamped bilinear
// sampler over one tier at a time.
package patch

import (
	"lafkit/internal/laf"
	"lafkit/internal/tensor"
)

// Grid builds a sampling grid for every frame in a normalized batch against
// the given image. Frames are first denormalized to pixel coordinates, each
// pixel-space frame is applied to the canonical ps x ps square spanning
// [-1, 1]^2, and the resulting pixel coordinates are mapped back to the
// symmetric [-1, 1] sampling range per axis. The grid holds l.B*l.N entries.
func Grid(img *tensor.Image, normalized *laf.LAF, ps int) (*tensor.Grid, error) {
	pixel, err := laf.Denormalize(normalized, img)
	if err != nil {
		return nil, err
	}
	w := float64(img.W)
	h := float64(img.H)
	grid := tensor.NewGrid(pixel.B*pixel.N, ps)
	for b := 0; b < pixel.B; b++ {
		for n := 0; n < pixel.N; n++ {
			a00 := pixel.At(b, n, 0, 0)
			a01 := pixel.At(b, n, 0, 1)
			tx := pixel.At(b, n, 0, 2)
			a10 := pixel.At(b, n, 1, 0)
			a11 := pixel.At(b, n, 1, 1)
			ty := pixel.At(b, n, 1, 2)
			k := b*pixel.N + n
			for i := 0; i < ps; i++ {
				y := base(i, ps)
				for j := 0; j < ps; j++ {
					x := base(j, ps)
					px := a00*x + a01*y + tx
					py := a10*x + a11*y + ty
					grid.Set(k, i, j, 2*px/w-1, 2*py/h-1)
				}
			}
		}
	}
	return grid, nil
}

// base returns the i-th canonical patch coordinate: linspace(-1, 1, ps).
func base(i, ps int) float64 {
	if ps == 1 {
		return 0
	}
	return -1 + 2*float64(i)/float64(ps-1)
}

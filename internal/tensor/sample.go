package tensor

import "math"

// PadMode selects how Sample treats coordinates outside the source image.
type PadMode int

const (
	// PadBorder clamps out-of-range coordinates to the nearest edge pixel.
	PadBorder PadMode = iota
	// PadZero reads zero outside the image.
	PadZero
)

// Grid holds sampling coordinates for N patches of size PS x PS.
// Coordinates use the symmetric [-1, 1] convention: -1 maps to the first
// pixel and +1 to the last pixel of the source axis.
// Layout: index = ((n*PS+i)*PS+j)*2, with [0]=x and [1]=y.
type Grid struct {
	N, PS int
	Data  []float64
}

// NewGrid allocates a grid for n patches of size ps.
func NewGrid(n, ps int) *Grid {
	return &Grid{N: n, PS: ps, Data: make([]float64, n*ps*ps*2)}
}

// At returns the (x, y) sample coordinate for patch n, row i, column j.
func (g *Grid) At(n, i, j int) (float64, float64) {
	k := ((n*g.PS+i)*g.PS + j) * 2
	return g.Data[k], g.Data[k+1]
}

// Set stores the (x, y) sample coordinate for patch n, row i, column j.
func (g *Grid) Set(n, i, j int, x, y float64) {
	k := ((n*g.PS+i)*g.PS + j) * 2
	g.Data[k] = x
	g.Data[k+1] = y
}

// Sample resamples one source image (batch element 0 of src) at the grid
// coordinates using bilinear interpolation. The result has one batch element
// per grid entry: [N, C, PS, PS].
func Sample(src *Image, grid *Grid, pad PadMode) *Image {
	h, w := src.H, src.W
	out := NewImage(grid.N, src.C, grid.PS, grid.PS)
	for n := 0; n < grid.N; n++ {
		for i := 0; i < grid.PS; i++ {
			for j := 0; j < grid.PS; j++ {
				gx, gy := grid.At(n, i, j)
				// [-1,1] -> pixel coordinates, endpoints on pixel centers.
				px := (gx + 1) / 2 * float64(w-1)
				py := (gy + 1) / 2 * float64(h-1)
				for c := 0; c < src.C; c++ {
					out.Set(n, c, i, j, bilinear(src, c, px, py, pad))
				}
			}
		}
	}
	return out
}

// bilinear interpolates channel c of batch element 0 at (px, py).
func bilinear(src *Image, c int, px, py float64, pad PadMode) float64 {
	x0 := int(math.Floor(px))
	y0 := int(math.Floor(py))
	fx := px - float64(x0)
	fy := py - float64(y0)

	v00 := texel(src, c, y0, x0, pad)
	v01 := texel(src, c, y0, x0+1, pad)
	v10 := texel(src, c, y0+1, x0, pad)
	v11 := texel(src, c, y0+1, x0+1, pad)

	top := v00 + fx*(v01-v00)
	bot := v10 + fx*(v11-v10)
	return top + fy*(bot-top)
}

func texel(src *Image, c, y, x int, pad PadMode) float64 {
	if pad == PadZero {
		if x < 0 || x >= src.W || y < 0 || y >= src.H {
			return 0
		}
		return src.At(0, c, y, x)
	}
	x = clampInt(x, 0, src.W-1)
	y = clampInt(y, 0, src.H-1)
	return src.At(0, c, y, x)
}

package patch

import (
	"lafkit/internal/laf"
	"lafkit/internal/tensor"
)

// Patches is the extraction result: one ps x ps patch per keypoint per batch
// element, with the channel count of the source image.
// Data layout: index = (((b*N+n)*C+c)*PS+i)*PS + j.
type Patches struct {
	B, N, C, PS int
	Data        []float64
}

// NewPatches allocates a zero-filled patch batch.
func NewPatches(b, n, c, ps int) *Patches {
	return &Patches{B: b, N: n, C: c, PS: ps, Data: make([]float64, b*n*c*ps*ps)}
}

// At returns the value at batch b, keypoint n, channel c, row i, column j.
func (p *Patches) At(b, n, c, i, j int) float64 {
	return p.Data[(((b*p.N+n)*p.C+c)*p.PS+i)*p.PS+j]
}

// Set stores a value at batch b, keypoint n, channel c, row i, column j.
func (p *Patches) Set(b, n, c, i, j int, v float64) {
	p.Data[(((b*p.N+n)*p.C+c)*p.PS+i)*p.PS+j] = v
}

// Extract samples one ps x ps patch per frame from the full-resolution
// image batch using border-clamped bilinear interpolation. No smoothing is
// applied, so frames much larger than the patch will alias; prefer
// ExtractFromPyramid for those. If normalizeFirst is true the frames are
// taken in pixel coordinates and normalized against img first; otherwise
// they must already be normalized.
func Extract(img *tensor.Image, frames *laf.LAF, ps int, normalizeFirst bool) (*Patches, error) {
	nlaf, err := prepare(img, frames, ps, normalizeFirst)
	if err != nil {
		return nil, err
	}
	out := NewPatches(frames.B, frames.N, img.C, ps)
	for b := 0; b < frames.B; b++ {
		src := img.Element(b)
		one := nlaf.Select(b, allTrue(frames.N))
		grid, err := Grid(src, one, ps)
		if err != nil {
			return nil, err
		}
		sampled := tensor.Sample(src, grid, tensor.PadBorder)
		store(out, b, allTrue(frames.N), sampled)
	}
	return out, nil
}

// ExtractFromPyramid samples each patch from the pyramid tier matching the
// frame's natural scale, avoiding the aliasing of Extract. The image is
// repeatedly halved; at tier t only the keypoints whose resolved level is t
// are sampled. Keypoints whose level lies beyond the last tier built before
// the image shrinks under ps in either axis keep their zero-filled patch;
// callers wanting a patch for every keypoint can clamp the levels themselves
// before calling.
func ExtractFromPyramid(img *tensor.Image, frames *laf.LAF, ps int, normalizeFirst bool) (*Patches, error) {
	nlaf, err := prepare(img, frames, ps, normalizeFirst)
	if err != nil {
		return nil, err
	}
	pixel, err := laf.Denormalize(nlaf, img)
	if err != nil {
		return nil, err
	}
	scales, err := laf.Scale(pixel)
	if err != nil {
		return nil, err
	}
	levels := Levels(scales, ps)

	out := NewPatches(frames.B, frames.N, img.C, ps)
	cur := img
	for tier := 0; cur.MinSide() >= ps; tier++ {
		for b := 0; b < frames.B; b++ {
			mask := make([]bool, frames.N)
			var any bool
			for n := 0; n < frames.N; n++ {
				if levels[b][n] == tier {
					mask[n] = true
					any = true
				}
			}
			if !any {
				continue
			}
			src := cur.Element(b)
			sel := nlaf.Select(b, mask)
			grid, err := Grid(src, sel, ps)
			if err != nil {
				return nil, err
			}
			sampled := tensor.Sample(src, grid, tensor.PadBorder)
			store(out, b, mask, sampled)
		}
		cur = tensor.PyrDown(cur)
	}
	return out, nil
}

// prepare validates the patch size and the 1:1 batch pairing, then normalizes
// frames on request. Patch sizes below 2 are rejected: a 1-pixel tier never
// shrinks under the ceil-halving pyramid, so the tier loop would not terminate.
func prepare(img *tensor.Image, frames *laf.LAF, ps int, normalizeFirst bool) (*laf.LAF, error) {
	if ps < 2 {
		return nil, laf.ArgumentErrorf("patch: patch size must be at least 2, got %d", ps)
	}
	if err := laf.Validate(frames); err != nil {
		return nil, err
	}
	if img.B != frames.B {
		return nil, laf.ShapeErrorf(
			"patch: image batch %d does not match frame batch %d", img.B, frames.B)
	}
	if !normalizeFirst {
		return frames, nil
	}
	return laf.Normalize(frames, img)
}

// store writes sampled patches into the output slots selected by mask.
func store(out *Patches, b int, mask []bool, sampled *tensor.Image) {
	var k int
	for n, m := range mask {
		if !m {
			continue
		}
		for c := 0; c < sampled.C; c++ {
			for i := 0; i < sampled.H; i++ {
				for j := 0; j < sampled.W; j++ {
					out.Set(b, n, c, i, j, sampled.At(k, c, i, j))
				}
			}
		}
		k++
	}
}

func allTrue(n int) []bool {
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = true
	}
	return mask
}

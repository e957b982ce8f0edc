// Package feature provides a Harris corner detector producing local affine
// frames, an upstream source of keypoints for patch extraction.
package feature

import (
	"lafkit/internal/filters"
	"lafkit/internal/tensor"
)

var (
	sobelX = [][]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [][]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// HarrisResponse computes the Harris corner response det(M) - k*trace(M)^2
// of every image in the batch, where M is the gaussian-smoothed structure
// tensor of the sobel gradients. Negative responses are clamped to zero and
// each image channel is normalized so its strongest response is 1.
func HarrisResponse(img *tensor.Image, k float64) (*tensor.Image, error) {
	gx, err := filters.Filter2D(img, sobelX, filters.BorderReplicate)
	if err != nil {
		return nil, err
	}
	gy, err := filters.Filter2D(img, sobelY, filters.BorderReplicate)
	if err != nil {
		return nil, err
	}

	ixx := mul(gx, gx)
	iyy := mul(gy, gy)
	ixy := mul(gx, gy)

	ixx, err = filters.GaussianBlur(ixx, 7, 7, 1, 1, filters.BorderReflect)
	if err != nil {
		return nil, err
	}
	iyy, err = filters.GaussianBlur(iyy, 7, 7, 1, 1, filters.BorderReflect)
	if err != nil {
		return nil, err
	}
	ixy, err = filters.GaussianBlur(ixy, 7, 7, 1, 1, filters.BorderReflect)
	if err != nil {
		return nil, err
	}

	out := tensor.NewImage(img.B, img.C, img.H, img.W)
	for i := range out.Data {
		det := ixx.Data[i]*iyy.Data[i] - ixy.Data[i]*ixy.Data[i]
		tr := ixx.Data[i] + iyy.Data[i]
		r := det - k*tr*tr
		if r < 0 {
			r = 0
		}
		out.Data[i] = r
	}
	normalizePerChannel(out)
	return out, nil
}

func mul(a, b *tensor.Image) *tensor.Image {
	out := tensor.NewImage(a.B, a.C, a.H, a.W)
	for i := range out.Data {
		out.Data[i] = a.Data[i] * b.Data[i]
	}
	return out
}

// normalizePerChannel scales each batch/channel plane so its maximum is 1.
// Planes with no positive response are left at zero.
func normalizePerChannel(img *tensor.Image) {
	plane := img.H * img.W
	for bc := 0; bc < img.B*img.C; bc++ {
		seg := img.Data[bc*plane : (bc+1)*plane]
		var max float64
		for _, v := range seg {
			if v > max {
				max = v
			}
		}
		if max <= 0 {
			continue
		}
		for i := range seg {
			seg[i] /= max
		}
	}
}

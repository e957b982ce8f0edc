// Package tensor provides batched multi-channel float64 images and the
// resampling primitives the rest of the library is built on: border-aware
// bilinear grid sampling and gaussian pyramid downsampling.
package tensor

import (
	"fmt"
)

// Image is a batch of multi-channel images in NCHW layout.
// Data is contiguous: index = ((b*C+c)*H+y)*W + x.
type Image struct {
	B, C, H, W int
	Data       []float64
}

// NewImage allocates a zero-filled image batch.
func NewImage(b, c, h, w int) *Image {
	return &Image{B: b, C: c, H: h, W: w, Data: make([]float64, b*c*h*w)}
}

// At returns the value at batch b, channel c, row y, column x.
func (m *Image) At(b, c, y, x int) float64 {
	return m.Data[((b*m.C+c)*m.H+y)*m.W+x]
}

// Set stores a value at batch b, channel c, row y, column x.
func (m *Image) Set(b, c, y, x int, v float64) {
	m.Data[((b*m.C+c)*m.H+y)*m.W+x] = v
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	out := &Image{B: m.B, C: m.C, H: m.H, W: m.W, Data: make([]float64, len(m.Data))}
	copy(out.Data, m.Data)
	return out
}

// Element returns a copy of a single batch element as a batch of one.
func (m *Image) Element(b int) *Image {
	out := NewImage(1, m.C, m.H, m.W)
	n := m.C * m.H * m.W
	copy(out.Data, m.Data[b*n:(b+1)*n])
	return out
}

// MinSide returns min(H, W).
func (m *Image) MinSide() int {
	if m.H < m.W {
		return m.H
	}
	return m.W
}

func (m *Image) String() string {
	return fmt.Sprintf("Image[%dx%dx%dx%d]", m.B, m.C, m.H, m.W)
}

// clampInt restricts v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

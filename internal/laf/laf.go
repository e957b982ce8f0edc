// Package laf implements local affine frames: 2x3 affine maps describing the
// position, scale, rotation and shear of keypoints detected in a batch of
// images. Frames are immutable values; every operation returns a new batch.
package laf

import (
	"fmt"
)

// LAF is a batch of local affine frames, one 2x3 matrix per keypoint per
// batch element. Data is contiguous row-major: index = ((b*N+n)*2+i)*3+j.
// Columns 0-1 hold the 2x2 linear block, column 2 the center.
type LAF struct {
	B, N int
	Data []float64
}

// New allocates a zero-filled frame batch for b images with n keypoints each.
func New(b, n int) *LAF {
	return &LAF{B: b, N: n, Data: make([]float64, b*n*6)}
}

// FromSlice wraps existing data as a frame batch. The slice is used directly,
// not copied, and must hold exactly b*n*6 values.
func FromSlice(b, n int, data []float64) (*LAF, error) {
	l := &LAF{B: b, N: n, Data: data}
	if err := Validate(l); err != nil {
		return nil, err
	}
	return l, nil
}

// At returns entry (i, j) of the frame for keypoint n in batch element b.
func (l *LAF) At(b, n, i, j int) float64 {
	return l.Data[((b*l.N+n)*2+i)*3+j]
}

// Set stores entry (i, j) of the frame for keypoint n in batch element b.
func (l *LAF) Set(b, n, i, j int, v float64) {
	l.Data[((b*l.N+n)*2+i)*3+j] = v
}

// Clone returns a deep copy.
func (l *LAF) Clone() *LAF {
	out := &LAF{B: l.B, N: l.N, Data: make([]float64, len(l.Data))}
	copy(out.Data, l.Data)
	return out
}

// Select returns a copy holding only the keypoints of batch element b whose
// mask entry is true, as a batch of one.
func (l *LAF) Select(b int, mask []bool) *LAF {
	var kept int
	for _, m := range mask {
		if m {
			kept++
		}
	}
	out := New(1, kept)
	var n int
	for k, m := range mask {
		if !m {
			continue
		}
		for i := 0; i < 2; i++ {
			for j := 0; j < 3; j++ {
				out.Set(0, n, i, j, l.At(b, k, i, j))
			}
		}
		n++
	}
	return out
}

func (l *LAF) String() string {
	return fmt.Sprintf("LAF[%dx%dx2x3]", l.B, l.N)
}

// Validate checks the frame batch contract: non-nil, non-negative dimensions
// and backing data of exactly B*N*2*3 values. Every operation in this package
// calls it on entry.
func Validate(l *LAF) error {
	if l == nil {
		return &ShapeError{msg: "laf: nil frame batch"}
	}
	if l.B < 0 || l.N < 0 {
		return &ShapeError{msg: fmt.Sprintf("laf: negative dimensions %dx%d", l.B, l.N)}
	}
	if len(l.Data) != l.B*l.N*6 {
		return &ShapeError{msg: fmt.Sprintf(
			"laf: expected %dx%dx2x3 values (%d), got %d", l.B, l.N, l.B*l.N*6, len(l.Data))}
	}
	return nil
}

package laf

import "fmt"

// ShapeError reports a frame batch whose dimensions or backing data violate
// the 2x3-per-keypoint contract, or a batch-size mismatch between frames and
// images. It always indicates a caller error and is never retried.
type ShapeError struct {
	msg string
}

func (e *ShapeError) Error() string { return e.msg }

// ShapeErrorf builds a ShapeError from a format string.
func ShapeErrorf(format string, args ...any) *ShapeError {
	return &ShapeError{msg: fmt.Sprintf(format, args...)}
}

// ArgumentError reports an argument of the wrong kind or arity, such as a
// rescale coefficient that is neither a scalar nor a per-keypoint table.
type ArgumentError struct {
	msg string
}

func (e *ArgumentError) Error() string { return e.msg }

// ArgumentErrorf builds an ArgumentError from a format string.
func ArgumentErrorf(format string, args ...any) *ArgumentError {
	return &ArgumentError{msg: fmt.Sprintf(format, args...)}
}

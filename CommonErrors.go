package physics2d

import (
	"errors"
	"fmt"
)

var (
	/// ErrGraphLocked is returned by every mutating call made while a step is
	/// in progress, typically from inside a listener callback.
	ErrGraphLocked = errors.New("physics2d: collision graph is locked")

	/// ErrAllocatorExhausted is returned when the block allocator reached its
	/// configured chunk limit.
	ErrAllocatorExhausted = errors.New("physics2d: block allocator exhausted")

	/// ErrInvalidProfile reports a body, fixture or joint profile that cannot
	/// be realized.
	ErrInvalidProfile = errors.New("physics2d: invalid profile")

	ErrInvalidStep = errors.New("physics2d: invalid time step")
)

type ShapeType uint8

const (
	ShapeCircle ShapeType = iota
	ShapePolygon
)

func (t ShapeType) String() string {
	switch t {
	case ShapeCircle:
		return "circle"
	case ShapePolygon:
		return "polygon"
	}
	return fmt.Sprintf("shape(%d)", uint8(t))
}

/// ShapeError is returned when a shape fails validation at construction.
type ShapeError struct {
	Shape  ShapeType
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("physics2d: invalid %s: %s", e.Shape, e.Reason)
}

func shapeErrorf(shape ShapeType, format string, args ...any) *ShapeError {
	return &ShapeError{Shape: shape, Reason: fmt.Sprintf(format, args...)}
}

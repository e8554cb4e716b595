package canvas

import (
	"errors"
	"fmt"
)

// Vec2 is a 2D offset in canvas points.
type Vec2 struct {
	X float64
	Y float64
}

// Size is a width/height pair in canvas points.
type Size struct {
	Width  float64
	Height float64
}

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Transform describes an item's placement on the canvas. It is an immutable
// value: edits replace the whole transform, never individual fields.
type Transform struct {
	Translation Vec2
	Scale       float64
	Rotation    float64 // radians
	Size        Size
}

// Identity returns the neutral transform. The size is zero; callers must
// assign an explicit size before the item is displayable.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Validate checks the transform invariants: positive scale, non-negative size.
func (t Transform) Validate() error {
	if t.Scale <= 0 {
		return fmt.Errorf("transform scale must be positive, got %v", t.Scale)
	}
	if t.Size.Width < 0 || t.Size.Height < 0 {
		return errors.New("transform size components must be non-negative")
	}
	return nil
}

// WithSize returns a copy of the transform carrying the given size.
func (t Transform) WithSize(size Size) Transform {
	t.Size = size
	return t
}

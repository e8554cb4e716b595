// Package canvas defines the editable value types for a collage session.
//
// A canvas holds Items, one per placed photo. Each item owns its base
// bitmap, an optional segmentation cutout, the derived rendered bitmap
// shown on screen, a placement Transform, and a stacking position. Items
// are mutated only by the composition engine; this package keeps the types
// and their derivation rules (active source, displayable image, shader
// toggle semantics) in one place so they can be tested without the engine.
package canvas

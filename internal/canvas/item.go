package canvas

import (
	"image"

	"github.com/google/uuid"
)

// Item is the per-photo editable unit on a canvas. The composition engine
// exclusively owns all live items for the duration of an edit session.
type Item struct {
	ID uuid.UUID

	// BaseImage is the original bitmap, exclusively owned by the item once
	// added. CutoutImage is present only after successful segmentation.
	// Rendered is the currently displayable bitmap derived from the active
	// source plus the shader stack; it defaults to the base image until
	// derivation completes.
	BaseImage   image.Image
	CutoutImage image.Image
	Rendered    image.Image

	// BasePath and CutoutPath are asset-store keys once persisted; empty for
	// unsaved items.
	BasePath   string
	CutoutPath string

	UsesCutout  bool
	ShaderStack []Shader
	Transform   Transform
	ZPosition   int

	// ProcessingCutout is true strictly while a segmentation task for this
	// item is in flight. RequiresAssetSave is set whenever base or cutout
	// pixel data changed since the last persisted write; it drives the
	// save-time write-skip optimization.
	ProcessingCutout  bool
	RequiresAssetSave bool
}

// NewItem creates a fresh, unsaved item for a just-added photo.
func NewItem(base image.Image, transform Transform, zPosition int) *Item {
	return &Item{
		ID:                uuid.New(),
		BaseImage:         base,
		Rendered:          base,
		Transform:         transform,
		ZPosition:         zPosition,
		RequiresAssetSave: true,
	}
}

// ActiveImage returns the source the shader stack applies to: the cutout
// when active and present, the base otherwise.
func (i *Item) ActiveImage() image.Image {
	if i.UsesCutout && i.CutoutImage != nil {
		return i.CutoutImage
	}
	return i.BaseImage
}

// DisplayImage returns the best currently-available bitmap for this item.
// It never returns nil for an item holding a base image.
func (i *Item) DisplayImage() image.Image {
	if i.Rendered != nil {
		return i.Rendered
	}
	return i.ActiveImage()
}

// HasShader reports whether the shader is present in the stack.
func (i *Item) HasShader(shader Shader) bool {
	for _, s := range i.ShaderStack {
		if s == shader {
			return true
		}
	}
	return false
}

// ToggleShader removes the first occurrence of the shader if present,
// otherwise appends it. It reports whether the shader is present afterwards.
func (i *Item) ToggleShader(shader Shader) bool {
	for idx, s := range i.ShaderStack {
		if s == shader {
			i.ShaderStack = append(i.ShaderStack[:idx], i.ShaderStack[idx+1:]...)
			return false
		}
	}
	i.ShaderStack = append(i.ShaderStack, shader)
	return true
}

// Clone returns a copy of the item with its own shader stack. Image bitmaps
// are shared: they are immutable once attached to an item.
func (i *Item) Clone() *Item {
	cp := *i
	cp.ShaderStack = make([]Shader, len(i.ShaderStack))
	copy(cp.ShaderStack, i.ShaderStack)
	return &cp
}

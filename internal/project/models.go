package project

import (
	"time"

	"github.com/google/uuid"

	"montage/internal/canvas"
)

// Collage is the durable representation of a saved canvas.
type Collage struct {
	ID           uuid.UUID
	SnapshotPath string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Items        []Item
}

// Item is the durable projection of a canvas item: paths instead of pixel
// buffers, no processing flags. Stacking order lives in ZPosition; the list
// order of Items is deterministic but not semantically meaningful.
type Item struct {
	ID          uuid.UUID
	BasePath    string
	CutoutPath  string
	UsesCutout  bool
	ZPosition   int
	Transform   canvas.Transform
	ShaderStack []canvas.Shader
}

// NewCollage creates an empty project record for a fresh edit session.
func NewCollage(id uuid.UUID) Collage {
	now := time.Now().UTC()
	return Collage{ID: id, CreatedAt: now, UpdatedAt: now}
}

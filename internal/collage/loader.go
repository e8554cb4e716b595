package collage

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"montage/internal/canvas"
	"montage/internal/logging"
)

// Load replaces the canvas with a stored collage. Items whose base image
// cannot be resolved are dropped silently; a collage that loses every item
// opens as an empty, still-editable canvas. Each surviving item's rendered
// bitmap is computed synchronously so the canvas shows final images
// immediately rather than placeholders.
func (e *Engine) Load(ctx context.Context, id uuid.UUID) error {
	record, err := e.deps.Projects.FetchOne(ctx, id)
	if err != nil {
		return fmt.Errorf("load collage: %w", err)
	}
	logger := e.logger.With(logging.FieldCollageID, id.String())

	items := make([]*canvas.Item, 0, len(record.Items))
	for _, stored := range record.Items {
		if stored.BasePath == "" {
			logger.Debug("dropping item without base path",
				logging.FieldItemID, stored.ID.String())
			continue
		}
		base, err := e.deps.Assets.Read(stored.BasePath)
		if err != nil {
			logger.Warn("dropping item with unreadable base image",
				logging.FieldItemID, stored.ID.String(),
				logging.FieldAssetKey, stored.BasePath,
				logging.Error(err))
			continue
		}
		item := &canvas.Item{
			ID:          stored.ID,
			BaseImage:   base,
			BasePath:    stored.BasePath,
			CutoutPath:  stored.CutoutPath,
			UsesCutout:  stored.UsesCutout,
			Transform:   stored.Transform,
			ZPosition:   stored.ZPosition,
			ShaderStack: append([]canvas.Shader(nil), stored.ShaderStack...),
		}
		if stored.CutoutPath != "" {
			cutout, err := e.deps.Assets.Read(stored.CutoutPath)
			if err != nil {
				logger.Warn("cutout unreadable, falling back to base",
					logging.FieldItemID, stored.ID.String(),
					logging.FieldAssetKey, stored.CutoutPath,
					logging.Error(err))
				item.CutoutPath = ""
				item.UsesCutout = false
			} else {
				item.CutoutImage = cutout
			}
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].ZPosition < items[b].ZPosition
	})

	e.mu.Lock()
	e.collageID = record.ID
	e.createdAt = record.CreatedAt
	e.snapshotPath = record.SnapshotPath
	e.items = items
	e.selected = uuid.Nil
	e.dirty = false
	for _, item := range items {
		item.Rendered = e.renderLocked(item)
	}
	e.mu.Unlock()

	logger.Info("collage loaded", "items", len(items), "stored_items", len(record.Items))
	e.emit(Event{Kind: EventCanvasChanged})
	return nil
}

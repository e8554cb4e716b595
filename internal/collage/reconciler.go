package collage

import (
	"context"
	"errors"
	"time"

	"montage/internal/assets"
	"montage/internal/canvas"
	"montage/internal/imaging"
	"montage/internal/logging"
	"montage/internal/project"
)

// Snapshot dimensions used when no viewport was ever reported.
const (
	defaultSnapshotWidth  = 1080
	defaultSnapshotHeight = 1920
)

// ErrSaveInProgress reports an overlapping SaveCollage call; saves are not
// re-entrant.
var ErrSaveInProgress = errors.New("collage: save already in progress")

// SaveCollage reconciles the canvas with durable storage. Individual asset
// writes, the record upsert, and the photo export are all best-effort: a
// failure degrades the stored record but never the in-memory canvas, and the
// editor is dismissed either way. An empty canvas is treated as a discard —
// no project record is created.
//
// Asset writes that succeed are committed back into the live items even when
// the record upsert fails, so a later save does not redo them. That leaves
// durable storage behind the canvas until the next successful save.
func (e *Engine) SaveCollage(ctx context.Context) error {
	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return ErrSaveInProgress
	}
	if len(e.items) == 0 {
		e.mu.Unlock()
		e.emit(Event{Kind: EventDismiss, Refresh: false})
		return nil
	}
	e.saving = true
	id := e.collageID
	createdAt := e.createdAt
	snapshotPath := e.snapshotPath
	size := e.snapshotSizeLocked()
	working := make([]*canvas.Item, len(e.items))
	for i, item := range e.items {
		working[i] = item.Clone()
	}
	e.mu.Unlock()
	e.emit(Event{Kind: EventSaveStarted})

	logger := e.logger.With(logging.FieldCollageID, id.String())

	for _, item := range working {
		if !item.RequiresAssetSave && item.BasePath != "" {
			continue
		}
		baseKey := assets.BaseKey(id, item.ID)
		if err := e.deps.Assets.Write(baseKey, item.BaseImage, assets.EncodingJPEG); err != nil {
			logger.Warn("base asset write failed",
				logging.FieldItemID, item.ID.String(),
				logging.FieldAssetKey, baseKey,
				logging.Error(err))
			continue
		}
		item.BasePath = baseKey
		cutoutOK := true
		if item.CutoutImage != nil {
			cutoutKey := assets.CutoutKey(id, item.ID)
			if err := e.deps.Assets.Write(cutoutKey, item.CutoutImage, assets.EncodingPNG); err != nil {
				logger.Warn("cutout asset write failed",
					logging.FieldItemID, item.ID.String(),
					logging.FieldAssetKey, cutoutKey,
					logging.Error(err))
				cutoutOK = false
			} else {
				item.CutoutPath = cutoutKey
			}
		}
		if cutoutOK {
			item.RequiresAssetSave = false
		}
	}

	snapshot := imaging.Flatten(working, size)
	snapshotKey := assets.SnapshotKey(id)
	if err := e.deps.Assets.Write(snapshotKey, snapshot, assets.EncodingJPEG); err != nil {
		logger.Warn("snapshot write failed",
			logging.FieldAssetKey, snapshotKey, logging.Error(err))
	} else {
		snapshotPath = snapshotKey
	}

	record := project.Collage{
		ID:           id,
		SnapshotPath: snapshotPath,
		CreatedAt:    createdAt,
		UpdatedAt:    time.Now().UTC(),
		Items:        make([]project.Item, 0, len(working)),
	}
	for _, item := range working {
		record.Items = append(record.Items, project.Item{
			ID:          item.ID,
			BasePath:    item.BasePath,
			CutoutPath:  item.CutoutPath,
			UsesCutout:  item.UsesCutout,
			ZPosition:   item.ZPosition,
			Transform:   item.Transform,
			ShaderStack: append([]canvas.Shader(nil), item.ShaderStack...),
		})
	}
	if err := e.deps.Projects.Upsert(ctx, record); err != nil {
		logger.Warn("project upsert failed", logging.Error(err))
	}

	// Commit paths and flags to the live canvas whether or not the upsert
	// landed: successful asset writes must not be redone on a retry.
	e.mu.Lock()
	for _, saved := range working {
		live := e.itemLocked(saved.ID)
		if live == nil {
			continue
		}
		live.BasePath = saved.BasePath
		live.CutoutPath = saved.CutoutPath
		live.RequiresAssetSave = saved.RequiresAssetSave
	}
	e.snapshotPath = snapshotPath
	e.mu.Unlock()

	if e.deps.Exporter != nil {
		if err := e.deps.Exporter.Export(ctx, snapshot); err != nil {
			logger.Warn("photo export failed", logging.Error(err))
		}
	}

	e.mu.Lock()
	e.saving = false
	e.dirty = false
	e.mu.Unlock()

	logger.Info("collage saved", "items", len(record.Items))
	e.emit(Event{Kind: EventSaveFinished})
	e.emit(Event{Kind: EventDismiss, Refresh: true})
	return nil
}

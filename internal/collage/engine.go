package collage

import (
	"context"
	"image"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"montage/internal/canvas"
	"montage/internal/config"
	"montage/internal/imaging"
	"montage/internal/logging"
)

// segTask is the handle for one in-flight segmentation. The map entry is
// compared by pointer at merge time, so a superseded task can never commit.
type segTask struct {
	cancel context.CancelFunc
}

// Engine owns the live canvas for one editing session.
type Engine struct {
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger

	mu           sync.Mutex
	collageID    uuid.UUID
	createdAt    time.Time
	snapshotPath string
	items        []*canvas.Item
	selected     uuid.UUID
	canvasSize   canvas.Size
	dirty        bool
	saving       bool
	closed       bool

	// segTasks holds at most one live segmentation per item id; renderGen
	// counts render submissions per item for last-submitted-wins checks.
	segTasks  map[uuid.UUID]*segTask
	renderGen map[uuid.UUID]uint64

	listener Listener
	wg       sync.WaitGroup
}

// NewEngine constructs an engine for a fresh, empty canvas. Use Load to open
// a stored collage into it.
func NewEngine(cfg *config.Config, deps Deps) (*Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       cfg,
		deps:      deps,
		logger:    logging.WithComponent(deps.Logger, "collage"),
		collageID: uuid.New(),
		createdAt: time.Now().UTC(),
		segTasks:  make(map[uuid.UUID]*segTask),
		renderGen: make(map[uuid.UUID]uint64),
	}, nil
}

// SetListener registers the change-notification callback. Pass nil to stop
// receiving events.
func (e *Engine) SetListener(fn Listener) {
	e.mu.Lock()
	e.listener = fn
	e.mu.Unlock()
}

// SetCanvasSize records the current viewport, used to size newly added items.
func (e *Engine) SetCanvasSize(size canvas.Size) {
	e.mu.Lock()
	e.canvasSize = size
	e.mu.Unlock()
}

// CollageID returns the identity the session will persist under.
func (e *Engine) CollageID() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.collageID
}

// AddImage normalizes the photo, places it at a default size proportional to
// the viewport, stacks it on top, and selects it. Returns the new item's id.
func (e *Engine) AddImage(img image.Image) uuid.UUID {
	scaled := imaging.Downscale(img, e.cfg.Canvas.MaxImageDimension)

	e.mu.Lock()
	transform := e.defaultTransformLocked(scaled)
	item := canvas.NewItem(scaled, transform, e.maxZLocked()+1)
	e.items = append(e.items, item)
	e.selected = item.ID
	e.dirty = true
	id := item.ID
	e.mu.Unlock()

	e.logger.Debug("image added", logging.FieldItemID, id.String())
	e.emit(Event{Kind: EventCanvasChanged, ItemID: id})
	return id
}

// SelectItem sets the selection. A non-nil id also promotes that item above
// every other and re-sorts the list ascending by z-position, so selection
// always brings an item to the visual front. uuid.Nil clears the selection.
func (e *Engine) SelectItem(id uuid.UUID) {
	e.mu.Lock()
	if id == uuid.Nil {
		e.selected = uuid.Nil
		e.mu.Unlock()
		e.emit(Event{Kind: EventCanvasChanged})
		return
	}
	item := e.itemLocked(id)
	if item == nil {
		e.mu.Unlock()
		return
	}
	item.ZPosition = e.maxZLocked() + 1
	sort.SliceStable(e.items, func(a, b int) bool {
		return e.items[a].ZPosition < e.items[b].ZPosition
	})
	e.selected = id
	e.dirty = true
	e.mu.Unlock()
	e.emit(Event{Kind: EventCanvasChanged, ItemID: id})
}

// ToggleCutout flips the selected item between its base photo and its
// segmented cutout. Deactivating is synchronous; activating launches a
// segmentation task, cancelling any previous one for the same item.
func (e *Engine) ToggleCutout() {
	e.mu.Lock()
	item := e.selectedLocked()
	if item == nil || e.closed {
		e.mu.Unlock()
		return
	}
	id := item.ID

	if item.UsesCutout {
		item.UsesCutout = false
		item.Rendered = e.renderLocked(item)
		e.dirty = true
		e.mu.Unlock()
		e.emit(Event{Kind: EventItemRendered, ItemID: id})
		return
	}

	if prev := e.segTasks[id]; prev != nil {
		prev.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	task := &segTask{cancel: cancel}
	e.segTasks[id] = task
	item.ProcessingCutout = true
	src := item.BaseImage
	e.wg.Add(1)
	e.mu.Unlock()

	e.emit(Event{Kind: EventCutoutStarted, ItemID: id})
	go func() {
		defer e.wg.Done()
		defer cancel()
		cutout, err := e.deps.Segmenter.Cutout(ctx, src)
		e.finishCutout(id, task, cutout, err)
	}()
}

func (e *Engine) finishCutout(id uuid.UUID, task *segTask, cutout image.Image, err error) {
	e.mu.Lock()
	if e.segTasks[id] != task {
		// Superseded by a newer task or the item was deleted.
		e.mu.Unlock()
		return
	}
	delete(e.segTasks, id)
	item := e.itemLocked(id)
	if item == nil {
		e.mu.Unlock()
		return
	}
	item.ProcessingCutout = false
	if err != nil || cutout == nil {
		e.mu.Unlock()
		if err != nil {
			e.logger.Debug("segmentation yielded no cutout",
				logging.FieldItemID, id.String(), logging.Error(err))
		}
		e.emit(Event{Kind: EventCutoutFinished, ItemID: id})
		return
	}
	item.CutoutImage = cutout
	item.UsesCutout = true
	item.RequiresAssetSave = true
	item.Rendered = e.renderLocked(item)
	e.dirty = true
	e.mu.Unlock()

	e.emit(Event{Kind: EventCutoutFinished, ItemID: id})
	e.emit(Event{Kind: EventItemRendered, ItemID: id})
}

// ToggleShader adds the shader to the selected item's stack, or removes its
// first occurrence when already present, then re-renders the item. Removing
// the last shader renders synchronously; otherwise rendering happens on a
// background task with last-submitted-wins semantics.
func (e *Engine) ToggleShader(shader canvas.Shader) {
	e.mu.Lock()
	item := e.selectedLocked()
	if item == nil || e.closed {
		e.mu.Unlock()
		return
	}
	id := item.ID
	item.ToggleShader(shader)
	e.dirty = true
	e.renderGen[id]++
	gen := e.renderGen[id]

	if len(item.ShaderStack) == 0 {
		item.Rendered = item.ActiveImage()
		e.mu.Unlock()
		e.emit(Event{Kind: EventCanvasChanged, ItemID: id})
		e.emit(Event{Kind: EventItemRendered, ItemID: id})
		return
	}

	stack := append([]canvas.Shader(nil), item.ShaderStack...)
	src := item.ActiveImage()
	e.wg.Add(1)
	e.mu.Unlock()

	e.emit(Event{Kind: EventCanvasChanged, ItemID: id})
	go func() {
		defer e.wg.Done()
		out, err := e.deps.Shaders.Apply(context.Background(), stack, src)
		if err != nil || out == nil {
			// Filtering failed; fall back to the unfiltered source.
			e.logger.Debug("shader render failed",
				logging.FieldItemID, id.String(), logging.Error(err))
			out = src
		}
		e.mu.Lock()
		if e.renderGen[id] != gen {
			e.mu.Unlock()
			return
		}
		target := e.itemLocked(id)
		if target == nil {
			e.mu.Unlock()
			return
		}
		target.Rendered = out
		e.mu.Unlock()
		e.emit(Event{Kind: EventItemRendered, ItemID: id})
	}()
}

// UpdateTransform replaces an item's placement wholesale. Callers commit the
// final transform at gesture end, not incremental deltas.
func (e *Engine) UpdateTransform(id uuid.UUID, transform canvas.Transform) {
	if err := transform.Validate(); err != nil {
		e.logger.Warn("rejecting invalid transform",
			logging.FieldItemID, id.String(), logging.Error(err))
		return
	}
	e.mu.Lock()
	item := e.itemLocked(id)
	if item == nil {
		e.mu.Unlock()
		return
	}
	item.Transform = transform
	e.dirty = true
	e.mu.Unlock()
	e.emit(Event{Kind: EventCanvasChanged, ItemID: id})
}

// DeleteSelectedItem removes the selected item, cancelling any in-flight
// segmentation for it, and clears the selection. Stored assets for saved
// items are left alone; whole-project deletion cleans those up.
func (e *Engine) DeleteSelectedItem() {
	e.mu.Lock()
	item := e.selectedLocked()
	if item == nil {
		e.mu.Unlock()
		return
	}
	id := item.ID
	if task := e.segTasks[id]; task != nil {
		task.cancel()
		delete(e.segTasks, id)
	}
	delete(e.renderGen, id)
	for i, it := range e.items {
		if it.ID == id {
			e.items = append(e.items[:i], e.items[i+1:]...)
			break
		}
	}
	e.selected = uuid.Nil
	e.dirty = true
	e.mu.Unlock()

	e.logger.Debug("item deleted", logging.FieldItemID, id.String())
	e.emit(Event{Kind: EventCanvasChanged, ItemID: id})
}

// RenderedImage returns the best currently-available bitmap for the item,
// or nil when no such item exists.
func (e *Engine) RenderedImage(id uuid.UUID) image.Image {
	e.mu.Lock()
	defer e.mu.Unlock()
	item := e.itemLocked(id)
	if item == nil {
		return nil
	}
	return item.DisplayImage()
}

// Items returns a snapshot of the canvas in stacking order. The returned
// items are clones; mutating them does not affect the live canvas.
func (e *Engine) Items() []*canvas.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*canvas.Item, len(e.items))
	for i, item := range e.items {
		out[i] = item.Clone()
	}
	return out
}

// SelectedID returns the selected item's id, or uuid.Nil when nothing is
// selected.
func (e *Engine) SelectedID() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// HasUnsavedChanges reports whether the canvas diverged from its last save.
func (e *Engine) HasUnsavedChanges() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// IsSaving reports whether a save protocol run is in flight.
func (e *Engine) IsSaving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// Flattened composites the current canvas into a single bitmap.
func (e *Engine) Flattened() image.Image {
	items := e.Items()
	e.mu.Lock()
	size := e.snapshotSizeLocked()
	e.mu.Unlock()
	return imaging.Flatten(items, size)
}

// Discard abandons the session without persisting anything and signals the
// navigation collaborator to close without a gallery refresh.
func (e *Engine) Discard() {
	e.mu.Lock()
	for id, task := range e.segTasks {
		task.cancel()
		delete(e.segTasks, id)
	}
	e.items = nil
	e.selected = uuid.Nil
	e.dirty = false
	e.mu.Unlock()
	e.emit(Event{Kind: EventDismiss, Refresh: false})
}

// Wait blocks until every in-flight background task has completed and its
// result, if still current, has been merged.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Close cancels outstanding work and waits for background tasks to drain.
// The engine accepts no new async work afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	for id, task := range e.segTasks {
		task.cancel()
		delete(e.segTasks, id)
	}
	e.mu.Unlock()
	e.wg.Wait()
}

// renderLocked applies the item's shader stack to its active source
// synchronously and bumps the render generation so in-flight background
// renders for the item are discarded. Caller holds e.mu.
func (e *Engine) renderLocked(item *canvas.Item) image.Image {
	e.renderGen[item.ID]++
	src := item.ActiveImage()
	if len(item.ShaderStack) == 0 {
		return src
	}
	out, err := e.deps.Shaders.Apply(context.Background(), item.ShaderStack, src)
	if err != nil || out == nil {
		return src
	}
	return out
}

// defaultTransformLocked sizes a new item to the configured fraction of the
// viewport, aspect-preserving and never scaled up past natural size. Falls
// back to fixed dimensions when no viewport has been reported yet.
func (e *Engine) defaultTransformLocked(img image.Image) canvas.Transform {
	bounds := img.Bounds()
	iw, ih := float64(bounds.Dx()), float64(bounds.Dy())

	maxW := e.cfg.Canvas.FallbackItemWidth
	maxH := e.cfg.Canvas.FallbackItemHeight
	if !e.canvasSize.IsZero() {
		maxW = e.canvasSize.Width * e.cfg.Canvas.DefaultItemFraction
		maxH = e.canvasSize.Height * e.cfg.Canvas.DefaultItemFraction
	}
	scale := maxW / iw
	if s := maxH / ih; s < scale {
		scale = s
	}
	if scale > 1 {
		scale = 1
	}
	t := canvas.Identity()
	t.Size = canvas.Size{Width: iw * scale, Height: ih * scale}
	return t
}

func (e *Engine) snapshotSizeLocked() canvas.Size {
	if !e.canvasSize.IsZero() {
		return e.canvasSize
	}
	return canvas.Size{Width: defaultSnapshotWidth, Height: defaultSnapshotHeight}
}

func (e *Engine) maxZLocked() int {
	max := 0
	for _, item := range e.items {
		if item.ZPosition > max {
			max = item.ZPosition
		}
	}
	return max
}

func (e *Engine) itemLocked(id uuid.UUID) *canvas.Item {
	for _, item := range e.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

func (e *Engine) selectedLocked() *canvas.Item {
	if e.selected == uuid.Nil {
		return nil
	}
	return e.itemLocked(e.selected)
}

func (e *Engine) emit(ev Event) {
	e.mu.Lock()
	listener := e.listener
	e.mu.Unlock()
	if listener != nil {
		listener(ev)
	}
}

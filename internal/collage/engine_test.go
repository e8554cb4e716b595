package collage_test

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/google/uuid"

	"montage/internal/canvas"
	"montage/internal/collage"
	"montage/internal/testsupport"
)

func TestAddImageSizesToViewportFraction(t *testing.T) {
	env := newEngineEnv(t)
	env.engine.SetCanvasSize(canvas.Size{Width: 400, Height: 300})

	id := env.engine.AddImage(photo(800, 600))

	items := env.engine.Items()
	if len(items) != 1 {
		t.Fatalf("item count %d, want 1", len(items))
	}
	if env.engine.SelectedID() != id {
		t.Errorf("selected %s, want %s", env.engine.SelectedID(), id)
	}
	if !env.engine.HasUnsavedChanges() {
		t.Error("canvas not marked dirty after add")
	}
	size := items[0].Transform.Size
	if size.Width != 240 || size.Height != 180 {
		t.Errorf("default size %+v, want 240x180", size)
	}
	if items[0].ZPosition != 1 {
		t.Errorf("z-position %d, want 1", items[0].ZPosition)
	}
	if !items[0].RequiresAssetSave {
		t.Error("fresh item should require asset save")
	}
}

func TestAddImageFallbackSizeWithoutViewport(t *testing.T) {
	env := newEngineEnv(t)

	env.engine.AddImage(photo(400, 400))

	size := env.engine.Items()[0].Transform.Size
	if size.Width != 200 || size.Height != 200 {
		t.Errorf("fallback size %+v, want 200x200", size)
	}
	if size.Width <= 0 || size.Height <= 0 {
		t.Errorf("non-positive default size %+v", size)
	}
}

func TestAddImageDownscalesLargePhotos(t *testing.T) {
	env := newEngineEnv(t)
	env.cfg.Canvas.MaxImageDimension = 64

	env.engine.AddImage(photo(200, 100))

	bounds := env.engine.Items()[0].BaseImage.Bounds()
	if bounds.Dx() != 64 || bounds.Dy() != 32 {
		t.Errorf("base image %dx%d, want 64x32", bounds.Dx(), bounds.Dy())
	}
}

func TestToggleShaderParityAndDelete(t *testing.T) {
	env := newEngineEnv(t)
	env.engine.AddImage(photo(64, 64))

	env.engine.ToggleShader(canvas.ShaderPixellate)
	stack := env.engine.Items()[0].ShaderStack
	if len(stack) != 1 || stack[0] != canvas.ShaderPixellate {
		t.Fatalf("stack %v, want [pixellate]", stack)
	}

	env.engine.ToggleShader(canvas.ShaderPixellate)
	if stack := env.engine.Items()[0].ShaderStack; len(stack) != 0 {
		t.Fatalf("stack %v after second toggle, want empty", stack)
	}

	env.engine.DeleteSelectedItem()
	if n := len(env.engine.Items()); n != 0 {
		t.Errorf("item count %d after delete, want 0", n)
	}
	if env.engine.SelectedID() != uuid.Nil {
		t.Error("selection not cleared by delete")
	}
}

func TestToggleShaderPreservesStackOrder(t *testing.T) {
	env := newEngineEnv(t)
	env.engine.AddImage(photo(64, 64))

	env.engine.ToggleShader(canvas.ShaderGrainy)
	env.engine.ToggleShader(canvas.ShaderLens)
	env.engine.ToggleShader(canvas.ShaderSpectral)
	env.engine.ToggleShader(canvas.ShaderLens)
	env.engine.Wait()

	stack := env.engine.Items()[0].ShaderStack
	want := []canvas.Shader{canvas.ShaderGrainy, canvas.ShaderSpectral}
	if len(stack) != len(want) {
		t.Fatalf("stack %v, want %v", stack, want)
	}
	for i := range want {
		if stack[i] != want[i] {
			t.Fatalf("stack %v, want %v", stack, want)
		}
	}
}

func TestSelectItemBringsToFront(t *testing.T) {
	env := newEngineEnv(t)
	itemA := env.engine.AddImage(photo(64, 64))
	itemB := env.engine.AddImage(photo(64, 64))

	// zPositions are [1,2]; selecting A promotes it past B.
	env.engine.SelectItem(itemA)

	items := env.engine.Items()
	if items[0].ID != itemB || items[1].ID != itemA {
		t.Fatalf("stacking order [%s,%s], want [B,A]", items[0].ID, items[1].ID)
	}
	if items[0].ZPosition != 2 || items[1].ZPosition != 3 {
		t.Errorf("z-positions [%d,%d], want [2,3]", items[0].ZPosition, items[1].ZPosition)
	}
	if env.engine.SelectedID() != itemA {
		t.Errorf("selected %s, want %s", env.engine.SelectedID(), itemA)
	}
}

func TestSelectItemNilClearsSelection(t *testing.T) {
	env := newEngineEnv(t)
	env.engine.AddImage(photo(64, 64))

	env.engine.SelectItem(uuid.Nil)

	if env.engine.SelectedID() != uuid.Nil {
		t.Error("selection not cleared")
	}
	if env.engine.Toolbar().Visible {
		t.Error("toolbar visible with no selection")
	}
}

func TestRenderedImageAccessor(t *testing.T) {
	env := newEngineEnv(t)
	id := env.engine.AddImage(photo(64, 64))

	if env.engine.RenderedImage(id) == nil {
		t.Error("rendered image nil for existing item")
	}
	if env.engine.RenderedImage(uuid.New()) != nil {
		t.Error("rendered image non-nil for unknown item")
	}
}

func TestToolbarReflectsSelection(t *testing.T) {
	env := newEngineEnv(t)
	id := env.engine.AddImage(photo(64, 64))
	env.engine.ToggleShader(canvas.ShaderAlien)
	env.engine.Wait()

	state := env.engine.Toolbar()
	if !state.Visible || state.ItemID != id {
		t.Fatalf("toolbar %+v, want visible for %s", state, id)
	}
	if len(state.Shaders) != len(canvas.AllShaders()) {
		t.Fatalf("shader statuses %d, want %d", len(state.Shaders), len(canvas.AllShaders()))
	}
	for _, status := range state.Shaders {
		want := status.Shader == canvas.ShaderAlien
		if status.Active != want {
			t.Errorf("shader %s active=%v, want %v", status.Shader, status.Active, want)
		}
	}
}

func TestUpdateTransformReplacesWholesale(t *testing.T) {
	env := newEngineEnv(t)
	id := env.engine.AddImage(photo(64, 64))

	next := canvas.Transform{
		Translation: canvas.Vec2{X: 12, Y: -8},
		Scale:       1.5,
		Rotation:    0.25,
		Size:        canvas.Size{Width: 120, Height: 90},
	}
	env.engine.UpdateTransform(id, next)

	if got := env.engine.Items()[0].Transform; got != next {
		t.Errorf("transform %+v, want %+v", got, next)
	}
}

func TestUpdateTransformRejectsInvalid(t *testing.T) {
	env := newEngineEnv(t)
	id := env.engine.AddImage(photo(64, 64))
	before := env.engine.Items()[0].Transform

	env.engine.UpdateTransform(id, canvas.Transform{Scale: 0, Size: canvas.Size{Width: 10, Height: 10}})

	if got := env.engine.Items()[0].Transform; got != before {
		t.Errorf("invalid transform applied: %+v", got)
	}
}

func TestToggleCutoutActivates(t *testing.T) {
	env := newEngineEnv(t)
	started := make(chan struct{})
	release := make(chan struct{})
	cutout := testsupport.NewImage(8, 8, color.NRGBA{B: 1, A: 255})
	env.segmenter.fn = func(call int, ctx context.Context, img image.Image) (image.Image, error) {
		close(started)
		<-release
		return cutout, nil
	}
	env.engine.AddImage(photo(64, 64))

	env.engine.ToggleCutout()
	<-started
	if !env.engine.Toolbar().ProcessingCutout {
		t.Error("processing flag not observable while segmentation in flight")
	}

	close(release)
	env.engine.Wait()

	item := env.engine.Items()[0]
	if !item.UsesCutout {
		t.Error("cutout not activated")
	}
	if item.CutoutImage != cutout {
		t.Error("cutout image not stored")
	}
	if item.ProcessingCutout {
		t.Error("processing flag not cleared")
	}
	if !item.RequiresAssetSave {
		t.Error("cutout success should mark item for asset save")
	}
}

func TestToggleCutoutDeactivateIsSynchronous(t *testing.T) {
	env := newEngineEnv(t)
	env.engine.AddImage(photo(64, 64))
	env.engine.ToggleCutout()
	env.engine.Wait()
	segCalls := env.segmenter.callCount()

	env.engine.ToggleCutout()

	item := env.engine.Items()[0]
	if item.UsesCutout {
		t.Error("cutout still active after deactivation")
	}
	if env.segmenter.callCount() != segCalls {
		t.Error("deactivation launched a segmentation task")
	}
	if item.Rendered == nil {
		t.Error("rendered image missing after deactivation")
	}
}

func TestToggleCutoutFailureIsSilent(t *testing.T) {
	env := newEngineEnv(t)
	env.segmenter.fn = func(call int, ctx context.Context, img image.Image) (image.Image, error) {
		return nil, context.DeadlineExceeded
	}
	env.engine.AddImage(photo(64, 64))

	env.engine.ToggleCutout()
	env.events.await(t, collage.EventCutoutFinished)
	env.engine.Wait()

	item := env.engine.Items()[0]
	if item.UsesCutout || item.CutoutImage != nil {
		t.Error("failed segmentation left cutout state behind")
	}
	if item.ProcessingCutout {
		t.Error("processing flag not cleared on failure")
	}
}

func TestToggleCutoutSecondRequestWins(t *testing.T) {
	env := newEngineEnv(t)
	firstStarted := make(chan struct{})
	firstRelease := make(chan struct{})
	first := testsupport.NewImage(3, 3, color.NRGBA{R: 9, A: 255})
	second := testsupport.NewImage(5, 5, color.NRGBA{G: 9, A: 255})
	env.segmenter.fn = func(call int, ctx context.Context, img image.Image) (image.Image, error) {
		if call == 1 {
			close(firstStarted)
			// Ignore cancellation to simulate a result landing late.
			<-firstRelease
			return first, nil
		}
		return second, nil
	}
	env.engine.AddImage(photo(64, 64))

	env.engine.ToggleCutout()
	<-firstStarted
	env.engine.ToggleCutout()
	env.events.await(t, collage.EventCutoutFinished)

	// Let the superseded first task complete and attempt its merge.
	close(firstRelease)
	env.engine.Wait()

	item := env.engine.Items()[0]
	if item.CutoutImage != second {
		t.Error("stale segmentation result overwrote the newer one")
	}
	if !item.UsesCutout || item.ProcessingCutout {
		t.Errorf("cutout state usesCutout=%v processing=%v after double toggle",
			item.UsesCutout, item.ProcessingCutout)
	}
}

func TestDeleteCancelsInFlightSegmentation(t *testing.T) {
	env := newEngineEnv(t)
	started := make(chan struct{})
	env.segmenter.fn = func(call int, ctx context.Context, img image.Image) (image.Image, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	env.engine.AddImage(photo(64, 64))

	env.engine.ToggleCutout()
	<-started
	env.engine.DeleteSelectedItem()
	env.engine.Wait()

	if n := len(env.engine.Items()); n != 0 {
		t.Errorf("item count %d after delete, want 0", n)
	}
}

func TestToggleShaderLastSubmittedWins(t *testing.T) {
	env := newEngineEnv(t)
	firstStarted := make(chan struct{})
	firstRelease := make(chan struct{})
	stale := testsupport.NewImage(3, 3, color.NRGBA{R: 7, A: 255})
	fresh := testsupport.NewImage(5, 5, color.NRGBA{G: 7, A: 255})
	env.shaders.fn = func(call int, ctx context.Context, shaders []canvas.Shader, img image.Image) (image.Image, error) {
		if call == 1 {
			close(firstStarted)
			<-firstRelease
			return stale, nil
		}
		return fresh, nil
	}
	env.engine.AddImage(photo(64, 64))

	env.engine.ToggleShader(canvas.ShaderGrainy)
	<-firstStarted
	env.engine.ToggleShader(canvas.ShaderLens)
	env.events.await(t, collage.EventItemRendered)

	close(firstRelease)
	env.engine.Wait()

	if got := env.engine.Items()[0].Rendered; got != fresh {
		t.Error("stale shader render overwrote the newer one")
	}
}

func TestToggleShaderEmptyStackRendersSynchronously(t *testing.T) {
	env := newEngineEnv(t)
	env.engine.AddImage(photo(64, 64))

	env.engine.ToggleShader(canvas.ShaderGrayscale)
	env.events.await(t, collage.EventItemRendered)
	calls := env.shaders.callCount()

	env.engine.ToggleShader(canvas.ShaderGrayscale)

	item := env.engine.Items()[0]
	if item.Rendered != item.BaseImage {
		t.Error("empty stack should render the active source immediately")
	}
	if env.shaders.callCount() != calls {
		t.Error("empty stack dispatched a shader render")
	}
}

func TestToggleOpsRequireSelection(t *testing.T) {
	env := newEngineEnv(t)
	env.engine.AddImage(photo(64, 64))
	env.engine.SelectItem(uuid.Nil)

	env.engine.ToggleCutout()
	env.engine.ToggleShader(canvas.ShaderLens)
	env.engine.Wait()

	item := env.engine.Items()[0]
	if item.UsesCutout || len(item.ShaderStack) != 0 {
		t.Error("toggle operated without a selection")
	}
	if env.segmenter.callCount() != 0 {
		t.Error("segmentation launched without a selection")
	}
}

func TestDiscardSignalsDismissWithoutRefresh(t *testing.T) {
	env := newEngineEnv(t)
	env.engine.AddImage(photo(64, 64))

	env.engine.Discard()

	ev, ok := env.events.find(collage.EventDismiss)
	if !ok {
		t.Fatal("no dismiss event after discard")
	}
	if ev.Refresh {
		t.Error("discard requested a gallery refresh")
	}
	if n := len(env.engine.Items()); n != 0 {
		t.Errorf("item count %d after discard, want 0", n)
	}
	if env.projects.upsertCount() != 0 {
		t.Error("discard persisted a project record")
	}
}

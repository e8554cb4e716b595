package collage_test

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"montage/internal/assets"
	"montage/internal/canvas"
	"montage/internal/collage"
	"montage/internal/config"
	"montage/internal/project"
	"montage/internal/testsupport"
)

type fakeSegmenter struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, ctx context.Context, img image.Image) (image.Image, error)
}

func (f *fakeSegmenter) Cutout(ctx context.Context, img image.Image) (image.Image, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		return fn(call, ctx, img)
	}
	return testsupport.NewImage(8, 8, color.NRGBA{R: 1, A: 255}), nil
}

func (f *fakeSegmenter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeShaders struct {
	mu     sync.Mutex
	calls  int
	stacks [][]canvas.Shader
	fn     func(call int, ctx context.Context, shaders []canvas.Shader, img image.Image) (image.Image, error)
}

func (f *fakeShaders) Apply(ctx context.Context, shaders []canvas.Shader, img image.Image) (image.Image, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.stacks = append(f.stacks, append([]canvas.Shader(nil), shaders...))
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		return fn(call, ctx, shaders, img)
	}
	return testsupport.NewImage(2, 2, color.NRGBA{G: 1, A: 255}), nil
}

func (f *fakeShaders) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeAssets struct {
	mu       sync.Mutex
	images   map[string]image.Image
	writes   map[string]int
	failKeys map[string]bool
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{
		images:   make(map[string]image.Image),
		writes:   make(map[string]int),
		failKeys: make(map[string]bool),
	}
}

func (f *fakeAssets) Write(key string, img image.Image, encoding assets.Encoding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys[key] {
		return fmt.Errorf("write %s: disk full", key)
	}
	f.images[key] = img
	f.writes[key]++
	return nil
}

func (f *fakeAssets) Read(key string) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.images[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", assets.ErrNotFound, key)
	}
	return img, nil
}

func (f *fakeAssets) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.images, key)
	return nil
}

func (f *fakeAssets) writeCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes[key]
}

func (f *fakeAssets) drop(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.images, key)
}

type fakeProjects struct {
	mu        sync.Mutex
	records   map[uuid.UUID]project.Collage
	upserts   int
	upsertErr error
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{records: make(map[uuid.UUID]project.Collage)}
}

func (f *fakeProjects) FetchAll(ctx context.Context) ([]project.Collage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]project.Collage, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].UpdatedAt.After(out[b].UpdatedAt) })
	return out, nil
}

func (f *fakeProjects) FetchOne(ctx context.Context, id uuid.UUID) (*project.Collage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", project.ErrNotFound, id)
	}
	cp := rec
	cp.Items = append([]project.Item(nil), rec.Items...)
	return &cp, nil
}

func (f *fakeProjects) Upsert(ctx context.Context, rec project.Collage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	cp := rec
	cp.Items = append([]project.Item(nil), rec.Items...)
	f.records[rec.ID] = cp
	return nil
}

func (f *fakeProjects) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.records[id]
	delete(f.records, id)
	return ok, nil
}

func (f *fakeProjects) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts
}

func (f *fakeProjects) record(id uuid.UUID) (project.Collage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	return rec, ok
}

type fakeExporter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeExporter) Export(ctx context.Context, img image.Image) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeExporter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// eventRecorder captures engine events and broadcasts each on a channel so
// tests can wait for background merges deterministically.
type eventRecorder struct {
	mu     sync.Mutex
	events []collage.Event
	ch     chan collage.Event
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{ch: make(chan collage.Event, 64)}
}

func (r *eventRecorder) listen(ev collage.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	select {
	case r.ch <- ev:
	default:
	}
}

func (r *eventRecorder) await(t *testing.T, kind collage.EventKind) collage.Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-r.ch:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", kind)
		}
	}
}

func (r *eventRecorder) find(kind collage.EventKind) (collage.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.Kind == kind {
			return ev, true
		}
	}
	return collage.Event{}, false
}

type engineEnv struct {
	cfg       *config.Config
	segmenter *fakeSegmenter
	shaders   *fakeShaders
	assets    *fakeAssets
	projects  *fakeProjects
	exporter  *fakeExporter
	events    *eventRecorder
	engine    *collage.Engine
}

func newEngineEnv(t *testing.T) *engineEnv {
	t.Helper()
	env := &engineEnv{
		cfg:       testsupport.NewConfig(t),
		segmenter: &fakeSegmenter{},
		shaders:   &fakeShaders{},
		assets:    newFakeAssets(),
		projects:  newFakeProjects(),
		exporter:  &fakeExporter{},
		events:    newEventRecorder(),
	}
	engine, err := collage.NewEngine(env.cfg, collage.Deps{
		Segmenter: env.segmenter,
		Shaders:   env.shaders,
		Assets:    env.assets,
		Projects:  env.projects,
		Exporter:  env.exporter,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	engine.SetListener(env.events.listen)
	t.Cleanup(engine.Close)
	env.engine = engine
	return env
}

func photo(w, h int) image.Image {
	return testsupport.NewImage(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
}

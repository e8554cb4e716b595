package gallery_test

import (
	"context"
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/google/uuid"

	"montage/internal/assets"
	"montage/internal/gallery"
	"montage/internal/logging"
	"montage/internal/project"
	"montage/internal/testsupport"
)

func seedCollage(t *testing.T, projects *project.Store, store *assets.Store, updatedAt time.Time) project.Collage {
	t.Helper()
	collage := project.NewCollage(uuid.New())
	collage.UpdatedAt = updatedAt
	itemID := uuid.New()
	baseKey := assets.BaseKey(collage.ID, itemID)
	cutoutKey := assets.CutoutKey(collage.ID, itemID)
	snapshotKey := assets.SnapshotKey(collage.ID)

	img := testsupport.NewImage(16, 16, color.NRGBA{R: 90, G: 60, B: 30, A: 255})
	for _, write := range []struct {
		key      string
		encoding assets.Encoding
	}{
		{baseKey, assets.EncodingJPEG},
		{cutoutKey, assets.EncodingPNG},
		{snapshotKey, assets.EncodingJPEG},
	} {
		if err := store.Write(write.key, img, write.encoding); err != nil {
			t.Fatalf("seed asset %s: %v", write.key, err)
		}
	}

	collage.SnapshotPath = snapshotKey
	collage.Items = []project.Item{{
		ID:         itemID,
		BasePath:   baseKey,
		CutoutPath: cutoutKey,
		UsesCutout: true,
		ZPosition:  1,
	}}
	if err := projects.Upsert(context.Background(), collage); err != nil {
		t.Fatalf("seed collage: %v", err)
	}
	return collage
}

func TestListMostRecentFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	projects := testsupport.MustOpenProjectStore(t, cfg)
	store := testsupport.MustOpenAssetStore(t, cfg)
	svc := gallery.NewService(projects, store, logging.NewNop())

	old := seedCollage(t, projects, store, time.Now().UTC().Add(-time.Hour))
	recent := seedCollage(t, projects, store, time.Now().UTC())

	entries, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entry count %d, want 2", len(entries))
	}
	if entries[0].ID != recent.ID || entries[1].ID != old.ID {
		t.Errorf("order [%s,%s], want most recent first", entries[0].ID, entries[1].ID)
	}
	if entries[0].ItemCount != 1 {
		t.Errorf("item count %d, want 1", entries[0].ItemCount)
	}
}

func TestSnapshotResolvesImage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	projects := testsupport.MustOpenProjectStore(t, cfg)
	store := testsupport.MustOpenAssetStore(t, cfg)
	svc := gallery.NewService(projects, store, logging.NewNop())

	collage := seedCollage(t, projects, store, time.Now().UTC())

	img, err := svc.Snapshot(context.Background(), collage.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Errorf("snapshot width %d, want 16", img.Bounds().Dx())
	}
}

func TestDeleteRemovesRecordAndAssets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	projects := testsupport.MustOpenProjectStore(t, cfg)
	store := testsupport.MustOpenAssetStore(t, cfg)
	svc := gallery.NewService(projects, store, logging.NewNop())
	ctx := context.Background()

	collage := seedCollage(t, projects, store, time.Now().UTC())
	item := collage.Items[0]

	if err := svc.Delete(ctx, collage.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := projects.FetchOne(ctx, collage.ID); !errors.Is(err, project.ErrNotFound) {
		t.Fatalf("record fetch err = %v, want ErrNotFound", err)
	}
	for _, key := range []string{collage.SnapshotPath, item.BasePath, item.CutoutPath} {
		if _, err := store.Read(key); !errors.Is(err, assets.ErrNotFound) {
			t.Errorf("asset %s still readable after delete (err=%v)", key, err)
		}
	}
}

func TestDeleteMissingCollage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	projects := testsupport.MustOpenProjectStore(t, cfg)
	store := testsupport.MustOpenAssetStore(t, cfg)
	svc := gallery.NewService(projects, store, logging.NewNop())

	if err := svc.Delete(context.Background(), uuid.New()); !errors.Is(err, project.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

package testsupport

import (
	"testing"

	"montage/internal/assets"
	"montage/internal/config"
	"montage/internal/logging"
	"montage/internal/project"
)

// MustOpenProjectStore opens a project.Store for tests and registers cleanup.
func MustOpenProjectStore(t testing.TB, cfg *config.Config) *project.Store {
	t.Helper()

	store, err := project.Open(cfg)
	if err != nil {
		t.Fatalf("project.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenAssetStore opens an assets.Store rooted in the test config's
// asset directory.
func MustOpenAssetStore(t testing.TB, cfg *config.Config) *assets.Store {
	t.Helper()

	store, err := assets.NewStore(cfg.Paths.AssetDir, cfg.Canvas.JPEGQuality, logging.NewNop())
	if err != nil {
		t.Fatalf("assets.NewStore: %v", err)
	}
	return store
}

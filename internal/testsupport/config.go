// Package testsupport builds throwaway configs, stores, and images for
// package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"montage/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.AssetDir = filepath.Join(base, "assets")
	cfg.Paths.ExportDir = filepath.Join(base, "exports")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	return &cfg
}

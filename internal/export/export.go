// Package export copies flattened collage snapshots into the user's export
// directory, standing in for a photo-library integration. Exports are
// best-effort: callers treat failures as a missing output, not an error
// state.
package export

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"montage/internal/config"
	"montage/internal/imaging"
	"montage/internal/logging"
)

// DirExporter writes JPEG snapshots into a flat directory.
type DirExporter struct {
	dir     string
	quality int
	logger  *slog.Logger
}

func NewDirExporter(cfg *config.Config, logger *slog.Logger) *DirExporter {
	return &DirExporter{
		dir:     cfg.Paths.ExportDir,
		quality: cfg.Canvas.JPEGQuality,
		logger:  logging.WithComponent(logger, "export"),
	}
}

// Export writes the image under a timestamped name. The file lands via a
// temp-file rename, so readers never observe a partial JPEG.
func (e *DirExporter) Export(ctx context.Context, img image.Image) error {
	if img == nil {
		return fmt.Errorf("export: nil image")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	name := fmt.Sprintf("montage-%s-%s.jpeg",
		time.Now().Format("20060102-150405"), uuid.NewString()[:8])
	path := filepath.Join(e.dir, name)

	tmp, err := os.CreateTemp(e.dir, ".export-*")
	if err != nil {
		return fmt.Errorf("create export temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()
	if err := imaging.EncodeJPEG(tmp, img, e.quality); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("finalize export: %w", err)
	}

	e.logger.Info("snapshot exported", "path", path)
	return nil
}

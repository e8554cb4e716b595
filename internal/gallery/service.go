package gallery

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"montage/internal/assets"
	"montage/internal/logging"
	"montage/internal/project"
)

// Entry summarizes one stored collage for listing.
type Entry struct {
	ID           uuid.UUID
	SnapshotPath string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ItemCount    int
}

// Service answers gallery queries against the project and asset stores.
type Service struct {
	projects *project.Store
	assets   *assets.Store
	logger   *slog.Logger
}

func NewService(projects *project.Store, assetStore *assets.Store, logger *slog.Logger) *Service {
	return &Service{
		projects: projects,
		assets:   assetStore,
		logger:   logging.WithComponent(logger, "gallery"),
	}
}

// List returns all stored collages, most recently updated first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	collages, err := s.projects.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collages: %w", err)
	}
	entries := make([]Entry, 0, len(collages))
	for _, c := range collages {
		entries = append(entries, Entry{
			ID:           c.ID,
			SnapshotPath: c.SnapshotPath,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
			ItemCount:    len(c.Items),
		})
	}
	return entries, nil
}

// Snapshot resolves the flattened preview image for a stored collage.
func (s *Service) Snapshot(ctx context.Context, id uuid.UUID) (image.Image, error) {
	collage, err := s.projects.FetchOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if collage.SnapshotPath == "" {
		return nil, fmt.Errorf("collage %s has no snapshot", id)
	}
	return s.assets.Read(collage.SnapshotPath)
}

// Delete removes a stored collage and best-effort deletes its asset files.
// The record goes first: a failed asset cleanup leaves orphaned files, never
// dangling references.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	collage, err := s.projects.FetchOne(ctx, id)
	if err != nil {
		return err
	}
	removed, err := s.projects.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete collage: %w", err)
	}
	if !removed {
		return fmt.Errorf("%w: %s", project.ErrNotFound, id)
	}

	keys := make([]string, 0, 2*len(collage.Items)+1)
	if collage.SnapshotPath != "" {
		keys = append(keys, collage.SnapshotPath)
	}
	for _, item := range collage.Items {
		if item.BasePath != "" {
			keys = append(keys, item.BasePath)
		}
		if item.CutoutPath != "" {
			keys = append(keys, item.CutoutPath)
		}
	}
	for _, key := range keys {
		if err := s.assets.Delete(key); err != nil {
			s.logger.Warn("asset cleanup failed",
				logging.FieldCollageID, id.String(),
				logging.FieldAssetKey, key,
				logging.Error(err))
		}
	}
	s.logger.Info("collage deleted",
		logging.FieldCollageID, id.String(), "assets", len(keys))
	return nil
}

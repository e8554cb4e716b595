// Package session assembles an editing session: the composition engine wired
// to the real segmenter, shader pipeline, and stores, guarded by a per-collage
// file lock so only one editor touches a collage at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"montage/internal/assets"
	"montage/internal/collage"
	"montage/internal/config"
	"montage/internal/export"
	"montage/internal/imaging"
	"montage/internal/logging"
	"montage/internal/project"
)

// ErrLocked reports that another process is editing the collage.
var ErrLocked = errors.New("collage is being edited by another process")

// Session owns the stores and engine for one editing run.
type Session struct {
	cfg    *config.Config
	logger *slog.Logger

	projects *project.Store
	assets   *assets.Store
	engine   *collage.Engine

	lock *flock.Flock
}

// Open builds a session over a fresh, empty canvas. Use Load to open a
// stored collage into it.
func Open(cfg *config.Config, logger *slog.Logger) (*Session, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	projects, err := project.Open(cfg)
	if err != nil {
		return nil, err
	}
	assetStore, err := assets.NewStore(cfg.Paths.AssetDir, cfg.Canvas.JPEGQuality, logger)
	if err != nil {
		projects.Close()
		return nil, err
	}
	engine, err := collage.NewEngine(cfg, collage.Deps{
		Segmenter: imaging.NewSegmenter(logger),
		Shaders:   imaging.NewPipeline(logger),
		Assets:    assetStore,
		Projects:  projects,
		Exporter:  export.NewDirExporter(cfg, logger),
		Logger:    logger,
	})
	if err != nil {
		projects.Close()
		return nil, err
	}

	s := &Session{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "session"),
		projects: projects,
		assets:   assetStore,
		engine:   engine,
	}
	if err := s.acquire(engine.CollageID()); err != nil {
		engine.Close()
		projects.Close()
		return nil, err
	}
	return s, nil
}

// Load opens a stored collage into the session's engine, moving the editor
// lock to that collage's id first.
func (s *Session) Load(ctx context.Context, id uuid.UUID) error {
	if err := s.acquire(id); err != nil {
		return err
	}
	return s.engine.Load(ctx, id)
}

// Engine exposes the composition engine for the duration of the session.
func (s *Session) Engine() *collage.Engine { return s.engine }

// Projects exposes the backing project store, shared with gallery queries.
func (s *Session) Projects() *project.Store { return s.projects }

// Assets exposes the backing asset store.
func (s *Session) Assets() *assets.Store { return s.assets }

// Close drains engine work, releases the editor lock, and closes the store.
func (s *Session) Close() error {
	s.engine.Close()
	s.release()
	return s.projects.Close()
}

// acquire takes the editor lock for the given collage id, releasing any
// previously held lock first.
func (s *Session) acquire(id uuid.UUID) error {
	lockDir := s.cfg.LockDir()
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}
	lockPath := filepath.Join(lockDir, id.String()+".lock")
	if s.lock != nil && s.lock.Path() == lockPath {
		return nil
	}
	next := flock.New(lockPath)
	ok, err := next.TryLock()
	if err != nil {
		return fmt.Errorf("acquire editor lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, id)
	}
	s.release()
	s.lock = next
	s.logger.Debug("editor lock acquired", logging.FieldCollageID, id.String())
	return nil
}

func (s *Session) release() {
	if s.lock == nil {
		return
	}
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release editor lock", logging.Error(err))
	}
	s.lock = nil
}

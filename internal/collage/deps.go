package collage

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"github.com/google/uuid"

	"montage/internal/assets"
	"montage/internal/canvas"
	"montage/internal/project"
)

// Segmenter isolates the foreground subject of an image. ErrNoForeground-style
// failures are expected and handled as a silent no-op by the engine.
type Segmenter interface {
	Cutout(ctx context.Context, img image.Image) (image.Image, error)
}

// ShaderPipeline applies an ordered shader stack to a source image. A failure
// leaves the caller with the unfiltered source.
type ShaderPipeline interface {
	Apply(ctx context.Context, shaders []canvas.Shader, img image.Image) (image.Image, error)
}

// AssetStore persists and resolves image bitmaps by key. Writes with the same
// key overwrite, so repeated saves of unchanged content are idempotent.
type AssetStore interface {
	Write(key string, img image.Image, encoding assets.Encoding) error
	Read(key string) (image.Image, error)
	Delete(key string) error
}

// ProjectStore is durable structured storage for collage records.
type ProjectStore interface {
	FetchAll(ctx context.Context) ([]project.Collage, error)
	FetchOne(ctx context.Context, id uuid.UUID) (*project.Collage, error)
	Upsert(ctx context.Context, collage project.Collage) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// PhotoExporter copies a flattened snapshot to the user's photo collection.
// Export is best-effort: its outcome never affects save success.
type PhotoExporter interface {
	Export(ctx context.Context, img image.Image) error
}

// Deps carries the external collaborators an engine needs. Exporter and
// Logger are optional.
type Deps struct {
	Segmenter Segmenter
	Shaders   ShaderPipeline
	Assets    AssetStore
	Projects  ProjectStore
	Exporter  PhotoExporter
	Logger    *slog.Logger
}

func (d Deps) validate() error {
	if d.Segmenter == nil {
		return errors.New("collage: segmenter is required")
	}
	if d.Shaders == nil {
		return errors.New("collage: shader pipeline is required")
	}
	if d.Assets == nil {
		return errors.New("collage: asset store is required")
	}
	if d.Projects == nil {
		return errors.New("collage: project store is required")
	}
	return nil
}

package logging

import "log/slog"

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldCollageID is the standardized structured logging key for collage identifiers.
	FieldCollageID = "collage_id"
	// FieldItemID is the standardized structured logging key for canvas item identifiers.
	FieldItemID = "item_id"
	// FieldShader is the standardized structured logging key for shader identifiers.
	FieldShader = "shader"
	// FieldAssetKey is the standardized structured logging key for asset-store keys.
	FieldAssetKey = "asset_key"
)

// WithComponent returns a logger tagged with a component name.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return NewNop().With(slog.String(FieldComponent, component))
	}
	return logger.With(slog.String(FieldComponent, component))
}

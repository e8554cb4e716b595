package assets

import (
	"fmt"

	"github.com/google/uuid"
)

// BaseKey returns the asset key for an item's base photo.
func BaseKey(collageID, itemID uuid.UUID) string {
	return fmt.Sprintf("%s-%s-base.jpeg", collageID, itemID)
}

// CutoutKey returns the asset key for an item's segmentation cutout.
func CutoutKey(collageID, itemID uuid.UUID) string {
	return fmt.Sprintf("%s-%s-cutout.png", collageID, itemID)
}

// SnapshotKey returns the asset key for a collage's flattened snapshot.
func SnapshotKey(collageID uuid.UUID) string {
	return fmt.Sprintf("%s-snapshot.jpeg", collageID)
}

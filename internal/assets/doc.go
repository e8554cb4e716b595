// Package assets persists item bitmaps and collage snapshots as files.
//
// Keys are derived deterministically from collage and item identifiers, so
// a re-save of the same item overwrites its previous assets instead of
// accumulating copies. Base photos and snapshots use lossy JPEG; cutouts
// carry an alpha channel and use lossless PNG. Writes go through a
// temporary file and rename so readers never observe a partial image.
package assets

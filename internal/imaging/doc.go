// Package imaging implements the pixel-level capabilities the collage core
// consumes through interfaces: bounded downscaling, JPEG/PNG codecs for the
// asset store, the shader pipeline, foreground segmentation, and the
// flattened-snapshot compositor.
//
// Shaders operate on NRGBA copies and apply cumulatively in stack order; a
// shader that fails is skipped so the rest of the stack still applies.
// Segmentation is a deterministic heuristic (border-sampled background
// model plus largest connected component) behind the same contract a
// model-backed segmenter would satisfy: a cutout image on success,
// ErrNoForeground when nothing plausible is found.
package imaging

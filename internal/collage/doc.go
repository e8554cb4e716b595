// Package collage implements the composition engine at the center of an
// editing session: it owns the live canvas item list, orchestrates cutout
// segmentation and shader re-rendering asynchronously per item, resolves
// selection and stacking order, and runs the save protocol that reconciles
// canvas state with durable storage.
//
// All mutations of canvas state are serialized through a single mutex
// (single-writer discipline). Heavy work — segmentation, shader filtering,
// asset encoding — runs on background goroutines that never touch shared
// state directly; they compute a result and merge it back under the lock,
// discarding it when the target item is gone or a newer request has since
// superseded it.
package collage

// Package project persists saved collages in SQLite and exposes the
// durable record types the reconciler and gallery consume.
//
// A Collage record carries asset paths, transforms, shader stacks, and
// stacking order — never pixel data. Upserts replace the item rows of a
// collage wholesale inside one transaction, matching the save protocol's
// whole-record semantics. Schema changes bump the version in schema.go;
// users clear the database to adopt the new schema.
package project

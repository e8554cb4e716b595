// Package gallery provides the read side of saved collages: listing stored
// projects most-recently-updated first, resolving their snapshots, and
// deleting a project together with its stored assets.
package gallery

// Package logging builds the slog loggers Montage components share.
//
// It wires console or JSON handlers from configuration, mirrors log output
// into the log directory, and supplies attribute helpers plus standardized
// field keys (component, collage_id, item_id, shader) so engine, stores,
// and CLI emit uniformly queryable records.
package logging

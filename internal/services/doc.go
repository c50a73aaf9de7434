// Package services defines shared utilities consumed by the workflows and the
// Jellyfin integration.
//
// Key responsibilities:
//   - Context helpers that stamp the running operation, the acting user, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper, so configuration
//     problems, connectivity failures, and unreadable files can be told apart
//     with errors.Is at any layer.
//
// Use these helpers when wiring new workflow code so error reporting and
// observability stay uniform across commands.
package services

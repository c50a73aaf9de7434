// Package main hosts the jtools CLI entrypoint and command graph.
//
// The Cobra command tree exports and imports Jellyfin favorites, scans a
// library for low-resolution movies and duplicates, renders snapshot files
// offline, and manages the stored connection. Configuration resolution,
// connection flags, and logger setup live in the shared command context so
// each subcommand only wires flags to the internal workflow packages.
//
// Keep this package lean: new behavior belongs in the internal packages first
// and is surfaced here through a dedicated command or flag.
package main

// Package resolution classifies library movies by video resolution.
//
// Classify resolves a movie's dimensions from the movie record, its first
// media source, or that source's first video stream (first hit wins) and
// compares them against a maximum. Filter and Statistics are pure functions
// over a movie slice; Scanner fetches the library through a catalog.Catalog
// and degrades to an empty library when the server cannot be read.
package resolution

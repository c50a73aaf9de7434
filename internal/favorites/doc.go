// Package favorites exports a user's favorite movies and people to a portable
// snapshot and re-applies a snapshot to a server.
//
// Export never aborts on a single failed listing: the affected list is left
// empty and a warning is logged. Import walks movies and then people strictly
// in order. Each item is first marked by its snapshot id; when the server
// rejects that id (typically because the snapshot came from another server)
// the item is searched by name and the first exact match is marked instead.
// Item failures are collected in the Outcome rather than returned as errors;
// the only error Import returns is a cancelled context.
package favorites

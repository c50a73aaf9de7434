// Package jellyfin implements the catalog contract against the Jellyfin REST
// API.
//
// Client authenticates every request with the X-Emby-Token header, pages
// through item queries, paces favorite toggles, and tags failures with the
// services error markers (404 becomes ErrNotFound, everything else
// ErrConnectivity). BreakerClient wraps any catalog with a circuit breaker so
// a bulk import against an unreachable server fails fast.
package jellyfin

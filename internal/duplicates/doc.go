// Package duplicates groups library movies whose titles normalize to the same
// key and recommends which copies to delete.
//
// Detection is a pure function over a movie slice. RecommendForDeletion ranks
// group members by picture and file quality so the best copy is kept; the
// heuristics only suggest, nothing is ever deleted from the server.
package duplicates

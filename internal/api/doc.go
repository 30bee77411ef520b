// Package api exposes the HTTP surface around the reel pipeline: the upload
// endpoint that creates work folders, the gallery of finished reels, and a
// read-only view of the attempt store.
//
// The daemon mounts NewRouter when paths.api_bind is set. Handlers never run
// pipeline stages themselves; they only write into the upload root and read
// the reels directory, so the queue processor remains the single writer of
// reels and the ledger.
package api

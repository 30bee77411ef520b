// Package daemon coordinates the long-running Reelsmith process.
//
// It wires the attempt store, the ledger, the queue processor, and the
// optional HTTP API into a single lifecycle, with a flock-based lock in the
// state directory so only one process ever appends to the ledger.
//
// Keep orchestration logic here: pipeline stages live in their own packages
// while the daemon focuses on startup, shutdown, and status.
package daemon

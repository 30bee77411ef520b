// Package daemonrun assembles a full daemon process from configuration:
// logging, startup checks, scratch cleanup, the attempt store, the ledger,
// the stage implementations, and the daemon lifecycle. Both reelsmithd and
// "reelsmith run" enter through Run.
package daemonrun

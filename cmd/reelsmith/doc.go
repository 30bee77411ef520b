// Command reelsmith is the operator CLI for the reel pipeline: it runs the
// daemon in the foreground, inspects the attempt store and the ledger,
// clears parked folders, and checks the host for missing dependencies.
package main

// Package ledger persists the set of work folders that already produced a reel.
//
// The ledger is a plain text file with one folder identifier per line. It is
// only ever appended to by the queue processor, which holds the daemon lock, so
// there is exactly one writer. Readers collapse duplicate lines.
package ledger

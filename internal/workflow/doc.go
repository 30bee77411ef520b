// Package workflow runs the folder-queue processor.
//
// Each cycle the Manager loads the ledger, lists the upload root, and walks
// every eligible work folder one at a time: synthesize narration, assemble
// the reel, record the folder in the ledger. Folders that are not ready or
// that fail are left un-done and reconsidered on the next cycle; the attempt
// store tracks how often that happened and, when a retry ceiling is
// configured, parks folders that keep failing. Between cycles the Manager
// sleeps for the poll interval, optionally waking early when fsnotify reports
// new uploads.
//
// A ledger that cannot be read or written stops the processor: without it
// there is no safe way to know which folders are finished.
package workflow

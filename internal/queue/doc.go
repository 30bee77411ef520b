// Package queue persists per-folder processing attempts in SQLite.
//
// The Store records status, attempt counts, and the last failure for every
// work folder the processor has touched. It backs the optional retry ceiling:
// once a folder reaches workflow.max_attempts it moves to the terminal failed
// state and is excluded from cycles until an operator retries it. The text
// ledger, not this database, is the authoritative record of finished folders.
//
// The database is treated as operational state. Schema changes bump the
// version in schema.go; operators delete the database to adopt the new schema.
package queue

// Package deps reports whether the external binaries Reelsmith shells out to
// can be resolved.
package deps

// Package staging prunes scratch left behind by interrupted reel assembly:
// stale per-folder directories under <state_dir>/staging and hidden partial
// reels in the reels directory.
package staging

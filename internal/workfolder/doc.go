// Package workfolder models the per-submission directories under the upload
// root: the description file, the accepted images, and the narration audio
// produced for them.
package workfolder

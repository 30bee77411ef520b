// Package preflight provides readiness checks for the directories, binaries,
// and speech provider Reelsmith depends on.
//
// The daemon runs the filesystem checks once at startup and refuses to start
// when one fails. "reelsmith doctor" runs everything, including the provider
// reachability probe.
package preflight

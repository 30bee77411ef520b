// Package textdecode turns description bytes of unknown encoding into text.
//
// Detection relies on byte order marks and UTF-8 validity, falling back to
// windows-1252 for legacy single-byte uploads. Decoding is permissive: bad
// bytes become U+FFFD rather than failing the folder.
package textdecode

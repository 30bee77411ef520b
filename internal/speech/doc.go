// Package speech converts work folder descriptions into narration audio.
//
// Client speaks the provider's JSON API; DecodeResponse classifies its reply
// into either a URLResponse (audio hosted remotely) or an InlineAudioResponse
// (base64 audio in the reply). Synthesizer ties the pieces together for one
// folder and persists description.mp3 atomically.
package speech

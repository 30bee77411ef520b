// Package slideshow assembles narrated image slideshows ("reels") with ffmpeg.
//
// The narration length is split evenly across the folder's images. Images are
// copied into a private scratch directory under sequential names, a concat
// demuxer script is written next to them, and ffmpeg muxes the slides with the
// narration into <reels_dir>/<id>.mp4. The scratch directory never outlives
// the call.
package slideshow

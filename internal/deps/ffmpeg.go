package deps

import "reelsmith/internal/config"

// EncoderRequirements lists the ffmpeg and ffprobe binaries the slideshow
// assembler executes, as configured.
func EncoderRequirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Encodes the slideshow reel",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Measures narration duration",
		},
	}
}

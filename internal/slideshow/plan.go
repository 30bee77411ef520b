package slideshow

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// ScriptName is the concat demuxer input written into the scratch directory.
const ScriptName = "input.txt"

// PerImageDuration splits the narration evenly across n images.
func PerImageDuration(audioSeconds float64, n int) (float64, error) {
	if n <= 0 {
		return 0, errors.New("slideshow: at least one image is required")
	}
	if audioSeconds <= 0 || math.IsNaN(audioSeconds) || math.IsInf(audioSeconds, 0) {
		return 0, fmt.Errorf("slideshow: invalid audio duration %v", audioSeconds)
	}
	return audioSeconds / float64(n), nil
}

// StagedName returns the scratch filename for the i-th image. Staged names
// sort in the same order as the originals.
func StagedName(i int, original string) string {
	return fmt.Sprintf("img%03d%s", i, strings.ToLower(filepath.Ext(original)))
}

// Slide is one timed manifest entry.
type Slide struct {
	File     string
	Duration float64
}

// Manifest is the ordered slide list handed to the encoder.
type Manifest struct {
	Slides []Slide
}

// BuildManifest assigns per seconds to every staged file, in order.
func BuildManifest(files []string, per float64) Manifest {
	slides := make([]Slide, len(files))
	for i, name := range files {
		slides[i] = Slide{File: name, Duration: per}
	}
	return Manifest{Slides: slides}
}

// Render produces the concat script. The last file is listed once more
// without a duration: the concat demuxer ignores the final entry's duration,
// so the repeat holds the last image until -shortest ends the output at the
// audio's length.
func (m Manifest) Render() string {
	if len(m.Slides) == 0 {
		return ""
	}
	var b strings.Builder
	for _, slide := range m.Slides {
		b.WriteString("file ")
		b.WriteString(quote(slide.File))
		b.WriteString("\nduration ")
		b.WriteString(strconv.FormatFloat(slide.Duration, 'f', -1, 64))
		b.WriteByte('\n')
	}
	b.WriteString("file ")
	b.WriteString(quote(m.Slides[len(m.Slides)-1].File))
	b.WriteByte('\n')
	return b.String()
}

// quote wraps name for the concat script, escaping embedded single quotes.
func quote(name string) string {
	return "'" + strings.ReplaceAll(name, "'", `'\''`) + "'"
}

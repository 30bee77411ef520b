package slideshow

import (
	"strings"
	"testing"
)

func TestPerImageDurationSplitsEvenly(t *testing.T) {
	per, err := PerImageDuration(9.0, 3)
	if err != nil {
		t.Fatalf("PerImageDuration: %v", err)
	}
	if per != 3.0 {
		t.Fatalf("per = %v, want 3", per)
	}
	per, _ = PerImageDuration(10, 4)
	if per*4 != 10 {
		t.Fatalf("durations should sum to the audio length, got %v*4", per)
	}
}

func TestPerImageDurationRejectsInvalidInput(t *testing.T) {
	if _, err := PerImageDuration(9, 0); err == nil {
		t.Fatal("expected error for zero images")
	}
	if _, err := PerImageDuration(0, 3); err == nil {
		t.Fatal("expected error for zero duration")
	}
}

func TestRenderHoldsLastFrame(t *testing.T) {
	files := []string{StagedName(0, "a.jpg"), StagedName(1, "b.PNG"), StagedName(2, "c.jpeg")}
	script := BuildManifest(files, 3.0).Render()

	want := strings.Join([]string{
		"file 'img000.jpg'",
		"duration 3",
		"file 'img001.png'",
		"duration 3",
		"file 'img002.jpeg'",
		"duration 3",
		"file 'img002.jpeg'",
		"",
	}, "\n")
	if script != want {
		t.Fatalf("script mismatch:\n%s\nwant:\n%s", script, want)
	}

	fileLines, durationLines := 0, 0
	for _, line := range strings.Split(strings.TrimSpace(script), "\n") {
		switch {
		case strings.HasPrefix(line, "file "):
			fileLines++
		case strings.HasPrefix(line, "duration "):
			durationLines++
		}
	}
	if fileLines != 4 || durationLines != 3 {
		t.Fatalf("expected 4 file and 3 duration lines, got %d/%d", fileLines, durationLines)
	}
}

func TestRenderFractionalDuration(t *testing.T) {
	script := BuildManifest([]string{"img000.png"}, 2.5).Render()
	if !strings.Contains(script, "duration 2.5\n") {
		t.Fatalf("unexpected script %q", script)
	}
	if BuildManifest(nil, 1).Render() != "" {
		t.Fatal("empty manifest should render nothing")
	}
}

func TestQuoteEscapesSingleQuotes(t *testing.T) {
	if got := quote("it's.png"); got != `'it'\''s.png'` {
		t.Fatalf("quote = %s", got)
	}
}

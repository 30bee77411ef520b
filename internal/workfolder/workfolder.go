package workfolder

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// DescriptionFile holds the narration text of a work folder.
	DescriptionFile = "description"
	// AudioFile is the synthesized narration written next to the description.
	AudioFile = "description.mp3"
)

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

// WorkFolder is one user submission under the upload root. ID is the
// directory name and is treated as opaque.
type WorkFolder struct {
	ID   string
	Path string
}

// New binds a work folder by id under uploadDir.
func New(uploadDir, id string) WorkFolder {
	return WorkFolder{ID: id, Path: filepath.Join(uploadDir, id)}
}

// DescriptionPath returns the location of the description file.
func (w WorkFolder) DescriptionPath() string {
	return filepath.Join(w.Path, DescriptionFile)
}

// AudioPath returns the location of the narration audio.
func (w WorkFolder) AudioPath() string {
	return filepath.Join(w.Path, AudioFile)
}

// HasDescription reports whether the description file exists.
func (w WorkFolder) HasDescription() bool {
	return regularFileExists(w.DescriptionPath())
}

// HasAudio reports whether narration audio has been written.
func (w WorkFolder) HasAudio() bool {
	return regularFileExists(w.AudioPath())
}

// Images returns the folder's slideshow images sorted byte-wise by filename.
func (w WorkFolder) Images() (ImageSet, error) {
	entries, err := os.ReadDir(w.Path)
	if err != nil {
		return ImageSet{}, fmt.Errorf("read work folder %s: %w", w.ID, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsImageName(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(w.Path, name)
	}
	return ImageSet{paths: paths}, nil
}

// IsImageName reports whether name carries an accepted image extension.
// Matching is case-insensitive; the content is not inspected.
func IsImageName(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ImageSet is the ordered, immutable list of image paths of a folder.
type ImageSet struct {
	paths []string
}

func (s ImageSet) Len() int {
	return len(s.paths)
}

// Paths returns a copy of the ordered image paths.
func (s ImageSet) Paths() []string {
	return append([]string(nil), s.paths...)
}

// Names returns the base names in order.
func (s ImageSet) Names() []string {
	names := make([]string, len(s.paths))
	for i, p := range s.paths {
		names[i] = filepath.Base(p)
	}
	return names
}

// List returns every work folder directly under uploadDir in directory
// listing order. Hidden directories are ignored; uploads in progress are
// staged under a dot-prefixed name.
func List(uploadDir string) ([]WorkFolder, error) {
	entries, err := os.ReadDir(uploadDir)
	if err != nil {
		return nil, fmt.Errorf("list upload root %s: %w", uploadDir, err)
	}
	folders := make([]WorkFolder, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !entry.IsDir() {
			continue
		}
		folders = append(folders, New(uploadDir, name))
	}
	return folders, nil
}

func regularFileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

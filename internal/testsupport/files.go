package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteWorkFolder creates <uploadDir>/<id> with an optional description and
// the named image files. An empty description skips the description file.
func WriteWorkFolder(t testing.TB, uploadDir, id, description string, images ...string) string {
	t.Helper()

	dir := filepath.Join(uploadDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if description != "" {
		if err := os.WriteFile(filepath.Join(dir, "description"), []byte(description), 0o644); err != nil {
			t.Fatalf("write description: %v", err)
		}
	}
	for i, name := range images {
		WriteFile(t, filepath.Join(dir, name), int64(16+i))
	}
	return dir
}

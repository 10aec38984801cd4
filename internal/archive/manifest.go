package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

// zipEpoch is stamped on every entry so identical inputs give identical bytes.
var zipEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Manifest maps archive-relative paths to content, in insertion order.
// Putting an existing path replaces its content in place.
type Manifest struct {
	paths   []string
	entries map[string][]byte
}

func NewManifest() *Manifest {
	return &Manifest{entries: make(map[string][]byte)}
}

// Put stores data at path.
func (m *Manifest) Put(path string, data []byte) {
	if _, ok := m.entries[path]; !ok {
		m.paths = append(m.paths, path)
	}
	m.entries[path] = data
}

// Get returns the content at path.
func (m *Manifest) Get(path string) ([]byte, bool) {
	data, ok := m.entries[path]
	return data, ok
}

// Paths returns the entry paths in insertion order.
func (m *Manifest) Paths() []string {
	return append([]string(nil), m.paths...)
}

// Zip encodes the manifest as a zip archive.
func (m *Manifest) Zip() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range m.paths {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p,
			Method:   zip.Deflate,
			Modified: zipEpoch,
		})
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", p, err)
		}
		if _, err := w.Write(m.entries[p]); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", p, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

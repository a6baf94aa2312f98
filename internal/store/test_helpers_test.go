package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/sse"
)

// createTestStore creates a new file-backed store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// parseQuads reads a (dataset ...) form.
func parseQuads(t *testing.T, src string) []ir.Quad {
	t.Helper()
	quads, err := sse.ParseDataset(src)
	if err != nil {
		t.Fatalf("ParseDataset() failed: %v", err)
	}
	return quads
}

const testDataset = `(dataset
  (triple :a :p 1)
  (triple :b :p "two")
  (triple :a :q :a)
  (triple :c :name "chat"@fr)
  (triple _:n :p 2.5)
  (quad :g :d :p 3))`

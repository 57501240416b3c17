package index

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Load reads an index from dir and validates sidecar/buffer alignment.
func Load(dir string) (*Index, error) {
	scPath := filepath.Join(dir, SidecarFile)
	b, err := os.ReadFile(scPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read sidecar %s: %w", scPath, err)
	}
	var sc Sidecar
	if err := json.Unmarshal(b, &sc); err != nil {
		return nil, fmt.Errorf("invalid sidecar JSON %s: %w", scPath, err)
	}
	if sc.Dim <= 0 {
		return nil, fmt.Errorf("%w: invalid dim %d in %s", ErrCorrupt, sc.Dim, scPath)
	}
	if sc.Count != len(sc.Items) {
		return nil, fmt.Errorf("%w: sidecar count %d does not match %d items in %s", ErrCorrupt, sc.Count, len(sc.Items), scPath)
	}

	vectors, err := loadVectors(filepath.Join(dir, VectorFile), sc.Count, sc.Dim)
	if err != nil {
		return nil, err
	}
	return &Index{Sidecar: sc, Vectors: vectors}, nil
}

func loadVectors(path string, count, dim int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open vector file %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat vector file %s: %w", path, err)
	}
	expected := int64(count) * int64(dim) * 4
	if st.Size() != expected {
		return nil, fmt.Errorf("%w: vector file size %d, want %d (count=%d dim=%d)", ErrCorrupt, st.Size(), expected, count, dim)
	}

	out := make([]float32, count*dim)
	if err := binary.Read(io.LimitReader(f, expected), binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("cannot read vectors from %s: %w", path, err)
	}
	return out, nil
}

// Cache is the process-wide loaded index. The first Load reads storage;
// every later call returns the same structure. There is no invalidation: a
// changed index requires a new process.
type Cache struct {
	dir  string
	once sync.Once
	idx  *Index
	err  error
}

// NewCache returns a cache for the index at dir. Safe for concurrent use.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Load returns the cached index, reading storage only on the first call.
func (c *Cache) Load() (*Index, error) {
	c.once.Do(func() {
		c.idx, c.err = Load(c.dir)
	})
	return c.idx, c.err
}

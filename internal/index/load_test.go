package index

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/checkline/checkline-cli/internal/facts"
)

func sampleIndex() *Index {
	items := []facts.Fact{
		{
			ID:   "r0-opening_check",
			Text: "Opening Check for restaurant 74 (Harbour View) on 2025-09-20: checks=13 completed=13 passed=13 (comp=100%, pass=100%)",
			Meta: facts.Meta{Type: "Opening_Check", RestaurantKey: "74", RestaurantName: "Harbour View", DateISO: "2025-09-20"},
		},
		{
			ID:   "r1-closing_check",
			Text: "Closing Check for restaurant 75 (Dockside) on 2025-09-21: checks=8 completed=7 passed=7 (comp=87.5%, pass=100%)",
			Meta: facts.Meta{Type: "Closing_Check", RestaurantKey: "75", RestaurantName: "Dockside", DateISO: "2025-09-21"},
		},
	}
	return &Index{
		Sidecar: Sidecar{Dim: 2, Count: 2, Model: "fake:test", Items: items},
		Vectors: []float32{1, 0, 0, 1},
	}
}

func TestWriteLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := sampleIndex()
	if err := Write(dir, src.Sidecar, src.Vectors); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Sidecar.Dim != 2 || got.Sidecar.Count != 2 {
		t.Fatalf("unexpected geometry: %+v", got.Sidecar)
	}
	for i, item := range got.Sidecar.Items {
		want := src.Sidecar.Items[i]
		if item.ID != want.ID || item.Text != want.Text || item.Meta != want.Meta {
			t.Fatalf("item %d did not round-trip:\n got %+v\nwant %+v", i, item, want)
		}
	}
	for i, v := range got.Vectors {
		if v != src.Vectors[i] {
			t.Fatalf("vector float %d did not round-trip: %v vs %v", i, v, src.Vectors[i])
		}
	}
}

func TestLoad_CorruptBufferIsFatal(t *testing.T) {
	dir := t.TempDir()
	src := sampleIndex()
	if err := Write(dir, src.Sidecar, src.Vectors); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// Truncate the buffer so length != count*dim*4.
	if err := os.WriteFile(filepath.Join(dir, VectorFile), []byte{0, 0, 0, 0}, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(dir)
	if err == nil {
		t.Fatalf("expected corruption error")
	}
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestLoad_SidecarCountMismatchIsFatal(t *testing.T) {
	dir := t.TempDir()
	src := sampleIndex()
	if err := Write(dir, src.Sidecar, src.Vectors); err != nil {
		t.Fatalf("Write: %v", err)
	}
	bad := `{"dim":2,"count":3,"items":[]}`
	if err := os.WriteFile(filepath.Join(dir, SidecarFile), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestCache_LoadsOnce(t *testing.T) {
	dir := t.TempDir()
	src := sampleIndex()
	if err := Write(dir, src.Sidecar, src.Vectors); err != nil {
		t.Fatalf("Write: %v", err)
	}

	cache := NewCache(dir)
	first, err := cache.Load()
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}

	// Remove the artifacts; a second Load must serve the cached structure
	// without touching storage.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	second, err := cache.Load()
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if first != second {
		t.Fatalf("cache returned a different structure on the second call")
	}
}

func TestInstall_AtomicReplace(t *testing.T) {
	base := t.TempDir()
	dest := filepath.Join(base, "index")

	first := sampleIndex()
	if err := Install(first, dest); err != nil {
		t.Fatalf("Install: %v", err)
	}

	second := sampleIndex()
	second.Sidecar.Items = second.Sidecar.Items[:1]
	second.Sidecar.Count = 1
	second.Vectors = second.Vectors[:2]
	if err := Install(second, dest); err != nil {
		t.Fatalf("reinstall: %v", err)
	}

	got, err := Load(dest)
	if err != nil {
		t.Fatalf("Load after reinstall: %v", err)
	}
	if got.Sidecar.Count != 1 {
		t.Fatalf("expected replaced index, got count %d", got.Sidecar.Count)
	}
	if _, err := os.Stat(dest + ".bak"); !os.IsNotExist(err) {
		t.Fatalf("backup dir left behind")
	}
}

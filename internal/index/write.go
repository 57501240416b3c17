package index

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Write writes the sidecar and vector buffer into dir. It does not make the
// artifacts live; Install handles the atomic swap.
func Write(dir string, sc Sidecar, vectors []float32) error {
	if sc.Dim <= 0 {
		return fmt.Errorf("invalid dim: %d", sc.Dim)
	}
	if sc.Count != len(sc.Items) {
		return fmt.Errorf("sidecar count %d does not match %d items", sc.Count, len(sc.Items))
	}
	if len(vectors) != sc.Count*sc.Dim {
		return fmt.Errorf("vector length mismatch: got %d want %d", len(vectors), sc.Count*sc.Dim)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create index dir %s: %w", dir, err)
	}

	b, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, SidecarFile), b, 0o644); err != nil {
		return fmt.Errorf("cannot write sidecar: %w", err)
	}

	vf, err := os.Create(filepath.Join(dir, VectorFile))
	if err != nil {
		return fmt.Errorf("cannot create vector file: %w", err)
	}
	if err := binary.Write(vf, binary.LittleEndian, vectors); err != nil {
		_ = vf.Close()
		return fmt.Errorf("cannot write vectors: %w", err)
	}
	if err := vf.Close(); err != nil {
		return err
	}
	return nil
}

// Install writes idx into a temporary directory next to destDir and renames
// it into place, so readers never observe a sidecar/buffer pair from two
// different builds.
func Install(idx *Index, destDir string) error {
	parent := filepath.Dir(destDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	tmpDir, err := os.MkdirTemp(parent, ".index-*")
	if err != nil {
		return fmt.Errorf("cannot create temp index dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := Write(tmpDir, idx.Sidecar, idx.Vectors); err != nil {
		return err
	}
	return AtomicSwap(tmpDir, destDir)
}

// AtomicSwap replaces destDir with srcDir by renaming, keeping a best-effort
// backup for rollback.
func AtomicSwap(srcDir, destDir string) error {
	parent := filepath.Dir(destDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	backup := destDir + ".bak"
	_ = os.RemoveAll(backup)
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		if _, stErr := os.Stat(backup); stErr == nil {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	_ = os.RemoveAll(backup)
	return nil
}

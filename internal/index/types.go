// Package index builds, persists, and loads the fact embedding index: a
// JSON sidecar positionally aligned with a flat little-endian float32
// vector buffer.
package index

import "github.com/checkline/checkline-cli/internal/facts"

// Artifact file names inside an index directory.
const (
	SidecarFile = "facts.json"
	VectorFile  = "vectors.f32"
)

// Sidecar describes the persisted fact list and vector geometry.
type Sidecar struct {
	Dim       int          `json:"dim"`
	Count     int          `json:"count"`
	Model     string       `json:"model,omitempty"`
	CreatedAt string       `json:"created_at,omitempty"`
	Items     []facts.Fact `json:"items"`
}

// Index is a loaded fact index. Items and Vectors are aligned 1:1: the
// vector for Items[i] occupies Vectors[i*Dim : (i+1)*Dim]. Read-only after
// load.
type Index struct {
	Sidecar Sidecar
	Vectors []float32
}

// Vector returns the stored unit vector for item i.
func (idx *Index) Vector(i int) []float32 {
	start := i * idx.Sidecar.Dim
	return idx.Vectors[start : start+idx.Sidecar.Dim]
}

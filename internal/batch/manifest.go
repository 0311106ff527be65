package batch

import (
	"encoding/json"
	"os"

	"mesh-painter/internal/geom"
	"mesh-painter/internal/raster"
)

// VolumeStats summarizes the paint on one volume in world units.
type VolumeStats struct {
	Name   string             `json:"name"`
	Leaves int                `json:"leaves"`
	Area   map[string]float64 `json:"area"`
}

// ManifestEntry represents one rendered view.
type ManifestEntry struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	Error string `json:"error,omitempty"`
}

// Manifest describes one batch run.
type Manifest struct {
	Project string          `json:"project"`
	Volumes []VolumeStats   `json:"volumes"`
	Views   []ManifestEntry `json:"views"`
}

// Summarize computes per-state painted area for each layer. names and
// layers are parallel.
func Summarize(names []string, layers []raster.Layer) []VolumeStats {
	out := make([]VolumeStats, len(layers))
	for i, l := range layers {
		vs := VolumeStats{Name: names[i], Leaves: l.Len(), Area: map[string]float64{}}
		for st, leaves := range l.Batches {
			var area float64
			for _, leaf := range leaves {
				a := l.Trafo.MulPoint(leaf.Verts[0])
				b := l.Trafo.MulPoint(leaf.Verts[1])
				c := l.Trafo.MulPoint(leaf.Verts[2])
				area += geom.Area(a, b, c)
			}
			vs.Area[st.String()] = area
		}
		out[i] = vs
	}
	return out
}

// WriteManifest writes the manifest as indented JSON.
func WriteManifest(path, project string, volumes []VolumeStats, results []Result) error {
	m := Manifest{Project: project, Volumes: volumes}
	for _, r := range results {
		e := ManifestEntry{Name: r.Name}
		if r.Success {
			e.Image = r.Image
		} else {
			e.Error = r.Error
		}
		m.Views = append(m.Views, e)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

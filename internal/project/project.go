// Package project stores painted volumes on disk. Each volume keeps only
// its compact split history; the base mesh is rebuilt from the scene.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mesh-painter/internal/mathutil"
	"mesh-painter/internal/painter"
)

// Version is the current project file version.
const Version = 1

var ErrUnsupportedVersion = errors.New("project: unsupported version")

// Volume is the saved paint state of one volume. Data is the binary
// split-history blob, base64 in JSON.
type Volume struct {
	Name      string `json:"name"`
	Triangles int    `json:"triangles"`
	Data      []byte `json:"data"`
}

// Clip is a saved clipping plane: the clipper ratio and its normal.
type Clip struct {
	Position float64       `json:"position"`
	Normal   mathutil.Vec3 `json:"normal"`
}

// Project is the on-disk document.
type Project struct {
	Version int          `json:"version"`
	Type    painter.Type `json:"type"`
	History []string     `json:"history,omitempty"`
	Clip    *Clip        `json:"clip,omitempty"`
	Volumes []Volume     `json:"volumes"`
}

// FromPainter captures the current paint state of every volume.
func FromPainter(p *painter.Painter) (Project, error) {
	data, err := p.VolumeData()
	if err != nil {
		return Project{}, err
	}
	pr := Project{
		Version: Version,
		Type:    p.Type(),
		History: p.History().Names(),
	}
	if c := p.Clipper(); c.Plane() != nil {
		pr.Clip = &Clip{Position: c.Position(), Normal: c.Normal()}
	}
	for i, v := range p.Volumes() {
		pr.Volumes = append(pr.Volumes, Volume{
			Name:      v.Name,
			Triangles: v.Selector.OriginalCount(),
			Data:      data[i],
		})
	}
	return pr, nil
}

// Apply restores the saved state and clipping plane into p. Volumes are
// matched by position and must agree on name and base facet count.
func (pr Project) Apply(p *painter.Painter) error {
	vols := p.Volumes()
	if len(vols) != len(pr.Volumes) {
		return fmt.Errorf("project: %w: scene has %d volumes, project %d",
			painter.ErrVolumeMismatch, len(vols), len(pr.Volumes))
	}
	data := make([][]byte, len(pr.Volumes))
	for i, v := range pr.Volumes {
		if v.Name != vols[i].Name {
			return fmt.Errorf("project: %w: volume %d is %q in scene, %q in project",
				painter.ErrVolumeMismatch, i, vols[i].Name, v.Name)
		}
		if n := vols[i].Selector.OriginalCount(); v.Triangles != n {
			return fmt.Errorf("project: %w: volume %q has %d facets in scene, %d in project",
				painter.ErrVolumeMismatch, v.Name, n, v.Triangles)
		}
		data[i] = v.Data
	}
	if pr.Clip != nil {
		p.Clipper().SetPosition(pr.Clip.Position, false, pr.Clip.Normal)
	}
	return p.Restore(data)
}

// Save writes pr as indented JSON, creating the parent directory.
func Save(path string, pr Project) error {
	if pr.Version == 0 {
		pr.Version = Version
	}
	data, err := json.MarshalIndent(pr, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("project: mkdir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a project file.
func Load(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("project: read %s: %w", path, err)
	}
	var pr Project
	if err := json.Unmarshal(data, &pr); err != nil {
		return Project{}, fmt.Errorf("project: parse %s: %w", path, err)
	}
	if pr.Version != Version {
		return Project{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, pr.Version)
	}
	return pr, nil
}

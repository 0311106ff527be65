package selector

import (
	"mesh-painter/internal/geom"
	"mesh-painter/internal/mathutil"
)

// Leaf is a detached copy of one leaf triangle, safe to hand to another
// goroutine while the selector keeps changing.
type Leaf struct {
	ID    int
	Facet int
	Verts [3]mathutil.Vec3
	State State
}

// Normal is the unit normal of the leaf.
func (l Leaf) Normal() mathutil.Vec3 {
	return geom.Normal(l.Verts[0], l.Verts[1], l.Verts[2])
}

// LeafSnapshot copies every current leaf, in facet order.
func (s *Selector) LeafSnapshot() []Leaf {
	out := make([]Leaf, 0, len(s.triangles)-s.invalid)
	for id := range s.AllLeaves() {
		t := &s.triangles[id]
		out = append(out, Leaf{ID: id, Facet: t.Source, Verts: s.Positions(id), State: t.State})
	}
	return out
}

// LeafSnapshotByState groups LeafSnapshot by state, one render batch per
// state.
func (s *Selector) LeafSnapshotByState() map[State][]Leaf {
	out := make(map[State][]Leaf)
	for _, l := range s.LeafSnapshot() {
		out[l.State] = append(out[l.State], l)
	}
	return out
}

package selector

import (
	"mesh-painter/internal/geom"
	"mesh-painter/internal/mathutil"
)

// NeighborsAcrossEdges returns, per edge, the triangle on the other side or
// -1 for a border edge.
//
// For an original facet the answer comes from base-mesh adjacency (the
// graph SelectPatch walks). For a synthesized leaf it is the leaf whose
// boundary covers the midpoint of the edge; with a coarser neighbour that
// leaf's edge is longer than the queried one. Internal synthesized nodes
// and tombstones have no neighbours.
func (s *Selector) NeighborsAcrossEdges(id int) [3]int {
	none := [3]int{-1, -1, -1}
	if !s.isValid(id) {
		return none
	}
	if id < s.origTris {
		return s.neighbors[id]
	}
	if s.triangles[id].IsSplit() {
		return none
	}

	src := s.triangles[id].Source
	var candidates []int
	for _, f := range append([]int{src}, s.neighbors[src][:]...) {
		if f < 0 {
			continue
		}
		for leaf := range s.Leaves(f) {
			if leaf != id {
				candidates = append(candidates, leaf)
			}
		}
	}

	pos := s.Positions(id)
	out := none
	for e := 0; e < 3; e++ {
		a, b := pos[e], pos[(e+1)%3]
		out[e] = s.findAcross(a, b, candidates)
	}
	return out
}

// findAcross returns the candidate with a boundary edge collinear with ab
// that contains the midpoint of ab.
func (s *Selector) findAcross(a, b mathutil.Vec3, candidates []int) int {
	mid := mathutil.Midpoint(a, b)
	tolSq := 1e-12 * a.DistSq(b)
	for _, c := range candidates {
		cp := s.Positions(c)
		for e := 0; e < 3; e++ {
			p, q := cp[e], cp[(e+1)%3]
			if geom.SegmentDistSq(mid, p, q) > tolSq {
				continue
			}
			dir := q.Sub(p)
			if geom.LineDistSq(a, p, dir) <= tolSq && geom.LineDistSq(b, p, dir) <= tolSq {
				return c
			}
		}
	}
	return -1
}

package selector

import (
	"fmt"

	"mesh-painter/internal/mathutil"
)

// Split bisects the chosen edges of a leaf and returns the new children
// (two, three or four of them). Midpoint vertices are shared with any
// triangle that already bisected the same edge. The parent becomes an
// internal node; its children start with the parent's state.
func (s *Selector) Split(id int, sides [3]bool) ([]int, error) {
	if !s.isLeaf(id) {
		return nil, fmt.Errorf("selector: split %d: %w", id, ErrInvalidTriangle)
	}
	return s.split(id, sides, true)
}

func (s *Selector) split(id int, sides [3]bool, checkFloor bool) ([]int, error) {
	n, special := encodeSides(sides)
	if n == 0 {
		return nil, fmt.Errorf("selector: split %d: no edge chosen: %w", id, ErrDegenerateSplit)
	}
	parent := s.triangles[id]
	layout := childLayout(n, special)

	var corners [6]mathutil.Vec3
	for i := 0; i < 3; i++ {
		corners[i] = s.vertices[parent.Verts[i]].Pos
	}
	for i := 0; i < 3; i++ {
		if sides[i] {
			corners[3+i] = mathutil.Midpoint(corners[i], corners[(i+1)%3])
		}
	}

	if checkFloor {
		minSq := s.opts.MinEdgeLength * s.opts.MinEdgeLength
		for _, child := range layout {
			for e := 0; e < 3; e++ {
				if corners[child[e]].DistSq(corners[child[(e+1)%3]]) < minSq {
					return nil, fmt.Errorf("selector: split %d: edge below %g: %w",
						id, s.opts.MinEdgeLength, ErrDegenerateSplit)
				}
			}
		}
	}

	var slots [6]int
	copy(slots[:3], parent.Verts[:])
	for i := 0; i < 3; i++ {
		if sides[i] {
			slots[3+i] = s.midpointVertex(parent.Verts[i], parent.Verts[(i+1)%3])
		}
	}

	first := len(s.triangles)
	ids := make([]int, len(layout))
	for k, child := range layout {
		s.triangles = append(s.triangles, Triangle{
			Verts:  [3]int{slots[child[0]], slots[child[1]], slots[child[2]]},
			State:  parent.State,
			Source: parent.Source,
			valid:  true,
		})
		ids[k] = first + k
	}

	t := &s.triangles[id]
	t.splits = n
	t.special = special
	copy(t.children[:], ids)
	return ids, nil
}

// midpointVertex returns the vertex bisecting edge ab, creating it once.
func (s *Selector) midpointVertex(a, b int) int {
	key := makeEdgeKey(a, b)
	if m, ok := s.midpoints[key]; ok {
		return m
	}
	m := len(s.vertices)
	s.vertices = append(s.vertices, Vertex{
		Pos:   mathutil.Midpoint(s.vertices[a].Pos, s.vertices[b].Pos),
		Split: true,
	})
	s.midpoints[key] = m
	return m
}

// refine bisects every edge of a leaf longer than the current edge limit.
func (s *Selector) refine(id int) bool {
	pos := s.Positions(id)
	limitSq := s.edgeLimit * s.edgeLimit
	var sides [3]bool
	for i := 0; i < 3; i++ {
		sides[i] = pos[i].DistSq(pos[(i+1)%3]) > limitSq
	}
	_, err := s.split(id, sides, true)
	return err == nil
}

// collapse turns a triangle into a leaf with the given state, tombstoning
// its whole subtree.
func (s *Selector) collapse(id int, state State) {
	t := &s.triangles[id]
	if t.IsSplit() {
		for _, c := range t.Children() {
			s.invalidateSubtree(c)
		}
	}
	t = &s.triangles[id]
	t.splits = 0
	t.special = 0
	t.State = state
}

func (s *Selector) invalidateSubtree(id int) {
	t := &s.triangles[id]
	if !t.valid {
		return
	}
	children := t.Children()
	t.valid = false
	t.splits = 0
	s.invalid++
	for _, c := range children {
		s.invalidateSubtree(c)
	}
}

// mergeUniform collapses subtrees whose leaves all share one state and
// reports whether id is a leaf afterwards.
func (s *Selector) mergeUniform(id int) bool {
	t := s.triangles[id]
	if !t.valid {
		return false
	}
	if !t.IsSplit() {
		return true
	}
	children := t.Children()
	allLeaves := true
	for _, c := range children {
		if !s.mergeUniform(c) {
			allLeaves = false
		}
	}
	if !allLeaves {
		return false
	}
	state := s.triangles[children[0]].State
	for _, c := range children[1:] {
		if s.triangles[c].State != state {
			return false
		}
	}
	s.collapse(id, state)
	return true
}

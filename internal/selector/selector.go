// Package selector implements the adaptive triangle arena used for brush
// painting: a base mesh whose facets are subdivided on demand at the brush
// boundary, with tombstoning, compaction and compact split-history snapshots.
//
// A Selector is not safe for concurrent use. All mutation is expected to
// happen on one goroutine; renderers should work on LeafSnapshot copies.
package selector

import (
	"fmt"
	"iter"
	"math"

	"mesh-painter/internal/geom"
	"mesh-painter/internal/mathutil"
)

const (
	// DefaultMinEdgeLength is the subdivision floor in mesh units.
	DefaultMinEdgeLength = 0.05

	// EdgeLimitDivisor derives the automatic edge limit from the brush
	// radius: edges longer than radius/EdgeLimitDivisor are bisected.
	EdgeLimitDivisor = 5.0

	// maxSplitDepth bounds recursion on pathological input (NaN positions).
	maxSplitDepth = 48
)

// CursorType selects how brush distance is measured.
type CursorType uint8

const (
	// CursorSphere measures Euclidean distance from the hit point.
	CursorSphere CursorType = iota
	// CursorCircle measures distance from the ray through the hit point,
	// painting a cylinder projected from the camera.
	CursorCircle
)

func (c CursorType) String() string {
	if c == CursorCircle {
		return "circle"
	}
	return "sphere"
}

// Options configures a Selector. Zero values select defaults.
type Options struct {
	// MinEdgeLength is the shortest edge a split may create.
	MinEdgeLength float64
	// EdgeLimit fixes the bisection threshold. Zero derives it from the
	// brush radius on every SelectPatch call.
	EdgeLimit float64
	// Cursor is the brush shape.
	Cursor CursorType
	// FacingCutoff rejects neighbour facets whose normal n satisfies
	// n·dir >= -FacingCutoff, i.e. facets seen edge-on or from behind.
	FacingCutoff float64
}

func (o Options) withDefaults() Options {
	if o.MinEdgeLength <= 0 {
		o.MinEdgeLength = DefaultMinEdgeLength
	}
	return o
}

type edgeKey [2]int

func makeEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// Selector is the subdivision arena for one paintable mesh.
type Selector struct {
	opts Options

	vertices  []Vertex
	triangles []Triangle
	midpoints map[edgeKey]int
	invalid   int

	origVerts int
	origTris  int
	neighbors [][3]int
	normals   []mathutil.Vec3

	edgeLimit float64
}

// New builds a selector over a base mesh. The split history starts empty.
func New(vertices []mathutil.Vec3, triangles [][3]int, opts Options) (*Selector, error) {
	for i, tri := range triangles {
		for _, v := range tri {
			if v < 0 || v >= len(vertices) {
				return nil, fmt.Errorf("selector: triangle %d references vertex %d of %d: %w",
					i, v, len(vertices), ErrInvalidMesh)
			}
		}
	}
	s := &Selector{
		opts:      opts.withDefaults(),
		origVerts: len(vertices),
		origTris:  len(triangles),
	}
	s.vertices = make([]Vertex, len(vertices))
	for i, v := range vertices {
		s.vertices[i] = Vertex{Pos: v}
	}
	s.triangles = make([]Triangle, len(triangles))
	s.normals = make([]mathutil.Vec3, len(triangles))
	for i, tri := range triangles {
		s.triangles[i] = Triangle{Verts: tri, Source: i, valid: true}
		s.normals[i] = geom.Normal(vertices[tri[0]], vertices[tri[1]], vertices[tri[2]])
	}
	s.midpoints = make(map[edgeKey]int)
	s.neighbors = buildAdjacency(triangles)
	s.edgeLimit = 2 * s.opts.MinEdgeLength
	s.SetEdgeLimit(s.opts.EdgeLimit)
	return s, nil
}

// buildAdjacency pairs original facets across shared vertex-index edges.
// On a non-manifold edge the first other facet wins.
func buildAdjacency(triangles [][3]int) [][3]int {
	edges := make(map[edgeKey][]int, len(triangles)*3/2)
	for i, tri := range triangles {
		for e := 0; e < 3; e++ {
			k := makeEdgeKey(tri[e], tri[(e+1)%3])
			edges[k] = append(edges[k], i)
		}
	}
	out := make([][3]int, len(triangles))
	for i, tri := range triangles {
		for e := 0; e < 3; e++ {
			out[i][e] = -1
			for _, other := range edges[makeEdgeKey(tri[e], tri[(e+1)%3])] {
				if other != i {
					out[i][e] = other
					break
				}
			}
		}
	}
	return out
}

// Reset drops every split and paint state, restoring the base mesh.
func (s *Selector) Reset() {
	s.vertices = s.vertices[:s.origVerts]
	s.triangles = s.triangles[:s.origTris]
	for i := range s.triangles {
		t := &s.triangles[i]
		*t = Triangle{Verts: t.Verts, Source: i, valid: true}
	}
	s.midpoints = make(map[edgeKey]int)
	s.invalid = 0
}

// TriangleCount is the arena size including tombstones.
func (s *Selector) TriangleCount() int { return len(s.triangles) }

// VertexCount is the vertex arena size including unreferenced vertices.
func (s *Selector) VertexCount() int { return len(s.vertices) }

// OriginalCount is the number of base mesh facets.
func (s *Selector) OriginalCount() int { return s.origTris }

// InvalidCount is the number of tombstones awaiting GarbageCollect.
func (s *Selector) InvalidCount() int { return s.invalid }

// Triangle returns a copy of the arena entry.
func (s *Selector) Triangle(id int) (Triangle, bool) {
	if id < 0 || id >= len(s.triangles) {
		return Triangle{}, false
	}
	return s.triangles[id], true
}

// Vertex returns a copy of a vertex.
func (s *Selector) Vertex(id int) (Vertex, bool) {
	if id < 0 || id >= len(s.vertices) {
		return Vertex{}, false
	}
	return s.vertices[id], true
}

// Positions returns the corner positions of a triangle.
func (s *Selector) Positions(id int) [3]mathutil.Vec3 {
	v := s.triangles[id].Verts
	return [3]mathutil.Vec3{s.vertices[v[0]].Pos, s.vertices[v[1]].Pos, s.vertices[v[2]].Pos}
}

// FacetNormal returns the unit normal of an original facet.
func (s *Selector) FacetNormal(facet int) mathutil.Vec3 {
	return s.normals[facet]
}

// EdgeLimit is the current bisection threshold.
func (s *Selector) EdgeLimit() float64 { return s.edgeLimit }

// SetEdgeLimit fixes the bisection threshold; zero returns to the automatic
// radius-derived limit. Values below twice the minimum edge are raised.
func (s *Selector) SetEdgeLimit(limit float64) {
	s.opts.EdgeLimit = limit
	if limit > 0 {
		s.edgeLimit = math.Max(limit, 2*s.opts.MinEdgeLength)
	}
}

func (s *Selector) isValid(id int) bool {
	return id >= 0 && id < len(s.triangles) && s.triangles[id].valid
}

func (s *Selector) isLeaf(id int) bool {
	return s.isValid(id) && !s.triangles[id].IsSplit()
}

// Leaves lazily enumerates the current leaf descendants of a triangle,
// usually an original facet. A tombstone yields nothing.
func (s *Selector) Leaves(id int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if !s.isValid(id) {
			return
		}
		stack := []int{id}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			t := &s.triangles[cur]
			if !t.valid {
				continue
			}
			if !t.IsSplit() {
				if !yield(cur) {
					return
				}
				continue
			}
			for k := int(t.splits); k >= 0; k-- {
				stack = append(stack, t.children[k])
			}
		}
	}
}

// LeafTriangles collects Leaves(facet).
func (s *Selector) LeafTriangles(facet int) []int {
	var out []int
	for id := range s.Leaves(facet) {
		out = append(out, id)
	}
	return out
}

// AllLeaves enumerates every leaf of every original facet in facet order.
func (s *Selector) AllLeaves() iter.Seq[int] {
	return func(yield func(int) bool) {
		for f := 0; f < s.origTris; f++ {
			for id := range s.Leaves(f) {
				if !yield(id) {
					return
				}
			}
		}
	}
}

// SetState paints a single leaf.
func (s *Selector) SetState(id int, state State) error {
	if !state.Valid() {
		return fmt.Errorf("selector: set state %d: %w", state, ErrInvalidState)
	}
	if !s.isLeaf(id) {
		return fmt.Errorf("selector: set state on %d: %w", id, ErrInvalidTriangle)
	}
	s.triangles[id].State = state
	return nil
}

// Stats summarises the arena.
type Stats struct {
	Triangles      int
	ValidTriangles int
	Vertices       int
	Leaves         int
	LeavesByState  map[State]int
}

func (s *Selector) Stats() Stats {
	st := Stats{
		Triangles:      len(s.triangles),
		ValidTriangles: len(s.triangles) - s.invalid,
		Vertices:       len(s.vertices),
		LeavesByState:  make(map[State]int),
	}
	for id := range s.AllLeaves() {
		st.Leaves++
		st.LeavesByState[s.triangles[id].State]++
	}
	return st
}

package selector

import (
	"context"
	"log/slog"
	"math"

	"mesh-painter/internal/geom"
	"mesh-painter/internal/mathutil"
)

// cursor is the brush for one SelectPatch call.
type cursor struct {
	kind     CursorType
	center   mathutil.Vec3
	source   mathutil.Vec3
	dir      mathutil.Vec3
	radiusSq float64
}

func (c *cursor) contains(p mathutil.Vec3) bool {
	if c.kind == CursorCircle {
		return geom.LineDistSq(p, c.source, c.dir) <= c.radiusSq
	}
	return p.DistSq(c.center) <= c.radiusSq
}

// touches reports whether a triangle with no corner inside the brush still
// intersects it: through its interior or through one of its edges.
func (c *cursor) touches(p [3]mathutil.Vec3) bool {
	if c.kind == CursorCircle {
		if _, ok := geom.RayTriangle(c.source, c.dir, p[0], p[1], p[2]); ok {
			return true
		}
		if _, ok := geom.RayTriangle(c.source, c.dir.Scale(-1), p[0], p[1], p[2]); ok {
			return true
		}
		// Long enough to pass every corner of the triangle.
		reach := 1.0
		for _, v := range p {
			reach += v.Sub(c.source).Len()
		}
		d := c.dir.Normalize().Scale(reach)
		l0, l1 := c.source.Sub(d), c.source.Add(d)
		for i := 0; i < 3; i++ {
			if geom.SegmentSegmentDistSq(p[i], p[(i+1)%3], l0, l1) <= c.radiusSq {
				return true
			}
		}
		return false
	}

	if proj, dist, ok := geom.ProjectToPlane(c.center, p[0], p[1], p[2]); ok &&
		dist*dist <= c.radiusSq && geom.PointInTriangle(proj, p[0], p[1], p[2]) {
		return true
	}
	for i := 0; i < 3; i++ {
		if geom.SegmentDistSq(c.center, p[i], p[(i+1)%3]) <= c.radiusSq {
			return true
		}
	}
	return false
}

// SelectPatch paints every triangle within radius of hit with state,
// subdividing triangles that straddle the brush boundary.
//
// facet is the triangle the hit lies in (original or synthesized); a stale
// id is ignored. source and dir are the ray origin and direction in mesh
// coordinates: dir culls facets facing away, source anchors the circle
// cursor. radius is in mesh units.
func (s *Selector) SelectPatch(hit mathutil.Vec3, facet int, source, dir mathutil.Vec3, radius float64, state State) {
	if !s.isValid(facet) || !(radius > 0) || !state.Valid() {
		return
	}
	if s.opts.EdgeLimit <= 0 {
		s.edgeLimit = math.Max(radius/EdgeLimitDivisor, 2*s.opts.MinEdgeLength)
	}
	cur := cursor{
		kind:     s.opts.Cursor,
		center:   hit,
		source:   source,
		dir:      dir,
		radiusSq: radius * radius,
	}
	viewDir := dir.Normalize()

	root := s.triangles[facet].Source
	visited := make(map[int]struct{})
	queue := []int{root}
	before := len(s.triangles)
	painted := 0
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if _, seen := visited[f]; seen {
			continue
		}
		visited[f] = struct{}{}

		if !s.selectTriangle(f, state, &cur, 0) {
			continue
		}
		painted++
		s.mergeUniform(f)

		for _, n := range s.neighbors[f] {
			if n < 0 {
				continue
			}
			if _, seen := visited[n]; seen {
				continue
			}
			if s.facesCamera(n, viewDir) {
				queue = append(queue, n)
			}
		}
	}

	if l := Logger(); l.Enabled(context.Background(), slog.LevelDebug) {
		l.Debug("selector: patch",
			"facet", root,
			"radius", radius,
			"state", state,
			"facets", painted,
			"new_triangles", len(s.triangles)-before,
			"edge_limit", s.edgeLimit)
	}
}

func (s *Selector) facesCamera(facet int, dir mathutil.Vec3) bool {
	return s.normals[facet].Dot(dir) < -s.opts.FacingCutoff
}

// selectTriangle classifies one triangle against the brush and paints or
// refines it. It reports whether the triangle intersects the brush.
func (s *Selector) selectTriangle(id int, state State, cur *cursor, depth int) bool {
	if !s.isValid(id) {
		return false
	}
	pos := s.Positions(id)
	inside := 0
	for _, p := range pos {
		if cur.contains(p) {
			inside++
		}
	}
	if inside == 0 && !cur.touches(pos) {
		return false
	}
	if inside == 3 {
		s.collapse(id, state)
		return true
	}

	if !s.triangles[id].IsSplit() {
		if depth >= maxSplitDepth || !s.refine(id) {
			// At the floor the boundary snaps to the nearest leaf.
			if cur.contains(geom.Centroid(pos[0], pos[1], pos[2])) {
				s.triangles[id].State = state
			}
			return true
		}
	}
	for _, c := range s.triangles[id].Children() {
		s.selectTriangle(c, state, cur, depth+1)
	}
	return true
}

package selector

import (
	"context"
	"log/slog"
)

// GarbageCollect drops tombstoned triangles and synthesized vertices no
// live triangle references, then renumbers both arenas contiguously.
// Original facets and original vertices keep their ids. Running it twice
// in a row changes nothing the second time.
func (s *Selector) GarbageCollect() {
	beforeTris, beforeVerts := len(s.triangles), len(s.vertices)

	triMap := make([]int, len(s.triangles))
	next := 0
	for i := range s.triangles {
		if s.triangles[i].valid {
			triMap[i] = next
			next++
		} else {
			triMap[i] = -1
		}
	}

	used := make([]bool, len(s.vertices))
	for i := 0; i < s.origVerts; i++ {
		used[i] = true
	}
	for i := range s.triangles {
		t := &s.triangles[i]
		if !t.valid {
			continue
		}
		for _, v := range t.Verts {
			used[v] = true
		}
	}
	vertMap := make([]int, len(s.vertices))
	vertices := make([]Vertex, 0, len(s.vertices))
	for i, v := range s.vertices {
		if !used[i] {
			vertMap[i] = -1
			continue
		}
		vertMap[i] = len(vertices)
		vertices = append(vertices, v)
	}

	triangles := make([]Triangle, 0, next)
	for i := range s.triangles {
		t := s.triangles[i]
		if !t.valid {
			continue
		}
		for k, v := range t.Verts {
			t.Verts[k] = vertMap[v]
		}
		if t.splits > 0 {
			for k := 0; k <= int(t.splits); k++ {
				t.children[k] = triMap[t.children[k]]
			}
		}
		triangles = append(triangles, t)
	}

	midpoints := make(map[edgeKey]int, len(s.midpoints))
	for k, m := range s.midpoints {
		a, b, mm := vertMap[k[0]], vertMap[k[1]], vertMap[m]
		if a < 0 || b < 0 || mm < 0 {
			continue
		}
		midpoints[makeEdgeKey(a, b)] = mm
	}

	s.triangles = triangles
	s.vertices = vertices
	s.midpoints = midpoints
	s.invalid = 0

	if l := Logger(); l.Enabled(context.Background(), slog.LevelDebug) {
		l.Debug("selector: garbage collected",
			"triangles_before", beforeTris,
			"triangles_after", len(s.triangles),
			"vertices_before", beforeVerts,
			"vertices_after", len(s.vertices))
	}
}

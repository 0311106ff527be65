// Package meshgen builds procedural base meshes. All generators emit
// counter-clockwise triangles with outward (or +Z) normals and share
// vertices between adjacent triangles so edge adjacency is recoverable.
package meshgen

import (
	"fmt"
	"math"

	"mesh-painter/internal/mathutil"
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices  []mathutil.Vec3
	Triangles [][3]int
}

// Params selects and sizes a generator. Unset fields take per-kind defaults.
type Params struct {
	Kind         string        `json:"kind" toml:"kind"`
	Size         float64       `json:"size,omitempty" toml:"size,omitempty"`
	Height       float64       `json:"height,omitempty" toml:"height,omitempty"`
	Radius       float64       `json:"radius,omitempty" toml:"radius,omitempty"`
	Segments     int           `json:"segments,omitempty" toml:"segments,omitempty"`
	Rings        int           `json:"rings,omitempty" toml:"rings,omitempty"`
	Subdivisions int           `json:"subdivisions,omitempty" toml:"subdivisions,omitempty"`
	Extent       mathutil.Vec3 `json:"extent,omitempty" toml:"extent,omitempty"`
}

// Build dispatches on p.Kind.
func Build(p Params) (Mesh, error) {
	switch p.Kind {
	case "triangle":
		return Triangle(orDefault(p.Size, 10)), nil
	case "plane", "":
		w := orDefault(p.Size, 10)
		h := orDefault(p.Height, w)
		n := p.Segments
		if n <= 0 {
			n = 10
		}
		return Plane(w, h, n, n), nil
	case "disc":
		seg, rings := p.Segments, p.Rings
		if seg < 3 {
			seg = 64
		}
		if rings <= 0 {
			rings = 16
		}
		return Disc(orDefault(p.Radius, 5), rings, seg), nil
	case "box":
		ext := p.Extent
		if ext == (mathutil.Vec3{}) {
			s := orDefault(p.Size, 10)
			ext = mathutil.Vec3{s, s, s}
		}
		return Box(ext), nil
	case "icosphere":
		sub := p.Subdivisions
		if sub < 0 {
			sub = 0
		}
		if sub > 6 {
			return Mesh{}, fmt.Errorf("meshgen: icosphere subdivisions %d > 6", sub)
		}
		return Icosphere(orDefault(p.Radius, 5), sub), nil
	}
	return Mesh{}, fmt.Errorf("meshgen: unknown mesh kind %q", p.Kind)
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

// Triangle is a single equilateral triangle in the XY plane centred on
// the origin.
func Triangle(side float64) Mesh {
	r := side / math.Sqrt(3)
	var m Mesh
	for _, deg := range []float64{90, 210, 330} {
		a := mathutil.Deg2Rad(deg)
		m.Vertices = append(m.Vertices, mathutil.Vec3{r * math.Cos(a), r * math.Sin(a), 0})
	}
	m.Triangles = [][3]int{{0, 1, 2}}
	return m
}

// Plane is a w×h grid of nx×ny cells in the XY plane, two triangles per cell.
func Plane(w, h float64, nx, ny int) Mesh {
	var m Mesh
	idx := func(i, j int) int { return j*(nx+1) + i }
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			m.Vertices = append(m.Vertices, mathutil.Vec3{
				-w/2 + w*float64(i)/float64(nx),
				-h/2 + h*float64(j)/float64(ny),
				0,
			})
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v00, v10, v11, v01 := idx(i, j), idx(i+1, j), idx(i+1, j+1), idx(i, j+1)
			m.Triangles = append(m.Triangles, [3]int{v00, v10, v11}, [3]int{v00, v11, v01})
		}
	}
	return m
}

// Disc is a flat disc in the XY plane: a centre fan plus concentric rings.
func Disc(radius float64, rings, segments int) Mesh {
	m := Mesh{Vertices: []mathutil.Vec3{{}}}
	ring := func(k, j int) int { return 1 + (k-1)*segments + j%segments }
	for k := 1; k <= rings; k++ {
		r := radius * float64(k) / float64(rings)
		for j := 0; j < segments; j++ {
			a := 2 * math.Pi * float64(j) / float64(segments)
			m.Vertices = append(m.Vertices, mathutil.Vec3{r * math.Cos(a), r * math.Sin(a), 0})
		}
	}
	for j := 0; j < segments; j++ {
		m.Triangles = append(m.Triangles, [3]int{0, ring(1, j), ring(1, j+1)})
	}
	for k := 1; k < rings; k++ {
		for j := 0; j < segments; j++ {
			a, b, c, d := ring(k, j), ring(k+1, j), ring(k+1, j+1), ring(k, j+1)
			m.Triangles = append(m.Triangles, [3]int{a, b, c}, [3]int{a, c, d})
		}
	}
	return m
}

// Box is an axis-aligned box of the given extent centred on the origin,
// twelve triangles over eight shared corners.
func Box(extent mathutil.Vec3) Mesh {
	var m Mesh
	h := extent.Scale(0.5)
	for i := 0; i < 8; i++ {
		v := mathutil.Vec3{-h[0], -h[1], -h[2]}
		for k := 0; k < 3; k++ {
			if i>>k&1 == 1 {
				v[k] = h[k]
			}
		}
		m.Vertices = append(m.Vertices, v)
	}
	// Corner index bits: x=1, y=2, z=4.
	quads := [][4]int{
		{1, 3, 7, 5}, // +X
		{0, 4, 6, 2}, // -X
		{2, 6, 7, 3}, // +Y
		{0, 1, 5, 4}, // -Y
		{4, 5, 7, 6}, // +Z
		{0, 2, 3, 1}, // -Z
	}
	for _, q := range quads {
		m.Triangles = append(m.Triangles, [3]int{q[0], q[1], q[2]}, [3]int{q[0], q[2], q[3]})
	}
	return m
}

// Icosphere subdivides an icosahedron and projects it onto a sphere.
func Icosphere(radius float64, subdivisions int) Mesh {
	t := (1 + math.Sqrt(5)) / 2
	verts := []mathutil.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	for i := range verts {
		verts[i] = verts[i].Normalize()
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}

	for s := 0; s < subdivisions; s++ {
		cache := make(map[[2]int]int)
		mid := func(a, b int) int {
			k := [2]int{min(a, b), max(a, b)}
			if m, ok := cache[k]; ok {
				return m
			}
			verts = append(verts, mathutil.Midpoint(verts[a], verts[b]).Normalize())
			cache[k] = len(verts) - 1
			return len(verts) - 1
		}
		next := make([][3]int, 0, len(faces)*4)
		for _, f := range faces {
			ab, bc, ca := mid(f[0], f[1]), mid(f[1], f[2]), mid(f[2], f[0])
			next = append(next,
				[3]int{f[0], ab, ca}, [3]int{ab, f[1], bc},
				[3]int{ca, bc, f[2]}, [3]int{ab, bc, ca})
		}
		faces = next
	}

	m := Mesh{Vertices: make([]mathutil.Vec3, len(verts)), Triangles: faces}
	for i, v := range verts {
		m.Vertices[i] = v.Scale(radius)
	}
	m.orientOutward()
	return m
}

// orientOutward flips triangles whose normal points toward the origin.
// Only meaningful for star-shaped meshes around the origin.
func (m *Mesh) orientOutward() {
	for i, f := range m.Triangles {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Dot(a.Add(b).Add(c)) < 0 {
			m.Triangles[i] = [3]int{f[0], f[2], f[1]}
		}
	}
}

// Transformed returns a copy with every vertex mapped through t. A
// mirroring transform also flips winding so normals stay outward.
func (m Mesh) Transformed(t mathutil.Mat4) Mesh {
	out := Mesh{
		Vertices:  make([]mathutil.Vec3, len(m.Vertices)),
		Triangles: make([][3]int, len(m.Triangles)),
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = t.MulPoint(v)
	}
	flip := t.IsLeftHanded()
	for i, f := range m.Triangles {
		if flip {
			f[1], f[2] = f[2], f[1]
		}
		out.Triangles[i] = f
	}
	return out
}

// Area sums triangle areas.
func (m Mesh) Area() float64 {
	var a float64
	for _, f := range m.Triangles {
		p, q, r := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		a += q.Sub(p).Cross(r.Sub(p)).Len() / 2
	}
	return a
}

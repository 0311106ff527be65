package meshgen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mesh-painter/internal/mathutil"
)

// edgeUse counts how many triangles use each undirected edge.
func edgeUse(m Mesh) map[[2]int]int {
	use := make(map[[2]int]int)
	for _, f := range m.Triangles {
		for e := 0; e < 3; e++ {
			a, b := f[e], f[(e+1)%3]
			use[[2]int{min(a, b), max(a, b)}]++
		}
	}
	return use
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		params    Params
		triangles int
		area      float64
		closed    bool
	}{
		{"triangle", Params{Kind: "triangle", Size: 10}, 1, math.Sqrt(3) / 4 * 100, false},
		{"plane", Params{Kind: "plane", Size: 4, Segments: 2}, 8, 16, false},
		{"default plane", Params{}, 200, 100, false},
		{"box", Params{Kind: "box", Size: 2}, 12, 24, true},
		{"box extent", Params{Kind: "box", Extent: mathutil.Vec3{1, 2, 3}}, 12, 22, true},
		{"icosphere", Params{Kind: "icosphere", Radius: 1, Subdivisions: 1}, 80, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Build(tt.params)
			require.NoError(t, err)
			assert.Len(t, m.Triangles, tt.triangles)
			if tt.area >= 0 {
				assert.InDelta(t, tt.area, m.Area(), 1e-9)
			}
			if tt.closed {
				for e, n := range edgeUse(m) {
					assert.Equal(t, 2, n, "edge %v", e)
				}
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(Params{Kind: "teapot"})
	assert.Error(t, err)
	_, err = Build(Params{Kind: "icosphere", Subdivisions: 9})
	assert.Error(t, err)
}

func TestNormalsFaceOutward(t *testing.T) {
	for _, m := range []Mesh{Box(mathutil.Vec3{2, 2, 2}), Icosphere(3, 2)} {
		for i, f := range m.Triangles {
			a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
			n := b.Sub(a).Cross(c.Sub(a))
			assert.Positive(t, n.Dot(a.Add(b).Add(c)), "triangle %d", i)
		}
	}
}

func TestFlatMeshesFaceUp(t *testing.T) {
	for _, m := range []Mesh{Triangle(3), Plane(2, 3, 4, 5), Disc(2, 3, 12)} {
		for i, f := range m.Triangles {
			a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
			assert.Positive(t, b.Sub(a).Cross(c.Sub(a))[2], "triangle %d", i)
		}
	}
}

func TestDiscArea(t *testing.T) {
	m := Disc(1, 4, 256)
	assert.InDelta(t, math.Pi, m.Area(), 1e-3)
	assert.Len(t, m.Vertices, 1+4*256)
}

func TestTransformedMirrorKeepsOrientation(t *testing.T) {
	mirror := mathutil.Compose(mathutil.Vec3{}, mathutil.Mat3Identity(), mathutil.Vec3{-1, 1, 1})
	m := Box(mathutil.Vec3{2, 2, 2}).Transformed(mirror)
	for _, f := range m.Triangles {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		assert.Positive(t, b.Sub(a).Cross(c.Sub(a)).Dot(a.Add(b).Add(c)))
	}
}

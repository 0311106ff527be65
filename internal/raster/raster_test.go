package raster

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mesh-painter/internal/camera"
	"mesh-painter/internal/geom"
	"mesh-painter/internal/mathutil"
	"mesh-painter/internal/meshgen"
	"mesh-painter/internal/selector"
)

type V = mathutil.Vec3

func topCamera() camera.Camera {
	return camera.Camera{
		Position: V{0, 0, 10},
		Up:       V{0, 1, 0},
		Zoom:     10,
		Width:    200,
		Height:   200,
	}
}

func paintedPlane(t *testing.T) *selector.Selector {
	t.Helper()
	m := meshgen.Plane(10, 10, 10, 10)
	s, err := selector.New(m.Vertices, m.Triangles, selector.Options{})
	require.NoError(t, err)
	hit := V{0.25, 0.35, 0}
	for id := range s.AllLeaves() {
		p := s.Positions(id)
		if geom.PointInTriangle(hit, p[0], p[1], p[2]) {
			s.SelectPatch(hit, id, hit.Add(V{0, 0, 10}), V{0, 0, -1}, 2, selector.Enforcer)
			break
		}
	}
	return s
}

func flat(s *selector.Selector) []Layer {
	return Layers(mathutil.Mat4Identity(), []*selector.Selector{s}, []mathutil.Mat4{mathutil.Mat4Identity()})
}

func pixel(img *image.NRGBA, x, y int) color.NRGBA {
	return img.NRGBAAt(x, y)
}

func TestRenderPaintedPlane(t *testing.T) {
	s := paintedPlane(t)
	layers := Layers(mathutil.Mat4Identity(), []*selector.Selector{s}, []mathutil.Mat4{mathutil.Mat4Identity()})
	img := Render(topCamera(), layers, Options{})
	require.Equal(t, image.Rect(0, 0, 200, 200), img.Bounds())

	painted := pixel(img, 103, 96)
	assert.Equal(t, uint8(255), painted.A)
	assert.Greater(t, int(painted.B), int(painted.R)+40)

	plain := pixel(img, 140, 140)
	assert.Equal(t, uint8(255), plain.A)
	assert.Less(t, math.Abs(float64(plain.B)-float64(plain.R)), 30.0)

	assert.Zero(t, pixel(img, 2, 2).A)
}

func TestRenderBackground(t *testing.T) {
	bg := color.NRGBA{10, 20, 30, 255}
	img := Render(topCamera(), nil, Options{Background: bg})
	assert.Equal(t, bg, pixel(img, 0, 0))
	assert.Equal(t, bg, pixel(img, 199, 199))
}

func TestRenderPerspective(t *testing.T) {
	s := paintedPlane(t)
	cam := topCamera()
	cam.Perspective = true
	cam.Position = V{0, 0, 30}
	img := Render(cam, flat(s), Options{})

	c := pixel(img, 100, 100)
	assert.Equal(t, uint8(255), c.A)
	assert.Greater(t, int(c.B), int(c.R)+40)
	assert.Zero(t, pixel(img, 1, 1).A)
}

func TestWireframe(t *testing.T) {
	m := meshgen.Triangle(10)
	s, err := selector.New(m.Vertices, m.Triangles, selector.Options{})
	require.NoError(t, err)
	img := Render(topCamera(), flat(s),
		Options{Wireframe: true})

	edges := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if (color.NRGBA{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}) == originalEdge {
			edges++
		}
	}
	assert.Greater(t, edges, 100)

	_, err = s.Split(0, [3]bool{true, true, true})
	require.NoError(t, err)
	img = Render(topCamera(), flat(s),
		Options{Wireframe: true})
	split := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if (color.NRGBA{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}) == splitEdge {
			split++
		}
	}
	assert.Greater(t, split, 100)
}

func TestRasterizeDepth(t *testing.T) {
	fb := NewFrameBuffer(20, 20, color.NRGBA{})
	near := color.NRGBA{0, 0, 255, 255}
	far := color.NRGBA{255, 0, 0, 255}
	xs, ys := [3]float64{0, 20, 0}, [3]float64{0, 0, 20}

	RasterizeTriangle(fb, xs, ys, [3]float64{-1, -1, -1}, near)
	RasterizeTriangle(fb, xs, ys, [3]float64{-5, -5, -5}, far)
	assert.Equal(t, near, fb.Image().NRGBAAt(3, 3))

	RasterizeTriangle(fb, xs, ys, [3]float64{0, 0, 0}, far)
	assert.Equal(t, far, fb.Image().NRGBAAt(3, 3))

	// off-screen and degenerate input is ignored
	RasterizeTriangle(fb, [3]float64{-50, -40, -30}, ys, [3]float64{}, near)
	RasterizeTriangle(fb, [3]float64{1, 2, 3}, [3]float64{1, 2, 3}, [3]float64{}, near)
	RasterizeTriangle(fb, xs, ys, [3]float64{math.Inf(-1), 0, 0}, near)
	assert.Equal(t, far, fb.Image().NRGBAAt(3, 3))
}

func TestPaletteColor(t *testing.T) {
	p := DefaultPalette()
	assert.Equal(t, enforcerColor, p.Color(selector.Enforcer))
	assert.Equal(t, blockerColor, p.Color(selector.Blocker))
	assert.Equal(t, extraColors[0], p.Color(selector.State(3)))
	assert.Equal(t, extraColors[1], p.Color(selector.State(4)))
	assert.Equal(t, extraColors[0], p.Color(selector.State(7)))
	assert.Equal(t, baseColor, Palette{}.Color(selector.None))
}

func TestShade(t *testing.T) {
	lc := DefaultLightConfig()
	assert.Equal(t, color.NRGBA{0, 0, 0, 200}, lc.Shade(color.NRGBA{0, 0, 0, 200}, 2))

	dim := lc.Shade(baseColor, 0.5)
	bright := lc.Shade(baseColor, 1.5)
	assert.Less(t, dim.R, bright.R)

	front := lc.ComputeShade(V{0, 0, 1})
	back := lc.ComputeShade(V{0, 0, -1})
	assert.InDelta(t, front, back, 1e-12)
}

func TestLayersBatchByState(t *testing.T) {
	s := paintedPlane(t)
	layers := flat(s)
	require.Len(t, layers, 1)
	st := s.Stats()
	assert.Equal(t, st.Leaves, layers[0].Len())
	for state, leaves := range layers[0].Batches {
		assert.Len(t, leaves, st.LeavesByState[state], "state %s", state)
		for _, l := range leaves {
			assert.Equal(t, state, l.State)
		}
	}
	assert.NotEmpty(t, layers[0].Batches[selector.Enforcer])
}

func TestRenderClipPlane(t *testing.T) {
	s := paintedPlane(t)
	// drop everything right of x = 0.5
	clip := &geom.ClipPlane{Normal: V{1, 0, 0}, Offset: -0.5}
	img := Render(topCamera(), flat(s), Options{Clip: clip})

	assert.Equal(t, uint8(255), pixel(img, 60, 140).A)
	assert.Equal(t, uint8(255), pixel(img, 103, 96).A)
	assert.Zero(t, pixel(img, 108, 96).A)
	assert.Zero(t, pixel(img, 140, 140).A)
}

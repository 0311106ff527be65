// Package raster draws painted volumes into images on the CPU: flat-shaded
// leaf triangles colored by paint state, with an optional wireframe.
package raster

import (
	"image"
	"image/color"
	"maps"
	"math"
	"slices"

	"mesh-painter/internal/camera"
	"mesh-painter/internal/geom"
	"mesh-painter/internal/mathutil"
	"mesh-painter/internal/selector"
)

// Layer is one volume to draw: its leaves in mesh space, one batch per
// paint state, and the placement.
type Layer struct {
	Trafo   mathutil.Mat4
	Batches map[selector.State][]selector.Leaf
}

// Len is the number of leaves in the layer.
func (l Layer) Len() int {
	n := 0
	for _, b := range l.Batches {
		n += len(b)
	}
	return n
}

// Palette maps paint states to base colors.
type Palette map[selector.State]color.NRGBA

var (
	baseColor     = color.NRGBA{160, 160, 170, 255}
	enforcerColor = color.NRGBA{120, 120, 255, 255}
	blockerColor  = color.NRGBA{255, 112, 112, 255}

	// extra states cycle through these
	extraColors = []color.NRGBA{
		{255, 200, 80, 255},
		{90, 200, 120, 255},
		{200, 110, 220, 255},
		{80, 200, 210, 255},
	}

	// wireframe: unsplit facets blue, refined leaves red
	originalEdge = color.NRGBA{40, 60, 255, 255}
	splitEdge    = color.NRGBA{230, 30, 30, 255}
)

// DefaultPalette colors none grey, enforcers blue and blockers red.
func DefaultPalette() Palette {
	return Palette{
		selector.None:     baseColor,
		selector.Enforcer: enforcerColor,
		selector.Blocker:  blockerColor,
	}
}

// Color returns the color of s, falling back to a fixed cycle for states
// the palette does not name.
func (p Palette) Color(s selector.State) color.NRGBA {
	if c, ok := p[s]; ok {
		return c
	}
	if s <= selector.Blocker {
		return baseColor
	}
	return extraColors[int(s-selector.Blocker-1)%len(extraColors)]
}

// Options controls Render.
type Options struct {
	Palette    Palette
	Light      *LightConfig
	Background color.NRGBA
	Wireframe  bool
	// Clip is a world-space clipping plane; the part of each leaf on its
	// positive side is not drawn.
	Clip *geom.ClipPlane
}

type edgeJob struct {
	px, py, pz [3]float64
	c          color.NRGBA
}

// Render draws layers as seen by cam into a cam.Width×cam.Height image.
func Render(cam camera.Camera, layers []Layer, opts Options) *image.NRGBA {
	if opts.Palette == nil {
		opts.Palette = DefaultPalette()
	}
	lc := DefaultLightConfig()
	if opts.Light != nil {
		lc = *opts.Light
	}

	fb := NewFrameBuffer(cam.Width, cam.Height, opts.Background)
	var edges []edgeJob
	for _, layer := range layers {
		for _, st := range slices.Sorted(maps.Keys(layer.Batches)) {
			edges = drawBatch(fb, cam, lc, layer.Trafo, layer.Batches[st], opts.Palette.Color(st), opts, edges)
		}
	}

	// edges go last so later surfaces cannot cover them
	for _, e := range edges {
		for k := 0; k < 3; k++ {
			a, b := k, (k+1)%3
			DrawEdge(fb, e.px[a], e.py[a], e.pz[a], e.px[b], e.py[b], e.pz[b], e.c)
		}
	}

	return fb.Image()
}

// drawBatch rasterizes leaves of one state and appends their wireframe
// edges to edges.
func drawBatch(fb *FrameBuffer, cam camera.Camera, lc LightConfig, trafo mathutil.Mat4,
	leaves []selector.Leaf, base color.NRGBA, opts Options, edges []edgeJob) []edgeJob {
	right, up, forward := cam.Basis()

	world := make([]mathutil.Vec3, 0, len(leaves)*3)
	owner := make([]int, 0, len(leaves))
	for i, l := range leaves {
		a, b, c := trafo.MulPoint(l.Verts[0]), trafo.MulPoint(l.Verts[1]), trafo.MulPoint(l.Verts[2])
		if opts.Clip == nil {
			world = append(world, a, b, c)
			owner = append(owner, i)
			continue
		}
		for _, tri := range opts.Clip.ClipTriangle(a, b, c) {
			world = append(world, tri[:]...)
			owner = append(owner, i)
		}
	}

	px, py, pz := cam.ProjectAll(world)
	if cam.Perspective {
		// 1/depth is affine in screen space
		for i, z := range pz {
			if !math.IsInf(z, 0) && z < 0 {
				pz[i] = 1 / -z
			}
		}
	}

	for k, i := range owner {
		j := k * 3
		l := leaves[i]
		n := geom.Normal(world[j], world[j+1], world[j+2])
		nv := mathutil.Vec3{n.Dot(right), n.Dot(up), -n.Dot(forward)}
		c := lc.Shade(base, lc.ComputeShade(nv))

		tx := [3]float64{px[j], px[j+1], px[j+2]}
		ty := [3]float64{py[j], py[j+1], py[j+2]}
		tz := [3]float64{pz[j], pz[j+1], pz[j+2]}
		RasterizeTriangle(fb, tx, ty, tz, c)

		if opts.Wireframe {
			ec := splitEdge
			if l.ID == l.Facet {
				ec = originalEdge
			}
			edges = append(edges, edgeJob{tx, ty, tz, ec})
		}
	}
	return edges
}

// Layers snapshots the leaves of each selector for rendering, grouped by
// state. The result is independent of later painting.
func Layers(instance mathutil.Mat4, sels []*selector.Selector, trafos []mathutil.Mat4) []Layer {
	out := make([]Layer, len(sels))
	for i, s := range sels {
		out[i] = Layer{
			Trafo:   mathutil.Mat4Mul(instance, trafos[i]),
			Batches: s.LeafSnapshotByState(),
		}
	}
	return out
}

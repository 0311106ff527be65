package raster

import (
	"image/color"
	"math"
)

// RasterizeTriangle fills one flat-colored triangle with z-buffering.
// px, py are pixel coordinates; pz is the depth key, larger is nearer.
//
// This is the hot path: no allocation in the pixel loop.
func RasterizeTriangle(fb *FrameBuffer, px, py, pz [3]float64, c color.NRGBA) {
	for k := 0; k < 3; k++ {
		if math.IsInf(pz[k], 0) || math.IsNaN(px[k]+py[k]+pz[k]) {
			return
		}
	}
	x0, y0, z0 := px[0], py[0], pz[0]
	x1, y1, z1 := px[1], py[1], pz[1]
	x2, y2, z2 := px[2], py[2], pz[2]

	// Bounding box
	minX := max(int(math.Floor(min(x0, x1, x2))), 0)
	maxX := min(int(math.Ceil(max(x0, x1, x2))), fb.Width-1)
	minY := max(int(math.Floor(min(y0, y1, y2))), 0)
	maxY := min(int(math.Ceil(max(y0, y1, y2))), fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}
			fb.ZBuf[zIdx] = z
			fb.set(zIdx, c)
		}
	}
}

// DrawEdge draws a one-pixel line over already rasterized surfaces. A pixel
// is drawn when the line is not clearly behind the surface there.
func DrawEdge(fb *FrameBuffer, x0, y0, z0, x1, y1, z1 float64, c color.NRGBA) {
	if math.IsInf(z0, 0) || math.IsInf(z1, 0) {
		return
	}
	steps := int(math.Ceil(max(math.Abs(x1-x0), math.Abs(y1-y0))))
	if steps == 0 {
		steps = 1
	}
	if steps > 4*(fb.Width+fb.Height) {
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		sx := int(math.Floor(x0 + t*(x1-x0)))
		sy := int(math.Floor(y0 + t*(y1-y0)))
		if sx < 0 || sy < 0 || sx >= fb.Width || sy >= fb.Height {
			continue
		}
		z := z0 + t*(z1-z0)
		idx := sy*fb.Width + sx
		zb := fb.ZBuf[idx]
		if z < zb-(1e-3*math.Abs(zb)+1e-6) {
			continue
		}
		fb.set(idx, c)
	}
}

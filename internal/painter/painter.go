// Package painter turns viewport mouse events into brush strokes on the
// paintable volumes of one object instance and keeps the undo history.
package painter

import (
	"errors"
	"fmt"
	"math"

	"mesh-painter/internal/camera"
	"mesh-painter/internal/mathutil"
	"mesh-painter/internal/raycast"
	"mesh-painter/internal/selector"
)

// Cursor radius bounds in world units, adjusted with Alt+wheel.
const (
	CursorRadiusMin     = 0.4
	CursorRadiusMax     = 8.0
	CursorRadiusStep    = 0.2
	DefaultCursorRadius = 2.0
)

// strokeResolution is the spacing of interpolated dabs in cursor radii;
// 2 would make consecutive patches just touch.
const strokeResolution = 0.7

var (
	ErrNothingToUndo  = errors.New("painter: nothing to undo")
	ErrNothingToRedo  = errors.New("painter: nothing to redo")
	ErrVolumeMismatch = errors.New("painter: snapshot volume count mismatch")
)

// Volume is one paintable part of the instance.
type Volume struct {
	Name     string
	Selector *selector.Selector
	// Matrix places the volume inside the instance.
	Matrix mathutil.Mat4
}

// Painter dispatches events for one instance. Not safe for concurrent use.
type Painter struct {
	typ      Type
	cam      camera.Camera
	instance mathutil.Mat4
	volumes  []Volume
	casters  []*raycast.MeshRaycaster

	radius  float64
	clipper *Clipper
	history *History

	button      Button
	lastMouse   [2]float64
	hasLast     bool
	stackActive bool
}

// New creates a painter. The clipper is sized to the instance bounding
// sphere of the volumes' current geometry. A zero volume Matrix means
// identity.
func New(typ Type, cam camera.Camera, instance mathutil.Mat4, volumes []Volume) *Painter {
	p := &Painter{
		typ:      typ,
		cam:      cam,
		instance: instance,
		volumes:  volumes,
		radius:   DefaultCursorRadius,
		history:  NewHistory(),
	}
	var pts []mathutil.Vec3
	for i, v := range volumes {
		if v.Matrix == (mathutil.Mat4{}) {
			v.Matrix = mathutil.Mat4Identity()
			volumes[i] = v
		}
		p.casters = append(p.casters, raycast.New(v.Selector))
		trafo := mathutil.Mat4Mul(instance, v.Matrix)
		for _, l := range v.Selector.LeafSnapshot() {
			for _, q := range l.Verts {
				pts = append(pts, trafo.MulPoint(q))
			}
		}
	}
	c, r := boundingSphere(pts)
	p.clipper = NewClipper(c, r)
	return p
}

func (p *Painter) Type() Type                { return p.typ }
func (p *Painter) Camera() camera.Camera     { return p.cam }
func (p *Painter) SetCamera(c camera.Camera) { p.cam = c }
func (p *Painter) Clipper() *Clipper         { return p.clipper }
func (p *Painter) History() *History         { return p.history }
func (p *Painter) Volumes() []Volume         { return p.volumes }
func (p *Painter) CursorRadius() float64     { return p.radius }

// SetCursorRadius sets the brush radius, clamped to the cursor bounds.
func (p *Painter) SetCursorRadius(r float64) {
	p.radius = min(max(r, CursorRadiusMin), CursorRadiusMax)
}

func (p *Painter) trafo(i int) mathutil.Mat4 {
	return mathutil.Mat4Mul(p.instance, p.volumes[i].Matrix)
}

func (p *Painter) toCamera() mathutil.Vec3 {
	return p.cam.Forward().Scale(-1)
}

// HandleEvent reacts to one viewport event and reports whether the event
// was consumed. Unconsumed events are free for camera navigation.
func (p *Painter) HandleEvent(ev Event) bool {
	switch ev.Type {
	case MouseWheelUp, MouseWheelDown:
		up := ev.Type == MouseWheelUp
		switch {
		case ev.Ctrl:
			pos := p.clipper.Position()
			if up {
				pos = min(1, pos+ClipStep)
			} else {
				pos = max(0, pos-ClipStep)
			}
			p.clipper.SetPosition(pos, true, p.toCamera())
			return true
		case ev.Alt:
			if up {
				p.radius = min(p.radius+CursorRadiusStep, CursorRadiusMax)
			} else {
				p.radius = max(p.radius-CursorRadiusStep, CursorRadiusMin)
			}
			return true
		}
		return false

	case ResetClippingPlane:
		p.clipper.SetPosition(-1, false, p.toCamera())
		return true

	case LeftDown, RightDown:
		return p.paint(ev)

	case Dragging:
		if p.button == ButtonNone {
			return false
		}
		return p.paint(ev)

	case LeftUp, RightUp:
		if p.button == ButtonNone {
			return false
		}
		p.commit(actionName(p.typ, p.button, ev.Shift))
		p.button = ButtonNone
		p.hasLast = false
		return true
	}
	return false
}

// strokePositions returns the event position followed by evenly spaced
// points back toward the previous dab, so fast drags leave no gaps.
func (p *Painter) strokePositions(x, y float64) [][2]float64 {
	out := [][2]float64{{x, y}}
	last := p.lastMouse
	if !p.hasLast {
		last = [2]float64{x, y}
	}
	diameter := strokeResolution * p.radius * p.cam.PixelsPerUnit()
	if !(diameter > 0) {
		return out
	}
	dx, dy := x-last[0], y-last[1]
	between := int((math.Hypot(dx, dy) - diameter) / diameter)
	for i := 1; i <= between; i++ {
		k := float64(i) / float64(between+1)
		out = append(out, [2]float64{last[0] + k*dx, last[1] + k*dy})
	}
	return out
}

func (p *Painter) paint(ev Event) bool {
	if len(p.volumes) == 0 {
		return false
	}

	var state selector.State
	switch {
	case ev.Shift:
		state = selector.None
	case ev.Type == Dragging:
		state = stateFor(p.button, false)
	case ev.Type == LeftDown:
		state = selector.Enforcer
	default:
		state = selector.Blocker
	}
	dragging := ev.Type == Dragging && p.button != ButtonNone

	positions := p.strokePositions(ev.X, ev.Y)
	p.hasLast = false

	trafos := make([]mathutil.Mat4, len(p.volumes))
	for i := range p.volumes {
		trafos[i] = p.trafo(i)
	}
	clip := p.clipper.Plane()

	for _, mp := range positions {
		ray := p.cam.Unproject(mp[0], mp[1])
		hit, vol, clipped := raycast.Closest(ray, p.casters, trafos, clip)

		if (vol >= 0 || clipped) && p.button == ButtonNone {
			if ev.Type == LeftDown {
				p.button = ButtonLeft
			} else {
				p.button = ButtonRight
			}
		}
		if vol < 0 {
			return clipped || dragging
		}

		trafo := trafos[vol]
		sf := trafo.ScalingFactor()
		avg := (sf[0] + sf[1] + sf[2]) / 3
		inv := trafo.AffineInverse()
		source := inv.MulPoint(ray.Origin)
		dir := hit.Point.Sub(source).Normalize()

		// the "turned on" entry has to predate the first patch
		p.Activate()
		p.volumes[vol].Selector.SelectPatch(hit.Point, hit.Facet, source, dir, p.radius/avg, state)
		p.lastMouse = [2]float64{ev.X, ev.Y}
		p.hasLast = true
	}
	return true
}

// Activate opens the painter's history section with a "turned on" entry.
func (p *Painter) Activate() {
	if p.stackActive {
		return
	}
	p.Take(turnedOnName(p.typ))
	p.stackActive = true
}

// Deactivate closes the history section with a "turned off" entry.
func (p *Painter) Deactivate() {
	if !p.stackActive {
		return
	}
	p.stackActive = false
	p.Take(turnedOffName(p.typ))
}

func (p *Painter) commit(name string) {
	p.Activate()
	p.Take(name)
	for _, v := range p.volumes {
		if s := v.Selector; s.InvalidCount() > s.TriangleCount()/2 {
			s.GarbageCollect()
		}
	}
}

// Take records the current paint state of every volume as a named history
// entry.
func (p *Painter) Take(name string) {
	data, err := p.VolumeData()
	if err != nil {
		Logger().Warn("painter: snapshot failed", "action", name, "err", err)
		return
	}
	p.history.Push(Snapshot{Name: name, Volumes: data})
	Logger().Debug("painter: snapshot", "action", name, "entries", p.history.Len())
}

// VolumeData serializes every volume's split history, in volume order.
func (p *Painter) VolumeData() ([][]byte, error) {
	out := make([][]byte, len(p.volumes))
	for i, v := range p.volumes {
		blob, err := v.Selector.SerializeBinary()
		if err != nil {
			return nil, fmt.Errorf("painter: volume %q: %w", v.Name, err)
		}
		out[i] = blob
	}
	return out, nil
}

// Restore applies per-volume blobs. A volume whose blob is rejected is
// reset to its unpainted base mesh and the errors are returned together.
func (p *Painter) Restore(data [][]byte) error {
	if len(data) != len(p.volumes) {
		for _, v := range p.volumes {
			v.Selector.Reset()
		}
		return fmt.Errorf("%w: have %d volumes, got %d", ErrVolumeMismatch, len(p.volumes), len(data))
	}
	var errs []error
	for i, v := range p.volumes {
		if err := v.Selector.DeserializeBinary(data[i]); err != nil {
			v.Selector.Reset()
			errs = append(errs, fmt.Errorf("painter: volume %q: %w", v.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Undo restores the previous history entry and returns the name of the
// entry now current.
func (p *Painter) Undo() (string, error) {
	s, ok := p.history.Undo()
	if !ok {
		return "", ErrNothingToUndo
	}
	return s.Name, p.Restore(s.Volumes)
}

// Redo re-applies the next history entry.
func (p *Painter) Redo() (string, error) {
	s, ok := p.history.Redo()
	if !ok {
		return "", ErrNothingToRedo
	}
	return s.Name, p.Restore(s.Volumes)
}

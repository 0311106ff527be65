package painter

import (
	"encoding/json"
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

// topCamera looks straight down at the XY plane: 10 px per unit, world
// origin at pixel (100, 100).
func topCamera() camera.Camera {
	return camera.Camera{
		Position: V{0, 0, 10},
		Up:       V{0, 1, 0},
		Zoom:     10,
		Width:    200,
		Height:   200,
	}
}

func px(x, y float64) (float64, float64) {
	return 100 + 10*x, 100 - 10*y
}

func planeVolume(t *testing.T, name string, m mathutil.Mat4) Volume {
	t.Helper()
	mesh := meshgen.Plane(10, 10, 10, 10)
	sel, err := selector.New(mesh.Vertices, mesh.Triangles, selector.Options{})
	require.NoError(t, err)
	return Volume{Name: name, Selector: sel, Matrix: m}
}

func newPainter(t *testing.T, typ Type) (*Painter, *selector.Selector) {
	t.Helper()
	v := planeVolume(t, "plane", mathutil.Mat4{})
	return New(typ, topCamera(), mathutil.Mat4Identity(), []Volume{v}), v.Selector
}

func stateAt(t *testing.T, s *selector.Selector, p V) selector.State {
	t.Helper()
	for _, l := range s.LeafSnapshot() {
		if geom.PointInTriangle(p, l.Verts[0], l.Verts[1], l.Verts[2]) {
			return l.State
		}
	}
	t.Fatalf("no leaf under %v", p)
	return selector.None
}

func at(typ EventType, x, y float64) Event {
	ex, ey := px(x, y)
	return Event{Type: typ, X: ex, Y: ey}
}

func TestStrokeStates(t *testing.T) {
	tests := []struct {
		name   string
		typ    Type
		down   EventType
		up     EventType
		shift  bool
		want   selector.State
		action string
	}{
		{"supports left", Supports, LeftDown, LeftUp, false, selector.Enforcer, "Add supports"},
		{"supports right", Supports, RightDown, RightUp, false, selector.Blocker, "Block supports"},
		{"seam left", Seam, LeftDown, LeftUp, false, selector.Enforcer, "Enforce seam"},
		{"seam right", Seam, RightDown, RightUp, false, selector.Blocker, "Block seam"},
		{"shift", Supports, LeftDown, LeftUp, true, selector.None, "Remove selection"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, sel := newPainter(t, tt.typ)
			p.Activate()

			down := at(tt.down, 0.25, 0.35)
			down.Shift = tt.shift
			assert.True(t, p.HandleEvent(down))
			up := at(tt.up, 0.25, 0.35)
			up.Shift = tt.shift
			assert.True(t, p.HandleEvent(up))

			assert.Equal(t, tt.want, stateAt(t, sel, V{0.3, 0.4, 0}))
			assert.Equal(t, tt.want, stateAt(t, sel, V{1.1, 0.2, 0}))
			assert.Equal(t, selector.None, stateAt(t, sel, V{4.1, 4.2, 0}))
			assert.Equal(t, []string{turnedOnName(tt.typ), tt.action}, p.History().Names())
		})
	}
}

func TestMissIsNotConsumed(t *testing.T) {
	p, sel := newPainter(t, Supports)
	before := sel.TriangleCount()

	assert.False(t, p.HandleEvent(at(LeftDown, -9.5, 9.5)))
	assert.False(t, p.HandleEvent(at(Dragging, -9.4, 9.5)))
	assert.False(t, p.HandleEvent(at(LeftUp, -9.4, 9.5)))
	assert.Equal(t, before, sel.TriangleCount())
	assert.Zero(t, p.History().Len())
}

func TestDraggingWithoutButton(t *testing.T) {
	p, _ := newPainter(t, Supports)
	assert.False(t, p.HandleEvent(at(Dragging, 0.25, 0.35)))
	assert.False(t, p.HandleEvent(at(RightUp, 0.25, 0.35)))
}

func TestDragFillsGaps(t *testing.T) {
	p, sel := newPainter(t, Supports)

	require.True(t, p.HandleEvent(at(LeftDown, -3.75, 0.35)))
	require.True(t, p.HandleEvent(at(Dragging, 4.25, 0.35)))
	require.True(t, p.HandleEvent(at(LeftUp, 4.25, 0.35)))

	for _, x := range []float64{-3.7, -2.1, -0.4, 0.3, 1.9, 4.2} {
		assert.Equal(t, selector.Enforcer, stateAt(t, sel, V{x, 0.4, 0}), "x=%v", x)
	}
	assert.Equal(t, selector.None, stateAt(t, sel, V{0.3, 4.4, 0}))
}

func TestStrokePositions(t *testing.T) {
	p, _ := newPainter(t, Supports)

	assert.Len(t, p.strokePositions(10, 10), 1)

	p.lastMouse = [2]float64{0, 0}
	p.hasLast = true
	// diameter = 0.7 * 2 * 10 = 14 px
	pos := p.strokePositions(100, 0)
	require.Len(t, pos, 7)
	assert.Equal(t, [2]float64{100, 0}, pos[0])
	for i := 1; i < len(pos); i++ {
		assert.InDelta(t, float64(i)*100/7, pos[i][0], 1e-9)
		assert.Zero(t, pos[i][1])
	}

	assert.Len(t, p.strokePositions(10, 0), 1)
}

func TestCursorRadiusWheel(t *testing.T) {
	p, _ := newPainter(t, Supports)
	require.Equal(t, DefaultCursorRadius, p.CursorRadius())

	assert.True(t, p.HandleEvent(Event{Type: MouseWheelUp, Alt: true}))
	assert.InDelta(t, 2.2, p.CursorRadius(), 1e-9)

	for range 100 {
		p.HandleEvent(Event{Type: MouseWheelDown, Alt: true})
	}
	assert.Equal(t, CursorRadiusMin, p.CursorRadius())
	for range 100 {
		p.HandleEvent(Event{Type: MouseWheelUp, Alt: true})
	}
	assert.Equal(t, CursorRadiusMax, p.CursorRadius())

	assert.False(t, p.HandleEvent(Event{Type: MouseWheelUp}))

	p.SetCursorRadius(100)
	assert.Equal(t, CursorRadiusMax, p.CursorRadius())
	p.SetCursorRadius(0)
	assert.Equal(t, CursorRadiusMin, p.CursorRadius())
}

func TestClipperWheel(t *testing.T) {
	p, _ := newPainter(t, Supports)
	assert.Nil(t, p.Clipper().Plane())

	assert.True(t, p.HandleEvent(Event{Type: MouseWheelDown, Ctrl: true}))
	assert.Zero(t, p.Clipper().Position())
	assert.Nil(t, p.Clipper().Plane())

	assert.True(t, p.HandleEvent(Event{Type: MouseWheelUp, Ctrl: true}))
	assert.InDelta(t, ClipStep, p.Clipper().Position(), 1e-12)
	plane := p.Clipper().Plane()
	require.NotNil(t, plane)
	assert.InDelta(t, 1, plane.Normal[2], 1e-12)

	for range 200 {
		p.HandleEvent(Event{Type: MouseWheelUp, Ctrl: true})
	}
	assert.Equal(t, 1.0, p.Clipper().Position())
}

func TestResetClippingPlane(t *testing.T) {
	p, _ := newPainter(t, Supports)
	p.HandleEvent(Event{Type: MouseWheelUp, Ctrl: true})

	p.SetCamera(camera.Orbit(V{}, 10, 0, 0, 200, 200))
	assert.True(t, p.HandleEvent(Event{Type: ResetClippingPlane}))
	assert.InDelta(t, ClipStep, p.Clipper().Position(), 1e-12)
	plane := p.Clipper().Plane()
	require.NotNil(t, plane)
	assert.InDelta(t, 1, plane.Normal[0], 1e-12)
}

func TestClippedStroke(t *testing.T) {
	p, sel := newPainter(t, Supports)
	p.Clipper().SetPosition(1, false, V{0, 0, 1})
	before := sel.TriangleCount()

	assert.True(t, p.HandleEvent(at(LeftDown, 0.25, 0.35)))
	assert.Equal(t, before, sel.TriangleCount())
	assert.Equal(t, selector.None, stateAt(t, sel, V{0.3, 0.4, 0}))
	assert.True(t, p.HandleEvent(at(LeftUp, 0.25, 0.35)))
}

func TestScaledInstance(t *testing.T) {
	mesh := meshgen.Plane(5, 5, 5, 5)
	sel, err := selector.New(mesh.Vertices, mesh.Triangles, selector.Options{})
	require.NoError(t, err)
	inst := mathutil.Compose(V{}, mathutil.Mat3Identity(), V{2, 2, 2})
	p := New(Supports, topCamera(), inst, []Volume{{Name: "scaled", Selector: sel}})

	// world (0.3, 0.3) is local (0.15, 0.15); world radius 2 is local 1
	require.True(t, p.HandleEvent(at(LeftDown, 0.3, 0.3)))
	assert.Equal(t, selector.Enforcer, stateAt(t, sel, V{0.65, 0.15, 0}))
	assert.Equal(t, selector.None, stateAt(t, sel, V{1.75, 0.15, 0}))
}

func TestNearestVolumeWins(t *testing.T) {
	lower := planeVolume(t, "lower", mathutil.Mat4Identity())
	upper := planeVolume(t, "upper", mathutil.Compose(V{0, 0, 1}, mathutil.Mat3Identity(), V{1, 1, 1}))
	p := New(Supports, topCamera(), mathutil.Mat4Identity(), []Volume{lower, upper})

	require.True(t, p.HandleEvent(at(RightDown, 0.25, 0.35)))
	require.True(t, p.HandleEvent(at(RightUp, 0.25, 0.35)))

	assert.Equal(t, selector.Blocker, stateAt(t, upper.Selector, V{0.3, 0.4, 0}))
	for _, l := range lower.Selector.LeafSnapshot() {
		assert.Equal(t, selector.None, l.State)
	}
}

func TestUndoRedo(t *testing.T) {
	p, sel := newPainter(t, Supports)
	c := V{0.3, 0.4, 0}
	p.Activate()
	p.HandleEvent(at(LeftDown, 0.25, 0.35))
	p.HandleEvent(at(LeftUp, 0.25, 0.35))
	require.Equal(t, selector.Enforcer, stateAt(t, sel, c))

	name, err := p.Undo()
	require.NoError(t, err)
	assert.Equal(t, "Supports gizmo turned on", name)
	assert.Equal(t, selector.None, stateAt(t, sel, c))

	name, err = p.Redo()
	require.NoError(t, err)
	assert.Equal(t, "Add supports", name)
	assert.Equal(t, selector.Enforcer, stateAt(t, sel, c))

	_, err = p.Redo()
	assert.ErrorIs(t, err, ErrNothingToRedo)

	_, err = p.Undo()
	require.NoError(t, err)
	_, err = p.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)

	p.HandleEvent(at(RightDown, 0.25, 0.35))
	p.HandleEvent(at(RightUp, 0.25, 0.35))
	assert.Equal(t, []string{"Supports gizmo turned on", "Block supports"}, p.History().Names())
	assert.False(t, p.History().CanRedo())
	assert.Equal(t, selector.Blocker, stateAt(t, sel, c))
}

func TestUndoFirstStrokeWithoutActivate(t *testing.T) {
	p, sel := newPainter(t, Supports)
	c := V{0.3, 0.4, 0}
	p.HandleEvent(at(LeftDown, 0.25, 0.35))
	p.HandleEvent(at(Dragging, 1.25, 0.35))
	p.HandleEvent(at(LeftUp, 1.25, 0.35))
	require.Equal(t, selector.Enforcer, stateAt(t, sel, c))
	require.Equal(t, []string{"Supports gizmo turned on", "Add supports"}, p.History().Names())

	name, err := p.Undo()
	require.NoError(t, err)
	assert.Equal(t, "Supports gizmo turned on", name)
	assert.Equal(t, selector.None, stateAt(t, sel, c))
	assert.Equal(t, selector.None, stateAt(t, sel, V{1.3, 0.4, 0}))
	assert.Equal(t, sel.OriginalCount(), sel.TriangleCount())
}

func TestActivateDeactivate(t *testing.T) {
	p, _ := newPainter(t, Seam)

	p.HandleEvent(at(LeftDown, 0.25, 0.35))
	p.HandleEvent(at(LeftUp, 0.25, 0.35))
	p.Activate()
	p.Deactivate()
	p.Deactivate()

	assert.Equal(t, []string{
		"Seam gizmo turned on",
		"Enforce seam",
		"Seam gizmo turned off",
	}, p.History().Names())
}

func TestRestoreFailureResets(t *testing.T) {
	p, sel := newPainter(t, Supports)
	p.HandleEvent(at(LeftDown, 0.25, 0.35))
	p.HandleEvent(at(LeftUp, 0.25, 0.35))
	require.Greater(t, sel.TriangleCount(), sel.OriginalCount())

	err := p.Restore([][]byte{{1, 2, 3}})
	assert.ErrorIs(t, err, selector.ErrCorruptSnapshot)
	assert.Equal(t, sel.OriginalCount(), sel.TriangleCount())

	p.HandleEvent(at(LeftDown, 0.25, 0.35))
	p.HandleEvent(at(LeftUp, 0.25, 0.35))
	err = p.Restore(nil)
	assert.ErrorIs(t, err, ErrVolumeMismatch)
	assert.Equal(t, sel.OriginalCount(), sel.TriangleCount())
}

func TestCommitCollectsGarbage(t *testing.T) {
	p, sel := newPainter(t, Supports)
	p.HandleEvent(at(LeftDown, 0.25, 0.35))
	p.HandleEvent(at(LeftUp, 0.25, 0.35))

	erase := at(LeftDown, 0.25, 0.35)
	erase.Shift = true
	p.HandleEvent(erase)
	up := at(LeftUp, 0.25, 0.35)
	up.Shift = true
	p.HandleEvent(up)

	assert.LessOrEqual(t, sel.InvalidCount(), sel.TriangleCount()/2)
	assert.Equal(t, selector.None, stateAt(t, sel, V{0.3, 0.4, 0}))
}

func TestEventJSON(t *testing.T) {
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"type":"wheel_up","x":3,"alt":true}`), &ev))
	assert.Equal(t, Event{Type: MouseWheelUp, X: 3, Alt: true}, ev)

	out, err := json.Marshal(Event{Type: ResetClippingPlane})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"reset_clipping_plane"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"type":"middle_down"}`), &ev))

	var typ Type
	require.NoError(t, typ.UnmarshalText([]byte("seam")))
	assert.Equal(t, Seam, typ)
	assert.Error(t, typ.UnmarshalText([]byte("paint")))
}

func TestHistoryTruncatesRedo(t *testing.T) {
	h := NewHistory()
	_, ok := h.Current()
	assert.False(t, ok)

	for _, n := range []string{"a", "b", "c"} {
		h.Push(Snapshot{Name: n})
	}
	s, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, "b", s.Name)
	h.Undo()
	h.Push(Snapshot{Name: "d"})

	assert.Equal(t, []string{"a", "d"}, h.Names())
	assert.False(t, h.CanRedo())
	assert.True(t, h.CanUndo())
	s, _ = h.Current()
	assert.Equal(t, "d", s.Name)
}

package selector

import "mesh-painter/internal/mathutil"

// Vertex is a position in mesh-local coordinates. Split marks vertices
// synthesized by subdivision.
type Vertex struct {
	Pos   mathutil.Vec3
	Split bool
}

// Triangle is one arena entry. A valid triangle is either a leaf (carries
// State) or an internal node whose children tile it; tombstones stay in
// the arena until GarbageCollect.
type Triangle struct {
	Verts  [3]int
	State  State
	Source int // original facet this triangle descends from

	valid bool
	// splits is the number of bisected edges (0 for a leaf); the node has
	// splits+1 children. special is the bisected edge when splits==1 and
	// the untouched edge when splits==2.
	splits   uint8
	special  uint8
	children [4]int
}

func (t Triangle) Valid() bool   { return t.valid }
func (t Triangle) IsSplit() bool { return t.splits > 0 }
func (t Triangle) IsLeaf() bool  { return t.valid && t.splits == 0 }

// Children returns the child ids of an internal node, nil for a leaf.
func (t Triangle) Children() []int {
	if t.splits == 0 {
		return nil
	}
	out := make([]int, t.splits+1)
	copy(out, t.children[:t.splits+1])
	return out
}

// SplitSides reports which edges were bisected. Edge i runs from
// Verts[i] to Verts[(i+1)%3].
func (t Triangle) SplitSides() [3]bool {
	return decodeSides(t.splits, t.special)
}

// encodeSides packs a set of bisected edges into (count, special side).
func encodeSides(sides [3]bool) (n, special uint8) {
	for _, s := range sides {
		if s {
			n++
		}
	}
	switch n {
	case 1:
		for i, s := range sides {
			if s {
				special = uint8(i)
			}
		}
	case 2:
		for i, s := range sides {
			if !s {
				special = uint8(i)
			}
		}
	}
	return n, special
}

func decodeSides(n, special uint8) [3]bool {
	var sides [3]bool
	switch n {
	case 1:
		sides[special%3] = true
	case 2:
		sides = [3]bool{true, true, true}
		sides[special%3] = false
	case 3:
		sides = [3]bool{true, true, true}
	}
	return sides
}

// Child layouts in corner slots: 0..2 are the parent's vertices, 3+i is the
// midpoint of edge i. Every child keeps the parent's winding.
func childLayout(n, special uint8) [][3]int {
	switch n {
	case 1:
		a := int(special)
		b, c := (a+1)%3, (a+2)%3
		m := 3 + a
		return [][3]int{{a, m, c}, {m, b, c}}
	case 2:
		a := int(special)
		b, c := (a+1)%3, (a+2)%3
		mbc := 3 + b
		mca := 3 + c
		return [][3]int{{c, mca, mbc}, {a, b, mbc}, {a, mbc, mca}}
	case 3:
		return [][3]int{{0, 3, 5}, {3, 1, 4}, {5, 4, 2}, {3, 4, 5}}
	}
	return nil
}

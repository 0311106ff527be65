package selector

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"maps"
	"slices"
)

// SplitRecord is one node of a facet's subdivision tree in pre-order.
// A record with Splits == 0 is a leaf and carries the leaf state.
type SplitRecord struct {
	Splits  uint8 `json:"splits,omitempty"`
	Special uint8 `json:"special,omitempty"`
	State   State `json:"state,omitempty"`
}

// Snapshot is the full split history of a selector: for every facet that
// was split or painted, its subdivision tree. Facets absent from Facets
// are single leaves in state None.
type Snapshot struct {
	FacetCount int                   `json:"facet_count"`
	Facets     map[int][]SplitRecord `json:"facets"`
}

// Serialize captures the split history. Vertex positions are not stored;
// Deserialize recomputes them from midpoints.
func (s *Selector) Serialize() Snapshot {
	snap := Snapshot{
		FacetCount: s.origTris,
		Facets:     make(map[int][]SplitRecord),
	}
	for f := 0; f < s.origTris; f++ {
		t := &s.triangles[f]
		if !t.IsSplit() && t.State == None {
			continue
		}
		snap.Facets[f] = s.appendRecords(nil, f)
	}
	return snap
}

func (s *Selector) appendRecords(dst []SplitRecord, id int) []SplitRecord {
	t := &s.triangles[id]
	if !t.IsSplit() {
		return append(dst, SplitRecord{State: t.State})
	}
	dst = append(dst, SplitRecord{Splits: t.splits, Special: t.special})
	for _, c := range t.children[:t.splits+1] {
		dst = s.appendRecords(dst, c)
	}
	return dst
}

// Deserialize replaces the split history with the snapshot's. Splits are
// replayed from edge midpoints, so the rebuilt tree matches the serialized
// one exactly. On error the selector is left unchanged.
func (s *Selector) Deserialize(snap Snapshot) error {
	if snap.FacetCount != s.origTris {
		err := fmt.Errorf("selector: snapshot has %d facets, mesh has %d: %w",
			snap.FacetCount, s.origTris, ErrDeserializeMismatch)
		Logger().Warn("selector: snapshot rejected", "err", err)
		return err
	}

	fresh := s.baseClone()
	for _, f := range slices.Sorted(maps.Keys(snap.Facets)) {
		recs := snap.Facets[f]
		if f < 0 || f >= s.origTris {
			err := fmt.Errorf("selector: snapshot facet %d out of range: %w", f, ErrDeserializeMismatch)
			Logger().Warn("selector: snapshot rejected", "err", err)
			return err
		}
		pos := 0
		if err := fresh.replay(f, recs, &pos, 0); err != nil {
			err = fmt.Errorf("selector: facet %d: %w", f, err)
			Logger().Warn("selector: snapshot rejected", "err", err)
			return err
		}
		if pos != len(recs) {
			err := fmt.Errorf("selector: facet %d: %d trailing records: %w",
				f, len(recs)-pos, ErrDeserializeMismatch)
			Logger().Warn("selector: snapshot rejected", "err", err)
			return err
		}
	}

	s.vertices = fresh.vertices
	s.triangles = fresh.triangles
	s.midpoints = fresh.midpoints
	s.invalid = 0
	return nil
}

// baseClone returns a selector over the same base mesh with no history.
// Topology tables are shared; they never change after New.
func (s *Selector) baseClone() *Selector {
	c := &Selector{
		opts:      s.opts,
		origVerts: s.origVerts,
		origTris:  s.origTris,
		neighbors: s.neighbors,
		normals:   s.normals,
		edgeLimit: s.edgeLimit,
		midpoints: make(map[edgeKey]int),
	}
	c.vertices = slices.Clone(s.vertices[:s.origVerts])
	c.triangles = make([]Triangle, s.origTris)
	for i := range c.triangles {
		c.triangles[i] = Triangle{Verts: s.triangles[i].Verts, Source: i, valid: true}
	}
	return c
}

func (s *Selector) replay(id int, recs []SplitRecord, pos *int, depth int) error {
	if *pos >= len(recs) {
		return fmt.Errorf("record stream ended early: %w", ErrDeserializeMismatch)
	}
	if depth > maxSplitDepth {
		return fmt.Errorf("tree deeper than %d: %w", maxSplitDepth, ErrDeserializeMismatch)
	}
	r := recs[*pos]
	*pos++
	if r.Splits == 0 {
		if !r.State.Valid() {
			return fmt.Errorf("state %d: %w", r.State, ErrDeserializeMismatch)
		}
		s.triangles[id].State = r.State
		return nil
	}
	if r.Splits > 3 || r.Special > 2 {
		return fmt.Errorf("split record %+v: %w", r, ErrDeserializeMismatch)
	}
	children, err := s.split(id, decodeSides(r.Splits, r.Special), false)
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrDeserializeMismatch)
	}
	for _, c := range children {
		if err := s.replay(c, recs, pos, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Binary layout:
//
//	"TSNP" | version u8 | facet_count uvarint | n uvarint
//	n × ( facet uvarint | records uvarint | records × u8 )
//
// Each record byte is splits | special<<2 | state<<4.
var snapshotMagic = []byte("TSNP")

const snapshotVersion = 1

// MarshalBinary encodes the snapshot compactly, facets in ascending order.
func (snap Snapshot) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 16+8*len(snap.Facets))
	buf = append(buf, snapshotMagic...)
	buf = append(buf, snapshotVersion)
	buf = binary.AppendUvarint(buf, uint64(snap.FacetCount))
	buf = binary.AppendUvarint(buf, uint64(len(snap.Facets)))
	for _, f := range slices.Sorted(maps.Keys(snap.Facets)) {
		if f < 0 {
			return nil, fmt.Errorf("selector: negative facet %d", f)
		}
		recs := snap.Facets[f]
		buf = binary.AppendUvarint(buf, uint64(f))
		buf = binary.AppendUvarint(buf, uint64(len(recs)))
		for _, r := range recs {
			if r.Splits > 3 || r.Special > 3 || !r.State.Valid() {
				return nil, fmt.Errorf("selector: facet %d: record %+v does not fit a byte", f, r)
			}
			buf = append(buf, r.Splits|r.Special<<2|uint8(r.State)<<4)
		}
	}
	return buf, nil
}

// UnmarshalBinary decodes a MarshalBinary blob. Malformed input yields
// ErrCorruptSnapshot.
func (snap *Snapshot) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	head := make([]byte, len(snapshotMagic)+1)
	if _, err := io.ReadFull(r, head); err != nil || !bytes.Equal(head[:4], snapshotMagic) {
		return fmt.Errorf("selector: bad magic: %w", ErrCorruptSnapshot)
	}
	if head[4] != snapshotVersion {
		return fmt.Errorf("selector: snapshot version %d: %w", head[4], ErrCorruptSnapshot)
	}
	facetCount, err := binary.ReadUvarint(r)
	if err != nil {
		return fmt.Errorf("selector: facet count: %w", ErrCorruptSnapshot)
	}
	n, err := binary.ReadUvarint(r)
	if err != nil || n > uint64(r.Len()) {
		return fmt.Errorf("selector: facet table: %w", ErrCorruptSnapshot)
	}
	out := Snapshot{
		FacetCount: int(facetCount),
		Facets:     make(map[int][]SplitRecord, n),
	}
	for i := uint64(0); i < n; i++ {
		f, err := binary.ReadUvarint(r)
		if err != nil {
			return fmt.Errorf("selector: facet id: %w", ErrCorruptSnapshot)
		}
		count, err := binary.ReadUvarint(r)
		if err != nil || count > uint64(r.Len()) {
			return fmt.Errorf("selector: facet %d record count: %w", f, ErrCorruptSnapshot)
		}
		recs := make([]SplitRecord, count)
		for k := range recs {
			b, _ := r.ReadByte()
			recs[k] = SplitRecord{Splits: b & 3, Special: b >> 2 & 3, State: State(b >> 4)}
		}
		out.Facets[int(f)] = recs
	}
	if r.Len() != 0 {
		return fmt.Errorf("selector: %d trailing bytes: %w", r.Len(), ErrCorruptSnapshot)
	}
	*snap = out
	return nil
}

// SerializeBinary is Serialize followed by MarshalBinary.
func (s *Selector) SerializeBinary() ([]byte, error) {
	return s.Serialize().MarshalBinary()
}

// DeserializeBinary decodes a blob and applies it with Deserialize.
func (s *Selector) DeserializeBinary(data []byte) error {
	var snap Snapshot
	if err := snap.UnmarshalBinary(data); err != nil {
		Logger().Warn("selector: snapshot rejected", "err", err)
		return err
	}
	return s.Deserialize(snap)
}

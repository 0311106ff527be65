package selector

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mesh-painter/internal/meshgen"
)

func paintedPlane(t *testing.T) (*Selector, meshgen.Mesh) {
	t.Helper()
	m := meshgen.Plane(10, 10, 10, 10)
	s := newSelector(t, m, Options{})
	dab(t, s, V{-1, 0, 0}, 1.5, Enforcer)
	dab(t, s, V{1, 0.5, 0}, 1.2, Blocker)
	dab(t, s, V{3, 3, 0}, 0.7, Enforcer)
	return s, m
}

func TestSerializeRoundTrip(t *testing.T) {
	s, m := paintedPlane(t)
	snap := s.Serialize()
	assert.Equal(t, s.OriginalCount(), snap.FacetCount)
	assert.NotEmpty(t, snap.Facets)
	assert.Less(t, len(snap.Facets), s.OriginalCount(), "untouched facets are omitted")

	fresh := newSelector(t, m, Options{})
	require.NoError(t, fresh.Deserialize(snap))
	assert.Equal(t, leafKeys(s), leafKeys(fresh))
	assert.Equal(t, snap, fresh.Serialize())
	assertTiling(t, fresh)
	assertUniqueVertices(t, fresh)
}

func TestSerializeEmpty(t *testing.T) {
	s := newSelector(t, meshgen.Triangle(10), Options{})
	snap := s.Serialize()
	assert.Empty(t, snap.Facets)

	other := newSelector(t, meshgen.Triangle(10), Options{})
	require.NoError(t, other.SetState(0, Blocker))
	require.NoError(t, other.Deserialize(snap))
	tri, _ := other.Triangle(0)
	assert.Equal(t, None, tri.State)
}

func TestSerializePreorder(t *testing.T) {
	s := newSelector(t, meshgen.Triangle(10), Options{})
	ids, err := s.Split(0, [3]bool{true, false, true})
	require.NoError(t, err)
	require.NoError(t, s.SetState(ids[0], Enforcer))
	_, err = s.Split(ids[1], [3]bool{false, true, false})
	require.NoError(t, err)

	want := []SplitRecord{
		{Splits: 2, Special: 1},
		{State: Enforcer},
		{Splits: 1, Special: 1},
		{}, {},
		{},
	}
	assert.Equal(t, want, s.Serialize().Facets[0])
}

func TestSnapshotJSON(t *testing.T) {
	s, m := paintedPlane(t)
	data, err := json.Marshal(s.Serialize())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"enforcer"`)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	fresh := newSelector(t, m, Options{})
	require.NoError(t, fresh.Deserialize(snap))
	assert.Equal(t, leafKeys(s), leafKeys(fresh))
}

func TestSnapshotBinary(t *testing.T) {
	s, m := paintedPlane(t)
	blob, err := s.SerializeBinary()
	require.NoError(t, err)
	assert.Equal(t, "TSNP", string(blob[:4]))

	fresh := newSelector(t, m, Options{})
	require.NoError(t, fresh.DeserializeBinary(blob))
	assert.Equal(t, leafKeys(s), leafKeys(fresh))

	again, err := fresh.SerializeBinary()
	require.NoError(t, err)
	assert.Equal(t, blob, again, "encoding is deterministic")
}

func TestUnmarshalBinaryCorrupt(t *testing.T) {
	s, _ := paintedPlane(t)
	blob, err := s.SerializeBinary()
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", append([]byte("XXXX"), blob[4:]...)},
		{"bad version", append(append([]byte("TSNP"), 9), blob[5:]...)},
		{"truncated", blob[:len(blob)-3]},
		{"trailing", append(append([]byte{}, blob...), 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var snap Snapshot
			err := snap.UnmarshalBinary(tt.data)
			assert.ErrorIs(t, err, ErrCorruptSnapshot)
			assert.ErrorIs(t, err, ErrDeserializeMismatch)
		})
	}
}

func TestMarshalBinaryRejectsWideRecords(t *testing.T) {
	snap := Snapshot{FacetCount: 1, Facets: map[int][]SplitRecord{0: {{Splits: 4}}}}
	_, err := snap.MarshalBinary()
	assert.Error(t, err)
}

func TestDeserializeMismatchLeavesSelectorUnchanged(t *testing.T) {
	s, _ := paintedPlane(t)
	before := leafKeys(s)
	good := s.Serialize()

	tests := []struct {
		name string
		snap Snapshot
	}{
		{"facet count", Snapshot{FacetCount: 3}},
		{"facet out of range", Snapshot{FacetCount: good.FacetCount, Facets: map[int][]SplitRecord{500: {{}}}}},
		{"short stream", Snapshot{FacetCount: good.FacetCount, Facets: map[int][]SplitRecord{0: {{Splits: 3}, {}, {}}}}},
		{"trailing records", Snapshot{FacetCount: good.FacetCount, Facets: map[int][]SplitRecord{0: {{}, {}}}}},
		{"empty stream", Snapshot{FacetCount: good.FacetCount, Facets: map[int][]SplitRecord{0: {}}}},
		{"bad split", Snapshot{FacetCount: good.FacetCount, Facets: map[int][]SplitRecord{0: {{Splits: 1, Special: 3}, {}, {}}}}},
		{"bad state", Snapshot{FacetCount: good.FacetCount, Facets: map[int][]SplitRecord{0: {{State: 200}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Deserialize(tt.snap), ErrDeserializeMismatch)
			assert.Equal(t, before, leafKeys(s))
		})
	}

	other := newSelector(t, meshgen.Plane(10, 10, 5, 5), Options{})
	assert.ErrorIs(t, other.Deserialize(good), ErrDeserializeMismatch)
}

func TestDeserializeIgnoresEdgeFloor(t *testing.T) {
	// Histories recorded under a smaller minimum edge still replay.
	m := meshgen.Triangle(1)
	fine := newSelector(t, m, Options{MinEdgeLength: 0.01})
	ids, err := fine.Split(0, [3]bool{true, true, true})
	require.NoError(t, err)
	_, err = fine.Split(ids[3], [3]bool{true, true, true})
	require.NoError(t, err)

	coarse := newSelector(t, m, Options{MinEdgeLength: 0.4})
	require.NoError(t, coarse.Deserialize(fine.Serialize()))
	assert.Equal(t, leafKeys(fine), leafKeys(coarse))
}

package selector

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTriangle reports an id past the arena, a tombstone, or an
	// internal node where a leaf is required.
	ErrInvalidTriangle = errors.New("invalid triangle reference")

	// ErrDegenerateSplit reports a split that would bisect no edge or
	// produce an edge shorter than the minimum edge length.
	ErrDegenerateSplit = errors.New("degenerate split")

	// ErrDeserializeMismatch reports a snapshot that does not fit the base mesh.
	ErrDeserializeMismatch = errors.New("snapshot does not match mesh")

	// ErrCorruptSnapshot is a malformed binary snapshot.
	ErrCorruptSnapshot = fmt.Errorf("%w: corrupt snapshot", ErrDeserializeMismatch)

	// ErrInvalidMesh reports a base mesh with out-of-range indices.
	ErrInvalidMesh = errors.New("invalid base mesh")

	// ErrInvalidState reports a state beyond MaxState.
	ErrInvalidState = errors.New("invalid paint state")
)

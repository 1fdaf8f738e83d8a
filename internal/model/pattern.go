package model

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// Pattern is one way of cutting a single master roll: a multiset of piece
// lengths whose sum does not exceed the roll length. Patterns are
// immutable once constructed and canonicalized (cuts sorted by length
// descending), so two patterns with the same piece multiset compare equal
// and share the same id regardless of construction order.
type Pattern struct {
	cuts        []Cut
	rollLength  int
	totalLength int
	id          string
}

// NewPattern builds a pattern for a roll of the given length. Duplicate
// cut lengths are merged, zero-quantity cuts dropped. It fails when the
// pattern is empty, a cut is non-positive, or the pieces do not fit.
func NewPattern(rollLength int, cuts []Cut) (Pattern, error) {
	merged := make(map[int]int, len(cuts))
	for _, c := range cuts {
		if c.Quantity == 0 {
			continue
		}
		if c.Length <= 0 || c.Quantity < 0 {
			return Pattern{}, fmt.Errorf("%w: invalid cut %dx%d", ErrInvalidInput, c.Quantity, c.Length)
		}
		merged[c.Length] += c.Quantity
	}
	if len(merged) == 0 {
		return Pattern{}, fmt.Errorf("%w: pattern has no cuts", ErrInvalidInput)
	}

	canonical := make([]Cut, 0, len(merged))
	total := 0
	for length, qty := range merged {
		canonical = append(canonical, Cut{Length: length, Quantity: qty})
		total += length * qty
	}
	sort.Slice(canonical, func(i, j int) bool {
		return canonical[i].Length > canonical[j].Length
	})
	if total > rollLength {
		return Pattern{}, fmt.Errorf("%w: pattern length %d exceeds roll length %d", ErrInvalidInput, total, rollLength)
	}

	return Pattern{
		cuts:        canonical,
		rollLength:  rollLength,
		totalLength: total,
		id:          patternID(canonical),
	}, nil
}

// patternID derives a stable content hash from the canonical cut list.
// The id appears in user-facing output, so it must be identical across
// runs and processes for the same pattern.
func patternID(canonical []Cut) string {
	h := fnv.New64a()
	for _, c := range canonical {
		fmt.Fprintf(h, "%dx%d;", c.Quantity, c.Length)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// ID returns the content-addressed pattern identifier.
func (p Pattern) ID() string { return p.id }

// RollLength returns the master roll length the pattern was built for.
func (p Pattern) RollLength() int { return p.rollLength }

// TotalLength returns the summed piece length of the pattern.
func (p Pattern) TotalLength() int { return p.totalLength }

// Waste returns the unused length of a roll cut with this pattern.
func (p Pattern) Waste() int { return p.rollLength - p.totalLength }

// Cuts returns a copy of the canonical cut list, longest length first.
func (p Pattern) Cuts() []Cut {
	out := make([]Cut, len(p.cuts))
	copy(out, p.cuts)
	return out
}

// Count returns how many pieces of the given length the pattern yields.
func (p Pattern) Count(length int) int {
	for _, c := range p.cuts {
		if c.Length == length {
			return c.Quantity
		}
	}
	return 0
}

// PieceCount returns the total number of pieces the pattern yields.
func (p Pattern) PieceCount() int {
	n := 0
	for _, c := range p.cuts {
		n += c.Quantity
	}
	return n
}

// Equal reports whether two patterns cut the same piece multiset from
// the same roll length.
func (p Pattern) Equal(other Pattern) bool {
	return p.rollLength == other.rollLength && p.id == other.id
}

// String renders the canonical pattern form, e.g. "2x50 + 1x30 (waste 20)".
func (p Pattern) String() string {
	parts := make([]string, len(p.cuts))
	for i, c := range p.cuts {
		parts[i] = fmt.Sprintf("%dx%d", c.Quantity, c.Length)
	}
	return fmt.Sprintf("%s (waste %d)", strings.Join(parts, " + "), p.Waste())
}

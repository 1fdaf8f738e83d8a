package engine

import (
	"github.com/piwi3910/RollCut/internal/model"
)

// piece is a single demanded cut during greedy placement.
type piece struct {
	length   int
	priority model.Priority
}

// expandPieces flattens normalized demand into individual pieces. The
// demand is already sorted by length descending, so the expansion is the
// decreasing order the heuristics need, and insertion order within equal
// lengths follows demand order.
func expandPieces(demand []model.DemandLine) []piece {
	var pieces []piece
	for _, d := range demand {
		for i := 0; i < d.Quantity; i++ {
			pieces = append(pieces, piece{length: d.Length, priority: d.Priority})
		}
	}
	return pieces
}

// openRoll is a partially cut master roll during greedy placement.
type openRoll struct {
	remaining int
	cuts      map[int]int
}

func (r *openRoll) place(p piece) {
	r.remaining -= p.length
	r.cuts[p.length]++
}

// firstFitDecreasing places each piece into the first open roll it fits,
// opening a new roll when none does.
func firstFitDecreasing(demand []model.DemandLine, rollLength int) plan {
	var rolls []*openRoll
	for _, p := range expandPieces(demand) {
		placed := false
		for _, r := range rolls {
			if r.remaining >= p.length {
				r.place(p)
				placed = true
				break
			}
		}
		if !placed {
			r := &openRoll{remaining: rollLength, cuts: map[int]int{}}
			r.place(p)
			rolls = append(rolls, r)
		}
	}
	return rollsToPlan(rolls, rollLength)
}

// bestFitDecreasing places each piece into the open roll with the
// smallest remaining capacity that still fits it, ties going to the
// oldest roll.
func bestFitDecreasing(demand []model.DemandLine, rollLength int) plan {
	var rolls []*openRoll
	for _, p := range expandPieces(demand) {
		best := -1
		for i, r := range rolls {
			if r.remaining < p.length {
				continue
			}
			if best < 0 || r.remaining < rolls[best].remaining {
				best = i
			}
		}
		if best < 0 {
			r := &openRoll{remaining: rollLength, cuts: map[int]int{}}
			r.place(p)
			rolls = append(rolls, r)
			continue
		}
		rolls[best].place(p)
	}
	return rollsToPlan(rolls, rollLength)
}

// rollsToPlan collapses identical rolls (same piece multiset) into a
// single usage. Usages follow the order in which each pattern first
// occurs during placement.
func rollsToPlan(rolls []*openRoll, rollLength int) plan {
	var p plan
	for _, r := range rolls {
		cuts := make([]model.Cut, 0, len(r.cuts))
		for length, qty := range r.cuts {
			cuts = append(cuts, model.Cut{Length: length, Quantity: qty})
		}
		pat, err := model.NewPattern(rollLength, cuts)
		if err != nil {
			// Unreachable: every roll holds at least one placed piece
			// and placement never exceeds capacity.
			continue
		}
		merged := false
		for i := range p.usages {
			if p.usages[i].pattern.Equal(pat) {
				p.usages[i].rolls++
				merged = true
				break
			}
		}
		if !merged {
			p.usages = append(p.usages, patternUsage{pattern: pat, rolls: 1})
		}
	}
	return p
}

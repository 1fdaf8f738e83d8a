package engine

import "github.com/piwi3910/RollCut/internal/model"

// patternUsage pairs a pattern with how many rolls are cut with it.
type patternUsage struct {
	pattern model.Pattern
	rolls   int
}

// plan is a candidate integer cutting plan. Usages are kept in the order
// their pattern first occurs, and every later roll with the same pattern
// is folded into that usage, consecutive or not. That order is what the
// priority tiebreaker measures.
type plan struct {
	usages []patternUsage
}

func (p plan) totalRolls() int {
	n := 0
	for _, u := range p.usages {
		n += u.rolls
	}
	return n
}

func (p plan) totalWaste() int {
	w := 0
	for _, u := range p.usages {
		w += u.pattern.Waste() * u.rolls
	}
	return w
}

// producedCount returns how many pieces of the given length the plan yields.
func (p plan) producedCount(length int) int {
	n := 0
	for _, u := range p.usages {
		n += u.pattern.Count(length) * u.rolls
	}
	return n
}

// lastRollWith returns the 0-based index, in roll order, of the last
// roll containing a piece of the given priority, or -1 when the plan
// contains no such piece. Lower is better: it means the priority class
// is fully cut earlier in the run.
func (p plan) lastRollWith(priority model.Priority, priorityOf map[int]model.Priority) int {
	last := -1
	index := 0
	for _, u := range p.usages {
		has := false
		for _, c := range u.pattern.Cuts() {
			if priorityOf[c.Length] == priority {
				has = true
				break
			}
		}
		if has {
			last = index + u.rolls - 1
		}
		index += u.rolls
	}
	return last
}

// merge appends another plan's rolls after this plan's, collapsing
// usages that share a pattern.
func (p plan) merge(other plan) plan {
	out := plan{usages: make([]patternUsage, len(p.usages))}
	copy(out.usages, p.usages)
	for _, u := range other.usages {
		found := false
		for i := range out.usages {
			if out.usages[i].pattern.Equal(u.pattern) {
				out.usages[i].rolls += u.rolls
				found = true
				break
			}
		}
		if !found {
			out.usages = append(out.usages, u)
		}
	}
	return out
}

// priorityIndex maps each demanded length to its priority.
func priorityIndex(demand []model.DemandLine) map[int]model.Priority {
	idx := make(map[int]model.Priority, len(demand))
	for _, d := range demand {
		idx[d.Length] = d.Priority
	}
	return idx
}

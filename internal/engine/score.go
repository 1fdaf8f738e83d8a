package engine

import (
	"github.com/piwi3910/RollCut/internal/model"
)

// planMetrics are the quantities every goal function is built from.
type planMetrics struct {
	rolls      int
	waste      int
	cost       float64
	efficiency float64 // percent of bought stock consumed by demand
}

// computeMetrics derives the scoring quantities for a plan. Efficiency
// counts demanded length only, so overproduced pieces count against it
// the same way waste does.
func computeMetrics(p plan, rollLength, demandLength int, unitCost float64) planMetrics {
	rolls := p.totalRolls()
	m := planMetrics{
		rolls: rolls,
		waste: p.totalWaste(),
		cost:  float64(rolls) * unitCost,
	}
	if rolls > 0 {
		m.efficiency = 100 * float64(demandLength) / (float64(rolls) * float64(rollLength))
	}
	return m
}

// goalScore evaluates a plan under the given goal; lower is better.
// balance_all normalizes each term against the FFD baseline with equal
// weights.
func goalScore(goal model.Goal, m, baseline planMetrics) float64 {
	switch goal {
	case model.GoalMinimizeRolls:
		return float64(m.rolls)
	case model.GoalMinimizeCost:
		return m.cost
	case model.GoalBalanceAll:
		const third = 1.0 / 3.0
		return third*safeRatio(float64(m.rolls), float64(baseline.rolls)) +
			third*safeRatio(float64(m.waste), float64(baseline.waste)) +
			third*safeRatio(m.cost, baseline.cost)
	default: // minimize_waste
		return float64(m.waste)
	}
}

// safeRatio guards the baseline-relative terms against a zero baseline
// (an FFD plan can have zero waste). A zero-over-zero term scores the
// neutral 1; a positive numerator over zero scores 1 plus the raw value
// so it always loses to the zero-waste baseline.
func safeRatio(num, denom float64) float64 {
	if denom > 0 {
		return num / denom
	}
	if num == 0 {
		return 1
	}
	return 1 + num
}

// candidate is a scored plan competing in the selector.
type candidate struct {
	name    string
	p       plan
	metrics planMetrics
	score   float64
}

func newCandidate(name string, p plan, goal model.Goal, rollLength, demandLength int, unitCost float64, baseline planMetrics) candidate {
	m := computeMetrics(p, rollLength, demandLength, unitCost)
	return candidate{
		name:    name,
		p:       p,
		metrics: m,
		score:   goalScore(goal, m, baseline),
	}
}

// selectBest picks the lowest-scoring candidate. Score ties fall to the
// priority bump: the plan whose high-priority pieces finish in an
// earlier roll wins, then normal, then low. A full tie keeps the
// earlier candidate, so callers order candidates by preference (the
// requested algorithm first, FFD before BFD).
func selectBest(candidates []candidate, priorityOf map[int]model.Priority) candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score < best.score {
			best = c
			continue
		}
		if c.score > best.score {
			continue
		}
		if priorityBump(c.p, best.p, priorityOf) < 0 {
			best = c
		}
	}
	return best
}

// priorityBump compares two score-tied plans. Returns negative when a
// satisfies priorities earlier than b, positive when later, 0 on a tie.
func priorityBump(a, b plan, priorityOf map[int]model.Priority) int {
	for _, pri := range []model.Priority{model.PriorityHigh, model.PriorityNormal, model.PriorityLow} {
		la, lb := a.lastRollWith(pri, priorityOf), b.lastRollWith(pri, priorityOf)
		if la != lb {
			if la < lb {
				return -1
			}
			return 1
		}
	}
	return 0
}

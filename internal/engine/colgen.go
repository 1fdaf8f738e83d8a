package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/piwi3910/RollCut/internal/model"
)

// priceEpsilon is the reduced-cost tolerance: a priced pattern only
// enters the pool when its knapsack objective exceeds 1 + priceEpsilon.
const priceEpsilon = 1e-6

// colgenOutcome is the integer plan derived from column generation,
// with the counters and the honest convergence label.
type colgenOutcome struct {
	plan              plan
	convergence       model.Convergence
	iterations        int
	patternsEvaluated int
	objective         float64 // LP lower bound on rolls
	details           string
}

// runColumnGeneration iterates the LP master and the knapsack pricer
// until no pattern of negative reduced cost exists, then rounds the
// fractional optimum to an integer plan. Errors bubble up unclassified;
// the caller applies the downgrade policy.
func (s *Solver) runColumnGeneration(ctx context.Context, demand []model.DemandLine, rollLength int, goal model.Goal, unitCost float64, trace *traceRecorder) (colgenOutcome, error) {
	deadline := time.Now().Add(time.Duration(s.settings.TimeBudgetSeconds * float64(time.Second)))

	var pool []model.Pattern
	err := trace.run("Initialize Pattern Pool", func() (string, error) {
		var err error
		pool, err = singletonPatterns(demand, rollLength)
		return fmt.Sprintf("Generated %d singleton patterns, one per piece length", len(pool)), err
	})
	if err != nil {
		return colgenOutcome{}, err
	}

	seen := make(map[string]bool, len(pool))
	for _, p := range pool {
		seen[p.ID()] = true
	}

	outcome := colgenOutcome{patternsEvaluated: len(pool)}
	var last lpSolution
	lastPoolSize := 0

	err = trace.run("Iterate Pricing", func() (string, error) {
		for {
			if err := ctx.Err(); err != nil {
				return "", fmt.Errorf("%w: column generation interrupted", model.ErrCancelled)
			}

			lp, err := solveMasterLP(pool, demand)
			if err != nil {
				return "", err
			}
			last = lp
			lastPoolSize = len(pool)

			pricing, err := s.solvePricing(ctx, lp.duals, demand, rollLength, deadline)
			if err != nil {
				return "", err
			}
			outcome.patternsEvaluated++

			if pricing.timedOut {
				outcome.convergence = model.ConvergenceTimeout
				outcome.details = "pricing ran out of time budget"
				break
			}
			if pricing.value <= 1+priceEpsilon {
				outcome.convergence = model.ConvergenceOptimal
				outcome.details = fmt.Sprintf("no attractive pattern left (best reduced value %.6f)", pricing.value)
				break
			}

			pattern, err := patternFromCounts(pricing.counts, demand, rollLength)
			if err != nil {
				return "", fmt.Errorf("%w: pricer returned infeasible pattern: %v", model.ErrBackendFailure, err)
			}
			if seen[pattern.ID()] {
				// A repeated column means the LP is cycling on a
				// degenerate vertex; the current bound is kept.
				outcome.convergence = model.ConvergenceNearOptimal
				outcome.details = fmt.Sprintf("pricing repeated pattern %s", pattern.ID())
				break
			}
			pool = append(pool, pattern)
			seen[pattern.ID()] = true
			outcome.iterations++

			if outcome.iterations >= s.settings.MaxIterations {
				outcome.convergence = model.ConvergenceTimeout
				outcome.details = fmt.Sprintf("iteration cap %d reached", s.settings.MaxIterations)
				break
			}
			if time.Now().After(deadline) {
				outcome.convergence = model.ConvergenceTimeout
				outcome.details = "time budget exhausted"
				break
			}
		}
		return fmt.Sprintf("%d pricing iterations over %d patterns, LP bound %.4f rolls",
			outcome.iterations, len(pool), last.objective), nil
	})
	if err != nil {
		return colgenOutcome{}, err
	}
	outcome.objective = last.objective

	err = trace.run("Round to Integer", func() (string, error) {
		rounded, residual := roundDown(pool[:lastPoolSize], last.primal, demand)
		if len(residual) > 0 {
			rounded = rounded.merge(s.hybridGreedy(residual, rollLength, goal, unitCost))
		}
		outcome.plan = rounded
		gap := rounded.totalRolls() - int(math.Ceil(last.objective-lpEpsilon))
		if outcome.convergence == model.ConvergenceOptimal && gap > 1 {
			outcome.convergence = model.ConvergenceNearOptimal
			outcome.details = fmt.Sprintf("rounding gap of %d rolls above the LP bound", gap)
		}
		return fmt.Sprintf("Integer plan uses %d rolls (LP bound %.4f)", rounded.totalRolls(), last.objective), nil
	})
	if err != nil {
		return colgenOutcome{}, err
	}
	return outcome, nil
}

// singletonPatterns builds the initial pool: one pattern per piece
// length holding exactly one piece. Their columns form the identity, the
// trivially feasible starting basis of the master LP.
func singletonPatterns(demand []model.DemandLine, rollLength int) ([]model.Pattern, error) {
	pool := make([]model.Pattern, 0, len(demand))
	for _, d := range demand {
		p, err := model.NewPattern(rollLength, []model.Cut{{Length: d.Length, Quantity: 1}})
		if err != nil {
			return nil, err
		}
		pool = append(pool, p)
	}
	return pool, nil
}

// patternFromCounts converts a pricing count vector into a pattern.
func patternFromCounts(counts []int, demand []model.DemandLine, rollLength int) (model.Pattern, error) {
	var cuts []model.Cut
	for i, n := range counts {
		if n > 0 {
			cuts = append(cuts, model.Cut{Length: demand[i].Length, Quantity: n})
		}
	}
	return model.NewPattern(rollLength, cuts)
}

// roundDown takes the floor of each fractional usage, highest usage
// first, and returns the plan plus whatever demand is still uncovered.
func roundDown(pool []model.Pattern, primal []float64, demand []model.DemandLine) (plan, []model.DemandLine) {
	order := make([]int, len(pool))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return primal[order[a]] > primal[order[b]]
	})

	residual := make([]model.DemandLine, len(demand))
	copy(residual, demand)

	var rounded plan
	for _, idx := range order {
		rolls := int(math.Floor(primal[idx] + lpEpsilon))
		if rolls <= 0 {
			continue
		}
		rounded.usages = append(rounded.usages, patternUsage{pattern: pool[idx], rolls: rolls})
		for i := range residual {
			residual[i].Quantity -= pool[idx].Count(residual[i].Length) * rolls
		}
	}

	var open []model.DemandLine
	for _, d := range residual {
		if d.Quantity > 0 {
			open = append(open, d)
		}
	}
	return rounded, open
}

// hybridGreedy runs FFD and BFD on the demand and keeps the plan that
// scores better under the goal, ties going to FFD.
func (s *Solver) hybridGreedy(demand []model.DemandLine, rollLength int, goal model.Goal, unitCost float64) plan {
	demandLength := model.DemandTotalLength(demand)
	ffd := firstFitDecreasing(demand, rollLength)
	bfd := bestFitDecreasing(demand, rollLength)
	baseline := computeMetrics(ffd, rollLength, demandLength, unitCost)
	candidates := []candidate{
		newCandidate("ffd", ffd, goal, rollLength, demandLength, unitCost, baseline),
		newCandidate("bfd", bfd, goal, rollLength, demandLength, unitCost, baseline),
	}
	return selectBest(candidates, priorityIndex(demand)).p
}

// Package engine implements the 1-D cutting-stock solver: demand
// normalization, a column-generation optimizer over an LP master and a
// bounded-knapsack pricer, greedy first-fit and best-fit heuristics,
// goal-weighted plan selection, and the report and range-sweep drivers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/piwi3910/RollCut/internal/model"
)

// Solver runs cutting-stock optimizations within its configured limits.
// It holds no per-solve state; one Solver may be reused across calls.
type Solver struct {
	settings model.SolverSettings
}

// New returns a solver with zero settings replaced by defaults.
func New(settings model.SolverSettings) *Solver {
	return &Solver{settings: settings.Normalized()}
}

// traceRecorder accumulates the append-only algorithm-step trace.
type traceRecorder struct {
	steps []model.AlgorithmStep
}

// run times fn and appends a completed (or errored) step. fn returns
// the human-readable detail line for the step.
func (t *traceRecorder) run(name string, fn func() (string, error)) error {
	start := time.Now()
	detail, err := fn()
	step := model.AlgorithmStep{
		Step:        len(t.steps) + 1,
		Name:        name,
		Description: detail,
		Status:      model.StepCompleted,
		Duration:    time.Since(start).Seconds(),
	}
	if err != nil {
		step.Status = model.StepError
		step.Details = err.Error()
	}
	t.steps = append(t.steps, step)
	return err
}

// note appends an informational entry to an already recorded step.
func (t *traceRecorder) note(details string) {
	if len(t.steps) == 0 {
		return
	}
	t.steps[len(t.steps)-1].Details = details
}

// Solve runs one optimization. InvalidInput and Cancelled are returned
// as errors with no report; ResourceExceeded and BackendFailure inside
// column generation are downgraded to a HYBRID fallback whose report
// carries convergence "error" and the cause.
func (s *Solver) Solve(ctx context.Context, req model.Request) (model.Result, error) {
	start := time.Now()
	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)

	if err := req.Validate(); err != nil {
		return model.Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.Result{}, fmt.Errorf("%w: solve not started", model.ErrCancelled)
	}

	trace := &traceRecorder{}
	rollLength := req.MasterRollLength
	unitCost := req.EffectiveUnitCost()

	var demand []model.DemandLine
	err := trace.run("Normalize Demand", func() (string, error) {
		var err error
		demand, err = normalizeDemand(req.Demand, rollLength, s.settings.DemandCap)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Merged demand into %d distinct lengths, %d pieces total",
			len(demand), model.DemandTotalQuantity(demand)), nil
	})
	if err != nil {
		return model.Result{}, err
	}

	demandLength := model.DemandTotalLength(demand)
	priorities := priorityIndex(demand)

	// FFD is always computed: it is the scoring baseline for balance_all
	// and for costSavings, whichever algorithm was requested.
	ffd := firstFitDecreasing(demand, rollLength)
	bfd := bestFitDecreasing(demand, rollLength)
	baseline := computeMetrics(ffd, rollLength, demandLength, unitCost)

	mkCandidate := func(name string, p plan) candidate {
		return newCandidate(name, p, req.Goal, rollLength, demandLength, unitCost, baseline)
	}

	var candidates []candidate
	convergence := model.ConvergenceOptimal
	iterations := 0
	patternsEvaluated := 0

	switch req.Algorithm {
	case model.AlgorithmFirstFitDecreasing:
		err = trace.run("Greedy Placement", func() (string, error) {
			candidates = []candidate{mkCandidate("first_fit_decreasing", ffd)}
			return fmt.Sprintf("First-fit decreasing packed %d rolls", ffd.totalRolls()), nil
		})

	case model.AlgorithmBestFitDecreasing:
		err = trace.run("Greedy Placement", func() (string, error) {
			candidates = []candidate{mkCandidate("best_fit_decreasing", bfd)}
			return fmt.Sprintf("Best-fit decreasing packed %d rolls", bfd.totalRolls()), nil
		})

	case model.AlgorithmHybrid:
		err = trace.run("Greedy Placement", func() (string, error) {
			candidates = []candidate{
				mkCandidate("first_fit_decreasing", ffd),
				mkCandidate("best_fit_decreasing", bfd),
			}
			return fmt.Sprintf("First-fit packed %d rolls, best-fit %d rolls",
				ffd.totalRolls(), bfd.totalRolls()), nil
		})

	case model.AlgorithmColumnGeneration:
		outcome, cgErr := s.runColumnGeneration(ctx, demand, rollLength, req.Goal, unitCost, trace)
		switch {
		case cgErr == nil:
			convergence = outcome.convergence
			iterations = outcome.iterations
			patternsEvaluated = outcome.patternsEvaluated
			if outcome.details != "" {
				trace.note(outcome.details)
			}
			// HYBRID rides along as a safety net: rounding can lose to
			// plain greedy on small instances.
			candidates = []candidate{
				mkCandidate("column_generation", outcome.plan),
				mkCandidate("first_fit_decreasing", ffd),
				mkCandidate("best_fit_decreasing", bfd),
			}
		case errors.Is(cgErr, model.ErrCancelled) || errors.Is(cgErr, model.ErrInvalidInput):
			return model.Result{}, cgErr
		default:
			// ResourceExceeded / BackendFailure downgrade to the greedy
			// fallback; the report stays valid and names the cause.
			convergence = model.ConvergenceError
			err = trace.run("Greedy Fallback", func() (string, error) {
				candidates = []candidate{
					mkCandidate("first_fit_decreasing", ffd),
					mkCandidate("best_fit_decreasing", bfd),
				}
				return fmt.Sprintf("column generation failed (%v); falling back to hybrid greedy", cgErr), nil
			})
		}
	}
	if err != nil {
		return model.Result{}, err
	}

	chosen := selectBest(candidates, priorities)

	if req.Algorithm != model.AlgorithmColumnGeneration {
		patternsEvaluated = len(ffd.usages) + len(bfd.usages)
		// A greedy plan that meets the LP volume bound is provably
		// optimal in roll count; anything above it is only near-optimal.
		if convergence == model.ConvergenceOptimal && chosen.metrics.rolls > ceilDiv(demandLength, rollLength) {
			convergence = model.ConvergenceNearOptimal
		}
	}

	var result model.Result
	err = trace.run("Finalize Report", func() (string, error) {
		result = buildResult(req, demand, chosen, baseline, unitCost)
		return fmt.Sprintf("Plan uses %d rolls at %.2f%% efficiency", result.TotalRolls, result.Efficiency), nil
	})
	if err != nil {
		return model.Result{}, err
	}

	var memAfter runtime.MemStats
	runtime.ReadMemStats(&memAfter)
	memPeak := int64(0)
	if memAfter.HeapAlloc > memBefore.HeapAlloc {
		memPeak = int64(memAfter.HeapAlloc - memBefore.HeapAlloc)
	}

	result.AlgorithmSteps = trace.steps
	result.Performance = model.Performance{
		ExecutionTime:     time.Since(start).Seconds(),
		MemoryUsage:       memPeak,
		PatternsEvaluated: patternsEvaluated,
		Iterations:        iterations,
		Convergence:       convergence,
	}
	return result, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/piwi3910/RollCut/internal/model"
)

// SolveRange sweeps the solver across the arithmetic progression of
// master roll lengths. Lengths shorter than the longest demanded piece
// are skipped, not failed; per-length solver failures are recorded and
// the sweep continues. Cancellation aborts the whole sweep. The sweep
// fails with InvalidInput when no length in the range is feasible.
func (s *Solver) SolveRange(ctx context.Context, req model.RangeRequest, progress model.ProgressFunc) (model.RangeResult, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return model.RangeResult{}, err
	}

	maxPiece := 0
	for _, d := range req.Demand {
		if d.Length > maxPiece {
			maxPiece = d.Length
		}
	}

	lengths := req.Range.Values()
	var result model.RangeResult

	for i, length := range lengths {
		if progress != nil {
			progress(model.ProgressEvent{
				Completed:            i,
				Total:                len(lengths),
				CurrentConfiguration: length,
			})
		}
		if err := ctx.Err(); err != nil {
			return model.RangeResult{}, fmt.Errorf("%w: range sweep interrupted", model.ErrCancelled)
		}
		if maxPiece > length {
			continue // infeasible length, not an error
		}

		solved, err := s.Solve(ctx, req.Solve(length))
		if err != nil {
			if errors.Is(err, model.ErrCancelled) {
				return model.RangeResult{}, err
			}
			// Solve already downgrades recoverable failures; whatever
			// still errors is recorded for this length and the sweep
			// moves on.
			result.Results = append(result.Results, model.RangeEntry{
				MasterRollLength: length,
				Error:            err.Error(),
			})
			continue
		}
		result.Results = append(result.Results, model.RangeEntry{
			MasterRollLength: length,
			Optimization:     &solved,
		})
	}

	best, summary, ok := summarize(result.Results, req)
	if !ok {
		return model.RangeResult{}, fmt.Errorf("%w: no feasible master roll length in [%d, %d] step %d",
			model.ErrInvalidInput, req.Range.Min, req.Range.Max, req.Range.Step)
	}
	summary.TotalTime = time.Since(start).Seconds()
	result.BestConfiguration = best
	result.Summary = summary
	return result, nil
}

// summarize picks the feasible run with the lowest goal score and
// aggregates the efficiency statistics.
func summarize(entries []model.RangeEntry, req model.RangeRequest) (*model.RangeEntry, model.RangeSummary, bool) {
	var summary model.RangeSummary
	var best *model.RangeEntry
	bestScore := 0.0
	sum := 0.0

	for i := range entries {
		e := &entries[i]
		if e.Optimization == nil {
			continue
		}
		r := e.Optimization
		score := resultScore(req.Goal, r, req.UnitCost)

		if summary.TotalConfigurations == 0 {
			summary.BestEfficiency = r.Efficiency
			summary.WorstEfficiency = r.Efficiency
		} else {
			if r.Efficiency > summary.BestEfficiency {
				summary.BestEfficiency = r.Efficiency
			}
			if r.Efficiency < summary.WorstEfficiency {
				summary.WorstEfficiency = r.Efficiency
			}
		}
		summary.TotalConfigurations++
		sum += r.Efficiency

		if best == nil || score < bestScore {
			best = e
			bestScore = score
		}
	}
	if best == nil {
		return nil, summary, false
	}
	summary.MeanEfficiency = sum / float64(summary.TotalConfigurations)
	return best, summary, true
}

// resultScore evaluates a finished report under the goal, mirroring the
// in-solve scorer. balance_all compares across roll lengths, where no
// shared FFD baseline exists, so it falls back to waste percentage as
// the balance proxy.
func resultScore(goal model.Goal, r *model.Result, unitCost float64) float64 {
	if unitCost <= 0 {
		unitCost = 1
	}
	switch goal {
	case model.GoalMinimizeRolls:
		return float64(r.TotalRolls)
	case model.GoalMinimizeCost:
		return float64(r.TotalRolls) * unitCost
	case model.GoalBalanceAll:
		return r.WastePercentage
	default:
		return float64(r.TotalWaste)
	}
}

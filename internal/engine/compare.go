package engine

import (
	"context"

	"github.com/piwi3910/RollCut/internal/model"
)

// ComparisonResult holds the report and headline statistics for a
// single algorithm during a side-by-side comparison.
type ComparisonResult struct {
	Algorithm  model.Algorithm
	Result     model.Result
	TotalRolls int
	TotalWaste int
	Efficiency float64
	Err        error
}

// CompareAlgorithms runs the same request through every algorithm and
// returns the results in a fixed order. This powers what-if comparisons
// without the caller assembling four requests by hand.
func (s *Solver) CompareAlgorithms(ctx context.Context, req model.Request) []ComparisonResult {
	algorithms := []model.Algorithm{
		model.AlgorithmColumnGeneration,
		model.AlgorithmFirstFitDecreasing,
		model.AlgorithmBestFitDecreasing,
		model.AlgorithmHybrid,
	}

	results := make([]ComparisonResult, 0, len(algorithms))
	for _, algo := range algorithms {
		r := req
		r.Algorithm = algo
		solved, err := s.Solve(ctx, r)
		entry := ComparisonResult{Algorithm: algo, Err: err}
		if err == nil {
			entry.Result = solved
			entry.TotalRolls = solved.TotalRolls
			entry.TotalWaste = solved.TotalWaste
			entry.Efficiency = solved.Efficiency
		}
		results = append(results, entry)
	}
	return results
}

package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/RollCut/internal/model"
)

func testSolver() *Solver {
	return New(model.DefaultSolverSettings())
}

func solveOK(t *testing.T, req model.Request) model.Result {
	t.Helper()
	result, err := testSolver().Solve(context.Background(), req)
	require.NoError(t, err)
	checkInvariants(t, req, result)
	return result
}

// checkInvariants asserts the properties every returned report must
// satisfy: demand coverage, per-pattern capacity, and the consistency
// of the headline numbers.
func checkInvariants(t *testing.T, req model.Request, r model.Result) {
	t.Helper()

	// Demand coverage: every normalized length is produced at least as
	// often as demanded.
	produced := map[int]int{}
	totalRolls := 0
	totalWaste := 0
	for _, p := range r.Patterns {
		totalRolls += p.RollsUsed
		totalWaste += p.Waste * p.RollsUsed
		for _, c := range p.Cuts {
			produced[c.Length] += c.Quantity * p.RollsUsed
		}
		// Capacity: cut content plus waste is exactly one roll.
		assert.Equal(t, req.MasterRollLength, p.TotalLength+p.Waste,
			"pattern %s: totalLength + waste must equal the roll length", p.ID)
		assert.GreaterOrEqual(t, p.Waste, 0, "pattern %s: negative waste", p.ID)
	}
	demanded := map[int]int{}
	for _, d := range req.Demand {
		demanded[d.Length] += d.Quantity
	}
	for length, qty := range demanded {
		assert.GreaterOrEqual(t, produced[length], qty, "demand for length %d not covered", length)
	}

	// Consistency of the totals.
	assert.Equal(t, totalRolls, r.TotalRolls)
	assert.Equal(t, totalWaste, r.TotalWaste)
	demandLength := model.DemandTotalLength(req.Demand)
	wantEff := 100 * float64(demandLength) / (float64(r.TotalRolls) * float64(req.MasterRollLength))
	assert.InDelta(t, wantEff, r.Efficiency, 1e-6)
	assert.InDelta(t, 100-r.Efficiency, r.WastePercentage, 1e-6)

	// LP volume lower bound on the roll count.
	lowerBound := (demandLength + req.MasterRollLength - 1) / req.MasterRollLength
	assert.GreaterOrEqual(t, r.TotalRolls, lowerBound)
}

// ─── End-to-end scenarios ────────────────────────────────────

func TestSolve_PerfectFitSingleRoll(t *testing.T) {
	// Two 50mm pieces fill a 100mm roll exactly.
	result := solveOK(t, model.Request{
		MasterRollLength: 100,
		Algorithm:        model.AlgorithmColumnGeneration,
		Goal:             model.GoalMinimizeWaste,
		Demand:           []model.DemandLine{{Length: 50, Quantity: 2, Priority: model.PriorityNormal}},
	})

	assert.Equal(t, 1, result.TotalRolls)
	assert.Equal(t, 0, result.TotalWaste)
	assert.InDelta(t, 100.0, result.Efficiency, 1e-9)
	require.Len(t, result.Patterns, 1)
	assert.Equal(t, []model.Cut{{Length: 50, Quantity: 2}}, result.Patterns[0].Cuts)
	assert.Equal(t, model.ConvergenceOptimal, result.Performance.Convergence)
}

func TestSolve_FirstFitTwoRolls(t *testing.T) {
	// 60 + 50 cannot share a 100mm roll: two rolls, 55% efficiency.
	result := solveOK(t, model.Request{
		MasterRollLength: 100,
		Algorithm:        model.AlgorithmFirstFitDecreasing,
		Goal:             model.GoalMinimizeWaste,
		Demand: []model.DemandLine{
			{Length: 60, Quantity: 1, Priority: model.PriorityNormal},
			{Length: 50, Quantity: 1, Priority: model.PriorityNormal},
		},
	})

	assert.Equal(t, 2, result.TotalRolls)
	assert.Equal(t, 90, result.TotalWaste)
	assert.InDelta(t, 55.0, result.Efficiency, 1e-9)
	assert.Len(t, result.Patterns, 2)
}

func TestSolve_ColumnGenerationPacksTwoRolls(t *testing.T) {
	// 60+40 and 30+30 share two rolls at 80% efficiency.
	result := solveOK(t, model.Request{
		MasterRollLength: 100,
		Algorithm:        model.AlgorithmColumnGeneration,
		Goal:             model.GoalMinimizeRolls,
		Demand: []model.DemandLine{
			{Length: 60, Quantity: 1, Priority: model.PriorityNormal},
			{Length: 40, Quantity: 1, Priority: model.PriorityNormal},
			{Length: 30, Quantity: 2, Priority: model.PriorityNormal},
		},
	})

	assert.Equal(t, 2, result.TotalRolls)
	assert.InDelta(t, 80.0, result.Efficiency, 1e-9)
}

func TestSolve_VolumeBoundReached(t *testing.T) {
	// 1350mm of demand in 600mm rolls: exactly ceil(1350/600) = 3 rolls.
	result := solveOK(t, model.Request{
		MasterRollLength: 600,
		Algorithm:        model.AlgorithmColumnGeneration,
		Goal:             model.GoalMinimizeWaste,
		Demand: []model.DemandLine{
			{Length: 100, Quantity: 5, Priority: model.PriorityNormal},
			{Length: 150, Quantity: 3, Priority: model.PriorityNormal},
			{Length: 200, Quantity: 2, Priority: model.PriorityNormal},
		},
	})

	assert.Equal(t, 3, result.TotalRolls)
	assert.InDelta(t, 75.0, result.Efficiency, 1e-9)
	assert.Equal(t, 450, result.TotalWaste)
}

func TestSolve_RemainderRoll(t *testing.T) {
	// Seven 3mm pieces in 10mm rolls: 3+3+3 twice, then the leftover.
	result := solveOK(t, model.Request{
		MasterRollLength: 10,
		Algorithm:        model.AlgorithmColumnGeneration,
		Goal:             model.GoalMinimizeWaste,
		Demand:           []model.DemandLine{{Length: 3, Quantity: 7, Priority: model.PriorityNormal}},
	})

	assert.Equal(t, 3, result.TotalRolls)
	assert.Equal(t, 9, result.TotalWaste)
}

func TestSolve_SinglePieceFillsRoll(t *testing.T) {
	result := solveOK(t, model.Request{
		MasterRollLength: 250,
		Algorithm:        model.AlgorithmHybrid,
		Goal:             model.GoalMinimizeRolls,
		Demand:           []model.DemandLine{{Length: 250, Quantity: 1, Priority: model.PriorityHigh}},
	})

	assert.Equal(t, 1, result.TotalRolls)
	assert.Equal(t, 0, result.TotalWaste)
	assert.InDelta(t, 100.0, result.Efficiency, 1e-9)
}

// ─── Selector and scoring properties ────────────────────────────────

func TestSolve_HybridNeverWorseThanEitherGreedy(t *testing.T) {
	demand := []model.DemandLine{
		{Length: 70, Quantity: 3, Priority: model.PriorityNormal},
		{Length: 45, Quantity: 4, Priority: model.PriorityNormal},
		{Length: 30, Quantity: 6, Priority: model.PriorityNormal},
		{Length: 25, Quantity: 5, Priority: model.PriorityNormal},
	}
	base := model.Request{
		MasterRollLength: 150,
		Goal:             model.GoalMinimizeRolls,
		Demand:           demand,
	}

	ffdReq, bfdReq, hybReq := base, base, base
	ffdReq.Algorithm = model.AlgorithmFirstFitDecreasing
	bfdReq.Algorithm = model.AlgorithmBestFitDecreasing
	hybReq.Algorithm = model.AlgorithmHybrid

	ffd := solveOK(t, ffdReq)
	bfd := solveOK(t, bfdReq)
	hyb := solveOK(t, hybReq)

	assert.LessOrEqual(t, hyb.TotalRolls, ffd.TotalRolls)
	assert.LessOrEqual(t, hyb.TotalRolls, bfd.TotalRolls)
}

func TestSolve_ColumnGenerationNeverWorseThanHybrid(t *testing.T) {
	demand := []model.DemandLine{
		{Length: 55, Quantity: 4, Priority: model.PriorityNormal},
		{Length: 35, Quantity: 7, Priority: model.PriorityNormal},
		{Length: 20, Quantity: 9, Priority: model.PriorityNormal},
	}
	base := model.Request{
		MasterRollLength: 110,
		Goal:             model.GoalMinimizeWaste,
		Demand:           demand,
	}
	cgReq, hybReq := base, base
	cgReq.Algorithm = model.AlgorithmColumnGeneration
	hybReq.Algorithm = model.AlgorithmHybrid

	cg := solveOK(t, cgReq)
	hyb := solveOK(t, hybReq)

	// The selector compares the rounded plan against the greedy safety
	// net, so the emitted plan never scores above it.
	assert.LessOrEqual(t, cg.TotalWaste, hyb.TotalWaste)
}

func TestSolve_CostSavingsAgainstFFDBaseline(t *testing.T) {
	req := model.Request{
		MasterRollLength: 100,
		UnitCost:         2.5,
		Algorithm:        model.AlgorithmColumnGeneration,
		Goal:             model.GoalMinimizeCost,
		Demand: []model.DemandLine{
			{Length: 60, Quantity: 2, Priority: model.PriorityNormal},
			{Length: 40, Quantity: 2, Priority: model.PriorityNormal},
		},
	}
	result := solveOK(t, req)

	ffdReq := req
	ffdReq.Algorithm = model.AlgorithmFirstFitDecreasing
	ffd := solveOK(t, ffdReq)

	want := float64(ffd.TotalRolls)*2.5 - float64(result.TotalRolls)*2.5
	assert.InDelta(t, want, result.CostSavings, 1e-9)
}

func TestSolve_BalanceAllGoal(t *testing.T) {
	result := solveOK(t, model.Request{
		MasterRollLength: 120,
		Algorithm:        model.AlgorithmHybrid,
		Goal:             model.GoalBalanceAll,
		Demand: []model.DemandLine{
			{Length: 80, Quantity: 2, Priority: model.PriorityNormal},
			{Length: 40, Quantity: 3, Priority: model.PriorityLow},
		},
	})
	assert.Greater(t, result.TotalRolls, 0)
}

// ─── Determinism and idempotence ────────────────────────────────

// normalizeTimings zeroes the wall-clock fields, which are the only
// values allowed to differ between identical runs.
func normalizeTimings(r *model.Result) {
	r.Performance.ExecutionTime = 0
	r.Performance.MemoryUsage = 0
	for i := range r.AlgorithmSteps {
		r.AlgorithmSteps[i].Duration = 0
	}
}

func resultBytes(t *testing.T, r model.Result) []byte {
	t.Helper()
	normalizeTimings(&r)
	data, err := json.Marshal(r)
	require.NoError(t, err)
	return data
}

func TestSolve_Deterministic(t *testing.T) {
	req := model.Request{
		MasterRollLength: 200,
		Algorithm:        model.AlgorithmColumnGeneration,
		Goal:             model.GoalMinimizeWaste,
		Demand: []model.DemandLine{
			{Length: 75, Quantity: 4, Priority: model.PriorityHigh},
			{Length: 60, Quantity: 5, Priority: model.PriorityNormal},
			{Length: 25, Quantity: 8, Priority: model.PriorityLow},
		},
	}
	first := solveOK(t, req)
	second := solveOK(t, req)
	assert.Equal(t, resultBytes(t, first), resultBytes(t, second))
}

func TestSolve_DemandOrderIrrelevant(t *testing.T) {
	forward := model.Request{
		MasterRollLength: 100,
		Algorithm:        model.AlgorithmColumnGeneration,
		Goal:             model.GoalMinimizeWaste,
		Demand: []model.DemandLine{
			{Length: 60, Quantity: 1, Priority: model.PriorityNormal},
			{Length: 40, Quantity: 1, Priority: model.PriorityNormal},
			{Length: 30, Quantity: 2, Priority: model.PriorityNormal},
		},
	}
	reversed := forward
	reversed.Demand = []model.DemandLine{
		{Length: 30, Quantity: 2, Priority: model.PriorityNormal},
		{Length: 40, Quantity: 1, Priority: model.PriorityNormal},
		{Length: 60, Quantity: 1, Priority: model.PriorityNormal},
	}

	assert.Equal(t, resultBytes(t, solveOK(t, forward)), resultBytes(t, solveOK(t, reversed)))
}

func TestSolve_SplitDemandEntriesMerge(t *testing.T) {
	merged := model.Request{
		MasterRollLength: 100,
		Algorithm:        model.AlgorithmHybrid,
		Goal:             model.GoalMinimizeRolls,
		Demand:           []model.DemandLine{{Length: 30, Quantity: 5, Priority: model.PriorityNormal}},
	}
	split := merged
	split.Demand = []model.DemandLine{
		{Length: 30, Quantity: 2, Priority: model.PriorityNormal},
		{Length: 30, Quantity: 3, Priority: model.PriorityNormal},
	}

	assert.Equal(t, resultBytes(t, solveOK(t, merged)), resultBytes(t, solveOK(t, split)))
}

// ─── Error handling ────────────────────────────────

func TestSolve_EmptyDemandRejected(t *testing.T) {
	_, err := testSolver().Solve(context.Background(), model.Request{
		MasterRollLength: 100,
		Algorithm:        model.AlgorithmHybrid,
		Goal:             model.GoalMinimizeWaste,
	})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestSolve_PieceLongerThanRollRejected(t *testing.T) {
	_, err := testSolver().Solve(context.Background(), model.Request{
		MasterRollLength: 100,
		Algorithm:        model.AlgorithmHybrid,
		Goal:             model.GoalMinimizeWaste,
		Demand:           []model.DemandLine{{Length: 120, Quantity: 1, Priority: model.PriorityNormal}},
	})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestSolve_NonPositiveQuantityRejected(t *testing.T) {
	_, err := testSolver().Solve(context.Background(), model.Request{
		MasterRollLength: 100,
		Algorithm:        model.AlgorithmHybrid,
		Goal:             model.GoalMinimizeWaste,
		Demand:           []model.DemandLine{{Length: 50, Quantity: 0, Priority: model.PriorityNormal}},
	})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestSolve_DemandCapRejected(t *testing.T) {
	settings := model.DefaultSolverSettings()
	settings.DemandCap = 10
	solver := New(settings)
	_, err := solver.Solve(context.Background(), model.Request{
		MasterRollLength: 100,
		Algorithm:        model.AlgorithmHybrid,
		Goal:             model.GoalMinimizeWaste,
		Demand:           []model.DemandLine{{Length: 10, Quantity: 11, Priority: model.PriorityNormal}},
	})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestSolve_UnknownAlgorithmRejected(t *testing.T) {
	_, err := testSolver().Solve(context.Background(), model.Request{
		MasterRollLength: 100,
		Algorithm:        "simulated_annealing",
		Goal:             model.GoalMinimizeWaste,
		Demand:           []model.DemandLine{{Length: 50, Quantity: 1, Priority: model.PriorityNormal}},
	})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestSolve_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testSolver().Solve(ctx, model.Request{
		MasterRollLength: 100,
		Algorithm:        model.AlgorithmColumnGeneration,
		Goal:             model.GoalMinimizeWaste,
		Demand:           []model.DemandLine{{Length: 50, Quantity: 1, Priority: model.PriorityNormal}},
	})
	assert.ErrorIs(t, err, model.ErrCancelled)
}

func TestSolve_ResourceExhaustionFallsBackToGreedy(t *testing.T) {
	// A one-cell DP budget forces branch-and-bound, and a one-node
	// budget kills that too; the solver must still produce a valid
	// greedy report labeled as an error.
	settings := model.DefaultSolverSettings()
	settings.MaxDPCells = 1
	settings.MaxBnBNodes = 1
	solver := New(settings)

	req := model.Request{
		MasterRollLength: 100,
		Algorithm:        model.AlgorithmColumnGeneration,
		Goal:             model.GoalMinimizeWaste,
		Demand: []model.DemandLine{
			{Length: 60, Quantity: 2, Priority: model.PriorityNormal},
			{Length: 40, Quantity: 3, Priority: model.PriorityNormal},
		},
	}
	result, err := solver.Solve(context.Background(), req)
	require.NoError(t, err)
	checkInvariants(t, req, result)
	assert.Equal(t, model.ConvergenceError, result.Performance.Convergence)
}

func TestSolve_TimeBudgetExhaustedLabelsTimeout(t *testing.T) {
	settings := model.DefaultSolverSettings()
	settings.TimeBudgetSeconds = 1e-9
	solver := New(settings)

	req := model.Request{
		MasterRollLength: 100,
		Algorithm:        model.AlgorithmColumnGeneration,
		Goal:             model.GoalMinimizeWaste,
		Demand: []model.DemandLine{
			{Length: 60, Quantity: 2, Priority: model.PriorityNormal},
			{Length: 40, Quantity: 3, Priority: model.PriorityNormal},
		},
	}
	result, err := solver.Solve(context.Background(), req)
	require.NoError(t, err)
	checkInvariants(t, req, result)
	assert.Equal(t, model.ConvergenceTimeout, result.Performance.Convergence)
}

// ─── Report shape ────────────────────────────────

func TestSolve_ReportShape(t *testing.T) {
	result := solveOK(t, model.Request{
		MasterRollLength: 100,
		Algorithm:        model.AlgorithmColumnGeneration,
		Goal:             model.GoalMinimizeWaste,
		Demand: []model.DemandLine{
			{Length: 60, Quantity: 2, Priority: model.PriorityHigh},
			{Length: 40, Quantity: 2, Priority: model.PriorityNormal},
		},
	})

	// Instructions are 1-indexed, close with the inventory check, and
	// reference every pattern.
	require.NotEmpty(t, result.CuttingInstructions)
	for i, ins := range result.CuttingInstructions {
		assert.Equal(t, i+1, ins.Step)
	}
	last := result.CuttingInstructions[len(result.CuttingInstructions)-1]
	assert.Equal(t, "Final inventory check:", last.Description)
	assert.Equal(t, 0, last.RollsCount)
	assert.Len(t, result.CuttingInstructions, len(result.Patterns)+1)

	// Pattern ordering: most rolls first, then longest content, then id.
	for i := 1; i < len(result.Patterns); i++ {
		prev, cur := result.Patterns[i-1], result.Patterns[i]
		if prev.RollsUsed != cur.RollsUsed {
			assert.Greater(t, prev.RollsUsed, cur.RollsUsed)
		} else if prev.TotalLength != cur.TotalLength {
			assert.Greater(t, prev.TotalLength, cur.TotalLength)
		} else {
			assert.Less(t, prev.ID, cur.ID)
		}
	}

	// The trace records the column generation phases in order.
	names := make([]string, len(result.AlgorithmSteps))
	for i, s := range result.AlgorithmSteps {
		names[i] = s.Name
		assert.Equal(t, model.StepCompleted, s.Status)
		assert.Equal(t, i+1, s.Step)
	}
	assert.Equal(t, []string{
		"Normalize Demand",
		"Initialize Pattern Pool",
		"Iterate Pricing",
		"Round to Integer",
		"Finalize Report",
	}, names)
}

func TestSolve_DuplicateLengthsMergePriorities(t *testing.T) {
	result := solveOK(t, model.Request{
		MasterRollLength: 100,
		Algorithm:        model.AlgorithmFirstFitDecreasing,
		Goal:             model.GoalMinimizeWaste,
		Demand: []model.DemandLine{
			{Length: 50, Quantity: 1, Priority: model.PriorityLow},
			{Length: 50, Quantity: 1, Priority: model.PriorityHigh},
		},
	})
	assert.Equal(t, 1, result.TotalRolls)
	require.Len(t, result.Patterns, 1)
	assert.Equal(t, []model.Cut{{Length: 50, Quantity: 2}}, result.Patterns[0].Cuts)
}

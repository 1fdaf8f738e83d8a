package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/piwi3910/RollCut/internal/model"
)

// lpSolution is the master problem's answer: pattern usages y*, one dual
// price per demand row, and the LP objective (fractional roll count).
type lpSolution struct {
	primal    []float64
	duals     []float64
	objective float64
}

const lpEpsilon = 1e-9

// solveMasterLP solves the continuous set-cover relaxation
//
//	min Σ yₚ  s.t.  Σₚ aₚᵢ yₚ ≥ qᵢ,  y ≥ 0
//
// over the current pattern pool with a revised primal simplex.
// Surplus variables turn the covering rows into equalities, and the
// first len(demand) pool entries must be the singleton patterns: their
// columns form the identity, which is the feasible starting basis
// (y_singleton_i = qᵢ), so no artificial variables are needed. Bland's
// rule picks entering and leaving variables, which rules out cycling
// and makes the solve deterministic for identical inputs.
func solveMasterLP(pool []model.Pattern, demand []model.DemandLine) (lpSolution, error) {
	n := len(demand)
	numVars := len(pool) + n // pattern columns then surplus columns

	// column fills dst with the constraint column of variable j.
	column := func(dst []float64, j int) {
		for i := range dst {
			dst[i] = 0
		}
		if j < len(pool) {
			for i, d := range demand {
				dst[i] = float64(pool[j].Count(d.Length))
			}
			return
		}
		dst[j-len(pool)] = -1
	}
	cost := func(j int) float64 {
		if j < len(pool) {
			return 1
		}
		return 0
	}

	q := mat.NewVecDense(n, nil)
	for i, d := range demand {
		q.SetVec(i, float64(d.Quantity))
	}

	basis := make([]int, n)
	for i := range basis {
		basis[i] = i
	}

	b := mat.NewDense(n, n, nil)
	col := make([]float64, n)
	cb := mat.NewVecDense(n, nil)
	var lu mat.LU
	var lambda, xb, dir mat.VecDense

	// An ill-conditioned basis still yields a usable solve; only a
	// truly singular one is a failure.
	solveErr := func(err error) error {
		if err == nil {
			return nil
		}
		if _, ok := err.(mat.Condition); ok {
			return nil
		}
		return fmt.Errorf("%w: singular basis: %v", model.ErrBackendFailure, err)
	}

	// The simplex visits each basis at most once under Bland's rule;
	// this cap only catches a numerically wedged solve.
	maxPivots := 200*(numVars+n) + 1000

	for pivot := 0; ; pivot++ {
		if pivot > maxPivots {
			return lpSolution{}, fmt.Errorf("%w: simplex exceeded %d pivots", model.ErrBackendFailure, maxPivots)
		}

		for i, j := range basis {
			column(col, j)
			b.SetCol(i, col)
			cb.SetVec(i, cost(j))
		}
		lu.Factorize(b)

		if err := solveErr(lu.SolveVecTo(&lambda, true, cb)); err != nil {
			return lpSolution{}, err
		}

		// Bland: enter the lowest-index variable with negative reduced cost.
		entering := -1
		inBasis := make(map[int]bool, n)
		for _, j := range basis {
			inBasis[j] = true
		}
		for j := 0; j < numVars; j++ {
			if inBasis[j] {
				continue
			}
			column(col, j)
			rc := cost(j)
			for i := 0; i < n; i++ {
				rc -= lambda.AtVec(i) * col[i]
			}
			if rc < -lpEpsilon {
				entering = j
				break
			}
		}

		if err := solveErr(lu.SolveVecTo(&xb, false, q)); err != nil {
			return lpSolution{}, err
		}

		if entering < 0 {
			return extractSolution(basis, &xb, &lambda, pool, n)
		}

		column(col, entering)
		if err := solveErr(lu.SolveVecTo(&dir, false, mat.NewVecDense(n, col))); err != nil {
			return lpSolution{}, err
		}

		// Ratio test; ties go to the lowest basis row (Bland again).
		leaving := -1
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			d := dir.AtVec(i)
			if d <= lpEpsilon {
				continue
			}
			ratio := xb.AtVec(i) / d
			if ratio < 0 {
				ratio = 0
			}
			if ratio < best-lpEpsilon {
				best = ratio
				leaving = i
			}
		}
		if leaving < 0 {
			return lpSolution{}, fmt.Errorf("%w: master problem unbounded", model.ErrBackendFailure)
		}
		basis[leaving] = entering
	}
}

// extractSolution reads the optimal primal and duals off the final basis.
func extractSolution(basis []int, xb, lambda *mat.VecDense, pool []model.Pattern, n int) (lpSolution, error) {
	sol := lpSolution{
		primal: make([]float64, len(pool)),
		duals:  make([]float64, n),
	}
	for i, j := range basis {
		v := xb.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return lpSolution{}, fmt.Errorf("%w: non-finite primal value", model.ErrBackendFailure)
		}
		if v < 0 {
			v = 0 // numerical dust on a degenerate basis
		}
		if j < len(pool) {
			sol.primal[j] = v
			sol.objective += v
		}
	}
	for i := 0; i < n; i++ {
		d := lambda.AtVec(i)
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return lpSolution{}, fmt.Errorf("%w: non-finite dual value", model.ErrBackendFailure)
		}
		if d < 0 && d > -lpEpsilon {
			d = 0
		}
		sol.duals[i] = d
	}
	return sol, nil
}

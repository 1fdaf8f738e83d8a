package model

import "errors"

// Error kinds surfaced by the solver. Callers classify with errors.Is;
// the concrete messages wrap these sentinels with context.
var (
	// ErrInvalidInput covers malformed requests: empty demand,
	// non-positive lengths or quantities, pieces longer than the roll,
	// demand above the configured cap, or a range with no feasible length.
	ErrInvalidInput = errors.New("invalid input")

	// ErrResourceExceeded is returned when both the knapsack DP cell
	// budget and the branch-and-bound node budget are exhausted.
	ErrResourceExceeded = errors.New("resource budget exceeded")

	// ErrCancelled is returned when the caller's context fires.
	ErrCancelled = errors.New("cancelled")

	// ErrBackendFailure covers unexpected LP outcomes: an infeasible or
	// unbounded master problem, or numerical overflow in the duals.
	ErrBackendFailure = errors.New("lp backend failure")
)

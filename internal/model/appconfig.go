package model

// SolverSettings bounds a single solve. Zero values are replaced by the
// defaults at solve time, so a partially filled settings struct is valid.
type SolverSettings struct {
	TimeBudgetSeconds float64 `json:"time_budget_seconds"` // column generation wall-clock budget
	MaxIterations     int     `json:"max_iterations"`      // column generation iteration cap
	DemandCap         int     `json:"demand_cap"`          // maximum total demanded pieces
	MaxDPCells        int     `json:"max_dp_cells"`        // knapsack DP table budget
	MaxBnBNodes       int     `json:"max_bnb_nodes"`       // branch-and-bound node budget
}

// DefaultSolverSettings returns the stock limits.
func DefaultSolverSettings() SolverSettings {
	return SolverSettings{
		TimeBudgetSeconds: 10,
		MaxIterations:     200,
		DemandCap:         10000,
		MaxDPCells:        10_000_000,
		MaxBnBNodes:       1_000_000,
	}
}

// Normalized returns a copy with zero fields replaced by defaults.
func (s SolverSettings) Normalized() SolverSettings {
	def := DefaultSolverSettings()
	if s.TimeBudgetSeconds <= 0 {
		s.TimeBudgetSeconds = def.TimeBudgetSeconds
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = def.MaxIterations
	}
	if s.DemandCap <= 0 {
		s.DemandCap = def.DemandCap
	}
	if s.MaxDPCells <= 0 {
		s.MaxDPCells = def.MaxDPCells
	}
	if s.MaxBnBNodes <= 0 {
		s.MaxBnBNodes = def.MaxBnBNodes
	}
	return s
}

// AppConfig is the persisted application configuration.
type AppConfig struct {
	Solver     SolverSettings `json:"solver"`
	RecentJobs []string       `json:"recent_jobs"`
}

// DefaultAppConfig returns the configuration used when none is saved.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Solver:     DefaultSolverSettings(),
		RecentJobs: []string{},
	}
}

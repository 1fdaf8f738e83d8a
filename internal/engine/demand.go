package engine

import (
	"fmt"
	"sort"

	"github.com/piwi3910/RollCut/internal/model"
)

// normalizeDemand validates the raw demand list and produces its
// canonical form: duplicate lengths merged (quantities summed, maximum
// priority kept), sorted by length descending. Two inputs that normalize
// identically produce byte-identical results downstream, so this is the
// only place demand order and duplication may vary.
func normalizeDemand(demand []model.DemandLine, rollLength, demandCap int) ([]model.DemandLine, error) {
	if len(demand) == 0 {
		return nil, fmt.Errorf("%w: demand is empty", model.ErrInvalidInput)
	}

	merged := make(map[int]model.DemandLine, len(demand))
	for _, d := range demand {
		if d.Length <= 0 {
			return nil, fmt.Errorf("%w: piece length must be positive, got %d", model.ErrInvalidInput, d.Length)
		}
		if d.Quantity <= 0 {
			return nil, fmt.Errorf("%w: piece quantity must be positive, got %d for length %d", model.ErrInvalidInput, d.Quantity, d.Length)
		}
		if d.Length > rollLength {
			return nil, fmt.Errorf("%w: piece length %d exceeds master roll length %d", model.ErrInvalidInput, d.Length, rollLength)
		}
		entry, ok := merged[d.Length]
		if !ok {
			merged[d.Length] = d
			continue
		}
		entry.Quantity += d.Quantity
		if d.Priority > entry.Priority {
			entry.Priority = d.Priority
		}
		merged[d.Length] = entry
	}

	normalized := make([]model.DemandLine, 0, len(merged))
	total := 0
	for _, d := range merged {
		normalized = append(normalized, d)
		total += d.Quantity
	}
	if total > demandCap {
		return nil, fmt.Errorf("%w: total demand %d exceeds cap %d", model.ErrInvalidInput, total, demandCap)
	}
	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].Length > normalized[j].Length
	})
	return normalized, nil
}
